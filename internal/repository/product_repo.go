package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"storepay/internal/models"
	"storepay/internal/payment"
)

// ProductRepository reads purchasable items from the CMS catalog.
type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// FindProduct returns a product by ID or slug. Unpublished rows are returned
// as well; the caller decides whether they can be sold.
func (r *ProductRepository) FindProduct(ctx context.Context, idOrSlug string) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Where("id = ? OR slug = ?", idOrSlug, idOrSlug).
		First(&product).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("product %q: %w", idOrSlug, payment.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find product %q: %w", idOrSlug, err)
	}
	return &product, nil
}

var _ payment.Catalog = (*ProductRepository)(nil)
