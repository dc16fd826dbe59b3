package models

// ProductStatusPublished marks a catalog row that may be sold.
const ProductStatusPublished = "published"

// Product is the read-only projection of the CMS `products` table used at
// checkout. The CMS owns the table; this service only writes it when
// bootstrapping a local database.
type Product struct {
	ID         string `gorm:"column:id;primaryKey;size:64" json:"id"`
	Slug       string `gorm:"column:slug;size:255" json:"slug"`
	Title      string `gorm:"column:title;size:500" json:"title"`
	PriceMinor int64  `gorm:"column:price" json:"price"`
	Currency   string `gorm:"column:currency;size:8" json:"currency"`
	IsInStock  bool   `gorm:"column:is_in_stock" json:"is_in_stock"`
	Status     string `gorm:"column:status;size:32" json:"status"`
}

func (Product) TableName() string {
	return "products"
}

// Price returns the catalog price as an Amount.
func (p *Product) Price() Amount {
	return FromMinor(p.PriceMinor)
}

// IsPublished reports whether the item is in a sellable state.
func (p *Product) IsPublished() bool {
	return p.Status == ProductStatusPublished
}
