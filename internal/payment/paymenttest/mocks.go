// Package paymenttest provides testify mocks of the payment interfaces.
package paymenttest

import (
	"context"

	"github.com/stretchr/testify/mock"

	"storepay/internal/models"
	"storepay/internal/payment"
)

// Gateway is a mock payment.Gateway.
type Gateway struct {
	mock.Mock
}

func (g *Gateway) PublicKey() string {
	return g.Called().String(0)
}

func (g *Gateway) ChargeDescriptor(params payment.ChargeParams) models.ChargeDescriptor {
	return g.Called(params).Get(0).(models.ChargeDescriptor)
}

func (g *Gateway) Verify(ctx context.Context, transactionID string) (*models.VerifiedTransaction, error) {
	args := g.Called(ctx, transactionID)
	tx, _ := args.Get(0).(*models.VerifiedTransaction)
	return tx, args.Error(1)
}

func (g *Gateway) InitiateBankTransfer(ctx context.Context, params payment.BankTransferParams) (*models.BankTransferInstruction, error) {
	args := g.Called(ctx, params)
	instr, _ := args.Get(0).(*models.BankTransferInstruction)
	return instr, args.Error(1)
}

// Catalog is a mock payment.Catalog.
type Catalog struct {
	mock.Mock
}

func (c *Catalog) FindProduct(ctx context.Context, idOrSlug string) (*models.Product, error) {
	args := c.Called(ctx, idOrSlug)
	p, _ := args.Get(0).(*models.Product)
	return p, args.Error(1)
}

// StaticCatalog serves a fixed set of products keyed by ID and slug.
type StaticCatalog map[string]models.Product

func (s StaticCatalog) FindProduct(_ context.Context, idOrSlug string) (*models.Product, error) {
	for _, p := range s {
		if p.ID == idOrSlug || p.Slug == idOrSlug {
			p := p
			return &p, nil
		}
	}
	return nil, payment.ErrNotFound
}

var (
	_ payment.Gateway = (*Gateway)(nil)
	_ payment.Catalog = (*Catalog)(nil)
	_ payment.Catalog = StaticCatalog(nil)
)
