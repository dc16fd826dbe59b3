package payment

import (
	"context"
	"strings"

	"storepay/internal/models"
)

// ChargeParams is everything the gateway client needs to build an inline
// charge. Amount comes from the catalog, never from the buyer.
type ChargeParams struct {
	TxRef       string
	Amount      models.Amount
	Currency    string
	RedirectURL string
	Customer    models.Customer
	Meta        models.ChargeMeta
}

// BankTransferParams describes one bank-transfer charge.
type BankTransferParams struct {
	TxRef    string
	Amount   models.Amount
	Email    string
	Phone    string
	Name     string
	Currency string
}

// Validate checks the fields every bank transfer needs.
func (p BankTransferParams) Validate() error {
	if !p.Amount.IsPositive() {
		return validationError("amount is required")
	}
	if strings.TrimSpace(p.Email) == "" {
		return validationError("email is required")
	}
	return nil
}

// Gateway is the only component that talks to the payment provider.
type Gateway interface {
	// PublicKey returns the browser-safe key for the hosted widget.
	PublicKey() string

	// ChargeDescriptor builds the inline charge payload.
	ChargeDescriptor(params ChargeParams) models.ChargeDescriptor

	// Verify fetches the authoritative record for a gateway transaction id.
	// A nil error does not imply success; check the returned status.
	Verify(ctx context.Context, transactionID string) (*models.VerifiedTransaction, error)

	// InitiateBankTransfer opens a one-off bank transfer charge.
	InitiateBankTransfer(ctx context.Context, params BankTransferParams) (*models.BankTransferInstruction, error)
}

// Catalog looks up purchasable items. It is read-only.
type Catalog interface {
	// FindProduct returns the item by id or slug, or ErrNotFound.
	FindProduct(ctx context.Context, idOrSlug string) (*models.Product, error)
}
