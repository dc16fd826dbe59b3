package models

import "time"

// Verified transaction statuses reported by the gateway. Anything else is a
// pending or gateway-specific state.
const (
	TransactionSuccessful = "successful"
	TransactionFailed     = "failed"
)

// VerifiedTransaction is the gateway's authoritative record, obtained by a
// server-to-server verification call. It is the only proof that money moved.
type VerifiedTransaction struct {
	ID          string     `json:"id"`
	TxRef       string     `json:"tx_ref"`
	FlwRef      string     `json:"flw_ref,omitempty"`
	Status      string     `json:"status"`
	Amount      Amount     `json:"amount"`
	Currency    string     `json:"currency"`
	PaymentType string     `json:"payment_type,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	Meta        ChargeMeta `json:"meta"`
}

// Successful reports whether the gateway settled the charge.
func (v *VerifiedTransaction) Successful() bool {
	return v.Status == TransactionSuccessful
}

// BankTransferInstruction tells the buyer where to send a transfer. The
// expiry is advisory; the gateway enforces it.
type BankTransferInstruction struct {
	AccountNumber string    `json:"accountNumber"`
	BankName      string    `json:"bankName"`
	Amount        Amount    `json:"amount"`
	Reference     string    `json:"reference"`
	TxRef         string    `json:"txRef"`
	Note          string    `json:"note,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	ExpiresAt     time.Time `json:"expiresAt"`
}
