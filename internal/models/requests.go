package models

// APIResponse is the JSON envelope of every payments endpoint.
type APIResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// Envelope statuses.
const (
	ResponseSuccess = "success"
	ResponseFailed  = "failed"
	ResponseError   = "error"
	ResponseIgnored = "ignored"
	ResponseOK      = "ok"
)

// BankTransferRequest is the body of POST /payments/charge/bank-transfer.
type BankTransferRequest struct {
	Amount   Amount `json:"amount"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
	Name     string `json:"name,omitempty"`
	Currency string `json:"currency,omitempty"`
}

// ConfirmRequest is the body of POST /payments/confirm sent by the browser
// after the inline widget reports success.
type ConfirmRequest struct {
	TransactionID string `json:"transaction_id"`
	TxRef         string `json:"tx_ref"`
}

// GatewayConfigResponse is the body of GET /payments/config.
type GatewayConfigResponse struct {
	Configured bool    `json:"configured"`
	PublicKey  *string `json:"publicKey"`
}

// VerifyResponse is the data of GET /payments/verify/:transactionId.
type VerifyResponse struct {
	Transaction *VerifiedTransaction `json:"transaction"`
	Outcome     TransactionOutcome   `json:"outcome"`
}
