package models

import "encoding/json"

// WebhookEventChargeCompleted is the only event acted upon.
const WebhookEventChargeCompleted = "charge.completed"

// WebhookEvent is the gateway's asynchronous notification envelope.
type WebhookEvent struct {
	Event string        `json:"event"`
	Data  WebhookCharge `json:"data"`
}

// WebhookCharge is the charge nested in a webhook event.
type WebhookCharge struct {
	ID          json.Number `json:"id"`
	TxRef       string      `json:"tx_ref"`
	FlwRef      string      `json:"flw_ref"`
	Status      string      `json:"status"`
	Amount      Amount      `json:"amount"`
	Currency    string      `json:"currency"`
	PaymentType string      `json:"payment_type"`
	Customer    Customer    `json:"customer"`
}

// CompletedSuccessfully reports a charge.completed event whose nested
// status is successful.
func (e *WebhookEvent) CompletedSuccessfully() bool {
	return e.Event == WebhookEventChargeCompleted && e.Data.Status == TransactionSuccessful
}

// Outcome converts the event into an advisory outcome. The state stays
// PENDING until a verification call settles it; GatewayStatus carries what
// the event reported.
func (e *WebhookEvent) Outcome() TransactionOutcome {
	return TransactionOutcome{
		State:         StatePending,
		Channel:       ChannelWebhook,
		Verified:      false,
		TxRef:         e.Data.TxRef,
		TransactionID: e.Data.ID.String(),
		Amount:        e.Data.Amount,
		Currency:      e.Data.Currency,
		GatewayStatus: e.Data.Status,
	}
}
