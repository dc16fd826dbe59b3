package models

// OutcomeState is the reconciliation state of one transaction reference.
type OutcomeState string

const (
	StatePending         OutcomeState = "PENDING"
	StateVerifiedSuccess OutcomeState = "VERIFIED_SUCCESS"
	StateVerifiedFailure OutcomeState = "VERIFIED_FAILURE"
	StateUserCancelled   OutcomeState = "USER_CANCELLED"
)

// Terminal reports whether no further transition is possible.
func (s OutcomeState) Terminal() bool {
	return s == StateVerifiedSuccess || s == StateVerifiedFailure || s == StateUserCancelled
}

// Channel names the path a notification arrived on.
type Channel string

const (
	ChannelServerVerify Channel = "server_verify"
	ChannelRedirect     Channel = "redirect"
	ChannelWebhook      Channel = "webhook"
	ChannelInline       Channel = "inline"
)

// Trust ranks channels; higher wins when two notifications disagree.
func (c Channel) Trust() int {
	switch c {
	case ChannelServerVerify:
		return 4
	case ChannelRedirect:
		return 3
	case ChannelWebhook:
		return 2
	case ChannelInline:
		return 1
	default:
		return 0
	}
}

// Failure reasons surfaced on the result page.
const (
	ReasonMissingTransactionID = "missing_transaction_id"
	ReasonMissingTxRef         = "missing_tx_ref"
	ReasonTxRefMismatch        = "tx_ref_mismatch"
	ReasonNotSuccessful        = "payment_not_successful"
	ReasonNotConfigured        = "gateway_not_configured"
)

// TransactionOutcome is the single result type shared by every notification
// path. Verified is true only when the state was derived from a gateway
// verification call; unverified outcomes are advisory.
type TransactionOutcome struct {
	State         OutcomeState `json:"state"`
	Channel       Channel      `json:"channel"`
	Verified      bool         `json:"verified"`
	TxRef         string       `json:"tx_ref,omitempty"`
	TransactionID string       `json:"transaction_id,omitempty"`
	Amount        Amount       `json:"amount"`
	Currency      string       `json:"currency,omitempty"`
	ProductID     string       `json:"product_id,omitempty"`
	ProductTitle  string       `json:"product_title,omitempty"`
	Reason        string       `json:"reason,omitempty"`
	GatewayStatus string       `json:"gateway_status,omitempty"`
}

// Authoritative reports whether the outcome may drive buyer-facing state.
func (o TransactionOutcome) Authoritative() bool {
	return o.Verified && o.State.Terminal()
}

// Succeeded reports a verified successful charge.
func (o TransactionOutcome) Succeeded() bool {
	return o.State == StateVerifiedSuccess
}
