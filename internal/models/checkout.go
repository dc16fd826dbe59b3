package models

// CheckoutRequest is the buyer's purchase attempt. It lives for one HTTP
// request and is never persisted. Price is deliberately absent: the amount
// always comes from the catalog.
type CheckoutRequest struct {
	Email       string `json:"email"`
	Name        string `json:"name"`
	Phone       string `json:"phone,omitempty"`
	ProductID   string `json:"productId"`
	RedirectURL string `json:"redirectUrl,omitempty"`
}

// Customer is the buyer sub-record of a charge.
type Customer struct {
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number,omitempty"`
	Name        string `json:"name"`
}

// ChargeMeta is echoed back by the gateway in verification and webhook
// payloads and used to correlate the charge with a catalog item.
type ChargeMeta struct {
	ProductID    string `json:"product_id"`
	ProductTitle string `json:"product_title"`
	Source       string `json:"source"`
}

// Customizations controls the hosted widget's header.
type Customizations struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// ChargeDescriptor is the gateway-ready charge handed to the inline widget.
// Field names follow the widget's configuration object.
type ChargeDescriptor struct {
	PublicKey      string         `json:"public_key"`
	TxRef          string         `json:"tx_ref"`
	Amount         Amount         `json:"amount"`
	Currency       string         `json:"currency"`
	PaymentOptions string         `json:"payment_options"`
	RedirectURL    string         `json:"redirect_url"`
	Customer       Customer       `json:"customer"`
	Meta           ChargeMeta     `json:"meta"`
	Customizations Customizations `json:"customizations"`
}
