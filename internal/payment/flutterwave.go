package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"storepay/internal/config"
	"storepay/internal/models"
	"storepay/internal/pkg/httpclient"
	"storepay/internal/telemetry"
)

const (
	defaultFlutterwaveURL = "https://api.flutterwave.com"
	defaultCurrency       = "NGN"

	// BankTransferTTL is how long a bank transfer account stays valid.
	BankTransferTTL = time.Hour

	envelopeSuccess = "success"
)

var tracer = otel.Tracer("storepay/internal/payment")

// FlutterwaveClient implements Gateway against the Flutterwave v3 API.
type FlutterwaveClient struct {
	cfg      config.GatewayConfig
	checkout config.CheckoutConfig
	client   *httpclient.Client
	logger   *zap.Logger
	now      func() time.Time
}

// NewFlutterwaveClient fails with ErrNotConfigured unless both the public
// and secret keys are set.
func NewFlutterwaveClient(cfg config.GatewayConfig, checkout config.CheckoutConfig, logger *zap.Logger) (*FlutterwaveClient, error) {
	if !cfg.Configured() {
		return nil, fmt.Errorf("%w: public and secret keys are required", ErrNotConfigured)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultFlutterwaveURL
	}
	if checkout.Currency == "" {
		checkout.Currency = defaultCurrency
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &FlutterwaveClient{
		cfg:      cfg,
		checkout: checkout,
		client: httpclient.New().
			WithTimeout(cfg.Timeout).
			WithBaseURL(cfg.BaseURL).
			WithBearerToken(cfg.SecretKey).
			WithHeader("User-Agent", "storepay"),
		logger: logger.With(zap.String("gateway", "flutterwave")),
		now:    time.Now,
	}, nil
}

func (f *FlutterwaveClient) PublicKey() string {
	return f.cfg.PublicKey
}

func (f *FlutterwaveClient) ChargeDescriptor(params ChargeParams) models.ChargeDescriptor {
	currency := strings.ToUpper(strings.TrimSpace(params.Currency))
	if currency == "" {
		currency = f.checkout.Currency
	}
	return models.ChargeDescriptor{
		PublicKey:      f.cfg.PublicKey,
		TxRef:          params.TxRef,
		Amount:         params.Amount,
		Currency:       currency,
		PaymentOptions: f.checkout.PaymentOptions,
		RedirectURL:    params.RedirectURL,
		Customer:       params.Customer,
		Meta:           params.Meta,
		Customizations: models.Customizations{
			Title:       f.checkout.Title,
			Description: params.Meta.ProductTitle,
		},
	}
}

// ── Verify ──────────────────────────────────────────────────────────

type verifyEnvelope struct {
	Status  string      `json:"status"`
	Message string      `json:"message"`
	Data    *verifyData `json:"data"`
}

type verifyData struct {
	ID          json.Number     `json:"id"`
	TxRef       string          `json:"tx_ref"`
	FlwRef      string          `json:"flw_ref"`
	Amount      models.Amount   `json:"amount"`
	Currency    string          `json:"currency"`
	Status      string          `json:"status"`
	PaymentType string          `json:"payment_type"`
	CreatedAt   time.Time       `json:"created_at"`
	Meta        json.RawMessage `json:"meta"`
}

func (f *FlutterwaveClient) Verify(ctx context.Context, transactionID string) (*models.VerifiedTransaction, error) {
	const op = "flutterwave verify"

	transactionID = strings.TrimSpace(transactionID)
	if transactionID == "" {
		return nil, validationError("transaction id is required")
	}

	ctx, span := tracer.Start(ctx, "flutterwave.verify",
		trace.WithAttributes(attribute.String("payment.transaction_id", transactionID)))
	defer span.End()
	started := time.Now()

	resp, err := f.client.Get(ctx, "/v3/transactions/"+url.PathEscape(transactionID)+"/verify")
	if err != nil {
		return nil, f.fail(span, "verify", started, &GatewayError{Op: op, Err: err})
	}

	tx, err := decodeVerify(op, resp)
	if err != nil {
		return nil, f.fail(span, "verify", started, err)
	}

	span.SetAttributes(attribute.String("payment.status", tx.Status))
	telemetry.ObserveGateway("verify", telemetry.GatewayOK, started)
	return tx, nil
}

func decodeVerify(op string, resp *httpclient.Response) (*models.VerifiedTransaction, error) {
	var env verifyEnvelope
	decodeErr := json.Unmarshal(resp.Body, &env)

	if !resp.OK() {
		msg := env.Message
		if decodeErr != nil || msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return nil, &GatewayError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Message:    msg,
			Rejected:   resp.StatusCode >= 400 && resp.StatusCode < 500,
		}
	}
	if decodeErr != nil {
		return nil, &GatewayError{Op: op, StatusCode: resp.StatusCode, Message: "malformed response body", Err: decodeErr}
	}
	if env.Status != envelopeSuccess {
		return nil, &GatewayError{Op: op, Message: env.Message, Rejected: true}
	}
	if env.Data == nil || env.Data.Status == "" || env.Data.ID.String() == "" || env.Data.TxRef == "" {
		return nil, &GatewayError{Op: op, Message: "malformed response body: missing transaction data"}
	}

	d := env.Data
	return &models.VerifiedTransaction{
		ID:          d.ID.String(),
		TxRef:       d.TxRef,
		FlwRef:      d.FlwRef,
		Status:      d.Status,
		Amount:      d.Amount,
		Currency:    d.Currency,
		PaymentType: d.PaymentType,
		CreatedAt:   d.CreatedAt,
		Meta:        decodeMeta(d.Meta),
	}, nil
}

// decodeMeta reads the echoed metadata. The gateway returns whatever the
// widget was given, so values may be strings or numbers, or meta may be null.
func decodeMeta(raw json.RawMessage) models.ChargeMeta {
	var m map[string]interface{}
	if len(raw) == 0 || json.Unmarshal(raw, &m) != nil {
		return models.ChargeMeta{}
	}
	pick := func(keys ...string) string {
		for _, k := range keys {
			if v, ok := m[k]; ok && v != nil {
				switch t := v.(type) {
				case string:
					return t
				case float64:
					return fmt.Sprintf("%.0f", t)
				}
			}
		}
		return ""
	}
	return models.ChargeMeta{
		ProductID:    pick("product_id", "productId"),
		ProductTitle: pick("product_title", "productTitle", "productName"),
		Source:       pick("source"),
	}
}

// ── Bank transfer ───────────────────────────────────────────────────

type bankTransferPayload struct {
	TxRef       string        `json:"tx_ref"`
	Amount      models.Amount `json:"amount"`
	Email       string        `json:"email"`
	PhoneNumber string        `json:"phone_number,omitempty"`
	Currency    string        `json:"currency"`
	FullName    string        `json:"fullname,omitempty"`
	IsPermanent bool          `json:"is_permanent"`
}

type bankTransferEnvelope struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Meta    *struct {
		Authorization *bankTransferAuthorization `json:"authorization"`
	} `json:"meta"`
}

type bankTransferAuthorization struct {
	TransferReference string        `json:"transfer_reference"`
	TransferAccount   string        `json:"transfer_account"`
	TransferBank      string        `json:"transfer_bank"`
	TransferAmount    models.Amount `json:"transfer_amount"`
	TransferNote      string        `json:"transfer_note"`
}

// bankTransferResult is either bankTransferAccepted or bankTransferRejected.
type bankTransferResult interface {
	isBankTransferResult()
}

type bankTransferAccepted struct {
	auth bankTransferAuthorization
}

type bankTransferRejected struct {
	message string
}

func (bankTransferAccepted) isBankTransferResult() {}
func (bankTransferRejected) isBankTransferResult() {}

func decodeBankTransfer(resp *httpclient.Response) (bankTransferResult, error) {
	if resp.StatusCode >= 500 {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	var env bankTransferEnvelope
	if err := json.Unmarshal(resp.Body, &env); err != nil {
		return nil, fmt.Errorf("malformed response body: %w", err)
	}
	if env.Status != envelopeSuccess {
		msg := env.Message
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return bankTransferRejected{message: msg}, nil
	}
	if !resp.OK() {
		return nil, fmt.Errorf("unexpected status %d with success envelope", resp.StatusCode)
	}
	if env.Meta == nil || env.Meta.Authorization == nil {
		return nil, fmt.Errorf("malformed response body: missing meta.authorization")
	}
	auth := *env.Meta.Authorization
	var missing []string
	if auth.TransferAccount == "" {
		missing = append(missing, "transfer_account")
	}
	if auth.TransferBank == "" {
		missing = append(missing, "transfer_bank")
	}
	if auth.TransferReference == "" {
		missing = append(missing, "transfer_reference")
	}
	if !auth.TransferAmount.IsPositive() {
		missing = append(missing, "transfer_amount")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("malformed response body: missing %s", strings.Join(missing, ", "))
	}
	return bankTransferAccepted{auth: auth}, nil
}

func (f *FlutterwaveClient) InitiateBankTransfer(ctx context.Context, params BankTransferParams) (*models.BankTransferInstruction, error) {
	const op = "flutterwave bank transfer"

	params.Email = strings.TrimSpace(params.Email)
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if params.TxRef == "" {
		params.TxRef = GenerateReference()
	}
	currency := strings.ToUpper(strings.TrimSpace(params.Currency))
	if currency == "" {
		currency = f.checkout.Currency
	}

	ctx, span := tracer.Start(ctx, "flutterwave.bank_transfer",
		trace.WithAttributes(attribute.String("payment.tx_ref", params.TxRef)))
	defer span.End()
	started := time.Now()

	resp, err := f.client.Post(ctx, "/v3/charges?type=bank_transfer", bankTransferPayload{
		TxRef:       params.TxRef,
		Amount:      params.Amount,
		Email:       params.Email,
		PhoneNumber: params.Phone,
		Currency:    currency,
		FullName:    params.Name,
	})
	if err != nil {
		return nil, f.fail(span, "bank_transfer", started, &GatewayError{Op: op, Err: err})
	}

	result, err := decodeBankTransfer(resp)
	if err != nil {
		return nil, f.fail(span, "bank_transfer", started, &GatewayError{Op: op, StatusCode: resp.StatusCode, Message: err.Error(), Err: err})
	}

	switch r := result.(type) {
	case bankTransferRejected:
		return nil, f.fail(span, "bank_transfer", started, &GatewayError{Op: op, StatusCode: resp.StatusCode, Message: r.message, Rejected: true})
	case bankTransferAccepted:
		created := f.now().UTC()
		telemetry.ObserveGateway("bank_transfer", telemetry.GatewayOK, started)
		return &models.BankTransferInstruction{
			AccountNumber: r.auth.TransferAccount,
			BankName:      r.auth.TransferBank,
			Amount:        r.auth.TransferAmount,
			Reference:     r.auth.TransferReference,
			TxRef:         params.TxRef,
			Note:          r.auth.TransferNote,
			CreatedAt:     created,
			ExpiresAt:     created.Add(BankTransferTTL),
		}, nil
	default:
		return nil, f.fail(span, "bank_transfer", started, &GatewayError{Op: op, Message: "unexpected result"})
	}
}

// fail records a gateway failure on the span, metrics and log.
func (f *FlutterwaveClient) fail(span trace.Span, operation string, started time.Time, err error) error {
	result := telemetry.GatewayError
	var gErr *GatewayError
	if errors.As(err, &gErr) && gErr.Rejected {
		result = telemetry.GatewayRejected
	}
	if gErr != nil && gErr.duplicateReference() {
		f.logger.Warn("gateway reported a duplicate tx_ref, retry with a fresh reference",
			zap.String("operation", operation),
			zap.Bool("retryable", true),
		)
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, result)
	telemetry.ObserveGateway(operation, result, started)
	f.logger.Warn("gateway call failed",
		zap.String("operation", operation),
		zap.String("result", result),
		zap.Error(err),
	)
	return err
}
