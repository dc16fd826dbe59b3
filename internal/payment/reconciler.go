package payment

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"storepay/internal/models"
	"storepay/internal/telemetry"
)

// Result views the buyer is redirected to.
const (
	SuccessPath   = "/payment/success"
	FailedPath    = "/payment/failed"
	CancelledPath = "/payment/cancelled"
)

// statusCancelled is the redirect status for a dismissed checkout.
const statusCancelled = "cancelled"

// CallbackParams are the advisory query parameters of a gateway redirect.
type CallbackParams struct {
	TransactionID string
	TxRef         string
	Status        string
}

// Reconciler derives a trustworthy outcome from an inbound notification by
// verifying it with the gateway.
type Reconciler struct {
	gateway Gateway
	logger  *zap.Logger
}

// NewReconciler builds a Reconciler. gateway may be nil when the gateway is
// not configured; every verifiable notification then fails.
func NewReconciler(gateway Gateway, logger *zap.Logger) *Reconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reconciler{gateway: gateway, logger: logger}
}

// Reconcile runs the state machine for one notification. It never returns a
// non-terminal state and never retries a failed verification.
func (r *Reconciler) Reconcile(ctx context.Context, p CallbackParams, channel models.Channel) models.TransactionOutcome {
	out := r.reconcile(ctx, p, channel)
	telemetry.CountOutcome(string(out.State), string(out.Channel))

	fields := []zap.Field{
		zap.String("tx_ref", out.TxRef),
		zap.String("transaction_id", out.TransactionID),
		zap.String("state", string(out.State)),
		zap.String("channel", string(out.Channel)),
		zap.Int("trust", out.Channel.Trust()),
	}
	if out.Reason != "" {
		fields = append(fields, zap.String("reason", out.Reason))
	}
	r.logger.Info("payment reconciled", fields...)
	return out
}

// Confirm verifies an inline widget success before the browser reports it.
func (r *Reconciler) Confirm(ctx context.Context, transactionID, txRef string) models.TransactionOutcome {
	return r.Reconcile(ctx, CallbackParams{TransactionID: transactionID, TxRef: txRef}, models.ChannelInline)
}

func (r *Reconciler) reconcile(ctx context.Context, p CallbackParams, channel models.Channel) models.TransactionOutcome {
	p.TransactionID = strings.TrimSpace(p.TransactionID)
	p.TxRef = strings.TrimSpace(p.TxRef)

	out := models.TransactionOutcome{
		Channel:       channel,
		TxRef:         p.TxRef,
		TransactionID: p.TransactionID,
	}

	// A cancellation moves no money, so the advisory status is final.
	if strings.EqualFold(strings.TrimSpace(p.Status), statusCancelled) {
		out.State = models.StateUserCancelled
		return out
	}

	if p.TransactionID == "" {
		return failure(out, models.ReasonMissingTransactionID)
	}
	if p.TxRef == "" {
		return failure(out, models.ReasonMissingTxRef)
	}
	if r.gateway == nil {
		return failure(out, models.ReasonNotConfigured)
	}

	tx, err := r.gateway.Verify(ctx, p.TransactionID)
	if err != nil {
		return failure(out, verificationReason(err))
	}

	out.Verified = true
	out.Amount = tx.Amount
	out.Currency = tx.Currency
	out.ProductID = tx.Meta.ProductID
	out.ProductTitle = tx.Meta.ProductTitle
	out.GatewayStatus = tx.Status

	switch {
	case tx.TxRef == "" || tx.TxRef != p.TxRef:
		r.logger.Warn("verified tx_ref does not match redirect",
			zap.String("redirect_tx_ref", p.TxRef),
			zap.String("verified_tx_ref", tx.TxRef),
			zap.String("transaction_id", p.TransactionID),
		)
		out.Reason = models.ReasonTxRefMismatch
		out.State = models.StateVerifiedFailure
	case !tx.Successful():
		out.Reason = models.ReasonNotSuccessful
		out.State = models.StateVerifiedFailure
	default:
		out.State = models.StateVerifiedSuccess
	}
	return out
}

func failure(out models.TransactionOutcome, reason string) models.TransactionOutcome {
	out.State = models.StateVerifiedFailure
	out.Reason = reason
	return out
}

func verificationReason(err error) string {
	if errors.Is(err, ErrNotConfigured) {
		return models.ReasonNotConfigured
	}
	return err.Error()
}

// ResultRedirect builds the result page URL for a terminal outcome. base is
// the public site URL and may be empty for a relative redirect. Every page
// carries what it needs to render without another server call.
func ResultRedirect(base string, out models.TransactionOutcome) string {
	q := url.Values{}
	set := func(key, value string) {
		if value != "" {
			q.Set(key, value)
		}
	}

	var path string
	switch out.State {
	case models.StateUserCancelled:
		path = CancelledPath
		set("tx_ref", out.TxRef)
	case models.StateVerifiedSuccess:
		path = SuccessPath
		set("tx_ref", out.TxRef)
		set("transaction_id", out.TransactionID)
		if out.Amount != 0 {
			set("amount", out.Amount.QueryValue())
		}
		set("currency", out.Currency)
		set("product_id", out.ProductID)
		set("product", out.ProductTitle)
	default:
		path = FailedPath
		set("tx_ref", out.TxRef)
		set("transaction_id", out.TransactionID)
		set("reason", out.Reason)
		set("status", out.GatewayStatus)
	}

	target := strings.TrimRight(base, "/") + path
	if enc := q.Encode(); enc != "" {
		target += "?" + enc
	}
	return target
}

// Lookup verifies transactionID with no redirect to compare against. Gateway
// errors are returned to the caller rather than folded into the outcome.
func (r *Reconciler) Lookup(ctx context.Context, transactionID string) (*models.VerifiedTransaction, models.TransactionOutcome, error) {
	out := models.TransactionOutcome{
		Channel:       models.ChannelServerVerify,
		TransactionID: strings.TrimSpace(transactionID),
	}
	if out.TransactionID == "" {
		return nil, out, validationError("transaction id is required")
	}
	if r.gateway == nil {
		return nil, out, ErrNotConfigured
	}

	tx, err := r.gateway.Verify(ctx, out.TransactionID)
	if err != nil {
		return nil, out, err
	}

	out.Verified = true
	out.TxRef = tx.TxRef
	out.Amount = tx.Amount
	out.Currency = tx.Currency
	out.ProductID = tx.Meta.ProductID
	out.ProductTitle = tx.Meta.ProductTitle
	out.GatewayStatus = tx.Status
	if tx.Successful() {
		out.State = models.StateVerifiedSuccess
	} else {
		out.State = models.StateVerifiedFailure
		out.Reason = models.ReasonNotSuccessful
	}
	telemetry.CountOutcome(string(out.State), string(out.Channel))
	return tx, out, nil
}
