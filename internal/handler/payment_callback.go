package handler

import (
	"context"
	"encoding/json"
	"html/template"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"storepay/internal/models"
	"storepay/internal/notify"
	"storepay/internal/payment"
	"storepay/internal/telemetry"
)

// DefaultNotifyTimeout bounds webhook side effects running after the reply.
const DefaultNotifyTimeout = 10 * time.Second

// PaymentCallbackHandler handles the gateway redirect, the webhook and the
// buyer-facing result pages.
type PaymentCallbackHandler struct {
	reconciler    *payment.Reconciler
	notifier      notify.Notifier
	siteURL       string
	notifyTimeout time.Duration
	logger        *zap.Logger

	inflight sync.WaitGroup
}

// NewPaymentCallbackHandler creates a new payment callback handler.
func NewPaymentCallbackHandler(
	reconciler *payment.Reconciler,
	notifier notify.Notifier,
	siteURL string,
	logger *zap.Logger,
) *PaymentCallbackHandler {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &PaymentCallbackHandler{
		reconciler:    reconciler,
		notifier:      notifier,
		siteURL:       siteURL,
		notifyTimeout: DefaultNotifyTimeout,
		logger:        logger,
	}
}

// ── Redirect callback ────────────────────────────────────────────────

// Callback verifies the redirect and sends the buyer to a result page. It
// never answers with JSON.
// GET /payments/callback
func (h *PaymentCallbackHandler) Callback(c echo.Context) error {
	params := payment.CallbackParams{
		TransactionID: c.QueryParam("transaction_id"),
		TxRef:         c.QueryParam("tx_ref"),
		Status:        c.QueryParam("status"),
	}

	outcome := h.reconciler.Reconcile(c.Request().Context(), params, models.ChannelRedirect)
	return c.Redirect(http.StatusFound, payment.ResultRedirect(h.siteURL, outcome))
}

// ── Webhook ──────────────────────────────────────────────────────────

// Webhook acknowledges every authenticated delivery. Completed charges are
// handed to the notifier after the reply is written.
// POST /payments/webhook
func (h *PaymentCallbackHandler) Webhook(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		h.logger.Warn("webhook body unreadable", zap.Error(err))
		return h.ignored(c, "unreadable")
	}

	var event models.WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		h.logger.Warn("webhook body undecodable", zap.Error(err))
		return h.ignored(c, "undecodable")
	}
	if !event.CompletedSuccessfully() {
		h.logger.Debug("webhook event ignored",
			zap.String("event", event.Event),
			zap.String("status", event.Data.Status),
		)
		return h.ignored(c, eventLabel(event.Event))
	}

	outcome := event.Outcome()
	h.logger.Info("charge completed webhook",
		zap.String("tx_ref", outcome.TxRef),
		zap.String("transaction_id", outcome.TransactionID),
		zap.String("amount", outcome.Amount.Major()),
		zap.String("currency", outcome.Currency),
	)
	telemetry.CountWebhook(event.Event, "accepted")
	telemetry.CountOutcome(string(outcome.State), string(outcome.Channel))

	h.inflight.Add(1)
	go func() {
		defer h.inflight.Done()
		h.dispatch(outcome)
	}()

	return c.JSON(http.StatusOK, models.APIResponse{Status: models.ResponseSuccess})
}

func (h *PaymentCallbackHandler) ignored(c echo.Context, event string) error {
	telemetry.CountWebhook(event, "ignored")
	return c.JSON(http.StatusOK, models.APIResponse{Status: models.ResponseIgnored})
}

// eventLabel keeps the metric label set bounded.
func eventLabel(event string) string {
	if event == models.WebhookEventChargeCompleted {
		return event
	}
	return "other"
}

// Wait blocks until every dispatched notification has returned or ctx ends.
func (h *PaymentCallbackHandler) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		h.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *PaymentCallbackHandler) dispatch(outcome models.TransactionOutcome) {
	ctx, cancel := context.WithTimeout(context.Background(), h.notifyTimeout)
	defer cancel()

	if err := h.notifier.Notify(ctx, outcome); err != nil {
		h.logger.Warn("outcome notification failed",
			zap.String("tx_ref", outcome.TxRef),
			zap.Error(err),
		)
	}
}

// ── Result views ─────────────────────────────────────────────────────

// Success renders the success page. Query values only feed the display.
// GET /payment/success
func (h *PaymentCallbackHandler) Success(c echo.Context) error {
	view := resultView{
		Title:         "Payment successful",
		Message:       "Thank you for your purchase!",
		TxRef:         c.QueryParam("tx_ref"),
		TransactionID: c.QueryParam("transaction_id"),
		Product:       c.QueryParam("product"),
		Success:       true,
	}
	if amount := c.QueryParam("amount"); amount != "" {
		if a, err := models.ParseMajor(amount); err == nil {
			view.Amount = a.Major() + " " + c.QueryParam("currency")
		}
	}
	return h.renderPaymentResult(c, view)
}

// Failed renders the failure page.
// GET /payment/failed
func (h *PaymentCallbackHandler) Failed(c echo.Context) error {
	return h.renderPaymentResult(c, resultView{
		Title:         "Payment failed",
		Message:       failureMessage(c.QueryParam("reason")),
		TxRef:         c.QueryParam("tx_ref"),
		TransactionID: c.QueryParam("transaction_id"),
		Retry:         true,
	})
}

// Cancelled renders the cancellation page.
// GET /payment/cancelled
func (h *PaymentCallbackHandler) Cancelled(c echo.Context) error {
	return h.renderPaymentResult(c, resultView{
		Title:   "Payment cancelled",
		Message: "You left the checkout before paying. No money was taken.",
		TxRef:   c.QueryParam("tx_ref"),
		Retry:   true,
	})
}

func failureMessage(reason string) string {
	switch reason {
	case models.ReasonMissingTransactionID:
		return "We could not find the transaction for this payment."
	case models.ReasonTxRefMismatch:
		return "The payment could not be matched to your order."
	case models.ReasonNotSuccessful:
		return "The payment was not completed."
	case models.ReasonNotConfigured:
		return "Payments are temporarily unavailable."
	default:
		return "We could not confirm your payment. Please try again."
	}
}

type resultView struct {
	Title         string
	Message       string
	TxRef         string
	TransactionID string
	Amount        string
	Product       string
	Success       bool
	Retry         bool
}

var resultTemplate = template.Must(template.New("payment").Parse(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1">
    <title>{{.Title}}</title>
    <style>
        body { font-family: -apple-system, Helvetica, Arial, sans-serif; background: #f2f2f2; margin: 0; padding: 20px; display: flex; justify-content: center; align-items: center; min-height: 100vh; }
        .box { background: #fff; border-radius: 8px; box-shadow: 0 2px 10px rgba(0,0,0,0.1); padding: 40px; text-align: center; max-width: 420px; width: 100%; }
        h1 { color: {{if .Success}}#1a7f37{{else}}#333{{end}}; margin-bottom: 20px; }
        p { color: #666; margin-bottom: 10px; }
        a { color: #0969da; }
    </style>
</head>
<body>
    <div class="box">
        <h1>{{.Title}}</h1>
        {{if .Product}}<p>Item: <span>{{.Product}}</span></p>{{end}}
        {{if .Amount}}<p>Amount: <span>{{.Amount}}</span></p>{{end}}
        {{if .TxRef}}<p>Reference: <code>{{.TxRef}}</code></p>{{end}}
        {{if .TransactionID}}<p>Transaction: <code>{{.TransactionID}}</code></p>{{end}}
        <p>{{.Message}}</p>
        {{if .Retry}}<p><a href="/">Back to the shop</a></p>{{end}}
    </div>
</body>
</html>`))

func (h *PaymentCallbackHandler) renderPaymentResult(c echo.Context, view resultView) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(http.StatusOK)
	return resultTemplate.Execute(c.Response().Writer, view)
}
