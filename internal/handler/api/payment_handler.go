package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"storepay/internal/models"
	"storepay/internal/payment"
)

// PaymentHandler serves the JSON payments API.
type PaymentHandler struct {
	initializer *payment.Initializer
	reconciler  *payment.Reconciler
	gateway     payment.Gateway
	logger      *zap.Logger
}

// NewPaymentHandler builds the handler. gateway is nil when the gateway
// credentials are missing.
func NewPaymentHandler(
	initializer *payment.Initializer,
	reconciler *payment.Reconciler,
	gateway payment.Gateway,
	logger *zap.Logger,
) *PaymentHandler {
	return &PaymentHandler{
		initializer: initializer,
		reconciler:  reconciler,
		gateway:     gateway,
		logger:      logger,
	}
}

// Initialize prices a checkout and returns the inline charge descriptor.
// POST /payments/initialize
func (h *PaymentHandler) Initialize(c echo.Context) error {
	var req models.CheckoutRequest
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, "Invalid request body")
	}

	desc, err := h.initializer.Initialize(c.Request().Context(), req, payment.OriginFromRequest(c.Request()))
	if err != nil {
		return writeServiceError(c, h.logger, err)
	}
	return successResponse(c, desc)
}

// Verify is a synchronous verification passthrough.
// GET /payments/verify/:transactionId
func (h *PaymentHandler) Verify(c echo.Context) error {
	tx, outcome, err := h.reconciler.Lookup(c.Request().Context(), c.Param("transactionId"))
	if err != nil {
		return writeServiceError(c, h.logger, err)
	}

	status := models.ResponseFailed
	if outcome.Succeeded() {
		status = models.ResponseSuccess
	}
	return c.JSON(http.StatusOK, models.APIResponse{
		Status: status,
		Data:   models.VerifyResponse{Transaction: tx, Outcome: outcome},
	})
}

// Confirm verifies an inline widget success reported by the browser.
// POST /payments/confirm
func (h *PaymentHandler) Confirm(c echo.Context) error {
	var req models.ConfirmRequest
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, "Invalid request body")
	}

	outcome := h.reconciler.Confirm(c.Request().Context(), req.TransactionID, req.TxRef)
	status := models.ResponseFailed
	if outcome.Succeeded() {
		status = models.ResponseSuccess
	}
	return c.JSON(http.StatusOK, models.APIResponse{Status: status, Data: outcome})
}

// BankTransfer asks the gateway for a one-off transfer account.
// POST /payments/charge/bank-transfer
func (h *PaymentHandler) BankTransfer(c echo.Context) error {
	var req models.BankTransferRequest
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, "Invalid request body")
	}
	params := payment.BankTransferParams{
		Amount:   req.Amount,
		Email:    req.Email,
		Phone:    req.Phone,
		Name:     req.Name,
		Currency: req.Currency,
	}
	if err := params.Validate(); err != nil {
		return writeServiceError(c, h.logger, err)
	}
	if h.gateway == nil {
		return writeServiceError(c, h.logger, payment.ErrNotConfigured)
	}

	instr, err := h.gateway.InitiateBankTransfer(c.Request().Context(), params)
	if err != nil {
		return writeServiceError(c, h.logger, err)
	}

	h.logger.Info("bank transfer initiated",
		zap.String("tx_ref", instr.TxRef),
		zap.String("amount", instr.Amount.Major()),
		zap.Time("expires_at", instr.ExpiresAt),
	)
	return successResponse(c, instr)
}

// Config tells the browser whether checkout is available.
// GET /payments/config
func (h *PaymentHandler) Config(c echo.Context) error {
	resp := models.GatewayConfigResponse{}
	if h.gateway != nil {
		key := h.gateway.PublicKey()
		resp.Configured = key != ""
		if resp.Configured {
			resp.PublicKey = &key
		}
	}
	return c.JSON(http.StatusOK, resp)
}
