package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"storepay/internal/models"
	"storepay/internal/payment"
)

func successResponse(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, models.APIResponse{
		Status: models.ResponseSuccess,
		Data:   data,
	})
}

func errorResponse(c echo.Context, code int, msg string) error {
	return c.JSON(code, models.APIResponse{
		Status:  models.ResponseError,
		Message: msg,
	})
}

// writeServiceError maps payment error kinds to HTTP codes. Only validation
// messages and the gateway's own rejection wording reach the client.
func writeServiceError(c echo.Context, logger *zap.Logger, err error) error {
	var gErr *payment.GatewayError
	switch {
	case errors.Is(err, payment.ErrValidation):
		return errorResponse(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, payment.ErrNotFound):
		return errorResponse(c, http.StatusNotFound, "Product not found")
	case errors.Is(err, payment.ErrOutOfStock):
		return errorResponse(c, http.StatusBadRequest, "Product is out of stock")
	case errors.Is(err, payment.ErrNotConfigured):
		return errorResponse(c, http.StatusServiceUnavailable, "Payment gateway is not configured")
	case errors.As(err, &gErr) && gErr.Rejected:
		msg := gErr.Message
		if msg == "" {
			msg = "Payment gateway rejected the request"
		}
		return errorResponse(c, http.StatusBadRequest, msg)
	case errors.Is(err, payment.ErrGateway):
		logger.Error("gateway error", zap.Error(err))
		return errorResponse(c, http.StatusInternalServerError, "Payment gateway error")
	default:
		logger.Error("unexpected payment error", zap.Error(err))
		return errorResponse(c, http.StatusInternalServerError, "Internal server error")
	}
}
