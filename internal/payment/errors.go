package payment

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds. Callers match with errors.Is; handlers map them to HTTP codes.
var (
	ErrValidation      = errors.New("validation error")
	ErrNotFound        = errors.New("not found")
	ErrOutOfStock      = errors.New("out of stock")
	ErrNotConfigured   = errors.New("payment gateway is not configured")
	ErrGateway         = errors.New("gateway error")
	ErrUnauthenticated = errors.New("invalid webhook signature")
)

func validationError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// GatewayError reports a failed or unexpected exchange with the gateway.
// Rejected is set when the gateway understood the request and refused it;
// Message then holds the gateway's own wording.
type GatewayError struct {
	Op         string
	StatusCode int
	Message    string
	Rejected   bool
	Err        error
}

func (e *GatewayError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: gateway returned %d: %s", e.Op, e.StatusCode, msg)
	}
	return fmt.Sprintf("%s: %s", e.Op, msg)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

func (e *GatewayError) Is(target error) bool {
	return target == ErrGateway
}

// duplicateReference reports the gateway refusing a reused tx_ref.
func (e *GatewayError) duplicateReference() bool {
	return e.Rejected && strings.Contains(strings.ToLower(e.Message), "duplicate")
}
