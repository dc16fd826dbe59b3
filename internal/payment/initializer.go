package payment

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"storepay/internal/models"
	"storepay/internal/telemetry"
)

// CallbackPath is where the gateway redirects the buyer after checkout.
const CallbackPath = "/payments/callback"

// RequestOrigin is the part of the inbound request used to build the
// callback URL. The service usually sits behind a TLS-terminating proxy, so
// the forwarded protocol wins over the connection's own scheme.
type RequestOrigin struct {
	ForwardedProto string
	TLS            bool
	Host           string
}

// OriginFromRequest extracts the origin of r.
func OriginFromRequest(r *http.Request) RequestOrigin {
	return RequestOrigin{
		ForwardedProto: r.Header.Get("X-Forwarded-Proto"),
		TLS:            r.TLS != nil,
		Host:           r.Host,
	}
}

// Scheme returns the public scheme of the request.
func (o RequestOrigin) Scheme() string {
	if proto, _, _ := strings.Cut(o.ForwardedProto, ","); strings.TrimSpace(proto) != "" {
		return strings.ToLower(strings.TrimSpace(proto))
	}
	if o.TLS {
		return "https"
	}
	return "http"
}

// CallbackURL picks the caller's return URL or derives one from the origin.
func CallbackURL(returnURL string, origin RequestOrigin) string {
	if u := strings.TrimSpace(returnURL); u != "" {
		return u
	}
	return origin.Scheme() + "://" + origin.Host + CallbackPath
}

// Initializer turns a checkout request into a gateway-ready charge.
type Initializer struct {
	catalog Catalog
	gateway Gateway
	source  string
	logger  *zap.Logger
}

// NewInitializer builds an Initializer. gateway may be nil when the
// credentials are missing; Initialize then fails with ErrNotConfigured.
func NewInitializer(catalog Catalog, gateway Gateway, source string, logger *zap.Logger) *Initializer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Initializer{catalog: catalog, gateway: gateway, source: source, logger: logger}
}

// Initialize validates req, prices it from the catalog and builds the charge.
// Nothing is sent to the gateway here and no state is written.
func (i *Initializer) Initialize(ctx context.Context, req models.CheckoutRequest, origin RequestOrigin) (*models.ChargeDescriptor, error) {
	desc, err := i.initialize(ctx, req, origin)
	telemetry.CountCheckout(checkoutResult(err))
	return desc, err
}

func (i *Initializer) initialize(ctx context.Context, req models.CheckoutRequest, origin RequestOrigin) (*models.ChargeDescriptor, error) {
	email := strings.TrimSpace(req.Email)
	name := strings.TrimSpace(req.Name)
	productID := strings.TrimSpace(req.ProductID)

	var missing []string
	if email == "" {
		missing = append(missing, "email")
	}
	if name == "" {
		missing = append(missing, "name")
	}
	if productID == "" {
		missing = append(missing, "productId")
	}
	if len(missing) > 0 {
		return nil, validationError("missing required fields: %s", strings.Join(missing, ", "))
	}

	if i.gateway == nil {
		return nil, ErrNotConfigured
	}

	product, err := i.catalog.FindProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !product.IsPublished() {
		return nil, ErrNotFound
	}
	if !product.IsInStock {
		return nil, ErrOutOfStock
	}
	amount := product.Price()
	if !amount.IsPositive() {
		return nil, validationError("product %s has no price", product.ID)
	}

	desc := i.gateway.ChargeDescriptor(ChargeParams{
		TxRef:       GenerateReference(),
		Amount:      amount,
		Currency:    product.Currency,
		RedirectURL: CallbackURL(req.RedirectURL, origin),
		Customer: models.Customer{
			Email:       email,
			PhoneNumber: strings.TrimSpace(req.Phone),
			Name:        name,
		},
		Meta: models.ChargeMeta{
			ProductID:    product.ID,
			ProductTitle: product.Title,
			Source:       i.source,
		},
	})

	i.logger.Info("checkout initialized",
		zap.String("tx_ref", desc.TxRef),
		zap.String("product_id", product.ID),
		zap.String("amount", desc.Amount.Major()),
		zap.String("currency", desc.Currency),
	)
	return &desc, nil
}

func checkoutResult(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrValidation):
		return "invalid"
	case errors.Is(err, ErrNotConfigured):
		return "not_configured"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrOutOfStock):
		return "out_of_stock"
	default:
		return "error"
	}
}
