package payment_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"storepay/internal/config"
	"storepay/internal/models"
	"storepay/internal/payment"
	"storepay/internal/payment/paymenttest"
)

func newTestGateway(t *testing.T, baseURL string) *payment.FlutterwaveClient {
	t.Helper()
	gw, err := payment.NewFlutterwaveClient(
		config.GatewayConfig{PublicKey: "FLWPUBK_TEST", SecretKey: "FLWSECK_TEST", BaseURL: baseURL},
		config.CheckoutConfig{Currency: "NGN", PaymentOptions: "card,banktransfer,ussd", Title: "Store checkout"},
		nil,
	)
	require.NoError(t, err)
	return gw
}

func sampleCatalog() paymenttest.StaticCatalog {
	return paymenttest.StaticCatalog{
		"book": {ID: "book-1", Slug: "the-book", Title: "The Book", PriceMinor: 500000, Currency: "NGN", IsInStock: true, Status: models.ProductStatusPublished},
		"gone": {ID: "gone-1", Slug: "gone", Title: "Sold Out", PriceMinor: 1000, Currency: "NGN", IsInStock: false, Status: models.ProductStatusPublished},
		"hid":  {ID: "hid-1", Slug: "hidden", Title: "Draft", PriceMinor: 1000, Currency: "NGN", IsInStock: true, Status: "draft"},
		"free": {ID: "free-1", Slug: "free", Title: "Free", PriceMinor: 0, Currency: "NGN", IsInStock: true, Status: models.ProductStatusPublished},
	}
}

var testOrigin = payment.RequestOrigin{Host: "shop.example.com", ForwardedProto: "https"}

func TestInitializeBuildsDescriptorFromCatalog(t *testing.T) {
	initializer := payment.NewInitializer(sampleCatalog(), newTestGateway(t, ""), "storefront", nil)

	desc, err := initializer.Initialize(context.Background(), models.CheckoutRequest{
		Email:     "buyer@example.com",
		Name:      "Ada Buyer",
		Phone:     "0800",
		ProductID: "the-book",
	}, testOrigin)
	require.NoError(t, err)

	assert.Equal(t, "5000.00", desc.Amount.Major())
	assert.Equal(t, "NGN", desc.Currency)
	assert.Equal(t, "FLWPUBK_TEST", desc.PublicKey)
	assert.Equal(t, "card,banktransfer,ussd", desc.PaymentOptions)
	assert.Regexp(t, referencePattern, desc.TxRef)
	assert.Equal(t, "https://shop.example.com/payments/callback", desc.RedirectURL)
	assert.Equal(t, models.Customer{Email: "buyer@example.com", PhoneNumber: "0800", Name: "Ada Buyer"}, desc.Customer)
	assert.Equal(t, models.ChargeMeta{ProductID: "book-1", ProductTitle: "The Book", Source: "storefront"}, desc.Meta)
}

func TestInitializeErrors(t *testing.T) {
	initializer := payment.NewInitializer(sampleCatalog(), newTestGateway(t, ""), "storefront", nil)
	ctx := context.Background()
	valid := func(productID string) models.CheckoutRequest {
		return models.CheckoutRequest{Email: "a@b.c", Name: "A", ProductID: productID}
	}

	cases := []struct {
		name string
		req  models.CheckoutRequest
		want error
	}{
		{"missing fields", models.CheckoutRequest{Name: "A"}, payment.ErrValidation},
		{"unknown product", valid("nope"), payment.ErrNotFound},
		{"unpublished product", valid("hidden"), payment.ErrNotFound},
		{"out of stock", valid("gone"), payment.ErrOutOfStock},
		{"no price", valid("free"), payment.ErrValidation},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			desc, err := initializer.Initialize(ctx, c.req, testOrigin)
			assert.Nil(t, desc)
			assert.True(t, errors.Is(err, c.want), "got %v", err)
		})
	}
}

func TestInitializeListsEveryMissingField(t *testing.T) {
	initializer := payment.NewInitializer(sampleCatalog(), nil, "storefront", nil)
	_, err := initializer.Initialize(context.Background(), models.CheckoutRequest{}, testOrigin)
	require.ErrorIs(t, err, payment.ErrValidation)
	assert.Contains(t, err.Error(), "email, name, productId")
}

func TestInitializeValidatesBeforeTouchingCatalog(t *testing.T) {
	catalog := &paymenttest.Catalog{}
	initializer := payment.NewInitializer(catalog, &paymenttest.Gateway{}, "storefront", nil)

	_, err := initializer.Initialize(context.Background(), models.CheckoutRequest{Email: "a@b.c"}, testOrigin)
	require.ErrorIs(t, err, payment.ErrValidation)
	catalog.AssertNotCalled(t, "FindProduct", mock.Anything, mock.Anything)
}

func TestInitializeWithoutGateway(t *testing.T) {
	catalog := &paymenttest.Catalog{}
	initializer := payment.NewInitializer(catalog, nil, "storefront", nil)

	_, err := initializer.Initialize(context.Background(), models.CheckoutRequest{Email: "a@b.c", Name: "A", ProductID: "book-1"}, testOrigin)
	require.ErrorIs(t, err, payment.ErrNotConfigured)
	catalog.AssertNotCalled(t, "FindProduct", mock.Anything, mock.Anything)
}

func TestInitializePropagatesCatalogFailure(t *testing.T) {
	catalog := &paymenttest.Catalog{}
	catalog.On("FindProduct", mock.Anything, "book-1").Return(nil, errors.New("connection refused"))
	initializer := payment.NewInitializer(catalog, &paymenttest.Gateway{}, "storefront", nil)

	_, err := initializer.Initialize(context.Background(), models.CheckoutRequest{Email: "a@b.c", Name: "A", ProductID: "book-1"}, testOrigin)
	require.Error(t, err)
	assert.False(t, errors.Is(err, payment.ErrNotFound))
	catalog.AssertExpectations(t)
}

func TestCallbackURL(t *testing.T) {
	cases := []struct {
		name      string
		returnURL string
		origin    payment.RequestOrigin
		want      string
	}{
		{"caller url wins", "https://caller.example/return", testOrigin, "https://caller.example/return"},
		{"forwarded proto", "", payment.RequestOrigin{ForwardedProto: "https", Host: "shop.test"}, "https://shop.test/payments/callback"},
		{"first forwarded value", "", payment.RequestOrigin{ForwardedProto: "https, http", Host: "shop.test"}, "https://shop.test/payments/callback"},
		{"tls connection", "", payment.RequestOrigin{TLS: true, Host: "shop.test"}, "https://shop.test/payments/callback"},
		{"plain http", "", payment.RequestOrigin{Host: "localhost:8080"}, "http://localhost:8080/payments/callback"},
		{"forwarded beats tls", "", payment.RequestOrigin{ForwardedProto: "http", TLS: true, Host: "shop.test"}, "http://shop.test/payments/callback"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, payment.CallbackURL(c.returnURL, c.origin))
		})
	}
}
