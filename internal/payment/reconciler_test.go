package payment_test

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"storepay/internal/models"
	"storepay/internal/payment"
	"storepay/internal/payment/paymenttest"
)

func verified(txRef, status string) *models.VerifiedTransaction {
	return &models.VerifiedTransaction{
		ID:       "9001",
		TxRef:    txRef,
		Status:   status,
		Amount:   models.FromMinor(500000),
		Currency: "NGN",
		Meta:     models.ChargeMeta{ProductID: "book-1", ProductTitle: "The Book", Source: "storefront"},
	}
}

func TestReconcileCancelledNeverCallsGateway(t *testing.T) {
	gw := &paymenttest.Gateway{}
	r := payment.NewReconciler(gw, nil)

	out := r.Reconcile(context.Background(), payment.CallbackParams{TxRef: "SHOP-1-x", Status: "cancelled", TransactionID: "9001"}, models.ChannelRedirect)

	assert.Equal(t, models.StateUserCancelled, out.State)
	assert.False(t, out.Verified)
	gw.AssertNotCalled(t, "Verify", mock.Anything, mock.Anything)
	assert.Equal(t, "/payment/cancelled?tx_ref=SHOP-1-x", payment.ResultRedirect("", out))
}

func TestReconcileMissingTransactionID(t *testing.T) {
	gw := &paymenttest.Gateway{}
	r := payment.NewReconciler(gw, nil)

	out := r.Reconcile(context.Background(), payment.CallbackParams{TxRef: "SHOP-1-x", Status: "successful"}, models.ChannelRedirect)

	assert.Equal(t, models.StateVerifiedFailure, out.State)
	assert.Equal(t, models.ReasonMissingTransactionID, out.Reason)
	gw.AssertNotCalled(t, "Verify", mock.Anything, mock.Anything)
}

func TestReconcileWithoutGateway(t *testing.T) {
	r := payment.NewReconciler(nil, nil)

	out := r.Reconcile(context.Background(), payment.CallbackParams{TxRef: "SHOP-1-x", TransactionID: "9001"}, models.ChannelRedirect)

	assert.Equal(t, models.StateVerifiedFailure, out.State)
	assert.Equal(t, models.ReasonNotConfigured, out.Reason)
}

func TestReconcileSuccess(t *testing.T) {
	gw := &paymenttest.Gateway{}
	gw.On("Verify", mock.Anything, "9001").Return(verified("SHOP-1-x", "successful"), nil).Once()
	r := payment.NewReconciler(gw, nil)

	out := r.Reconcile(context.Background(), payment.CallbackParams{TxRef: "SHOP-1-x", TransactionID: "9001", Status: "successful"}, models.ChannelRedirect)

	require.Equal(t, models.StateVerifiedSuccess, out.State)
	assert.True(t, out.Authoritative())
	assert.Equal(t, models.FromMinor(500000), out.Amount)
	assert.Equal(t, "NGN", out.Currency)
	assert.Equal(t, "book-1", out.ProductID)
	gw.AssertExpectations(t)

	target, err := url.Parse(payment.ResultRedirect("", out))
	require.NoError(t, err)
	assert.Equal(t, "/payment/success", target.Path)
	q := target.Query()
	assert.Equal(t, "5000", q.Get("amount"))
	assert.Equal(t, "NGN", q.Get("currency"))
	assert.Equal(t, "SHOP-1-x", q.Get("tx_ref"))
	assert.Equal(t, "9001", q.Get("transaction_id"))
	assert.Equal(t, "book-1", q.Get("product_id"))
	assert.Equal(t, "The Book", q.Get("product"))
}

func TestReconcileTrustsVerifiedStatusOverRedirect(t *testing.T) {
	gw := &paymenttest.Gateway{}
	gw.On("Verify", mock.Anything, "9001").Return(verified("SHOP-1-x", "failed"), nil)
	r := payment.NewReconciler(gw, nil)

	out := r.Reconcile(context.Background(), payment.CallbackParams{TxRef: "SHOP-1-x", TransactionID: "9001", Status: "successful"}, models.ChannelRedirect)

	assert.Equal(t, models.StateVerifiedFailure, out.State)
	assert.Equal(t, models.ReasonNotSuccessful, out.Reason)
	assert.Equal(t, "failed", out.GatewayStatus)

	q, err := url.Parse(payment.ResultRedirect("", out))
	require.NoError(t, err)
	assert.Equal(t, "/payment/failed", q.Path)
	assert.Equal(t, "failed", q.Query().Get("status"))
	assert.Equal(t, models.ReasonNotSuccessful, q.Query().Get("reason"))
}

func TestReconcileTxRefMismatch(t *testing.T) {
	gw := &paymenttest.Gateway{}
	gw.On("Verify", mock.Anything, "9001").Return(verified("SHOP-2-other", "successful"), nil)
	r := payment.NewReconciler(gw, nil)

	out := r.Reconcile(context.Background(), payment.CallbackParams{TxRef: "SHOP-1-x", TransactionID: "9001"}, models.ChannelRedirect)

	assert.Equal(t, models.StateVerifiedFailure, out.State)
	assert.Equal(t, models.ReasonTxRefMismatch, out.Reason)
}

func TestReconcileRequiresTxRef(t *testing.T) {
	gw := &paymenttest.Gateway{}
	gw.On("Verify", mock.Anything, "9001").Return(verified("", "successful"), nil)
	r := payment.NewReconciler(gw, nil)

	out := r.Reconcile(context.Background(), payment.CallbackParams{TransactionID: "9001", Status: "successful"}, models.ChannelRedirect)
	assert.Equal(t, models.StateVerifiedFailure, out.State)
	assert.Equal(t, models.ReasonMissingTxRef, out.Reason)
	gw.AssertNotCalled(t, "Verify", mock.Anything, mock.Anything)

	out = r.Confirm(context.Background(), "9001", "")
	assert.Equal(t, models.StateVerifiedFailure, out.State)
	assert.Equal(t, models.ReasonMissingTxRef, out.Reason)
}

func TestReconcileRejectsEmptyVerifiedTxRef(t *testing.T) {
	gw := &paymenttest.Gateway{}
	gw.On("Verify", mock.Anything, "9001").Return(verified("", "successful"), nil)
	r := payment.NewReconciler(gw, nil)

	out := r.Reconcile(context.Background(), payment.CallbackParams{TxRef: "SHOP-1-x", TransactionID: "9001", Status: "successful"}, models.ChannelRedirect)

	assert.Equal(t, models.StateVerifiedFailure, out.State)
	assert.Equal(t, models.ReasonTxRefMismatch, out.Reason)
}

func TestReconcileVerifyErrorIsTerminal(t *testing.T) {
	gw := &paymenttest.Gateway{}
	gwErr := &payment.GatewayError{Op: "flutterwave verify", StatusCode: 502, Message: "Bad Gateway"}
	gw.On("Verify", mock.Anything, "9001").Return(nil, gwErr).Once()
	r := payment.NewReconciler(gw, nil)

	out := r.Reconcile(context.Background(), payment.CallbackParams{TxRef: "SHOP-1-x", TransactionID: "9001"}, models.ChannelRedirect)

	assert.Equal(t, models.StateVerifiedFailure, out.State)
	assert.Equal(t, gwErr.Error(), out.Reason)
	assert.False(t, out.Verified)
	gw.AssertNumberOfCalls(t, "Verify", 1)
}

func TestReconcileIsDeterministic(t *testing.T) {
	gw := &paymenttest.Gateway{}
	gw.On("Verify", mock.Anything, "9001").Return(verified("SHOP-1-x", "successful"), nil)
	r := payment.NewReconciler(gw, nil)
	params := payment.CallbackParams{TxRef: "SHOP-1-x", TransactionID: " 9001 "}

	first := r.Reconcile(context.Background(), params, models.ChannelRedirect)
	second := r.Reconcile(context.Background(), params, models.ChannelRedirect)

	assert.Equal(t, first, second)
	assert.Equal(t, payment.ResultRedirect("", first), payment.ResultRedirect("", second))
}

func TestConfirmUsesInlineChannel(t *testing.T) {
	gw := &paymenttest.Gateway{}
	gw.On("Verify", mock.Anything, "9001").Return(verified("SHOP-1-x", "successful"), nil)
	r := payment.NewReconciler(gw, nil)

	out := r.Confirm(context.Background(), "9001", "SHOP-1-x")

	assert.Equal(t, models.ChannelInline, out.Channel)
	assert.True(t, out.Succeeded())
}

func TestLookup(t *testing.T) {
	gw := &paymenttest.Gateway{}
	gw.On("Verify", mock.Anything, "9001").Return(verified("SHOP-1-x", "pending"), nil)
	gw.On("Verify", mock.Anything, "404").Return(nil, &payment.GatewayError{Op: "verify", StatusCode: 404, Message: "No transaction was found", Rejected: true})
	r := payment.NewReconciler(gw, nil)

	tx, out, err := r.Lookup(context.Background(), "9001")
	require.NoError(t, err)
	assert.Equal(t, "pending", tx.Status)
	assert.Equal(t, models.ChannelServerVerify, out.Channel)
	assert.Equal(t, models.StateVerifiedFailure, out.State)
	assert.Equal(t, "SHOP-1-x", out.TxRef)

	_, _, err = r.Lookup(context.Background(), "404")
	assert.ErrorIs(t, err, payment.ErrGateway)

	_, _, err = payment.NewReconciler(nil, nil).Lookup(context.Background(), "9001")
	assert.True(t, errors.Is(err, payment.ErrNotConfigured))
}

func TestResultRedirectWithSiteURL(t *testing.T) {
	out := models.TransactionOutcome{State: models.StateVerifiedFailure, TxRef: "SHOP-1-x", Reason: models.ReasonMissingTransactionID}
	assert.Equal(t,
		"https://shop.example.com/payment/failed?reason=missing_transaction_id&tx_ref=SHOP-1-x",
		payment.ResultRedirect("https://shop.example.com/", out),
	)
	assert.Equal(t, "/payment/cancelled", payment.ResultRedirect("", models.TransactionOutcome{State: models.StateUserCancelled}))
}
