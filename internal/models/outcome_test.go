package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChannelTrustOrder(t *testing.T) {
	assert.Greater(t, ChannelServerVerify.Trust(), ChannelRedirect.Trust())
	assert.Greater(t, ChannelRedirect.Trust(), ChannelWebhook.Trust())
	assert.Greater(t, ChannelWebhook.Trust(), ChannelInline.Trust())
	assert.Zero(t, Channel("sms").Trust())
}

func TestOutcomeAuthoritative(t *testing.T) {
	assert.False(t, TransactionOutcome{State: StatePending, Verified: true}.Authoritative())
	assert.False(t, TransactionOutcome{State: StateVerifiedSuccess}.Authoritative())
	assert.True(t, TransactionOutcome{State: StateVerifiedFailure, Verified: true}.Authoritative())
	assert.False(t, StatePending.Terminal())
	assert.True(t, StateUserCancelled.Terminal())
}

func TestWebhookEventOutcome(t *testing.T) {
	raw := `{
		"event": "charge.completed",
		"data": {"id": 285959875, "tx_ref": "SHOP-1-ab", "status": "successful", "amount": 5000, "currency": "NGN"}
	}`
	var ev WebhookEvent
	require.NoError(t, json.Unmarshal([]byte(raw), &ev))
	require.True(t, ev.CompletedSuccessfully())

	out := ev.Outcome()
	assert.Equal(t, StatePending, out.State, "only verification settles a state")
	assert.Equal(t, TransactionSuccessful, out.GatewayStatus)
	assert.Equal(t, ChannelWebhook, out.Channel)
	assert.False(t, out.Verified, "webhook payloads are advisory")
	assert.False(t, out.Authoritative())
	assert.Equal(t, "285959875", out.TransactionID)
	assert.Equal(t, Amount(500000), out.Amount)

	ev.Data.Status = "pending"
	assert.False(t, ev.CompletedSuccessfully())
	assert.Equal(t, StatePending, ev.Outcome().State)

	ev.Data.Status = TransactionFailed
	assert.Equal(t, StatePending, ev.Outcome().State)
	assert.Equal(t, TransactionFailed, ev.Outcome().GatewayStatus)

	ev.Event = "transfer.completed"
	ev.Data.Status = TransactionSuccessful
	assert.False(t, ev.CompletedSuccessfully())
}
