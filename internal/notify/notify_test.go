package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storepay/internal/models"
)

var sampleOutcome = models.TransactionOutcome{
	State:         models.StateVerifiedSuccess,
	Channel:       models.ChannelWebhook,
	TxRef:         "SHOP-1-x",
	TransactionID: "9001",
	Amount:        models.FromMinor(123450000),
	Currency:      "NGN",
	ProductTitle:  "Books & <Films>",
}

type recordingNotifier struct {
	got []models.TransactionOutcome
	err error
}

func (r *recordingNotifier) Notify(_ context.Context, o models.TransactionOutcome) error {
	r.got = append(r.got, o)
	return r.err
}

func TestCombine(t *testing.T) {
	assert.IsType(t, Nop{}, Combine())
	assert.IsType(t, Nop{}, Combine(nil, nil))

	one := &recordingNotifier{}
	assert.Same(t, one, Combine(nil, one))

	failing := &recordingNotifier{err: errors.New("down")}
	multi := Combine(one, failing)
	err := multi.Notify(context.Background(), sampleOutcome)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "down")
	assert.Len(t, one.got, 1, "every notifier is tried")
	assert.Len(t, failing.got, 1)
}

type fakeWriter struct {
	msgs   []kafka.Message
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestKafkaNotify(t *testing.T) {
	w := &fakeWriter{}
	k := newKafka(w)
	k.now = func() time.Time { return time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC) }

	require.NoError(t, k.Notify(context.Background(), sampleOutcome))
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, "SHOP-1-x", string(msg.Key))
	var ev OutcomeEvent
	require.NoError(t, json.Unmarshal(msg.Value, &ev))
	assert.Equal(t, OutcomeEventType, ev.Type)
	assert.Equal(t, sampleOutcome, ev.Outcome)
	assert.True(t, ev.OccurredAt.Equal(k.now()))

	require.NoError(t, k.Close())
	assert.True(t, w.closed)
}

func TestNewKafkaRequiresBrokers(t *testing.T) {
	_, err := NewKafka(nil, "payment.outcome")
	assert.Error(t, err)
}

func TestTelegramNotify(t *testing.T) {
	var params map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/bot123:abc/sendMessage"), r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&params))
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprint(w, `{"ok":true,"result":{"message_id":1,"date":0,"chat":{"id":42,"type":"group"},"text":"ok"}}`)
	}))
	defer srv.Close()

	tg, err := NewTelegram("123:abc", 42, srv.URL)
	require.NoError(t, err)
	require.NoError(t, tg.Notify(context.Background(), sampleOutcome))

	assert.Equal(t, "42", fmt.Sprint(params["chat_id"]))
	assert.Equal(t, "HTML", params["parse_mode"])
	text := fmt.Sprint(params["text"])
	assert.Contains(t, text, "1,234,500.00 NGN")
	assert.Contains(t, text, "Books &amp; &lt;Films&gt;")
	assert.Contains(t, text, "unverified")
}

func TestNewTelegramRequiresChat(t *testing.T) {
	_, err := NewTelegram("123:abc", 0, "")
	assert.Error(t, err)
}
