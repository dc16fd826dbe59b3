package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"storepay/internal/models"
)

// EventDeduper tracks processed webhook deliveries by gateway transaction id.
type EventDeduper interface {
	Seen(ctx context.Context, key string) (bool, error)
}

type redisEventDeduper struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func (d *redisEventDeduper) Seen(ctx context.Context, key string) (bool, error) {
	ok, err := d.client.SetNX(ctx, d.prefix+":"+key, "1", d.ttl).Result()
	if err != nil {
		return false, err
	}
	// false => already exists => duplicate
	return !ok, nil
}

type memoryEventDeduper struct {
	mu     sync.Mutex
	seen   map[string]time.Time
	ttl    time.Duration
	nextGC time.Time
	now    func() time.Time
}

// NewMemoryEventDeduper keeps seen keys in process memory.
func NewMemoryEventDeduper(ttl time.Duration) EventDeduper {
	return newMemoryEventDeduper(ttl, time.Now)
}

func newMemoryEventDeduper(ttl time.Duration, now func() time.Time) *memoryEventDeduper {
	return &memoryEventDeduper{
		seen:   make(map[string]time.Time),
		ttl:    ttl,
		nextGC: now().Add(ttl),
		now:    now,
	}
}

func (d *memoryEventDeduper) Seen(_ context.Context, key string) (bool, error) {
	now := d.now()

	d.mu.Lock()
	defer d.mu.Unlock()

	if exp, ok := d.seen[key]; ok && exp.After(now) {
		return true, nil
	}

	d.seen[key] = now.Add(d.ttl)
	if now.After(d.nextGC) {
		for k, exp := range d.seen {
			if exp.Before(now) {
				delete(d.seen, k)
			}
		}
		d.nextGC = now.Add(d.ttl)
	}

	return false, nil
}

// NewEventDeduper builds a Redis deduper and falls back to in-memory on failure.
func NewEventDeduper(addr, pass string, db int, ttl time.Duration) (EventDeduper, error) {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if addr == "" {
		return NewMemoryEventDeduper(ttl), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: pass,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return NewMemoryEventDeduper(ttl), err
	}

	return &redisEventDeduper{
		client: client,
		prefix: "flw:webhook",
		ttl:    ttl,
	}, nil
}

// WebhookDedup answers repeated deliveries of the same successful charge
// with 200 "ignored" so the gateway stops retrying. Only charges that
// would be acted upon are recorded.
func WebhookDedup(deduper EventDeduper, logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if deduper == nil {
				return next(c)
			}

			req := c.Request()
			if req.Body == nil {
				return next(c)
			}

			rawBody, err := io.ReadAll(req.Body)
			if err != nil {
				return next(c)
			}
			req.Body = io.NopCloser(bytes.NewBuffer(rawBody))
			if len(rawBody) == 0 {
				return next(c)
			}

			var event models.WebhookEvent
			if err := json.Unmarshal(rawBody, &event); err != nil || !event.CompletedSuccessfully() {
				return next(c)
			}
			id := event.Data.ID.String()
			if id == "" {
				return next(c)
			}

			isDuplicate, err := deduper.Seen(req.Context(), id)
			if err != nil {
				logger.Warn("webhook dedup unavailable", zap.Error(err))
				return next(c)
			}
			if isDuplicate {
				logger.Info("duplicate webhook delivery",
					zap.String("transaction_id", id),
					zap.String("tx_ref", event.Data.TxRef),
				)
				return c.JSON(http.StatusOK, models.APIResponse{Status: models.ResponseIgnored})
			}

			return next(c)
		}
	}
}
