// Package notify fans verified payment outcomes out to side channels.
package notify

import (
	"context"
	"errors"

	"storepay/internal/models"
)

// Notifier receives payment outcomes that were acted upon.
type Notifier interface {
	Notify(ctx context.Context, outcome models.TransactionOutcome) error
}

// Nop discards every outcome.
type Nop struct{}

func (Nop) Notify(context.Context, models.TransactionOutcome) error { return nil }

// Multi delivers to every notifier, collecting failures.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, outcome models.TransactionOutcome) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, outcome); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Combine drops nil notifiers and returns Nop when none remain.
func Combine(notifiers ...Notifier) Notifier {
	var live Multi
	for _, n := range notifiers {
		if n != nil {
			live = append(live, n)
		}
	}
	switch len(live) {
	case 0:
		return Nop{}
	case 1:
		return live[0]
	default:
		return live
	}
}
