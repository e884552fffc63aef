// Package alerts implements the alert lifecycle state machine.
//
// States and edges:
//
//	New -> Acknowledged -> {Snoozed, Resolved}
//	Snoozed -> {Acknowledged, Resolved}
//	Resolved is terminal; a recurring condition gets a fresh alert.
//
// Expiry is not a state: a lapsed ExpiresAt hides the alert from readers but
// never mutates it. Callers that want a hard stop must resolve explicitly.
package alerts

import (
	"errors"
	"fmt"
	"time"

	"github.com/moneymatters/backend/internal/models"
)

// ErrInvalidStateTransition is returned for an illegal transition, including
// snoozing without a future SnoozedUntil.
var ErrInvalidStateTransition = errors.New("invalid state transition")

// Apply moves the alert to target, mutating its state and the matching
// timestamp in place. It returns whether the alert changed: resolving an
// already-resolved alert is a no-op, not an error.
//
// Snoozing requires snoozedUntil to be set and strictly in the future
// relative to now; acknowledge and resolve ignore snoozedUntil.
func Apply(a *models.Alert, target models.AlertState, now time.Time, snoozedUntil *time.Time) (bool, error) {
	switch target {
	case models.AlertAcknowledged:
		if a.State == models.AlertResolved {
			return false, fmt.Errorf("%s -> %s: %w", a.State, target, ErrInvalidStateTransition)
		}
		t := now
		a.AcknowledgedAt = &t
		a.State = models.AlertAcknowledged
		return true, nil

	case models.AlertSnoozed:
		if a.State == models.AlertResolved {
			return false, fmt.Errorf("%s -> %s: %w", a.State, target, ErrInvalidStateTransition)
		}
		if snoozedUntil == nil {
			return false, fmt.Errorf("snooze requires a timestamp: %w", ErrInvalidStateTransition)
		}
		if !snoozedUntil.After(now) {
			return false, fmt.Errorf("snooze until %s is not in the future: %w", snoozedUntil.Format(time.RFC3339), ErrInvalidStateTransition)
		}
		until := *snoozedUntil
		a.SnoozedUntil = &until
		a.State = models.AlertSnoozed
		return true, nil

	case models.AlertResolved:
		if a.State == models.AlertResolved {
			return false, nil
		}
		t := now
		a.ResolvedAt = &t
		a.State = models.AlertResolved
		return true, nil

	default:
		// New is the creation state only; nothing transitions back into it.
		return false, fmt.Errorf("%s -> %s: %w", a.State, target, ErrInvalidStateTransition)
	}
}
