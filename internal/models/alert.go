package models

import (
	"time"

	"github.com/google/uuid"
)

// Alert is a system-generated notification: cash shortfall ahead, bill at
// risk, income delayed, and so on.
//
// The related-entity links are informational; deleting the referenced
// account/bill/goal/income stream clears the link but never deletes the alert.
type Alert struct {
	ID     uuid.UUID
	UserID uuid.UUID

	Type     AlertType
	Severity AlertSeverity
	State    AlertState

	Title   string
	Message string

	// RecommendedAction is an optional suggested remedy shown to the user.
	RecommendedAction string

	// Domain scopes the alert to Personal or Business when set.
	Domain *FinancialDomain

	RelatedAccountID      *uuid.UUID
	RelatedBillID         *uuid.UUID
	RelatedGoalID         *uuid.UUID
	RelatedIncomeStreamID *uuid.UUID

	TriggeredAt    time.Time
	AcknowledgedAt *time.Time
	SnoozedUntil   *time.Time
	ResolvedAt     *time.Time

	// ExpiresAt, when set, makes the alert invisible to readers after it
	// passes. Expiry is a read-time filter only; the row is not mutated.
	ExpiresAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsExpired reports whether the alert has lapsed: unresolved, with an
// ExpiresAt at or before now.
func (a *Alert) IsExpired(now time.Time) bool {
	return a.State != AlertResolved && a.ExpiresAt != nil && !a.ExpiresAt.After(now)
}
