package models

import (
	"time"

	"github.com/google/uuid"
)

// ForecastSnapshot caches one forecast computation for a (user, domain,
// horizon) key. Multiple snapshots per key may coexist; the newest
// GeneratedAt wins on lookup.
type ForecastSnapshot struct {
	ID     uuid.UUID
	UserID uuid.UUID

	Domain      FinancialDomain
	HorizonDays int

	GeneratedAt time.Time

	// StartDate..EndDate is the coverage window. A snapshot whose window no
	// longer contains "now" is stale.
	StartDate time.Time
	EndDate   time.Time

	// ForecastData is the opaque serialized projection produced by the
	// forecast engine. Byte-identical for identical inputs.
	ForecastData string

	// RunwayDays is days until projected shortfall; nil when no shortfall is
	// projected within the horizon.
	RunwayDays *int

	Status StatusIndicator

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsStale reports whether now falls outside the coverage window.
func (s *ForecastSnapshot) IsStale(now time.Time) bool {
	return now.Before(s.StartDate) || now.After(s.EndDate)
}
