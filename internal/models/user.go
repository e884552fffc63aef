package models

import (
	"time"

	"github.com/google/uuid"
)

// User is the root aggregate. Deleting a User cascades to every entity the
// user owns: accounts, bills, income streams, goals, alerts, snapshots,
// and settings.
type User struct {
	// ID is the unique identifier for the user.
	ID uuid.UUID

	// Email is the user's email address. Unique across the system,
	// case-sensitive exact match.
	Email string

	// Name is the display name. Required.
	Name string

	// TimeZone is an IANA zone name (e.g. "America/New_York") used to anchor
	// recurrence dates. Required.
	TimeZone string

	// DefaultForecastHorizonDays is the horizon used when a forecast request
	// does not specify one.
	DefaultForecastHorizonDays int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// DefaultTimeZone is applied when a new user does not specify one.
const DefaultTimeZone = "America/New_York"

// DefaultForecastHorizonDays is applied when a new user does not specify one.
const DefaultForecastHorizonDays = 30
