package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Bill is a recurring financial obligation.
type Bill struct {
	ID     uuid.UUID
	UserID uuid.UUID

	// Name is the display name. Required.
	Name string

	Amount    decimal.Decimal
	Frequency BillFrequency

	// DayOfMonth anchors monthly-style frequencies; DayOfWeek anchors weekly
	// ones. Only the anchor matching the frequency is set.
	DayOfMonth *int
	DayOfWeek  *int

	NextDueDate time.Time
	Domain      FinancialDomain

	// DefaultAccountID is the account the bill is normally paid from.
	// Cleared (not cascaded) if that account is deleted.
	DefaultAccountID *uuid.UUID

	// Priority orders bills when funds are tight; lower means more urgent.
	Priority int

	IsAutoPay bool
	IsActive  bool
	Notes     string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// DefaultPriority is the midpoint priority for new bills and goals.
const DefaultPriority = 5
