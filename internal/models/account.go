package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Account is a financial account (checking, savings, credit card, ...).
// It owns its Transactions and funds IncomeStreams; both cascade when the
// account is deleted. Bills that point at it as a default payment account
// merely lose the reference.
type Account struct {
	ID     uuid.UUID
	UserID uuid.UUID

	// Name is the display name. Required.
	Name string

	// Institution is the bank or issuer, if known.
	Institution string

	// AccountType is a free-form label like "Checking" or "Credit Card". Required.
	AccountType string

	Domain FinancialDomain

	// CurrentBalance is the present balance; negative for debt accounts.
	CurrentBalance decimal.Decimal

	// SafeMinimumBalance is the floor the forecast treats as a shortfall
	// threshold rather than zero.
	SafeMinimumBalance decimal.Decimal

	// IncludeInForecast excludes the account from projections when false.
	// Nil means unset; the store defaults it to true on insert.
	IncludeInForecast *bool

	// IsActive defaults to true on insert when nil.
	IsActive *bool

	// ExternalAccountID and LastSyncedAt track an upstream bank-feed record,
	// when one exists.
	ExternalAccountID string
	LastSyncedAt      *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}
