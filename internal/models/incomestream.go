package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// IncomeStream is an expected income source paying into a specific account.
// It cascades with both its owning user and its funding account; an income
// stream cannot outlive the account it deposits into.
type IncomeStream struct {
	ID     uuid.UUID
	UserID uuid.UUID

	// Name is the display name. Required.
	Name string

	// TypicalAmount is the expected per-payment amount.
	TypicalAmount decimal.Decimal

	Frequency IncomeFrequency
	Domain    FinancialDomain

	// AccountID is the funding account the income deposits into.
	AccountID uuid.UUID

	// LastReceivedDate/Amount record the most recent observed payment.
	LastReceivedDate   *time.Time
	LastReceivedAmount *decimal.Decimal

	// NextExpectedDate is the predicted next payment; the window bounds
	// express prediction uncertainty for irregular payers.
	NextExpectedDate        *time.Time
	NextExpectedWindowStart *time.Time
	NextExpectedWindowEnd   *time.Time

	IsActive bool
	Notes    string

	CreatedAt time.Time
	UpdatedAt time.Time
}
