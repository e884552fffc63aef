package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Transaction is a single ledger entry on an account. The amount is signed:
// positive for money in, negative for money out.
//
// A transaction cannot outlive its owning account, but it is a durable record
// with respect to everything else: the optional links to a Bill, IncomeStream,
// Goal, or transfer-target Account are cleared, never cascaded, when the
// referenced entity is deleted.
type Transaction struct {
	ID        uuid.UUID
	AccountID uuid.UUID

	Amount decimal.Decimal
	Date   time.Time

	// Description is the ledger text. Required.
	Description string

	// NormalizedMerchant and Category are enrichment fields, empty until a
	// categorizer fills them in.
	NormalizedMerchant string
	Category           string

	IsReconciled bool

	// Optional categorization links. Nullified when the referent is deleted.
	BillID            *uuid.UUID
	IncomeStreamID    *uuid.UUID
	GoalID            *uuid.UUID
	TransferAccountID *uuid.UUID

	Notes string

	// ExternalTransactionID identifies the upstream bank-feed record, if any.
	ExternalTransactionID string

	CreatedAt time.Time
	UpdatedAt time.Time
}
