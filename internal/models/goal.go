package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Goal is a savings goal or planned purchase.
//
// FixedContributionAmount is meaningful only under the FixedAmount strategy,
// PercentOfIncome only under the PercentOfIncome strategy. A goal whose
// strategy's required field is absent or out of range is an unconfigured goal
// and is rejected at resolution time rather than silently defaulted.
type Goal struct {
	ID     uuid.UUID
	UserID uuid.UUID

	// Name is the display name. Required.
	Name string

	TargetAmount decimal.Decimal

	// CurrentAmount accumulates completed contributions. The funding resolver
	// never pushes it past TargetAmount; overshoot is clamped and reported.
	CurrentAmount decimal.Decimal

	TargetDate time.Time
	Domain     FinancialDomain

	FundingStrategy GoalFundingStrategy

	// FixedContributionAmount is the per-period contribution for the
	// FixedAmount strategy. Must be non-nil and >= 0 for that strategy.
	FixedContributionAmount *decimal.Decimal

	// PercentOfIncome is the share of period income for the PercentOfIncome
	// strategy, in (0, 100].
	PercentOfIncome *decimal.Decimal

	// Priority orders goals for funding; lower is funded first.
	Priority int

	IsActive bool
	Notes    string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// GoalAccount links a goal to an account it draws from or saves into.
// Pure join entity: the (GoalID, AccountID) pair is unique and the row
// cascades when either side is deleted.
type GoalAccount struct {
	ID        uuid.UUID
	GoalID    uuid.UUID
	AccountID uuid.UUID

	CreatedAt time.Time
	UpdatedAt time.Time
}

// RemainingGap returns how much is still needed to reach the target,
// never negative.
func (g *Goal) RemainingGap() decimal.Decimal {
	gap := g.TargetAmount.Sub(g.CurrentAmount)
	if gap.IsNegative() {
		return decimal.Zero
	}
	return gap
}
