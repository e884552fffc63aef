// Package funding computes expected goal contributions for a period.
//
// Three strategies exist. FixedAmount and PercentOfIncome are fixed
// obligations; Surplus claims whatever cash remains after those have been
// satisfied, so surplus goals are always evaluated last. Within each group
// goals are evaluated in ascending Priority (lower funds first), ties broken
// by creation order. Contributions never push CurrentAmount past
// TargetAmount: overshoot is clamped and the clamped remainder reported so
// the caller can reallocate it.
package funding

import (
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/moneymatters/backend/internal/models"
)

// ErrInvalidGoalConfiguration is returned when a goal's strategy-required
// field is absent or out of range. A misconfigured goal is rejected, never
// silently defaulted to zero.
var ErrInvalidGoalConfiguration = errors.New("invalid goal configuration")

var hundred = decimal.NewFromInt(100)

// IncomeContext carries the period's income figures supplied by the caller.
type IncomeContext struct {
	// PeriodIncome is the income for the period, the base for
	// PercentOfIncome goals.
	PeriodIncome decimal.Decimal

	// AvailableSurplus is the balance remaining after bills and safe
	// minimums, the pool Surplus goals draw from. Claims by higher-priority
	// goals in the same plan are deducted before a surplus goal is funded.
	AvailableSurplus decimal.Decimal
}

// Contribution is one goal's resolved contribution for the period.
type Contribution struct {
	GoalID string

	// Amount is the contribution after clamping to the goal's remaining gap.
	Amount decimal.Decimal

	// Remainder is the clamped excess, zero when nothing was clamped. It is
	// reported, not dropped, so it can flow to other goals or back to the
	// account.
	Remainder decimal.Decimal
}

// Validate checks that the goal's strategy-required field is present and in
// range. FixedContributionAmount must be non-nil and >= 0 for FixedAmount;
// PercentOfIncome must be non-nil and in (0, 100] for PercentOfIncome.
func Validate(g *models.Goal) error {
	switch g.FundingStrategy {
	case models.FundingFixedAmount:
		if g.FixedContributionAmount == nil {
			return fmt.Errorf("goal %q: fixed-amount strategy without a contribution amount: %w", g.Name, ErrInvalidGoalConfiguration)
		}
		if g.FixedContributionAmount.IsNegative() {
			return fmt.Errorf("goal %q: negative contribution amount %s: %w", g.Name, g.FixedContributionAmount, ErrInvalidGoalConfiguration)
		}
	case models.FundingPercentOfIncome:
		if g.PercentOfIncome == nil {
			return fmt.Errorf("goal %q: percent-of-income strategy without a percentage: %w", g.Name, ErrInvalidGoalConfiguration)
		}
		if !g.PercentOfIncome.IsPositive() || g.PercentOfIncome.GreaterThan(hundred) {
			return fmt.Errorf("goal %q: percentage %s outside (0, 100]: %w", g.Name, g.PercentOfIncome, ErrInvalidGoalConfiguration)
		}
	case models.FundingSurplus:
		// No configuration beyond the strategy itself.
	default:
		return fmt.Errorf("goal %q: unknown funding strategy %d: %w", g.Name, g.FundingStrategy, ErrInvalidGoalConfiguration)
	}
	return nil
}

// clamp limits raw to the goal's remaining gap, returning the applied amount
// and the excess.
func clamp(g *models.Goal, raw decimal.Decimal) (amount, remainder decimal.Decimal) {
	gap := g.RemainingGap()
	if raw.GreaterThan(gap) {
		return gap, raw.Sub(gap)
	}
	return raw, decimal.Zero
}

// Resolve computes a single goal's contribution for the period. Surplus
// goals see the full AvailableSurplus; use ResolvePlan when multiple goals
// compete for the same pool.
func Resolve(g *models.Goal, income IncomeContext) (Contribution, error) {
	if err := Validate(g); err != nil {
		return Contribution{}, err
	}

	var raw decimal.Decimal
	switch g.FundingStrategy {
	case models.FundingFixedAmount:
		raw = *g.FixedContributionAmount
	case models.FundingPercentOfIncome:
		raw = g.PercentOfIncome.Div(hundred).Mul(income.PeriodIncome).Round(2)
	case models.FundingSurplus:
		raw = income.AvailableSurplus
		if raw.IsNegative() {
			raw = decimal.Zero
		}
	}

	amount, remainder := clamp(g, raw)
	return Contribution{GoalID: g.ID.String(), Amount: amount, Remainder: remainder}, nil
}

// ResolvePlan computes contributions for a set of goals competing for one
// period's funds. Fixed and percent goals resolve first in ascending Priority
// order; every planned amount is then deducted from the surplus pool before
// any Surplus goal claims what is left.
func ResolvePlan(goals []*models.Goal, income IncomeContext) ([]Contribution, error) {
	ordered := make([]*models.Goal, len(goals))
	copy(ordered, goals)
	sort.SliceStable(ordered, func(i, j int) bool {
		gi, gj := ordered[i], ordered[j]
		si := gi.FundingStrategy == models.FundingSurplus
		sj := gj.FundingStrategy == models.FundingSurplus
		if si != sj {
			return !si // fixed obligations before surplus
		}
		if gi.Priority != gj.Priority {
			return gi.Priority < gj.Priority
		}
		return gi.CreatedAt.Before(gj.CreatedAt)
	})

	pool := income.AvailableSurplus
	plan := make([]Contribution, 0, len(ordered))
	for _, g := range ordered {
		scoped := income
		scoped.AvailableSurplus = pool
		c, err := Resolve(g, scoped)
		if err != nil {
			return nil, err
		}
		pool = pool.Sub(c.Amount)
		plan = append(plan, c)
	}
	return plan, nil
}
