package funding

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/moneymatters/backend/internal/models"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decp(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func goal(name string, strategy models.GoalFundingStrategy, target, current string) *models.Goal {
	return &models.Goal{
		ID:              uuid.New(),
		Name:            name,
		TargetAmount:    dec(target),
		CurrentAmount:   dec(current),
		FundingStrategy: strategy,
		Priority:        5,
		IsActive:        true,
	}
}

func TestResolve(t *testing.T) {
	income := IncomeContext{
		PeriodIncome:     dec("6000"),
		AvailableSurplus: dec("1200"),
	}

	tests := []struct {
		name          string
		goal          *models.Goal
		wantAmount    string
		wantRemainder string
		wantErr       bool
	}{
		{
			name: "fixed amount within gap",
			goal: func() *models.Goal {
				g := goal("Emergency Fund", models.FundingFixedAmount, "20000", "15000")
				g.FixedContributionAmount = decp("500")
				return g
			}(),
			wantAmount:    "500",
			wantRemainder: "0",
		},
		{
			name: "fixed amount clamped to remaining gap",
			goal: func() *models.Goal {
				g := goal("Emergency Fund", models.FundingFixedAmount, "20000", "19800")
				g.FixedContributionAmount = decp("500")
				return g
			}(),
			wantAmount:    "200",
			wantRemainder: "300",
		},
		{
			name: "fixed amount zero is valid",
			goal: func() *models.Goal {
				g := goal("Paused Goal", models.FundingFixedAmount, "1000", "0")
				g.FixedContributionAmount = decp("0")
				return g
			}(),
			wantAmount:    "0",
			wantRemainder: "0",
		},
		{
			name: "fixed amount without contribution is rejected",
			goal: goal("Broken", models.FundingFixedAmount, "1000", "0"),
			wantErr: true,
		},
		{
			name: "negative fixed amount is rejected",
			goal: func() *models.Goal {
				g := goal("Broken", models.FundingFixedAmount, "1000", "0")
				g.FixedContributionAmount = decp("-10")
				return g
			}(),
			wantErr: true,
		},
		{
			name: "percent of income",
			goal: func() *models.Goal {
				g := goal("Vacation", models.FundingPercentOfIncome, "5000", "0")
				g.PercentOfIncome = decp("10")
				return g
			}(),
			wantAmount:    "600",
			wantRemainder: "0",
		},
		{
			name: "percent of income rounds to cents",
			goal: func() *models.Goal {
				g := goal("Vacation", models.FundingPercentOfIncome, "5000", "0")
				g.PercentOfIncome = decp("3.333")
				return g
			}(),
			wantAmount:    "199.98",
			wantRemainder: "0",
		},
		{
			name: "percent without percentage is rejected",
			goal: goal("Broken", models.FundingPercentOfIncome, "1000", "0"),
			wantErr: true,
		},
		{
			name: "percent of zero is rejected",
			goal: func() *models.Goal {
				g := goal("Broken", models.FundingPercentOfIncome, "1000", "0")
				g.PercentOfIncome = decp("0")
				return g
			}(),
			wantErr: true,
		},
		{
			name: "percent above hundred is rejected",
			goal: func() *models.Goal {
				g := goal("Broken", models.FundingPercentOfIncome, "1000", "0")
				g.PercentOfIncome = decp("100.01")
				return g
			}(),
			wantErr: true,
		},
		{
			name:          "surplus claims the available pool",
			goal:          goal("Vacation Fund", models.FundingSurplus, "5000", "1500"),
			wantAmount:    "1200",
			wantRemainder: "0",
		},
		{
			name:          "surplus clamped to remaining gap",
			goal:          goal("Almost Done", models.FundingSurplus, "1600", "1500"),
			wantAmount:    "100",
			wantRemainder: "1100",
		},
		{
			name:    "unknown strategy is rejected",
			goal:    goal("Broken", models.GoalFundingStrategy(99), "1000", "0"),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Resolve(tt.goal, income)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidGoalConfiguration) {
					t.Fatalf("Resolve error = %v, want ErrInvalidGoalConfiguration", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve failed: %v", err)
			}
			if c.GoalID != tt.goal.ID.String() {
				t.Errorf("GoalID = %s, want %s", c.GoalID, tt.goal.ID)
			}
			if !c.Amount.Equal(dec(tt.wantAmount)) {
				t.Errorf("Amount = %s, want %s", c.Amount, tt.wantAmount)
			}
			if !c.Remainder.Equal(dec(tt.wantRemainder)) {
				t.Errorf("Remainder = %s, want %s", c.Remainder, tt.wantRemainder)
			}
		})
	}
}

func TestResolveNegativeSurplus(t *testing.T) {
	g := goal("Vacation Fund", models.FundingSurplus, "5000", "0")
	c, err := Resolve(g, IncomeContext{AvailableSurplus: dec("-300")})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if !c.Amount.IsZero() {
		t.Errorf("Amount = %s, want 0 when the pool is negative", c.Amount)
	}
}

func TestResolvePlan(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	emergency := goal("Emergency Fund", models.FundingFixedAmount, "20000", "15000")
	emergency.FixedContributionAmount = decp("500")
	emergency.Priority = 1
	emergency.CreatedAt = base

	laptop := goal("New Laptop", models.FundingFixedAmount, "3000", "1000")
	laptop.FixedContributionAmount = decp("300")
	laptop.Priority = 2
	laptop.CreatedAt = base.Add(time.Hour)

	vacation := goal("Vacation Fund", models.FundingSurplus, "5000", "1500")
	vacation.Priority = 1 // high priority, still evaluated after fixed obligations
	vacation.CreatedAt = base.Add(2 * time.Hour)

	income := IncomeContext{
		PeriodIncome:     dec("6000"),
		AvailableSurplus: dec("1200"),
	}

	// Deliberately shuffled input; the plan must order by strategy then priority.
	plan, err := ResolvePlan([]*models.Goal{vacation, laptop, emergency}, income)
	if err != nil {
		t.Fatalf("ResolvePlan failed: %v", err)
	}
	if len(plan) != 3 {
		t.Fatalf("plan length = %d, want 3", len(plan))
	}

	if plan[0].GoalID != emergency.ID.String() {
		t.Errorf("plan[0] = %s, want emergency fund first", plan[0].GoalID)
	}
	if plan[1].GoalID != laptop.ID.String() {
		t.Errorf("plan[1] = %s, want laptop second", plan[1].GoalID)
	}
	if plan[2].GoalID != vacation.ID.String() {
		t.Errorf("plan[2] = %s, want surplus goal last", plan[2].GoalID)
	}

	// 1200 pool minus 500 and 300 fixed claims leaves 400 for the surplus goal.
	if !plan[2].Amount.Equal(dec("400")) {
		t.Errorf("surplus contribution = %s, want 400", plan[2].Amount)
	}
}

func TestResolvePlanTieBreakByCreation(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	older := goal("Older", models.FundingFixedAmount, "1000", "0")
	older.FixedContributionAmount = decp("100")
	older.CreatedAt = base

	newer := goal("Newer", models.FundingFixedAmount, "1000", "0")
	newer.FixedContributionAmount = decp("100")
	newer.CreatedAt = base.Add(time.Minute)

	plan, err := ResolvePlan([]*models.Goal{newer, older}, IncomeContext{})
	if err != nil {
		t.Fatalf("ResolvePlan failed: %v", err)
	}
	if plan[0].GoalID != older.ID.String() {
		t.Errorf("equal priority must order by creation, got %s first", plan[0].GoalID)
	}
}

func TestResolvePlanPropagatesConfigurationError(t *testing.T) {
	broken := goal("Broken", models.FundingPercentOfIncome, "1000", "0")
	if _, err := ResolvePlan([]*models.Goal{broken}, IncomeContext{}); !errors.Is(err, ErrInvalidGoalConfiguration) {
		t.Fatalf("ResolvePlan error = %v, want ErrInvalidGoalConfiguration", err)
	}
}
