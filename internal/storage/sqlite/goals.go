package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/moneymatters/backend/internal/metrics"
	"github.com/moneymatters/backend/internal/models"
	"github.com/moneymatters/backend/internal/storage"
)

const goalColumns = `id, user_id, name, target_amount, current_amount,
	target_date, domain, funding_strategy, fixed_contribution_amount,
	percent_of_income, priority, is_active, notes, created_at, updated_at`

// CreateGoal inserts a new goal, defaulting Priority to the midpoint.
func (s *SQLiteStore) CreateGoal(ctx context.Context, goal *models.Goal) error {
	defer metrics.Observe("goal.create")()

	if goal.ID == uuid.Nil {
		goal.ID = uuid.New()
	}
	if goal.Priority == 0 {
		goal.Priority = models.DefaultPriority
	}
	now := s.now()
	goal.CreatedAt, goal.UpdatedAt = now, now

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO goals (`+goalColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		goal.ID.String(), goal.UserID.String(), goal.Name,
		formatMoney(goal.TargetAmount), formatMoney(goal.CurrentAmount),
		formatTime(goal.TargetDate), int(goal.Domain), int(goal.FundingStrategy),
		formatMoneyPtr(goal.FixedContributionAmount),
		formatMoneyPtr(goal.PercentOfIncome),
		goal.Priority, boolInt(goal.IsActive), goal.Notes,
		formatTime(goal.CreatedAt), formatTime(goal.UpdatedAt),
	)
	return mapErr("failed to insert goal", err)
}

func scanGoal(sc rowScanner) (*models.Goal, error) {
	var (
		g                                models.Goal
		id, userID, target, current      string
		targetDate                       string
		domain, strategy, isActive       int
		fixedAmount, percent             sql.NullString
		created, updated                 string
	)
	if err := sc.Scan(&id, &userID, &g.Name, &target, &current, &targetDate,
		&domain, &strategy, &fixedAmount, &percent, &g.Priority, &isActive,
		&g.Notes, &created, &updated); err != nil {
		return nil, err
	}

	var err error
	if g.ID, err = parseUUID(id); err != nil {
		return nil, err
	}
	if g.UserID, err = parseUUID(userID); err != nil {
		return nil, err
	}
	if g.TargetAmount, err = parseMoney(target); err != nil {
		return nil, err
	}
	if g.CurrentAmount, err = parseMoney(current); err != nil {
		return nil, err
	}
	if g.TargetDate, err = parseTime(targetDate); err != nil {
		return nil, err
	}
	g.Domain = models.FinancialDomain(domain)
	g.FundingStrategy = models.GoalFundingStrategy(strategy)
	if g.FixedContributionAmount, err = parseMoneyPtr(fixedAmount); err != nil {
		return nil, err
	}
	if g.PercentOfIncome, err = parseMoneyPtr(percent); err != nil {
		return nil, err
	}
	g.IsActive = isActive != 0
	if g.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	if g.UpdatedAt, err = parseTime(updated); err != nil {
		return nil, err
	}
	return &g, nil
}

// GetGoal retrieves a goal by ID.
func (s *SQLiteStore) GetGoal(ctx context.Context, id uuid.UUID) (*models.Goal, error) {
	goal, err := scanGoal(s.db.QueryRowContext(ctx,
		`SELECT `+goalColumns+` FROM goals WHERE id = ?`, id.String()))
	if err != nil {
		return nil, mapErr(fmt.Sprintf("failed to get goal %s", id), err)
	}
	return goal, nil
}

// UpdateGoal updates an existing goal.
func (s *SQLiteStore) UpdateGoal(ctx context.Context, goal *models.Goal) error {
	defer metrics.Observe("goal.update")()

	now := s.touch(goal.CreatedAt)
	res, err := s.db.ExecContext(ctx,
		`UPDATE goals SET name = ?, target_amount = ?, current_amount = ?,
			target_date = ?, domain = ?, funding_strategy = ?,
			fixed_contribution_amount = ?, percent_of_income = ?, priority = ?,
			is_active = ?, notes = ?, updated_at = ?
		 WHERE id = ?`,
		goal.Name, formatMoney(goal.TargetAmount), formatMoney(goal.CurrentAmount),
		formatTime(goal.TargetDate), int(goal.Domain), int(goal.FundingStrategy),
		formatMoneyPtr(goal.FixedContributionAmount),
		formatMoneyPtr(goal.PercentOfIncome),
		goal.Priority, boolInt(goal.IsActive), goal.Notes,
		formatTime(now), goal.ID.String(),
	)
	if err != nil {
		return mapErr(fmt.Sprintf("failed to update goal %s", goal.ID), err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("failed to update goal %s: %w", goal.ID, storage.ErrNotFound)
	}
	goal.UpdatedAt = now
	return nil
}

// DeleteGoal removes a goal. Its goal-account links cascade; transactions
// that referenced it survive with the link cleared.
func (s *SQLiteStore) DeleteGoal(ctx context.Context, id uuid.UUID) error {
	defer metrics.Observe("goal.delete")()

	res, err := s.db.ExecContext(ctx, `DELETE FROM goals WHERE id = ?`, id.String())
	if err != nil {
		return mapErr(fmt.Sprintf("failed to delete goal %s", id), err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("failed to delete goal %s: %w", id, storage.ErrNotFound)
	}
	return nil
}

// ListGoals returns a user's goals ordered for funding evaluation: ascending
// priority, ties broken by creation order.
func (s *SQLiteStore) ListGoals(ctx context.Context, userID uuid.UUID) ([]*models.Goal, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+goalColumns+` FROM goals
		 WHERE user_id = ? ORDER BY priority, created_at`,
		userID.String())
	if err != nil {
		return nil, mapErr("failed to list goals", err)
	}
	defer rows.Close()

	var goals []*models.Goal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan goal: %w", err)
		}
		goals = append(goals, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate goals: %w", err)
	}
	return goals, nil
}

// AddGoalContribution applies a contribution inside a single transaction.
// The goal's CurrentAmount never exceeds TargetAmount: an overshooting
// contribution is clamped to the remaining gap and the excess is returned as
// remainder for the caller to reallocate.
func (s *SQLiteStore) AddGoalContribution(ctx context.Context, goalID uuid.UUID, amount decimal.Decimal) (applied, remainder decimal.Decimal, err error) {
	defer metrics.Observe("goal.add_contribution")()

	if amount.IsNegative() {
		return decimal.Zero, decimal.Zero, fmt.Errorf("contribution to goal %s must not be negative, got %s", goalID, amount)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var target, current, createdAt string
	err = tx.QueryRowContext(ctx,
		`SELECT target_amount, current_amount, created_at FROM goals WHERE id = ?`,
		goalID.String()).Scan(&target, &current, &createdAt)
	if err != nil {
		return decimal.Zero, decimal.Zero, mapErr(fmt.Sprintf("failed to load goal %s", goalID), err)
	}

	targetAmount, err := parseMoney(target)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	currentAmount, err := parseMoney(current)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	created, err := parseTime(createdAt)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	gap := targetAmount.Sub(currentAmount)
	if gap.IsNegative() {
		gap = decimal.Zero
	}
	applied = amount
	if applied.GreaterThan(gap) {
		applied = gap
	}
	remainder = amount.Sub(applied)

	_, err = tx.ExecContext(ctx,
		`UPDATE goals SET current_amount = ?, updated_at = ? WHERE id = ?`,
		formatMoney(currentAmount.Add(applied)), formatTime(s.touch(created)),
		goalID.String(),
	)
	if err != nil {
		return decimal.Zero, decimal.Zero, mapErr(fmt.Sprintf("failed to apply contribution to goal %s", goalID), err)
	}

	if err := tx.Commit(); err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("failed to commit contribution: %w", err)
	}
	return applied, remainder, nil
}

const goalAccountColumns = `id, goal_id, account_id, created_at, updated_at`

// LinkGoalAccount creates a goal-to-account link. The (goal, account) pair is
// unique; relinking an existing pair fails with ErrUniquenessViolation.
func (s *SQLiteStore) LinkGoalAccount(ctx context.Context, link *models.GoalAccount) error {
	defer metrics.Observe("goal_account.link")()

	if link.ID == uuid.Nil {
		link.ID = uuid.New()
	}
	now := s.now()
	link.CreatedAt, link.UpdatedAt = now, now

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO goal_accounts (`+goalAccountColumns+`) VALUES (?, ?, ?, ?, ?)`,
		link.ID.String(), link.GoalID.String(), link.AccountID.String(),
		formatTime(link.CreatedAt), formatTime(link.UpdatedAt),
	)
	return mapErr("failed to link goal account", err)
}

// UnlinkGoalAccount removes the link between a goal and an account.
func (s *SQLiteStore) UnlinkGoalAccount(ctx context.Context, goalID, accountID uuid.UUID) error {
	defer metrics.Observe("goal_account.unlink")()

	res, err := s.db.ExecContext(ctx,
		`DELETE FROM goal_accounts WHERE goal_id = ? AND account_id = ?`,
		goalID.String(), accountID.String())
	if err != nil {
		return mapErr("failed to unlink goal account", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("failed to unlink goal %s from account %s: %w", goalID, accountID, storage.ErrNotFound)
	}
	return nil
}

// ListGoalAccounts returns a goal's account links.
func (s *SQLiteStore) ListGoalAccounts(ctx context.Context, goalID uuid.UUID) ([]*models.GoalAccount, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+goalAccountColumns+` FROM goal_accounts
		 WHERE goal_id = ? ORDER BY created_at`,
		goalID.String())
	if err != nil {
		return nil, mapErr("failed to list goal accounts", err)
	}
	defer rows.Close()

	var links []*models.GoalAccount
	for rows.Next() {
		var (
			ga                             models.GoalAccount
			id, gID, aID, created, updated string
		)
		if err := rows.Scan(&id, &gID, &aID, &created, &updated); err != nil {
			return nil, fmt.Errorf("failed to scan goal account: %w", err)
		}
		if ga.ID, err = parseUUID(id); err != nil {
			return nil, err
		}
		if ga.GoalID, err = parseUUID(gID); err != nil {
			return nil, err
		}
		if ga.AccountID, err = parseUUID(aID); err != nil {
			return nil, err
		}
		if ga.CreatedAt, err = parseTime(created); err != nil {
			return nil, err
		}
		if ga.UpdatedAt, err = parseTime(updated); err != nil {
			return nil, err
		}
		links = append(links, &ga)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate goal accounts: %w", err)
	}
	return links, nil
}
