package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/moneymatters/backend/internal/metrics"
	"github.com/moneymatters/backend/internal/models"
	"github.com/moneymatters/backend/internal/storage"
)

const billColumns = `id, user_id, name, amount, frequency, day_of_month,
	day_of_week, next_due_date, domain, default_account_id, priority,
	is_auto_pay, is_active, notes, created_at, updated_at`

// CreateBill inserts a new bill, defaulting Priority to the midpoint.
func (s *SQLiteStore) CreateBill(ctx context.Context, bill *models.Bill) error {
	defer metrics.Observe("bill.create")()

	if bill.ID == uuid.Nil {
		bill.ID = uuid.New()
	}
	if bill.Priority == 0 {
		bill.Priority = models.DefaultPriority
	}
	now := s.now()
	bill.CreatedAt, bill.UpdatedAt = now, now

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO bills (`+billColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		bill.ID.String(), bill.UserID.String(), bill.Name,
		formatMoney(bill.Amount), int(bill.Frequency),
		intPtrValue(bill.DayOfMonth), intPtrValue(bill.DayOfWeek),
		formatTime(bill.NextDueDate), int(bill.Domain),
		formatUUIDPtr(bill.DefaultAccountID), bill.Priority,
		boolInt(bill.IsAutoPay), boolInt(bill.IsActive), bill.Notes,
		formatTime(bill.CreatedAt), formatTime(bill.UpdatedAt),
	)
	return mapErr("failed to insert bill", err)
}

func scanBill(sc rowScanner) (*models.Bill, error) {
	var (
		b                      models.Bill
		id, userID, amount     string
		frequency, domain      int
		dayOfMonth, dayOfWeek  sql.NullInt64
		nextDue                string
		defaultAccountID       sql.NullString
		isAutoPay, isActive    int
		created, updated       string
	)
	if err := sc.Scan(&id, &userID, &b.Name, &amount, &frequency,
		&dayOfMonth, &dayOfWeek, &nextDue, &domain, &defaultAccountID,
		&b.Priority, &isAutoPay, &isActive, &b.Notes, &created, &updated); err != nil {
		return nil, err
	}

	var err error
	if b.ID, err = parseUUID(id); err != nil {
		return nil, err
	}
	if b.UserID, err = parseUUID(userID); err != nil {
		return nil, err
	}
	if b.Amount, err = parseMoney(amount); err != nil {
		return nil, err
	}
	b.Frequency = models.BillFrequency(frequency)
	b.Domain = models.FinancialDomain(domain)
	b.DayOfMonth = nullIntPtr(dayOfMonth)
	b.DayOfWeek = nullIntPtr(dayOfWeek)
	if b.NextDueDate, err = parseTime(nextDue); err != nil {
		return nil, err
	}
	if b.DefaultAccountID, err = parseUUIDPtr(defaultAccountID); err != nil {
		return nil, err
	}
	b.IsAutoPay = isAutoPay != 0
	b.IsActive = isActive != 0
	if b.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	if b.UpdatedAt, err = parseTime(updated); err != nil {
		return nil, err
	}
	return &b, nil
}

// GetBill retrieves a bill by ID.
func (s *SQLiteStore) GetBill(ctx context.Context, id uuid.UUID) (*models.Bill, error) {
	bill, err := scanBill(s.db.QueryRowContext(ctx,
		`SELECT `+billColumns+` FROM bills WHERE id = ?`, id.String()))
	if err != nil {
		return nil, mapErr(fmt.Sprintf("failed to get bill %s", id), err)
	}
	return bill, nil
}

// UpdateBill updates an existing bill.
func (s *SQLiteStore) UpdateBill(ctx context.Context, bill *models.Bill) error {
	defer metrics.Observe("bill.update")()

	now := s.touch(bill.CreatedAt)
	res, err := s.db.ExecContext(ctx,
		`UPDATE bills SET name = ?, amount = ?, frequency = ?, day_of_month = ?,
			day_of_week = ?, next_due_date = ?, domain = ?, default_account_id = ?,
			priority = ?, is_auto_pay = ?, is_active = ?, notes = ?, updated_at = ?
		 WHERE id = ?`,
		bill.Name, formatMoney(bill.Amount), int(bill.Frequency),
		intPtrValue(bill.DayOfMonth), intPtrValue(bill.DayOfWeek),
		formatTime(bill.NextDueDate), int(bill.Domain),
		formatUUIDPtr(bill.DefaultAccountID), bill.Priority,
		boolInt(bill.IsAutoPay), boolInt(bill.IsActive), bill.Notes,
		formatTime(now), bill.ID.String(),
	)
	if err != nil {
		return mapErr(fmt.Sprintf("failed to update bill %s", bill.ID), err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("failed to update bill %s: %w", bill.ID, storage.ErrNotFound)
	}
	bill.UpdatedAt = now
	return nil
}

// DeleteBill removes a bill. Transactions that referenced it survive with the
// link cleared.
func (s *SQLiteStore) DeleteBill(ctx context.Context, id uuid.UUID) error {
	defer metrics.Observe("bill.delete")()

	res, err := s.db.ExecContext(ctx, `DELETE FROM bills WHERE id = ?`, id.String())
	if err != nil {
		return mapErr(fmt.Sprintf("failed to delete bill %s", id), err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("failed to delete bill %s: %w", id, storage.ErrNotFound)
	}
	return nil
}

// ListBills returns a user's bills ordered by next due date, soonest first.
func (s *SQLiteStore) ListBills(ctx context.Context, userID uuid.UUID) ([]*models.Bill, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+billColumns+` FROM bills WHERE user_id = ? ORDER BY next_due_date`,
		userID.String())
	if err != nil {
		return nil, mapErr("failed to list bills", err)
	}
	defer rows.Close()

	var bills []*models.Bill
	for rows.Next() {
		b, err := scanBill(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bill: %w", err)
		}
		bills = append(bills, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bills: %w", err)
	}
	return bills, nil
}
