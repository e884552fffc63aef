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

const transactionColumns = `id, account_id, amount, date, description,
	normalized_merchant, category, is_reconciled, bill_id, income_stream_id,
	goal_id, transfer_account_id, notes, external_transaction_id,
	created_at, updated_at`

// CreateTransaction inserts a new ledger entry against an existing account.
// The optional bill/income-stream/goal/transfer links must reference existing
// rows or the engine rejects the insert.
func (s *SQLiteStore) CreateTransaction(ctx context.Context, txn *models.Transaction) error {
	defer metrics.Observe("transaction.create")()

	if txn.ID == uuid.Nil {
		txn.ID = uuid.New()
	}
	now := s.now()
	txn.CreatedAt, txn.UpdatedAt = now, now

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO transactions (`+transactionColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		txn.ID.String(), txn.AccountID.String(), formatMoney(txn.Amount),
		formatTime(txn.Date), txn.Description, txn.NormalizedMerchant,
		txn.Category, boolInt(txn.IsReconciled),
		formatUUIDPtr(txn.BillID), formatUUIDPtr(txn.IncomeStreamID),
		formatUUIDPtr(txn.GoalID), formatUUIDPtr(txn.TransferAccountID),
		txn.Notes, txn.ExternalTransactionID,
		formatTime(txn.CreatedAt), formatTime(txn.UpdatedAt),
	)
	return mapErr("failed to insert transaction", err)
}

func scanTransaction(sc rowScanner) (*models.Transaction, error) {
	var (
		t                                    models.Transaction
		id, accountID, amount, date          string
		isReconciled                         int
		billID, streamID, goalID, transferID sql.NullString
		created, updated                     string
	)
	if err := sc.Scan(&id, &accountID, &amount, &date, &t.Description,
		&t.NormalizedMerchant, &t.Category, &isReconciled,
		&billID, &streamID, &goalID, &transferID,
		&t.Notes, &t.ExternalTransactionID, &created, &updated); err != nil {
		return nil, err
	}

	var err error
	if t.ID, err = parseUUID(id); err != nil {
		return nil, err
	}
	if t.AccountID, err = parseUUID(accountID); err != nil {
		return nil, err
	}
	if t.Amount, err = parseMoney(amount); err != nil {
		return nil, err
	}
	if t.Date, err = parseTime(date); err != nil {
		return nil, err
	}
	t.IsReconciled = isReconciled != 0
	if t.BillID, err = parseUUIDPtr(billID); err != nil {
		return nil, err
	}
	if t.IncomeStreamID, err = parseUUIDPtr(streamID); err != nil {
		return nil, err
	}
	if t.GoalID, err = parseUUIDPtr(goalID); err != nil {
		return nil, err
	}
	if t.TransferAccountID, err = parseUUIDPtr(transferID); err != nil {
		return nil, err
	}
	if t.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	if t.UpdatedAt, err = parseTime(updated); err != nil {
		return nil, err
	}
	return &t, nil
}

// GetTransaction retrieves a transaction by ID.
func (s *SQLiteStore) GetTransaction(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	txn, err := scanTransaction(s.db.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE id = ?`, id.String()))
	if err != nil {
		return nil, mapErr(fmt.Sprintf("failed to get transaction %s", id), err)
	}
	return txn, nil
}

// UpdateTransaction updates an existing transaction.
func (s *SQLiteStore) UpdateTransaction(ctx context.Context, txn *models.Transaction) error {
	defer metrics.Observe("transaction.update")()

	now := s.touch(txn.CreatedAt)
	res, err := s.db.ExecContext(ctx,
		`UPDATE transactions SET account_id = ?, amount = ?, date = ?,
			description = ?, normalized_merchant = ?, category = ?,
			is_reconciled = ?, bill_id = ?, income_stream_id = ?, goal_id = ?,
			transfer_account_id = ?, notes = ?, external_transaction_id = ?,
			updated_at = ?
		 WHERE id = ?`,
		txn.AccountID.String(), formatMoney(txn.Amount), formatTime(txn.Date),
		txn.Description, txn.NormalizedMerchant, txn.Category,
		boolInt(txn.IsReconciled),
		formatUUIDPtr(txn.BillID), formatUUIDPtr(txn.IncomeStreamID),
		formatUUIDPtr(txn.GoalID), formatUUIDPtr(txn.TransferAccountID),
		txn.Notes, txn.ExternalTransactionID,
		formatTime(now), txn.ID.String(),
	)
	if err != nil {
		return mapErr(fmt.Sprintf("failed to update transaction %s", txn.ID), err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("failed to update transaction %s: %w", txn.ID, storage.ErrNotFound)
	}
	txn.UpdatedAt = now
	return nil
}

// DeleteTransaction removes a single transaction.
func (s *SQLiteStore) DeleteTransaction(ctx context.Context, id uuid.UUID) error {
	defer metrics.Observe("transaction.delete")()

	res, err := s.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id.String())
	if err != nil {
		return mapErr(fmt.Sprintf("failed to delete transaction %s", id), err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("failed to delete transaction %s: %w", id, storage.ErrNotFound)
	}
	return nil
}

// ListTransactions returns an account's transactions, newest date first.
func (s *SQLiteStore) ListTransactions(ctx context.Context, accountID uuid.UUID) ([]*models.Transaction, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions
		 WHERE account_id = ? ORDER BY date DESC`,
		accountID.String())
	if err != nil {
		return nil, mapErr("failed to list transactions", err)
	}
	defer rows.Close()

	var txns []*models.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txns = append(txns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}
	return txns, nil
}
