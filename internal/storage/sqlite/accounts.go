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

const accountColumns = `id, user_id, name, institution, account_type, domain,
	current_balance, safe_minimum_balance, include_in_forecast, is_active,
	external_account_id, last_synced_at, created_at, updated_at`

// CreateAccount inserts a new account owned by an existing user. Unset
// flags default to true: a fresh account is active and forecastable unless
// the caller says otherwise.
func (s *SQLiteStore) CreateAccount(ctx context.Context, account *models.Account) error {
	defer metrics.Observe("account.create")()

	if account.ID == uuid.Nil {
		account.ID = uuid.New()
	}
	if account.IncludeInForecast == nil {
		account.IncludeInForecast = boolPtr(true)
	}
	if account.IsActive == nil {
		account.IsActive = boolPtr(true)
	}
	now := s.now()
	account.CreatedAt, account.UpdatedAt = now, now

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO accounts (`+accountColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		account.ID.String(), account.UserID.String(), account.Name,
		account.Institution, account.AccountType, int(account.Domain),
		formatMoney(account.CurrentBalance), formatMoney(account.SafeMinimumBalance),
		boolInt(*account.IncludeInForecast), boolInt(*account.IsActive),
		account.ExternalAccountID, formatTimePtr(account.LastSyncedAt),
		formatTime(account.CreatedAt), formatTime(account.UpdatedAt),
	)
	return mapErr("failed to insert account", err)
}

func scanAccount(sc rowScanner) (*models.Account, error) {
	var (
		a                            models.Account
		id, userID, balance, minimum string
		domain                       int
		includeInForecast, isActive  int
		lastSynced                   sql.NullString
		created, updated             string
	)
	if err := sc.Scan(&id, &userID, &a.Name, &a.Institution, &a.AccountType,
		&domain, &balance, &minimum, &includeInForecast, &isActive,
		&a.ExternalAccountID, &lastSynced, &created, &updated); err != nil {
		return nil, err
	}

	var err error
	if a.ID, err = parseUUID(id); err != nil {
		return nil, err
	}
	if a.UserID, err = parseUUID(userID); err != nil {
		return nil, err
	}
	a.Domain = models.FinancialDomain(domain)
	if a.CurrentBalance, err = parseMoney(balance); err != nil {
		return nil, err
	}
	if a.SafeMinimumBalance, err = parseMoney(minimum); err != nil {
		return nil, err
	}
	a.IncludeInForecast = boolPtr(includeInForecast != 0)
	a.IsActive = boolPtr(isActive != 0)
	if a.LastSyncedAt, err = parseTimePtr(lastSynced); err != nil {
		return nil, err
	}
	if a.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	if a.UpdatedAt, err = parseTime(updated); err != nil {
		return nil, err
	}
	return &a, nil
}

// GetAccount retrieves an account by ID.
func (s *SQLiteStore) GetAccount(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	account, err := scanAccount(s.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = ?`, id.String()))
	if err != nil {
		return nil, mapErr(fmt.Sprintf("failed to get account %s", id), err)
	}
	return account, nil
}

// UpdateAccount updates an existing account. Nil flags are treated as the
// insert-time default, true.
func (s *SQLiteStore) UpdateAccount(ctx context.Context, account *models.Account) error {
	defer metrics.Observe("account.update")()

	if account.IncludeInForecast == nil {
		account.IncludeInForecast = boolPtr(true)
	}
	if account.IsActive == nil {
		account.IsActive = boolPtr(true)
	}
	now := s.touch(account.CreatedAt)
	res, err := s.db.ExecContext(ctx,
		`UPDATE accounts SET name = ?, institution = ?, account_type = ?,
			domain = ?, current_balance = ?, safe_minimum_balance = ?,
			include_in_forecast = ?, is_active = ?, external_account_id = ?,
			last_synced_at = ?, updated_at = ?
		 WHERE id = ?`,
		account.Name, account.Institution, account.AccountType,
		int(account.Domain), formatMoney(account.CurrentBalance),
		formatMoney(account.SafeMinimumBalance),
		boolInt(*account.IncludeInForecast), boolInt(*account.IsActive),
		account.ExternalAccountID, formatTimePtr(account.LastSyncedAt),
		formatTime(now), account.ID.String(),
	)
	if err != nil {
		return mapErr(fmt.Sprintf("failed to update account %s", account.ID), err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("failed to update account %s: %w", account.ID, storage.ErrNotFound)
	}
	account.UpdatedAt = now
	return nil
}

// DeleteAccount removes an account. Its transactions and income streams
// cascade; bills pointing at it as a default account keep the bill but lose
// the reference.
func (s *SQLiteStore) DeleteAccount(ctx context.Context, id uuid.UUID) error {
	defer metrics.Observe("account.delete")()

	res, err := s.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = ?`, id.String())
	if err != nil {
		return mapErr(fmt.Sprintf("failed to delete account %s", id), err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("failed to delete account %s: %w", id, storage.ErrNotFound)
	}
	return nil
}

// ListAccounts returns a user's accounts ordered by name.
func (s *SQLiteStore) ListAccounts(ctx context.Context, userID uuid.UUID) ([]*models.Account, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE user_id = ? ORDER BY name`,
		userID.String())
	if err != nil {
		return nil, mapErr("failed to list accounts", err)
	}
	defer rows.Close()

	var accounts []*models.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate accounts: %w", err)
	}
	return accounts, nil
}
