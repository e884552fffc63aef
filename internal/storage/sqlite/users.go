package sqlite

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/moneymatters/backend/internal/metrics"
	"github.com/moneymatters/backend/internal/models"
	"github.com/moneymatters/backend/internal/storage"
)

const userColumns = `id, email, name, time_zone, default_forecast_horizon_days, created_at, updated_at`

// CreateUser inserts a new user, applying the documented defaults for
// time zone and forecast horizon when unset.
func (s *SQLiteStore) CreateUser(ctx context.Context, user *models.User) error {
	defer metrics.Observe("user.create")()

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.TimeZone == "" {
		user.TimeZone = models.DefaultTimeZone
	}
	if user.DefaultForecastHorizonDays == 0 {
		user.DefaultForecastHorizonDays = models.DefaultForecastHorizonDays
	}
	now := s.now()
	user.CreatedAt, user.UpdatedAt = now, now

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		user.ID.String(), user.Email, user.Name, user.TimeZone,
		user.DefaultForecastHorizonDays, formatTime(user.CreatedAt), formatTime(user.UpdatedAt),
	)
	return mapErr("failed to insert user", err)
}

func scanUser(sc rowScanner) (*models.User, error) {
	var (
		u                    models.User
		id, created, updated string
	)
	if err := sc.Scan(&id, &u.Email, &u.Name, &u.TimeZone,
		&u.DefaultForecastHorizonDays, &created, &updated); err != nil {
		return nil, err
	}

	var err error
	if u.ID, err = parseUUID(id); err != nil {
		return nil, err
	}
	if u.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	if u.UpdatedAt, err = parseTime(updated); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUser retrieves a user by ID.
func (s *SQLiteStore) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := scanUser(s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id.String()))
	if err != nil {
		return nil, mapErr(fmt.Sprintf("failed to get user %s", id), err)
	}
	return user, nil
}

// GetUserByEmail retrieves a user by exact, case-sensitive email match.
func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := scanUser(s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email))
	if err != nil {
		return nil, mapErr(fmt.Sprintf("failed to get user by email %q", email), err)
	}
	return user, nil
}

// UpdateUser updates an existing user and refreshes its UpdatedAt.
func (s *SQLiteStore) UpdateUser(ctx context.Context, user *models.User) error {
	defer metrics.Observe("user.update")()

	now := s.touch(user.CreatedAt)
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET email = ?, name = ?, time_zone = ?,
			default_forecast_horizon_days = ?, updated_at = ?
		 WHERE id = ?`,
		user.Email, user.Name, user.TimeZone,
		user.DefaultForecastHorizonDays, formatTime(now), user.ID.String(),
	)
	if err != nil {
		return mapErr(fmt.Sprintf("failed to update user %s", user.ID), err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("failed to update user %s: %w", user.ID, storage.ErrNotFound)
	}
	user.UpdatedAt = now
	return nil
}

// DeleteUser removes a user. Everything the user owns cascades with it.
func (s *SQLiteStore) DeleteUser(ctx context.Context, id uuid.UUID) error {
	defer metrics.Observe("user.delete")()

	res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id.String())
	if err != nil {
		return mapErr(fmt.Sprintf("failed to delete user %s", id), err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("failed to delete user %s: %w", id, storage.ErrNotFound)
	}
	return nil
}

// ListUsers returns all users ordered by creation time.
func (s *SQLiteStore) ListUsers(ctx context.Context) ([]*models.User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at`)
	if err != nil {
		return nil, mapErr("failed to list users", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}
	return users, nil
}
