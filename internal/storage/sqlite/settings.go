package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/moneymatters/backend/internal/metrics"
	"github.com/moneymatters/backend/internal/models"
	"github.com/moneymatters/backend/internal/storage"
)

const settingColumns = `id, user_id, setting_key, setting_value, created_at, updated_at`

// CreateSetting inserts a new per-user setting. The (user, key) pair is
// unique; a duplicate fails with ErrUniquenessViolation.
func (s *SQLiteStore) CreateSetting(ctx context.Context, setting *models.Setting) error {
	defer metrics.Observe("setting.create")()

	if setting.ID == uuid.Nil {
		setting.ID = uuid.New()
	}
	now := s.now()
	setting.CreatedAt, setting.UpdatedAt = now, now

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO settings (`+settingColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		setting.ID.String(), setting.UserID.String(), setting.Key,
		setting.Value, formatTime(setting.CreatedAt), formatTime(setting.UpdatedAt),
	)
	return mapErr("failed to insert setting", err)
}

// UpsertSetting creates the setting or, when the (user, key) pair already
// exists, replaces its value inside a single transaction. The existing row
// keeps its ID and CreatedAt so preference refreshes do not churn identity.
func (s *SQLiteStore) UpsertSetting(ctx context.Context, setting *models.Setting) error {
	defer metrics.Observe("setting.upsert")()

	op := fmt.Sprintf("failed to upsert setting %q for user %s", setting.Key, setting.UserID)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var id, created string
	err = tx.QueryRowContext(ctx,
		`SELECT id, created_at FROM settings WHERE user_id = ? AND setting_key = ?`,
		setting.UserID.String(), setting.Key).Scan(&id, &created)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if setting.ID == uuid.Nil {
			setting.ID = uuid.New()
		}
		now := s.now()
		setting.CreatedAt, setting.UpdatedAt = now, now
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO settings (`+settingColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
			setting.ID.String(), setting.UserID.String(), setting.Key,
			setting.Value, formatTime(setting.CreatedAt), formatTime(setting.UpdatedAt),
		); err != nil {
			return mapErr(op, err)
		}
	case err != nil:
		return mapErr(op, err)
	default:
		if setting.ID, err = parseUUID(id); err != nil {
			return err
		}
		if setting.CreatedAt, err = parseTime(created); err != nil {
			return err
		}
		setting.UpdatedAt = s.touch(setting.CreatedAt)
		if _, err := tx.ExecContext(ctx,
			`UPDATE settings SET setting_value = ?, updated_at = ? WHERE id = ?`,
			setting.Value, formatTime(setting.UpdatedAt), setting.ID.String(),
		); err != nil {
			return mapErr(op, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit setting upsert: %w", err)
	}
	return nil
}

func scanSetting(sc rowScanner) (*models.Setting, error) {
	var (
		st                           models.Setting
		id, userID, created, updated string
	)
	if err := sc.Scan(&id, &userID, &st.Key, &st.Value, &created, &updated); err != nil {
		return nil, err
	}

	var err error
	if st.ID, err = parseUUID(id); err != nil {
		return nil, err
	}
	if st.UserID, err = parseUUID(userID); err != nil {
		return nil, err
	}
	if st.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	if st.UpdatedAt, err = parseTime(updated); err != nil {
		return nil, err
	}
	return &st, nil
}

// GetSetting retrieves a setting by its (user, key) pair.
func (s *SQLiteStore) GetSetting(ctx context.Context, userID uuid.UUID, key string) (*models.Setting, error) {
	setting, err := scanSetting(s.db.QueryRowContext(ctx,
		`SELECT `+settingColumns+` FROM settings WHERE user_id = ? AND setting_key = ?`,
		userID.String(), key))
	if err != nil {
		return nil, mapErr(fmt.Sprintf("failed to get setting %q for user %s", key, userID), err)
	}
	return setting, nil
}

// UpdateSetting updates an existing setting's key and value.
func (s *SQLiteStore) UpdateSetting(ctx context.Context, setting *models.Setting) error {
	defer metrics.Observe("setting.update")()

	now := s.touch(setting.CreatedAt)
	res, err := s.db.ExecContext(ctx,
		`UPDATE settings SET setting_key = ?, setting_value = ?, updated_at = ? WHERE id = ?`,
		setting.Key, setting.Value, formatTime(now), setting.ID.String(),
	)
	if err != nil {
		return mapErr(fmt.Sprintf("failed to update setting %s", setting.ID), err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("failed to update setting %s: %w", setting.ID, storage.ErrNotFound)
	}
	setting.UpdatedAt = now
	return nil
}

// DeleteSetting removes a setting.
func (s *SQLiteStore) DeleteSetting(ctx context.Context, id uuid.UUID) error {
	defer metrics.Observe("setting.delete")()

	res, err := s.db.ExecContext(ctx, `DELETE FROM settings WHERE id = ?`, id.String())
	if err != nil {
		return mapErr(fmt.Sprintf("failed to delete setting %s", id), err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("failed to delete setting %s: %w", id, storage.ErrNotFound)
	}
	return nil
}

// ListSettings returns a user's settings ordered by key.
func (s *SQLiteStore) ListSettings(ctx context.Context, userID uuid.UUID) ([]*models.Setting, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+settingColumns+` FROM settings WHERE user_id = ? ORDER BY setting_key`,
		userID.String())
	if err != nil {
		return nil, mapErr("failed to list settings", err)
	}
	defer rows.Close()

	var settings []*models.Setting
	for rows.Next() {
		st, err := scanSetting(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan setting: %w", err)
		}
		settings = append(settings, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate settings: %w", err)
	}
	return settings, nil
}
