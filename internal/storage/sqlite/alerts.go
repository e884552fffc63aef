package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/moneymatters/backend/internal/alerts"
	"github.com/moneymatters/backend/internal/metrics"
	"github.com/moneymatters/backend/internal/models"
	"github.com/moneymatters/backend/internal/storage"
)

const alertColumns = `id, user_id, type, severity, state, title, message,
	recommended_action, domain, related_account_id, related_bill_id,
	related_goal_id, related_income_stream_id, triggered_at, acknowledged_at,
	snoozed_until, resolved_at, expires_at, created_at, updated_at`

// CreateAlert inserts a new alert. New alerts start in the New state with
// TriggeredAt defaulting to now. Duplicate suppression (same user, type, and
// related entity) is the generating collaborator's job, not the store's.
func (s *SQLiteStore) CreateAlert(ctx context.Context, alert *models.Alert) error {
	defer metrics.Observe("alert.create")()

	if alert.ID == uuid.Nil {
		alert.ID = uuid.New()
	}
	if alert.TriggeredAt.IsZero() {
		alert.TriggeredAt = s.now()
	}
	now := s.now()
	alert.CreatedAt, alert.UpdatedAt = now, now

	var domain any
	if alert.Domain != nil {
		domain = int(*alert.Domain)
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO alerts (`+alertColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		alert.ID.String(), alert.UserID.String(), int(alert.Type),
		int(alert.Severity), int(alert.State), alert.Title, alert.Message,
		alert.RecommendedAction, domain,
		formatUUIDPtr(alert.RelatedAccountID), formatUUIDPtr(alert.RelatedBillID),
		formatUUIDPtr(alert.RelatedGoalID), formatUUIDPtr(alert.RelatedIncomeStreamID),
		formatTime(alert.TriggeredAt),
		formatTimePtr(alert.AcknowledgedAt), formatTimePtr(alert.SnoozedUntil),
		formatTimePtr(alert.ResolvedAt), formatTimePtr(alert.ExpiresAt),
		formatTime(alert.CreatedAt), formatTime(alert.UpdatedAt),
	)
	return mapErr("failed to insert alert", err)
}

func scanAlert(sc rowScanner) (*models.Alert, error) {
	var (
		a                                models.Alert
		id, userID                       string
		typ, severity, state             int
		domain                           sql.NullInt64
		accID, billID, goalID, streamID  sql.NullString
		triggered                        string
		acked, snoozed, resolved, expiry sql.NullString
		created, updated                 string
	)
	if err := sc.Scan(&id, &userID, &typ, &severity, &state, &a.Title,
		&a.Message, &a.RecommendedAction, &domain, &accID, &billID, &goalID,
		&streamID, &triggered, &acked, &snoozed, &resolved, &expiry,
		&created, &updated); err != nil {
		return nil, err
	}

	var err error
	if a.ID, err = parseUUID(id); err != nil {
		return nil, err
	}
	if a.UserID, err = parseUUID(userID); err != nil {
		return nil, err
	}
	a.Type = models.AlertType(typ)
	a.Severity = models.AlertSeverity(severity)
	a.State = models.AlertState(state)
	if domain.Valid {
		d := models.FinancialDomain(domain.Int64)
		a.Domain = &d
	}
	if a.RelatedAccountID, err = parseUUIDPtr(accID); err != nil {
		return nil, err
	}
	if a.RelatedBillID, err = parseUUIDPtr(billID); err != nil {
		return nil, err
	}
	if a.RelatedGoalID, err = parseUUIDPtr(goalID); err != nil {
		return nil, err
	}
	if a.RelatedIncomeStreamID, err = parseUUIDPtr(streamID); err != nil {
		return nil, err
	}
	if a.TriggeredAt, err = parseTime(triggered); err != nil {
		return nil, err
	}
	if a.AcknowledgedAt, err = parseTimePtr(acked); err != nil {
		return nil, err
	}
	if a.SnoozedUntil, err = parseTimePtr(snoozed); err != nil {
		return nil, err
	}
	if a.ResolvedAt, err = parseTimePtr(resolved); err != nil {
		return nil, err
	}
	if a.ExpiresAt, err = parseTimePtr(expiry); err != nil {
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

// GetAlert retrieves an alert by ID.
func (s *SQLiteStore) GetAlert(ctx context.Context, id uuid.UUID) (*models.Alert, error) {
	alert, err := scanAlert(s.db.QueryRowContext(ctx,
		`SELECT `+alertColumns+` FROM alerts WHERE id = ?`, id.String()))
	if err != nil {
		return nil, mapErr(fmt.Sprintf("failed to get alert %s", id), err)
	}
	return alert, nil
}

// DeleteAlert removes an alert.
func (s *SQLiteStore) DeleteAlert(ctx context.Context, id uuid.UUID) error {
	defer metrics.Observe("alert.delete")()

	res, err := s.db.ExecContext(ctx, `DELETE FROM alerts WHERE id = ?`, id.String())
	if err != nil {
		return mapErr(fmt.Sprintf("failed to delete alert %s", id), err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("failed to delete alert %s: %w", id, storage.ErrNotFound)
	}
	return nil
}

// ListAlerts returns a user's alerts, newest first. Unless IncludeExpired is
// set, unresolved alerts whose ExpiresAt has passed are filtered out at read
// time; their rows are never mutated by expiry.
func (s *SQLiteStore) ListAlerts(ctx context.Context, userID uuid.UUID, opts storage.ListAlertsOptions) ([]*models.Alert, error) {
	query := `SELECT ` + alertColumns + ` FROM alerts WHERE user_id = ?`
	args := []any{userID.String()}

	if !opts.IncludeExpired {
		query += ` AND (expires_at IS NULL OR expires_at > ? OR state = ?)`
		args = append(args, formatTime(s.now()), int(models.AlertResolved))
	}
	if len(opts.States) > 0 {
		placeholders := make([]string, len(opts.States))
		for i, st := range opts.States {
			placeholders[i] = "?"
			args = append(args, int(st))
		}
		query += ` AND state IN (` + strings.Join(placeholders, ", ") + `)`
	}
	query += ` ORDER BY triggered_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapErr("failed to list alerts", err)
	}
	defer rows.Close()

	var result []*models.Alert
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan alert: %w", err)
		}
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate alerts: %w", err)
	}
	return result, nil
}

// TransitionAlert applies the lifecycle state machine to one alert inside a
// single transaction, so state and its timestamp can never be observed apart.
func (s *SQLiteStore) TransitionAlert(ctx context.Context, alertID uuid.UUID, target models.AlertState, snoozedUntil *time.Time) (*models.Alert, error) {
	defer metrics.Observe("alert.transition")()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	alert, err := scanAlert(tx.QueryRowContext(ctx,
		`SELECT `+alertColumns+` FROM alerts WHERE id = ?`, alertID.String()))
	if err != nil {
		return nil, mapErr(fmt.Sprintf("failed to load alert %s", alertID), err)
	}

	changed, err := alerts.Apply(alert, target, s.now(), snoozedUntil)
	if err != nil {
		return nil, fmt.Errorf("failed to transition alert %s: %w", alertID, err)
	}
	if !changed {
		// Idempotent resolve of a resolved alert: nothing to write.
		return alert, nil
	}

	alert.UpdatedAt = s.touch(alert.CreatedAt)
	_, err = tx.ExecContext(ctx,
		`UPDATE alerts SET state = ?, acknowledged_at = ?, snoozed_until = ?,
			resolved_at = ?, updated_at = ?
		 WHERE id = ?`,
		int(alert.State), formatTimePtr(alert.AcknowledgedAt),
		formatTimePtr(alert.SnoozedUntil), formatTimePtr(alert.ResolvedAt),
		formatTime(alert.UpdatedAt), alertID.String(),
	)
	if err != nil {
		return nil, mapErr(fmt.Sprintf("failed to store alert %s transition", alertID), err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit alert transition: %w", err)
	}
	return alert, nil
}
