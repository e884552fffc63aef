package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/moneymatters/backend/internal/metrics"
	"github.com/moneymatters/backend/internal/models"
)

const snapshotColumns = `id, user_id, domain, horizon_days, generated_at,
	start_date, end_date, forecast_data, runway_days, status,
	created_at, updated_at`

// PutForecastSnapshot stores a forecast result. Older snapshots for the same
// (user, domain, horizon) key are kept; lookups pick the newest GeneratedAt.
func (s *SQLiteStore) PutForecastSnapshot(ctx context.Context, snap *models.ForecastSnapshot) error {
	defer metrics.Observe("forecast_snapshot.put")()

	if snap.ID == uuid.Nil {
		snap.ID = uuid.New()
	}
	if snap.GeneratedAt.IsZero() {
		snap.GeneratedAt = s.now()
	}
	now := s.now()
	snap.CreatedAt, snap.UpdatedAt = now, now

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO forecast_snapshots (`+snapshotColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		snap.ID.String(), snap.UserID.String(), int(snap.Domain),
		snap.HorizonDays, formatTime(snap.GeneratedAt),
		formatTime(snap.StartDate), formatTime(snap.EndDate),
		snap.ForecastData, intPtrValue(snap.RunwayDays), int(snap.Status),
		formatTime(snap.CreatedAt), formatTime(snap.UpdatedAt),
	)
	return mapErr("failed to insert forecast snapshot", err)
}

func scanSnapshot(sc rowScanner) (*models.ForecastSnapshot, error) {
	var (
		snap                              models.ForecastSnapshot
		id, userID                        string
		domain, status                    int
		generated, start, end             string
		runway                            sql.NullInt64
		created, updated                  string
	)
	if err := sc.Scan(&id, &userID, &domain, &snap.HorizonDays, &generated,
		&start, &end, &snap.ForecastData, &runway, &status,
		&created, &updated); err != nil {
		return nil, err
	}

	var err error
	if snap.ID, err = parseUUID(id); err != nil {
		return nil, err
	}
	if snap.UserID, err = parseUUID(userID); err != nil {
		return nil, err
	}
	snap.Domain = models.FinancialDomain(domain)
	snap.Status = models.StatusIndicator(status)
	if snap.GeneratedAt, err = parseTime(generated); err != nil {
		return nil, err
	}
	if snap.StartDate, err = parseTime(start); err != nil {
		return nil, err
	}
	if snap.EndDate, err = parseTime(end); err != nil {
		return nil, err
	}
	snap.RunwayDays = nullIntPtr(runway)
	if snap.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	if snap.UpdatedAt, err = parseTime(updated); err != nil {
		return nil, err
	}
	return &snap, nil
}

// LatestForecastSnapshot returns the newest snapshot for the key, by
// GeneratedAt descending.
func (s *SQLiteStore) LatestForecastSnapshot(ctx context.Context, userID uuid.UUID, domain models.FinancialDomain, horizonDays int) (*models.ForecastSnapshot, error) {
	snap, err := scanSnapshot(s.db.QueryRowContext(ctx,
		`SELECT `+snapshotColumns+` FROM forecast_snapshots
		 WHERE user_id = ? AND domain = ? AND horizon_days = ?
		 ORDER BY generated_at DESC LIMIT 1`,
		userID.String(), int(domain), horizonDays))
	if err != nil {
		return nil, mapErr(fmt.Sprintf("failed to get latest snapshot for user %s domain %s horizon %d",
			userID, domain, horizonDays), err)
	}
	return snap, nil
}
