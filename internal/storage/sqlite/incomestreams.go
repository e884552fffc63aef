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

const incomeStreamColumns = `id, user_id, name, typical_amount, frequency,
	domain, account_id, last_received_date, last_received_amount,
	next_expected_date, next_expected_window_start, next_expected_window_end,
	is_active, notes, created_at, updated_at`

// CreateIncomeStream inserts a new income stream. Both the owning user and
// the funding account must exist.
func (s *SQLiteStore) CreateIncomeStream(ctx context.Context, stream *models.IncomeStream) error {
	defer metrics.Observe("income_stream.create")()

	if stream.ID == uuid.Nil {
		stream.ID = uuid.New()
	}
	now := s.now()
	stream.CreatedAt, stream.UpdatedAt = now, now

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO income_streams (`+incomeStreamColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		stream.ID.String(), stream.UserID.String(), stream.Name,
		formatMoney(stream.TypicalAmount), int(stream.Frequency),
		int(stream.Domain), stream.AccountID.String(),
		formatTimePtr(stream.LastReceivedDate), formatMoneyPtr(stream.LastReceivedAmount),
		formatTimePtr(stream.NextExpectedDate),
		formatTimePtr(stream.NextExpectedWindowStart),
		formatTimePtr(stream.NextExpectedWindowEnd),
		boolInt(stream.IsActive), stream.Notes,
		formatTime(stream.CreatedAt), formatTime(stream.UpdatedAt),
	)
	return mapErr("failed to insert income stream", err)
}

func scanIncomeStream(sc rowScanner) (*models.IncomeStream, error) {
	var (
		st                            models.IncomeStream
		id, userID, amount, accountID string
		frequency, domain, isActive   int
		lastDate, lastAmount          sql.NullString
		nextDate, winStart, winEnd    sql.NullString
		created, updated              string
	)
	if err := sc.Scan(&id, &userID, &st.Name, &amount, &frequency, &domain,
		&accountID, &lastDate, &lastAmount, &nextDate, &winStart, &winEnd,
		&isActive, &st.Notes, &created, &updated); err != nil {
		return nil, err
	}

	var err error
	if st.ID, err = parseUUID(id); err != nil {
		return nil, err
	}
	if st.UserID, err = parseUUID(userID); err != nil {
		return nil, err
	}
	if st.TypicalAmount, err = parseMoney(amount); err != nil {
		return nil, err
	}
	st.Frequency = models.IncomeFrequency(frequency)
	st.Domain = models.FinancialDomain(domain)
	if st.AccountID, err = parseUUID(accountID); err != nil {
		return nil, err
	}
	if st.LastReceivedDate, err = parseTimePtr(lastDate); err != nil {
		return nil, err
	}
	if st.LastReceivedAmount, err = parseMoneyPtr(lastAmount); err != nil {
		return nil, err
	}
	if st.NextExpectedDate, err = parseTimePtr(nextDate); err != nil {
		return nil, err
	}
	if st.NextExpectedWindowStart, err = parseTimePtr(winStart); err != nil {
		return nil, err
	}
	if st.NextExpectedWindowEnd, err = parseTimePtr(winEnd); err != nil {
		return nil, err
	}
	st.IsActive = isActive != 0
	if st.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	if st.UpdatedAt, err = parseTime(updated); err != nil {
		return nil, err
	}
	return &st, nil
}

// GetIncomeStream retrieves an income stream by ID.
func (s *SQLiteStore) GetIncomeStream(ctx context.Context, id uuid.UUID) (*models.IncomeStream, error) {
	stream, err := scanIncomeStream(s.db.QueryRowContext(ctx,
		`SELECT `+incomeStreamColumns+` FROM income_streams WHERE id = ?`, id.String()))
	if err != nil {
		return nil, mapErr(fmt.Sprintf("failed to get income stream %s", id), err)
	}
	return stream, nil
}

// UpdateIncomeStream updates an existing income stream.
func (s *SQLiteStore) UpdateIncomeStream(ctx context.Context, stream *models.IncomeStream) error {
	defer metrics.Observe("income_stream.update")()

	now := s.touch(stream.CreatedAt)
	res, err := s.db.ExecContext(ctx,
		`UPDATE income_streams SET name = ?, typical_amount = ?, frequency = ?,
			domain = ?, account_id = ?, last_received_date = ?,
			last_received_amount = ?, next_expected_date = ?,
			next_expected_window_start = ?, next_expected_window_end = ?,
			is_active = ?, notes = ?, updated_at = ?
		 WHERE id = ?`,
		stream.Name, formatMoney(stream.TypicalAmount), int(stream.Frequency),
		int(stream.Domain), stream.AccountID.String(),
		formatTimePtr(stream.LastReceivedDate), formatMoneyPtr(stream.LastReceivedAmount),
		formatTimePtr(stream.NextExpectedDate),
		formatTimePtr(stream.NextExpectedWindowStart),
		formatTimePtr(stream.NextExpectedWindowEnd),
		boolInt(stream.IsActive), stream.Notes,
		formatTime(now), stream.ID.String(),
	)
	if err != nil {
		return mapErr(fmt.Sprintf("failed to update income stream %s", stream.ID), err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("failed to update income stream %s: %w", stream.ID, storage.ErrNotFound)
	}
	stream.UpdatedAt = now
	return nil
}

// DeleteIncomeStream removes an income stream. Transactions that referenced
// it survive with the link cleared.
func (s *SQLiteStore) DeleteIncomeStream(ctx context.Context, id uuid.UUID) error {
	defer metrics.Observe("income_stream.delete")()

	res, err := s.db.ExecContext(ctx, `DELETE FROM income_streams WHERE id = ?`, id.String())
	if err != nil {
		return mapErr(fmt.Sprintf("failed to delete income stream %s", id), err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("failed to delete income stream %s: %w", id, storage.ErrNotFound)
	}
	return nil
}

// ListIncomeStreams returns a user's income streams ordered by name.
func (s *SQLiteStore) ListIncomeStreams(ctx context.Context, userID uuid.UUID) ([]*models.IncomeStream, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+incomeStreamColumns+` FROM income_streams
		 WHERE user_id = ? ORDER BY name`,
		userID.String())
	if err != nil {
		return nil, mapErr("failed to list income streams", err)
	}
	defer rows.Close()

	var streams []*models.IncomeStream
	for rows.Next() {
		st, err := scanIncomeStream(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan income stream: %w", err)
		}
		streams = append(streams, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate income streams: %w", err)
	}
	return streams, nil
}
