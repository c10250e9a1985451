package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"abhaya/internal/sos/lifecycle"
	id "abhaya/pkg/domain"
	"abhaya/pkg/platform/sentinel"
)

const uniqueViolation = "23505"

// PostgresStore persists records in the sos_alerts table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Save(ctx context.Context, rec Record) error {
	query := `
		INSERT INTO sos_alerts (
			id, code, session_id, tourist_name, trigger, countdown_remaining,
			latitude, longitude, location_name, notified_channels, created_at, dispatched_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	channels := rec.NotifiedChannels
	if channels == nil {
		channels = []string{}
	}
	_, err := s.db.ExecContext(ctx, query,
		rec.AlertID.String(),
		rec.Code,
		rec.SessionID.String(),
		rec.TouristName,
		string(rec.Trigger),
		rec.CountdownRemaining,
		rec.Location.Latitude,
		rec.Location.Longitude,
		rec.Location.Name,
		pq.Array(channels),
		rec.CreatedAt.UTC(),
		rec.DispatchedAt.UTC(),
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("save sos alert: %w", err)
	}
	return nil
}

const selectColumns = `
	id, code, session_id, tourist_name, trigger, countdown_remaining,
	latitude, longitude, location_name, notified_channels, created_at, dispatched_at
`

func (s *PostgresStore) FindByID(ctx context.Context, alertID id.AlertID) (*Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+selectColumns+` FROM sos_alerts WHERE id = $1`, alertID.String())
	rec, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find sos alert: %w", err)
	}
	return rec, nil
}

func (s *PostgresStore) ListRecent(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+selectColumns+` FROM sos_alerts ORDER BY dispatched_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list sos alerts: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sos alert: %w", err)
		}
		out = append(out, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list sos alerts: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*Record, error) {
	var (
		rec                 Record
		alertID, sessionID  string
		trigger             string
		latitude, longitude sql.NullFloat64
		channels            pq.StringArray
	)
	err := row.Scan(
		&alertID,
		&rec.Code,
		&sessionID,
		&rec.TouristName,
		&trigger,
		&rec.CountdownRemaining,
		&latitude,
		&longitude,
		&rec.Location.Name,
		&channels,
		&rec.CreatedAt,
		&rec.DispatchedAt,
	)
	if err != nil {
		return nil, err
	}
	if rec.AlertID, err = id.ParseAlertID(alertID); err != nil {
		return nil, err
	}
	if rec.SessionID, err = id.ParseSessionID(sessionID); err != nil {
		return nil, err
	}
	rec.Trigger = lifecycle.Trigger(trigger)
	rec.Location.Latitude = latitude.Float64
	rec.Location.Longitude = longitude.Float64
	rec.NotifiedChannels = []string(channels)
	return &rec, nil
}
