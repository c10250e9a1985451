package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"abhaya/internal/hazard/models"
	id "abhaya/pkg/domain"
	"abhaya/pkg/platform/sentinel"
)

const uniqueViolation = "23505"

// PostgresStore persists reports in the hazard_reports table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Save(ctx context.Context, r models.Report) error {
	query := `
		INSERT INTO hazard_reports (
			id, code, type, severity, severity_rank, description, location,
			latitude, longitude, anonymous, reporter_session_id, reporter_name, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	var reporter sql.NullString
	if r.ReporterSessionID != nil {
		reporter = sql.NullString{String: r.ReporterSessionID.String(), Valid: true}
	}
	_, err := s.db.ExecContext(ctx, query,
		r.ID.String(),
		r.Code,
		string(r.Type),
		string(r.Severity),
		r.Severity.Rank(),
		r.Description,
		r.Location,
		nullFloat(r.Latitude),
		nullFloat(r.Longitude),
		r.Anonymous,
		reporter,
		r.ReporterName,
		r.CreatedAt.UTC(),
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("save hazard report: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListRecent(ctx context.Context, filter ListFilter) ([]models.Report, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, code, type, severity, description, location,
			latitude, longitude, anonymous, reporter_session_id, reporter_name, created_at
		FROM hazard_reports
		WHERE severity_rank >= $1
		ORDER BY created_at DESC
		LIMIT $2
	`, filter.MinSeverity.Rank(), filter.limit())
	if err != nil {
		return nil, fmt.Errorf("list hazard reports: %w", err)
	}
	defer rows.Close()

	var out []models.Report
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("scan hazard report: %w", err)
		}
		out = append(out, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list hazard reports: %w", err)
	}
	return out, nil
}

func scanReport(rows *sql.Rows) (*models.Report, error) {
	var (
		r                   models.Report
		reportID            string
		typ, severity       string
		latitude, longitude sql.NullFloat64
		reporter            sql.NullString
	)
	err := rows.Scan(
		&reportID,
		&r.Code,
		&typ,
		&severity,
		&r.Description,
		&r.Location,
		&latitude,
		&longitude,
		&r.Anonymous,
		&reporter,
		&r.ReporterName,
		&r.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if r.ID, err = id.ParseReportID(reportID); err != nil {
		return nil, err
	}
	if reporter.Valid {
		sessionID, err := id.ParseSessionID(reporter.String)
		if err != nil {
			return nil, err
		}
		r.ReporterSessionID = &sessionID
	}
	r.Type = models.Type(typ)
	r.Severity = models.Severity(severity)
	if latitude.Valid && longitude.Valid {
		r.Latitude, r.Longitude = &latitude.Float64, &longitude.Float64
	}
	return &r, nil
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}
