package report

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver

	"github.com/zombor/cashclose/internal/closing"
)

const (
	createReportsTable = `CREATE TABLE IF NOT EXISTS daily_reports (
	id          TEXT PRIMARY KEY,
	report_date TEXT NOT NULL,
	body        JSONB NOT NULL,
	saved_at    TIMESTAMPTZ NOT NULL
)`

	upsertReport = `INSERT INTO daily_reports (id, report_date, body, saved_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (id) DO UPDATE SET report_date = EXCLUDED.report_date, body = EXCLUDED.body, saved_at = EXCLUDED.saved_at`

	selectReport  = `SELECT body FROM daily_reports WHERE id = $1`
	selectReports = `SELECT body FROM daily_reports ORDER BY saved_at DESC, id`
	deleteReport  = `DELETE FROM daily_reports WHERE id = $1`
)

// PostgresDB implements the DB interface on a Postgres table holding one JSONB
// document per report
type PostgresDB struct {
	db *sql.DB
}

// NewPostgresDB connects with the pgx driver and creates the table if needed
func NewPostgresDB(ctx context.Context, dsn string) (*PostgresDB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}

	p := NewPostgresDBWithConn(db)
	if err := p.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return p, nil
}

// NewPostgresDBWithConn wraps an existing connection pool
func NewPostgresDBWithConn(db *sql.DB) *PostgresDB {
	return &PostgresDB{db: db}
}

// Migrate creates the reports table
func (p *PostgresDB) Migrate(ctx context.Context) error {
	if _, err := p.db.ExecContext(ctx, createReportsTable); err != nil {
		return fmt.Errorf("creating daily_reports table: %w", err)
	}
	return nil
}

// SaveReport upserts a report, replacing any earlier save under the same id
func (p *PostgresDB) SaveReport(ctx context.Context, report *closing.DailyReport) error {
	if report.ID == "" {
		return errors.New("report id is required")
	}
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshaling report: %w", err)
	}
	savedAt := report.UpdatedAt
	if savedAt.IsZero() {
		savedAt = time.Now()
	}
	if _, err := p.db.ExecContext(ctx, upsertReport, report.ID, report.Date, string(data), savedAt); err != nil {
		return fmt.Errorf("saving report %s: %w", report.ID, err)
	}
	return nil
}

// GetReport retrieves a report by ID
func (p *PostgresDB) GetReport(ctx context.Context, id string) (*closing.DailyReport, error) {
	var body []byte
	err := p.db.QueryRowContext(ctx, selectReport, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrReportNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("getting report %s: %w", id, err)
	}

	var report closing.DailyReport
	if err := json.Unmarshal(body, &report); err != nil {
		return nil, fmt.Errorf("unmarshaling report %s: %w", id, err)
	}
	return &report, nil
}

// ListReports returns every report, most recently saved first
func (p *PostgresDB) ListReports(ctx context.Context) ([]*closing.DailyReport, error) {
	rows, err := p.db.QueryContext(ctx, selectReports)
	if err != nil {
		return nil, fmt.Errorf("listing reports: %w", err)
	}
	defer rows.Close()

	reports := make([]*closing.DailyReport, 0)
	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("scanning report: %w", err)
		}
		var report closing.DailyReport
		if err := json.Unmarshal(body, &report); err != nil {
			return nil, fmt.Errorf("unmarshaling report: %w", err)
		}
		reports = append(reports, &report)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing reports: %w", err)
	}
	return reports, nil
}

// DeleteReport removes a report
func (p *PostgresDB) DeleteReport(ctx context.Context, id string) error {
	res, err := p.db.ExecContext(ctx, deleteReport, id)
	if err != nil {
		return fmt.Errorf("deleting report %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting report %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrReportNotFound, id)
	}
	return nil
}

// Close closes the connection pool
func (p *PostgresDB) Close() error {
	return p.db.Close()
}
