package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.etcd.io/bbolt"

	"github.com/zombor/cashclose/internal/closing"
)

const reportsBucket = "reports"

// ErrReportNotFound is returned when no report is stored under an id
var ErrReportNotFound = errors.New("report not found")

// DB stores reviewed reports as opaque JSON blobs keyed by id
type DB interface {
	// SaveReport inserts the report or replaces the one stored under its id
	SaveReport(ctx context.Context, report *closing.DailyReport) error

	// GetReport retrieves a report by ID
	GetReport(ctx context.Context, id string) (*closing.DailyReport, error)

	// ListReports returns every report, most recently saved first
	ListReports(ctx context.Context) ([]*closing.DailyReport, error)

	// DeleteReport removes a report
	DeleteReport(ctx context.Context, id string) error

	// Close closes the database connection
	Close() error
}

// BoltDB implements the DB interface using BoltDB
type BoltDB struct {
	db *bbolt.DB
}

// NewBoltDB opens (or creates) the database file and its bucket
func NewBoltDB(path string) (*BoltDB, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening boltdb: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(reportsBucket))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating buckets: %w", err)
	}

	return &BoltDB{db: db}, nil
}

// SaveReport upserts a report under its id
func (b *BoltDB) SaveReport(_ context.Context, report *closing.DailyReport) error {
	if report.ID == "" {
		return errors.New("report id is required")
	}
	return b.db.Update(func(tx *bbolt.Tx) error {
		data, err := json.Marshal(report)
		if err != nil {
			return fmt.Errorf("marshaling report: %w", err)
		}
		return tx.Bucket([]byte(reportsBucket)).Put([]byte(report.ID), data)
	})
}

// GetReport retrieves a report by ID
func (b *BoltDB) GetReport(_ context.Context, id string) (*closing.DailyReport, error) {
	var report *closing.DailyReport
	err := b.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket([]byte(reportsBucket)).Get([]byte(id))
		if data == nil {
			return fmt.Errorf("%w: %s", ErrReportNotFound, id)
		}
		return json.Unmarshal(data, &report)
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

// ListReports returns all reports ordered by UpdatedAt, newest first
func (b *BoltDB) ListReports(_ context.Context) ([]*closing.DailyReport, error) {
	reports := make([]*closing.DailyReport, 0)
	err := b.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(reportsBucket)).ForEach(func(k, v []byte) error {
			var report closing.DailyReport
			if err := json.Unmarshal(v, &report); err != nil {
				return fmt.Errorf("unmarshaling report %s: %w", k, err)
			}
			reports = append(reports, &report)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sortByRecency(reports)
	return reports, nil
}

// DeleteReport removes a report from the database
func (b *BoltDB) DeleteReport(_ context.Context, id string) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(reportsBucket))
		if bucket.Get([]byte(id)) == nil {
			return fmt.Errorf("%w: %s", ErrReportNotFound, id)
		}
		return bucket.Delete([]byte(id))
	})
}

// Close closes the database connection
func (b *BoltDB) Close() error {
	return b.db.Close()
}

// sortByRecency orders reports newest save first, ties broken by id
func sortByRecency(reports []*closing.DailyReport) {
	sort.SliceStable(reports, func(i, j int) bool {
		if !reports[i].UpdatedAt.Equal(reports[j].UpdatedAt) {
			return reports[i].UpdatedAt.After(reports[j].UpdatedAt)
		}
		return reports[i].ID < reports[j].ID
	})
}
