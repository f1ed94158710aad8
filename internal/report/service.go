package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/zombor/cashclose/internal/closing"
	"github.com/zombor/cashclose/internal/extraction"
)

// IDGenerator generates unique IDs for reports
type IDGenerator interface {
	Generate() string
}

// TimeSource provides the current time
type TimeSource interface {
	Now() time.Time
}

type uuidGenerator struct{}

func (uuidGenerator) Generate() string {
	return uuid.NewString()
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

// SaveResult is the outcome of saving a reviewed report. When the database
// rejects the save the report is still returned, with Persisted false.
type SaveResult struct {
	Report    *closing.DailyReport `json:"report"`
	Persisted bool                 `json:"persisted"`
	Warning   string               `json:"warning,omitempty"`
}

// Service runs the upload, review and save flow for closing reports
type Service struct {
	db          DB
	extractor   extraction.Extractor
	archive     Archive
	metrics     *Metrics
	idGenerator IDGenerator
	timeSource  TimeSource

	mu sync.Mutex
	// pending holds reviewed reports whose save failed, keyed by id
	pending map[string]*closing.DailyReport
}

// NewService creates a new Service with uuid ids and the system clock
func NewService(db DB, extractor extraction.Extractor, archive Archive, metrics *Metrics) *Service {
	return NewServiceWithDeps(db, extractor, archive, metrics, uuidGenerator{}, systemClock{})
}

// NewServiceWithDeps creates a new Service with custom dependencies for testing
func NewServiceWithDeps(db DB, extractor extraction.Extractor, archive Archive, metrics *Metrics, idGen IDGenerator, timeSrc TimeSource) *Service {
	return &Service{
		db:          db,
		extractor:   extractor,
		archive:     archive,
		metrics:     metrics,
		idGenerator: idGen,
		timeSource:  timeSrc,
		pending:     make(map[string]*closing.DailyReport),
	}
}

var (
	unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9\s\-_]`)
	repeatedSpaces      = regexp.MustCompile(`\s+`)
)

// sanitizeFilename strips phone camera names down to something short and safe
func sanitizeFilename(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))

	base = unsafeFilenameChars.ReplaceAllString(base, "")
	base = strings.TrimSpace(repeatedSpaces.ReplaceAllString(base, " "))
	if len(base) > 50 {
		base = base[:50]
	}
	if base == "" {
		base = "closing"
	}
	if ext = unsafeFilenameChars.ReplaceAllString(strings.TrimPrefix(ext, "."), ""); ext != "" {
		return base + "." + ext
	}
	return base
}

// ScanReport archives the uploaded sheet, extracts it and returns a draft for
// review. Nothing is persisted; a failed extraction leaves no trace.
func (s *Service) ScanReport(ctx context.Context, filename string, data []byte, contentType string) (*closing.DailyReport, error) {
	id := s.idGenerator.Generate()
	now := s.timeSource.Now()

	savedName, err := s.archive.Put(fmt.Sprintf("%s_%s", id, sanitizeFilename(filename)), data)
	if err != nil {
		return nil, fmt.Errorf("saving file: %w", err)
	}

	raw, err := s.extractor.Extract(ctx, data, contentType)
	if err != nil {
		slog.Error("Failed to extract closing sheet",
			"filename", filename,
			"content_type", contentType,
			"file_size", len(data),
			"error", err,
		)
		s.metrics.extraction(outcomeError)
		if delErr := s.archive.Delete(savedName); delErr != nil {
			slog.Warn("Failed to delete file", "filename", savedName, "error", delErr)
		}
		return nil, fmt.Errorf("extracting closing sheet: %w", err)
	}
	s.metrics.extraction(outcomeSuccess)

	draft := closing.Review(raw, id, now)
	draft.Filename = savedName
	draft.ContentType = contentType
	return draft, nil
}

// ReviewReport dismisses the warnings at the given indexes and re-derives the
// totals. Indexes refer to the warnings list as submitted.
func (s *Service) ReviewReport(report *closing.DailyReport, dismiss []int) (*closing.DailyReport, error) {
	r := report.Clone()

	idx := append([]int(nil), dismiss...)
	sort.Sort(sort.Reverse(sort.IntSlice(idx)))
	for i, n := range idx {
		if i > 0 && n == idx[i-1] {
			continue
		}
		if err := r.DismissWarning(n); err != nil {
			return nil, err
		}
	}

	r.Recalculate()
	return r, nil
}

// SaveReport re-derives the report and upserts it under its id. A database
// failure does not lose the report: it is kept in memory, listed with the
// others and returned with a warning.
func (s *Service) SaveReport(ctx context.Context, report *closing.DailyReport) (*SaveResult, error) {
	if report == nil {
		return nil, errors.New("report is required")
	}
	r := report.Clone()
	if r.ID == "" {
		r.ID = s.idGenerator.Generate()
	}
	r.Recalculate()

	now := s.timeSource.Now()
	r.CreatedAt = now
	existing, err := s.db.GetReport(ctx, r.ID)
	switch {
	case err == nil:
		r.CreatedAt = existing.CreatedAt
	case !errors.Is(err, ErrReportNotFound):
		slog.Warn("Failed to look up existing report", "id", r.ID, "error", err)
	}
	r.UpdatedAt = now

	if err := s.db.SaveReport(ctx, r); err != nil {
		slog.Error("Failed to persist report", "id", r.ID, "date", r.Date, "error", err)
		s.metrics.save(outcomeError, r.Status)

		s.mu.Lock()
		s.pending[r.ID] = r.Clone()
		s.mu.Unlock()

		return &SaveResult{
			Report:    r,
			Persisted: false,
			Warning:   fmt.Sprintf("The report is kept on screen but was not saved to the database: %v", err),
		}, nil
	}
	s.metrics.save(outcomeSuccess, r.Status)

	s.mu.Lock()
	delete(s.pending, r.ID)
	s.mu.Unlock()

	return &SaveResult{Report: r, Persisted: true}, nil
}

// GetReport retrieves a report by ID, unsaved reports included
func (s *Service) GetReport(ctx context.Context, id string) (*closing.DailyReport, error) {
	s.mu.Lock()
	p, ok := s.pending[id]
	s.mu.Unlock()
	if ok {
		return p.Clone(), nil
	}

	r, err := s.db.GetReport(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("getting report: %w", err)
	}
	return r, nil
}

// ListReports returns every report newest save first, with reports that failed
// to persist merged in. When the database cannot be read the unsaved reports
// are still returned along with the error.
func (s *Service) ListReports(ctx context.Context) ([]*closing.DailyReport, error) {
	stored, dbErr := s.db.ListReports(ctx)
	if dbErr != nil {
		dbErr = fmt.Errorf("listing reports: %w", dbErr)
	}

	s.mu.Lock()
	reports := make([]*closing.DailyReport, 0, len(stored)+len(s.pending))
	for _, p := range s.pending {
		reports = append(reports, p.Clone())
	}
	for _, r := range stored {
		if _, ok := s.pending[r.ID]; !ok {
			reports = append(reports, r)
		}
	}
	s.mu.Unlock()

	sortByRecency(reports)
	return reports, dbErr
}

// DeleteReport removes a report and its archived sheet
func (s *Service) DeleteReport(ctx context.Context, id string) error {
	s.mu.Lock()
	p, wasPending := s.pending[id]
	delete(s.pending, id)
	s.mu.Unlock()

	r, err := s.db.GetReport(ctx, id)
	if err != nil {
		if wasPending && errors.Is(err, ErrReportNotFound) {
			s.deleteFile(p.Filename)
			return nil
		}
		return fmt.Errorf("getting report for deletion: %w", err)
	}

	s.deleteFile(r.Filename)

	if err := s.db.DeleteReport(ctx, id); err != nil {
		return fmt.Errorf("deleting report from database: %w", err)
	}
	return nil
}

func (s *Service) deleteFile(name string) {
	if name == "" {
		return
	}
	if err := s.archive.Delete(name); err != nil {
		slog.Warn("Failed to delete file", "filename", name, "error", err)
	}
}

// GetReportFile returns the archived sheet of a report and its content type
func (s *Service) GetReportFile(ctx context.Context, id string) ([]byte, string, error) {
	r, err := s.GetReport(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if r.Filename == "" {
		return nil, "", fmt.Errorf("report %s has no archived file", id)
	}

	data, err := s.archive.Get(r.Filename)
	if err != nil {
		return nil, "", fmt.Errorf("getting report file: %w", err)
	}
	return data, r.ContentType, nil
}

// Dashboard summarizes every visible report
func (s *Service) Dashboard(ctx context.Context) (closing.DashboardMetrics, error) {
	reports, err := s.ListReports(ctx)
	return closing.Summarize(reports), err
}
