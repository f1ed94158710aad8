package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/zombor/cashclose/internal/closing"
	"github.com/zombor/cashclose/internal/extraction"
)

// maxUploadSize covers high resolution phone photos of a sheet
const maxUploadSize = int64(50 << 20)

const persistenceWarningHeader = "X-Persistence-Warning"

// jsonError writes an error response as {"error": message}
func jsonError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{
		"error": message,
	})
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// handleIndex serves the HTML interface
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(indexHTML)
}

func contentTypeFor(filename, declared string) string {
	contentType := strings.ToLower(strings.TrimSpace(declared))
	if contentType != "" && contentType != "application/octet-stream" {
		return contentType
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".pdf":
		return "application/pdf"
	case ".heic":
		return "image/heic"
	case ".heif":
		return "image/heif"
	default:
		return "application/octet-stream"
	}
}

// handleScanReport extracts an uploaded closing sheet into a draft for review
func (s *Server) handleScanReport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		slog.Error("Error parsing multipart form", "error", err)
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			jsonError(w, "File is too large. Maximum size is 50MB. Please compress or resize your image.", http.StatusRequestEntityTooLarge)
			return
		}
		jsonError(w, "Error parsing form", http.StatusBadRequest)
		return
	}

	f, header, err := r.FormFile("file")
	if err != nil {
		slog.Error("Error getting file from form", "error", err)
		jsonError(w, "No file was selected. Please choose a closing sheet to upload.", http.StatusBadRequest)
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		slog.Error("Error reading file data", "error", err, "filename", header.Filename)
		jsonError(w, "Error reading file. Please try again.", http.StatusInternalServerError)
		return
	}
	if len(data) == 0 {
		jsonError(w, "The uploaded file is empty.", http.StatusBadRequest)
		return
	}

	contentType := contentTypeFor(header.Filename, header.Header.Get("Content-Type"))

	draft, err := s.service.ScanReport(r.Context(), header.Filename, data, contentType)
	if err != nil {
		slog.Error("Error scanning closing sheet", "filename", header.Filename, "error", err)
		code := http.StatusBadGateway
		if errors.Is(err, extraction.ErrNoStructuredOutput) {
			code = http.StatusUnprocessableEntity
		}
		jsonError(w, err.Error(), code)
		return
	}

	writeJSON(w, http.StatusOK, draft)
}

type reviewRequest struct {
	Report  *closing.DailyReport `json:"report"`
	Dismiss []int                `json:"dismiss"`
}

// handleReviewReport applies edits and dismissals to a draft and re-derives it
func (s *Server) handleReviewReport(w http.ResponseWriter, r *http.Request) {
	var req reviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Report == nil {
		jsonError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	report, err := s.service.ReviewReport(req.Report, req.Dismiss)
	if err != nil {
		if errors.Is(err, closing.ErrWarningIndex) {
			jsonError(w, err.Error(), http.StatusBadRequest)
			return
		}
		slog.Error("Error reviewing report", "id", req.Report.ID, "error", err)
		jsonError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, report)
}

// handleSaveReport persists a reviewed report
func (s *Server) handleSaveReport(w http.ResponseWriter, r *http.Request) {
	var report closing.DailyReport
	if err := json.NewDecoder(r.Body).Decode(&report); err != nil {
		jsonError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result, err := s.service.SaveReport(r.Context(), &report)
	if err != nil {
		slog.Error("Error saving report", "id", report.ID, "error", err)
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	code := http.StatusCreated
	if !result.Persisted {
		w.Header().Set(persistenceWarningHeader, result.Warning)
		code = http.StatusAccepted
	}
	writeJSON(w, code, result)
}

// listForResponse lists the reports, flagging a database failure in a header
// instead of failing the request
func (s *Server) listForResponse(w http.ResponseWriter, r *http.Request) []*closing.DailyReport {
	reports, err := s.service.ListReports(r.Context())
	if err != nil {
		slog.Error("Error listing reports", "error", err)
		w.Header().Set(persistenceWarningHeader, "Saved reports could not be loaded; showing unsaved reports only.")
	}
	if reports == nil {
		reports = []*closing.DailyReport{}
	}
	return reports
}

// handleListReports returns every report, newest save first
func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.listForResponse(w, r))
}

// handleGetReport returns a single report
func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	report, err := s.service.GetReport(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrReportNotFound) {
			jsonError(w, "Report not found", http.StatusNotFound)
			return
		}
		slog.Error("Error getting report", "id", id, "error", err)
		jsonError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, report)
}

// handleGetReportFile returns the archived sheet of a report
func (s *Server) handleGetReportFile(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	data, contentType, err := s.service.GetReportFile(r.Context(), id)
	if err != nil {
		slog.Warn("Report file not available", "id", id, "error", err)
		jsonError(w, "File not found", http.StatusNotFound)
		return
	}

	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Write(data)
}

// handleDeleteReport deletes a report
func (s *Server) handleDeleteReport(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.service.DeleteReport(r.Context(), id); err != nil {
		if errors.Is(err, ErrReportNotFound) {
			jsonError(w, "Report not found", http.StatusNotFound)
			return
		}
		slog.Error("Error deleting report", "id", id, "error", err)
		jsonError(w, "Error deleting report", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleExportCSV downloads every report as CSV
func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	reports := s.listForResponse(w, r)
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="cierres_caja.csv"`)
	if err := WriteCSV(w, reports); err != nil {
		slog.Error("Error writing csv export", "error", err)
	}
}

// handleExportXLSX downloads every report as a spreadsheet
func (s *Server) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	reports := s.listForResponse(w, r)

	var buf bytes.Buffer
	if err := WriteXLSX(&buf, reports); err != nil {
		slog.Error("Error writing xlsx export", "error", err)
		jsonError(w, "Error building spreadsheet", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="cierres_caja.xlsx"`)
	w.Write(buf.Bytes())
}

// handleDashboard returns the aggregate figures
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	metrics, err := s.service.Dashboard(r.Context())
	if err != nil {
		slog.Error("Error building dashboard", "error", err)
		w.Header().Set(persistenceWarningHeader, "Saved reports could not be loaded; showing unsaved reports only.")
	}
	writeJSON(w, http.StatusOK, metrics)
}

// handleLoadDemo saves the demo closings
func (s *Server) handleLoadDemo(w http.ResponseWriter, r *http.Request) {
	results, err := s.service.LoadDemoData(r.Context())
	if err != nil {
		slog.Error("Error loading demo data", "error", err)
		jsonError(w, "Error loading demo data", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, results)
}
