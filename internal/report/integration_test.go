package report_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/ghttp"
	"github.com/shopspring/decimal"

	"github.com/zombor/cashclose/internal/closing"
	"github.com/zombor/cashclose/internal/report"
)

// stubExtractor answers every sheet with the same extraction
type stubExtractor struct {
	raw *closing.RawExtraction
}

func (s *stubExtractor) Extract(context.Context, []byte, string) (*closing.RawExtraction, error) {
	return s.raw, nil
}

func (s *stubExtractor) Close() error {
	return nil
}

func amount(v int64) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.NewFromInt(v))
}

var _ = Describe("Integration", func() {
	var (
		db       *report.BoltDB
		archive  *report.LocalArchive
		service  *report.Service
		server   *report.Server
		ghServer *ghttp.Server
		err      error
	)

	BeforeEach(func() {
		tempDir := GinkgoT().TempDir()

		db, err = report.NewBoltDB(filepath.Join(tempDir, "test.db"))
		Expect(err).NotTo(HaveOccurred())

		archive, err = report.NewLocalArchive(filepath.Join(tempDir, "sheets"))
		Expect(err).NotTo(HaveOccurred())

		date, shift := "2023-10-26", "002"
		// a sheet where the count lost its cash line
		extractor := &stubExtractor{raw: &closing.RawExtraction{
			Date:            &date,
			ShiftNumber:     &shift,
			SystemTotal:     amount(62000),
			SystemBreakdown: &closing.RawBreakdown{Cash: amount(40000), Electronic: amount(15000), DeliveryApps: amount(7000)},
			RealTotal:       amount(61500),
			RealBreakdown:   &closing.RawBreakdown{Electronic: amount(15000), DeliveryApps: amount(7000)},
		}}

		service = report.NewService(db, extractor, archive, report.NewMetrics())
		server = report.NewServer(service, report.BasicAuth{})
		ghServer = ghttp.NewServer()
	})

	AfterEach(func() {
		if ghServer != nil {
			ghServer.Close()
		}
		if db != nil {
			db.Close()
		}
	})

	do := func(req *http.Request, out interface{}) *http.Response {
		resp, err := http.DefaultClient.Do(req)
		Expect(err).NotTo(HaveOccurred())
		defer resp.Body.Close()
		if out != nil {
			body, err := io.ReadAll(resp.Body)
			Expect(err).NotTo(HaveOccurred())
			Expect(json.Unmarshal(body, out)).To(Succeed())
		}
		return resp
	}

	jsonRequest := func(method, path string, v interface{}) *http.Request {
		body, err := json.Marshal(v)
		Expect(err).NotTo(HaveOccurred())
		req, err := http.NewRequest(method, ghServer.URL()+path, bytes.NewReader(body))
		Expect(err).NotTo(HaveOccurred())
		req.Header.Set("Content-Type", "application/json")
		return req
	}

	It("should scan a sheet, review it, save it and remove it", func() {
		ghServer.AppendHandlers(
			server.ServeHTTP, // scan
			server.ServeHTTP, // review
			server.ServeHTTP, // save
			server.ServeHTTP, // list
			server.ServeHTTP, // file
			server.ServeHTTP, // delete
		)

		// --- Step 1: scan ---
		body := &bytes.Buffer{}
		writer := multipart.NewWriter(body)
		part, err := writer.CreateFormFile("file", "cierre turno 2.pdf")
		Expect(err).NotTo(HaveOccurred())
		_, err = part.Write([]byte("%PDF-1.4 fake"))
		Expect(err).NotTo(HaveOccurred())
		Expect(writer.Close()).To(Succeed())

		req, err := http.NewRequest(http.MethodPost, ghServer.URL()+"/api/reports/scan", body)
		Expect(err).NotTo(HaveOccurred())
		req.Header.Set("Content-Type", writer.FormDataContentType())

		var draft closing.DailyReport
		resp := do(req, &draft)
		Expect(resp.StatusCode).To(Equal(http.StatusOK))
		Expect(draft.Status).To(Equal(closing.StatusReviewRequired))
		Expect(draft.Warnings).NotTo(BeEmpty())
		Expect(draft.ContentType).To(Equal("application/pdf"))

		_, err = db.GetReport(context.Background(), draft.ID)
		Expect(err).To(MatchError(report.ErrReportNotFound))

		// --- Step 2: the cashier fills in the cash and dismisses the warnings ---
		draft.RealBreakdown.Cash = decimal.NewFromInt(39500)
		dismiss := make([]int, len(draft.Warnings))
		for i := range dismiss {
			dismiss[i] = i
		}

		var reviewed closing.DailyReport
		resp = do(jsonRequest(http.MethodPost, "/api/reports/review", map[string]interface{}{
			"report":  draft,
			"dismiss": dismiss,
		}), &reviewed)
		Expect(resp.StatusCode).To(Equal(http.StatusOK))
		Expect(reviewed.Warnings).To(BeEmpty())
		Expect(reviewed.Difference.Equal(decimal.NewFromInt(-500))).To(BeTrue())
		Expect(reviewed.Status).To(Equal(closing.StatusShortage))

		// --- Step 3: save ---
		var result report.SaveResult
		resp = do(jsonRequest(http.MethodPost, "/api/reports", reviewed), &result)
		Expect(resp.StatusCode).To(Equal(http.StatusCreated))
		Expect(result.Persisted).To(BeTrue())

		saved, err := db.GetReport(context.Background(), draft.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(saved.Status).To(Equal(closing.StatusShortage))
		Expect(saved.CreatedAt).NotTo(BeZero())

		// --- Step 4: list ---
		listReq, err := http.NewRequest(http.MethodGet, ghServer.URL()+"/api/reports", nil)
		Expect(err).NotTo(HaveOccurred())
		var reports []*closing.DailyReport
		resp = do(listReq, &reports)
		Expect(resp.StatusCode).To(Equal(http.StatusOK))
		Expect(reports).To(HaveLen(1))

		// --- Step 5: the archived sheet ---
		fileReq, err := http.NewRequest(http.MethodGet, ghServer.URL()+"/api/reports/"+draft.ID+"/file", nil)
		Expect(err).NotTo(HaveOccurred())
		resp, err = http.DefaultClient.Do(fileReq)
		Expect(err).NotTo(HaveOccurred())
		sheet, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.Header.Get("Content-Type")).To(Equal("application/pdf"))
		Expect(sheet).To(Equal([]byte("%PDF-1.4 fake")))

		// --- Step 6: delete ---
		delReq, err := http.NewRequest(http.MethodDelete, ghServer.URL()+"/api/reports/"+draft.ID, nil)
		Expect(err).NotTo(HaveOccurred())
		resp = do(delReq, nil)
		Expect(resp.StatusCode).To(Equal(http.StatusNoContent))

		_, err = archive.Get(saved.Filename)
		Expect(err).To(HaveOccurred())
		_, err = db.GetReport(context.Background(), draft.ID)
		Expect(err).To(MatchError(report.ErrReportNotFound))
	})
})
