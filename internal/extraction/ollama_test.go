package extraction

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"io"
	"net/http"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/ghttp"

	"github.com/zombor/cashclose/internal/closing"
)

var _ = Describe("Ollama", func() {
	var (
		server    *ghttp.Server
		extractor *Ollama
		sheet     []byte
		raw       *closing.RawExtraction
		err       error
	)

	BeforeEach(func() {
		server = ghttp.NewServer()
		extractor, err = NewOllama(OllamaConfig{BaseURL: server.URL() + "/", Model: "llava:1.6"})
		Expect(err).NotTo(HaveOccurred())

		var buf bytes.Buffer
		Expect(png.Encode(&buf, image.NewGray(image.Rect(0, 0, 2, 2)))).To(Succeed())
		sheet = buf.Bytes()
	})

	AfterEach(func() {
		server.Close()
	})

	JustBeforeEach(func() {
		raw, err = extractor.Extract(context.Background(), sheet, "image/png")
	})

	When("the model answers with JSON", func() {
		var request ollamaChatRequest

		BeforeEach(func() {
			server.AppendHandlers(ghttp.CombineHandlers(
				ghttp.VerifyRequest(http.MethodPost, "/api/chat"),
				ghttp.VerifyContentType("application/json"),
				func(w http.ResponseWriter, r *http.Request) {
					body, readErr := io.ReadAll(r.Body)
					Expect(readErr).NotTo(HaveOccurred())
					Expect(json.Unmarshal(body, &request)).To(Succeed())
				},
				ghttp.RespondWithJSONEncoded(http.StatusOK, ollamaChatResponse{
					Message: ollamaMessage{Role: "assistant", Content: `{"shiftNumber": "003", "realTotal": 55200}`},
					Done:    true,
				}),
			))
		})

		It("should not return an error", func() {
			Expect(err).NotTo(HaveOccurred())
		})

		It("should parse the figures", func() {
			Expect(*raw.ShiftNumber).To(Equal("003"))
			Expect(raw.RealTotal.Decimal.IntPart()).To(Equal(int64(55200)))
		})

		It("should send the image with the user message and ask for JSON", func() {
			Expect(request.Model).To(Equal("llava:1.6"))
			Expect(request.Format).To(Equal("json"))
			Expect(request.Messages).To(HaveLen(2))
			Expect(request.Messages[1].Images).To(HaveLen(1))
		})
	})

	When("the API returns an error status", func() {
		BeforeEach(func() {
			server.AppendHandlers(ghttp.RespondWith(http.StatusInternalServerError, "model not loaded"))
		})

		It("returns the status and body", func() {
			Expect(err).To(MatchError(ContainSubstring("status 500")))
			Expect(err).To(MatchError(ContainSubstring("model not loaded")))
		})
	})

	When("the model answers without JSON", func() {
		BeforeEach(func() {
			server.AppendHandlers(ghttp.RespondWithJSONEncoded(http.StatusOK, ollamaChatResponse{
				Message: ollamaMessage{Role: "assistant", Content: "sorry"},
			}))
		})

		It("returns ErrNoStructuredOutput", func() {
			Expect(errors.Is(err, ErrNoStructuredOutput)).To(BeTrue())
		})
	})
})

var _ = Describe("NewOllama", func() {
	It("should apply defaults", func() {
		o, err := NewOllama(OllamaConfig{})
		Expect(err).NotTo(HaveOccurred())
		Expect(o.baseURL).To(Equal(DefaultOllamaURL))
		Expect(o.model).To(Equal(DefaultOllamaModel))
		Expect(o.Close()).To(Succeed())
	})
})
