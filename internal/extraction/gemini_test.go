package extraction

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("NewGemini", func() {
	When("the API key is missing", func() {
		It("returns ErrMissingCredential", func() {
			g, err := NewGemini(context.Background(), GeminiConfig{Model: "gemini-1.5-flash"})
			Expect(g).To(BeNil())
			Expect(errors.Is(err, ErrMissingCredential)).To(BeTrue())
		})
	})
})
