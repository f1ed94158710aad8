package extraction

import (
	"bytes"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("toPNG", func() {
	var sample image.Image

	BeforeEach(func() {
		img := image.NewRGBA(image.Rect(0, 0, 4, 4))
		img.Set(1, 1, color.RGBA{R: 255, A: 255})
		sample = img
	})

	encodedPNG := func() []byte {
		var buf bytes.Buffer
		Expect(png.Encode(&buf, sample)).To(Succeed())
		return buf.Bytes()
	}

	When("the upload is already PNG", func() {
		It("should pass the bytes through", func() {
			data := encodedPNG()
			out, err := toPNG(data, "image/png")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(Equal(data))
		})
	})

	When("the upload is JPEG", func() {
		It("should re-encode it as PNG", func() {
			var buf bytes.Buffer
			Expect(jpeg.Encode(&buf, sample, nil)).To(Succeed())
			out, err := toPNG(buf.Bytes(), "IMAGE/JPEG; charset=binary")
			Expect(err).NotTo(HaveOccurred())
			_, format, err := image.Decode(bytes.NewReader(out))
			Expect(err).NotTo(HaveOccurred())
			Expect(format).To(Equal("png"))
		})
	})

	When("the upload is GIF without a content type", func() {
		It("should re-encode it as PNG", func() {
			var buf bytes.Buffer
			Expect(gif.Encode(&buf, sample, nil)).To(Succeed())
			out, err := toPNG(buf.Bytes(), "")
			Expect(err).NotTo(HaveOccurred())
			Expect(out[:8]).To(Equal([]byte("\x89PNG\r\n\x1a\n")))
		})
	})

	When("the upload is not an image", func() {
		It("should report an unsupported format", func() {
			_, err := toPNG([]byte("plain text"), "text/plain")
			Expect(err).To(MatchError(ContainSubstring("unsupported image format")))
		})
	})
})

var _ = Describe("isHEIC", func() {
	It("should detect the ftyp brand", func() {
		data := append([]byte{0, 0, 0, 24}, []byte("ftypheic0000")...)
		Expect(isHEIC(data, "application/octet-stream")).To(BeTrue())
	})

	It("should detect the MIME type", func() {
		Expect(isHEIC(nil, "image/heif")).To(BeTrue())
	})

	It("should reject other data", func() {
		Expect(isHEIC([]byte("\x89PNG\r\n\x1a\n0000"), "image/png")).To(BeFalse())
	})
})

var _ = Describe("normalizeMIME", func() {
	It("should default to JPEG", func() {
		Expect(normalizeMIME("  ")).To(Equal("image/jpeg"))
	})

	It("should strip parameters", func() {
		Expect(normalizeMIME("Application/PDF; q=1")).To(Equal("application/pdf"))
	})
})
