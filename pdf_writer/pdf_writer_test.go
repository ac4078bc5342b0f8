package pdf_writer

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"regexp"
	"strconv"
	"strings"
	"testing"
)

var mockJPEG = []byte{
	0xFF, 0xD8, // SOI
	0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00, // APP0
	0x01, 0x01, 0x00, 0x00, 0x01, 0x00, 0x01, 0x00, 0x00,
	0xAA, 0xBB, 0xCC, 0xDD, 0xEE,
	0xFF, 0xD9, // EOI
}

func TestWriteImage(t *testing.T) {
	t.Run("RGB image", func(t *testing.T) {
		var buf bytes.Buffer
		pw, err := NewPDFWriter(&buf)
		if err != nil {
			t.Fatalf("Failed to create PDFWriter: %v", err)
		}

		if err := pw.WriteImage(PageImage{JPEG: mockJPEG, Width: 100, Height: 80}); err != nil {
			t.Fatalf("WriteImage failed: %v", err)
		}
		if err := pw.bw.Flush(); err != nil {
			t.Fatalf("Failed to flush buffer: %v", err)
		}

		if len(pw.imageInfos) != 1 {
			t.Fatalf("Expected 1 image in imageInfos, got %d", len(pw.imageInfos))
		}
		info := pw.imageInfos[0]
		if info.pageWidth != 100 || info.pageHeight != 80 {
			t.Errorf("Page size incorrect: got %.2f x %.2f, want 100 x 80", info.pageWidth, info.pageHeight)
		}

		output := buf.String()
		for _, want := range []string{
			"/Type /XObject",
			"/Subtype /Image",
			"/ColorSpace /DeviceRGB",
			"/BitsPerComponent 8",
			"/Filter /DCTDecode",
			"/Width 100",
			"/Height 80",
			fmt.Sprintf("/Length %d", len(mockJPEG)),
		} {
			if !strings.Contains(output, want) {
				t.Errorf("Missing %s in output", want)
			}
		}
	})

	t.Run("gray image", func(t *testing.T) {
		var buf bytes.Buffer
		pw, _ := NewPDFWriter(&buf)
		if err := pw.WriteImage(PageImage{JPEG: mockJPEG, Width: 10, Height: 10, Gray: true}); err != nil {
			t.Fatalf("WriteImage failed: %v", err)
		}
		pw.bw.Flush()
		if !strings.Contains(buf.String(), "/ColorSpace /DeviceGray") {
			t.Error("Missing /ColorSpace /DeviceGray in output")
		}
	})

	t.Run("physical page size", func(t *testing.T) {
		var buf bytes.Buffer
		pw, _ := NewPDFWriter(&buf)
		err := pw.WriteImage(PageImage{JPEG: mockJPEG, Width: 512, Height: 256, Gray: true, PageWidth: 362.83, PageHeight: 181.42})
		if err != nil {
			t.Fatalf("WriteImage failed: %v", err)
		}
		if err := pw.Finish(); err != nil {
			t.Fatalf("Finish failed: %v", err)
		}
		output := buf.String()
		if !strings.Contains(output, "/MediaBox [0 0 362.83 181.42]") {
			t.Error("MediaBox does not use the physical page size")
		}
		if !strings.Contains(output, "362.83 0 0 181.42 0 0 cm") {
			t.Error("Content stream does not scale the image to the page")
		}
	})

	t.Run("invalid input", func(t *testing.T) {
		var buf bytes.Buffer
		pw, _ := NewPDFWriter(&buf)
		if err := pw.WriteImage(PageImage{JPEG: mockJPEG, Width: 0, Height: 10}); err == nil {
			t.Error("Expected error for zero width")
		}
		if err := pw.WriteImage(PageImage{Width: 10, Height: 10}); err == nil {
			t.Error("Expected error for empty JPEG stream")
		}
		if len(pw.imageInfos) != 0 {
			t.Errorf("Rejected images must not be recorded, got %d", len(pw.imageInfos))
		}
	})

	t.Run("multiple images", func(t *testing.T) {
		var buf bytes.Buffer
		pw, _ := NewPDFWriter(&buf)
		pw.WriteImage(PageImage{JPEG: mockJPEG, Width: 100, Height: 80})
		pw.WriteImage(PageImage{JPEG: mockJPEG, Width: 200, Height: 160})

		if len(pw.imageInfos) != 2 {
			t.Fatalf("Expected 2 images in imageInfos, got %d", len(pw.imageInfos))
		}
		if pw.imageInfos[1].id != pw.imageInfos[0].id+1 {
			t.Errorf("Object IDs not sequential: %d and %d", pw.imageInfos[0].id, pw.imageInfos[1].id)
		}
		if err := pw.Finish(); err != nil {
			t.Fatalf("Finish failed: %v", err)
		}
		if !strings.Contains(buf.String(), "/Count 2") {
			t.Error("Pages object should count 2 pages")
		}
	})
}

func TestFinishWithoutPages(t *testing.T) {
	var buf bytes.Buffer
	pw, _ := NewPDFWriter(&buf)
	if err := pw.Finish(); err == nil {
		t.Fatal("Expected error finishing an empty document")
	}
}

func TestEndToEnd(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 16, 8))
	for i := range img.Pix {
		img.Pix[i] = uint8(i)
	}
	var jpg bytes.Buffer
	if err := jpeg.Encode(&jpg, img, &jpeg.Options{Quality: 90}); err != nil {
		t.Fatalf("Failed to encode JPEG: %v", err)
	}

	var buf bytes.Buffer
	pw, err := NewPDFWriter(&buf)
	if err != nil {
		t.Fatalf("Failed to create PDFWriter: %v", err)
	}
	if err := pw.WriteImage(PageImage{JPEG: jpg.Bytes(), Width: 16, Height: 8, Gray: true}); err != nil {
		t.Fatalf("WriteImage failed: %v", err)
	}
	if err := pw.Finish(); err != nil {
		t.Fatalf("Failed to finish PDF: %v", err)
	}

	pdf := buf.String()
	for _, element := range []string{
		"%PDF-1.7",
		"/Type /Page\n",
		"/Type /Pages",
		"/Type /Catalog",
		"xref",
		"trailer",
		"startxref",
		"%%EOF",
	} {
		if !strings.Contains(pdf, element) {
			t.Errorf("PDF missing required element: %s", element)
		}
	}
	if !bytes.Contains(buf.Bytes(), jpg.Bytes()) {
		t.Error("JPEG stream not embedded verbatim")
	}

	t.Run("xref offsets", func(t *testing.T) {
		xref := strings.LastIndex(pdf, "\nxref\n") + 1
		entries := regexp.MustCompile(`(\d{10}) 00000 n `).FindAllStringSubmatch(pdf[xref:], -1)
		if len(entries) != len(pw.objects) {
			t.Fatalf("Expected %d xref entries, got %d", len(pw.objects), len(entries))
		}
		for i, e := range entries {
			off, _ := strconv.Atoi(e[1])
			want := fmt.Sprintf("%d 0 obj\n", i+1)
			if !strings.HasPrefix(pdf[off:], want) {
				t.Errorf("xref entry %d points at %q, want %q", i+1, pdf[off:off+len(want)], want)
			}
		}

		start := strings.LastIndex(pdf, "startxref\n") + len("startxref\n")
		end := strings.Index(pdf[start:], "\n")
		off, _ := strconv.Atoi(pdf[start : start+end])
		if off != xref {
			t.Errorf("startxref is %d, xref table starts at %d", off, xref)
		}
	})
}
