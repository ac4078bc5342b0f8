package pdf_writer

import (
	"bufio"
	"errors"
	"fmt"
	"io"
)

// PageImage is one JPEG stream placed on its own page.
type PageImage struct {
	JPEG   []byte
	Width  int
	Height int
	Gray   bool
	// PageWidth and PageHeight are in points. Zero means one point per pixel.
	PageWidth  float64
	PageHeight float64
}

type PDFWriter struct {
	objects    []int64
	imageInfos []ImageInfo
	bw         *bufio.Writer
	cw         *countingWriter
	objNum     int

	pagesObjID   int64
	pageIDs      []int64
	catalogObjID int64
}

type ImageInfo struct {
	id         int64
	pageWidth  float64
	pageHeight float64
}

type countingWriter struct {
	w      io.Writer
	offset int64
}

func NewPDFWriter(dst io.Writer) (*PDFWriter, error) {
	cw := &countingWriter{
		w: dst,
	}
	pw := &PDFWriter{
		cw: cw,
		bw: bufio.NewWriterSize(cw, 1024*1024),
	}

	if _, err := pw.bw.WriteString("%PDF-1.7\n%\xFF\xFF\xFF\xFF\n"); err != nil {
		return nil, fmt.Errorf("error writing PDF header: %v", err)
	}
	return pw, nil
}

func (cw *countingWriter) Write(p []byte) (n int, err error) {
	n, err = cw.w.Write(p)
	if err == nil {
		cw.offset += int64(n)
	}
	return n, err
}

func (pw *PDFWriter) getOffset() int64 {
	return pw.cw.offset + int64(pw.bw.Buffered())
}

func (pw *PDFWriter) newObject() int64 {
	id := pw.reserveObject()
	pw.beginObject(id)
	return id
}

// reserveObject allocates an object number whose body is written later with beginObject.
func (pw *PDFWriter) reserveObject() int64 {
	pw.objNum++
	pw.objects = append(pw.objects, 0)
	return int64(pw.objNum)
}

func (pw *PDFWriter) beginObject(id int64) {
	pw.objects[id-1] = pw.getOffset()
	fmt.Fprintf(pw.bw, "%d 0 obj\n", id)
}

func (pw *PDFWriter) WriteImage(img PageImage) error {
	if img.Width <= 0 || img.Height <= 0 {
		return fmt.Errorf("invalid image size %dx%d", img.Width, img.Height)
	}
	if len(img.JPEG) == 0 {
		return errors.New("empty JPEG stream")
	}
	if img.Gray {
		if err := pw.writeJPEGImage(img, "/DeviceGray"); err != nil {
			return fmt.Errorf("error writing grayscale JPEG image: %v", err)
		}
		return nil
	}
	if err := pw.writeJPEGImage(img, "/DeviceRGB"); err != nil {
		return fmt.Errorf("error writing RGB JPEG image: %v", err)
	}
	return nil
}

func (pw *PDFWriter) writeJPEGImage(img PageImage, colorSpace string) error {
	if pw.pagesObjID == 0 {
		pw.pagesObjID = pw.reserveObject()
	}

	pageWidth, pageHeight := img.PageWidth, img.PageHeight
	if pageWidth <= 0 || pageHeight <= 0 {
		pageWidth, pageHeight = float64(img.Width), float64(img.Height)
	}

	imgID := pw.newObject()
	pw.imageInfos = append(pw.imageInfos, ImageInfo{
		id:         imgID,
		pageWidth:  pageWidth,
		pageHeight: pageHeight,
	})
	pw.bw.WriteString("<<\n/Type /XObject\n/Subtype /Image\n")
	fmt.Fprintf(pw.bw, "/Width %d\n/Height %d\n", img.Width, img.Height)
	fmt.Fprintf(pw.bw, "/ColorSpace %s\n/BitsPerComponent 8\n", colorSpace)
	pw.bw.WriteString("/Filter /DCTDecode\n")

	fmt.Fprintf(pw.bw, "/Length %d\n", len(img.JPEG))
	pw.bw.WriteString(">>\nstream\n")
	pw.bw.Write(img.JPEG)
	if _, err := pw.bw.WriteString("\nendstream\nendobj\n"); err != nil {
		return err
	}
	return nil
}

func (pw *PDFWriter) writeContent(imgName string, width, height float64) int64 {
	content := fmt.Sprintf(
		"q\n%.2f 0 0 %.2f 0 0 cm\n/%s Do\nQ\n",
		width, height, imgName,
	)
	objID := pw.newObject()
	pw.bw.WriteString("<<\n")
	fmt.Fprintf(pw.bw, "/Length %d\n", len(content))
	pw.bw.WriteString(">>\n")
	pw.bw.WriteString("stream\n")
	pw.bw.WriteString(content)
	pw.bw.WriteString("endstream\nendobj\n")
	return objID
}

func (pw *PDFWriter) writePage(imgName string, imgObjID int64, contentID int64, width, height float64) int64 {
	objID := pw.newObject()
	pw.bw.WriteString("<<\n")
	pw.bw.WriteString("/Type /Page\n")
	fmt.Fprintf(pw.bw, "/Parent %d 0 R\n", pw.pagesObjID)
	fmt.Fprintf(pw.bw, "/MediaBox [0 0 %.2f %.2f]\n", width, height)
	fmt.Fprintf(pw.bw, "/Resources << /XObject << /%s %d 0 R >> >>\n", imgName, imgObjID)
	fmt.Fprintf(pw.bw, "/Contents %d 0 R\n", contentID)
	pw.bw.WriteString(">>\nendobj\n")
	return objID
}

func (pw *PDFWriter) createDocumentStructure() error {
	if pw.pagesObjID == 0 {
		return errors.New("document has no pages")
	}

	// content and page object for each image
	for i, info := range pw.imageInfos {
		imgName := fmt.Sprintf("img_%d", i)
		contentID := pw.writeContent(imgName, info.pageWidth, info.pageHeight)
		pageID := pw.writePage(imgName, info.id, contentID, info.pageWidth, info.pageHeight)
		pw.pageIDs = append(pw.pageIDs, pageID)
	}

	pw.beginObject(pw.pagesObjID)
	pw.bw.WriteString("<<\n")
	pw.bw.WriteString("/Type /Pages\n")
	fmt.Fprintf(pw.bw, "/Count %d\n", len(pw.pageIDs))
	pw.bw.WriteString("/Kids [\n")
	for _, id := range pw.pageIDs {
		fmt.Fprintf(pw.bw, "%d 0 R ", id)
	}
	pw.bw.WriteString("]\n>>\nendobj\n")

	pw.catalogObjID = pw.newObject()
	pw.bw.WriteString("<<\n")
	fmt.Fprintf(pw.bw, "/Type /Catalog\n/Pages %d 0 R\n", pw.pagesObjID)
	pw.bw.WriteString(">>\nendobj\n")

	if err := pw.bw.Flush(); err != nil {
		return fmt.Errorf("error flushing buffer after creating structure: %v", err)
	}
	return nil
}

func (pw *PDFWriter) Finish() error {
	if err := pw.createDocumentStructure(); err != nil {
		return fmt.Errorf("failed to create document structure before finishing: %v", err)
	}

	startXref := pw.cw.offset
	total := len(pw.objects) + 1

	if _, err := fmt.Fprintf(pw.cw.w, "xref\n0 %d\n", total); err != nil {
		return fmt.Errorf("error writing xref header: %v", err)
	}
	if _, err := fmt.Fprintf(pw.cw.w, "%010d %05d f \n", 0, 65535); err != nil {
		return fmt.Errorf("error writing free object xref entry: %v", err)
	}
	for _, off := range pw.objects {
		if _, err := fmt.Fprintf(pw.cw.w, "%010d %05d n \n", off, 0); err != nil {
			return fmt.Errorf("error writing object xref entry: %v", err)
		}
	}

	if _, err := fmt.Fprintf(pw.cw.w,
		"trailer\n<< /Size %d /Root %d 0 R >>\nstartxref\n%d\n%%%%EOF",
		total, pw.catalogObjID, startXref,
	); err != nil {
		return fmt.Errorf("error writing trailer and startxref: %v", err)
	}

	return nil
}
