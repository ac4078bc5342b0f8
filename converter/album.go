package converter

import (
	"bytes"
	"errors"
	"fmt"
	"image/png"
	"path/filepath"

	"github.com/phpdave11/gofpdf"
	"go.uber.org/zap"

	"mritopng/contracts"
	"mritopng/image_writer"
	"mritopng/logging"
	"mritopng/utils"
)

type albumPage struct {
	imageId   string
	imgBuffer *bytes.Buffer
	width     float64
	height    float64
}

// Album collects every converted image of an output directory into one PDF, a page per
// image, sized from the pixel spacing.
type Album struct {
	logger logging.Logger
	pages  map[string][]albumPage
	dirs   []string
}

func NewAlbum(logger logging.Logger) *Album {
	return &Album{
		logger: logger,
		pages:  make(map[string][]albumPage),
	}
}

// Add is an Observer: it keeps img as a PNG page of the directory of result.OutputPath.
func (a *Album) Add(result contracts.ConvertResult, img image_writer.Image) {
	m, err := img.ToImage()
	if err == nil {
		var buf bytes.Buffer
		if err = png.Encode(&buf, m); err == nil {
			dir := filepath.Dir(result.OutputPath)
			if _, ok := a.pages[dir]; !ok {
				a.dirs = append(a.dirs, dir)
			}
			width, height := utils.PageSizeMM(img.Width, img.Height, img.PixelSpacing)
			a.pages[dir] = append(a.pages[dir], albumPage{
				imageId:   fmt.Sprintf("img_%d", len(a.pages[dir])),
				imgBuffer: &buf,
				width:     width,
				height:    height,
			})
			return
		}
	}
	a.logger.Warn(fmt.Sprintf("Leaving '%s' out of the album: %v", result.InputPath, err))
}

// Pages is the number of pages collected for dir.
func (a *Album) Pages(dir string) int {
	return len(a.pages[dir])
}

// PathFor is the album file of dir: <dir>/<base name of dir>.pdf.
func PathFor(dir string) string {
	return filepath.Join(dir, filepath.Base(filepath.Clean(dir))+".pdf")
}

// Write saves one PDF per directory that received pages, in the order the directories
// were first seen, and returns the files written.
func (a *Album) Write() ([]string, error) {
	var written []string
	var errs []error
	for _, dir := range a.dirs {
		path := PathFor(dir)
		if err := writeAlbum(path, a.pages[dir]); err != nil {
			errs = append(errs, fmt.Errorf("album %s: %w", path, err))
			continue
		}
		a.logger.Info(fmt.Sprintf("Wrote album '%s'.", path), zap.Int("pages", len(a.pages[dir])))
		written = append(written, path)
	}
	return written, errors.Join(errs...)
}

func writeAlbum(path string, pages []albumPage) error {
	pdf := gofpdf.NewCustom(&gofpdf.InitType{UnitStr: "mm"})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)

	options := gofpdf.ImageOptions{
		ImageType: "PNG",
		ReadDpi:   false,
	}
	for _, page := range pages {
		pdf.AddPageFormat("P", gofpdf.SizeType{Wd: page.width, Ht: page.height})
		pdf.RegisterImageOptionsReader(page.imageId, options, page.imgBuffer)
		pdf.ImageOptions(page.imageId, 0, 0, page.width, page.height, false, options, 0, "")
	}
	return pdf.OutputFileAndClose(path)
}
