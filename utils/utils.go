package utils

import (
	"path/filepath"
	"strings"
)

const (
	mmPerInch = 25.4
	// screenDPI sizes pages of images without pixel spacing.
	screenDPI = 96.0
)

// BaseName is the file name without directory and extension.
func BaseName(filePath string) string {
	return strings.TrimSuffix(filepath.Base(filePath), filepath.Ext(filePath))
}

// OutputPath places inputPath's base name with extension ext under outputDir.
func OutputPath(outputDir, inputPath, ext string) string {
	return filepath.Join(outputDir, BaseName(inputPath)+ext)
}

// DPIFromSpacing converts a row/column pixel spacing in millimetres to horizontal and
// vertical dots per inch. ok is false when either spacing is not positive.
func DPIFromSpacing(spacing [2]float64) (dpiX, dpiY float64, ok bool) {
	if spacing[0] <= 0 || spacing[1] <= 0 {
		return 0, 0, false
	}
	return mmPerInch / spacing[1], mmPerInch / spacing[0], true
}

// PageSizeMM is the physical size of a width x height image. Without pixel spacing the
// image is laid out at 96 dpi.
func PageSizeMM(width, height int, spacing [2]float64) (float64, float64) {
	if spacing[0] <= 0 || spacing[1] <= 0 {
		return float64(width) * mmPerInch / screenDPI, float64(height) * mmPerInch / screenDPI
	}
	return float64(width) * spacing[1], float64(height) * spacing[0]
}

// PageSizePoints is PageSizeMM in PDF points, or zeros when the spacing is unknown.
func PageSizePoints(width, height int, spacing [2]float64) (float64, float64) {
	if spacing[0] <= 0 || spacing[1] <= 0 {
		return 0, 0
	}
	w, h := PageSizeMM(width, height, spacing)
	return w / mmPerInch * 72, h / mmPerInch * 72
}
