// Package converter turns DICOM files into raster images: colour space and intensity
// normalization, shape classification, encoding, and the batch walk over a directory tree.
package converter

import (
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"mritopng/contracts"
	"mritopng/dicom_reader"
	"mritopng/image_writer"
	"mritopng/logging"
)

var ErrEmptyPixels = errors.New("empty pixel array")

// Decoder reads one DICOM file into metadata and a sample array.
type Decoder interface {
	Decode(path string) (*dicom_reader.Record, error)
}

// Observer is called after every successful conversion with the image that was encoded.
type Observer func(result contracts.ConvertResult, img image_writer.Image)

type Converter struct {
	decoder  Decoder
	encoder  image_writer.Encoder
	logger   logging.Logger
	observer Observer
}

type Option func(*Converter)

func WithDecoder(d Decoder) Option {
	return func(c *Converter) { c.decoder = d }
}

func WithObserver(fn Observer) Option {
	return func(c *Converter) { c.observer = fn }
}

func New(encoder image_writer.Encoder, logger logging.Logger, opts ...Option) *Converter {
	c := &Converter{
		decoder: dicom_reader.FileReader{},
		encoder: encoder,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Extension is the suffix of the files the converter writes.
func (c *Converter) Extension() string {
	return c.encoder.Extension()
}

// ConvertFile converts inputPath to outputPath. No output file is created unless the
// pixel data decoded and classified; skips and failures are logged and reported in the
// result, never returned as a panic.
func (c *Converter) ConvertFile(inputPath, outputPath string) (result contracts.ConvertResult) {
	start := time.Now()
	log := c.logger.With(zap.String("input", inputPath))
	defer func() {
		if r := recover(); r != nil {
			result = contracts.Failed(inputPath, contracts.KindDecode, fmt.Errorf("panic: %v", r))
		}
		result.Duration = time.Since(start)
		switch result.Status {
		case contracts.StatusSuccess:
			log.Info(fmt.Sprintf("Converted '%s' to '%s'.", inputPath, outputPath),
				zap.String("output", outputPath), zap.Duration("took", result.Duration))
		case contracts.StatusSkipped:
			log.Warn(fmt.Sprintf("Skipping '%s': %s.", inputPath, result.Message),
				zap.String("kind", string(result.Kind)))
		case contracts.StatusFailed:
			log.Error(fmt.Sprintf("Failed to convert '%s': %s", inputPath, result.Message),
				zap.String("kind", string(result.Kind)))
		}
	}()

	rec, err := c.decoder.Decode(inputPath)
	if err != nil {
		if errors.Is(err, dicom_reader.ErrMalformedMetadata) {
			return contracts.Failed(inputPath, contracts.KindMetadata, err)
		}
		return contracts.Failed(inputPath, contracts.KindDecode, err)
	}
	if rec.Pixels.Empty() {
		return contracts.Skipped(inputPath, contracts.KindEmptyPixels, ErrEmptyPixels)
	}

	pixels, err := NormalizeColorSpace(rec.Pixels, rec.Metadata)
	if err != nil {
		return contracts.Failed(inputPath, contracts.KindMetadata, err)
	}
	layout, err := Classify(NormalizeIntensity(pixels))
	if err != nil {
		return contracts.Skipped(inputPath, contracts.KindUnsupportedShape, err)
	}
	if layout.MultiFrame {
		log.Info(fmt.Sprintf("Multi-slice image detected in '%s'. Converting first slice.", inputPath),
			zap.Int("frames", layout.Frames))
	}

	img := image_writer.Image{
		Mode:         layout.Mode,
		Width:        layout.Width,
		Height:       layout.Height,
		Rows:         layout.Rows,
		PixelSpacing: rec.Metadata.PixelSpacing,
	}
	if err := c.write(outputPath, img); err != nil {
		return contracts.Failed(inputPath, contracts.KindEncode, err)
	}

	result = contracts.Succeeded(inputPath, outputPath)
	result.Mode = layout.Mode
	result.PixelWidth = layout.Width
	result.PixelHeight = layout.Height
	result.MultiFrame = layout.MultiFrame
	if c.observer != nil {
		c.observer(result, img)
	}
	return result
}

func (c *Converter) write(outputPath string, img image_writer.Image) error {
	if err := img.Validate(); err != nil {
		return err
	}
	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer f.Close()

	if err := c.encoder.Encode(f, img); err != nil {
		return fmt.Errorf("encoding %s: %w", outputPath, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing output file: %w", err)
	}
	return nil
}
