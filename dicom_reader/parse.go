package dicom_reader

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"

	"mritopng/pixel_data"
)

var (
	ErrNotDICOM            = errors.New("not a DICOM file")
	ErrCompressedPixelData = errors.New("encapsulated (compressed) pixel data is not supported")
	ErrNoPixelData         = errors.New("no pixel data element")
	ErrMalformedMetadata   = errors.New("malformed metadata")
)

// Record is one decoded input file: the metadata the converter needs and the sample array.
type Record struct {
	Path     string
	Metadata Metadata
	Pixels   pixel_data.Array
}

// FileReader decodes DICOM files from disk.
type FileReader struct{}

func (FileReader) Decode(path string) (*Record, error) {
	return ReadFile(path)
}

func ReadFile(path string) (*Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}
	rec, err := Parse(data)
	if err != nil {
		return nil, err
	}
	rec.Path = path
	return rec, nil
}

// Parse decodes a Part 10 file held in memory.
func Parse(data []byte) (*Record, error) {
	if len(data) < 132 {
		return nil, fmt.Errorf("%w: file shorter than preamble", ErrNotDICOM)
	}
	if magic := string(data[128:132]); magic != "DICM" {
		return nil, fmt.Errorf("%w: wrong signature %q", ErrNotDICOM, magic)
	}

	data, deflated, err := inflateDataSet(data)
	if err != nil {
		return nil, err
	}

	ds, err := parseDataSet(data)
	if err != nil {
		return parseWithoutPixels(data, err)
	}
	meta, err := readMetadata(&ds)
	if err != nil {
		return nil, err
	}
	if deflated {
		meta.TransferSyntaxUID = deflatedExplicitVRLittleEndian
	}

	el, err := ds.FindElementByTag(tag.PixelData)
	if err != nil {
		return nil, ErrNoPixelData
	}
	pixels, err := pixelArray(meta, dicom.MustGetPixelDataInfo(el.Value))
	if err != nil {
		return nil, err
	}
	return &Record{Metadata: meta, Pixels: pixels}, nil
}

func parseDataSet(data []byte, opts ...dicom.ParseOption) (dicom.Dataset, error) {
	return dicom.Parse(bytes.NewReader(data), int64(len(data)), nil, opts...)
}

// parseWithoutPixels re-reads a file whose pixel data failed to parse. Zero length pixel
// data is an empty image and bad image attributes are malformed metadata; anything else
// keeps the original error.
func parseWithoutPixels(data []byte, cause error) (*Record, error) {
	ds, err := parseDataSet(data, dicom.SkipPixelData())
	if err != nil {
		return nil, fmt.Errorf("parsing data set: %w", cause)
	}
	meta, err := readMetadata(&ds)
	if err != nil {
		return nil, err
	}
	el, err := ds.FindElementByTag(tag.PixelData)
	if err != nil {
		return nil, fmt.Errorf("parsing data set: %w", cause)
	}
	if el.ValueLength == 0 {
		return &Record{Metadata: meta, Pixels: pixel_data.Zeros[float64](0)}, nil
	}
	if err := checkImage(meta); err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("parsing pixel data: %w", cause)
}
