package dicom_reader

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"
)

// Field names a metadata attribute the reader extracts.
type Field uint8

const (
	FieldSpecificCharacterSet Field = iota
	FieldModality
	FieldSeriesDescription
	FieldPatientName
	FieldPatientID
	FieldStudyInstanceUID
	FieldSeriesInstanceUID
	FieldSamplesPerPixel
	FieldPhotometricInterpretation
	FieldPlanarConfiguration
	FieldNumberOfFrames
	FieldRows
	FieldColumns
	FieldPixelSpacing
	FieldBitsAllocated
	FieldBitsStored
	FieldPixelRepresentation
	FieldPixelData
)

var fieldNames = [...]string{
	FieldSpecificCharacterSet:      "SpecificCharacterSet",
	FieldModality:                  "Modality",
	FieldSeriesDescription:         "SeriesDescription",
	FieldPatientName:               "PatientName",
	FieldPatientID:                 "PatientID",
	FieldStudyInstanceUID:          "StudyInstanceUID",
	FieldSeriesInstanceUID:         "SeriesInstanceUID",
	FieldSamplesPerPixel:           "SamplesPerPixel",
	FieldPhotometricInterpretation: "PhotometricInterpretation",
	FieldPlanarConfiguration:       "PlanarConfiguration",
	FieldNumberOfFrames:            "NumberOfFrames",
	FieldRows:                      "Rows",
	FieldColumns:                   "Columns",
	FieldPixelSpacing:              "PixelSpacing",
	FieldBitsAllocated:             "BitsAllocated",
	FieldBitsStored:                "BitsStored",
	FieldPixelRepresentation:       "PixelRepresentation",
	FieldPixelData:                 "PixelData",
}

var fieldTags = [...]tag.Tag{
	FieldSpecificCharacterSet:      tag.SpecificCharacterSet,
	FieldModality:                  tag.Modality,
	FieldSeriesDescription:         tag.SeriesDescription,
	FieldPatientName:               tag.PatientName,
	FieldPatientID:                 tag.PatientID,
	FieldStudyInstanceUID:          tag.StudyInstanceUID,
	FieldSeriesInstanceUID:         tag.SeriesInstanceUID,
	FieldSamplesPerPixel:           tag.SamplesPerPixel,
	FieldPhotometricInterpretation: tag.PhotometricInterpretation,
	FieldPlanarConfiguration:       tag.PlanarConfiguration,
	FieldNumberOfFrames:            tag.NumberOfFrames,
	FieldRows:                      tag.Rows,
	FieldColumns:                   tag.Columns,
	FieldPixelSpacing:              tag.PixelSpacing,
	FieldBitsAllocated:             tag.BitsAllocated,
	FieldBitsStored:                tag.BitsStored,
	FieldPixelRepresentation:       tag.PixelRepresentation,
	FieldPixelData:                 tag.PixelData,
}

func (f Field) String() string {
	if int(f) < len(fieldNames) {
		return fieldNames[f]
	}
	return "Field(?)"
}

// Photometric interpretations, PS3.3 C.7.6.3.1.2.
const (
	RGB     = "RGB"
	YBRFull = "YBR_FULL"
)

// Metadata is the subset of a data set the converter consults. A zero value field is
// only meaningful when Has reports it present.
type Metadata struct {
	TransferSyntaxUID string

	CharacterSet      string
	Modality          string
	SeriesDescription string
	PatientName       string
	PatientID         string
	StudyInstanceUID  string
	SeriesInstanceUID string

	SamplesPerPixel           int
	PhotometricInterpretation string
	PlanarConfiguration       int
	NumberOfFrames            int
	Rows                      int
	Columns                   int
	// PixelSpacing is row spacing then column spacing, in millimetres.
	PixelSpacing        [2]float64
	BitsAllocated       int
	BitsStored          int
	PixelRepresentation int

	present uint32
}

// Has reports whether the element behind f was present in the file.
func (m Metadata) Has(f Field) bool {
	return m.present&(1<<f) != 0
}

func (m *Metadata) set(f Field) {
	m.present |= 1 << f
}

func (m Metadata) samplesPerPixel() int {
	if m.Has(FieldSamplesPerPixel) && m.SamplesPerPixel > 0 {
		return m.SamplesPerPixel
	}
	return 1
}

func (m Metadata) frames() int {
	if m.Has(FieldNumberOfFrames) && m.NumberOfFrames > 0 {
		return m.NumberOfFrames
	}
	return 1
}

func (m Metadata) bitsStored() int {
	if m.Has(FieldBitsStored) && m.BitsStored > 0 && m.BitsStored <= m.BitsAllocated {
		return m.BitsStored
	}
	return m.BitsAllocated
}

// readMetadata copies the top level elements behind every Field out of ds. Elements
// inside sequences are never consulted.
func readMetadata(ds *dicom.Dataset) (Metadata, error) {
	var m Metadata
	if el, err := ds.FindElementByTag(tag.TransferSyntaxUID); err == nil {
		m.TransferSyntaxUID = firstString(el.Value)
	}
	for i, t := range fieldTags {
		el, err := ds.FindElementByTag(t)
		if err != nil {
			continue
		}
		f := Field(i)
		if err := m.apply(f, el.Value); err != nil {
			return m, fmt.Errorf("%w: %v: %v", ErrMalformedMetadata, f, err)
		}
	}
	return m, nil
}

// apply stores one element. Present but empty elements still count for Has.
func (m *Metadata) apply(f Field, v dicom.Value) error {
	m.set(f)
	switch f {
	case FieldPixelData:
		return nil
	case FieldSpecificCharacterSet:
		m.CharacterSet = strings.Join(stringsOf(v), "\\")
	case FieldModality:
		m.Modality = firstString(v)
	case FieldPhotometricInterpretation:
		m.PhotometricInterpretation = strings.ToUpper(firstString(v))
	case FieldSeriesDescription:
		m.SeriesDescription = firstString(v)
	case FieldPatientName:
		m.PatientName = firstString(v)
	case FieldPatientID:
		m.PatientID = firstString(v)
	case FieldStudyInstanceUID:
		m.StudyInstanceUID = firstString(v)
	case FieldSeriesInstanceUID:
		m.SeriesInstanceUID = firstString(v)
	case FieldPixelSpacing:
		return m.applyPixelSpacing(v)
	default:
		n, ok, err := firstInt(v)
		if err != nil || !ok {
			return err
		}
		switch f {
		case FieldSamplesPerPixel:
			m.SamplesPerPixel = n
		case FieldPlanarConfiguration:
			m.PlanarConfiguration = n
		case FieldNumberOfFrames:
			m.NumberOfFrames = n
		case FieldRows:
			m.Rows = n
		case FieldColumns:
			m.Columns = n
		case FieldBitsAllocated:
			m.BitsAllocated = n
		case FieldBitsStored:
			m.BitsStored = n
		case FieldPixelRepresentation:
			m.PixelRepresentation = n
		}
	}
	return nil
}

func (m *Metadata) applyPixelSpacing(v dicom.Value) error {
	switch values := v.GetValue().(type) {
	case []float64:
		if len(values) != 2 {
			return fmt.Errorf("want 2 values, got %d", len(values))
		}
		copy(m.PixelSpacing[:], values)
	case []string:
		if len(values) != 2 {
			return fmt.Errorf("want 2 values, got %d", len(values))
		}
		for i, s := range values {
			x, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
			if err != nil {
				return err
			}
			m.PixelSpacing[i] = x
		}
	default:
		return fmt.Errorf("unexpected %T value", values)
	}
	return nil
}

// checkImage rejects image attributes the sample unpacking cannot work with.
func checkImage(m Metadata) error {
	for _, f := range []Field{FieldRows, FieldColumns, FieldBitsAllocated} {
		if !m.Has(f) {
			return fmt.Errorf("%w: %v missing", ErrMalformedMetadata, f)
		}
	}
	if bits := m.BitsAllocated; bits != 8 && bits != 16 && bits != 32 {
		return fmt.Errorf("%w: bits allocated %d not supported", ErrMalformedMetadata, bits)
	}
	return nil
}

func stringsOf(v dicom.Value) []string {
	values, _ := v.GetValue().([]string)
	out := make([]string, 0, len(values))
	for _, s := range values {
		out = append(out, strings.Trim(s, " \x00"))
	}
	return out
}

func firstString(v dicom.Value) string {
	if values := stringsOf(v); len(values) > 0 {
		return values[0]
	}
	return ""
}

// firstInt reads binary integers, and IS strings, as an int. ok is false for an empty value.
func firstInt(v dicom.Value) (n int, ok bool, err error) {
	switch values := v.GetValue().(type) {
	case []int:
		if len(values) == 0 {
			return 0, false, nil
		}
		return values[0], true, nil
	case []string:
		if len(values) == 0 || strings.TrimSpace(values[0]) == "" {
			return 0, false, nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(values[0]))
		return n, err == nil, err
	default:
		return 0, false, fmt.Errorf("unexpected %T value", values)
	}
}
