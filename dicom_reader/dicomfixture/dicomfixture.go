// Package dicomfixture writes small Part 10 files for tests.
package dicomfixture

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/klauspost/compress/flate"
	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"
)

const (
	ImplicitVRLittleEndian         = "1.2.840.10008.1.2"
	ExplicitVRLittleEndian         = "1.2.840.10008.1.2.1"
	DeflatedExplicitVRLittleEndian = "1.2.840.10008.1.2.1.99"
	ExplicitVRBigEndian            = "1.2.840.10008.1.2.2"
	JPEGBaseline                   = "1.2.840.10008.1.2.4.50"
)

const mrImageStorage = "1.2.840.10008.5.1.4.1.1.4"

const undefinedLength = 0xffffffff

// Options describes one file. Zero values pick explicit VR little endian, 16 bit
// unsigned MONOCHROME2 samples, one frame.
type Options struct {
	TransferSyntaxUID   string
	Rows, Columns       int
	SamplesPerPixel     int
	Frames              int
	BitsAllocated       int
	BitsStored          int
	PixelRepresentation int
	Photometric         string
	// PlanarConfiguration is written only when non-nil.
	PlanarConfiguration *int
	CharacterSet        string
	// PatientName is written byte for byte, in the file's character set.
	PatientName string
	Modality    string
	// Samples are written in storage order, one BitsAllocated word each, and need not
	// fill the declared image.
	Samples       []int
	OmitPixelData bool
	// Encapsulated writes an undefined-length pixel data element with one fragment.
	Encapsulated bool
	// WithSequence adds a sequence holding a nested sequence before the image module.
	WithSequence bool
	Extra        []*dicom.Element
}

func Greyscale(rows, cols int, samples ...int) Options {
	return Options{Rows: rows, Columns: cols, Samples: samples}
}

func Planar(v int) *int {
	return &v
}

// Element builds a data set element for Options.Extra and panics on a value the
// dictionary VR cannot hold.
func Element(t tag.Tag, value any) *dicom.Element {
	el, err := dicom.NewElement(t, value)
	if err != nil {
		panic(fmt.Sprintf("dicomfixture: %v: %v", t, err))
	}
	return el
}

func Write(path string, opts Options) error {
	data, err := build(opts)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Build is Write to memory. It panics if the data set cannot be encoded.
func Build(opts Options) []byte {
	data, err := build(opts)
	if err != nil {
		panic(err)
	}
	return data
}

func build(opts Options) ([]byte, error) {
	uid := opts.TransferSyntaxUID
	if uid == "" {
		uid = ExplicitVRLittleEndian
	}
	bits := opts.BitsAllocated
	if bits == 0 {
		bits = 16
	}
	stored := opts.BitsStored
	if stored == 0 {
		stored = bits
	}
	spp := opts.SamplesPerPixel
	if spp == 0 {
		spp = 1
	}
	photometric := opts.Photometric
	if photometric == "" {
		photometric = "MONOCHROME2"
	}

	var ds elements
	ds.add(tag.FileMetaInformationVersion, []byte{0x00, 0x01})
	ds.add(tag.MediaStorageSOPClassUID, []string{mrImageStorage})
	ds.add(tag.MediaStorageSOPInstanceUID, []string{"1.2.826.0.1.3680043.2.1125.1"})
	ds.add(tag.TransferSyntaxUID, []string{uid})
	ds.add(tag.SOPClassUID, []string{mrImageStorage})
	ds.add(tag.SamplesPerPixel, []int{spp})
	ds.add(tag.PhotometricInterpretation, []string{photometric})
	ds.add(tag.Rows, []int{opts.Rows})
	ds.add(tag.Columns, []int{opts.Columns})
	ds.add(tag.BitsAllocated, []int{bits})
	ds.add(tag.BitsStored, []int{stored})
	ds.add(tag.HighBit, []int{stored - 1})
	ds.add(tag.PixelRepresentation, []int{opts.PixelRepresentation})
	if opts.PlanarConfiguration != nil {
		ds.add(tag.PlanarConfiguration, []int{*opts.PlanarConfiguration})
	}
	if opts.Frames > 0 {
		ds.add(tag.NumberOfFrames, []string{strconv.Itoa(opts.Frames)})
	}
	if opts.CharacterSet != "" {
		ds.add(tag.SpecificCharacterSet, []string{opts.CharacterSet})
	}
	if opts.Modality != "" {
		ds.add(tag.Modality, []string{opts.Modality})
	}
	if opts.PatientName != "" {
		ds.add(tag.PatientName, []string{opts.PatientName})
	}
	if opts.WithSequence {
		ds.addSequence()
	}
	if ds.err != nil {
		return nil, ds.err
	}
	ds.list = append(ds.list, opts.Extra...)
	sort.SliceStable(ds.list, func(i, j int) bool {
		return tagOrder(ds.list[i].Tag) < tagOrder(ds.list[j].Tag)
	})

	var out bytes.Buffer
	if err := dicom.Write(&out, dicom.Dataset{Elements: ds.list}); err != nil {
		return nil, fmt.Errorf("writing data set: %w", err)
	}

	enc := encoder{order: binary.LittleEndian, implicit: uid == ImplicitVRLittleEndian}
	if uid == ExplicitVRBigEndian {
		enc.order = binary.BigEndian
	}
	if !opts.OmitPixelData {
		if opts.Encapsulated {
			enc.encapsulatedPixelData(&out)
		} else {
			enc.pixelData(&out, bits, opts.Samples)
		}
	}

	if uid == DeflatedExplicitVRLittleEndian {
		return deflate(out.Bytes())
	}
	return out.Bytes(), nil
}

type elements struct {
	list []*dicom.Element
	err  error
}

func (e *elements) add(t tag.Tag, value any) {
	if e.err != nil {
		return
	}
	el, err := dicom.NewElement(t, value)
	if err != nil {
		e.err = fmt.Errorf("%v: %w", t, err)
		return
	}
	e.list = append(e.list, el)
}

// addSequence writes (0008,1140) with one item that holds a nested (0008,2112) sequence.
func (e *elements) addSequence() {
	if e.err != nil {
		return
	}
	nested, err := dicom.NewElement(tag.SourceImageSequence, [][]*dicom.Element{{
		Element(tag.ReferencedSOPInstanceUID, []string{"1.2.3.4.5"}),
	}})
	if err != nil {
		e.err = err
		return
	}
	e.add(tag.ReferencedImageSequence, [][]*dicom.Element{{
		Element(tag.ReferencedSOPClassUID, []string{"1.2.3.4"}),
		nested,
	}})
}

// deflate compresses everything after the file meta group.
func deflate(data []byte) ([]byte, error) {
	metaEnd := 144 + int(binary.LittleEndian.Uint32(data[140:144]))
	var out bytes.Buffer
	out.Write(data[:metaEnd])
	fw, err := flate.NewWriter(&out, flate.DefaultCompression)
	if err != nil {
		return nil, err
	}
	if _, err := fw.Write(data[metaEnd:]); err != nil {
		return nil, err
	}
	if err := fw.Close(); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// encoder writes the pixel data element itself, which can be empty, shorter than the
// image or compressed. The value is not padded to an even length.
type encoder struct {
	order    binary.ByteOrder
	implicit bool
}

func (e encoder) pixelData(buf *bytes.Buffer, bits int, samples []int) {
	width := (bits + 7) / 8
	b := make([]byte, len(samples)*width)
	for i, v := range samples {
		switch width {
		case 1:
			b[i] = byte(v)
		case 2:
			e.order.PutUint16(b[i*2:], uint16(v))
		default:
			e.order.PutUint32(b[i*4:], uint32(v))
		}
	}
	vr := "OW"
	if width == 1 {
		vr = "OB"
	}
	e.header(buf, vr, uint32(len(b)))
	buf.Write(b)
}

func (e encoder) encapsulatedPixelData(buf *bytes.Buffer) {
	e.header(buf, "OB", undefinedLength)
	e.item(buf, 0)
	e.item(buf, 4)
	buf.Write([]byte{0xFF, 0xD8, 0xFF, 0xD9})
	e.put16(buf, 0xFFFE)
	e.put16(buf, 0xE0DD)
	e.put32(buf, 0)
}

func (e encoder) header(buf *bytes.Buffer, vr string, length uint32) {
	e.put16(buf, 0x7FE0)
	e.put16(buf, 0x0010)
	if e.implicit {
		e.put32(buf, length)
		return
	}
	buf.WriteString(vr)
	e.put16(buf, 0)
	e.put32(buf, length)
}

func (e encoder) item(buf *bytes.Buffer, length uint32) {
	e.put16(buf, 0xFFFE)
	e.put16(buf, 0xE000)
	e.put32(buf, length)
}

func (e encoder) put16(buf *bytes.Buffer, v uint16) {
	b := make([]byte, 2)
	e.order.PutUint16(b, v)
	buf.Write(b)
}

func (e encoder) put32(buf *bytes.Buffer, v uint32) {
	b := make([]byte, 4)
	e.order.PutUint32(b, v)
	buf.Write(b)
}

func tagOrder(t tag.Tag) uint32 {
	return uint32(t.Group)<<16 | uint32(t.Element)
}
