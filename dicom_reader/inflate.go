package dicom_reader

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/flate"
)

const (
	explicitVRLittleEndian         = "1.2.840.10008.1.2.1"
	deflatedExplicitVRLittleEndian = "1.2.840.10008.1.2.1.99"
)

// metaStart is the offset of the file meta group, after the preamble and signature.
const metaStart = 132

var (
	groupLengthHeader    = []byte{0x02, 0x00, 0x00, 0x00, 'U', 'L'}
	transferSyntaxHeader = []byte{0x02, 0x00, 0x10, 0x00, 'U', 'I'}
)

// inflateDataSet rewrites a deflated explicit VR little endian file as a plain explicit
// VR little endian one: the data set after the meta group is inflated and the transfer
// syntax element and group length are patched. Other files are returned as they are.
func inflateDataSet(data []byte) ([]byte, bool, error) {
	if len(data) < metaStart+12 || !bytes.Equal(data[metaStart:metaStart+6], groupLengthHeader) {
		return data, false, nil
	}
	groupLength := int(binary.LittleEndian.Uint32(data[metaStart+8:]))
	metaEnd := metaStart + 12 + groupLength
	if groupLength < 0 || metaEnd > len(data) {
		return data, false, nil
	}
	meta := data[metaStart+12 : metaEnd]

	at := bytes.Index(meta, transferSyntaxHeader)
	if at < 0 || at+8 > len(meta) {
		return data, false, nil
	}
	n := int(binary.LittleEndian.Uint16(meta[at+6:]))
	if at+8+n > len(meta) {
		return data, false, nil
	}
	if strings.TrimRight(string(meta[at+8:at+8+n]), " \x00") != deflatedExplicitVRLittleEndian {
		return data, false, nil
	}

	body, err := io.ReadAll(flate.NewReader(bytes.NewReader(data[metaEnd:])))
	if err != nil {
		return nil, false, fmt.Errorf("inflating data set: %w", err)
	}

	uid := []byte(explicitVRLittleEndian + "\x00")
	out := bytes.NewBuffer(make([]byte, 0, metaEnd+len(body)))
	out.Write(data[:metaStart+8])
	binary.Write(out, binary.LittleEndian, uint32(groupLength-n+len(uid)))
	out.Write(meta[:at+6])
	binary.Write(out, binary.LittleEndian, uint16(len(uid)))
	out.Write(uid)
	out.Write(meta[at+8+n:])
	out.Write(body)
	return out.Bytes(), true, nil
}
