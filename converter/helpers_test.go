package converter

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"mritopng/dicom_reader"
	"mritopng/dicom_reader/dicomfixture"
	"mritopng/image_writer"
	"mritopng/logging"
)

func newObservedLogger() (logging.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.InfoLevel)
	return logging.FromZap(zap.New(core)), logs
}

// problems counts warnings and errors.
func problems(logs *observer.ObservedLogs) int {
	n := 0
	for _, e := range logs.All() {
		if e.Level >= zapcore.WarnLevel {
			n++
		}
	}
	return n
}

func pngEncoder(t *testing.T) image_writer.Encoder {
	t.Helper()
	enc, err := image_writer.NewEncoder(image_writer.Options{Format: "png"})
	require.NoError(t, err)
	return enc
}

func writeFixture(t *testing.T, dir, name string, opts dicomfixture.Options) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, dicomfixture.Write(path, opts))
	return path
}

func parseFixture(t *testing.T, opts dicomfixture.Options) *dicom_reader.Record {
	t.Helper()
	rec, err := dicom_reader.Parse(dicomfixture.Build(opts))
	require.NoError(t, err)
	return rec
}

func ybr(rows, cols int, samples ...int) dicomfixture.Options {
	return dicomfixture.Options{
		Rows: rows, Columns: cols, SamplesPerPixel: 3, BitsAllocated: 8,
		Photometric:         dicom_reader.YBRFull,
		PlanarConfiguration: dicomfixture.Planar(0),
		Samples:             samples,
	}
}

type decoderFunc func(path string) (*dicom_reader.Record, error)

func (f decoderFunc) Decode(path string) (*dicom_reader.Record, error) {
	return f(path)
}
