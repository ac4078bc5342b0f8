package converter

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"mritopng/contracts"
	"mritopng/dicom_reader/dicomfixture"
	"mritopng/logging"
)

func newBatch(t *testing.T, logger logging.Logger, opts BatchOptions, convOpts ...Option) *Batch {
	t.Helper()
	return NewBatch(New(pngEncoder(t), logger, convOpts...), logger, opts)
}

func listFiles(t *testing.T, root string) []string {
	t.Helper()
	var files []string
	require.NoError(t, filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			rel, _ := filepath.Rel(root, path)
			files = append(files, rel)
		}
		return nil
	}))
	return files
}

func TestBatchValidAndCorrupt(t *testing.T) {
	in := t.TempDir()
	out := filepath.Join(t.TempDir(), "png")
	writeFixture(t, in, "good.dcm", dicomfixture.Greyscale(2, 2, 1, 2, 3, 4))
	require.NoError(t, os.WriteFile(filepath.Join(in, "bad.dcm"), []byte("garbage"), 0o644))
	logger, logs := newObservedLogger()

	summary := newBatch(t, logger, BatchOptions{}).Run(in, out)

	assert.Equal(t, []string{"good.png"}, listFiles(t, out))
	assert.Equal(t, 2, problems(logs))
	assert.Equal(t, 2, logs.FilterLevelExact(zapcore.ErrorLevel).Len())
	assert.Equal(t, 1, summary.Converted)
	assert.Equal(t, 1, summary.Failed)
	assert.Len(t, summary.Results, 2)
	assert.NotEmpty(t, summary.RunID)
	assert.Empty(t, summary.Aborted)

	last := logs.All()[logs.Len()-1]
	assert.Contains(t, last.Message, "Finished processing")
}

func TestBatchEmptyPixels(t *testing.T) {
	in := t.TempDir()
	out := filepath.Join(t.TempDir(), "png")
	writeFixture(t, in, "empty.dcm", dicomfixture.Greyscale(3, 3))
	logger, logs := newObservedLogger()

	summary := newBatch(t, logger, BatchOptions{}).Run(in, out)

	assert.Empty(t, listFiles(t, out))
	assert.Equal(t, 1, problems(logs))
	assert.Equal(t, 1, logs.FilterLevelExact(zapcore.WarnLevel).Len())
	assert.Equal(t, 1, summary.Skipped)
}

func TestBatchMirrorsTree(t *testing.T) {
	in := t.TempDir()
	out := filepath.Join(t.TempDir(), "png")
	require.NoError(t, os.MkdirAll(filepath.Join(in, "a", "b"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(in, "empty", "deeper"), 0o755))
	writeFixture(t, filepath.Join(in, "a", "b"), "x.DCM", dicomfixture.Greyscale(1, 2, 0, 9))
	writeFixture(t, filepath.Join(in, "a"), "y.dcm", dicomfixture.Greyscale(1, 2, 0, 9))
	require.NoError(t, os.WriteFile(filepath.Join(in, "a", "notes.txt"), []byte("x"), 0o644))

	summary := newBatch(t, logging.Nop(), BatchOptions{RunID: "run-1"}).Run(in, out)

	for _, dir := range []string{"a", filepath.Join("a", "b"), "empty", filepath.Join("empty", "deeper")} {
		assert.DirExists(t, filepath.Join(out, dir))
	}
	assert.ElementsMatch(t, []string{filepath.Join("a", "y.png"), filepath.Join("a", "b", "x.png")}, listFiles(t, out))
	assert.Equal(t, 5, summary.Folders)
	assert.Equal(t, 2, summary.Converted)
	assert.Equal(t, "run-1", summary.RunID)
}

func TestBatchSymlinkedRoot(t *testing.T) {
	target := t.TempDir()
	writeFixture(t, target, "good.dcm", dicomfixture.Greyscale(2, 2, 1, 2, 3, 4))
	writeFixture(t, target, "._scan.dcm", dicomfixture.Greyscale(1, 2, 0, 9))
	in := filepath.Join(t.TempDir(), "scans")
	require.NoError(t, os.Symlink(target, in))
	out := filepath.Join(t.TempDir(), "png")
	logger, logs := newObservedLogger()

	summary := newBatch(t, logger, BatchOptions{}).Run(in, out)

	assert.ElementsMatch(t, []string{"good.png", "._scan.png"}, listFiles(t, out))
	assert.Equal(t, 1, summary.Folders)
	assert.Equal(t, 2, summary.Converted)
	assert.Zero(t, problems(logs))
	for _, r := range summary.Results {
		assert.Equal(t, in, filepath.Dir(r.InputPath))
	}
}

func TestBatchMissingRoot(t *testing.T) {
	in := filepath.Join(t.TempDir(), "nope")
	out := filepath.Join(t.TempDir(), "png")
	logger, logs := newObservedLogger()

	var summary contracts.BatchSummary
	assert.NotPanics(t, func() {
		summary = newBatch(t, logger, BatchOptions{}).Run(in, out)
	})

	assert.Equal(t, contracts.KindMissingRoot, summary.Aborted)
	assert.NoDirExists(t, out)
	errs := logs.FilterLevelExact(zapcore.ErrorLevel).All()
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Message, in)
}

func TestBatchUnusableOutputRoot(t *testing.T) {
	in := t.TempDir()
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	summary := newBatch(t, logging.Nop(), BatchOptions{}).Run(in, filepath.Join(blocker, "png"))
	assert.Equal(t, contracts.KindOutputRoot, summary.Aborted)
}
