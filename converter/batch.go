package converter

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"mritopng/contracts"
	"mritopng/files_manager"
	"mritopng/logging"
	"mritopng/utils"
)

// FileConverter is a contracts.Converter that knows the suffix of its output files.
type FileConverter interface {
	contracts.Converter
	Extension() string
}

type BatchOptions struct {
	// RunID tags the summary; a random one is generated when empty.
	RunID string
	// Album, when set, is written after the walk. The converter must report to it
	// through WithObserver(album.Add).
	Album *Album
}

// Batch converts every DICOM file of a tree, mirroring its directories.
type Batch struct {
	conv   FileConverter
	logger logging.Logger
	opts   BatchOptions
}

func NewBatch(conv FileConverter, logger logging.Logger, opts BatchOptions) *Batch {
	if opts.RunID == "" {
		opts.RunID = uuid.NewString()
	}
	return &Batch{conv: conv, logger: logger, opts: opts}
}

// Run walks inputRoot one file at a time. A missing input root aborts the run before
// anything is created; per-file problems are logged and the walk goes on.
func (b *Batch) Run(inputRoot, outputRoot string) contracts.BatchSummary {
	summary := contracts.BatchSummary{
		RunID:      b.opts.RunID,
		InputRoot:  inputRoot,
		OutputRoot: outputRoot,
		Started:    time.Now(),
	}
	defer func() {
		summary.Finished = time.Now()
		b.logger.Info(fmt.Sprintf("Finished processing DICOM files in '%s'.", inputRoot),
			zap.Int("converted", summary.Converted),
			zap.Int("skipped", summary.Skipped),
			zap.Int("failed", summary.Failed),
			zap.Duration("took", summary.Finished.Sub(summary.Started)))
	}()

	if !files_manager.DirExists(inputRoot) {
		summary.Aborted = contracts.KindMissingRoot
		summary.Message = fmt.Sprintf("input folder '%s' does not exist", inputRoot)
		b.logger.Error(fmt.Sprintf("Input folder '%s' does not exist.", inputRoot))
		return summary
	}
	if err := files_manager.CreateDir(outputRoot); err != nil {
		summary.Aborted = contracts.KindOutputRoot
		summary.Message = err.Error()
		b.logger.Error(fmt.Sprintf("Cannot create output folder '%s': %v", outputRoot, err))
		return summary
	}

	folders, err := files_manager.GetDICOMFolders(inputRoot, outputRoot)
	if err != nil {
		b.logger.Error(fmt.Sprintf("Error scanning '%s': %v", inputRoot, err))
	}
	for _, folder := range folders {
		if err := files_manager.CreateDir(folder.OutputPath); err != nil {
			b.logger.Error(fmt.Sprintf("Error mirroring '%s': %v", folder.Path, err))
			continue
		}
		summary.Folders++
		for _, file := range folder.DICOMFilesPaths {
			b.convert(&summary, file, utils.OutputPath(folder.OutputPath, file, b.conv.Extension()))
		}
	}

	if b.opts.Album != nil {
		albums, err := b.opts.Album.Write()
		if err != nil {
			b.logger.Error(fmt.Sprintf("Error writing albums: %v", err))
		}
		summary.Albums = albums
	}
	return summary
}

func (b *Batch) convert(summary *contracts.BatchSummary, inputPath, outputPath string) {
	result := b.conv.ConvertFile(inputPath, outputPath)
	summary.Add(result)
	if result.Status == contracts.StatusFailed {
		b.logger.Error(fmt.Sprintf("Error processing '%s': %v", inputPath, result.Err),
			zap.String("kind", string(result.Kind)),
			zap.String("output", outputPath))
	}
}
