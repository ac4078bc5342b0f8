package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"mritopng/config"
	"mritopng/contracts"
	"mritopng/converter"
	"mritopng/image_writer"
	"mritopng/logging"
	"mritopng/utils"
)

type InputFlags = contracts.InputFlags

// flagKeys maps command line flags to settings keys.
var flagKeys = map[string]string{
	"format":     "format",
	"quality":    "quality",
	"backend":    "backend",
	"max-width":  "max-width",
	"max-height": "max-height",
	"album":      "album",
	"report":     "report",
	"log-file":   "log.file",
	"log-level":  "log.level",
}

func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}

// run returns 2 for usage and configuration errors and 0 once the batch was attempted.
func run(argv []string, stderr io.Writer) int {
	args, overrides, err := parseFlags(argv, stderr)
	if err != nil {
		return 2
	}

	settings, err := config.Load(args.ConfigFile, overrides)
	if err != nil {
		fmt.Fprintf(stderr, "[ERROR]: %v\n", err)
		return 2
	}

	base, err := logging.NewLogger(settings.Log)
	if err != nil {
		fmt.Fprintf(stderr, "[ERROR]: %v\n", err)
		return 1
	}
	defer base.Close()

	runID := uuid.NewString()
	logger := base.With(zap.String("run", runID))

	encoder, err := image_writer.NewEncoder(image_writer.Options{
		Format:    settings.Format,
		Quality:   settings.Quality,
		Backend:   settings.Backend,
		MaxWidth:  settings.MaxWidth,
		MaxHeight: settings.MaxHeight,
	})
	if err != nil {
		logger.Error(fmt.Sprintf("Cannot create %s encoder: %v", settings.Format, err))
		return 2
	}

	var convOpts []converter.Option
	batchOpts := converter.BatchOptions{RunID: runID}
	if settings.Album {
		album := converter.NewAlbum(logger)
		convOpts = append(convOpts, converter.WithObserver(album.Add))
		batchOpts.Album = album
	}
	conv := converter.New(encoder, logger, convOpts...)
	summary := converter.NewBatch(conv, logger, batchOpts).Run(args.InputRootDir, args.OutputRootDir)

	if settings.Report != "" {
		if err := utils.WriteReport(settings.Report, summary); err != nil {
			logger.Error(fmt.Sprintf("Error writing report '%s': %v", settings.Report, err))
		} else {
			logger.Info(fmt.Sprintf("Wrote report '%s'.", settings.Report))
		}
	}
	return 0
}

// parseFlags reads argv into InputFlags. Only flags given explicitly end up in the
// overrides, so file and environment settings apply to the rest.
func parseFlags(argv []string, stderr io.Writer) (InputFlags, map[string]any, error) {
	var args InputFlags
	fs := flag.NewFlagSet("mritopng", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: mritopng [flags] <input-root> <output-root>")
		fs.PrintDefaults()
	}

	defaults := config.Default()
	fs.StringVar(&args.ConfigFile, "config", "", "YAML settings file")
	fs.StringVar(&args.OutputFileType, "format", defaults.Format, "output format: png, jpeg, tiff, bmp, pdf or webp")
	fs.IntVar(&args.Quality, "quality", defaults.Quality, "JPEG, PDF and WebP quality (1-100)")
	fs.StringVar(&args.Backend, "backend", defaults.Backend, "encoder backend: native, imagick or vips")
	fs.IntVar(&args.MaxWidth, "max-width", 0, "downscale wider images to this width")
	fs.IntVar(&args.MaxHeight, "max-height", 0, "downscale taller images to this height")
	fs.BoolVar(&args.Album, "album", false, "also write one PDF per output directory")
	fs.StringVar(&args.Report, "report", "", "write a JSON run summary to this file")
	fs.StringVar(&args.LogFile, "log-file", defaults.Log.File, "log file, appended to on every run")
	fs.StringVar(&args.LogLevel, "log-level", defaults.Log.Level, "debug, info, warn or error")

	if err := fs.Parse(argv); err != nil {
		return args, nil, err
	}
	if fs.NArg() != 2 {
		fs.Usage()
		return args, nil, fmt.Errorf("expected 2 arguments, got %d", fs.NArg())
	}
	args.InputRootDir = fs.Arg(0)
	args.OutputRootDir = fs.Arg(1)

	values := map[string]any{
		"format":     args.OutputFileType,
		"quality":    args.Quality,
		"backend":    args.Backend,
		"max-width":  args.MaxWidth,
		"max-height": args.MaxHeight,
		"album":      args.Album,
		"report":     args.Report,
		"log-file":   args.LogFile,
		"log-level":  args.LogLevel,
	}
	overrides := make(map[string]any)
	fs.Visit(func(f *flag.Flag) {
		if key, ok := flagKeys[f.Name]; ok {
			overrides[key] = values[f.Name]
		}
	})
	return args, overrides, nil
}
