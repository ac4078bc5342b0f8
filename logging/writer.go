package logging

import (
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// console is where terminal output goes. Tests swap it.
var console zapcore.WriteSyncer = zapcore.Lock(os.Stdout)

// fileWriter opens the log file in append mode and rotates it once it reaches MaxSize.
func fileWriter(config Config) (*lumberjack.Logger, error) {
	if dir := filepath.Dir(config.File); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	fw := &lumberjack.Logger{
		Filename:   config.File,
		MaxSize:    config.MaxSize,
		MaxBackups: config.MaxBackups,
		MaxAge:     config.MaxAge,
		Compress:   config.Compress,
		LocalTime:  true,
	}
	// lumberjack opens on first write; an empty one surfaces a bad path here.
	if _, err := fw.Write(nil); err != nil {
		return nil, err
	}
	return fw, nil
}

// getWriteSyncer tees the file and, when LogInTerminal is set, stdout.
func getWriteSyncer(config Config) (zapcore.WriteSyncer, io.Closer, error) {
	fw, err := fileWriter(config)
	if err != nil {
		return nil, nil, err
	}
	if config.LogInTerminal {
		return zapcore.NewMultiWriteSyncer(console, zapcore.AddSync(fw)), fw, nil
	}
	return zapcore.AddSync(fw), fw, nil
}
