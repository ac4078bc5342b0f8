package utils

import (
	"fmt"
	"os"
	"path/filepath"

	jsoniter "github.com/json-iterator/go"

	"mritopng/contracts"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// WriteReport stores the run summary as indented JSON.
func WriteReport(path string, summary contracts.BatchSummary) error {
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating report directory: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}

func ReadReport(path string) (contracts.BatchSummary, error) {
	var summary contracts.BatchSummary
	data, err := os.ReadFile(path)
	if err != nil {
		return summary, err
	}
	if err := json.Unmarshal(data, &summary); err != nil {
		return summary, fmt.Errorf("decoding report: %w", err)
	}
	return summary, nil
}
