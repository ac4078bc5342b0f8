package files_manager

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"mritopng/contracts"
)

type DICOMfolder = contracts.DICOMfolder

// IsDICOMFile reports a ".dcm" name in any letter case.
func IsDICOMFile(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".dcm")
}

func DirExists(path string) bool {
	stat, err := os.Stat(path)
	return err == nil && stat.IsDir()
}

func CreateDir(path string) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", path, err)
	}
	return nil
}

// GetDICOMPaths lists the DICOM files directly inside dir in lexical order, with their
// total size.
func GetDICOMPaths(dir string) ([]string, int64, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, 0, err
	}
	dicomFiles := make([]string, 0, len(entries))
	var size int64 = 0
	for _, entry := range entries {
		if entry.IsDir() || !IsDICOMFile(entry.Name()) {
			continue
		}
		dicomFiles = append(dicomFiles, filepath.Join(dir, entry.Name()))
		if info, err := entry.Info(); err == nil {
			size += info.Size()
		}
	}
	return dicomFiles, size, nil
}

// GetDICOMFolders walks inputRoot and returns every directory, the root and empty ones
// included, with its mirror under outputRoot. A symlinked root is followed; links below
// it are not. Paths are reported under inputRoot as given. Directories that cannot be
// read are left out and reported in the joined error; the folders found are still returned.
func GetDICOMFolders(inputRoot, outputRoot string) ([]DICOMfolder, error) {
	resolved, err := filepath.EvalSymlinks(inputRoot)
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", inputRoot, err)
	}

	var folders []DICOMfolder
	var errs []error
	err = filepath.WalkDir(resolved, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == resolved {
				return err
			}
			errs = append(errs, err)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(resolved, path)
		if err != nil {
			return err
		}
		dir := filepath.Join(inputRoot, rel)
		dicomFiles, size, err := GetDICOMPaths(dir)
		if err != nil {
			errs = append(errs, err)
			return fs.SkipDir
		}
		folders = append(folders, DICOMfolder{
			DICOMFilesPaths: dicomFiles,
			Name:            filepath.Base(dir),
			Path:            dir,
			RelPath:         rel,
			OutputPath:      filepath.Join(outputRoot, rel),
			DICOMFilesSize:  size,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", inputRoot, err)
	}
	return folders, errors.Join(errs...)
}
