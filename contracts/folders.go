package contracts

import "time"

// DICOMfolder is one directory of the input tree and its mirror in the output tree.
type DICOMfolder struct {
	DICOMFilesPaths []string
	Name            string
	Path            string
	RelPath         string
	OutputPath      string
	DICOMFilesSize  int64
}

type BatchSummary struct {
	RunID      string          `json:"runId"`
	InputRoot  string          `json:"inputRoot"`
	OutputRoot string          `json:"outputRoot"`
	Started    time.Time       `json:"started"`
	Finished   time.Time       `json:"finished"`
	Folders    int             `json:"folders"`
	Converted  int             `json:"converted"`
	Skipped    int             `json:"skipped"`
	Failed     int             `json:"failed"`
	Aborted    ErrorKind       `json:"aborted,omitempty"`
	Message    string          `json:"message,omitempty"`
	Albums     []string        `json:"albums,omitempty"`
	Results    []ConvertResult `json:"results"`
}

func (s *BatchSummary) Add(r ConvertResult) {
	switch r.Status {
	case StatusSuccess:
		s.Converted++
	case StatusSkipped:
		s.Skipped++
	case StatusFailed:
		s.Failed++
	}
	s.Results = append(s.Results, r)
}
