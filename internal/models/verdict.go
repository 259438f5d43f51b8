package models

// FileAnalysis describes one file extracted from an uploaded archive.
// A record is immutable once built; either the content fields or Error is
// populated, never both. The content fields always appear on the wire, a
// zero size and an empty analysis included; only Error is elided when
// absent.
type FileAnalysis struct {
	FileName   string `json:"file_name" msgpack:"file_name"`
	FileType   string `json:"file_type" msgpack:"file_type"`
	FileSize   int64  `json:"file_size" msgpack:"file_size"`
	Content    string `json:"content" msgpack:"content"`
	AIAnalysis string `json:"ai_analysis" msgpack:"ai_analysis"`
	Error      string `json:"error,omitempty" msgpack:"error,omitempty"`
}

// ValidationVerdict is the terminal output of one validation run.
// AIAnalysis is nil when no consolidated analysis was performed (for example
// when the archive contains no Python files).
type ValidationVerdict struct {
	IsValid       bool           `json:"isValid" msgpack:"isValid"`
	Message       string         `json:"message" msgpack:"message"`
	FilesAnalyzed []FileAnalysis `json:"files_analyzed" msgpack:"files_analyzed"`
	AIAnalysis    *string        `json:"ai_analysis" msgpack:"ai_analysis"`
}
