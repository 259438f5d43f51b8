package inspect

import (
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"
)

// PreviewLimit caps the stored content preview, counted in characters.
const PreviewLimit = 1000

// TruncationMarker is appended to previews longer than PreviewLimit.
const TruncationMarker = "..."

// Fixed placeholder contents for files that are never opened for reading.
const (
	PlaceholderHidden = "Hidden system file"
	PlaceholderImage  = "Binary image file"
	PlaceholderBinary = "Binary file"
)

// ReadText reads and decodes the full content of a text-kind file.
// Content that is not valid UTF-8 is a per-file error, not a pipeline error.
func ReadText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", filepath.Base(path), err)
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("file %s is not valid UTF-8 text", filepath.Base(path))
	}
	return string(data), nil
}

// Preview returns the display form of content: the first PreviewLimit
// characters, with TruncationMarker appended when content was longer.
func Preview(content string) string {
	runes := []rune(content)
	if len(runes) <= PreviewLimit {
		return content
	}
	return string(runes[:PreviewLimit]) + TruncationMarker
}

// Placeholder returns the fixed content string for a kind that is never
// opened for reading.
func Placeholder(kind Kind) string {
	switch kind {
	case KindHidden:
		return PlaceholderHidden
	case KindImage:
		return PlaceholderImage
	default:
		return PlaceholderBinary
	}
}
