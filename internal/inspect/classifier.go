// Package inspect classifies and reads files extracted from an uploaded
// archive.
package inspect

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
)

// Kind is the semantic category of an extracted file.
type Kind string

const (
	KindHidden Kind = "hidden"
	KindText   Kind = "text"
	KindImage  Kind = "image"
	KindBinary Kind = "binary"
)

// hiddenPrefix marks resource-fork shadow files written by some archivers.
const hiddenPrefix = "._"

// mediaTypeUnknown is reported when no media type can be inferred.
const mediaTypeUnknown = "unknown"

// extensionTypes pins media types for extensions the service cares about.
// Go's built-in table omits several of these and the system mime.types file
// is not guaranteed to exist, so classification must not depend on either.
var extensionTypes = map[string]string{
	".py":   "text/x-python",
	".txt":  "text/plain",
	".md":   "text/markdown",
	".rst":  "text/x-rst",
	".csv":  "text/csv",
	".yaml": "text/yaml",
	".yml":  "text/yaml",
}

// Classification describes one file's semantic kind, inferred media type,
// and size. It is computed once per file and never re-evaluated.
type Classification struct {
	Kind      Kind
	MediaType string
	Size      int64
}

// Classify determines the semantic kind of the file at path from its name
// and inferred media type.
func Classify(path string) (Classification, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Classification{}, fmt.Errorf("stat %s: %w", filepath.Base(path), err)
	}

	c := Classification{Size: info.Size()}

	if strings.HasPrefix(filepath.Base(path), hiddenPrefix) {
		c.Kind = KindHidden
		c.MediaType = string(KindHidden)
		return c, nil
	}

	c.MediaType = mediaTypeFor(path)
	switch {
	case strings.HasPrefix(c.MediaType, "text/"):
		c.Kind = KindText
	case strings.HasPrefix(c.MediaType, "image/"):
		c.Kind = KindImage
	default:
		c.Kind = KindBinary
	}

	return c, nil
}

// AnalysisEligible reports whether the file's content should be sent for
// AI analysis. Only plain text and Python source qualify; other text kinds
// (markdown, csv, ...) are read and previewed but never analyzed.
func (c Classification) AnalysisEligible() bool {
	return c.MediaType == "text/plain" || c.MediaType == "text/x-python"
}

// mediaTypeFor infers a media type from the file extension, stripping any
// parameters such as charset.
func mediaTypeFor(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if t, ok := extensionTypes[ext]; ok {
		return t
	}

	t := mime.TypeByExtension(ext)
	if t == "" {
		return mediaTypeUnknown
	}
	if mediaType, _, err := mime.ParseMediaType(t); err == nil {
		return mediaType
	}
	return t
}
