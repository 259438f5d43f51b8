// Package archive extracts uploaded ZIP archives into a workspace directory.
package archive

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrInvalidArchive indicates the uploaded bytes could not be opened as a
// ZIP archive. Callers turn this into a structured validation failure.
var ErrInvalidArchive = errors.New("not a valid zip archive")

// ErrUnsafeArchive indicates the archive opened fine but violates an
// extraction safety rule: an entry escapes the workspace root, or the
// archive exceeds the entry or size caps.
var ErrUnsafeArchive = errors.New("archive rejected")

// Limits bounds resource use during extraction. Archives come from untrusted
// uploads; both caps guard against decompression bombs.
type Limits struct {
	MaxEntries    int
	MaxTotalBytes int64
}

// DefaultLimits returns the extraction limits used when none are configured.
func DefaultLimits() Limits {
	return Limits{
		MaxEntries:    1000,
		MaxTotalBytes: 256 * 1024 * 1024,
	}
}

// Extract writes every file entry of the archive into destDir, preserving
// relative paths. Entries whose resolved path would escape destDir are
// rejected. Returned paths are in archive entry order.
func Extract(data []byte, destDir string, limits Limits) ([]string, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArchive, err)
	}

	if limits.MaxEntries > 0 && len(reader.File) > limits.MaxEntries {
		return nil, fmt.Errorf("%w: %d entries, limit is %d", ErrUnsafeArchive, len(reader.File), limits.MaxEntries)
	}

	var extracted []string
	var totalBytes int64

	for _, entry := range reader.File {
		if entry.FileInfo().IsDir() {
			continue
		}

		target, err := securePath(destDir, entry.Name)
		if err != nil {
			return nil, err
		}

		remaining := int64(-1)
		if limits.MaxTotalBytes > 0 {
			remaining = limits.MaxTotalBytes - totalBytes
			if remaining <= 0 {
				return nil, fmt.Errorf("%w: exceeds extraction limit of %d bytes", ErrUnsafeArchive, limits.MaxTotalBytes)
			}
		}

		written, err := writeEntry(entry, target, remaining)
		if err != nil {
			return nil, err
		}
		totalBytes += written

		if limits.MaxTotalBytes > 0 && totalBytes > limits.MaxTotalBytes {
			return nil, fmt.Errorf("%w: exceeds extraction limit of %d bytes", ErrUnsafeArchive, limits.MaxTotalBytes)
		}

		extracted = append(extracted, target)
	}

	return extracted, nil
}

// securePath resolves an archive entry name against the destination root and
// rejects entries that would land outside it.
func securePath(destDir, name string) (string, error) {
	target := filepath.Join(destDir, filepath.FromSlash(name))
	rel, err := filepath.Rel(destDir, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator)) {
		return "", fmt.Errorf("%w: entry %q escapes extraction directory", ErrUnsafeArchive, name)
	}
	return target, nil
}

// writeEntry copies one archive entry to disk. When maxBytes is non-negative
// the copy stops one byte past the cap so the caller can detect overflow.
func writeEntry(entry *zip.File, target string, maxBytes int64) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return 0, fmt.Errorf("creating directory for %s: %w", entry.Name, err)
	}

	src, err := entry.Open()
	if err != nil {
		return 0, fmt.Errorf("opening archive entry %s: %w", entry.Name, err)
	}
	defer src.Close()

	dst, err := os.Create(target)
	if err != nil {
		return 0, fmt.Errorf("creating file for %s: %w", entry.Name, err)
	}
	defer dst.Close()

	var reader io.Reader = src
	if maxBytes >= 0 {
		reader = io.LimitReader(src, maxBytes+1)
	}

	written, err := io.Copy(dst, reader)
	if err != nil {
		return written, fmt.Errorf("extracting %s: %w", entry.Name, err)
	}

	return written, nil
}
