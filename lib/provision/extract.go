// Copyright 2026 The Devcade Authors
// SPDX-License-Identifier: Apache-2.0

package provision

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"
)

// EntryError records a single archive entry that could not be
// extracted.
type EntryError struct {
	Name string
	Err  error
}

func (e EntryError) Error() string {
	return fmt.Sprintf("extracting %s: %v", e.Name, e.Err)
}

// ExtractReport summarizes a best-effort extraction: how many entries
// landed on disk and which ones failed.
type ExtractReport struct {
	Extracted int
	Failures  []EntryError
}

// extractArchive unpacks a zip archive (as raw bytes) into dir.
// Extraction is best-effort per entry: a failure to create one
// directory or write one file is recorded and skipped, never fatal to
// the whole unpack. Directories are created lazily and parent
// directories are created before file writes, so archives without
// explicit directory entries extract correctly.
//
// Only a malformed archive (unreadable central directory) fails the
// call itself.
func extractArchive(data []byte, dir string, logger *slog.Logger) (ExtractReport, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return ExtractReport{}, fmt.Errorf("opening archive: %w", err)
	}

	var report ExtractReport
	for _, entry := range reader.File {
		if err := extractEntry(entry, dir); err != nil {
			logger.Warn("skipping archive entry",
				"entry", entry.Name,
				"error", err)
			report.Failures = append(report.Failures, EntryError{Name: entry.Name, Err: err})
			continue
		}
		report.Extracted++
	}
	return report, nil
}

func extractEntry(entry *zip.File, dir string) error {
	target, err := securePath(dir, entry.Name)
	if err != nil {
		return err
	}

	if entry.FileInfo().IsDir() {
		if err := os.MkdirAll(target, 0755); err != nil {
			return fmt.Errorf("creating directory: %w", err)
		}
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("creating parent directory: %w", err)
	}

	source, err := entry.Open()
	if err != nil {
		return fmt.Errorf("opening entry: %w", err)
	}
	defer source.Close()

	mode := entry.Mode().Perm()
	if mode == 0 {
		mode = 0644
	}
	destination, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}
	if _, err := io.Copy(destination, source); err != nil {
		destination.Close()
		return fmt.Errorf("writing file: %w", err)
	}
	if err := destination.Close(); err != nil {
		return fmt.Errorf("closing file: %w", err)
	}
	return nil
}

// securePath joins an archive entry name onto the extraction root,
// rejecting names that would escape it. Game archives are untrusted
// input.
func securePath(dir, name string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(name))
	if cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(os.PathSeparator)) || filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("entry path escapes extraction root: %s", name)
	}
	return filepath.Join(dir, cleaned), nil
}
