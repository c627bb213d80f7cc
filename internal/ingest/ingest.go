// Package ingest turns an uploaded file into plain-text review input.
package ingest

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrEmptyFile is returned when an upload contains no reviewable text.
var ErrEmptyFile = errors.New("uploaded file is empty")

// ReadUpload spools the upload to a temporary file in dir (the system temp
// directory when dir is empty), reads it back as text, and removes the
// temporary file before returning. The remove is deferred right after
// creation, so no copy survives on disk even when the read fails midway.
func ReadUpload(dir string, r io.Reader) (string, error) {
	tmp, err := os.CreateTemp(dir, "codesage-upload-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temporary upload file: %w", err)
	}
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
	}()

	if _, err := io.Copy(tmp, r); err != nil {
		return "", fmt.Errorf("failed to store uploaded file: %w", err)
	}

	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("failed to rewind uploaded file: %w", err)
	}
	content, err := io.ReadAll(tmp)
	if err != nil {
		return "", fmt.Errorf("failed to read uploaded file: %w", err)
	}

	text := string(content)
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyFile
	}
	return text, nil
}
