package storage

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

var (
	ErrFileTooLarge = errors.New("file exceeds maximum size")
	ErrEmptyFile    = errors.New("file is empty")
)

// ReadAndSniff buffers up to maxSize bytes from reader and detects the
// content type from the leading bytes instead of trusting what the
// client declared.
func ReadAndSniff(reader io.Reader, maxSize int64) ([]byte, string, error) {
	// Read one byte past the limit to tell oversized apart from exact-size
	data, err := io.ReadAll(io.LimitReader(reader, maxSize+1))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read file: %w", err)
	}

	if len(data) == 0 {
		return nil, "", ErrEmptyFile
	}
	if int64(len(data)) > maxSize {
		return nil, "", ErrFileTooLarge
	}

	mimeType := http.DetectContentType(data)
	// Strip parameters (e.g. "text/plain; charset=utf-8")
	if idx := strings.Index(mimeType, ";"); idx != -1 {
		mimeType = strings.TrimSpace(mimeType[:idx])
	}
	return data, mimeType, nil
}
