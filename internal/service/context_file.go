package service

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	app_errors "qwen-console/internal/errors"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadContextFile reads an uploaded plain-text file to use as context. Only
// .txt files of at most maxBytes of valid UTF-8 are accepted.
func ReadContextFile(r io.Reader, filename string, maxBytes int64) (string, error) {
	if !strings.EqualFold(filepath.Ext(filename), ".txt") {
		return "", fmt.Errorf("%w: only .txt files can be used as context", app_errors.ErrValidation)
	}

	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("could not read context file: %w", err)
	}
	if int64(len(data)) > maxBytes {
		return "", fmt.Errorf("%w: context file is larger than %d bytes", app_errors.ErrValidation, maxBytes)
	}
	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: context file is not valid UTF-8", app_errors.ErrValidation)
	}
	return string(data), nil
}
