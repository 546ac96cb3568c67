package validation

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/username/pypdash/src/logger"
)

// MaxDataFileSize bounds a single payload data file.
const MaxDataFileSize int64 = 32 << 20

// isBinaryContent checks if a buffer contains binary control characters (like null bytes)
// which indicate the file is not a text data file.
func isBinaryContent(buf []byte) bool {
	// 1. Check for null bytes.
	if bytes.IndexByte(buf, 0) != -1 {
		return true
	}

	// 2. Validate UTF-8. The buffer may end mid-rune, so only check complete runes.
	for len(buf) > 0 {
		r, size := utf8.DecodeRune(buf)
		if r == utf8.RuneError && size == 1 {
			return utf8.FullRune(buf)
		}
		buf = buf[size:]
	}

	return false
}

// ValidateDataFile inspects the head of a payload data file and rewinds it.
// Empty, oversized and binary files are rejected.
func ValidateDataFile(file io.ReadSeeker, size int64) error {
	if file == nil {
		return fmt.Errorf("file is nil")
	}
	if size > MaxDataFileSize {
		return fmt.Errorf("%w: data file is %d bytes, limit is %d", ErrValidationFailed, size, MaxDataFileSize)
	}

	buffer := make([]byte, 1024)
	n, err := io.ReadFull(file, buffer)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return fmt.Errorf("failed to read data file for content checking: %w", err)
	}

	// Reset the read pointer so the parser can read the full file.
	if _, seekErr := file.Seek(0, io.SeekStart); seekErr != nil {
		return fmt.Errorf("failed to reset file read pointer: %w", seekErr)
	}

	if n == 0 {
		return fmt.Errorf("%w: data file is empty", ErrValidationFailed)
	}

	if isBinaryContent(buffer[:n]) {
		logger.L.Warn("Data file rejected: binary content detected")
		return fmt.Errorf("%w: data file appears to be binary, not text", ErrValidationFailed)
	}

	detectedContentType := http.DetectContentType(buffer[:n])
	detectedContentType = strings.ToLower(strings.Split(detectedContentType, ";")[0])
	if detectedContentType != "text/plain" {
		logger.L.Warn("Disallowed detected data file content type", "detectedContentType", detectedContentType)
		return fmt.Errorf("%w: detected data file content type '%s' is not allowed", ErrValidationFailed, detectedContentType)
	}

	logger.L.Debug("Data file content type validated", "detectedContentType", detectedContentType)
	return nil
}
