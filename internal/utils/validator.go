package utils

import (
	"fmt"
	"mime/multipart"
	"strings"
)

const DefaultContentType = "application/octet-stream"

// IsAudio mirrors the browser-side check: the reported media type only has to
// mention "audio".
func IsAudio(contentType string) bool {
	return strings.Contains(strings.ToLower(contentType), "audio")
}

// ContentTypeOf returns the part's declared Content-Type or the octet-stream default.
func ContentTypeOf(h *multipart.FileHeader) string {
	if ct := h.Header.Get("Content-Type"); ct != "" {
		return ct
	}
	return DefaultContentType
}

func ValidateAudioFile(filename, contentType string, size int64) error {
	if strings.TrimSpace(filename) == "" {
		return fmt.Errorf("%w: empty filename", ErrInvalidFile)
	}
	if size < 0 {
		return fmt.Errorf("%w: negative size", ErrInvalidFile)
	}
	if !IsAudio(contentType) {
		return fmt.Errorf("%w: %s", ErrNotAudio, contentType)
	}
	return nil
}
