package utils

import "errors"

var (
	ErrInvalidFile    = errors.New("invalid file")
	ErrNotAudio       = errors.New("file is not audio")
	ErrFileNotFound   = errors.New("file not found")
	ErrStorageFailure = errors.New("storage backend failure")
)
