package files

import "errors"

var (
	ErrFileNotFound    = errors.New("file not found")
	ErrSessionNotFound = errors.New("upload session not found")
	ErrSessionClosed   = errors.New("upload session is no longer open")
	ErrKeyMismatch     = errors.New("key does not match upload session")
	ErrInvalidFilename = errors.New("invalid filename")
	ErrInvalidPart     = errors.New("invalid part number")
	ErrNoParts         = errors.New("at least one part is required")
	ErrUpstream        = errors.New("object storage request failed")
)
