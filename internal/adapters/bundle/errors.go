package bundle

import "errors"

// Sentinel kinds for bundle I/O errors. Callers rely on the not-found versus
// corrupt distinction when reporting batch failures.
var (
	ErrNotFound = errors.New("bundle file not found")
	ErrCorrupt  = errors.New("unreadable or corrupt bundle")
	ErrExists   = errors.New("destination file already exists")
)
