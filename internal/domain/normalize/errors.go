package normalize

import "errors"

// Sentinel kinds for shape-normalization errors. All are error-class: they
// fail the current file but never the batch.
var (
	ErrEmptyPoses    = errors.New("empty pose array")
	ErrBadRank       = errors.New("unresolvable pose rank")
	ErrFrameMismatch = errors.New("frame count mismatch")
)
