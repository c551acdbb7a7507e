package translate

import "errors"

// Sentinel kinds for schema translation errors.
var (
	ErrPoseTooShort = errors.New("pose vector too short to split")
)
