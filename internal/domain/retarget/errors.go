package retarget

import "errors"

// Sentinel kinds for hand-off validation errors.
var (
	ErrIncomplete = errors.New("record does not satisfy retarget contract")
)
