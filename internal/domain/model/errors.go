package model

import "errors"

// Sentinel kinds for array construction errors.
var (
	ErrBadShape = errors.New("bad array shape")
)
