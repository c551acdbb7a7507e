package project

import "errors"

// Sentinel kinds for projection errors.
var (
	ErrIndexOutOfRange = errors.New("joint index out of range")
	ErrNoPoses         = errors.New("no poses to project")
)
