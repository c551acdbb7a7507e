package resample

import "errors"

// Sentinel kinds for resampling errors.
var (
	ErrBadTargetFPS = errors.New("invalid target frame rate")
	ErrBadRank      = errors.New("cannot decimate array rank")
)
