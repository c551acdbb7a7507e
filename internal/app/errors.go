package service

import "errors"

// Sentinel kinds for batch-level errors. Per-file failures never use these;
// they are carried inside the report instead.
var (
	ErrEmptyBatch = errors.New("no input files")
	ErrBadBatch   = errors.New("invalid batch")
	ErrBadInput   = errors.New("invalid input path")
)
