// Package bundle reads and writes tagged array bundles: NPZ archives of
// NPY-encoded arrays, the on-disk interchange format for motion sequences.
// Failures distinguish a missing file from a corrupt one, and writes refuse
// to clobber existing files unless explicitly allowed.
package bundle

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/retargetlab/mocap/internal/domain/model"
)

// Value is one tagged field of a bundle: either a numeric array or a string
// scalar (e.g. the gender tag).
type Value struct {
	Array *model.Array
	Str   string
}

// ArrayValue wraps a numeric array.
func ArrayValue(a *model.Array) Value { return Value{Array: a} }

// StringValue wraps a string scalar.
func StringValue(s string) Value { return Value{Str: s} }

// IsString reports whether the value carries a string rather than an array.
func (v Value) IsString() bool { return v.Array == nil }

// Scalar returns the numeric value when the field is a one-element array.
func (v Value) Scalar() (float64, bool) {
	if v.Array == nil {
		return 0, false
	}
	f, err := v.Array.Scalar()
	return f, err == nil
}

// Bundle is a mapping from field name to value.
type Bundle map[string]Value

// Keys returns the field names in sorted order, for stable reporting.
func (b Bundle) Keys() []string {
	keys := make([]string, 0, len(b))
	for k := range b {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Read loads an array bundle from disk. Only the NPZ container holds named
// fields; a bare .npy file is a single unnamed array and is rejected here
// with a pointer at ReadArray.
func Read(path string) (Bundle, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".npz":
		return readNPZ(path)
	case ".npy":
		return nil, fmt.Errorf("%w: %s is a single-array .npy file; a field bundle must be a .npz archive (hint: a pickled dict .npy from an older toolchain must be re-exported as .npz)",
			ErrCorrupt, path)
	default:
		return nil, fmt.Errorf("%w: unsupported extension %q", ErrCorrupt, filepath.Ext(path))
	}
}

// Write persists a bundle as an NPZ archive. An existing destination fails
// with ErrExists unless allowOverwrite is set.
func Write(path string, b Bundle, allowOverwrite bool) error {
	if !allowOverwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%w: %s (pass overwrite to replace it)", ErrExists, path)
		}
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}
	return writeNPZ(path, b)
}
