package bundle

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/retargetlab/mocap/internal/domain/model"
)

func testBundle() Bundle {
	return Bundle{
		"poses":  ArrayValue(model.MustArray([]int{4, 72}, sequence(4*72))),
		"trans":  ArrayValue(model.MustArray([]int{4, 3}, sequence(12))),
		"betas":  ArrayValue(model.Vector([]float64{0.1, -0.2, 0.3})),
		"fps":    ArrayValue(model.Scalar(120)),
		"gender": StringValue("neutral"),
	}
}

func sequence(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i)
	}
	return out
}

func TestBundle_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seq.npz")
	src := testBundle()

	if err := Write(path, src, false); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	if len(got) != len(src) {
		t.Fatalf("key count = %d, want %d", len(got), len(src))
	}
	if !got["poses"].Array.Equal(src["poses"].Array) {
		t.Error("poses changed across the round trip")
	}
	if got["betas"].Array.Rank() != 1 || got["betas"].Array.Len() != 3 {
		t.Errorf("betas shape = %v", got["betas"].Array.Shape())
	}
	if fps, ok := got["fps"].Scalar(); !ok || fps != 120 {
		t.Errorf("fps = %v, %v", fps, ok)
	}
	if !got["gender"].IsString() || got["gender"].Str != "neutral" {
		t.Errorf("gender = %+v", got["gender"])
	}
}

func TestBundle_Keys(t *testing.T) {
	b := testBundle()
	keys := b.Keys()
	want := []string{"betas", "fps", "gender", "poses", "trans"}
	if len(keys) != len(want) {
		t.Fatalf("keys = %v", keys)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("keys = %v, want sorted %v", keys, want)
		}
	}
}

func TestWrite_RefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seq.npz")
	if err := Write(path, testBundle(), false); err != nil {
		t.Fatalf("first Write: %v", err)
	}
	if err := Write(path, testBundle(), false); !errors.Is(err, ErrExists) {
		t.Errorf("expected ErrExists, got %v", err)
	}
	if err := Write(path, testBundle(), true); err != nil {
		t.Errorf("overwrite should succeed, got %v", err)
	}
}

func TestRead_MissingFile(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "absent.npz"))
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRead_CorruptArchive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "junk.npz")
	if err := os.WriteFile(path, []byte("definitely not a zip"), 0o640); err != nil {
		t.Fatal(err)
	}
	if _, err := Read(path); !errors.Is(err, ErrCorrupt) {
		t.Errorf("expected ErrCorrupt, got %v", err)
	}
}

func TestRead_BareNPYHintsAtReexport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "legacy.npy")
	if err := WriteArray(path, ArrayValue(model.Scalar(1)), false); err != nil {
		t.Fatal(err)
	}
	_, err := Read(path)
	if !errors.Is(err, ErrCorrupt) {
		t.Fatalf("expected ErrCorrupt, got %v", err)
	}
	if msg := err.Error(); !strings.Contains(msg, "re-exported") || !strings.Contains(msg, ".npz") {
		t.Errorf("error should hint at re-exporting as .npz, got %q", msg)
	}
}
