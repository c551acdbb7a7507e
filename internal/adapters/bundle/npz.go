package bundle

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"strings"
)

// readNPZ opens a zip-of-npy archive and decodes every member into a bundle
// field keyed by the member name without its .npy suffix.
func readNPZ(path string) (Bundle, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, path, err)
	}
	defer zr.Close()

	b := make(Bundle, len(zr.File))
	for _, f := range zr.File {
		name := strings.TrimSuffix(f.Name, ".npy")
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("%w: %s: member %q: %v", ErrCorrupt, path, f.Name, err)
		}
		raw, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("%w: %s: member %q: %v", ErrCorrupt, path, f.Name, err)
		}
		v, err := decodeNPY(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: member %q: %v", ErrCorrupt, path, f.Name, err)
		}
		b[name] = v
	}
	return b, nil
}

// writeNPZ serializes a bundle to a zip archive. Members are stored
// uncompressed in sorted key order so identical bundles produce identical
// archives.
func writeNPZ(path string, b Bundle) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer out.Close()

	zw := zip.NewWriter(out)
	for _, key := range b.Keys() {
		encoded, err := encodeNPY(b[key])
		if err != nil {
			return fmt.Errorf("encoding field %q: %w", key, err)
		}
		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:   key + ".npy",
			Method: zip.Store,
		})
		if err != nil {
			return fmt.Errorf("writing field %q: %w", key, err)
		}
		if _, err := w.Write(encoded); err != nil {
			return fmt.Errorf("writing field %q: %w", key, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("finalizing %s: %w", path, err)
	}
	return out.Close()
}
