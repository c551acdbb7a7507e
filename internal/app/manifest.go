package service

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	jobqueue "github.com/retargetlab/mocap/internal/adapters/mq/queue"
	"gopkg.in/yaml.v3"
)

// PathDelimiter flattens a sequence's relative path into a single motion
// name, so nested capture trees survive a flat output directory.
const PathDelimiter = "+__+"

const bundleExt = ".npz"

// Manifest lists the motion sequences of a dataset by flattened name.
type Manifest struct {
	Motions []string `yaml:"motions"`
}

// LoadManifest reads a YAML manifest from disk.
func LoadManifest(path string) (*Manifest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest %q: %w", path, err)
	}
	var m Manifest
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("parse manifest %q: %w", path, err)
	}
	if len(m.Motions) == 0 {
		return nil, fmt.Errorf("manifest %q: %w", path, ErrEmptyBatch)
	}
	return &m, nil
}

// Save writes the manifest as YAML, creating parent directories as needed.
func (m *Manifest) Save(path string) error {
	raw, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create manifest dir: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("write manifest %q: %w", path, err)
	}
	return nil
}

// MotionName flattens a relative bundle path into a manifest motion name.
func MotionName(rel string) string {
	rel = strings.TrimSuffix(filepath.ToSlash(rel), bundleExt)
	return strings.ReplaceAll(rel, "/", PathDelimiter)
}

// MotionPath expands a manifest motion name back into a relative bundle path.
func MotionPath(name string) string {
	return filepath.FromSlash(strings.ReplaceAll(name, PathDelimiter, "/")) + bundleExt
}

// BuildJobs resolves the batch's job list. src may be a single bundle or a
// directory; a manifest restricts a directory batch to the named motions.
// Output files land in dst under their flattened motion names.
func BuildJobs(src, dst, manifestPath string) ([]jobqueue.Job, error) {
	info, err := os.Stat(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrBadInput, src, err)
	}

	if !info.IsDir() {
		if manifestPath != "" {
			return nil, fmt.Errorf("%w: a manifest needs a source directory, got file %q", ErrBadInput, src)
		}
		return []jobqueue.Job{newJob(src, singleDst(src, dst))}, nil
	}

	var names []string
	if manifestPath != "" {
		m, err := LoadManifest(manifestPath)
		if err != nil {
			return nil, err
		}
		names = append(names, m.Motions...)
	} else {
		names, err = discoverMotions(src)
		if err != nil {
			return nil, err
		}
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("%q: %w", src, ErrEmptyBatch)
	}

	jobs := make([]jobqueue.Job, 0, len(names))
	for _, name := range names {
		jobs = append(jobs, newJob(
			filepath.Join(src, MotionPath(name)),
			filepath.Join(dst, name+bundleExt),
		))
	}
	return jobs, nil
}

// discoverMotions walks a capture tree and returns its flattened motion
// names in stable order.
func discoverMotions(root string) ([]string, error) {
	var names []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), bundleExt) {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		names = append(names, MotionName(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %q: %w", root, err)
	}
	sort.Strings(names)
	return names, nil
}

// singleDst resolves the output path for a one-file batch. A directory (or
// trailing separator) dst keeps the source's flattened name.
func singleDst(src, dst string) string {
	if info, err := os.Stat(dst); err == nil && info.IsDir() {
		return filepath.Join(dst, MotionName(filepath.Base(src))+bundleExt)
	}
	if strings.HasSuffix(dst, string(os.PathSeparator)) {
		return filepath.Join(dst, MotionName(filepath.Base(src))+bundleExt)
	}
	return dst
}

func newJob(src, dst string) jobqueue.Job {
	return jobqueue.Job{
		ID:      uuid.New().String(),
		SrcPath: src,
		DstPath: dst,
	}
}
