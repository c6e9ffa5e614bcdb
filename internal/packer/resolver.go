package packer

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gcfpack/internal/meta"
)

// ResolvedResource pairs a descriptor with an open payload stream and the
// byte length observed at open time. It lives only for the duration of one
// copy; Close releases the underlying file as soon as the bytes are
// committed.
type ResolvedResource struct {
	Index    int
	Resource meta.Resource
	Path     string
	Size     int64

	file *os.File
}

func (r *ResolvedResource) Read(p []byte) (int, error) {
	return r.file.Read(p)
}

func (r *ResolvedResource) Close() error {
	return r.file.Close()
}

var _ io.ReadCloser = (*ResolvedResource)(nil)

// Resolver maps resource descriptors to payload files relative to the
// description's directory. It opens at most one file at a time; callers
// close each ResolvedResource before asking for the next, keeping descriptor
// usage bounded regardless of resource count.
type Resolver struct {
	baseDir string
}

func NewResolver(baseDir string) *Resolver {
	return &Resolver{baseDir: baseDir}
}

// Resolve opens the payload file for one resource and captures its length.
func (r *Resolver) Resolve(index int, res meta.Resource) (*ResolvedResource, error) {
	path, err := r.resolvePath(index, res)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, resourceErr(index, path, errors.New("file does not exist"))
		}
		return nil, resourceErr(index, path, err)
	}

	size, err := sizeOf(file)
	if err != nil {
		file.Close()
		return nil, resourceErr(index, path, err)
	}

	return &ResolvedResource{
		Index:    index,
		Resource: res,
		Path:     path,
		Size:     size,
		file:     file,
	}, nil
}

// Stat returns the payload length for one resource without keeping the file
// open. The layout phase uses this so offsets can be computed before any
// stream is held across the write phase.
func (r *Resolver) Stat(index int, res meta.Resource) (int64, error) {
	resolved, err := r.Resolve(index, res)
	if err != nil {
		return 0, err
	}
	defer resolved.Close()
	return resolved.Size, nil
}

func (r *Resolver) resolvePath(index int, res meta.Resource) (string, error) {
	source := res.Source()
	if filepath.IsAbs(source) || !filepath.IsLocal(source) {
		return "", resourceErr(index, source, errors.New("source path escapes the description directory"))
	}
	return filepath.Join(r.baseDir, source), nil
}

func sizeOf(file *os.File) (int64, error) {
	info, err := file.Stat()
	if err != nil {
		return 0, fmt.Errorf("stat: %w", err)
	}
	if info.IsDir() {
		return 0, errors.New("source is a directory")
	}
	if info.Size() == 0 {
		return 0, errors.New("source file is empty")
	}
	return info.Size(), nil
}
