package post

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

var (
	// ErrNotFound is returned when a post's source directory does not exist.
	ErrNotFound = errors.New("post not found")
	// ErrExists is returned when a move target is already taken.
	ErrExists = errors.New("post path already exists")
)

// maxReserveAttempts bounds how far Reserve advances a taken timestamp.
const maxReserveAttempts = 3600

// Store lays out post directories under the content root and the rendered
// output root.
type Store struct {
	dataDir   string
	outputDir string
}

// NewStore creates both roots if needed.
func NewStore(dataDir, outputDir string) (*Store, error) {
	for _, dir := range []string{dataDir, outputDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return &Store{dataDir: dataDir, outputDir: outputDir}, nil
}

// DataDir returns the content root.
func (s *Store) DataDir() string { return s.dataDir }

// OutputDir returns the rendered output root.
func (s *Store) OutputDir() string { return s.outputDir }

// SourceDir returns the directory holding the source of the post at path.
func (s *Store) SourceDir(path string) string {
	return filepath.Join(s.dataDir, filepath.FromSlash(path))
}

// RenderedDir returns the directory the generator renders the post at path into.
func (s *Store) RenderedDir(path string) string {
	return filepath.Join(s.outputDir, filepath.FromSlash(path))
}

// Exists reports whether the source directory of path exists.
func (s *Store) Exists(path string) bool {
	_, err := os.Stat(s.SourceDir(path))
	return err == nil
}

// Reserve creates a fresh source directory for a post created at date. When
// the timestamp is already used in either namespace, the date is moved
// forward one second at a time until a free slot is found.
func (s *Store) Reserve(date time.Time, isDraft bool) (string, time.Time, error) {
	for i := 0; i < maxReserveAttempts; i++ {
		candidate := date.Add(time.Duration(i) * time.Second)
		if s.Exists(PathFor(candidate, !isDraft)) {
			continue
		}
		path := PathFor(candidate, isDraft)
		dir := s.SourceDir(path)
		if err := os.MkdirAll(filepath.Dir(dir), 0o755); err != nil {
			return "", time.Time{}, fmt.Errorf("failed to create parent of %s: %w", dir, err)
		}
		err := os.Mkdir(dir, 0o755)
		if err == nil {
			return path, candidate, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", time.Time{}, fmt.Errorf("failed to create post directory %s: %w", dir, err)
		}
	}
	return "", time.Time{}, fmt.Errorf("no free post path near %s", date.Format(time.RFC3339))
}

// Release removes a reserved source directory and any empty parents.
func (s *Store) Release(path string) error {
	dir := s.SourceDir(path)
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to remove %s: %w", dir, err)
	}
	pruneEmptyParents(s.dataDir, dir)
	return nil
}

// WriteSource replaces the index file of the post.
func (s *Store) WriteSource(path string, content []byte) error {
	file := filepath.Join(s.SourceDir(path), IndexFile)
	if err := os.WriteFile(file, content, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", file, err)
	}
	return nil
}

// AppendSource appends text to the index file of the post.
func (s *Store) AppendSource(path, text string) error {
	file := filepath.Join(s.SourceDir(path), IndexFile)
	f, err := os.OpenFile(file, os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return fmt.Errorf("failed to open %s: %w", file, err)
	}
	if _, err := f.WriteString(text); err != nil {
		f.Close()
		return fmt.Errorf("failed to append to %s: %w", file, err)
	}
	return f.Close()
}

// Delete removes the source and rendered directories of the post. Each is
// removed only if present; a failure on one does not stop the other and
// nothing already removed is restored.
func (s *Store) Delete(path string) error {
	var errs []error
	for _, pair := range [][2]string{
		{s.dataDir, s.SourceDir(path)},
		{s.outputDir, s.RenderedDir(path)},
	} {
		root, dir := pair[0], pair[1]
		if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := os.RemoveAll(dir); err != nil {
			errs = append(errs, fmt.Errorf("failed to remove %s: %w", dir, err))
			continue
		}
		pruneEmptyParents(root, dir)
	}
	return errors.Join(errs...)
}

// Move switches the post at path between the draft and published namespaces
// and returns the new path. Stale rendered output is removed on a best-effort
// basis before the source directory is renamed.
func (s *Store) Move(path string, toDraft bool, loc *time.Location) (string, error) {
	date, _, err := ParsePath(path, loc)
	if err != nil {
		return "", err
	}
	src := s.SourceDir(path)
	if _, err := os.Stat(src); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return "", fmt.Errorf("failed to stat %s: %w", src, err)
	}

	rendered := s.RenderedDir(path)
	if err := os.RemoveAll(rendered); err == nil {
		pruneEmptyParents(s.outputDir, rendered)
	}

	newPath := PathFor(date, toDraft)
	dst := s.SourceDir(newPath)
	if _, err := os.Stat(dst); err == nil {
		return "", fmt.Errorf("%w: %s", ErrExists, newPath)
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("failed to create parent of %s: %w", dst, err)
	}
	if err := os.Rename(src, dst); err != nil {
		return "", fmt.Errorf("failed to move %s to %s: %w", src, dst, err)
	}
	pruneEmptyParents(s.dataDir, src)
	return newPath, nil
}

// pruneEmptyParents removes now-empty directories between dir and root.
func pruneEmptyParents(root, dir string) {
	root = filepath.Clean(root)
	for parent := filepath.Dir(dir); parent != root && len(parent) > len(root); parent = filepath.Dir(parent) {
		if err := os.Remove(parent); err != nil {
			return
		}
	}
}
