package logger

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"
)

// RotatingFile is an append-only log file split into numbered segments.
// The active segment is always path; retired segments are path.1 (newest)
// through path.N (oldest). Disk usage is bounded by maxBytes*(backups+1),
// except that a single write larger than maxBytes is kept whole.
// It is safe for concurrent use.
type RotatingFile struct {
	mu       sync.Mutex
	path     string
	maxBytes int64
	backups  int
	file     *os.File
	size     int64
}

// OpenRotatingFile opens (or creates) path for appending. The parent directory
// is not created; a missing or unwritable directory is an error.
func OpenRotatingFile(path string, maxBytes int64, backups int) (*RotatingFile, error) {
	if maxBytes <= 0 {
		return nil, fmt.Errorf("rotating file %s: max bytes must be positive", path)
	}
	if backups < 0 {
		return nil, fmt.Errorf("rotating file %s: backups must not be negative", path)
	}

	r := &RotatingFile{path: path, maxBytes: maxBytes, backups: backups}
	if err := r.open(os.O_APPEND); err != nil {
		return nil, err
	}
	return r, nil
}

// Write appends p to the active segment, rotating first when p would push a
// non-empty segment to maxBytes or beyond. A failed rotation is reported
// once, with p still written to the active segment.
func (r *RotatingFile) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.file == nil {
		return 0, fs.ErrClosed
	}

	var rotateErr error
	if r.size > 0 && r.size+int64(len(p)) >= r.maxBytes {
		rotateErr = r.rotate()
		if r.file == nil {
			return 0, rotateErr
		}
	}

	n, err := r.file.Write(p)
	r.size += int64(n)
	if err == nil {
		err = rotateErr
	}
	return n, err
}

// Close closes the active segment.
func (r *RotatingFile) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}

// Path returns the path of the active segment.
func (r *RotatingFile) Path() string {
	return r.path
}

// Segments returns the paths of the segments currently on disk, newest first.
func (r *RotatingFile) Segments() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	segments := []string{r.path}
	for i := 1; i <= r.backups; i++ {
		name := segmentName(r.path, i)
		if _, err := os.Stat(name); err != nil {
			break
		}
		segments = append(segments, name)
	}
	return segments
}

func (r *RotatingFile) open(mode int) error {
	f, err := os.OpenFile(r.path, os.O_CREATE|os.O_WRONLY|mode, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to stat log file: %w", err)
	}
	r.file = f
	r.size = info.Size()
	return nil
}

// rotate shifts path.i to path.i+1, dropping the oldest, and starts a new
// active segment. With no backups the active segment is truncated instead.
// When the shift fails, path is reopened for appending and the size count
// restarts, so the next attempt comes after another maxBytes.
func (r *RotatingFile) rotate() error {
	err := r.file.Close()
	r.file = nil
	if err != nil {
		err = fmt.Errorf("failed to close log segment: %w", err)
	} else {
		err = r.shift()
	}
	if err == nil {
		return nil
	}

	if r.file == nil {
		if openErr := r.open(os.O_APPEND); openErr != nil {
			return errors.Join(err, openErr)
		}
	}
	r.size = 0
	return err
}

func (r *RotatingFile) shift() error {
	if r.backups == 0 {
		return r.open(os.O_TRUNC)
	}

	for i := r.backups - 1; i >= 1; i-- {
		if err := replace(segmentName(r.path, i), segmentName(r.path, i+1)); err != nil {
			return err
		}
	}
	if err := replace(r.path, segmentName(r.path, 1)); err != nil {
		return err
	}

	return r.open(os.O_APPEND)
}

// replace renames src over dst. A missing src is not an error.
func replace(src, dst string) error {
	if _, err := os.Stat(src); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := os.Remove(dst); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove log segment %s: %w", dst, err)
	}
	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("failed to rotate log segment %s: %w", src, err)
	}
	return nil
}

func segmentName(path string, i int) string {
	return fmt.Sprintf("%s.%d", path, i)
}
