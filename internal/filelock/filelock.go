// Package filelock writes destination files under an advisory lock, so that
// concurrent targets or parallel preproc processes never interleave writes
// to the same output.
package filelock

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/zeebo/xxh3"
)

// retryDelay is how often LockContext polls a held lock.
const retryDelay = 25 * time.Millisecond

// pathLocks serializes writers of one lock path inside this process.
var pathLocks sync.Map

func processLock(path string) *sync.Mutex {
	mu, _ := pathLocks.LoadOrStore(path, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// lockDir holds the lock files of every destination. Lock files are never
// removed, so each destination keeps one lock inode for all processes.
var lockDir = defaultLockDir()

func defaultLockDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "preproc", "locks")
}

// LockPath returns the lock file guarding writes to path: a file in the
// shared lock directory named after the hash of path's absolute form.
func LockPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	return filepath.Join(lockDir, fmt.Sprintf("%016x.lock", xxh3.HashString(abs))), nil
}

// FileLock wraps a flock file lock for coordinating access to files.
type FileLock struct {
	flock *flock.Flock
	path  string
}

// NewFileLock creates a new file lock for the given path.
// The lock file will be created at the specified path.
func NewFileLock(path string) *FileLock {
	return &FileLock{
		flock: flock.New(path),
		path:  path,
	}
}

// Lock acquires an exclusive lock on the file, blocking until the lock is available.
func (fl *FileLock) Lock() error {
	if err := fl.flock.Lock(); err != nil {
		return fmt.Errorf("failed to acquire lock on %s: %w", fl.path, err)
	}
	return nil
}

// LockContext acquires an exclusive lock, giving up when ctx is done.
func (fl *FileLock) LockContext(ctx context.Context) error {
	locked, err := fl.flock.TryLockContext(ctx, retryDelay)
	if err != nil {
		return fmt.Errorf("failed to acquire lock on %s: %w", fl.path, err)
	}
	if !locked {
		return fmt.Errorf("failed to acquire lock on %s", fl.path)
	}
	return nil
}

// TryLock attempts to acquire an exclusive lock on the file without blocking.
// Returns true if the lock was acquired, false if the lock is held elsewhere.
func (fl *FileLock) TryLock() (bool, error) {
	acquired, err := fl.flock.TryLock()
	if err != nil {
		return false, fmt.Errorf("failed to try lock on %s: %w", fl.path, err)
	}
	return acquired, nil
}

// Unlock releases the lock.
func (fl *FileLock) Unlock() error {
	if err := fl.flock.Unlock(); err != nil {
		return fmt.Errorf("failed to release lock on %s: %w", fl.path, err)
	}
	return nil
}

// AtomicWrite writes data to a file atomically using a temp file and rename strategy.
// Readers never see a partial write, and the original file is untouched when
// the write fails. An existing file keeps its permissions; a new one gets 0644.
func AtomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	mode := fs.FileMode(0644)
	if info, err := os.Stat(path); err == nil {
		if info.IsDir() {
			return fmt.Errorf("destination %s is a directory", path)
		}
		mode = info.Mode().Perm()
	}

	// Same directory keeps the rename on one filesystem
	tempFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tempPath := tempFile.Name()

	defer func() {
		if tempFile != nil {
			tempFile.Close()
			os.Remove(tempPath)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tempFile.Sync(); err != nil {
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tempPath, mode); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		return fmt.Errorf("failed to rename temp file to %s: %w", path, err)
	}

	tempFile = nil
	return nil
}

// Hash returns the content hash used to detect unchanged destinations.
func Hash(data []byte) uint64 {
	return xxh3.Hash(data)
}

// SameContent reports whether the file at path exists and holds exactly data.
// The file is streamed through the hasher.
func SameContent(path string, data []byte) (bool, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return false, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if !info.Mode().IsRegular() || info.Size() != int64(len(data)) {
		return false, nil
	}

	h := xxh3.New()
	if _, err := io.Copy(h, f); err != nil {
		return false, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return h.Sum64() == Hash(data), nil
}

// LockAndWrite acquires a lock, performs an atomic write, and releases the lock.
// The lock file is the one named by LockPath.
func LockAndWrite(path string, data []byte) error {
	_, err := WriteFile(context.Background(), path, data, false)
	return err
}

// WriteFile writes data to path under its lock. With skipUnchanged, a file
// that already holds data is left alone and written is false.
func WriteFile(ctx context.Context, path string, data []byte, skipUnchanged bool) (written bool, err error) {
	lockPath, err := LockPath(path)
	if err != nil {
		return false, err
	}
	if err := os.MkdirAll(lockDir, 0755); err != nil {
		return false, fmt.Errorf("failed to create lock directory %s: %w", lockDir, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return false, fmt.Errorf("failed to create directory %s: %w", filepath.Dir(path), err)
	}

	mu := processLock(lockPath)
	mu.Lock()
	defer mu.Unlock()

	lock := NewFileLock(lockPath)
	if err := lock.LockContext(ctx); err != nil {
		return false, err
	}
	defer lock.Unlock()

	if skipUnchanged {
		same, err := SameContent(path, data)
		if err != nil {
			return false, err
		}
		if same {
			return false, nil
		}
	}

	if err := AtomicWrite(path, data); err != nil {
		return false, err
	}
	return true, nil
}
