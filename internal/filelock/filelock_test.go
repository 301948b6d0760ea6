package filelock

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestNewFileLock(t *testing.T) {
	lockPath := filepath.Join(t.TempDir(), "test.lock")

	lock := NewFileLock(lockPath)
	if lock.path != lockPath {
		t.Errorf("Expected lock path %s, got %s", lockPath, lock.path)
	}
}

func TestTryLock(t *testing.T) {
	lockPath := filepath.Join(t.TempDir(), "test.lock")

	lock1 := NewFileLock(lockPath)
	lock2 := NewFileLock(lockPath)

	acquired, err := lock1.TryLock()
	if err != nil || !acquired {
		t.Fatalf("First TryLock should succeed: %v", err)
	}

	acquired, err = lock2.TryLock()
	if err != nil {
		t.Fatalf("TryLock failed: %v", err)
	}
	if acquired {
		t.Error("Second TryLock should fail when lock is held")
	}

	if err := lock1.Unlock(); err != nil {
		t.Fatalf("Unlock failed: %v", err)
	}

	acquired, err = lock2.TryLock()
	if err != nil || !acquired {
		t.Errorf("TryLock should succeed after unlock: %v", err)
	}
	lock2.Unlock()
}

func TestLockContextWaitsForHolder(t *testing.T) {
	lockPath := filepath.Join(t.TempDir(), "test.lock")

	holder := NewFileLock(lockPath)
	if err := holder.Lock(); err != nil {
		t.Fatalf("failed to acquire holder lock: %v", err)
	}

	go func() {
		time.Sleep(100 * time.Millisecond)
		holder.Unlock()
	}()

	contender := NewFileLock(lockPath)
	start := time.Now()
	if err := contender.LockContext(context.Background()); err != nil {
		t.Fatalf("LockContext should succeed: %v", err)
	}
	if wait := time.Since(start); wait < 90*time.Millisecond {
		t.Errorf("expected to wait for lock, waited only %v", wait)
	}
	contender.Unlock()
}

func TestLockContextCancelled(t *testing.T) {
	lockPath := filepath.Join(t.TempDir(), "test.lock")

	holder := NewFileLock(lockPath)
	if err := holder.Lock(); err != nil {
		t.Fatalf("failed to acquire holder lock: %v", err)
	}
	defer holder.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	if err := NewFileLock(lockPath).LockContext(ctx); err == nil {
		t.Fatal("expected error when context expires, got nil")
	}
}

func TestAtomicWrite(t *testing.T) {
	targetPath := filepath.Join(t.TempDir(), "test.txt")

	if err := AtomicWrite(targetPath, []byte("Hello, World!")); err != nil {
		t.Fatalf("AtomicWrite failed: %v", err)
	}

	got, err := os.ReadFile(targetPath)
	if err != nil {
		t.Fatalf("Failed to read file: %v", err)
	}
	if string(got) != "Hello, World!" {
		t.Errorf("Expected content %q, got %q", "Hello, World!", got)
	}

	info, _ := os.Stat(targetPath)
	if info.Mode().Perm() != 0644 {
		t.Errorf("Expected mode 0644, got %o", info.Mode().Perm())
	}
}

func TestAtomicWriteKeepsPermissions(t *testing.T) {
	targetPath := filepath.Join(t.TempDir(), "run.sh")
	if err := os.WriteFile(targetPath, []byte("old"), 0755); err != nil {
		t.Fatalf("Failed to write initial file: %v", err)
	}

	if err := AtomicWrite(targetPath, []byte("new")); err != nil {
		t.Fatalf("AtomicWrite failed: %v", err)
	}

	info, _ := os.Stat(targetPath)
	if info.Mode().Perm() != 0755 {
		t.Errorf("Expected mode 0755, got %o", info.Mode().Perm())
	}
	got, _ := os.ReadFile(targetPath)
	if string(got) != "new" {
		t.Errorf("Expected content %q, got %q", "new", got)
	}
}

func TestAtomicWriteRejectsDirectory(t *testing.T) {
	dir := t.TempDir()
	if err := AtomicWrite(dir, []byte("x")); err == nil {
		t.Error("Expected error when destination is a directory")
	}
}

func TestAtomicWriteNoTempFileLeftBehind(t *testing.T) {
	tmpDir := t.TempDir()
	if err := AtomicWrite(filepath.Join(tmpDir, "test.txt"), []byte("content")); err != nil {
		t.Fatalf("AtomicWrite failed: %v", err)
	}

	entries, err := os.ReadDir(tmpDir)
	if err != nil {
		t.Fatalf("Failed to read directory: %v", err)
	}
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), ".tmp-") {
			t.Errorf("Temp file %s left behind", entry.Name())
		}
	}
}

func TestAtomicWriteCreateDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	targetPath := filepath.Join(tmpDir, "subdir", "nested", "test.txt")

	if err := AtomicWrite(targetPath, []byte("content")); err != nil {
		t.Fatalf("AtomicWrite failed: %v", err)
	}
	if _, err := os.Stat(targetPath); err != nil {
		t.Errorf("File should have been created: %v", err)
	}
}

func TestSameContent(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "out.html")

	same, err := SameContent(path, []byte("x"))
	if err != nil || same {
		t.Errorf("missing file: got %v, %v", same, err)
	}

	if err := os.WriteFile(path, []byte("<p>hello</p>"), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		data []byte
		want bool
	}{
		{[]byte("<p>hello</p>"), true},
		{[]byte("<p>hellO</p>"), false},
		{[]byte("<p>hello</p>\n"), false},
		{nil, false},
	}
	for _, tt := range tests {
		got, err := SameContent(path, tt.data)
		if err != nil {
			t.Fatalf("SameContent error: %v", err)
		}
		if got != tt.want {
			t.Errorf("SameContent(%q) = %v, want %v", tt.data, got, tt.want)
		}
	}

	same, err = SameContent(tmpDir, nil)
	if err != nil || same {
		t.Errorf("directory: got %v, %v", same, err)
	}
}

func TestWriteFileSkipUnchanged(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dist", "index.html")
	ctx := context.Background()

	written, err := WriteFile(ctx, path, []byte("v1"), true)
	if err != nil || !written {
		t.Fatalf("first write: written=%v err=%v", written, err)
	}

	before, _ := os.Stat(path)
	time.Sleep(10 * time.Millisecond)

	written, err = WriteFile(ctx, path, []byte("v1"), true)
	if err != nil || written {
		t.Fatalf("unchanged write: written=%v err=%v", written, err)
	}
	after, _ := os.Stat(path)
	if !after.ModTime().Equal(before.ModTime()) {
		t.Error("unchanged destination was rewritten")
	}

	written, err = WriteFile(ctx, path, []byte("v1"), false)
	if err != nil || !written {
		t.Fatalf("forced write: written=%v err=%v", written, err)
	}

	written, err = WriteFile(ctx, path, []byte("v2"), true)
	if err != nil || !written {
		t.Fatalf("changed write: written=%v err=%v", written, err)
	}
	got, _ := os.ReadFile(path)
	if string(got) != "v2" {
		t.Errorf("Expected content %q, got %q", "v2", got)
	}
}

// useLockDir points the lock directory at a temporary directory for one test.
func useLockDir(t *testing.T) string {
	t.Helper()
	old := lockDir
	lockDir = t.TempDir()
	t.Cleanup(func() { lockDir = old })
	return lockDir
}

func TestLockPath(t *testing.T) {
	dir := useLockDir(t)
	base := t.TempDir()

	a, err := LockPath(filepath.Join(base, "a.txt"))
	if err != nil {
		t.Fatalf("LockPath failed: %v", err)
	}
	again, _ := LockPath(filepath.Join(base, "sub", "..", "a.txt"))
	b, _ := LockPath(filepath.Join(base, "b.txt"))

	if a != again {
		t.Errorf("same destination gave different locks: %s and %s", a, again)
	}
	if a == b {
		t.Errorf("different destinations share lock %s", a)
	}
	if filepath.Dir(a) != dir {
		t.Errorf("lock %s is not in the lock directory %s", a, dir)
	}
}

func TestLockAndWriteKeepsDestinationDirClean(t *testing.T) {
	useLockDir(t)
	destDir := t.TempDir()
	targetPath := filepath.Join(destDir, "test.txt")

	if err := LockAndWrite(targetPath, []byte("test content")); err != nil {
		t.Fatalf("LockAndWrite failed: %v", err)
	}

	entries, err := os.ReadDir(destDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "test.txt" {
		t.Errorf("destination directory holds %v, want only test.txt", entries)
	}

	lockPath, _ := LockPath(targetPath)
	if _, err := os.Stat(lockPath); err != nil {
		t.Errorf("lock file %s should persist between writes: %v", lockPath, err)
	}
}

func TestWriteFileRespectsHeldLock(t *testing.T) {
	useLockDir(t)
	targetPath := filepath.Join(t.TempDir(), "test.txt")
	lockPath, _ := LockPath(targetPath)

	if err := os.MkdirAll(filepath.Dir(lockPath), 0755); err != nil {
		t.Fatal(err)
	}
	holder := NewFileLock(lockPath)
	if err := holder.Lock(); err != nil {
		t.Fatalf("failed to acquire holder lock: %v", err)
	}
	defer holder.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	if _, err := WriteFile(ctx, targetPath, []byte("x"), false); err == nil {
		t.Fatal("expected WriteFile to give up while another holder has the lock")
	}
	if _, err := os.Stat(targetPath); !os.IsNotExist(err) {
		t.Error("destination written without the lock")
	}
}

func TestConcurrentLockAndWrite(t *testing.T) {
	useLockDir(t)
	targetPath := filepath.Join(t.TempDir(), "test.txt")

	const goroutines = 10
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func(id int) {
			defer wg.Done()
			if err := LockAndWrite(targetPath, []byte(fmt.Sprintf("content-%d", id))); err != nil {
				t.Errorf("LockAndWrite failed for goroutine %d: %v", id, err)
			}
		}(i)
	}
	wg.Wait()

	got, err := os.ReadFile(targetPath)
	if err != nil {
		t.Fatal("Target file should exist after concurrent writes")
	}
	if !strings.HasPrefix(string(got), "content-") {
		t.Errorf("Unexpected final content %q", got)
	}
}
