package localstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
)

const (
	lockTimeout   = 3 * time.Second
	lockRetryWait = 50 * time.Millisecond
)

// FileKV stores every key in a single JSON document on disk, the way a
// browser keeps localStorage for an origin. A sibling .lock file guards
// read-modify-write cycles across processes.
type FileKV struct {
	path  string
	lock  *flock.Flock
	mu    sync.Mutex
	quota int
}

// NewFileKV creates a file-backed store at path. quota caps the encoded
// document size in bytes; zero means unlimited.
func NewFileKV(path string, quota int) (*FileKV, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &FileKV{
		path:  path,
		lock:  flock.New(path + ".lock"),
		quota: quota,
	}, nil
}

// Path returns the backing file location.
func (f *FileKV) Path() string { return f.path }

func (f *FileKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	unlock, err := f.acquire(ctx)
	if err != nil {
		return nil, false, err
	}
	defer unlock()

	doc, err := f.load()
	if err != nil {
		return nil, false, err
	}
	v, ok := doc[key]
	if !ok {
		return nil, false, nil
	}
	return []byte(v), true, nil
}

func (f *FileKV) Update(ctx context.Context, key string, fn UpdateFunc) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	unlock, err := f.acquire(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	doc, err := f.load()
	if err != nil {
		return err
	}

	old, ok := doc[key]
	var oldBytes []byte
	if ok {
		oldBytes = []byte(old)
	}
	next, err := fn(oldBytes, ok)
	if err != nil {
		return err
	}
	doc[key] = string(next)

	return f.save(doc)
}

func (f *FileKV) acquire(ctx context.Context) (func(), error) {
	ctx, cancel := context.WithTimeout(ctx, lockTimeout)
	defer cancel()

	locked, err := f.lock.TryLockContext(ctx, lockRetryWait)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire storage lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("could not acquire storage lock")
	}
	return func() { _ = f.lock.Unlock() }, nil
}

func (f *FileKV) load() (map[string]string, error) {
	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read storage file: %w", err)
	}
	if len(data) == 0 {
		return map[string]string{}, nil
	}

	doc := map[string]string{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, f.path, err)
	}
	return doc, nil
}

func (f *FileKV) save(doc map[string]string) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode storage file: %w", err)
	}
	if f.quota > 0 && len(data) > f.quota {
		return ErrQuotaExceeded
	}

	// Write to a temp file then rename so readers never see a partial document.
	tmp, err := os.CreateTemp(filepath.Dir(f.path), filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write storage file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to close storage file: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to replace storage file: %w", err)
	}
	return nil
}
