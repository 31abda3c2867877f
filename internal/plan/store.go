package plan

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	appLog "plancal/internal/log"
	"plancal/internal/model"
)

// Store persists the whole schedule. Every mutation is a full Load, change,
// Save cycle; there are no partial writes.
type Store interface {
	Load(ctx context.Context) (*model.Schedule, error)
	Save(ctx context.Context, s *model.Schedule) error
}

// FileStore keeps the schedule in a single JSON file.
type FileStore struct {
	path string
}

// NewFileStore returns a store backed by path. The file does not need to exist.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the data file location.
func (f *FileStore) Path() string {
	return f.path
}

// Init writes an empty schedule if the data file is missing, so the file is
// visible on disk from the first start on.
func (f *FileStore) Init(ctx context.Context) error {
	if _, err := os.Stat(f.path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat data file: %w", err)
	}
	appLog.Info("creating empty data file", "path", f.path)
	return f.Save(ctx, model.NewSchedule())
}

// Load reads the data file. A missing or blank file yields an empty schedule.
func (f *FileStore) Load(ctx context.Context) (*model.Schedule, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return model.NewSchedule(), nil
		}
		return nil, fmt.Errorf("read data file: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return model.NewSchedule(), nil
	}

	s := model.NewSchedule()
	if err := json.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("decode data file %s: %w", f.path, err)
	}
	return s, nil
}

// Save replaces the data file with the pretty-printed schedule.
//
// Implementation details:
//   - 4-space indentation, UTF-8 text, no HTML escaping.
//   - Writes atomically via a temp file + rename in the same directory.
func (f *FileStore) Save(ctx context.Context, s *model.Schedule) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := Encode(s)
	if err != nil {
		return err
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".plancal-data-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	// Ensure we clean up temp file on error.
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		return fmt.Errorf("replace data file: %w", err)
	}
	return nil
}

// Encode renders the schedule the way FileStore writes it.
func Encode(s *model.Schedule) ([]byte, error) {
	if s == nil {
		s = model.NewSchedule()
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(s); err != nil {
		return nil, fmt.Errorf("encode schedule: %w", err)
	}
	return buf.Bytes(), nil
}

// MemoryStore keeps the schedule in memory. Load and Save copy, so callers
// never share state with the store.
type MemoryStore struct {
	mu    sync.Mutex
	sched *model.Schedule
	saves int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sched: model.NewSchedule()}
}

func (m *MemoryStore) Load(ctx context.Context) (*model.Schedule, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sched.Clone(), nil
}

func (m *MemoryStore) Save(ctx context.Context, s *model.Schedule) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sched = s.Clone()
	m.saves++
	return nil
}

// Saves reports how many times Save succeeded.
func (m *MemoryStore) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}
