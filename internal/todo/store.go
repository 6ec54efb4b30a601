package todo

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/nibzard/taskflow/internal/taskdir"
)

// Store reads and writes the task file: a JSON array of tasks.
type Store struct {
	path string
}

// NewStore returns a store backed by the file at path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Read parses the task file. A missing file yields ErrNoFile.
func (s *Store) Read() ([]Task, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNoFile, s.path)
		}
		return nil, fmt.Errorf("read task file: %w", err)
	}

	var tasks []Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		return nil, fmt.Errorf("parse task file: %w", err)
	}
	if tasks == nil {
		tasks = []Task{}
	}
	return tasks, nil
}

// Load returns the stored tasks, or an empty list when the file is
// missing, unreadable, or not a valid task array.
func (s *Store) Load() []Task {
	tasks, err := s.Read()
	if err != nil {
		return []Task{}
	}
	return tasks
}

// Save overwrites the task file with tasks, using 2-space indentation and
// writing non-ASCII characters literally.
func (s *Store) Save(tasks []Task) error {
	data, err := Encode(tasks)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(s.path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create task dir: %w", err)
		}
	}

	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("write task file: %w", err)
	}
	return nil
}

// Encode renders tasks in the on-disk format. A nil slice encodes as [].
func Encode(tasks []Task) ([]byte, error) {
	if tasks == nil {
		tasks = []Task{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(tasks); err != nil {
		return nil, fmt.Errorf("marshal task file: %w", err)
	}
	return buf.Bytes(), nil
}

// Lock takes an exclusive lock on <path>.lock so that only one
// interactive session edits the file at a time. The returned func releases it.
func (s *Store) Lock() (func() error, error) {
	if dir := filepath.Dir(s.path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create task dir: %w", err)
		}
	}

	lk := flock.New(taskdir.LockPath(s.path))
	locked, err := lk.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock task file: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("%w: %s", ErrLocked, s.path)
	}
	return lk.Unlock, nil
}
