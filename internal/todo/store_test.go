package todo

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.json")
	store := NewStore(path)

	original := []Task{
		{ID: 1, Title: "Preparar apresentação", Category: "Trabalho", DueDate: "2025-11-30", Priority: 1, Status: StatusTodo, Note: "slides <final> & notes"},
		{ID: 2, Title: "Groceries", Category: "General", Priority: 3, Status: StatusDone},
	}

	if err := store.Save(original); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded := store.Load()
	if !reflect.DeepEqual(loaded, original) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", loaded, original)
	}
}

func TestSaveOutputFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.json")
	store := NewStore(path)

	tasks := []Task{{ID: 1, Title: "Café", Category: "Geral", Priority: 2, Status: StatusTodo, Note: "a<b"}}
	if err := store.Save(tasks); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	content := string(data)

	if !strings.HasPrefix(content, "[\n  {\n    \"id\": 1,") {
		t.Errorf("expected 2-space indented array, got:\n%s", content)
	}
	if !strings.Contains(content, "Café") {
		t.Error("non-ASCII characters should be written literally")
	}
	if !strings.Contains(content, "a<b") {
		t.Error("HTML characters should not be escaped")
	}
	if !strings.HasSuffix(content, "}\n]\n") {
		t.Error("expected trailing newline after closing bracket")
	}
}

func TestSaveNilWritesEmptyArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.json")
	if err := NewStore(path).Save(nil); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "[]\n" {
		t.Errorf("got %q, want %q", data, "[]\n")
	}
}

func TestSaveCreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "tasks.json")
	if err := NewStore(path).Save([]Task{{ID: 1, Title: "x", Priority: 2, Status: StatusTodo}}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("file not created: %v", err)
	}
}

func TestLoadTolerant(t *testing.T) {
	tests := []struct {
		name    string
		content *string
		wantErr error
	}{
		{name: "missing file", content: nil, wantErr: ErrNoFile},
		{name: "invalid json", content: ptr("{not json")},
		{name: "object instead of array", content: ptr(`{"tasks": []}`)},
		{name: "empty file", content: ptr("")},
		{name: "null", content: ptr("null")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "tasks.json")
			if tt.content != nil {
				if err := os.WriteFile(path, []byte(*tt.content), 0644); err != nil {
					t.Fatal(err)
				}
			}
			store := NewStore(path)

			loaded := store.Load()
			if loaded == nil || len(loaded) != 0 {
				t.Errorf("Load() = %#v, want empty non-nil slice", loaded)
			}

			_, err := store.Read()
			if tt.name == "null" {
				if err != nil {
					t.Errorf("Read(null) error = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatal("Read() should report the problem")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Read() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.json")
	store := NewStore(path)

	unlock, err := store.Lock()
	if err != nil {
		t.Fatalf("Lock failed: %v", err)
	}

	if _, err := NewStore(path).Lock(); !errors.Is(err, ErrLocked) {
		t.Errorf("second Lock error = %v, want ErrLocked", err)
	}

	if err := unlock(); err != nil {
		t.Fatalf("unlock failed: %v", err)
	}

	unlock, err = NewStore(path).Lock()
	if err != nil {
		t.Fatalf("Lock after unlock failed: %v", err)
	}
	_ = unlock()
}

func ptr(s string) *string {
	return &s
}
