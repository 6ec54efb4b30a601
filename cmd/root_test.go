// Package cmd provides tests for CLI command handlers.
package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nibzard/taskflow/internal/logging"
	"github.com/nibzard/taskflow/internal/todo"
	"github.com/nibzard/taskflow/internal/ui"
)

var configEnv = []string{
	"TASKFLOW_DATA_FILE",
	"TASKFLOW_SCHEMA_FILE",
	"TASKFLOW_LOG_DIR",
	"TASKFLOW_ACTIVITY_LOG",
	"TASKFLOW_THEME",
	"TASKFLOW_DEFAULT_CATEGORY",
	"TASKFLOW_LOG_LEVEL",
	"TASKFLOW_LOG_FORMAT",
	"TASKFLOW_LOG_TIMESTAMPS",
	"TASKFLOW_LOG_CALLER",
}

// setupCLI isolates the test from real config files and captures output.
func setupCLI(t *testing.T) (dir string, out, errOut *bytes.Buffer) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Setenv("APPDATA", filepath.Join(home, "AppData"))
	for _, name := range configEnv {
		t.Setenv(name, "")
	}
	dir = t.TempDir()
	// Equivalent of t.Chdir (Go 1.24+) for older toolchains.
	oldWd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PWD", dir)
	t.Cleanup(func() {
		if err := os.Chdir(oldWd); err != nil {
			panic(err)
		}
	})

	out, errOut = &bytes.Buffer{}, &bytes.Buffer{}
	oldOut, oldErr := stdout, stderr
	stdout, stderr = out, errOut
	t.Cleanup(func() {
		stdout, stderr = oldOut, oldErr
	})
	return dir, out, errOut
}

func writeTasks(t *testing.T, path string, tasks []todo.Task) {
	t.Helper()
	if err := todo.NewStore(path).Save(tasks); err != nil {
		t.Fatalf("writing tasks: %v", err)
	}
}

func sampleTasks() []todo.Task {
	return []todo.Task{
		{ID: 1, Title: "Write docs", Category: "Work", Priority: 2, Status: todo.StatusDone},
		{ID: 2, Title: "Pay rent", Category: "Home", DueDate: "2000-01-01", Priority: 1, Status: todo.StatusTodo},
		{ID: 3, Title: "Fix bug", Category: "Work", Priority: 3, Status: todo.StatusDoing, Note: "see issue"},
		{ID: 4, Title: "Book flights", Category: "Home", Priority: 3, Status: todo.StatusTodo},
	}
}

// TestRun tests the main Run function.
func TestRun(t *testing.T) {
	t.Run("shows help with --help flag", func(t *testing.T) {
		_, out, _ := setupCLI(t)
		if err := Run(context.Background(), []string{"--help"}); err != nil {
			t.Errorf("expected no error with --help, got %v", err)
		}
		if !strings.Contains(out.String(), "Usage:") {
			t.Errorf("help output missing usage: %q", out.String())
		}
	})

	t.Run("shows help with help command", func(t *testing.T) {
		_, out, _ := setupCLI(t)
		if err := Run(context.Background(), []string{"help"}); err != nil {
			t.Errorf("expected no error with help command, got %v", err)
		}
		if !strings.Contains(out.String(), "ls [status] [file]") {
			t.Errorf("help output missing commands: %q", out.String())
		}
	})

	t.Run("shows version with -v flag", func(t *testing.T) {
		_, out, _ := setupCLI(t)
		if err := Run(context.Background(), []string{"-v"}); err != nil {
			t.Errorf("expected no error with -v, got %v", err)
		}
		if !strings.Contains(out.String(), "taskflow version") {
			t.Errorf("version output = %q", out.String())
		}
	})

	t.Run("unknown command returns error", func(t *testing.T) {
		_, _, errOut := setupCLI(t)
		err := Run(context.Background(), []string{"unknown-command"})
		if err == nil {
			t.Fatal("expected error for unknown command, got nil")
		}
		if !strings.Contains(err.Error(), "unknown command") {
			t.Errorf("expected 'unknown command' error, got %v", err)
		}
		if !strings.Contains(errOut.String(), "Unknown command: unknown-command") {
			t.Errorf("stderr = %q", errOut.String())
		}
	})

	t.Run("invalid config value is rejected", func(t *testing.T) {
		setupCLI(t)
		if err := Run(context.Background(), []string{"-theme", "neon", "ls"}); err == nil {
			t.Error("expected error for invalid theme")
		}
	})

	t.Run("board requires a terminal", func(t *testing.T) {
		dir, _, _ := setupCLI(t)
		if ui.IsTTY(os.Stdout) {
			t.Skip("stdout is a terminal")
		}
		logDir := filepath.Join(dir, "logs")
		err := Run(context.Background(), []string{"-log-dir", logDir, "board"})
		if err == nil || !strings.Contains(err.Error(), "TTY") {
			t.Errorf("expected TTY error, got %v", err)
		}
		// Nothing is locked or logged before the terminal check.
		if _, err := os.Stat(filepath.Join(dir, "tasks.json.lock")); !os.IsNotExist(err) {
			t.Errorf("lock file should not exist, stat err = %v", err)
		}
		if _, err := os.Stat(logDir); !os.IsNotExist(err) {
			t.Errorf("log dir should not exist, stat err = %v", err)
		}
	})
}

func TestLsCommand(t *testing.T) {
	t.Run("groups tasks by column in board order", func(t *testing.T) {
		dir, out, _ := setupCLI(t)
		writeTasks(t, filepath.Join(dir, "tasks.json"), sampleTasks())

		if err := Run(context.Background(), []string{"ls"}); err != nil {
			t.Fatalf("ls failed: %v", err)
		}
		got := out.String()
		order := []string{"To Do (2):", "#2 (P1) Pay rent [overdue]", "#4 (P3) Book flights", "In Progress (1):", "#3 (P3) Fix bug", "Done (1):", "#1 (P2) Write docs"}
		last := -1
		for _, want := range order {
			idx := strings.Index(got, want)
			if idx < 0 {
				t.Fatalf("output missing %q:\n%s", want, got)
			}
			if idx < last {
				t.Errorf("%q out of order:\n%s", want, got)
			}
			last = idx
		}
		if strings.Contains(got, "Book flights [overdue]") {
			t.Error("task without due date must not be overdue")
		}
	})

	t.Run("status argument limits output", func(t *testing.T) {
		dir, out, _ := setupCLI(t)
		writeTasks(t, filepath.Join(dir, "tasks.json"), sampleTasks())

		if err := Run(context.Background(), []string{"ls", "doing"}); err != nil {
			t.Fatalf("ls doing failed: %v", err)
		}
		got := out.String()
		if !strings.Contains(got, "Fix bug") || strings.Contains(got, "Pay rent") {
			t.Errorf("ls doing output:\n%s", got)
		}
	})

	t.Run("query and verbose", func(t *testing.T) {
		dir, out, _ := setupCLI(t)
		writeTasks(t, filepath.Join(dir, "tasks.json"), sampleTasks())

		if err := Run(context.Background(), []string{"ls", "-q", "WORK", "-v"}); err != nil {
			t.Fatalf("ls -q failed: %v", err)
		}
		got := out.String()
		if strings.Contains(got, "Pay rent") {
			t.Errorf("filter should hide Home tasks:\n%s", got)
		}
		for _, want := range []string{"Write docs", "Fix bug", "Category: Work", "Note: see issue", "Due: none"} {
			if !strings.Contains(got, want) {
				t.Errorf("output missing %q:\n%s", want, got)
			}
		}
	})

	t.Run("explicit file argument", func(t *testing.T) {
		dir, out, _ := setupCLI(t)
		path := filepath.Join(dir, "other.json")
		writeTasks(t, path, sampleTasks()[:1])

		if err := Run(context.Background(), []string{"ls", path}); err != nil {
			t.Fatalf("ls file failed: %v", err)
		}
		if !strings.Contains(out.String(), "Done (1):") {
			t.Errorf("output:\n%s", out.String())
		}
	})

	t.Run("missing file lists nothing", func(t *testing.T) {
		_, out, _ := setupCLI(t)
		if err := Run(context.Background(), []string{"ls"}); err != nil {
			t.Fatalf("ls failed: %v", err)
		}
		if !strings.Contains(out.String(), "No tasks found.") {
			t.Errorf("output = %q", out.String())
		}
	})

	t.Run("corrupt file lists nothing", func(t *testing.T) {
		dir, out, _ := setupCLI(t)
		if err := os.WriteFile(filepath.Join(dir, "tasks.json"), []byte("{not json"), 0644); err != nil {
			t.Fatal(err)
		}
		if err := Run(context.Background(), []string{"ls"}); err != nil {
			t.Fatalf("ls failed: %v", err)
		}
		if !strings.Contains(out.String(), "No tasks found.") {
			t.Errorf("output = %q", out.String())
		}
	})

	t.Run("too many arguments", func(t *testing.T) {
		setupCLI(t)
		if err := Run(context.Background(), []string{"ls", "todo", "a.json", "b.json"}); err == nil {
			t.Error("expected error for extra arguments")
		}
	})
}

func TestDoctorCommand(t *testing.T) {
	t.Run("valid file", func(t *testing.T) {
		dir, out, _ := setupCLI(t)
		writeTasks(t, filepath.Join(dir, "tasks.json"), sampleTasks())

		if err := Run(context.Background(), []string{"doctor", "-v"}); err != nil {
			t.Fatalf("doctor failed: %v\n%s", err, out.String())
		}
		got := out.String()
		for _, want := range []string{"TaskFlow Doctor", "OK (4 tasks)", "To Do: 2", "Not locked", "tasks.json.lock", "All checks passed!"} {
			if !strings.Contains(got, want) {
				t.Errorf("output missing %q:\n%s", want, got)
			}
		}
	})

	t.Run("missing file is a warning", func(t *testing.T) {
		_, out, _ := setupCLI(t)
		if err := Run(context.Background(), []string{"doctor"}); err != nil {
			t.Fatalf("doctor failed: %v\n%s", err, out.String())
		}
		if !strings.Contains(out.String(), "Not found") {
			t.Errorf("output:\n%s", out.String())
		}
	})

	t.Run("invalid file fails", func(t *testing.T) {
		dir, out, _ := setupCLI(t)
		content := `[{"id": 1, "title": "A", "priority": 7, "status": "todo"}]`
		if err := os.WriteFile(filepath.Join(dir, "tasks.json"), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
		err := Run(context.Background(), []string{"doctor"})
		if err == nil || !strings.Contains(err.Error(), "doctor checks failed") {
			t.Errorf("expected doctor failure, got %v", err)
		}
		if !strings.Contains(out.String(), "priority") {
			t.Errorf("output should name the bad field:\n%s", out.String())
		}
	})

	t.Run("reports a locked file", func(t *testing.T) {
		dir, out, _ := setupCLI(t)
		path := filepath.Join(dir, "tasks.json")
		writeTasks(t, path, sampleTasks())
		unlock, err := todo.NewStore(path).Lock()
		if err != nil {
			t.Fatal(err)
		}
		defer unlock()

		if err := Run(context.Background(), []string{"doctor"}); err != nil {
			t.Fatalf("doctor failed: %v", err)
		}
		if !strings.Contains(out.String(), "Open in another board session") {
			t.Errorf("output:\n%s", out.String())
		}
	})
}

func TestTailCommand(t *testing.T) {
	t.Run("no logs", func(t *testing.T) {
		dir, out, _ := setupCLI(t)
		args := []string{"-log-dir", filepath.Join(dir, "logs"), "tail"}
		if err := Run(context.Background(), args); err != nil {
			t.Fatalf("tail failed: %v", err)
		}
		if !strings.Contains(out.String(), "No log files found.") {
			t.Errorf("output = %q", out.String())
		}
	})

	t.Run("prints the latest session", func(t *testing.T) {
		dir, out, _ := setupCLI(t)
		logDir := filepath.Join(dir, "logs")
		dataPath := filepath.Join(dir, "tasks.json")

		session, err := logging.NewSession(logDir, dataPath, nil)
		if err != nil {
			t.Fatal(err)
		}
		task := sampleTasks()[1]
		session.Record(todo.Activity{Action: todo.ActionAdd, Task: &task})
		if err := session.Close(); err != nil {
			t.Fatal(err)
		}

		if err := Run(context.Background(), []string{"-log-dir", logDir, "tail", dataPath}); err != nil {
			t.Fatalf("tail failed: %v", err)
		}
		got := out.String()
		if !strings.Contains(got, "Tailing: "+session.LogPath) || !strings.Contains(got, "Pay rent") {
			t.Errorf("output:\n%s", got)
		}

		out.Reset()
		if err := Run(context.Background(), []string{"-log-dir", logDir, "tail", "-pretty", dataPath}); err != nil {
			t.Fatalf("tail -pretty failed: %v", err)
		}
		if got := out.String(); !strings.Contains(got, " add #2: Pay rent") || strings.Contains(got, "{") {
			t.Errorf("pretty output:\n%s", got)
		}

		if err := Run(context.Background(), []string{"-log-dir", logDir, "tail", "-pretty", "-f", dataPath}); err == nil {
			t.Error("expected error for -pretty with -f")
		}

		out.Reset()
		if err := Run(context.Background(), []string{"-log-dir", logDir, "tail", "-list", dataPath}); err != nil {
			t.Fatalf("tail -list failed: %v", err)
		}
		if !strings.Contains(out.String(), session.ID) {
			t.Errorf("session list missing %s:\n%s", session.ID, out.String())
		}
	})
}

func TestConfigCommand(t *testing.T) {
	t.Run("shows sources", func(t *testing.T) {
		_, out, _ := setupCLI(t)
		t.Setenv("TASKFLOW_THEME", "light")

		if err := Run(context.Background(), []string{"-category", "Work", "config"}); err != nil {
			t.Fatalf("config failed: %v", err)
		}
		got := out.String()
		for _, want := range []string{`"light"`, "(environment)", `"Work"`, "(flag)", "(default)"} {
			if !strings.Contains(got, want) {
				t.Errorf("output missing %q:\n%s", want, got)
			}
		}
	})

	t.Run("project file is listed", func(t *testing.T) {
		dir, out, _ := setupCLI(t)
		if err := os.WriteFile(filepath.Join(dir, "taskflow.toml"), []byte("theme = \"light\"\n"), 0644); err != nil {
			t.Fatal(err)
		}
		if err := Run(context.Background(), []string{"config"}); err != nil {
			t.Fatalf("config failed: %v", err)
		}
		if !strings.Contains(out.String(), "(project file)") || !strings.Contains(out.String(), "# loaded") {
			t.Errorf("output:\n%s", out.String())
		}
	})

	t.Run("example", func(t *testing.T) {
		_, out, _ := setupCLI(t)
		if err := Run(context.Background(), []string{"config", "-example"}); err != nil {
			t.Fatalf("config -example failed: %v", err)
		}
		if !strings.Contains(out.String(), "data_file") {
			t.Errorf("example output:\n%s", out.String())
		}
	})

	t.Run("schema", func(t *testing.T) {
		_, out, _ := setupCLI(t)
		if err := Run(context.Background(), []string{"config", "-schema"}); err != nil {
			t.Fatalf("config -schema failed: %v", err)
		}
		if out.String() != string(todo.EmbeddedSchema()) {
			t.Errorf("schema output:\n%s", out.String())
		}
	})
}
