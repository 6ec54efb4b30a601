// Package logging writes the JSONL activity log and tails it back.
package logging

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/nibzard/taskflow/internal/todo"
)

// pollInterval is how often a followed log is checked for new data.
const pollInterval = 100 * time.Millisecond

// Entry is one line of the activity log.
type Entry struct {
	Time time.Time `json:"time"`
	todo.Activity
}

// Session appends board activity to a per-session JSONL file.
// It implements todo.Recorder.
type Session struct {
	Dir     string
	ID      string
	LogPath string

	mu     sync.Mutex
	file   *os.File
	enc    *json.Encoder
	err    error
	logger *log.Logger
	now    func() time.Time
}

// NewSession creates the log directory for the task file at dataFile and
// opens a fresh JSONL file in it. Write failures are reported to logger
// when it is non-nil.
func NewSession(baseDir, dataFile string, logger *log.Logger) (*Session, error) {
	logDir, err := FindLogDir(baseDir, dataFile)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}

	id := sessionID()
	logPath := filepath.Join(logDir, fmt.Sprintf("%s.jsonl", id))
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("create log file: %w", err)
	}

	return &Session{
		Dir:     logDir,
		ID:      id,
		LogPath: logPath,
		file:    file,
		enc:     json.NewEncoder(file),
		logger:  logger,
		now:     time.Now,
	}, nil
}

// Record appends a to the log. The first write error is kept and
// returned by Err; later records are dropped.
func (s *Session) Record(a todo.Activity) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil || s.err != nil {
		return
	}
	if err := s.enc.Encode(Entry{Time: s.now().UTC(), Activity: a}); err != nil {
		s.err = fmt.Errorf("write activity log: %w", err)
		if s.logger != nil {
			s.logger.Warn("activity log disabled", "path", s.LogPath, "err", err)
		}
	}
}

// Err returns the first write error, if any.
func (s *Session) Err() error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close closes the log file.
func (s *Session) Close() error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}

func resolveBaseDir(baseDir, workDir string) string {
	if filepath.IsAbs(baseDir) {
		return filepath.Clean(baseDir)
	}
	return filepath.Clean(filepath.Join(workDir, baseDir))
}

// projectSlug names the log directory of one task file: the name of the
// directory holding it plus a short hash of its full path.
func projectSlug(dataFile string) string {
	name := filepath.Base(filepath.Dir(dataFile))
	return fmt.Sprintf("%s-%s", slugify(name), hashPath(dataFile))
}

func slugify(input string) string {
	if strings.TrimSpace(input) == "" {
		return "project"
	}

	var b strings.Builder
	lastUnderscore := false
	for i := 0; i < len(input); i++ {
		c := input[i]
		valid := (c >= 'A' && c <= 'Z') ||
			(c >= 'a' && c <= 'z') ||
			(c >= '0' && c <= '9') ||
			c == '.' || c == '_' || c == '-'
		if !valid {
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
			continue
		}
		b.WriteByte(c)
		lastUnderscore = false
	}

	slug := strings.Trim(b.String(), "_")
	if slug == "" {
		return "project"
	}
	return slug
}

func hashPath(input string) string {
	sum := sha1.Sum([]byte(input))
	return hex.EncodeToString(sum[:])[:8]
}

func sessionID() string {
	return fmt.Sprintf("%s-%d", time.Now().UTC().Format("20060102-150405"), os.Getpid())
}

// FindLogDir returns the log directory for the task file at dataFile.
// A relative baseDir is resolved against the current directory.
func FindLogDir(baseDir, dataFile string) (string, error) {
	if baseDir == "" {
		return "", fmt.Errorf("log base dir is empty")
	}
	if dataFile == "" {
		return "", fmt.Errorf("task file path is empty")
	}

	abs, err := filepath.Abs(dataFile)
	if err != nil {
		return "", fmt.Errorf("resolve task file: %w", err)
	}
	wd, err := os.Getwd()
	if err != nil {
		wd = "."
	}

	return filepath.Join(resolveBaseDir(baseDir, wd), projectSlug(abs)), nil
}

// FindLatestLog finds the latest JSONL log file in a directory.
func FindLatestLog(logDir string) (string, error) {
	sessions, err := ListSessions(logDir)
	if err != nil {
		return "", err
	}
	if len(sessions) == 0 {
		return "", nil
	}
	return sessions[0].Path, nil
}

// SessionFile describes one activity log on disk.
type SessionFile struct {
	ID      string
	Path    string
	Size    int64
	ModTime time.Time
}

// ListSessions lists the JSONL logs in logDir, newest first. A missing
// directory yields no sessions.
func ListSessions(logDir string) ([]SessionFile, error) {
	entries, err := os.ReadDir(logDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read log dir: %w", err)
	}

	var sessions []SessionFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".jsonl") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		sessions = append(sessions, SessionFile{
			ID:      strings.TrimSuffix(name, ".jsonl"),
			Path:    filepath.Join(logDir, name),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.SliceStable(sessions, func(i, j int) bool {
		if sessions[i].ModTime.Equal(sessions[j].ModTime) {
			return sessions[i].ID > sessions[j].ID
		}
		return sessions[i].ModTime.After(sessions[j].ModTime)
	})
	return sessions, nil
}

// FormatEntry renders e as one human-readable line, for example
// "2025-11-30 12:03:04 move #4 todo -> doing: Ship release".
func FormatEntry(e Entry) string {
	var b strings.Builder
	b.WriteString(e.Time.Local().Format(time.DateTime))
	b.WriteByte(' ')
	b.WriteString(string(e.Action))

	if e.Task == nil {
		fmt.Fprintf(&b, " (%d tasks)", e.Count)
		return b.String()
	}
	fmt.Fprintf(&b, " #%d", e.Task.ID)
	if e.From != "" && e.From != e.Task.Status {
		fmt.Fprintf(&b, " %s -> %s", e.From, e.Task.Status)
	}
	fmt.Fprintf(&b, ": %s", e.Task.Title)
	return b.String()
}

// ReadEntries parses every line of the activity log at path. Lines that
// are not valid entries are skipped.
func ReadEntries(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read log file: %w", err)
	}

	var entries []Entry
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var e Entry
		if err := json.Unmarshal([]byte(line), &e); err != nil {
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// TailLog copies the log file at path to w. When n > 0 only about the
// last n lines are shown. With follow set it keeps copying new data until
// ctx is done.
func TailLog(ctx context.Context, w io.Writer, path string, n int, follow bool) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	if n > 0 {
		if err := tailSeek(file, n); err != nil {
			return fmt.Errorf("seek to tail position: %w", err)
		}
	}

	if follow {
		return tailFollow(ctx, w, file)
	}

	_, err = io.Copy(w, file)
	return err
}

// tailSeek positions file at the start of its last n lines.
func tailSeek(file *os.File, n int) error {
	const chunk = 4096

	stat, err := file.Stat()
	if err != nil {
		return err
	}
	size := stat.Size()

	// Skip a trailing newline so it does not count as an empty line.
	end := size
	if end > 0 {
		var last [1]byte
		if _, err := file.ReadAt(last[:], end-1); err != nil {
			return err
		}
		if last[0] == '\n' {
			end--
		}
	}

	buf := make([]byte, chunk)
	lines := 0
	for pos := end; pos > 0; {
		readLen := int64(chunk)
		if pos < readLen {
			readLen = pos
		}
		pos -= readLen
		if _, err := file.ReadAt(buf[:readLen], pos); err != nil && err != io.EOF {
			return err
		}
		for i := readLen - 1; i >= 0; i-- {
			if buf[i] != '\n' {
				continue
			}
			lines++
			if lines == n {
				_, err := file.Seek(pos+i+1, io.SeekStart)
				return err
			}
		}
	}

	_, err = file.Seek(0, io.SeekStart)
	return err
}

// tailFollow follows a file like tail -f until ctx is done.
func tailFollow(ctx context.Context, w io.Writer, file *os.File) error {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		if _, err := io.Copy(w, file); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
