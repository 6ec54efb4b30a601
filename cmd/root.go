// Package cmd implements the CLI command structure for taskflow.
package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/log"

	"github.com/nibzard/taskflow/internal/config"
	"github.com/nibzard/taskflow/internal/logging"
	"github.com/nibzard/taskflow/internal/taskdir"
	"github.com/nibzard/taskflow/internal/todo"
	"github.com/nibzard/taskflow/internal/ui"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Output streams, replaced in tests.
var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// Run executes the taskflow CLI.
func Run(ctx context.Context, args []string) error {
	// Create a flag set for global options
	fs := flag.NewFlagSet("taskflow", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		printUsage(fs, stderr)
	}
	help := fs.Bool("help", false, "Show help")
	fs.BoolVar(help, "h", false, "Show help")
	showVersion := fs.Bool("version", false, "Show version")
	fs.BoolVar(showVersion, "v", false, "Show version")

	// Global flags
	cws, err := config.LoadWithSources(fs, args)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	cfg := cws.Config
	if *help {
		printUsage(fs, stdout)
		return nil
	}
	if *showVersion {
		return versionCommand(stdout)
	}

	logger := logging.NewConsoleLoggerFromConfig(stderr, cfg.LogLevel, cfg.LogFormat, cfg.LogTimestamps, cfg.LogCaller)
	logger.Debug("config loaded", "files", cws.Files, "data_file", cfg.DataFile)

	// Determine the subcommand
	// If no args or first arg is a flag, use "board" as default
	subcommand := "board"
	remainingArgs := fs.Args()
	if len(remainingArgs) > 0 && !strings.HasPrefix(remainingArgs[0], "-") {
		subcommand = remainingArgs[0]
		remainingArgs = remainingArgs[1:]
	}

	switch subcommand {
	case "board":
		return boardCommand(ctx, cfg, logger, remainingArgs)
	case "ls":
		return lsCommand(cfg, logger, remainingArgs, stdout)
	case "doctor":
		return doctorCommand(cws, remainingArgs, stdout)
	case "tail":
		return tailCommand(ctx, cfg, remainingArgs, stdout)
	case "config":
		return configCommand(cws, remainingArgs, stdout)
	case "version", "--version", "-v":
		return versionCommand(stdout)
	case "help", "--help", "-h":
		printUsage(fs, stdout)
		return nil
	default:
		// An existing file opens the board on that file
		if fi, err := os.Stat(subcommand); err == nil && !fi.IsDir() {
			return boardCommand(ctx, cfg, logger, append([]string{subcommand}, remainingArgs...))
		}
		fmt.Fprintf(stderr, "Unknown command: %s\n", subcommand)
		printUsage(fs, stderr)
		return fmt.Errorf("unknown command: %s", subcommand)
	}
}

// dataPath returns the task file named in args, or the configured one.
func dataPath(cfg *config.Config, args []string) (string, error) {
	switch len(args) {
	case 0:
		return cfg.DataFile, nil
	case 1:
		return cfg.ResolvePath(args[0]), nil
	default:
		return "", fmt.Errorf("unexpected arguments: %v", args[1:])
	}
}

// loadTasks reads the task file, treating a missing or corrupt file as empty.
func loadTasks(store *todo.Store, logger *log.Logger) []todo.Task {
	tasks, err := store.Read()
	if err != nil {
		logger.Debug("starting with an empty task list", "path", store.Path(), "err", err)
		return []todo.Task{}
	}
	return tasks
}

// boardCommand launches the interactive board.
func boardCommand(ctx context.Context, cfg *config.Config, logger *log.Logger, args []string) error {
	fs := flag.NewFlagSet("taskflow board", flag.ContinueOnError)
	fs.SetOutput(stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}
	path, err := dataPath(cfg, fs.Args())
	if err != nil {
		return err
	}

	if !ui.IsTTY(os.Stdout) {
		return fmt.Errorf("board requires a TTY, use \"taskflow ls\" instead")
	}

	store := todo.NewStore(path)
	unlock, err := store.Lock()
	if err != nil {
		return err
	}
	defer func() {
		if err := unlock(); err != nil {
			logger.Warn("releasing task file lock", "err", err)
		}
	}()

	opts := []todo.Option{todo.WithDefaultCategory(cfg.DefaultCategory)}
	if cfg.ActivityLog {
		session, err := logging.NewSession(cfg.LogDir, path, logger)
		if err != nil {
			logger.Warn("activity log disabled", "err", err)
		} else {
			defer closeSession(session, logger)
			logger.Debug("recording activity", "path", session.LogPath)
			opts = append(opts, todo.WithRecorder(session))
		}
	}

	board := todo.NewBoard(store, opts...)
	logger.Debug("board loaded", "path", path, "tasks", board.Len())
	return ui.RunBoard(ctx, board,
		ui.WithTheme(cfg.Theme),
		ui.WithDefaultCategory(cfg.DefaultCategory),
		ui.WithLogger(logger),
	)
}

// closeSession closes the activity log and reports records that were lost.
func closeSession(session *logging.Session, logger *log.Logger) {
	if err := session.Err(); err != nil {
		logger.Warn("activity log is incomplete", "path", session.LogPath, "err", err)
	}
	if err := session.Close(); err != nil {
		logger.Warn("closing activity log", "path", session.LogPath, "err", err)
	}
}

// lsCommand lists tasks grouped by column in board order.
func lsCommand(cfg *config.Config, logger *log.Logger, args []string, w io.Writer) error {
	fs := flag.NewFlagSet("taskflow ls", flag.ContinueOnError)
	fs.SetOutput(stderr)
	query := fs.String("q", "", "Only show tasks whose title, category or note contain text")
	verbose := fs.Bool("v", false, "Show category, due date and note")

	if err := fs.Parse(args); err != nil {
		return err
	}

	// A leading argument that names a status filters by it
	remaining := fs.Args()
	var status todo.Status
	if len(remaining) > 0 {
		if s, err := todo.ParseStatus(remaining[0]); err == nil {
			status = s
			remaining = remaining[1:]
		}
	}
	path, err := dataPath(cfg, remaining)
	if err != nil {
		return err
	}

	tasks := todo.Sorted(todo.Filter(loadTasks(todo.NewStore(path), logger), *query))
	if status != "" {
		var matching []todo.Task
		for _, t := range tasks {
			if t.Status == status {
				matching = append(matching, t)
			}
		}
		tasks = matching
	}

	if len(tasks) == 0 {
		fmt.Fprintln(w, "No tasks found.")
		return nil
	}

	now := time.Now()
	for i := 0; i < len(tasks); {
		j := i
		for j < len(tasks) && tasks[j].Status == tasks[i].Status {
			j++
		}
		fmt.Fprintf(w, "%s (%d):\n", tasks[i].Status.Label(), j-i)
		for _, t := range tasks[i:j] {
			printTask(w, t, now, *verbose)
		}
		fmt.Fprintln(w)
		i = j
	}
	return nil
}

// printTask prints a single task.
func printTask(w io.Writer, t todo.Task, now time.Time, verbose bool) {
	line := fmt.Sprintf("  #%d (P%d) %s", t.ID, t.Priority, t.Title)
	if t.Overdue(now) {
		line += " [overdue]"
	}
	fmt.Fprintln(w, line)

	if !verbose {
		return
	}
	fmt.Fprintf(w, "      Category: %s\n", t.Category)
	if t.DueDate != "" {
		fmt.Fprintf(w, "      Due: %s\n", t.DueDate)
	} else {
		fmt.Fprintln(w, "      Due: none")
	}
	if t.Note != "" {
		fmt.Fprintf(w, "      Note: %s\n", t.Note)
	}
}

// doctorCommand checks config, the task file and its schema.
func doctorCommand(cws *config.ConfigWithSources, args []string, w io.Writer) error {
	cfg := cws.Config
	fs := flag.NewFlagSet("taskflow doctor", flag.ContinueOnError)
	fs.SetOutput(stderr)
	verbose := fs.Bool("v", false, "Verbose output")

	if err := fs.Parse(args); err != nil {
		return err
	}
	path, err := dataPath(cfg, fs.Args())
	if err != nil {
		return err
	}

	fmt.Fprintln(w, "TaskFlow Doctor")
	fmt.Fprintln(w, "===============")
	fmt.Fprintln(w)

	allOK := true

	// Config was validated while loading
	fmt.Fprintln(w, "Config:")
	if len(cws.Files) == 0 {
		fmt.Fprintln(w, "  ✅ No config file, using defaults")
	}
	for _, f := range cws.Files {
		fmt.Fprintf(w, "  ✅ Loaded %s\n", f)
	}
	fmt.Fprintf(w, "  ✅ Theme: %s\n", cfg.Theme)
	fmt.Fprintf(w, "  ✅ Default category: %s\n", cfg.DefaultCategory)
	fmt.Fprintln(w)

	// Check the task file
	fmt.Fprintf(w, "Task file: %s\n", path)
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		fmt.Fprintln(w, "  ⚠️  Not found (will be created on first save)")
	case err != nil:
		fmt.Fprintf(w, "  ❌ Error: %v\n", err)
		allOK = false
	default:
		result := todo.ValidateFile(data, todo.ValidationOptions{SchemaPath: cfg.SchemaFile})
		for _, warning := range result.Warnings {
			fmt.Fprintf(w, "  ⚠️  %s\n", warning)
		}
		tasks, readErr := todo.NewStore(path).Read()
		switch {
		case !result.Valid:
			for _, verr := range result.Errors {
				fmt.Fprintf(w, "  ❌ %v\n", verr)
			}
			allOK = false
		case readErr != nil:
			fmt.Fprintf(w, "  ❌ Error: %v\n", readErr)
			allOK = false
		default:
			fmt.Fprintf(w, "  ✅ OK (%d tasks)\n", len(tasks))
			if *verbose {
				counts := map[todo.Status]int{}
				for _, t := range tasks {
					counts[t.Status]++
				}
				for _, s := range todo.Statuses() {
					fmt.Fprintf(w, "     %s: %d\n", s.Label(), counts[s])
				}
			}
		}
	}

	// Check the lock. Probing it creates the lock file if it is missing.
	if _, err := os.Stat(path); err == nil {
		unlock, err := todo.NewStore(path).Lock()
		switch {
		case errors.Is(err, todo.ErrLocked):
			fmt.Fprintln(w, "  ⚠️  Open in another board session")
		case err != nil:
			fmt.Fprintf(w, "  ❌ Lock check failed: %v\n", err)
			allOK = false
		default:
			if err := unlock(); err != nil {
				fmt.Fprintf(w, "  ❌ Releasing lock failed: %v\n", err)
				allOK = false
			} else {
				fmt.Fprintf(w, "  ✅ Not locked (checking creates %s if missing)\n", taskdir.LockPath(path))
			}
		}
	}
	fmt.Fprintln(w)

	// Check the schema
	if cfg.SchemaFile == "" {
		fmt.Fprintln(w, "Schema: built-in")
	} else {
		fmt.Fprintf(w, "Schema: %s\n", cfg.SchemaFile)
		if _, err := os.Stat(cfg.SchemaFile); err != nil {
			fmt.Fprintln(w, "  ⚠️  Not found, using the built-in schema")
		} else {
			fmt.Fprintln(w, "  ✅ OK")
		}
	}
	fmt.Fprintln(w)

	// Check log directory
	fmt.Fprintf(w, "Log directory: %s\n", cfg.LogDir)
	if !cfg.ActivityLog {
		fmt.Fprintln(w, "  ✅ Activity log disabled")
	} else if info, err := os.Stat(cfg.LogDir); err != nil {
		if os.IsNotExist(err) {
			fmt.Fprintln(w, "  ⚠️  Not found (will be created on first board session)")
		} else {
			fmt.Fprintf(w, "  ❌ Error: %v\n", err)
			allOK = false
		}
	} else if !info.IsDir() {
		fmt.Fprintln(w, "  ❌ Error: path is not a directory")
		allOK = false
	} else {
		fmt.Fprintln(w, "  ✅ OK")
	}
	fmt.Fprintln(w)

	// Overall status
	if allOK {
		fmt.Fprintln(w, "✅ All checks passed!")
		return nil
	}
	fmt.Fprintln(w, "⚠️  Some checks failed.")
	return fmt.Errorf("doctor checks failed")
}

// tailCommand prints the latest activity log.
func tailCommand(ctx context.Context, cfg *config.Config, args []string, w io.Writer) error {
	fs := flag.NewFlagSet("taskflow tail", flag.ContinueOnError)
	fs.SetOutput(stderr)
	follow := fs.Bool("f", false, "Follow the log (like tail -f)")
	fs.BoolVar(follow, "follow", false, "Follow the log (like tail -f)")
	n := fs.Int("n", 0, "Number of lines to show (0 = all)")
	list := fs.Bool("list", false, "List sessions instead of printing the latest")
	pretty := fs.Bool("pretty", false, "Print entries as readable lines instead of JSON")

	if err := fs.Parse(args); err != nil {
		return err
	}
	path, err := dataPath(cfg, fs.Args())
	if err != nil {
		return err
	}

	logDir, err := logging.FindLogDir(cfg.LogDir, path)
	if err != nil {
		return fmt.Errorf("finding log directory: %w", err)
	}

	if *list {
		sessions, err := logging.ListSessions(logDir)
		if err != nil {
			return fmt.Errorf("listing sessions: %w", err)
		}
		if len(sessions) == 0 {
			fmt.Fprintln(w, "No log files found.")
			return nil
		}
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "SESSION\tMODIFIED\tSIZE")
		for _, s := range sessions {
			fmt.Fprintf(tw, "%s\t%s\t%d\n", s.ID, s.ModTime.Format(time.DateTime), s.Size)
		}
		return tw.Flush()
	}

	if *pretty && *follow {
		return fmt.Errorf("-pretty cannot be combined with -follow")
	}

	logPath, err := logging.FindLatestLog(logDir)
	if err != nil {
		return fmt.Errorf("finding latest log: %w", err)
	}
	if logPath == "" {
		fmt.Fprintln(w, "No log files found.")
		return nil
	}

	if *pretty {
		entries, err := logging.ReadEntries(logPath)
		if err != nil {
			return err
		}
		if *n > 0 && len(entries) > *n {
			entries = entries[len(entries)-*n:]
		}
		for _, e := range entries {
			fmt.Fprintln(w, logging.FormatEntry(e))
		}
		return nil
	}

	fmt.Fprintf(w, "Tailing: %s\n", logPath)
	if *follow {
		fmt.Fprintln(w, "(Ctrl+C to stop)")
	}
	fmt.Fprintln(w)

	return logging.TailLog(ctx, w, logPath, *n, *follow)
}

// configCommand prints the effective configuration.
func configCommand(cws *config.ConfigWithSources, args []string, w io.Writer) error {
	fs := flag.NewFlagSet("taskflow config", flag.ContinueOnError)
	fs.SetOutput(stderr)
	example := fs.Bool("example", false, "Print an example config file")
	schema := fs.Bool("schema", false, "Print the built-in task file JSON Schema")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	if *example {
		fmt.Fprint(w, config.ExampleConfig())
		return nil
	}
	if *schema {
		_, err := w.Write(todo.EmbeddedSchema())
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, f := range cws.Fields() {
		fmt.Fprintf(tw, "%s\t%q\t(%s)\n", f.Name, f.Value, f.Source)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	for _, f := range cws.Files {
		fmt.Fprintf(w, "# loaded %s\n", f)
	}
	return nil
}

// versionCommand prints version information.
func versionCommand(w io.Writer) error {
	fmt.Fprintf(w, "taskflow version %s\n", Version)
	return nil
}

// printUsage prints the usage message.
func printUsage(fs *flag.FlagSet, w io.Writer) {
	fmt.Fprintln(w, "TaskFlow - A kanban board for your terminal")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  taskflow [options] [command]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  board [file]        Open the board (default command)")
	fmt.Fprintln(w, "  ls [status] [file]  List tasks by column")
	fmt.Fprintln(w, "  doctor [file]       Check config and task file validity")
	fmt.Fprintln(w, "  tail [file]         Print the latest activity log")
	fmt.Fprintln(w, "  config              Show the effective configuration")
	fmt.Fprintln(w, "  version             Show version information")
	fmt.Fprintln(w, "  help                Show this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Global Options:")
	fs.SetOutput(w)
	fs.PrintDefaults()
	fs.SetOutput(stderr)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Ls Options (use with 'ls' command):")
	fmt.Fprintln(w, "  -q string")
	fmt.Fprintln(w, "        Only show tasks whose title, category or note contain text")
	fmt.Fprintln(w, "  -v    Show category, due date and note")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Tail Options (use with 'tail' command):")
	fmt.Fprintln(w, "  -f, --follow")
	fmt.Fprintln(w, "        Follow the log (like tail -f)")
	fmt.Fprintln(w, "  -n int")
	fmt.Fprintln(w, "        Number of lines to show (0 = all)")
	fmt.Fprintln(w, "  -list")
	fmt.Fprintln(w, "        List sessions instead of printing the latest")
	fmt.Fprintln(w, "  -pretty")
	fmt.Fprintln(w, "        Print entries as readable lines instead of JSON")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Config Options (use with 'config' command):")
	fmt.Fprintln(w, "  -example")
	fmt.Fprintln(w, "        Print an example config file")
	fmt.Fprintln(w, "  -schema")
	fmt.Fprintln(w, "        Print the built-in task file JSON Schema")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Board keys: n new, e edit, d delete, </> move, / search, t theme, s save, ? help, q quit")
}
