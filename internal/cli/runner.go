package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/Aarondoran/TerminalTasks/internal/config"
	"github.com/Aarondoran/TerminalTasks/internal/export"
	"github.com/Aarondoran/TerminalTasks/internal/logging"
	"github.com/Aarondoran/TerminalTasks/internal/model"
	"github.com/Aarondoran/TerminalTasks/internal/store"
	"github.com/Aarondoran/TerminalTasks/internal/store/jsonstore"
	"github.com/Aarondoran/TerminalTasks/internal/store/memstore"
	"github.com/Aarondoran/TerminalTasks/internal/store/sqlitestore"
	"github.com/Aarondoran/TerminalTasks/internal/ui"
)

// Version is set via ldflags at build time.
var Version = "dev"

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

// Options carry the resolved config and the process's streams.
type Options struct {
	Config *config.Config
	Stdout io.Writer
	Stderr io.Writer
	Logger *log.Logger

	// Backend replaces the configured storage when set.
	Backend store.Backend
	// Now is the clock used for task dates. Defaults to time.Now.
	Now func() time.Time
	// Browse runs the interactive list. Defaults to the Bubble Tea program.
	Browse func(ctx context.Context, s *store.Store, opt Options) error
}

func (o *Options) setDefaults() {
	if o.Config == nil {
		o.Config = config.Defaults()
	}
	if o.Stdout == nil {
		o.Stdout = os.Stdout
	}
	if o.Stderr == nil {
		o.Stderr = os.Stderr
	}
	if o.Logger == nil {
		o.Logger = logging.Discard()
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Browse == nil {
		o.Browse = runBrowser
	}
}

// Run dispatches subcommands and returns an exit code (0 ok, 1 error, 2 usage).
// Reported conditions such as an invalid index exit 0.
func Run(ctx context.Context, args []string, opt Options) int {
	opt.setDefaults()
	if len(args) == 0 {
		PrintHelp(opt.Stderr)
		return exitUsage
	}
	cmd, a := args[0], args[1:]

	switch cmd {
	case "help", "-h", "--help":
		PrintHelp(opt.Stdout)
		return exitOK

	case "version", "--version":
		fmt.Fprintf(opt.Stdout, "todo %s\n", Version)
		return exitOK

	case "add":
		title := strings.Join(a, " ")
		if strings.TrimSpace(title) == "" {
			ui.Fail(opt.Stderr, "usage: todo add <task...>")
			return exitUsage
		}
		return doAdd(ctx, title, opt)

	case "view", "ls":
		if len(a) != 0 {
			ui.Fail(opt.Stderr, "usage: todo view")
			return exitUsage
		}
		return doView(ctx, opt)

	case "done":
		if len(a) != 1 {
			ui.Fail(opt.Stderr, "usage: todo done <index>")
			return exitUsage
		}
		n, err := strconv.Atoi(strings.TrimSpace(a[0]))
		if err != nil {
			fmt.Fprintln(opt.Stdout, "Provide a valid task index")
			return exitOK
		}
		return doMarkDone(ctx, n-1, opt)

	case "clear":
		if len(a) != 0 {
			ui.Fail(opt.Stderr, "usage: todo clear")
			return exitUsage
		}
		return doClear(ctx, opt)

	case "browse":
		return doBrowse(ctx, opt)

	case "export":
		if len(a) != 1 {
			ui.Fail(opt.Stderr, "usage: todo export <file.pdf>")
			return exitUsage
		}
		return doExport(ctx, a[0], opt)
	}

	ui.Fail(opt.Stderr, "unknown subcommand: "+cmd)
	fmt.Fprintln(opt.Stderr)
	PrintHelp(opt.Stderr)
	return exitUsage
}

func PrintHelp(w io.Writer) {
	fmt.Fprint(w, `todo - a tiny task list for the terminal

Usage:
  todo [flags] <subcommand> [args]

Subcommands:
  add <task...>      Add a task (can be multiple words)
  view               List tasks
  done <index>       Mark the task at 1-based index as done
  clear              Remove every task
  browse             Interactive list (space marks done, a adds, q saves and quits)
  export <file.pdf>  Write the list to a PDF
  version            Print the version

Flags:
  -config <path>     TOML config file
  -file <path>       Storage location (default todos.json)
  -backend <name>    json or sqlite
  -theme <name>      classic, neon or mono
  -color <mode>      auto, always or never
  -log-level <lvl>   debug, info, warn or error
  -log-format <fmt>  text, json or logfmt
  -panel             Frame listings with a progress header
  -dry-run           Work on an in-memory copy; nothing is saved

Examples:
  todo add "Buy milk"
  todo view
  todo done 2
  todo clear
`)
}

// openBackend picks storage from config.
func openBackend(cfg *config.Config) store.Backend {
	switch cfg.Backend {
	case config.BackendSQLite:
		return sqlitestore.New(cfg.File)
	default:
		return jsonstore.New(cfg.File)
	}
}

// openStore builds the store and loads it once for this invocation.
func openStore(ctx context.Context, opt Options) (*store.Store, error) {
	backend := opt.Backend
	if backend == nil {
		backend = openBackend(opt.Config)
	}
	if opt.Config.DryRun {
		tasks, err := store.New(backend).Load(ctx)
		if err != nil {
			return nil, err
		}
		opt.Logger.Info("dry run: changes will not be saved", "location", backend.Location())
		backend = memstore.Seed(tasks)
	}
	s := store.New(backend, store.WithClock(opt.Now), store.WithLogger(opt.Logger))
	if _, err := s.Load(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// storageFailure reports a fatal error and returns its exit code.
func storageFailure(opt Options, op string, err error) int {
	opt.Logger.Error(op+" failed", "err", err)
	ui.Fail(opt.Stderr, op+": "+err.Error())
	switch {
	case errors.Is(err, store.ErrStorageRead):
		ui.Hint(opt.Stderr, "The task file is unreadable; it was left untouched.")
	case errors.Is(err, store.ErrStorageWrite):
		ui.Hint(opt.Stderr, "Nothing was saved.")
	}
	return exitError
}

// -------------- subcommand impls ----------------

func doAdd(ctx context.Context, title string, opt Options) int {
	s, err := openStore(ctx, opt)
	if err != nil {
		return storageFailure(opt, "load", err)
	}
	task, err := s.AddTask(ctx, title)
	if err != nil {
		if errors.Is(err, model.ErrEmptyDescription) {
			ui.Fail(opt.Stderr, "add: empty task")
			return exitUsage
		}
		return storageFailure(opt, "save", err)
	}
	fmt.Fprintf(opt.Stdout, "%s: Task added: %s\n", task.Date, task.Description)
	return exitOK
}

func doView(ctx context.Context, opt Options) int {
	s, err := openStore(ctx, opt)
	if err != nil {
		return storageFailure(opt, "load", err)
	}
	if opt.Config.Panel {
		ui.Panel(opt.Stdout, panelLines(s, ui.TaskLine))
		return exitOK
	}
	printEntries(opt.Stdout, s.List(), ui.TaskLine)
	return exitOK
}

func doMarkDone(ctx context.Context, idx int, opt Options) int {
	s, err := openStore(ctx, opt)
	if err != nil {
		return storageFailure(opt, "load", err)
	}
	ok, err := s.MarkDone(ctx, idx)
	if err != nil {
		return storageFailure(opt, "save", err)
	}
	if !ok {
		fmt.Fprintln(opt.Stdout, "Invalid task index")
		return exitOK
	}
	fmt.Fprintf(opt.Stdout, "Task %d marked as done\n", idx+1)
	if opt.Config.Panel {
		ui.Panel(opt.Stdout, panelLines(s, ui.DoneLine))
		return exitOK
	}
	printEntries(opt.Stdout, s.ListDone(), ui.DoneLine)
	return exitOK
}

func doClear(ctx context.Context, opt Options) int {
	s, err := openStore(ctx, opt)
	if err != nil {
		return storageFailure(opt, "load", err)
	}
	if err := s.ClearAll(ctx); err != nil {
		return storageFailure(opt, "save", err)
	}
	ui.OK(opt.Stdout, "All tasks cleared 🧹")
	return exitOK
}

func doBrowse(ctx context.Context, opt Options) int {
	s, err := openStore(ctx, opt)
	if err != nil {
		return storageFailure(opt, "load", err)
	}
	if err := opt.Browse(ctx, s, opt); err != nil {
		if errors.Is(err, store.ErrStorageWrite) {
			return storageFailure(opt, "save", err)
		}
		opt.Logger.Error("browse failed", "err", err)
		ui.Fail(opt.Stderr, "browse: "+err.Error())
		return exitError
	}
	return exitOK
}

func doExport(ctx context.Context, path string, opt Options) int {
	if sameFile(path, storageLocation(opt)) {
		ui.Fail(opt.Stderr, "export: refusing to overwrite the task file "+path)
		return exitUsage
	}
	s, err := openStore(ctx, opt)
	if err != nil {
		return storageFailure(opt, "load", err)
	}
	if err := writePDF(path, s.Tasks(), opt.Now()); err != nil {
		opt.Logger.Error("export failed", "err", err)
		ui.Fail(opt.Stderr, "export: "+err.Error())
		return exitError
	}
	ui.OK(opt.Stdout, fmt.Sprintf("Exported %d tasks to %s", s.Len(), path))
	return exitOK
}

// storageLocation is the file backing the task list, or "" when the
// backend is not file based.
func storageLocation(opt Options) string {
	if opt.Backend == nil {
		return opt.Config.File
	}
	if _, ok := opt.Backend.(*memstore.Store); ok {
		return ""
	}
	return opt.Backend.Location()
}

func sameFile(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return a == b
	}
	if absA == absB {
		return true
	}
	infoA, errA := os.Stat(absA)
	infoB, errB := os.Stat(absB)
	return errA == nil && errB == nil && os.SameFile(infoA, infoB)
}

// writePDF renders into a temp file next to path and renames it into
// place, so a failed export leaves any existing file intact.
func writePDF(path string, tasks []model.Task, generated time.Time) error {
	f, err := os.CreateTemp(filepath.Dir(path), ".export-*.pdf")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	tmp := f.Name()
	defer os.Remove(tmp)

	if err := export.PDF(f, tasks, generated); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close temp: %w", err)
	}
	if err := os.Chmod(tmp, 0o644); err != nil {
		return fmt.Errorf("chmod: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}

// -------------- rendering helpers --------------

type lineFunc func(index int, t model.Task) string

func printEntries(w io.Writer, entries []store.Entry, line lineFunc) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No tasks to show 🥳")
		return
	}
	for _, e := range entries {
		fmt.Fprintln(w, line(e.Index, e.Task))
	}
}

func panelLines(s *store.Store, line lineFunc) []string {
	d, p := s.Stats()
	lines := []string{
		ui.Header(d, p),
		ui.Current().Muted.Render(ui.ProgressBar(d, d+p, 28)),
		"",
	}
	entries := s.List()
	if len(entries) == 0 {
		lines = append(lines, ui.Current().Muted.Render("No tasks to show 🥳"))
	}
	for _, e := range entries {
		lines = append(lines, line(e.Index, e.Task))
	}
	lines = append(lines, "", ui.Current().Muted.Render("Tip: add with `todo add \"Buy milk\"`"))
	return lines
}
