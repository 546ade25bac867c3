// Command reminderd is the reminder service CLI.
//
// It schedules, lists and removes reminders in a durable per-user store,
// and runs the foreground watcher that delivers them with a desktop
// notification and a sound alert.
//
// Usage:
//
//	reminderd add "Standup" "Daily sync" 2026-01-15T09:00:00Z
//	reminderd list
//	reminderd remove <id>... | reminderd remove --all
//	reminderd watch
//	reminderd history [--limit N]
//
// Environment:
//
//	REMINDERD_CONFIG    Path to config file (default: ~/.reminderd/config.yaml)
//	REMINDERD_DATA_DIR  Data directory (default: ~/.reminderd)
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/notexe/reminderd/internal/config"
	"github.com/notexe/reminderd/internal/history"
	"github.com/notexe/reminderd/internal/logger"
	"github.com/notexe/reminderd/internal/notify"
	"github.com/notexe/reminderd/internal/reminder"
	"github.com/notexe/reminderd/internal/scheduler"
	"github.com/notexe/reminderd/internal/sound"
	"github.com/notexe/reminderd/internal/ui"
)

func main() {
	if len(os.Args) < 2 {
		printHelp()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "--help", "-h", "help":
		printHelp()
		return
	}

	cfg, err := config.Load(os.Getenv("REMINDERD_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid config: %v\n", err)
		os.Exit(1)
	}
	logger.SetLevel(cfg.Logging.Level)

	// A reminder service with no persistence cannot honor its contract.
	if err := cfg.EnsureDataDir(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	store, err := reminder.NewStore(cfg.StorePath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open reminder store: %v\n", err)
		os.Exit(1)
	}

	formatter := ui.NewFormatter(true)

	var cmdErr error
	switch os.Args[1] {
	case "add":
		cmdErr = runAdd(store, formatter, os.Args[2:])
	case "list":
		cmdErr = runList(store, formatter)
	case "remove":
		cmdErr = runRemove(store, cfg, os.Args[2:])
	case "watch":
		cmdErr = runWatch(store, cfg)
	case "history":
		cmdErr = runHistory(cfg, formatter, os.Args[2:])
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printHelp()
		os.Exit(2)
	}

	if cmdErr != nil {
		fmt.Fprintln(os.Stderr, formatter.FormatError(cmdErr))
		os.Exit(1)
	}
}

func runAdd(store *reminder.Store, formatter *ui.Formatter, args []string) error {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	task := fs.String("task", "", "task ID to link this reminder to")
	fs.Parse(args)

	rest := fs.Args()
	if len(rest) != 3 {
		return fmt.Errorf("usage: reminderd add [--task ID] <title> <message> <due_at RFC3339>")
	}

	dueAt, err := time.Parse(time.RFC3339, rest[2])
	if err != nil {
		return fmt.Errorf("invalid due_at %q: %w (use RFC3339, e.g. 2026-01-15T09:00:00Z)", rest[2], err)
	}

	added, err := store.Add(reminder.Reminder{
		Title:        rest[0],
		Message:      rest[1],
		DueAt:        dueAt,
		LinkedTaskID: *task,
	})
	if err != nil {
		return err
	}

	fmt.Println(formatter.FormatAdded(added))
	return nil
}

func runList(store *reminder.Store, formatter *ui.Formatter) error {
	reminders, err := store.List()
	if err != nil {
		return err
	}
	fmt.Println(formatter.FormatReminders(reminders, time.Now().UTC()))
	return nil
}

func runRemove(store *reminder.Store, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("remove", flag.ExitOnError)
	all := fs.Bool("all", false, "remove every reminder")
	fs.Parse(args)

	var cancelled []reminder.Reminder
	snapshot, err := store.List()
	if err != nil {
		return err
	}

	if *all {
		cancelled = snapshot
		if err := store.RemoveAll(); err != nil {
			return err
		}
		fmt.Printf("Removed %d reminder(s).\n", len(cancelled))
	} else {
		ids := fs.Args()
		if len(ids) == 0 {
			return fmt.Errorf("usage: reminderd remove <id>... | reminderd remove --all")
		}
		want := make(map[string]bool, len(ids))
		for _, id := range ids {
			want[id] = true
		}
		for _, r := range snapshot {
			if want[r.ID] {
				cancelled = append(cancelled, r)
			}
		}
		removed, err := store.Remove(ids...)
		if err != nil {
			return err
		}
		// Unknown IDs are silently ignored: the watcher may have already
		// delivered them.
		fmt.Printf("Removed %d reminder(s).\n", removed)
	}

	archiveCancelled(cfg, cancelled)
	return nil
}

// archiveCancelled records removals in the history archive, best-effort.
func archiveCancelled(cfg *config.Config, cancelled []reminder.Reminder) {
	if !cfg.History.Enabled || len(cancelled) == 0 {
		return
	}

	log := logger.New("cli")
	archive, err := history.Open(cfg.HistoryPath())
	if err != nil {
		log.Warn().Err(err).Msg("Could not open history archive")
		return
	}
	defer archive.Close()

	for _, r := range cancelled {
		if err := archive.Record(r, history.StateCancelled); err != nil {
			log.Warn().Err(err).Str("id", r.ID).Msg("Could not archive cancellation")
		}
	}
}

func runWatch(store *reminder.Store, cfg *config.Config) error {
	dispatch := notify.NewDispatcher(cfg.Notify.AppName)
	sounds := sound.NewManager(cfg.DataDir)
	defer sounds.StopAll()

	var archive *history.Archive
	if cfg.History.Enabled {
		var err error
		archive, err = history.Open(cfg.HistoryPath())
		if err != nil {
			return fmt.Errorf("failed to open history archive: %w", err)
		}
		defer archive.Close()
	}

	opts := scheduler.Options{
		Interval:     time.Duration(cfg.Scheduler.PollInterval) * time.Second,
		SoundEnabled: cfg.Sound.Enabled,
		SoundSource:  cfg.Sound.Source,
	}

	var watcher *scheduler.Watcher
	if archive != nil {
		watcher = scheduler.New(store, dispatch, sounds, archive, opts)
	} else {
		watcher = scheduler.New(store, dispatch, sounds, nil, opts)
	}

	watcher.Start()
	defer watcher.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	return nil
}

func runHistory(cfg *config.Config, formatter *ui.Formatter, args []string) error {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	limit := fs.Int("limit", 20, "maximum entries to show (0 for all)")
	fs.Parse(args)

	if !cfg.History.Enabled {
		return fmt.Errorf("history is disabled in the configuration")
	}

	archive, err := history.Open(cfg.HistoryPath())
	if err != nil {
		return err
	}
	defer archive.Close()

	entries, err := archive.List(*limit)
	if err != nil {
		return err
	}

	fmt.Println(formatter.FormatHistory(entries))
	return nil
}

func printHelp() {
	fmt.Println(`reminderd - standalone reminder service

USAGE:
    reminderd add [--task ID] <title> <message> <due_at>   Schedule a reminder (due_at in RFC3339)
    reminderd list                                         List scheduled reminders
    reminderd remove <id>...                               Remove reminders by ID
    reminderd remove --all                                 Remove every reminder
    reminderd watch                                        Run the delivery watcher in the foreground
    reminderd history [--limit N]                          Show delivered/cancelled reminders
    reminderd --help                                       Show this help

ENVIRONMENT:
    REMINDERD_CONFIG     Config file path (default: ~/.reminderd/config.yaml)
    REMINDERD_DATA_DIR   Data directory (default: ~/.reminderd)

The watcher polls the store every second, shows a desktop notification for
each due reminder, plays the bundled chime (or a configured sound file) and
removes the reminder. The store file is shared with the mcp-reminder
bridge; both processes coordinate only through that file.`)
}
