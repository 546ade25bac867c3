// Package scheduler runs the background watcher that turns stored
// reminders into delivered ones.
package scheduler

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog"

	"github.com/notexe/reminderd/internal/history"
	"github.com/notexe/reminderd/internal/logger"
	"github.com/notexe/reminderd/internal/notify"
	"github.com/notexe/reminderd/internal/reminder"
)

// DefaultPollInterval is the fixed pause between poll cycles.
const DefaultPollInterval = time.Second

// Dispatcher shows a visual alert. It must never return a fatal error;
// the outcome says whether any backend accepted the alert.
type Dispatcher interface {
	Show(ctx context.Context, title, message string) notify.Outcome
}

// SoundPlayer starts audio playback sessions. The watcher only ever plays
// once, non-looping.
type SoundPlayer interface {
	Create(source string, loop bool, interval time.Duration) (string, error)
}

// Archiver records the final state of a reminder that left the store.
type Archiver interface {
	Record(r reminder.Reminder, state string) error
}

// Options configures a Watcher. Zero values fall back to defaults.
type Options struct {
	Interval     time.Duration
	SoundEnabled bool
	SoundSource  string // empty means the bundled default asset
	Clock        clock.Clock
}

// Watcher polls the store on a fixed interval, delivers due reminders and
// removes them. It owns one goroutine between Start and Stop; both calls
// are idempotent.
type Watcher struct {
	store    *reminder.Store
	dispatch Dispatcher
	sounds   SoundPlayer
	archive  Archiver // may be nil

	interval     time.Duration
	soundEnabled bool
	soundSource  string
	clk          clock.Clock
	log          zerolog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates a watcher over the given store and delivery collaborators.
// archive may be nil to disable history recording.
func New(store *reminder.Store, dispatch Dispatcher, sounds SoundPlayer, archive Archiver, opts Options) *Watcher {
	if opts.Interval <= 0 {
		opts.Interval = DefaultPollInterval
	}
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}

	return &Watcher{
		store:        store,
		dispatch:     dispatch,
		sounds:       sounds,
		archive:      archive,
		interval:     opts.Interval,
		soundEnabled: opts.SoundEnabled,
		soundSource:  opts.SoundSource,
		clk:          opts.Clock,
		log:          logger.New("watcher"),
	}
}

// Start launches the background poll loop. Starting a running watcher is
// a no-op.
func (w *Watcher) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	w.done = make(chan struct{})

	w.log.Info().Dur("interval", w.interval).Msg("Watcher started")
	go w.run(ctx, w.done)
}

// Stop ends the poll loop and waits for it to exit; observed within at
// most one poll interval. Stopping a stopped watcher is a no-op.
func (w *Watcher) Stop() {
	w.mu.Lock()
	cancel := w.cancel
	done := w.done
	w.cancel = nil
	w.done = nil
	w.mu.Unlock()

	if cancel == nil {
		return
	}

	cancel()
	<-done
	w.log.Info().Msg("Watcher stopped")
}

// Running reports whether the poll loop is active.
func (w *Watcher) Running() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.cancel != nil
}

func (w *Watcher) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	// First cycle immediately, so past-due reminders added before the
	// watcher came up are delivered without waiting out a full interval.
	w.tick(ctx)

	ticker := w.clk.Ticker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.tick(ctx)
		}
	}
}

// tick runs one poll cycle: snapshot the store, deliver everything due,
// remove delivered entries. Dispatch failures never halt the cycle.
func (w *Watcher) tick(ctx context.Context) {
	all, err := w.store.List()
	if err != nil {
		w.log.Error().Err(err).Msg("Failed to read store")
		return
	}

	now := w.clk.Now().UTC()

	due := make([]reminder.Reminder, 0, len(all))
	for _, r := range all {
		if r.Due(now) {
			due = append(due, r)
		}
	}
	if len(due) == 0 {
		return
	}

	// Deterministic delivery order; stable sort keeps insertion order on
	// equal due times.
	sort.SliceStable(due, func(i, j int) bool {
		return due[i].DueAt.Before(due[j].DueAt)
	})

	for _, r := range due {
		if ctx.Err() != nil {
			return
		}
		w.deliver(ctx, r)
	}
}

func (w *Watcher) deliver(ctx context.Context, r reminder.Reminder) {
	outcome := w.dispatch.Show(ctx, r.Title, r.Message)
	if outcome.Delivered {
		w.log.Info().
			Str("id", r.ID).
			Str("title", r.Title).
			Str("backend", outcome.Backend).
			Msg("Reminder delivered")
	} else {
		w.log.Warn().
			Err(outcome.Err).
			Str("id", r.ID).
			Msg("Notification undeliverable, proceeding with removal")
	}

	if w.soundEnabled {
		// One-shot playback; a missing chime must never keep a reminder
		// stuck, so errors are logged and delivery proceeds.
		if _, err := w.sounds.Create(w.soundSource, false, 0); err != nil {
			w.log.Warn().Err(err).Str("id", r.ID).Msg("Sound alert failed")
		}
	}

	if _, err := w.store.Remove(r.ID); err != nil {
		w.log.Error().Err(err).Str("id", r.ID).Msg("Failed to remove delivered reminder")
		return
	}

	if w.archive != nil {
		if err := w.archive.Record(r, history.StateDelivered); err != nil {
			w.log.Warn().Err(err).Str("id", r.ID).Msg("Failed to archive delivery")
		}
	}
}
