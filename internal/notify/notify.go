// Package notify delivers visual alerts across host platforms. The
// scheduler only depends on the Dispatcher; concrete backends are chosen
// at startup by host detection and tried in priority order, so a missing
// system tool or a headless host degrades delivery instead of failing it.
package notify

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/notexe/reminderd/internal/logger"
)

// Backend is one concrete way of showing a notification on this host.
type Backend interface {
	Name() string
	Available() bool
	Show(ctx context.Context, title, message string) error
}

// Outcome reports how a delivery attempt went. Delivered is false only
// when every backend in the chain failed; even then the reminder must not
// stay stuck, so the caller treats this as a non-fatal condition.
type Outcome struct {
	Delivered bool
	Backend   string
	Err       error
}

// Dispatcher tries a prioritized chain of notification backends.
type Dispatcher struct {
	backends []Backend
	log      zerolog.Logger
}

// NewDispatcher builds the backend chain for the current host. The final
// entry is a log-only sink that always succeeds, so Show never reports a
// fatal error to its caller.
func NewDispatcher(appName string) *Dispatcher {
	log := logger.New("notify")
	return &Dispatcher{
		backends: hostBackends(appName, log),
		log:      log,
	}
}

func newDispatcher(backends []Backend, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{backends: backends, log: log}
}

// Show delivers a visual alert with the given title and message through
// the first backend that accepts it.
func (d *Dispatcher) Show(ctx context.Context, title, message string) Outcome {
	var lastErr error
	for _, b := range d.backends {
		if !b.Available() {
			continue
		}
		if err := b.Show(ctx, title, message); err != nil {
			d.log.Warn().Err(err).Str("backend", b.Name()).Msg("Notification backend failed, trying next")
			lastErr = err
			continue
		}
		return Outcome{Delivered: true, Backend: b.Name()}
	}

	return Outcome{Delivered: false, Err: lastErr}
}
