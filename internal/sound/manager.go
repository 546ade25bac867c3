// Package sound manages audio playback sessions. Each session owns one
// goroutine playing through a platform command-line player; looping
// sessions repeat with a configured pause until stopped.
package sound

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/rs/xid"
	"github.com/rs/zerolog"

	"github.com/notexe/reminderd/internal/logger"
)

// Session describes one playback session.
type Session struct {
	ID       string
	Source   string
	Loop     bool
	Interval time.Duration
}

type session struct {
	Session
	player player
	cancel context.CancelFunc
	done   chan struct{}
}

// Manager owns zero or more concurrently playing sessions, each
// independently stoppable.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*session
	players  []player
	clk      clock.Clock
	dataDir  string
	log      zerolog.Logger
}

// NewManager discovers the platform player backends and returns a manager
// that materializes the bundled default asset under dataDir when needed.
func NewManager(dataDir string) *Manager {
	return newManager(dataDir, clock.New(), detectPlayers())
}

func newManager(dataDir string, clk clock.Clock, players []player) *Manager {
	return &Manager{
		sessions: make(map[string]*session),
		players:  players,
		clk:      clk,
		dataDir:  dataDir,
		log:      logger.New("sound"),
	}
}

// Create validates the source against the available player backends and
// starts playback, returning the session ID. An empty source binds to the
// bundled default asset. Validation failures are reported before any
// playback starts: ErrNoBackend when no player is installed at all,
// ErrUnsupportedSource when none of the installed players understands the
// file.
func (m *Manager) Create(source string, loop bool, interval time.Duration) (string, error) {
	if len(m.players) == 0 {
		return "", ErrNoBackend
	}

	if source == "" {
		path, err := materializeDefaultAsset(m.dataDir)
		if err != nil {
			return "", err
		}
		source = path
	} else if _, err := os.Stat(source); err != nil {
		return "", fmt.Errorf("audio source not readable: %w", err)
	}

	var chosen player
	for _, p := range m.players {
		if p.Supports(source) {
			chosen = p
			break
		}
	}
	if chosen == nil {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedSource, source)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &session{
		Session: Session{
			ID:       xid.New().String(),
			Source:   source,
			Loop:     loop,
			Interval: interval,
		},
		player: chosen,
		cancel: cancel,
		done:   make(chan struct{}),
	}

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	go m.run(ctx, s)

	m.log.Debug().
		Str("session", s.ID).
		Str("player", chosen.Name()).
		Bool("loop", loop).
		Msg("Sound session started")

	return s.ID, nil
}

// Stop signals the session to end. For a looping session the loop
// terminates within the iteration already in flight; the playback process
// is killed, which releases the platform handle. Unknown IDs are no-ops.
func (m *Manager) Stop(id string) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	m.mu.Unlock()
	if !ok {
		return
	}

	s.cancel()
	<-s.done
}

// StopAll stops every active session.
func (m *Manager) StopAll() {
	m.mu.Lock()
	active := make([]*session, 0, len(m.sessions))
	for _, s := range m.sessions {
		active = append(active, s)
	}
	m.mu.Unlock()

	for _, s := range active {
		s.cancel()
		<-s.done
	}
}

// Active returns the IDs of sessions still playing.
func (m *Manager) Active() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	return ids
}

// Done returns a channel closed when the session ends, either by Stop or
// by a non-looping playback finishing naturally. For unknown IDs the
// returned channel is already closed.
func (m *Manager) Done(id string) <-chan struct{} {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[id]; ok {
		return s.done
	}
	closed := make(chan struct{})
	close(closed)
	return closed
}

func (m *Manager) run(ctx context.Context, s *session) {
	defer close(s.done)
	defer m.release(s.ID)

	for {
		if err := s.player.Play(ctx, s.Source); err != nil {
			if ctx.Err() != nil {
				return
			}
			m.log.Warn().Err(err).Str("session", s.ID).Msg("Playback iteration failed")
		}

		if !s.Loop {
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-m.clk.After(s.Interval):
		}
	}
}

func (m *Manager) release(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}
