package sound

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
)

type fakePlayer struct {
	mu       sync.Mutex
	plays    int
	duration time.Duration
	exts     []string
}

func (p *fakePlayer) Name() string { return "fake" }

func (p *fakePlayer) Supports(source string) bool {
	ext := strings.ToLower(filepath.Ext(source))
	for _, e := range p.exts {
		if ext == e {
			return true
		}
	}
	return false
}

func (p *fakePlayer) Play(ctx context.Context, _ string) error {
	p.mu.Lock()
	p.plays++
	p.mu.Unlock()

	if p.duration <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(p.duration):
		return nil
	}
}

func (p *fakePlayer) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.plays
}

func wavSource(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "alert.wav")
	if err := os.WriteFile(path, []byte("RIFF"), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}
	return path
}

func TestManagerCreate(t *testing.T) {
	t.Run("non-looping session completes naturally", func(t *testing.T) {
		p := &fakePlayer{exts: []string{".wav"}}
		m := newManager(t.TempDir(), clock.New(), []player{p})

		id, err := m.Create(wavSource(t), false, 0)
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}

		select {
		case <-m.Done(id):
		case <-time.After(time.Second):
			t.Fatal("session did not finish")
		}

		if p.count() != 1 {
			t.Errorf("expected exactly one playback, got %d", p.count())
		}
		if len(m.Active()) != 0 {
			t.Errorf("finished session must be released, active: %v", m.Active())
		}
	})

	t.Run("empty source binds to the bundled default asset", func(t *testing.T) {
		dataDir := t.TempDir()
		p := &fakePlayer{exts: []string{".wav"}}
		m := newManager(dataDir, clock.New(), []player{p})

		id, err := m.Create("", false, 0)
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		<-m.Done(id)

		asset := filepath.Join(dataDir, defaultAssetName)
		info, err := os.Stat(asset)
		if err != nil {
			t.Fatalf("default asset not materialized: %v", err)
		}
		if info.Size() == 0 {
			t.Error("default asset is empty")
		}
	})

	t.Run("no backend available", func(t *testing.T) {
		m := newManager(t.TempDir(), clock.New(), nil)

		if _, err := m.Create(wavSource(t), false, 0); err != ErrNoBackend {
			t.Errorf("expected ErrNoBackend, got %v", err)
		}
	})

	t.Run("unsupported source format", func(t *testing.T) {
		p := &fakePlayer{exts: []string{".wav"}}
		m := newManager(t.TempDir(), clock.New(), []player{p})

		src := filepath.Join(t.TempDir(), "song.xyz")
		if err := os.WriteFile(src, []byte("data"), 0o644); err != nil {
			t.Fatalf("write source: %v", err)
		}

		_, err := m.Create(src, false, 0)
		if err == nil {
			t.Fatal("expected error for unsupported format")
		}
		if !strings.Contains(err.Error(), "unsupported") {
			t.Errorf("expected unsupported-source error, got %v", err)
		}
		if p.count() != 0 {
			t.Error("validation failure must not start playback")
		}
	})

	t.Run("missing custom source fails", func(t *testing.T) {
		p := &fakePlayer{exts: []string{".wav"}}
		m := newManager(t.TempDir(), clock.New(), []player{p})

		if _, err := m.Create(filepath.Join(t.TempDir(), "gone.wav"), false, 0); err == nil {
			t.Fatal("expected error for missing source file")
		}
	})
}

func TestManagerLoopingStop(t *testing.T) {
	p := &fakePlayer{exts: []string{".wav"}, duration: 10 * time.Millisecond}
	m := newManager(t.TempDir(), clock.New(), []player{p})

	id, err := m.Create(wavSource(t), true, 20*time.Millisecond)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// Let a couple of loop iterations happen.
	time.Sleep(80 * time.Millisecond)
	if p.count() < 2 {
		t.Fatalf("expected looping playback, got %d iterations", p.count())
	}

	m.Stop(id)
	after := p.count()

	// No further iterations may start once Stop returned.
	time.Sleep(100 * time.Millisecond)
	if p.count() != after {
		t.Errorf("playback continued after Stop: %d -> %d", after, p.count())
	}
	if len(m.Active()) != 0 {
		t.Errorf("stopped session must be released, active: %v", m.Active())
	}
}

func TestManagerStop(t *testing.T) {
	t.Run("unknown id is a no-op", func(t *testing.T) {
		m := newManager(t.TempDir(), clock.New(), []player{&fakePlayer{exts: []string{".wav"}}})
		m.Stop("does-not-exist") // must not panic or block
	})

	t.Run("stop all ends every session", func(t *testing.T) {
		p := &fakePlayer{exts: []string{".wav"}, duration: 5 * time.Millisecond}
		m := newManager(t.TempDir(), clock.New(), []player{p})

		src := wavSource(t)
		for i := 0; i < 3; i++ {
			if _, err := m.Create(src, true, 10*time.Millisecond); err != nil {
				t.Fatalf("Create failed: %v", err)
			}
		}
		if len(m.Active()) != 3 {
			t.Fatalf("expected 3 active sessions, got %d", len(m.Active()))
		}

		m.StopAll()
		if len(m.Active()) != 0 {
			t.Errorf("expected no active sessions after StopAll, got %v", m.Active())
		}
	})
}

func TestMaterializeDefaultAssetIdempotent(t *testing.T) {
	dir := t.TempDir()

	first, err := materializeDefaultAsset(dir)
	if err != nil {
		t.Fatalf("materialize failed: %v", err)
	}
	info1, _ := os.Stat(first)

	second, err := materializeDefaultAsset(dir)
	if err != nil {
		t.Fatalf("second materialize failed: %v", err)
	}
	if first != second {
		t.Errorf("expected stable asset path, got %s then %s", first, second)
	}
	info2, _ := os.Stat(second)
	if info1.Size() != info2.Size() {
		t.Error("asset rewritten with different content")
	}
}
