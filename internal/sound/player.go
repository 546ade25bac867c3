package sound

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

var (
	// ErrNoBackend means no platform audio player is installed.
	ErrNoBackend = errors.New("no audio player backend available")
	// ErrUnsupportedSource means no installed player understands the file.
	ErrUnsupportedSource = errors.New("unsupported audio source")
)

// player is one way of playing an audio file on this host.
type player interface {
	Name() string
	Supports(source string) bool
	Play(ctx context.Context, source string) error
}

// execPlayer shells out to a platform command-line player. Cancelling the
// context kills the player process, which releases the playback handle.
type execPlayer struct {
	bin  string
	args func(source string) []string
	exts []string
}

func (p execPlayer) Name() string { return p.bin }

func (p execPlayer) Supports(source string) bool {
	ext := strings.ToLower(filepath.Ext(source))
	for _, e := range p.exts {
		if ext == e {
			return true
		}
	}
	return false
}

func (p execPlayer) Play(ctx context.Context, source string) error {
	cmd := exec.CommandContext(ctx, p.bin, p.args(source)...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return fmt.Errorf("%s failed: %w", p.bin, err)
		}
		return fmt.Errorf("%s failed: %s", p.bin, msg)
	}
	return nil
}

// detectPlayers returns the installed players for this host in priority
// order.
func detectPlayers() []player {
	var candidates []execPlayer

	switch runtime.GOOS {
	case "darwin":
		candidates = []execPlayer{
			{bin: "afplay", args: passthrough, exts: []string{".wav", ".aiff", ".mp3", ".m4a", ".aac"}},
		}
	case "windows":
		candidates = []execPlayer{
			{bin: "powershell", args: func(source string) []string {
				return []string{"-NoProfile", "-Command",
					fmt.Sprintf("(New-Object Media.SoundPlayer %q).PlaySync()", source)}
			}, exts: []string{".wav"}},
		}
	default:
		candidates = []execPlayer{
			{bin: "paplay", args: passthrough, exts: []string{".wav", ".ogg", ".oga", ".flac"}},
			{bin: "aplay", args: func(source string) []string { return []string{"-q", source} }, exts: []string{".wav"}},
			{bin: "ffplay", args: func(source string) []string {
				return []string{"-nodisp", "-autoexit", "-loglevel", "quiet", source}
			}, exts: []string{".wav", ".ogg", ".mp3", ".flac", ".m4a", ".aac"}},
			{bin: "mpv", args: func(source string) []string {
				return []string{"--no-video", "--really-quiet", source}
			}, exts: []string{".wav", ".ogg", ".mp3", ".flac", ".m4a", ".aac"}},
		}
	}

	var found []player
	for _, c := range candidates {
		if _, err := exec.LookPath(c.bin); err == nil {
			found = append(found, c)
		}
	}
	return found
}

func passthrough(source string) []string {
	return []string{source}
}
