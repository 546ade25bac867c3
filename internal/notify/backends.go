package notify

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"runtime"

	"github.com/gen2brain/beeep"
	"github.com/rs/zerolog"
)

// hostBackends returns the backend chain for the current platform. The
// beeep library covers the common desktop cases; a platform command is the
// second line, and the log sink guarantees the chain never comes up empty.
func hostBackends(appName string, log zerolog.Logger) []Backend {
	beeep.AppName = appName

	backends := []Backend{beeepBackend{}}
	switch runtime.GOOS {
	case "darwin":
		backends = append(backends, osascriptBackend{})
	case "linux":
		backends = append(backends, notifySendBackend{})
	}
	return append(backends, logBackend{log: log})
}

type beeepBackend struct{}

func (beeepBackend) Name() string { return "beeep" }

func (beeepBackend) Available() bool { return true }

func (beeepBackend) Show(_ context.Context, title, message string) error {
	if err := beeep.Notify(title, message, ""); err != nil {
		return fmt.Errorf("beeep notify failed: %w", err)
	}
	return nil
}

type osascriptBackend struct{}

func (osascriptBackend) Name() string { return "osascript" }

func (osascriptBackend) Available() bool {
	_, err := exec.LookPath("osascript")
	return err == nil
}

func (osascriptBackend) Show(ctx context.Context, title, message string) error {
	script := fmt.Sprintf("display notification %q with title %q", message, title)
	cmd := exec.CommandContext(ctx, "osascript", "-e", script)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("osascript failed: %s", stderr.String())
	}
	return nil
}

type notifySendBackend struct{}

func (notifySendBackend) Name() string { return "notify-send" }

func (notifySendBackend) Available() bool {
	_, err := exec.LookPath("notify-send")
	return err == nil
}

func (notifySendBackend) Show(ctx context.Context, title, message string) error {
	cmd := exec.CommandContext(ctx, "notify-send", "--", title, message)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("notify-send failed: %s", stderr.String())
	}
	return nil
}

// logBackend is the last resort for headless hosts: the reminder text goes
// to the log so delivery still completes and the reminder is not left
// pending forever.
type logBackend struct {
	log zerolog.Logger
}

func (logBackend) Name() string { return "log" }

func (logBackend) Available() bool { return true }

func (b logBackend) Show(_ context.Context, title, message string) error {
	b.log.Info().Str("title", title).Str("message", message).Msg("REMINDER")
	return nil
}
