// Package player launches the external video player on a stream URL.
package player

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"go.uber.org/zap"

	"github.com/AsimMerchant/mpv-torbox-setup/internal/logging"
)

// streamArgs tune mpv for remote playback: large demuxer buffers and
// position persistence, so a restarted stream resumes where it stopped.
func streamArgs() []string {
	return []string{
		"--save-position-on-quit",
		"--resume-playback",
		"--demuxer-max-bytes=1000M",
		"--demuxer-readahead-secs=60",
		"--cache=yes",
		"--stream-buffer-size=16M",
	}
}

// MPV starts mpv detached from this process.
type MPV struct {
	path   string
	settle time.Duration
}

// NewMPV creates a launcher. An empty path means "mpv" from PATH.
func NewMPV(path string) *MPV {
	if path == "" {
		path = "mpv"
	}
	return &MPV{path: path, settle: 2 * time.Second}
}

// Play starts mpv on url and returns once it has survived startup. The
// player keeps running after this process exits. An mpv that dies within the
// settle window counts as a failed launch.
func (m *MPV) Play(ctx context.Context, url string) error {
	bin, err := exec.LookPath(m.path)
	if err != nil {
		return fmt.Errorf("mpv not found: %w", err)
	}

	cmd := exec.Command(bin, append(streamArgs(), url)...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start mpv: %w", err)
	}
	logging.Debug("mpv started", zap.Int("pid", cmd.Process.Pid))

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("mpv exited during startup: %w", err)
		}
		return errors.New("mpv exited during startup")
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(m.settle):
		logging.Info("playback handed to mpv", zap.Int("pid", cmd.Process.Pid))
		return nil
	}
}
