package audio

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sync"

	"tutorlens/internal/ports"
)

// PlayerConfig selects the playback command.
type PlayerConfig struct {
	Command string
}

// FFPlayPlayer plays a remote or local audio URL through ffplay.
type FFPlayPlayer struct {
	cfg PlayerConfig
}

func NewFFPlayPlayer(cfg PlayerConfig) *FFPlayPlayer {
	if cfg.Command == "" {
		cfg.Command = "ffplay"
	}
	return &FFPlayPlayer{cfg: cfg}
}

func (p *FFPlayPlayer) Play(ctx context.Context, url string) (ports.PlaybackSession, error) {
	args := []string{
		"-nodisp",
		"-autoexit",
		"-loglevel", "quiet",
		url,
	}

	cmd := exec.CommandContext(ctx, p.cfg.Command, args...)
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start playback: %w", err)
	}

	session := &playbackSession{
		process: cmd.Process,
		done:    make(chan struct{}),
	}

	go func() {
		session.err = normalizeExit(cmd.Wait())
		close(session.done)
	}()

	return session, nil
}

type playbackSession struct {
	process *os.Process
	done    chan struct{}
	err     error

	stopOnce sync.Once
}

// Done is closed when playback ends for any reason.
func (s *playbackSession) Done() <-chan struct{} {
	return s.done
}

// Err reports the terminal playback failure, if any. Valid after Done.
func (s *playbackSession) Err() error {
	select {
	case <-s.done:
		return s.err
	default:
		return errors.New("playback still active")
	}
}

// Stop interrupts playback. Safe to call more than once.
func (s *playbackSession) Stop() error {
	s.stopOnce.Do(func() {
		if s.process != nil {
			_ = s.process.Signal(os.Interrupt)
		}
	})
	return nil
}
