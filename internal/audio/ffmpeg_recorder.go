// Package audio implements the microphone and audio-output ports with
// ffmpeg and ffplay child processes.
package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"tutorlens/internal/ports"
)

// RecorderConfig selects the capture command and input device.
type RecorderConfig struct {
	Command     string
	InputFormat string
	InputDevice string
}

// FFMPEGRecorder records microphone audio to a temporary file.
type FFMPEGRecorder struct {
	cfg RecorderConfig
}

func NewFFMPEGRecorder(cfg RecorderConfig) *FFMPEGRecorder {
	if cfg.Command == "" {
		cfg.Command = "ffmpeg"
	}
	if cfg.InputFormat == "" {
		cfg.InputFormat = "pulse"
	}
	if cfg.InputDevice == "" {
		cfg.InputDevice = "default"
	}
	return &FFMPEGRecorder{cfg: cfg}
}

func (r *FFMPEGRecorder) Start(ctx context.Context, cfg ports.RecordConfig) (ports.RecordingSession, error) {
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = 16000
	}
	if cfg.Channels <= 0 {
		cfg.Channels = 1
	}
	if cfg.MaxDuration <= 0 {
		cfg.MaxDuration = 60
	}

	outPath := filepath.Join(os.TempDir(), fmt.Sprintf("tutorlens-rec-%d.wav", time.Now().UnixNano()))
	args := []string{
		"-nostdin",
		"-hide_banner",
		"-loglevel", "warning",
		"-f", r.cfg.InputFormat,
		"-i", r.cfg.InputDevice,
		"-ac", strconv.Itoa(cfg.Channels),
		"-ar", strconv.Itoa(cfg.SampleRate),
		"-t", strconv.Itoa(cfg.MaxDuration),
		"-y", outPath,
	}

	cmd := exec.CommandContext(ctx, r.cfg.Command, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start recorder: %w", err)
	}

	waitErr := make(chan error, 1)
	go func() {
		waitErr <- cmd.Wait()
		close(waitErr)
	}()

	// Catch immediate device failures before reporting an active session.
	select {
	case err := <-waitErr:
		os.Remove(outPath)
		if err != nil {
			return nil, fmt.Errorf("recorder exited before capture started: %w: %s", err, bytes.TrimSpace(stderr.Bytes()))
		}
		return nil, errors.New("recorder exited before capture started")
	case <-time.After(250 * time.Millisecond):
	}

	return &recordingSession{
		outPath: outPath,
		stderr:  &stderr,
		process: cmd.Process,
		waitErr: waitErr,
	}, nil
}

type recordingSession struct {
	outPath string
	stderr  *bytes.Buffer

	process *os.Process
	waitErr <-chan error

	stopOnce sync.Once
	stopErr  error
}

// Stop ends the capture and resolves exactly once with the recorded file.
func (s *recordingSession) Stop(ctx context.Context) (string, error) {
	s.stopOnce.Do(func() { s.stopErr = s.shutdown(ctx) })
	if s.stopErr != nil {
		return "", s.stopErr
	}
	return s.outPath, nil
}

// Abort ends the capture and discards the recorded file.
func (s *recordingSession) Abort() error {
	s.stopOnce.Do(func() { s.stopErr = s.shutdown(context.Background()) })
	os.Remove(s.outPath)
	return s.stopErr
}

func (s *recordingSession) shutdown(ctx context.Context) error {
	if s.process != nil {
		_ = s.process.Signal(os.Interrupt)
	}

	select {
	case err, ok := <-s.waitErr:
		if ok {
			if err := normalizeExit(err); err != nil {
				return s.withStderr(err)
			}
		}
	case <-time.After(1200 * time.Millisecond):
		if s.process != nil {
			_ = s.process.Kill()
		}
		if err, ok := <-s.waitErr; ok {
			if err := normalizeExit(err); err != nil {
				return s.withStderr(err)
			}
		}
	case <-ctx.Done():
		if s.process != nil {
			_ = s.process.Kill()
		}
		<-s.waitErr
		return ctx.Err()
	}

	info, err := os.Stat(s.outPath)
	if err != nil || info.Size() == 0 {
		return errors.New("recording produced no audio")
	}
	return nil
}

func (s *recordingSession) withStderr(err error) error {
	if s.stderr != nil && s.stderr.Len() > 0 {
		return fmt.Errorf("%w: %s", err, bytes.TrimSpace(s.stderr.Bytes()))
	}
	return err
}

// normalizeExit drops the non-zero exit ffmpeg reports after an interrupt.
func normalizeExit(err error) error {
	if err == nil {
		return nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return nil
	}
	return err
}
