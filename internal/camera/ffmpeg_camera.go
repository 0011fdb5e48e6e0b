// Package camera implements ports.Camera by grabbing single frames from a
// video4linux device with ffmpeg.
package camera

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"tutorlens/internal/domain"
	"tutorlens/internal/ports"
)

// Config selects the capture command and devices.
type Config struct {
	Command     string
	InputFormat string
	BackDevice  string
	FrontDevice string
}

// FFMPEGCamera creates exclusive camera sessions.
type FFMPEGCamera struct {
	cfg Config

	mu       sync.Mutex
	acquired bool
}

func NewFFMPEGCamera(cfg Config) *FFMPEGCamera {
	if cfg.Command == "" {
		cfg.Command = "ffmpeg"
	}
	if cfg.InputFormat == "" {
		cfg.InputFormat = "v4l2"
	}
	if cfg.BackDevice == "" {
		cfg.BackDevice = "/dev/video0"
	}
	return &FFMPEGCamera{cfg: cfg}
}

// Acquire takes exclusive ownership of the camera. A second acquire while
// a session is open fails until the first session is released.
func (c *FFMPEGCamera) Acquire(ctx context.Context) (ports.CameraSession, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.acquired {
		return nil, errors.New("camera already in use")
	}
	c.acquired = true
	return &cameraSession{owner: c}, nil
}

func (c *FFMPEGCamera) release() {
	c.mu.Lock()
	c.acquired = false
	c.mu.Unlock()
}

type cameraSession struct {
	owner *FFMPEGCamera

	releaseOnce sync.Once
}

// TakePhoto grabs one frame and writes it to a temporary JPEG file.
func (s *cameraSession) TakePhoto(ctx context.Context, opts ports.CaptureOptions) (string, error) {
	cfg := s.owner.cfg

	device := cfg.BackDevice
	if opts.Position == domain.DeviceFront && cfg.FrontDevice != "" {
		device = cfg.FrontDevice
	}

	outPath := filepath.Join(os.TempDir(), fmt.Sprintf("tutorlens-photo-%d.jpg", time.Now().UnixNano()))
	args := []string{
		"-nostdin",
		"-hide_banner",
		"-loglevel", "warning",
		"-f", cfg.InputFormat,
		"-i", device,
		"-frames:v", "1",
	}
	if opts.Quality == "high" {
		args = append(args, "-q:v", "2")
	}
	args = append(args, "-y", outPath)

	cmd := exec.CommandContext(ctx, cfg.Command, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		os.Remove(outPath)
		detail := bytes.TrimSpace(stderr.Bytes())
		if len(detail) > 0 {
			return "", fmt.Errorf("frame grab failed: %w: %s", err, detail)
		}
		return "", fmt.Errorf("frame grab failed: %w", err)
	}

	info, err := os.Stat(outPath)
	if err != nil || info.Size() == 0 {
		os.Remove(outPath)
		return "", errors.New("frame grab produced no image")
	}
	return outPath, nil
}

// Release returns the device. Mandatory on every exit path; releasing
// twice is harmless.
func (s *cameraSession) Release() error {
	s.releaseOnce.Do(s.owner.release)
	return nil
}
