package ports

import (
	"context"
	"fmt"

	"tutorlens/internal/domain"
)

// ResourceError reports a hardware acquisition or permission failure.
// It is surfaced locally and never touches the session.
type ResourceError struct {
	Resource string
	Err      error
}

func (e *ResourceError) Error() string {
	return fmt.Sprintf("%s unavailable: %v", e.Resource, e.Err)
}

func (e *ResourceError) Unwrap() error { return e.Err }

// CaptureOptions carries the local camera configuration for a single shot.
type CaptureOptions struct {
	Flash    domain.FlashMode
	Position domain.DevicePosition
	Quality  string
}

// CameraSession is an exclusively acquired camera device. Release is
// mandatory on every exit path.
type CameraSession interface {
	TakePhoto(ctx context.Context, opts CaptureOptions) (string, error)
	Release() error
}

// Camera acquires the camera device.
type Camera interface {
	Acquire(ctx context.Context) (CameraSession, error)
}

// Gallery selects an existing image from the user's library.
type Gallery interface {
	PickImage(ctx context.Context) (string, error)
}

// RecordConfig describes how the microphone should be captured.
type RecordConfig struct {
	SampleRate  int
	Channels    int
	MaxDuration int // seconds
}

// RecordingSession is a live microphone capture. Stop resolves exactly once
// with the recorded file path; Abort discards the capture.
type RecordingSession interface {
	Stop(ctx context.Context) (string, error)
	Abort() error
}

// Recorder starts microphone capture sessions.
type Recorder interface {
	Start(ctx context.Context, cfg RecordConfig) (RecordingSession, error)
}

// PlaybackSession is a single in-flight audio playback. Done is closed when
// playback ends for any reason; Err reports the terminal failure, if any.
type PlaybackSession interface {
	Done() <-chan struct{}
	Err() error
	Stop() error
}

// Player starts audio output sessions.
type Player interface {
	Play(ctx context.Context, url string) (PlaybackSession, error)
}

// Storage is the persistent key-value store behind the session.
type Storage interface {
	Read(key string) ([]byte, error)
	Write(key string, value []byte) error
	Delete(key string) error
}

// ErrNotFound is returned by Storage.Read when the key has no value.
var ErrNotFound = fmt.Errorf("storage: key not found")

// EventSink emits client state and notices to the UI.
type EventSink interface {
	CaptureStateChanged(state domain.CaptureState, reason domain.CaptureStateReason)
	RecorderStateChanged(state domain.RecorderState)
	PlaybackChanged(messageID string, active bool)
	MessageAppended(msg domain.ChatMessage)
	SessionExpired()
	Notice(code domain.ErrorCode, detail string)
}
