package usecase

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"tutorlens/internal/domain"
	"tutorlens/internal/ports"
)

// ErrNoActiveRecording is returned by StopRecording when the microphone
// is not capturing.
var ErrNoActiveRecording = errors.New("no active recording")

// AudioController owns the microphone and the single audio output channel.
// At most one of recording and playback is active at any instant: starting
// a recording stops active playback first, and playback requested while
// recording fails fast.
type AudioController struct {
	recorder ports.Recorder
	player   ports.Player
	events   ports.EventSink
	cfg      ports.RecordConfig
	log      *zap.Logger

	mu       sync.Mutex
	recState domain.RecorderState
	starting bool
	rec      ports.RecordingSession
	playing  *activePlayback
}

type activePlayback struct {
	messageID string
	session   ports.PlaybackSession
}

func NewAudioController(
	recorder ports.Recorder,
	player ports.Player,
	events ports.EventSink,
	cfg ports.RecordConfig,
	log *zap.Logger,
) *AudioController {
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = 16000
	}
	if cfg.Channels <= 0 {
		cfg.Channels = 1
	}
	if cfg.MaxDuration <= 0 {
		cfg.MaxDuration = 60
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &AudioController{
		recorder: recorder,
		player:   player,
		events:   events,
		cfg:      cfg,
		log:      log,
		recState: domain.RecorderStateIdle,
	}
}

// StartRecording acquires the microphone. Active playback is stopped first.
// The starting flag holds the claim across the hardware call so interleaved
// requests cannot slip in while the mutex is released.
func (c *AudioController) StartRecording(ctx context.Context) error {
	c.mu.Lock()
	if c.recState == domain.RecorderStateActive || c.starting {
		c.mu.Unlock()
		return nil
	}
	c.stopPlaybackLocked()
	c.starting = true
	c.mu.Unlock()

	rec, err := c.recorder.Start(ctx, c.cfg)

	c.mu.Lock()
	c.starting = false
	if err != nil {
		c.mu.Unlock()
		resErr := &ports.ResourceError{Resource: "microphone", Err: err}
		c.events.Notice(domain.ErrorCodeRecorder, resErr.Error())
		return resErr
	}
	c.rec = rec
	c.recState = domain.RecorderStateActive
	c.mu.Unlock()

	c.events.RecorderStateChanged(domain.RecorderStateActive)
	return nil
}

// StopRecording ends the active capture and returns the recorded file
// path. The recorder returns to Idle whatever happens afterwards with
// the recording.
func (c *AudioController) StopRecording(ctx context.Context) (string, error) {
	c.mu.Lock()
	rec := c.rec
	if rec == nil {
		c.mu.Unlock()
		return "", ErrNoActiveRecording
	}
	c.rec = nil
	c.recState = domain.RecorderStateStopping
	c.mu.Unlock()
	c.events.RecorderStateChanged(domain.RecorderStateStopping)

	localPath, err := rec.Stop(ctx)
	if err != nil {
		c.setRecorderState(domain.RecorderStateError)
		c.events.Notice(domain.ErrorCodeRecorder, "recording failed")
		return "", err
	}

	c.setRecorderState(domain.RecorderStateIdle)
	return localPath, nil
}

// AbortRecording discards an in-progress capture without producing a file.
func (c *AudioController) AbortRecording() {
	c.mu.Lock()
	rec := c.rec
	c.rec = nil
	if rec != nil {
		c.recState = domain.RecorderStateIdle
	}
	c.mu.Unlock()

	if rec == nil {
		return
	}
	if err := rec.Abort(); err != nil {
		c.log.Warn("failed to abort recording", zap.Error(err))
	}
	c.events.RecorderStateChanged(domain.RecorderStateIdle)
}

// Play starts playback of the given URL keyed by message id. Playing the
// message already sounding stops it instead; playing a different message
// stops the previous one first. While recording, playback fails fast.
// The playing slot is claimed before the player starts: a later request
// arriving mid-start displaces the claim, and the displaced starter tears
// down its own session instead of leaving it sounding.
func (c *AudioController) Play(ctx context.Context, messageID string, url string) error {
	c.mu.Lock()
	if c.recState == domain.RecorderStateActive || c.recState == domain.RecorderStateStopping || c.starting {
		c.mu.Unlock()
		return &ports.ResourceError{Resource: "audio output", Err: errors.New("recording in progress")}
	}
	if c.playing != nil && c.playing.messageID == messageID {
		c.stopPlaybackLocked()
		c.mu.Unlock()
		return nil
	}
	c.stopPlaybackLocked()
	handle := &activePlayback{messageID: messageID}
	c.playing = handle
	c.mu.Unlock()

	session, err := c.player.Play(ctx, url)

	c.mu.Lock()
	if c.playing != handle {
		// Displaced while the player was starting; the newer request won.
		c.mu.Unlock()
		if session != nil {
			_ = session.Stop()
		}
		return nil
	}
	if err != nil {
		c.playing = nil
		c.mu.Unlock()
		c.events.Notice(domain.ErrorCodePlayback, "failed to play audio")
		return err
	}
	handle.session = session
	c.mu.Unlock()
	c.events.PlaybackChanged(messageID, true)

	go c.watchPlayback(handle)
	return nil
}

// StopPlayback stops the active playback. Stopping while idle is a no-op.
func (c *AudioController) StopPlayback() {
	c.mu.Lock()
	c.stopPlaybackLocked()
	c.mu.Unlock()
}

// PlayingMessageID returns the message currently sounding, if any.
func (c *AudioController) PlayingMessageID() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.playing == nil {
		return "", false
	}
	return c.playing.messageID, true
}

// RecorderState returns the microphone state.
func (c *AudioController) RecorderState() domain.RecorderState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.recState
}

// Close stops any active recording and playback. Called on teardown;
// leaving either running would leak the device.
func (c *AudioController) Close() {
	c.AbortRecording()
	c.StopPlayback()
}

func (c *AudioController) watchPlayback(handle *activePlayback) {
	<-handle.session.Done()

	c.mu.Lock()
	current := c.playing == handle
	if current {
		c.playing = nil
	}
	c.mu.Unlock()

	if !current {
		return
	}
	c.events.PlaybackChanged(handle.messageID, false)
	if err := handle.session.Err(); err != nil {
		c.events.Notice(domain.ErrorCodePlayback, "playback failed")
		c.log.Warn("playback ended with error",
			zap.String("messageId", handle.messageID),
			zap.Error(err))
	}
}

// stopPlaybackLocked requires c.mu held. A claim whose session has not
// started yet is only released; the displaced starter handles teardown.
func (c *AudioController) stopPlaybackLocked() {
	playing := c.playing
	if playing == nil {
		return
	}
	c.playing = nil
	if playing.session == nil {
		return
	}
	if err := playing.session.Stop(); err != nil {
		c.log.Warn("failed to stop playback", zap.Error(err))
	}
	c.events.PlaybackChanged(playing.messageID, false)
}

func (c *AudioController) setRecorderState(state domain.RecorderState) {
	c.mu.Lock()
	c.recState = state
	c.mu.Unlock()
	c.events.RecorderStateChanged(state)
}
