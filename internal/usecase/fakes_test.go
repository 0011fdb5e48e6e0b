package usecase

import (
	"context"
	"encoding/json"
	"sync"

	"tutorlens/internal/domain"
	"tutorlens/internal/ports"
)

type apiCall struct {
	method string
	path   string
	body   any
}

type fakeAPI struct {
	mu    sync.Mutex
	calls []apiCall

	getErr    error
	postErr   error
	putErr    error
	deleteErr error
	uploadErr error

	getData    any
	postData   any
	uploadData any

	uploadStarted chan struct{}
	uploadRelease chan struct{}
}

func (f *fakeAPI) record(method string, path string, body any) {
	f.mu.Lock()
	f.calls = append(f.calls, apiCall{method: method, path: path, body: body})
	f.mu.Unlock()
}

func (f *fakeAPI) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeAPI) lastCall() (apiCall, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.calls) == 0 {
		return apiCall{}, false
	}
	return f.calls[len(f.calls)-1], true
}

func (f *fakeAPI) Get(ctx context.Context, path string, out any) error {
	f.record("GET", path, nil)
	if f.getErr != nil {
		return f.getErr
	}
	fill(out, f.getData)
	return nil
}

func (f *fakeAPI) Post(ctx context.Context, path string, body any, out any) error {
	f.record("POST", path, body)
	if f.postErr != nil {
		return f.postErr
	}
	fill(out, f.postData)
	return nil
}

func (f *fakeAPI) Put(ctx context.Context, path string, body any, out any) error {
	f.record("PUT", path, body)
	return f.putErr
}

func (f *fakeAPI) Delete(ctx context.Context, path string, out any) error {
	f.record("DELETE", path, nil)
	return f.deleteErr
}

func (f *fakeAPI) Upload(ctx context.Context, path string, field string, filePath string, out any) error {
	f.record("UPLOAD", path, filePath)
	if f.uploadStarted != nil {
		close(f.uploadStarted)
		f.uploadStarted = nil
	}
	if f.uploadRelease != nil {
		<-f.uploadRelease
	}
	if f.uploadErr != nil {
		return f.uploadErr
	}
	fill(out, f.uploadData)
	return nil
}

func fill(out any, value any) {
	if out == nil || value == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	_ = json.Unmarshal(raw, out)
}

type playbackEvent struct {
	messageID string
	active    bool
}

type noticeEvent struct {
	code   domain.ErrorCode
	detail string
}

type captureEvent struct {
	state  domain.CaptureState
	reason domain.CaptureStateReason
}

type fakeEventSink struct {
	mu             sync.Mutex
	captureEvents  []captureEvent
	recorderStates []domain.RecorderState
	playback       []playbackEvent
	messages       []domain.ChatMessage
	expired        int
	notices        []noticeEvent
}

func (f *fakeEventSink) CaptureStateChanged(state domain.CaptureState, reason domain.CaptureStateReason) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.captureEvents = append(f.captureEvents, captureEvent{state: state, reason: reason})
}

func (f *fakeEventSink) RecorderStateChanged(state domain.RecorderState) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.recorderStates = append(f.recorderStates, state)
}

func (f *fakeEventSink) PlaybackChanged(messageID string, active bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.playback = append(f.playback, playbackEvent{messageID: messageID, active: active})
}

func (f *fakeEventSink) MessageAppended(msg domain.ChatMessage) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, msg)
}

func (f *fakeEventSink) SessionExpired() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.expired++
}

func (f *fakeEventSink) Notice(code domain.ErrorCode, detail string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notices = append(f.notices, noticeEvent{code: code, detail: detail})
}

func (f *fakeEventSink) snapshotNotices() []noticeEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]noticeEvent{}, f.notices...)
}

func (f *fakeEventSink) snapshotPlayback() []playbackEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]playbackEvent{}, f.playback...)
}

func (f *fakeEventSink) snapshotCapture() []captureEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]captureEvent{}, f.captureEvents...)
}

type fakeCameraSession struct {
	mu       sync.Mutex
	path     string
	photoErr error
	released int
}

func (s *fakeCameraSession) TakePhoto(ctx context.Context, opts ports.CaptureOptions) (string, error) {
	if s.photoErr != nil {
		return "", s.photoErr
	}
	return s.path, nil
}

func (s *fakeCameraSession) Release() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.released++
	return nil
}

func (s *fakeCameraSession) releaseCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.released
}

type fakeCamera struct {
	mu         sync.Mutex
	sessions   []ports.CameraSession
	acquireErr error
	acquires   int
}

func (c *fakeCamera) Acquire(ctx context.Context) (ports.CameraSession, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.acquires++
	if c.acquireErr != nil {
		return nil, c.acquireErr
	}
	if len(c.sessions) == 0 {
		return &fakeCameraSession{path: "/tmp/photo.jpg"}, nil
	}
	session := c.sessions[0]
	c.sessions = c.sessions[1:]
	return session, nil
}

func (c *fakeCamera) acquireCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.acquires
}

type fakeGallery struct {
	path string
	err  error
}

func (g *fakeGallery) PickImage(ctx context.Context) (string, error) {
	return g.path, g.err
}

type fakeRecordingSession struct {
	path    string
	stopErr error

	mu      sync.Mutex
	aborted int
}

func (s *fakeRecordingSession) Stop(ctx context.Context) (string, error) {
	if s.stopErr != nil {
		return "", s.stopErr
	}
	return s.path, nil
}

func (s *fakeRecordingSession) Abort() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.aborted++
	return nil
}

type fakeRecorder struct {
	mu       sync.Mutex
	sessions []ports.RecordingSession
	startErr error
	starts   int

	startEntered chan struct{}
	startRelease chan struct{}
}

func (r *fakeRecorder) Start(ctx context.Context, cfg ports.RecordConfig) (ports.RecordingSession, error) {
	r.mu.Lock()
	entered := r.startEntered
	r.startEntered = nil
	release := r.startRelease
	r.startRelease = nil
	r.mu.Unlock()
	if entered != nil {
		close(entered)
	}
	if release != nil {
		<-release
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.starts++
	if r.startErr != nil {
		return nil, r.startErr
	}
	if len(r.sessions) == 0 {
		return &fakeRecordingSession{path: "/tmp/rec.wav"}, nil
	}
	session := r.sessions[0]
	r.sessions = r.sessions[1:]
	return session, nil
}

type fakePlaybackSession struct {
	done chan struct{}
	err  error

	stopOnce sync.Once
	mu       sync.Mutex
	stops    int
}

func newFakePlaybackSession() *fakePlaybackSession {
	return &fakePlaybackSession{done: make(chan struct{})}
}

func (s *fakePlaybackSession) Done() <-chan struct{} { return s.done }

func (s *fakePlaybackSession) Err() error { return s.err }

func (s *fakePlaybackSession) Stop() error {
	s.mu.Lock()
	s.stops++
	s.mu.Unlock()
	s.stopOnce.Do(func() { close(s.done) })
	return nil
}

func (s *fakePlaybackSession) finish() {
	s.stopOnce.Do(func() { close(s.done) })
}

func (s *fakePlaybackSession) stopCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stops
}

type fakePlayer struct {
	mu       sync.Mutex
	sessions []*fakePlaybackSession
	playErr  error
	played   []string

	playEntered chan struct{}
	playRelease chan struct{}
}

func (p *fakePlayer) Play(ctx context.Context, url string) (ports.PlaybackSession, error) {
	p.mu.Lock()
	entered := p.playEntered
	p.playEntered = nil
	release := p.playRelease
	p.playRelease = nil
	p.mu.Unlock()
	if entered != nil {
		close(entered)
	}
	if release != nil {
		<-release
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.playErr != nil {
		return nil, p.playErr
	}
	p.played = append(p.played, url)
	session := newFakePlaybackSession()
	p.sessions = append(p.sessions, session)
	return session, nil
}

func (p *fakePlayer) lastSession() *fakePlaybackSession {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.sessions) == 0 {
		return nil
	}
	return p.sessions[len(p.sessions)-1]
}
