package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/wailsapp/wails/v2/pkg/runtime"

	"tutorlens/internal/bootstrap"
	"tutorlens/internal/config"
	"tutorlens/internal/domain"
	"tutorlens/internal/usecase"
)

const (
	eventCapture  = "tutorlens:capture"
	eventRecorder = "tutorlens:recorder"
	eventPlayback = "tutorlens:playback"
	eventMessage  = "tutorlens:message"
	eventExpired  = "tutorlens:session-expired"
	eventNotice   = "tutorlens:notice"
)

// App is the Wails application root.
type App struct {
	ctx context.Context

	services bootstrap.Services
	cfg      config.Config
	bootErr  error
}

func NewApp() *App {
	return &App{}
}

func (a *App) startup(ctx context.Context) {
	a.ctx = ctx

	services, err := bootstrap.Build(a, &wailsGallery{app: a})
	if err != nil {
		a.bootErr = err
		a.Notice(domain.ErrorCodeStartup, err.Error())
		return
	}

	a.services = services
	a.cfg = services.Config
}

func (a *App) shutdown(ctx context.Context) {
	if a.bootErr != nil {
		return
	}
	a.services.Chat.Close()
	a.services.Analysis.Close()
	_ = a.services.Log.Sync()
}

// TakePhoto captures a photo and runs the analysis pipeline.
func (a *App) TakePhoto() error {
	if err := a.requireReady(); err != nil {
		return err
	}
	return a.services.Capture.CapturePhoto(a.ctx)
}

// ChooseFromAlbum selects an existing image and runs the same pipeline.
func (a *App) ChooseFromAlbum() error {
	if err := a.requireReady(); err != nil {
		return err
	}
	return a.services.Capture.PickFromGallery(a.ctx)
}

// ToggleFlash cycles the flash mode.
func (a *App) ToggleFlash() string {
	if a.requireReady() != nil {
		return string(domain.FlashOff)
	}
	return string(a.services.Capture.ToggleFlash())
}

// SwitchCamera flips between the front and back camera.
func (a *App) SwitchCamera() string {
	if a.requireReady() != nil {
		return string(domain.DeviceBack)
	}
	return string(a.services.Capture.SwitchCamera())
}

// AnalyzedProblemID returns the problem id of the last analyzed photo.
func (a *App) AnalyzedProblemID() string {
	if a.requireReady() != nil {
		return ""
	}
	id, _ := a.services.Capture.ProblemID()
	return id
}

// OpenChat loads the problem context for a conversation.
func (a *App) OpenChat(problemID string) {
	if a.requireReady() != nil {
		return
	}
	a.services.Chat.Initialize(a.ctx, problemID)
}

// SendText sends one text turn.
func (a *App) SendText(content string) error {
	if err := a.requireReady(); err != nil {
		return err
	}
	return a.services.Chat.SendText(a.ctx, content)
}

// StartVoice begins recording a voice turn.
func (a *App) StartVoice() error {
	if err := a.requireReady(); err != nil {
		return err
	}
	return a.services.Chat.StartVoiceInput(a.ctx)
}

// StopVoice finishes recording and sends the captured audio.
func (a *App) StopVoice() error {
	if err := a.requireReady(); err != nil {
		return err
	}
	if err := a.services.Chat.FinishVoiceInput(a.ctx); err != nil {
		if errors.Is(err, usecase.ErrNoActiveRecording) {
			return nil
		}
		return err
	}
	return nil
}

// PlayMessage toggles playback of a chat message's audio.
func (a *App) PlayMessage(messageID string) error {
	if err := a.requireReady(); err != nil {
		return err
	}
	return a.services.Chat.PlayMessage(a.ctx, messageID)
}

// StopAudio stops any active playback.
func (a *App) StopAudio() {
	if a.requireReady() != nil {
		return
	}
	a.services.Audio.StopPlayback()
}

// Transcript returns the chat messages in display order.
func (a *App) Transcript() []domain.ChatMessage {
	if a.requireReady() != nil {
		return nil
	}
	return a.services.Chat.Messages()
}

// LoadProblem fetches a problem for the analysis view.
func (a *App) LoadProblem(problemID string) (domain.Problem, error) {
	if err := a.requireReady(); err != nil {
		return domain.Problem{}, err
	}
	return a.services.Analysis.Load(a.ctx, problemID)
}

// RegenerateAnalysis recomputes the loaded problem's analysis.
func (a *App) RegenerateAnalysis() (domain.Problem, error) {
	if err := a.requireReady(); err != nil {
		return domain.Problem{}, err
	}
	return a.services.Analysis.Regenerate(a.ctx)
}

// UpdateOCRText corrects the recognized problem text.
func (a *App) UpdateOCRText(text string) error {
	if err := a.requireReady(); err != nil {
		return err
	}
	return a.services.Analysis.UpdateOCRText(a.ctx, text)
}

// SpeakAnswer toggles a spoken reading of the answer.
func (a *App) SpeakAnswer() error {
	if err := a.requireReady(); err != nil {
		return err
	}
	return a.services.Analysis.SpeakAnswer(a.ctx)
}

// AddToMistakeBook saves the loaded problem.
func (a *App) AddToMistakeBook() error {
	if err := a.requireReady(); err != nil {
		return err
	}
	return a.services.Analysis.AddToMistakeBook(a.ctx)
}

// ListMistakes returns one page of saved problems.
func (a *App) ListMistakes(subject string, page int, pageSize int) ([]domain.MistakeEntry, error) {
	if err := a.requireReady(); err != nil {
		return nil, err
	}
	entries, _, err := a.services.Mistakes.List(a.ctx, subject, page, pageSize)
	return entries, err
}

// RemoveMistake deletes one saved problem.
func (a *App) RemoveMistake(entryID string) error {
	if err := a.requireReady(); err != nil {
		return err
	}
	return a.services.Mistakes.Remove(a.ctx, entryID)
}

// UserStats fetches the user's study statistics.
func (a *App) UserStats() (domain.UserStats, error) {
	if err := a.requireReady(); err != nil {
		return domain.UserStats{}, err
	}
	return a.services.Profile.Stats(a.ctx)
}

// SubmitFeedback sends a user suggestion.
func (a *App) SubmitFeedback(content string) error {
	if err := a.requireReady(); err != nil {
		return err
	}
	return a.services.Profile.SubmitFeedback(a.ctx, content)
}

// Logout clears the current session.
func (a *App) Logout() {
	if a.requireReady() != nil {
		return
	}
	a.services.Profile.Logout()
}

func (a *App) requireReady() error {
	if a.bootErr != nil {
		return a.bootErr
	}
	if a.services.Gateway == nil {
		return fmt.Errorf("application is not initialized")
	}
	return nil
}

// CaptureStateChanged emits capture pipeline updates to the frontend.
func (a *App) CaptureStateChanged(state domain.CaptureState, reason domain.CaptureStateReason) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventCapture, map[string]string{
		"state":   string(state),
		"reason":  string(reason),
		"message": captureReasonMessage(reason),
	})
}

// RecorderStateChanged emits microphone updates.
func (a *App) RecorderStateChanged(state domain.RecorderState) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventRecorder, map[string]string{"state": string(state)})
}

// PlaybackChanged emits which message is sounding, if any.
func (a *App) PlaybackChanged(messageID string, active bool) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventPlayback, map[string]any{
		"messageId": messageID,
		"active":    active,
	})
}

// MessageAppended emits a newly appended transcript message.
func (a *App) MessageAppended(msg domain.ChatMessage) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventMessage, msg)
}

// SessionExpired tells the frontend to return to the sign-in screen.
func (a *App) SessionExpired() {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventExpired, map[string]string{
		"message": "Signed out, please sign in again",
	})
}

// Notice emits a transient user-facing notice.
func (a *App) Notice(code domain.ErrorCode, detail string) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventNotice, map[string]string{
		"code":    string(code),
		"message": noticeMessage(code, detail),
		"detail":  detail,
	})
}

func captureReasonMessage(reason domain.CaptureStateReason) string {
	switch reason {
	case domain.CaptureReasonShutterPressed:
		return "Taking photo"
	case domain.CaptureReasonGalleryPicked:
		return "Opening image library"
	case domain.CaptureReasonUploadStarted:
		return "Recognizing problem..."
	case domain.CaptureReasonAnalysisReady:
		return "Analysis ready"
	case domain.CaptureReasonCaptureFailed:
		return "Capture failed"
	case domain.CaptureReasonUploadFailed:
		return "Recognition failed"
	case domain.CaptureReasonPipelineBusy:
		return "Still working on the previous photo"
	case domain.CaptureReasonPickCancelled:
		return ""
	default:
		return ""
	}
}

func noticeMessage(code domain.ErrorCode, detail string) string {
	switch code {
	case domain.ErrorCodeStartup:
		return "Startup failed"
	case domain.ErrorCodeNetwork:
		return "Network error, please check your connection"
	case domain.ErrorCodeAuth:
		return "Signed out, please sign in again"
	case domain.ErrorCodeBusiness:
		if detail != "" {
			return detail
		}
		return "Request failed"
	case domain.ErrorCodeCamera:
		return "Camera unavailable"
	case domain.ErrorCodeRecorder:
		return "Recording failed"
	case domain.ErrorCodePlayback:
		return "Playback failed"
	default:
		if detail == "" {
			return "Unknown error"
		}
		return detail
	}
}

// wailsGallery selects an image through the native open-file dialog.
type wailsGallery struct {
	app *App
}

func (g *wailsGallery) PickImage(ctx context.Context) (string, error) {
	return runtime.OpenFileDialog(g.app.ctx, runtime.OpenDialogOptions{
		Title: "Choose a problem photo",
		Filters: []runtime.FileFilter{
			{DisplayName: "Images", Pattern: "*.png;*.jpg;*.jpeg"},
		},
	})
}
