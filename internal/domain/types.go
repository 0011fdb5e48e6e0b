package domain

import "time"

// Session is the client's current authentication state. An empty token
// means unauthenticated.
type Session struct {
	Token  string `json:"token"`
	UserID string `json:"userId,omitempty"`
}

// Authenticated reports whether the session carries a token.
func (s Session) Authenticated() bool {
	return s.Token != ""
}

// Author identifies who produced a chat message.
type Author string

const (
	AuthorUser      Author = "user"
	AuthorAssistant Author = "assistant"
)

// ChatMessage is one immutable entry of a chat transcript.
type ChatMessage struct {
	ID        string    `json:"id"`
	Author    Author    `json:"author"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	AudioURL  string    `json:"audioUrl,omitempty"`
}

// UploadState models the forward-only lifecycle of a captured asset.
type UploadState string

const (
	UploadStateIdle      UploadState = "idle"
	UploadStateUploading UploadState = "uploading"
	UploadStateDone      UploadState = "done"
	UploadStateFailed    UploadState = "failed"
)

// MediaAsset is a locally captured or selected image on its way to analysis.
type MediaAsset struct {
	ID              string      `json:"id"`
	LocalPath       string      `json:"localPath"`
	UploadState     UploadState `json:"uploadState"`
	RemoteProblemID string      `json:"remoteProblemId,omitempty"`
}

// CaptureState models the photo capture/analysis pipeline.
type CaptureState string

const (
	CaptureStateIdle      CaptureState = "idle"
	CaptureStateCapturing CaptureState = "capturing"
	CaptureStateUploading CaptureState = "uploading"
	CaptureStateAnalyzed  CaptureState = "analyzed"
	CaptureStateFailed    CaptureState = "failed"
)

// CaptureStateReason provides a structured reason for capture transitions.
type CaptureStateReason string

const (
	CaptureReasonShutterPressed CaptureStateReason = "shutter_pressed"
	CaptureReasonGalleryPicked  CaptureStateReason = "gallery_picked"
	CaptureReasonUploadStarted  CaptureStateReason = "upload_started"
	CaptureReasonAnalysisReady  CaptureStateReason = "analysis_ready"
	CaptureReasonCaptureFailed  CaptureStateReason = "capture_failed"
	CaptureReasonUploadFailed   CaptureStateReason = "upload_failed"
	CaptureReasonPipelineBusy   CaptureStateReason = "pipeline_busy"
	CaptureReasonPickCancelled  CaptureStateReason = "pick_cancelled"
)

// RecorderState models the microphone lifecycle.
type RecorderState string

const (
	RecorderStateIdle     RecorderState = "idle"
	RecorderStateActive   RecorderState = "active"
	RecorderStateStopping RecorderState = "stopping"
	RecorderStateError    RecorderState = "error"
)

// ErrorCode identifies user-facing error categories.
type ErrorCode string

const (
	ErrorCodeStartup  ErrorCode = "startup"
	ErrorCodeNetwork  ErrorCode = "network"
	ErrorCodeAuth     ErrorCode = "auth_expired"
	ErrorCodeBusiness ErrorCode = "business"
	ErrorCodeCamera   ErrorCode = "camera"
	ErrorCodeRecorder ErrorCode = "recorder"
	ErrorCodePlayback ErrorCode = "playback"
)

// Problem is a fetched homework problem with its analysis.
type Problem struct {
	ID              string   `json:"id"`
	ImageURL        string   `json:"imageUrl"`
	OCRText         string   `json:"ocrText"`
	Answer          string   `json:"answer"`
	Steps           []string `json:"steps"`
	KnowledgePoints []string `json:"knowledgePoints"`
	Subject         string   `json:"subject"`
	Difficulty      string   `json:"difficulty"`
}

// MistakeEntry is one saved problem in the mistake book.
type MistakeEntry struct {
	ID             string `json:"id"`
	ProblemID      string `json:"problemId"`
	Subject        string `json:"subject"`
	ImageURL       string `json:"imageUrl"`
	Title          string `json:"title"`
	AddedAt        string `json:"addedAt"`
	ReviewCount    int    `json:"reviewCount"`
	LastReviewedAt string `json:"lastReviewedAt,omitempty"`
}

// UserProfile is the cached user identity shown on the profile page.
type UserProfile struct {
	Nickname string `json:"nickname"`
	Avatar   string `json:"avatar"`
}

// UserStats summarizes a user's study activity.
type UserStats struct {
	TotalProblems int `json:"totalProblems"`
	TotalMistakes int `json:"totalMistakes"`
	StudyTime     int `json:"studyTime"`
	StreakDays    int `json:"streakDays"`
}

// FlashMode is the camera flash setting. It is local device state only
// and never triggers a capture.
type FlashMode string

const (
	FlashOff  FlashMode = "off"
	FlashOn   FlashMode = "on"
	FlashAuto FlashMode = "auto"
)

// NextFlashMode cycles off -> on -> auto -> off.
func NextFlashMode(mode FlashMode) FlashMode {
	switch mode {
	case FlashOff:
		return FlashOn
	case FlashOn:
		return FlashAuto
	default:
		return FlashOff
	}
}

// DevicePosition selects the front or back camera.
type DevicePosition string

const (
	DeviceBack  DevicePosition = "back"
	DeviceFront DevicePosition = "front"
)

// TogglePosition flips between the back and front camera.
func TogglePosition(pos DevicePosition) DevicePosition {
	if pos == DeviceBack {
		return DeviceFront
	}
	return DeviceBack
}
