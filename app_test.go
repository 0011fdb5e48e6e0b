package main

import (
	"testing"

	"tutorlens/internal/domain"
)

func TestCaptureReasonMessage(t *testing.T) {
	t.Parallel()

	cases := map[domain.CaptureStateReason]string{
		domain.CaptureReasonShutterPressed: "Taking photo",
		domain.CaptureReasonGalleryPicked:  "Opening image library",
		domain.CaptureReasonUploadStarted:  "Recognizing problem...",
		domain.CaptureReasonAnalysisReady:  "Analysis ready",
		domain.CaptureReasonCaptureFailed:  "Capture failed",
		domain.CaptureReasonUploadFailed:   "Recognition failed",
		domain.CaptureReasonPipelineBusy:   "Still working on the previous photo",
		domain.CaptureReasonPickCancelled:  "",
	}
	for reason, want := range cases {
		if got := captureReasonMessage(reason); got != want {
			t.Errorf("reason %q: got %q, want %q", reason, got, want)
		}
	}
}

func TestNoticeMessage(t *testing.T) {
	t.Parallel()

	cases := []struct {
		code   domain.ErrorCode
		detail string
		want   string
	}{
		{domain.ErrorCodeStartup, "", "Startup failed"},
		{domain.ErrorCodeNetwork, "dial timeout", "Network error, please check your connection"},
		{domain.ErrorCodeAuth, "", "Signed out, please sign in again"},
		{domain.ErrorCodeBusiness, "unrecognizable image", "unrecognizable image"},
		{domain.ErrorCodeBusiness, "", "Request failed"},
		{domain.ErrorCodeCamera, "", "Camera unavailable"},
		{domain.ErrorCodeRecorder, "", "Recording failed"},
		{domain.ErrorCodePlayback, "", "Playback failed"},
		{domain.ErrorCode("other"), "", "Unknown error"},
		{domain.ErrorCode("other"), "something broke", "something broke"},
	}
	for _, tc := range cases {
		if got := noticeMessage(tc.code, tc.detail); got != tc.want {
			t.Errorf("code %q detail %q: got %q, want %q", tc.code, tc.detail, got, tc.want)
		}
	}
}
