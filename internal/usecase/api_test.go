package usecase

import (
	"errors"
	"fmt"
	"testing"

	"tutorlens/internal/domain"
	"tutorlens/internal/gateway"
	"tutorlens/internal/ports"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		err  error
		want domain.ErrorCode
	}{
		{"session expired", gateway.ErrSessionExpired, domain.ErrorCodeAuth},
		{"wrapped session expired", fmt.Errorf("turn failed: %w", gateway.ErrSessionExpired), domain.ErrorCodeAuth},
		{"business", &gateway.BusinessError{Code: 5001, Message: "unrecognizable image"}, domain.ErrorCodeBusiness},
		{"transport", &gateway.NetworkError{Err: errors.New("dial timeout")}, domain.ErrorCodeNetwork},
		{"status", &gateway.NetworkError{Status: 502}, domain.ErrorCodeNetwork},
		{"hardware", &ports.ResourceError{Resource: "microphone", Err: errors.New("device busy")}, domain.ErrorCodeRecorder},
		{"unknown", errors.New("boom"), domain.ErrorCodeNetwork},
	}
	for _, tc := range cases {
		if got := classify(tc.err); got != tc.want {
			t.Errorf("%s: got %q, want %q", tc.name, got, tc.want)
		}
	}
}
