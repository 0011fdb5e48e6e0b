// Package usecase holds the interaction controllers: photo capture,
// audio recording/playback, the chat transcript, and the problem views.
package usecase

import (
	"context"
	"errors"

	"tutorlens/internal/domain"
	"tutorlens/internal/gateway"
	"tutorlens/internal/ports"
)

// API is the slice of the request gateway the controllers consume.
type API interface {
	Get(ctx context.Context, path string, out any) error
	Post(ctx context.Context, path string, body any, out any) error
	Put(ctx context.Context, path string, body any, out any) error
	Delete(ctx context.Context, path string, out any) error
	Upload(ctx context.Context, path string, field string, filePath string, out any) error
}

// classify maps an error to the notice category shown to the user.
func classify(err error) domain.ErrorCode {
	var re *ports.ResourceError
	switch {
	case errors.Is(err, gateway.ErrSessionExpired):
		return domain.ErrorCodeAuth
	case gateway.IsBusiness(err):
		return domain.ErrorCodeBusiness
	case gateway.IsNetwork(err):
		return domain.ErrorCodeNetwork
	case errors.As(err, &re):
		return domain.ErrorCodeRecorder
	default:
		return domain.ErrorCodeNetwork
	}
}
