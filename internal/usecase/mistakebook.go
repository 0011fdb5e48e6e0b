package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"go.uber.org/zap"

	"tutorlens/internal/domain"
)

// ErrNoProblemLoaded is returned by analysis actions before Load succeeds.
var ErrNoProblemLoaded = errors.New("no problem loaded")

// MistakeBook manages the saved-problem collection.
type MistakeBook struct {
	api API
	log *zap.Logger
}

func NewMistakeBook(api API, log *zap.Logger) *MistakeBook {
	if log == nil {
		log = zap.NewNop()
	}
	return &MistakeBook{api: api, log: log}
}

// List returns one page of saved problems for a subject. hasMore is true
// when the page came back full.
func (b *MistakeBook) List(ctx context.Context, subject string, page int, pageSize int) ([]domain.MistakeEntry, bool, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}

	query := url.Values{}
	query.Set("subject", subject)
	query.Set("page", fmt.Sprintf("%d", page))
	query.Set("pageSize", fmt.Sprintf("%d", pageSize))

	var result struct {
		Problems []domain.MistakeEntry `json:"problems"`
	}
	if err := b.api.Get(ctx, "/api/mistake-book/problems?"+query.Encode(), &result); err != nil {
		return nil, false, err
	}

	return result.Problems, len(result.Problems) == pageSize, nil
}

// Remove deletes one saved problem.
func (b *MistakeBook) Remove(ctx context.Context, entryID string) error {
	return b.api.Delete(ctx, "/api/mistake-book/problems/"+entryID, nil)
}
