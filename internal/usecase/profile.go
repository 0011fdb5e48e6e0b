package usecase

import (
	"context"

	"go.uber.org/zap"

	"tutorlens/internal/domain"
)

// Accounts is the slice of the session store the profile view needs.
type Accounts interface {
	Clear()
	SetProfile(profile domain.UserProfile) error
	Profile() (domain.UserProfile, bool)
}

// Profile drives the profile page: study stats, identity updates,
// feedback, and logout.
type Profile struct {
	api      API
	accounts Accounts
	log      *zap.Logger
}

func NewProfile(api API, accounts Accounts, log *zap.Logger) *Profile {
	if log == nil {
		log = zap.NewNop()
	}
	return &Profile{api: api, accounts: accounts, log: log}
}

// Stats fetches the user's study statistics.
func (p *Profile) Stats(ctx context.Context) (domain.UserStats, error) {
	var stats domain.UserStats
	if err := p.api.Get(ctx, "/api/user/stats", &stats); err != nil {
		return domain.UserStats{}, err
	}
	return stats, nil
}

// UpdateProfile pushes a new identity to the server and caches it locally.
func (p *Profile) UpdateProfile(ctx context.Context, profile domain.UserProfile) error {
	body := map[string]string{"nickname": profile.Nickname, "avatar": profile.Avatar}
	if err := p.api.Put(ctx, "/api/user/profile", body, nil); err != nil {
		return err
	}
	if err := p.accounts.SetProfile(profile); err != nil {
		p.log.Warn("failed to cache profile", zap.Error(err))
	}
	return nil
}

// CachedProfile returns the locally cached identity, if any.
func (p *Profile) CachedProfile() (domain.UserProfile, bool) {
	return p.accounts.Profile()
}

// SubmitFeedback sends a user suggestion.
func (p *Profile) SubmitFeedback(ctx context.Context, content string) error {
	body := map[string]string{"content": content, "type": "suggestion"}
	return p.api.Post(ctx, "/api/feedback", body, nil)
}

// Logout clears the session explicitly. Safe alongside 401 handling.
func (p *Profile) Logout() {
	p.accounts.Clear()
}
