package usecase

import (
	"context"
	"errors"
	"testing"

	"tutorlens/internal/domain"
)

type fakeAccounts struct {
	profile    domain.UserProfile
	hasProfile bool
	setErr     error
	cleared    int
}

func (a *fakeAccounts) Clear() { a.cleared++ }

func (a *fakeAccounts) SetProfile(profile domain.UserProfile) error {
	if a.setErr != nil {
		return a.setErr
	}
	a.profile = profile
	a.hasProfile = true
	return nil
}

func (a *fakeAccounts) Profile() (domain.UserProfile, bool) {
	return a.profile, a.hasProfile
}

func TestProfileStats(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{getData: domain.UserStats{
		TotalProblems: 42,
		TotalMistakes: 7,
		StudyTime:     360,
		StreakDays:    5,
	}}
	profile := NewProfile(api, &fakeAccounts{}, nil)

	stats, err := profile.Stats(context.Background())
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	if stats.TotalProblems != 42 || stats.StreakDays != 5 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestUpdateProfileCachesLocally(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{}
	accounts := &fakeAccounts{}
	profile := NewProfile(api, accounts, nil)

	identity := domain.UserProfile{Nickname: "Sam", Avatar: "https://cdn/a.png"}
	if err := profile.UpdateProfile(context.Background(), identity); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	call, ok := api.lastCall()
	if !ok || call.method != "PUT" || call.path != "/api/user/profile" {
		t.Fatalf("unexpected request: %+v", call)
	}
	if cached, ok := profile.CachedProfile(); !ok || cached != identity {
		t.Fatalf("profile not cached: %+v ok=%v", cached, ok)
	}
}

func TestUpdateProfileServerFailureDoesNotCache(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{putErr: errors.New("boom")}
	accounts := &fakeAccounts{}
	profile := NewProfile(api, accounts, nil)

	if err := profile.UpdateProfile(context.Background(), domain.UserProfile{Nickname: "Sam"}); err == nil {
		t.Fatalf("expected error")
	}
	if accounts.hasProfile {
		t.Fatalf("rejected update must not be cached")
	}
}

func TestSubmitFeedback(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{}
	profile := NewProfile(api, &fakeAccounts{}, nil)

	if err := profile.SubmitFeedback(context.Background(), "more subjects please"); err != nil {
		t.Fatalf("feedback failed: %v", err)
	}
	call, _ := api.lastCall()
	body, ok := call.body.(map[string]string)
	if !ok || body["content"] != "more subjects please" || body["type"] != "suggestion" {
		t.Fatalf("unexpected body: %+v", call.body)
	}
}

func TestLogoutClearsSession(t *testing.T) {
	t.Parallel()

	accounts := &fakeAccounts{}
	profile := NewProfile(&fakeAPI{}, accounts, nil)

	profile.Logout()

	if accounts.cleared != 1 {
		t.Fatalf("expected one clear, got %d", accounts.cleared)
	}
}
