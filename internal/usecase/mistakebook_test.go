package usecase

import (
	"context"
	"testing"

	"tutorlens/internal/domain"
)

func TestMistakeBookListFullPage(t *testing.T) {
	t.Parallel()

	entries := make([]domain.MistakeEntry, 20)
	for i := range entries {
		entries[i] = domain.MistakeEntry{ID: "e", Subject: "math"}
	}
	api := &fakeAPI{getData: map[string]any{"problems": entries}}
	book := NewMistakeBook(api, nil)

	got, hasMore, err := book.List(context.Background(), "math", 1, 20)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(got) != 20 || !hasMore {
		t.Fatalf("expected full page with more, got %d hasMore=%v", len(got), hasMore)
	}

	call, ok := api.lastCall()
	if !ok || call.path != "/api/mistake-book/problems?page=1&pageSize=20&subject=math" {
		t.Fatalf("unexpected request: %+v", call)
	}
}

func TestMistakeBookListShortPage(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{getData: map[string]any{"problems": []domain.MistakeEntry{
		{ID: "e1", Subject: "math"},
	}}}
	book := NewMistakeBook(api, nil)

	got, hasMore, err := book.List(context.Background(), "math", 1, 20)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(got) != 1 || hasMore {
		t.Fatalf("short page must end paging, got %d hasMore=%v", len(got), hasMore)
	}
}

func TestMistakeBookListDefaults(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{}
	book := NewMistakeBook(api, nil)

	if _, _, err := book.List(context.Background(), "math", 0, 0); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	call, ok := api.lastCall()
	if !ok || call.path != "/api/mistake-book/problems?page=1&pageSize=20&subject=math" {
		t.Fatalf("defaults not applied: %+v", call)
	}
}

func TestMistakeBookRemove(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{}
	book := NewMistakeBook(api, nil)

	if err := book.Remove(context.Background(), "e1"); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	call, ok := api.lastCall()
	if !ok || call.method != "DELETE" || call.path != "/api/mistake-book/problems/e1" {
		t.Fatalf("unexpected request: %+v", call)
	}
}
