package memory

import (
	"context"
	"testing"
)

func TestMemoriesSortedByImportanceThenRecency(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()

	if err := s.SaveMemory(ctx, "low first", CategoryGeneral, 1); err != nil {
		t.Fatalf("SaveMemory() error = %v", err)
	}
	if err := s.SaveMemory(ctx, "high", CategoryGeneral, 4); err != nil {
		t.Fatalf("SaveMemory() error = %v", err)
	}
	if err := s.SaveMemory(ctx, "low second", CategoryGeneral, 1); err != nil {
		t.Fatalf("SaveMemory() error = %v", err)
	}

	got, err := s.Memories(ctx, "", 10)
	if err != nil {
		t.Fatalf("Memories() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("Memories() returned %d entries, want 3", len(got))
	}
	if got[0].Content != "high" {
		t.Fatalf("first entry = %q, want highest importance first", got[0].Content)
	}
	if got[1].Content != "low second" {
		t.Fatalf("second entry = %q, want more recent of the ties", got[1].Content)
	}
}

func TestMemoriesFiltersByCategory(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()
	mustSave(t, s, "fact", CategoryGeneral, 1)
	mustSave(t, s, "likes tea", CategoryPreference, 2)

	got, err := s.Memories(ctx, CategoryPreference, 10)
	if err != nil {
		t.Fatalf("Memories() error = %v", err)
	}
	if len(got) != 1 || got[0].Category != CategoryPreference {
		t.Fatalf("Memories(preference) = %+v, want single preference entry", got)
	}
}

func TestMemoriesRespectsLimit(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()
	for i := 0; i < 20; i++ {
		mustSave(t, s, "entry", CategoryGeneral, 1)
	}
	got, err := s.Memories(ctx, "", 5)
	if err != nil {
		t.Fatalf("Memories() error = %v", err)
	}
	if len(got) != 5 {
		t.Fatalf("Memories() returned %d entries, want 5", len(got))
	}
}

func TestSearchMemoriesCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()
	mustSave(t, s, "I like pizza", CategoryPreference, 2)

	got, err := s.SearchMemories(ctx, "PIZZA", 5)
	if err != nil {
		t.Fatalf("SearchMemories() error = %v", err)
	}
	if len(got) != 1 || got[0].Content != "I like pizza" {
		t.Fatalf("SearchMemories(PIZZA) = %+v, want the pizza entry", got)
	}
}

func TestSearchMemoriesNoMatchIsEmptyNotError(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()
	mustSave(t, s, "something", CategoryGeneral, 1)

	got, err := s.SearchMemories(ctx, "nothing-matches-this", 5)
	if err != nil {
		t.Fatalf("SearchMemories() error = %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("SearchMemories() = %+v, want empty", got)
	}
}

func TestDeleteMemoryIdempotent(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()
	mustSave(t, s, "disposable", CategoryGeneral, 1)

	all, err := s.Memories(ctx, "", 10)
	if err != nil {
		t.Fatalf("Memories() error = %v", err)
	}
	id := all[0].ID

	removed, err := s.DeleteMemory(ctx, id)
	if err != nil {
		t.Fatalf("DeleteMemory() error = %v", err)
	}
	if !removed {
		t.Fatalf("DeleteMemory(%d) = false, want true", id)
	}

	removed, err = s.DeleteMemory(ctx, id)
	if err != nil {
		t.Fatalf("DeleteMemory() second call error = %v", err)
	}
	if removed {
		t.Fatalf("DeleteMemory(%d) second call = true, want false", id)
	}

	rest, err := s.Memories(ctx, "", 10)
	if err != nil {
		t.Fatalf("Memories() error = %v", err)
	}
	if len(rest) != 0 {
		t.Fatalf("row count after delete = %d, want 0", len(rest))
	}
}

func TestDeleteMemoryUnknownIDReportsFalse(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()
	removed, err := s.DeleteMemory(ctx, 12345)
	if err != nil {
		t.Fatalf("DeleteMemory() error = %v", err)
	}
	if removed {
		t.Fatalf("DeleteMemory(unknown) = true, want false")
	}
}

func TestImportanceClampedOnWrite(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()
	mustSave(t, s, "too high", CategoryGeneral, 9)
	mustSave(t, s, "too low", CategoryGeneral, -1)

	got, err := s.Memories(ctx, "", 10)
	if err != nil {
		t.Fatalf("Memories() error = %v", err)
	}
	for _, e := range got {
		if e.Importance < MinImportance || e.Importance > MaxImportance {
			t.Fatalf("importance %d out of range for %q", e.Importance, e.Content)
		}
	}
}

func TestProfilePartialMerge(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()

	if err := s.SaveProfile(ctx, Profile{Name: "Sam"}); err != nil {
		t.Fatalf("SaveProfile() error = %v", err)
	}
	if err := s.SaveProfile(ctx, Profile{Birthday: "Jan 1"}); err != nil {
		t.Fatalf("SaveProfile() error = %v", err)
	}

	p, err := s.Profile(ctx)
	if err != nil {
		t.Fatalf("Profile() error = %v", err)
	}
	if p.Name != "Sam" {
		t.Fatalf("Name = %q, want %q (merge must not overwrite)", p.Name, "Sam")
	}
	if p.Birthday != "Jan 1" {
		t.Fatalf("Birthday = %q, want %q", p.Birthday, "Jan 1")
	}
	if p.LastUpdated.IsZero() {
		t.Fatalf("LastUpdated should be stamped")
	}
}

func TestProfileAbsentSentinel(t *testing.T) {
	s := NewInMemoryStore()
	if _, err := s.Profile(context.Background()); err != ErrNoProfile {
		t.Fatalf("Profile() error = %v, want ErrNoProfile", err)
	}
}

func TestRecentConversationsNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()
	for _, msg := range []string{"first", "second", "third"} {
		if err := s.SaveConversation(ctx, msg, "ok", "", ""); err != nil {
			t.Fatalf("SaveConversation() error = %v", err)
		}
	}

	got, err := s.RecentConversations(ctx, 2)
	if err != nil {
		t.Fatalf("RecentConversations() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("RecentConversations() returned %d turns, want 2", len(got))
	}
	if got[0].UserMessage != "third" || got[1].UserMessage != "second" {
		t.Fatalf("turns = [%q %q], want newest first", got[0].UserMessage, got[1].UserMessage)
	}
}

func mustSave(t *testing.T, s Store, content string, category Category, importance int) {
	t.Helper()
	if err := s.SaveMemory(context.Background(), content, category, importance); err != nil {
		t.Fatalf("SaveMemory(%q) error = %v", content, err)
	}
}
