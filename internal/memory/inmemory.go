package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// InMemoryStore is a simple in-process store for local/dev use and tests.
type InMemoryStore struct {
	mu         sync.RWMutex
	nextTurnID int64
	nextMemID  int64
	turns      []ConversationTurn
	entries    []Entry
	profile    Profile
	hasProfile bool
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{nextTurnID: 1, nextMemID: 1}
}

func (s *InMemoryStore) SaveConversation(_ context.Context, userMessage, assistantResponse, convContext, taskType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns = append(s.turns, ConversationTurn{
		ID:                s.nextTurnID,
		Timestamp:         time.Now().UTC(),
		UserMessage:       userMessage,
		AssistantResponse: assistantResponse,
		Context:           convContext,
		TaskType:          taskType,
	})
	s.nextTurnID++
	return nil
}

func (s *InMemoryStore) RecentConversations(_ context.Context, limit int) ([]ConversationTurn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 {
		limit = 10
	}
	if limit > len(s.turns) {
		limit = len(s.turns)
	}
	out := make([]ConversationTurn, 0, limit)
	for i := len(s.turns) - 1; i >= len(s.turns)-limit; i-- {
		out = append(out, s.turns[i])
	}
	return out, nil
}

func (s *InMemoryStore) SaveMemory(_ context.Context, content string, category Category, importance int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, Entry{
		ID:         s.nextMemID,
		Timestamp:  time.Now().UTC(),
		Content:    content,
		Category:   category,
		Importance: clampImportance(importance),
	})
	s.nextMemID++
	return nil
}

func (s *InMemoryStore) Memories(_ context.Context, category Category, limit int) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 {
		limit = 10
	}
	out := make([]Entry, 0, len(s.entries))
	for _, e := range s.entries {
		if category != "" && e.Category != category {
			continue
		}
		out = append(out, e)
	}
	sortEntries(out)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *InMemoryStore) SearchMemories(_ context.Context, query string, limit int) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 {
		limit = 5
	}
	needle := strings.ToLower(query)
	out := make([]Entry, 0)
	for _, e := range s.entries {
		if strings.Contains(strings.ToLower(e.Content), needle) {
			out = append(out, e)
		}
	}
	sortEntries(out)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *InMemoryStore) DeleteMemory(_ context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, e := range s.entries {
		if e.ID == id {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (s *InMemoryStore) SaveProfile(_ context.Context, p Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasProfile {
		p.ID = 1
		p.LastUpdated = time.Now().UTC()
		s.profile = p
		s.hasProfile = true
		return nil
	}
	merged := mergeProfile(s.profile, p)
	merged.LastUpdated = time.Now().UTC()
	s.profile = merged
	return nil
}

func (s *InMemoryStore) Profile(_ context.Context) (Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.hasProfile {
		return Profile{}, ErrNoProfile
	}
	return s.profile, nil
}

func (s *InMemoryStore) Close() error { return nil }

// sortEntries orders by importance desc, then timestamp desc, then newest id
// first so same-instant inserts stay deterministic.
func sortEntries(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Importance != entries[j].Importance {
			return entries[i].Importance > entries[j].Importance
		}
		if !entries[i].Timestamp.Equal(entries[j].Timestamp) {
			return entries[i].Timestamp.After(entries[j].Timestamp)
		}
		return entries[i].ID > entries[j].ID
	})
}
