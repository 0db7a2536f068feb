package memory

import (
	"context"
	"errors"
	"time"
)

// Category tags a memory entry with the kind of fact it records.
type Category string

const (
	CategoryGeneral     Category = "general"
	CategoryPersonal    Category = "personal"
	CategoryPreference  Category = "preference"
	CategoryUserRequest Category = "user_request"
	CategoryExplanation Category = "explanation"
	CategoryTask        Category = "task"
)

// Importance bounds. Values outside the range are clamped on write.
const (
	MinImportance = 1
	MaxImportance = 4
)

// ErrNoProfile is returned by Profile when no profile has been saved yet.
var ErrNoProfile = errors.New("no user profile stored")

// ConversationTurn records a single completed user/assistant exchange.
// Turns are append-only and never deleted.
type ConversationTurn struct {
	ID                int64     `json:"id"`
	Timestamp         time.Time `json:"timestamp"`
	UserMessage       string    `json:"user_message"`
	AssistantResponse string    `json:"assistant_response"`
	Context           string    `json:"context,omitempty"`
	TaskType          string    `json:"task_type,omitempty"`
}

// Entry is a durable fact extracted from conversation.
type Entry struct {
	ID         int64     `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
	Content    string    `json:"content"`
	Category   Category  `json:"category"`
	Importance int       `json:"importance"`
}

// Profile is the singleton user profile. Saves merge field-wise: only
// non-empty incoming fields overwrite what is already stored.
type Profile struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name,omitempty"`
	Birthday       string    `json:"birthday,omitempty"`
	Age            string    `json:"age,omitempty"`
	Interests      string    `json:"interests,omitempty"`
	Friends        string    `json:"friends,omitempty"`
	ImportantDates string    `json:"important_dates,omitempty"`
	PersonalNotes  string    `json:"personal_notes,omitempty"`
	LastUpdated    time.Time `json:"last_updated"`
}

// Store persists conversation turns, memory entries, and the user profile.
// Every call is a complete durable unit; implementations must be safe for
// concurrent use.
type Store interface {
	SaveConversation(ctx context.Context, userMessage, assistantResponse, convContext, taskType string) error
	// RecentConversations returns up to limit turns, newest first.
	RecentConversations(ctx context.Context, limit int) ([]ConversationTurn, error)

	SaveMemory(ctx context.Context, content string, category Category, importance int) error
	// Memories returns entries ordered by importance desc then timestamp
	// desc, optionally filtered by category ("" means all).
	Memories(ctx context.Context, category Category, limit int) ([]Entry, error)
	// SearchMemories matches query case-insensitively against content.
	// No match yields an empty slice, not an error.
	SearchMemories(ctx context.Context, query string, limit int) ([]Entry, error)
	// DeleteMemory reports whether a row was actually removed. Deleting a
	// non-existent id is not an error.
	DeleteMemory(ctx context.Context, id int64) (bool, error)

	SaveProfile(ctx context.Context, p Profile) error
	Profile(ctx context.Context) (Profile, error)

	Close() error
}

// clampImportance keeps importance within [MinImportance, MaxImportance].
func clampImportance(importance int) int {
	if importance < MinImportance {
		return MinImportance
	}
	if importance > MaxImportance {
		return MaxImportance
	}
	return importance
}

// mergeProfile overlays non-empty fields of incoming onto existing.
func mergeProfile(existing, incoming Profile) Profile {
	out := existing
	if incoming.Name != "" {
		out.Name = incoming.Name
	}
	if incoming.Birthday != "" {
		out.Birthday = incoming.Birthday
	}
	if incoming.Age != "" {
		out.Age = incoming.Age
	}
	if incoming.Interests != "" {
		out.Interests = incoming.Interests
	}
	if incoming.Friends != "" {
		out.Friends = incoming.Friends
	}
	if incoming.ImportantDates != "" {
		out.ImportantDates = incoming.ImportantDates
	}
	if incoming.PersonalNotes != "" {
		out.PersonalNotes = incoming.PersonalNotes
	}
	return out
}
