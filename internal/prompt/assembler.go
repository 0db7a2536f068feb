// Package prompt builds the bounded text context injected into LLM prompts:
// profile facts, a window of recent turns, and the top memories by
// importance. The counts are fixed configuration; there is no token-budget
// accounting.
package prompt

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/secondbrain/secondbrain/internal/memory"
)

const (
	DefaultMaxTurns    = 5
	DefaultMaxMemories = 10
	DefaultCacheTTL    = 30 * time.Second
)

// Assembler produces the context blob for each non-search LLM request.
// The assembled result is memoized for a short TTL so bursts of messages
// do not re-query the store; staleness within the TTL is accepted.
type Assembler struct {
	store       memory.Store
	maxTurns    int
	maxMemories int
	ttl         time.Duration

	mu       sync.Mutex
	cached   string
	cachedAt time.Time
	now      func() time.Time
}

type Option func(*Assembler)

func WithMaxTurns(n int) Option {
	return func(a *Assembler) {
		if n > 0 {
			a.maxTurns = n
		}
	}
}

func WithMaxMemories(n int) Option {
	return func(a *Assembler) {
		if n > 0 {
			a.maxMemories = n
		}
	}
}

func WithCacheTTL(d time.Duration) Option {
	return func(a *Assembler) { a.ttl = d }
}

func withClock(now func() time.Time) Option {
	return func(a *Assembler) { a.now = now }
}

func NewAssembler(store memory.Store, opts ...Option) *Assembler {
	a := &Assembler{
		store:       store,
		maxTurns:    DefaultMaxTurns,
		maxMemories: DefaultMaxMemories,
		ttl:         DefaultCacheTTL,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Context returns the bounded context string, serving a memoized copy when
// one was assembled within the TTL.
func (a *Assembler) Context(ctx context.Context) (string, error) {
	a.mu.Lock()
	if a.ttl > 0 && !a.cachedAt.IsZero() && a.now().Sub(a.cachedAt) < a.ttl {
		out := a.cached
		a.mu.Unlock()
		return out, nil
	}
	a.mu.Unlock()

	assembled, err := a.assemble(ctx)
	if err != nil {
		return "", err
	}

	a.mu.Lock()
	a.cached = assembled
	a.cachedAt = a.now()
	a.mu.Unlock()
	return assembled, nil
}

// Invalidate drops the memoized context so the next call re-queries the
// store. Used after writes that should be visible immediately.
func (a *Assembler) Invalidate() {
	a.mu.Lock()
	a.cachedAt = time.Time{}
	a.cached = ""
	a.mu.Unlock()
}

func (a *Assembler) assemble(ctx context.Context) (string, error) {
	var parts []string

	profile, err := a.store.Profile(ctx)
	switch {
	case errors.Is(err, memory.ErrNoProfile):
		// No profile yet; skip the section.
	case err != nil:
		return "", fmt.Errorf("assemble context: %w", err)
	default:
		if section := profileSection(profile); section != "" {
			parts = append(parts, section)
		}
	}

	turns, err := a.store.RecentConversations(ctx, a.maxTurns)
	if err != nil {
		return "", fmt.Errorf("assemble context: %w", err)
	}
	if len(turns) > 0 {
		var b strings.Builder
		b.WriteString("Recent conversations:")
		// Store returns newest first; render the window oldest first so the
		// prompt reads chronologically.
		for i := len(turns) - 1; i >= 0; i-- {
			fmt.Fprintf(&b, "\nUser: %s", turns[i].UserMessage)
			fmt.Fprintf(&b, "\nAssistant: %s", turns[i].AssistantResponse)
		}
		parts = append(parts, b.String())
	}

	memories, err := a.store.Memories(ctx, "", a.maxMemories)
	if err != nil {
		return "", fmt.Errorf("assemble context: %w", err)
	}
	if len(memories) > 0 {
		var b strings.Builder
		b.WriteString("Important memories:")
		for _, m := range memories {
			fmt.Fprintf(&b, "\n- %s", m.Content)
		}
		parts = append(parts, b.String())
	}

	return strings.Join(parts, "\n\n"), nil
}

func profileSection(p memory.Profile) string {
	var lines []string
	if p.Name != "" {
		lines = append(lines, "Name: "+p.Name)
	}
	if p.Birthday != "" {
		lines = append(lines, "Birthday: "+p.Birthday)
	}
	if p.Friends != "" {
		lines = append(lines, "Friends: "+p.Friends)
	}
	if p.Interests != "" {
		lines = append(lines, "Interests: "+p.Interests)
	}
	if len(lines) == 0 {
		return ""
	}
	return "User profile:\n" + strings.Join(lines, "\n")
}
