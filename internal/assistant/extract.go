package assistant

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	"github.com/secondbrain/secondbrain/internal/memory"
)

var memoryKeywords = []string{
	"remember this", "save this", "important", "note this", "memorize", "keep in mind",
}

var personalKeywords = []string{
	"my name is", "i am", "i'm", "i work", "i live", "my birthday", "my age",
}

var preferenceKeywords = []string{
	"i like", "i prefer", "i don't like", "i hate", "favorite", "least favorite",
}

var explanationKeywords = []string{
	"explain", "teach", "how", "what is", "why",
}

var (
	namePattern     = regexp.MustCompile(`(?i)\bmy name is\s+([a-z][a-z'-]*)`)
	birthdayPattern = regexp.MustCompile(`(?i)\bmy birthday is\s+(?:on\s+)?([a-z0-9 ,/-]+)`)
	agePattern      = regexp.MustCompile(`(?i)\b(?:i am|i'm)\s+(\d{1,3})\s+years?\s+old\b`)
)

// extractMemory applies the retention heuristics to a completed exchange.
// It runs on the background pool; save errors are logged and dropped.
func (a *Assistant) extractMemory(ctx context.Context, userMessage, assistantResponse string) {
	lower := strings.ToLower(userMessage)

	switch {
	case containsAny(lower, memoryKeywords):
		a.saveExtracted(ctx, userMessage, memory.CategoryUserRequest, 3)

	case containsAny(lower, personalKeywords):
		a.saveExtracted(ctx, "Personal info: "+userMessage, memory.CategoryPersonal, 3)
		a.updateProfile(ctx, userMessage)

	case containsAny(lower, preferenceKeywords):
		a.saveExtracted(ctx, "Preference: "+userMessage, memory.CategoryPreference, 2)

	case len(assistantResponse) > 150 && containsAny(lower, explanationKeywords):
		if key := keyPoint(assistantResponse); key != "" {
			a.saveExtracted(ctx, "Explanation: "+key, memory.CategoryExplanation, 1)
		}
	}
}

func (a *Assistant) saveExtracted(ctx context.Context, content string, category memory.Category, importance int) {
	outcome := "saved"
	if err := a.store.SaveMemory(ctx, content, category, importance); err != nil {
		outcome = "failed"
		slog.Warn("memory extraction save failed", "error", err)
	}
	if a.metrics != nil {
		a.metrics.MemoryExtractions.WithLabelValues(outcome).Inc()
	}
}

// updateProfile parses personal statements into profile fields and merges
// them into the stored profile.
func (a *Assistant) updateProfile(ctx context.Context, message string) {
	var p memory.Profile
	if m := namePattern.FindStringSubmatch(message); m != nil {
		p.Name = titleCaseName(m[1])
	}
	if m := birthdayPattern.FindStringSubmatch(message); m != nil {
		p.Birthday = strings.TrimSpace(m[1])
	}
	if m := agePattern.FindStringSubmatch(message); m != nil {
		p.Age = m[1]
	}

	if p == (memory.Profile{}) {
		return
	}
	if err := a.store.SaveProfile(ctx, p); err != nil {
		slog.Warn("profile update failed", "error", err)
	}
}

// keyPoint takes the first substantial sentence of a longer explanation.
func keyPoint(text string) string {
	sentences := strings.SplitN(text, ".", 2)
	first := strings.TrimSpace(sentences[0])
	if len(first) > 20 {
		return first
	}
	return ""
}

func titleCaseName(name string) string {
	if name == "" {
		return name
	}
	return strings.ToUpper(name[:1]) + strings.ToLower(name[1:])
}
