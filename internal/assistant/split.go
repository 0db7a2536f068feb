package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/secondbrain/secondbrain/internal/brain"
)

const splitPromptFmt = `You are a text-processing utility. Analyze the following user message and split it into individual, self-contained questions or statements.
Return the output as a single, raw JSON-formatted list of strings. Do not include any other text or formatting.

- If there is only one question, return a list with a single string.
- Split compound sentences into separate items.
- Preserve the original phrasing.

User Message:
%q

JSON Output:`

var jsonListRe = regexp.MustCompile(`(?s)\[.*\]`)

// splitQuestions breaks a compound message into individual questions via
// one model call. Every failure mode falls back to treating the whole
// message as a single question: prefix commands are never split, short
// simple messages skip the model call, and an unparseable model reply
// degrades to the original message.
func (a *Assistant) splitQuestions(ctx context.Context, message string) []string {
	whole := []string{message}
	lower := strings.ToLower(message)

	if strings.HasPrefix(lower, "/") || lower == "memory" || strings.HasPrefix(lower, "memory ") {
		return whole
	}
	if len(strings.Fields(message)) < 7 &&
		!strings.Contains(lower, " and ") &&
		!strings.Contains(message[1:], "?") {
		return whole
	}

	reply, ok := a.complete(ctx, brain.Request{
		Prompt:      fmt.Sprintf(splitPromptFmt, message),
		Temperature: 0,
		MaxTokens:   500,
	})
	if !ok {
		return whole
	}

	raw := jsonListRe.FindString(reply)
	if raw == "" {
		return whole
	}
	var questions []string
	if err := json.Unmarshal([]byte(raw), &questions); err != nil {
		return whole
	}

	out := make([]string, 0, len(questions))
	for _, q := range questions {
		if q = strings.TrimSpace(q); q != "" {
			out = append(out, q)
		}
	}
	if len(out) == 0 {
		return whole
	}
	return out
}
