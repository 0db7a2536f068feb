package assistant

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/secondbrain/secondbrain/internal/brain"
	"github.com/secondbrain/secondbrain/internal/memory"
	"github.com/secondbrain/secondbrain/internal/reports"
	"github.com/secondbrain/secondbrain/internal/search"
)

const memoryHelp = `Memory commands:
- memory                 show memory summary
- memory search <query>  search memories
- memory add <content>   add a new memory
- memory delete <id>     delete a memory by id
- memory summary         show memory summary`

func (a *Assistant) handleMemoryCommand(ctx context.Context, message string) string {
	fields := strings.Fields(message)
	if len(fields) == 1 {
		return a.memorySummary(ctx)
	}

	command := strings.ToLower(fields[1])
	rest := strings.TrimSpace(strings.Join(fields[2:], " "))

	switch {
	case command == "summary":
		return a.memorySummary(ctx)

	case command == "search" && rest != "":
		entries, err := a.store.SearchMemories(ctx, rest, 5)
		if err != nil {
			return fmt.Sprintf("Memory search failed: %v", err)
		}
		return memory.FormatSearchResults(rest, entries)

	case command == "add" && rest != "":
		category, importance := classifyManualMemory(rest)
		if err := a.store.SaveMemory(ctx, rest, category, importance); err != nil {
			return fmt.Sprintf("Couldn't save that memory: %v", err)
		}
		a.assembler.Invalidate()
		return fmt.Sprintf("Memory saved: %s", clip(rest, 50))

	case command == "delete" && rest != "":
		id, err := strconv.ParseInt(rest, 10, 64)
		if err != nil {
			return "Please provide a valid memory id number."
		}
		removed, err := a.store.DeleteMemory(ctx, id)
		if err != nil {
			return fmt.Sprintf("Couldn't delete memory %d: %v", id, err)
		}
		if !removed {
			return fmt.Sprintf("Memory %d not found.", id)
		}
		a.assembler.Invalidate()
		return fmt.Sprintf("Memory %d deleted.", id)

	default:
		return memoryHelp
	}
}

func (a *Assistant) memorySummary(ctx context.Context) string {
	entries, err := a.store.Memories(ctx, "", 50)
	if err != nil {
		return fmt.Sprintf("Couldn't load memories: %v", err)
	}
	return memory.Summary(entries)
}

// classifyManualMemory mirrors the heuristics used for "memory add":
// category and importance are inferred from the content itself.
func classifyManualMemory(content string) (memory.Category, int) {
	lower := strings.ToLower(content)

	category := memory.CategoryGeneral
	switch {
	case strings.Contains(lower, "personal"):
		category = memory.CategoryPersonal
	case strings.Contains(lower, "preference"):
		category = memory.CategoryPreference
	case strings.Contains(lower, "task"):
		category = memory.CategoryTask
	}

	importance := 1
	if strings.Contains(lower, "very important") {
		importance = 4
	} else if strings.Contains(lower, "important") {
		importance = 3
	}
	return category, importance
}

func (a *Assistant) handleReport(ctx context.Context, message string) string {
	request := strings.TrimSpace(message[len("/report "):])
	if request == "" {
		return "Tell me what to report on, like /report the history of computing."
	}

	title, sections, ok := parseCustomReport(request)
	if !ok {
		var err error
		title, sections, err = a.researchReport(ctx, request)
		if err != nil {
			return apologyReply
		}
	}

	path, err := a.reports.Generate(title, sections)
	if err != nil {
		return fmt.Sprintf("I wrote the report but couldn't save the PDF: %v", err)
	}

	reply := fmt.Sprintf("Report saved to %s", path)
	a.finishTurn(ctx, message, reply, "", string(IntentReport))
	return reply
}

// parseCustomReport handles the "title: ... content: ..." and
// "title: ... sections: a, b, c" request forms.
func parseCustomReport(request string) (string, []reports.Section, bool) {
	lower := strings.ToLower(request)
	titleIdx := strings.Index(lower, "title:")
	if titleIdx != 0 {
		return "", nil, false
	}

	rest := request[len("title:"):]
	lowerRest := strings.ToLower(rest)

	if idx := strings.Index(lowerRest, "content:"); idx >= 0 {
		title := strings.TrimSpace(rest[:idx])
		body := strings.TrimSpace(rest[idx+len("content:"):])
		if title == "" || body == "" {
			return "", nil, false
		}
		return title, []reports.Section{{Name: title, Body: body}}, true
	}

	if idx := strings.Index(lowerRest, "sections:"); idx >= 0 {
		title := strings.TrimSpace(rest[:idx])
		var sections []reports.Section
		for _, name := range strings.Split(rest[idx+len("sections:"):], ",") {
			if n := strings.TrimSpace(name); n != "" {
				sections = append(sections, reports.Section{Name: n, Body: ""})
			}
		}
		if title == "" || len(sections) == 0 {
			return "", nil, false
		}
		return title, sections, true
	}

	return "", nil, false
}

// researchReport gathers web context and asks the LLM to draft each
// section. Search failure degrades to a model-knowledge-only report.
func (a *Assistant) researchReport(ctx context.Context, topic string) (string, []reports.Section, error) {
	webContext := ""
	if results, err := a.searcher.Search(ctx, topic, a.searchResults); err == nil && len(results) > 0 {
		webContext = search.FormatResults(results)
	}

	sectionNames := []string{"Introduction", "Key Findings", "Conclusion"}
	sections := make([]reports.Section, 0, len(sectionNames))
	for _, name := range sectionNames {
		sectionPrompt := fmt.Sprintf("Write the %q section of a formal report on: %s.", name, topic)
		if webContext != "" {
			sectionPrompt += "\n\nUse these web search results where relevant:\n" + webContext
		}
		text, ok := a.complete(ctx, brain.Request{Prompt: sectionPrompt, Temperature: 0.5, MaxTokens: 1200})
		if !ok {
			return "", nil, fmt.Errorf("draft section %q", name)
		}
		sections = append(sections, reports.Section{Name: name, Body: text})
	}
	return topic, sections, nil
}

func clip(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
