// Package assistant routes incoming messages to the right handler: local
// time/date answers, memory commands, web search, report generation, or a
// plain LLM conversation with assembled context. It owns the response cache
// and the background memory-extraction pool.
package assistant

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/secondbrain/secondbrain/internal/brain"
	"github.com/secondbrain/secondbrain/internal/cache"
	"github.com/secondbrain/secondbrain/internal/memory"
	"github.com/secondbrain/secondbrain/internal/observability"
	"github.com/secondbrain/secondbrain/internal/prompt"
	"github.com/secondbrain/secondbrain/internal/reports"
	"github.com/secondbrain/secondbrain/internal/search"
	"github.com/secondbrain/secondbrain/internal/weather"
)

const apologyReply = "I'm having trouble processing that right now. Please try again in a moment."

// Intent identifies the branch a message is routed to.
type Intent string

const (
	IntentExplain      Intent = "explain"
	IntentReport       Intent = "report"
	IntentMemory       Intent = "memory"
	IntentTime         Intent = "time"
	IntentDate         Intent = "date"
	IntentWeather      Intent = "weather"
	IntentSearch       Intent = "search"
	IntentConversation Intent = "conversation"
)

// Config wires an Assistant.
type Config struct {
	Store     memory.Store
	Brain     brain.Brain
	Searcher  search.Searcher
	Weather   weather.Provider
	Assembler *prompt.Assembler
	Reports   *reports.Generator
	Metrics   *observability.Metrics

	ResponseCacheSize int
	MemoryWorkers     int
	SearchResults     int
}

// Assistant is the conversation orchestrator.
type Assistant struct {
	store         memory.Store
	brain         brain.Brain
	searcher      search.Searcher
	weather       weather.Provider
	assembler     *prompt.Assembler
	reports       *reports.Generator
	metrics       *observability.Metrics
	respCache     *cache.ResponseCache
	pool          *workerPool
	searchResults int
	now           func() time.Time
}

func New(cfg Config) *Assistant {
	a := &Assistant{
		store:         cfg.Store,
		brain:         cfg.Brain,
		searcher:      cfg.Searcher,
		weather:       cfg.Weather,
		assembler:     cfg.Assembler,
		reports:       cfg.Reports,
		metrics:       cfg.Metrics,
		respCache:     cache.NewResponseCache(cfg.ResponseCacheSize),
		searchResults: cfg.SearchResults,
		now:           time.Now,
	}
	if a.assembler == nil {
		a.assembler = prompt.NewAssembler(cfg.Store)
	}
	if a.searchResults <= 0 {
		a.searchResults = 3
	}
	var onDrop func()
	if a.metrics != nil {
		onDrop = func() { a.metrics.QueueDrops.Inc() }
	}
	a.pool = newWorkerPool(cfg.MemoryWorkers, 64, onDrop)
	return a
}

// Close drains the background pool.
func (a *Assistant) Close() {
	a.pool.Close()
}

// Process routes a message and returns the user-visible reply. Failures
// never escape as errors; they degrade to apologetic or informative text.
// Compound messages are split into individual questions and each is routed
// on its own; the replies are joined in order.
func (a *Assistant) Process(ctx context.Context, message string) string {
	message = strings.TrimSpace(message)
	if message == "" {
		return "Say something and I'll do my best to help."
	}

	questions := a.splitQuestions(ctx, message)
	if len(questions) == 1 {
		return a.processSingle(ctx, questions[0])
	}

	replies := make([]string, 0, len(questions))
	for _, q := range questions {
		replies = append(replies, a.processSingle(ctx, q))
	}
	return strings.Join(replies, "\n\n")
}

func (a *Assistant) processSingle(ctx context.Context, message string) string {
	intent := classifyIntent(message)
	a.countIntent(intent)
	slog.Debug("processing message", "intent", intent, "message", redactForLog(message))

	switch intent {
	case IntentExplain:
		return a.handleExplain(ctx, message)
	case IntentReport:
		return a.handleReport(ctx, message)
	case IntentMemory:
		return a.handleMemoryCommand(ctx, message)
	case IntentDate:
		return a.now().Format("Monday, January 2, 2006")
	case IntentTime:
		return a.now().Format("3:04 PM")
	case IntentWeather:
		return a.handleWeather(ctx, message)
	case IntentSearch:
		return a.handleSearch(ctx, message)
	default:
		return a.handleConversation(ctx, message)
	}
}

// classifyIntent tests intents in priority order; the first match wins.
func classifyIntent(message string) Intent {
	lower := strings.ToLower(strings.TrimSpace(message))

	switch {
	case strings.HasPrefix(lower, "/explain "):
		return IntentExplain
	case strings.HasPrefix(lower, "/report "):
		return IntentReport
	case lower == "memory" || strings.HasPrefix(lower, "memory "):
		return IntentMemory
	}

	// Date wins when a message matches both kinds of trigger ("what's the
	// date and time").
	if lower == "date" || containsAny(lower, dateTriggers) {
		return IntentDate
	}
	if lower == "time" || containsAny(lower, timeTriggers) {
		return IntentTime
	}
	if weatherTriggers.MatchString(lower) {
		return IntentWeather
	}
	if strings.HasPrefix(lower, "/search ") {
		return IntentSearch
	}
	return IntentConversation
}

var timeTriggers = []string{
	"what time", "current time", "tell me the time", "the time?",
}

var dateTriggers = []string{
	"what is the date", "what's the date", "current date", "tell me the date",
	"today's date", "current day",
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

func (a *Assistant) handleConversation(ctx context.Context, message string) string {
	convContext, err := a.assembler.Context(ctx)
	if err != nil {
		slog.Error("context assembly failed", "error", err)
		convContext = ""
	}

	if cached, ok := a.respCache.Get(message, convContext); ok {
		a.countCache(true)
		a.finishTurn(ctx, message, cached, convContext, string(IntentConversation))
		return cached
	}
	a.countCache(false)

	fullPrompt := message
	if convContext != "" {
		fullPrompt = fmt.Sprintf("Context: %s\n\nUser: %s", convContext, message)
	}

	reply, ok := a.complete(ctx, brain.Request{
		Prompt:      fullPrompt,
		Temperature: 0.7,
		MaxTokens:   1000,
	})
	if !ok {
		return apologyReply
	}

	a.respCache.Put(message, convContext, reply)
	a.finishTurn(ctx, message, reply, convContext, string(IntentConversation))
	return reply
}

func (a *Assistant) handleSearch(ctx context.Context, message string) string {
	query := strings.TrimSpace(message[len("/search "):])
	if query == "" {
		return "Give me something to search for, like /search latest go release."
	}

	results, err := a.searcher.Search(ctx, query, a.searchResults)
	if err != nil {
		slog.Warn("web search failed", "query", query, "error", err)
	}
	if len(results) == 0 {
		return fmt.Sprintf("I couldn't find any information about %q.", query)
	}

	searchPrompt := fmt.Sprintf(
		"Based ONLY on the following web search results, answer the user's question directly and clearly. "+
			"If the answer is not found, reply: 'Not found in search results.'\n\nWeb Results:\n%s\nUser Question: %s\nDirect Answer:",
		search.FormatResults(results), query)

	reply, ok := a.complete(ctx, brain.Request{Prompt: searchPrompt, Temperature: 0.7, MaxTokens: 1000})
	if !ok {
		return apologyReply
	}
	a.finishTurn(ctx, message, reply, "", string(IntentSearch))
	return reply
}

func (a *Assistant) handleExplain(ctx context.Context, message string) string {
	topic := strings.TrimSpace(message[len("/explain "):])
	if topic == "" {
		return "Tell me what to explain, like /explain binary search."
	}

	// Optional "; for X marks" and "; format: ..." qualifiers.
	parts := strings.Split(topic, ";")
	subject := strings.TrimSpace(parts[0])
	var qualifiers []string
	for _, p := range parts[1:] {
		if q := strings.TrimSpace(p); q != "" {
			qualifiers = append(qualifiers, q)
		}
	}

	explainPrompt := fmt.Sprintf("Provide a clear, structured, detailed explanation of: %s.", subject)
	if len(qualifiers) > 0 {
		explainPrompt += " Requirements: " + strings.Join(qualifiers, "; ") + "."
	}

	reply, ok := a.complete(ctx, brain.Request{Prompt: explainPrompt, Temperature: 0.5, MaxTokens: 1500})
	if !ok {
		return apologyReply
	}
	a.finishTurn(ctx, message, reply, "", string(IntentExplain))
	return reply
}

// complete calls the brain and reports success, observing latency and
// errors on the way.
func (a *Assistant) complete(ctx context.Context, req brain.Request) (string, bool) {
	start := a.now()
	resp, err := a.brain.Complete(ctx, req)
	if a.metrics != nil {
		a.metrics.ObserveBrainLatency(time.Since(start))
	}
	if err != nil {
		if a.metrics != nil {
			a.metrics.BrainErrors.Inc()
		}
		slog.Warn("brain completion failed", "error", err)
		return "", false
	}
	return resp.Text, true
}

// finishTurn persists the exchange synchronously and hands memory
// extraction to the background pool. The extraction write is best-effort:
// failures are logged and dropped, never retried.
func (a *Assistant) finishTurn(ctx context.Context, userMessage, reply, convContext, taskType string) {
	if err := a.store.SaveConversation(ctx, userMessage, reply, convContext, taskType); err != nil {
		slog.Error("conversation save failed", "error", err)
	}

	a.pool.Submit(func() {
		bgCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		a.extractMemory(bgCtx, userMessage, reply)
	})
}

func (a *Assistant) countIntent(intent Intent) {
	if a.metrics != nil {
		a.metrics.Intents.WithLabelValues(string(intent)).Inc()
	}
}

func (a *Assistant) countCache(hit bool) {
	if a.metrics == nil {
		return
	}
	if hit {
		a.metrics.CacheHits.Inc()
	} else {
		a.metrics.CacheMisses.Inc()
	}
}
