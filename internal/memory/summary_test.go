package memory

import (
	"strings"
	"testing"
	"time"
)

func TestSummaryEmpty(t *testing.T) {
	if got := Summary(nil); got != "No memories stored yet." {
		t.Fatalf("Summary(nil) = %q", got)
	}
}

func TestSummaryKeepsTopThreePerCategory(t *testing.T) {
	now := time.Now().UTC()
	entries := []Entry{
		{ID: 1, Content: "one", Category: CategoryGeneral, Importance: 1, Timestamp: now},
		{ID: 2, Content: "two", Category: CategoryGeneral, Importance: 2, Timestamp: now},
		{ID: 3, Content: "three", Category: CategoryGeneral, Importance: 3, Timestamp: now},
		{ID: 4, Content: "four", Category: CategoryGeneral, Importance: 4, Timestamp: now},
	}

	out := Summary(entries)
	if strings.Contains(out, "[1] one") {
		t.Fatalf("summary should drop the least important entry beyond the top 3:\n%s", out)
	}
	for _, want := range []string{"[4] four", "[3] three", "[2] two"} {
		if !strings.Contains(out, want) {
			t.Fatalf("summary missing %q:\n%s", want, out)
		}
	}
	if !strings.Contains(out, "(4 items)") {
		t.Fatalf("summary should report the full category count:\n%s", out)
	}
}

func TestSummaryTruncatesLongContent(t *testing.T) {
	long := strings.Repeat("x", 150)
	out := Summary([]Entry{{ID: 1, Content: long, Category: CategoryGeneral, Importance: 1}})
	if strings.Contains(out, long) {
		t.Fatalf("summary should truncate long content")
	}
	if !strings.Contains(out, strings.Repeat("x", 100)+"...") {
		t.Fatalf("summary should mark truncation with an ellipsis:\n%s", out)
	}
}

func TestFormatSearchResultsNoMatch(t *testing.T) {
	out := FormatSearchResults("pizza", nil)
	if !strings.Contains(out, "No memories found") {
		t.Fatalf("FormatSearchResults() = %q, want no-results message", out)
	}
}

func TestFormatSearchResultsListsEntries(t *testing.T) {
	out := FormatSearchResults("pizza", []Entry{
		{ID: 7, Content: "I like pizza", Category: CategoryPreference, Importance: 2},
	})
	if !strings.Contains(out, "[7] I like pizza (preference) **") {
		t.Fatalf("FormatSearchResults() = %q", out)
	}
}
