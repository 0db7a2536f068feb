package assistant

import "regexp"

var (
	emailRe = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	cardRe  = regexp.MustCompile(`\b(?:\d[ -]*?){13,19}\b`)
	phoneRe = regexp.MustCompile(`\+?[0-9][0-9\-() ]{7,}[0-9]`)
)

// redactForLog masks emails, card numbers, and phone numbers so message
// text can appear in logs without leaking what users tell the assistant.
// Card runs before phone so long digit strings are not misclassified.
func redactForLog(s string) string {
	out := emailRe.ReplaceAllString(s, "[email]")
	out = cardRe.ReplaceAllString(out, "[card]")
	out = phoneRe.ReplaceAllString(out, "[phone]")
	return out
}
