package ai

import (
	"regexp"
	"strings"
)

// Activation phrases that route free-form text into plan generation.
// Word-boundary anchored so "replanning" and similar do not trigger.
var activationPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(^|\s)план на месяц(\s|$)`),
	regexp.MustCompile(`(?i)(^|\s)план на неделю(\s|$)`),
	regexp.MustCompile(`(?i)(^|\s)создай задачу(\s|$)`),
	regexp.MustCompile(`(?i)(^|\s)создать задачу(\s|$)`),
	regexp.MustCompile(`(?i)(^|\s)plan for month(\s|$)`),
	regexp.MustCompile(`(?i)(^|\s)plan for week(\s|$)`),
	regexp.MustCompile(`(?i)(^|\s)create task(\s|$)`),
}

// IsActivationPhrase reports whether text contains one of the phrases
// that should trigger plan generation.
func IsActivationPhrase(text string) bool {
	s := strings.TrimSpace(text)
	if s == "" {
		return false
	}
	for _, re := range activationPatterns {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}
