package flow

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/fwojciec/sitemapper"
)

const stepTextLength = 40

// actions maps descriptor phrases to step verbs, first match wins.
var actions = []struct {
	phrase string
	action string
}{
	{"search", "search"},
	{"login", "click"},
	{"sign in", "click"},
	{"register", "click"},
	{"add to cart", "click"},
	{"buy", "click"},
	{"checkout", "click"},
	{"filter", "select"},
	{"sort", "select"},
	{"input", "fill"},
	{"form", "fill"},
	{"submit", "click"},
	{"book", "click"},
	{"reserve", "click"},
}

func actionFor(descriptor string) string {
	lower := strings.ToLower(descriptor)
	for _, a := range actions {
		if strings.Contains(lower, a.phrase) {
			return a.action
		}
	}
	return "interact"
}

// descriptorText returns what follows the last colon of a descriptor.
func descriptorText(descriptor string) string {
	if i := strings.LastIndex(descriptor, ":"); i >= 0 {
		return strings.TrimSpace(descriptor[i+1:])
	}
	return descriptor
}

// buildSteps turns up to MaxFlowSteps matched descriptors into steps. With
// no matches the flow gets a single navigation step.
func buildSteps(name string, matched []string) []sitemapper.FlowStep {
	if len(matched) == 0 {
		return []sitemapper.FlowStep{{
			Action:      "navigate",
			Element:     "page",
			Description: "Navigate to " + name + " section",
			Safe:        true,
		}}
	}

	n := min(len(matched), MaxFlowSteps)
	steps := make([]sitemapper.FlowStep, 0, n)
	for _, d := range matched[:n] {
		action := actionFor(d)
		steps = append(steps, sitemapper.FlowStep{
			Action:      action,
			Element:     d,
			Description: capitalize(action) + " on " + truncate(descriptorText(d), stepTextLength),
			Safe:        sitemapper.IsSafeAction(d),
		})
	}
	return steps
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// matchElements returns the descriptors that contain a pattern phrase or
// one of its whitespace-separated words of three or more letters.
func matchElements(descriptors, lowered []string, phrases []string) []string {
	matched := []string{}
	for i, lower := range lowered {
		for _, p := range phrases {
			if phraseIn(lower, strings.ToLower(p)) {
				matched = append(matched, descriptors[i])
				break
			}
		}
	}
	return matched
}

func phraseIn(lower, p string) bool {
	if strings.Contains(lower, p) {
		return true
	}
	for _, word := range strings.Fields(p) {
		if len(word) >= minKeywordLength && strings.Contains(lower, word) {
			return true
		}
	}
	return false
}

// matchPages returns the visited URLs containing any pattern fragment.
func matchPages(urls, lowered []string, fragments []string) []string {
	matched := []string{}
	for i, lower := range lowered {
		for _, f := range fragments {
			if strings.Contains(lower, strings.ToLower(f)) {
				matched = append(matched, urls[i])
				break
			}
		}
	}
	return matched
}
