package goquery

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// MaxTextLength is the maximum number of characters kept for element text.
const MaxTextLength = 100

// cleanText collapses runs of whitespace and trims the result.
func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// truncate cuts s to at most n characters.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// elementText returns the visible text of sel, falling back to the
// accessible-name attributes in order of preference.
func elementText(sel *goquery.Selection) string {
	text := cleanText(sel.Text())
	if text == "" {
		for _, attr := range []string{"aria-label", "title", "placeholder", "alt", "value"} {
			if v := cleanText(sel.AttrOr(attr, "")); v != "" {
				text = v
				break
			}
		}
	}
	return truncate(text, MaxTextLength)
}

// cssSelector builds a selector for sel preferring stable hooks:
// id, test ids, the name attribute, then the first two classes.
func cssSelector(sel *goquery.Selection) string {
	tag := goquery.NodeName(sel)
	if id := sel.AttrOr("id", ""); id != "" {
		return "#" + id
	}
	if v := sel.AttrOr("data-testid", ""); v != "" {
		return "[data-testid='" + v + "']"
	}
	if v := sel.AttrOr("data-test", ""); v != "" {
		return "[data-test='" + v + "']"
	}
	if v := sel.AttrOr("name", ""); v != "" {
		return tag + "[name='" + v + "']"
	}
	if classes := strings.Fields(sel.AttrOr("class", "")); len(classes) > 0 {
		if len(classes) > 2 {
			classes = classes[:2]
		}
		return tag + "." + strings.Join(classes, ".")
	}
	return tag
}

// attributes copies every attribute of the first node in sel.
func attributes(sel *goquery.Selection) map[string]string {
	attrs := make(map[string]string)
	if len(sel.Nodes) == 0 {
		return attrs
	}
	for _, a := range sel.Nodes[0].Attr {
		attrs[a.Key] = a.Val
	}
	return attrs
}

// isVisible reports whether sel is shown to the user judging by its
// markup alone. Stylesheets are not evaluated.
func isVisible(sel *goquery.Selection) bool {
	if _, hidden := sel.Attr("hidden"); hidden {
		return false
	}
	if strings.EqualFold(sel.AttrOr("aria-hidden", ""), "true") {
		return false
	}
	if strings.EqualFold(sel.AttrOr("type", ""), "hidden") {
		return false
	}
	style := strings.ToLower(strings.ReplaceAll(sel.AttrOr("style", ""), " ", ""))
	if strings.Contains(style, "display:none") || strings.Contains(style, "visibility:hidden") {
		return false
	}
	return true
}

// isEnabled reports whether sel accepts interaction.
func isEnabled(sel *goquery.Selection) bool {
	if _, disabled := sel.Attr("disabled"); disabled {
		return false
	}
	return !strings.EqualFold(sel.AttrOr("aria-disabled", ""), "true")
}
