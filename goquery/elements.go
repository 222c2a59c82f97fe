// Package goquery implements HTML parsing for sitemapper using goquery.
package goquery

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/sitemapper"
)

// MaxSelectOptions is the maximum number of option labels kept per select.
const MaxSelectOptions = 15

// Compile-time interface verification.
var _ sitemapper.ElementExtractor = (*ElementExtractor)(nil)

// ElementExtractor parses HTML into typed interactive elements.
type ElementExtractor struct{}

// NewElementExtractor creates a new ElementExtractor.
func NewElementExtractor() *ElementExtractor {
	return &ElementExtractor{}
}

// family is one step of the extraction cascade. find selects candidate
// nodes and classify types one of them, returning false to skip it.
type family struct {
	find     func(doc *goquery.Selection) *goquery.Selection
	classify func(sel *goquery.Selection) (sitemapper.Element, bool)
}

// ExtractElements scans html for element families in priority order.
// Within the page a candidate is dropped if an earlier one shares its
// selector and the first 30 characters of its text.
func (x *ElementExtractor) ExtractElements(html, pageURL string) ([]sitemapper.Element, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, sitemapper.Errorf(sitemapper.EINVALID, "failed to parse HTML: %v", err)
	}

	var elements []sitemapper.Element
	seen := make(map[string]struct{})

	for _, f := range cascade {
		f.find(doc.Selection).Each(func(_ int, sel *goquery.Selection) {
			el, ok := f.classify(sel)
			if !ok {
				return
			}
			el.Text = elementText(sel)
			el.Selector = cssSelector(sel)

			key := el.Selector + ":" + truncate(el.Text, 30)
			if _, dup := seen[key]; dup {
				return
			}
			seen[key] = struct{}{}

			if el.Text == "" && !keepsWithoutText(el.Type) {
				return
			}

			el.PageURL = pageURL
			el.Attributes = attributes(sel)
			el.Visible = isVisible(sel)
			el.Enabled = isEnabled(sel)
			if el.Placeholder == "" {
				el.Placeholder = cleanText(sel.AttrOr("placeholder", ""))
			}
			elements = append(elements, el)
		})
	}

	return elements, nil
}

func keepsWithoutText(t sitemapper.ElementType) bool {
	return t == sitemapper.ElementInput || t == sitemapper.ElementTextarea || t == sitemapper.ElementSearch
}

// skippedHrefPrefixes mark anchors that do not navigate to a page.
var skippedHrefPrefixes = []string{"#", "javascript:", "mailto:", "tel:", "data:"}

func navigableHref(href string) bool {
	href = strings.TrimSpace(href)
	if href == "" {
		return false
	}
	lower := strings.ToLower(href)
	for _, p := range skippedHrefPrefixes {
		if strings.HasPrefix(lower, p) {
			return false
		}
	}
	return true
}

func inputType(sel *goquery.Selection) string {
	t := strings.ToLower(strings.TrimSpace(sel.AttrOr("type", "")))
	if t == "" {
		return "text"
	}
	return t
}

// roleTypes maps ARIA roles to element types, in scan order.
var roleTypes = []struct {
	role string
	typ  sitemapper.ElementType
}{
	{"button", sitemapper.ElementButton},
	{"link", sitemapper.ElementLink},
	{"menuitem", sitemapper.ElementMenu},
	{"tab", sitemapper.ElementTab},
	{"checkbox", sitemapper.ElementCheckbox},
	{"radio", sitemapper.ElementRadio},
	{"switch", sitemapper.ElementCheckbox},
	{"searchbox", sitemapper.ElementSearch},
	{"combobox", sitemapper.ElementDropdown},
	{"listbox", sitemapper.ElementSelect},
}

var filterClass = regexp.MustCompile(`(?i)(filter|facet|refine)`)

func find(selector string) func(*goquery.Selection) *goquery.Selection {
	return func(doc *goquery.Selection) *goquery.Selection {
		return doc.Find(selector)
	}
}

func as(t sitemapper.ElementType) func(*goquery.Selection) (sitemapper.Element, bool) {
	return func(*goquery.Selection) (sitemapper.Element, bool) {
		return sitemapper.Element{Type: t}, true
	}
}

// cascade lists element families from most to least specific. Native
// controls come first so they win the in-page dedup over role and
// heuristic matches on the same node.
var cascade = buildCascade()

func buildCascade() []family {
	fs := []family{
		{find("button"), as(sitemapper.ElementButton)},
		{find(`input[type="submit"], input[type="button"]`), as(sitemapper.ElementButton)},
		{find("a[href]"), func(sel *goquery.Selection) (sitemapper.Element, bool) {
			if !navigableHref(sel.AttrOr("href", "")) {
				return sitemapper.Element{}, false
			}
			return sitemapper.Element{Type: sitemapper.ElementLink}, true
		}},
		{find("input"), func(sel *goquery.Selection) (sitemapper.Element, bool) {
			t := inputType(sel)
			switch t {
			case "hidden", "submit", "button", "image":
				return sitemapper.Element{}, false
			case "search":
				return sitemapper.Element{Type: sitemapper.ElementSearch, InputType: t}, true
			}
			return sitemapper.Element{Type: sitemapper.ElementInput, InputType: t}, true
		}},
		{find("textarea"), as(sitemapper.ElementTextarea)},
		{find("select"), func(sel *goquery.Selection) (sitemapper.Element, bool) {
			return sitemapper.Element{Type: sitemapper.ElementSelect, Options: selectOptions(sel)}, true
		}},
	}

	for _, r := range roleTypes {
		fs = append(fs, family{find(`[role="` + r.role + `"]`), as(r.typ)})
	}

	fs = append(fs,
		family{find("[onclick]"), func(sel *goquery.Selection) (sitemapper.Element, bool) {
			switch goquery.NodeName(sel) {
			case "button", "a", "input":
				return sitemapper.Element{}, false
			}
			return sitemapper.Element{Type: sitemapper.ElementButton}, true
		}},
		family{find("[aria-haspopup]"), as(sitemapper.ElementDropdown)},
		family{find("[aria-expanded]"), as(sitemapper.ElementAccordion)},
		family{find("form"), as(sitemapper.ElementForm)},
		family{find(`[role="search"] input`), func(sel *goquery.Selection) (sitemapper.Element, bool) {
			t := inputType(sel)
			if t == "hidden" {
				return sitemapper.Element{}, false
			}
			return sitemapper.Element{Type: sitemapper.ElementSearch, InputType: t}, true
		}},
		family{
			find: func(doc *goquery.Selection) *goquery.Selection {
				return doc.Find("[class]").FilterFunction(func(_ int, s *goquery.Selection) bool {
					return filterClass.MatchString(s.AttrOr("class", ""))
				}).Find("input, select")
			},
			classify: func(sel *goquery.Selection) (sitemapper.Element, bool) {
				el := sitemapper.Element{Type: sitemapper.ElementFilter}
				if goquery.NodeName(sel) == "select" {
					el.Options = selectOptions(sel)
				} else if el.InputType = inputType(sel); el.InputType == "hidden" {
					return sitemapper.Element{}, false
				}
				return el, true
			},
		},
	)
	return fs
}

// selectOptions returns the labels of the first MaxSelectOptions options,
// without empty labels.
func selectOptions(sel *goquery.Selection) []string {
	var options []string
	sel.Find("option").EachWithBreak(func(i int, opt *goquery.Selection) bool {
		if i >= MaxSelectOptions {
			return false
		}
		if text := cleanText(opt.Text()); text != "" {
			options = append(options, text)
		}
		return true
	})
	return options
}
