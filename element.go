package sitemapper

import "fmt"

// ElementType classifies an interactive element.
type ElementType string

// Element types recognized by extractors.
const (
	ElementButton     ElementType = "button"
	ElementLink       ElementType = "link"
	ElementInput      ElementType = "input"
	ElementSelect     ElementType = "select"
	ElementCheckbox   ElementType = "checkbox"
	ElementRadio      ElementType = "radio"
	ElementTextarea   ElementType = "textarea"
	ElementDropdown   ElementType = "dropdown"
	ElementMenu       ElementType = "menu"
	ElementTab        ElementType = "tab"
	ElementAccordion  ElementType = "accordion"
	ElementForm       ElementType = "form"
	ElementSearch     ElementType = "search"
	ElementFilter     ElementType = "filter"
	ElementSort       ElementType = "sort"
	ElementPagination ElementType = "pagination"
	ElementOther      ElementType = "other"
)

// ElementTypes lists every element type in declaration order.
var ElementTypes = []ElementType{
	ElementButton, ElementLink, ElementInput, ElementSelect, ElementCheckbox,
	ElementRadio, ElementTextarea, ElementDropdown, ElementMenu, ElementTab,
	ElementAccordion, ElementForm, ElementSearch, ElementFilter, ElementSort,
	ElementPagination, ElementOther,
}

// ParseElementType returns the element type named s.
// Unknown names map to ElementOther.
func ParseElementType(s string) ElementType {
	for _, t := range ElementTypes {
		if string(t) == s {
			return t
		}
	}
	return ElementOther
}

// Element is one interactive control found on one page.
// Two elements are the same element when they share Selector and PageURL.
type Element struct {
	ID          string            `json:"id"`
	Type        ElementType       `json:"type"`
	Text        string            `json:"text"`
	Selector    string            `json:"selector"`
	PageURL     string            `json:"page_url"`
	Attributes  map[string]string `json:"attributes"`
	InputType   string            `json:"input_type,omitempty"`
	Placeholder string            `json:"placeholder,omitempty"`
	Options     []string          `json:"options,omitempty"`
	Visible     bool              `json:"is_visible"`
	Enabled     bool              `json:"is_enabled"`
}

// Key returns the identity of the element within a site map.
func (e *Element) Key() ElementKey {
	return ElementKey{Selector: e.Selector, PageURL: e.PageURL}
}

// Descriptor flattens the element into the "<type>: <text> (<selector>)"
// form consumed by flow discovery.
func (e *Element) Descriptor() string {
	return fmt.Sprintf("%s: %s (%s)", e.Type, e.Text, e.Selector)
}

// IsSafe reports whether interacting with the element is free of
// destructive side effects such as payments or account removal.
func (e *Element) IsSafe() bool {
	return IsSafeAction(e.Text)
}

// ElementKey is the uniqueness key of an element in a SiteMap.
type ElementKey struct {
	Selector string
	PageURL  string
}

// ElementExtractor parses a page into typed interactive elements.
type ElementExtractor interface {
	// ExtractElements returns the deduplicated interactive elements found
	// in html. Returned elements have no ID; the SiteMap assigns one.
	ExtractElements(html, pageURL string) ([]Element, error)
}

// LinkExtractor parses a page into same-site candidate URLs.
type LinkExtractor interface {
	// ExtractLinks returns normalized, deduplicated URLs that share the
	// registrable domain of baseURL, in document order.
	ExtractLinks(html, baseURL string) ([]string, error)
}
