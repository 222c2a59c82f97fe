package sitemapper

import (
	"context"
	"strings"
	"unicode"
)

// PatternSource records where a pattern was defined.
type PatternSource string

// Pattern sources.
const (
	SourceCore    PatternSource = "core"
	SourceLearned PatternSource = "learned"
)

// Pattern is a catalog entry describing the textual and URL fingerprint
// of one user flow archetype.
type Pattern struct {
	ID          string        `json:"id,omitempty" yaml:"id,omitempty"`
	Name        string        `json:"name,omitempty" yaml:"name,omitempty"`
	Description string        `json:"description,omitempty" yaml:"description,omitempty"`
	Elements    []string      `json:"elements" yaml:"elements"`
	URLs        []string      `json:"urls" yaml:"urls"`
	Approved    bool          `json:"approved,omitempty" yaml:"approved,omitempty"`
	Source      PatternSource `json:"-" yaml:"-"`
}

// Validate returns an error if the pattern contains invalid fields.
func (p *Pattern) Validate() error {
	if p.ID == "" {
		return Errorf(EINVALID, "pattern id required")
	}
	if strings.ContainsAny(p.ID, " \t\n") {
		return Errorf(EINVALID, "pattern id %q must not contain whitespace", p.ID)
	}
	return nil
}

// DisplayName returns Name, or a title-cased form of ID when Name is empty.
func (p *Pattern) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	words := strings.Split(p.ID, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		r := []rune(strings.ToLower(w))
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

// Catalog is the pattern library: built-in core patterns, learned patterns
// (active only once approved), and candidates awaiting review.
// Slices preserve catalog document order.
type Catalog struct {
	Core    []*Pattern
	Learned []*Pattern
	Pending []*Pattern
}

// Active returns the patterns that participate in scoring: every core
// pattern followed by approved learned patterns. A learned pattern whose ID
// matches a core pattern replaces it in place.
func (c *Catalog) Active() []*Pattern {
	if c == nil {
		return nil
	}
	active := make([]*Pattern, 0, len(c.Core)+len(c.Learned))
	index := make(map[string]int, len(c.Core)+len(c.Learned))
	add := func(p *Pattern, source PatternSource) {
		cp := *p
		cp.Source = source
		if i, ok := index[p.ID]; ok {
			active[i] = &cp
			return
		}
		index[p.ID] = len(active)
		active = append(active, &cp)
	}
	for _, p := range c.Core {
		add(p, SourceCore)
	}
	for _, p := range c.Learned {
		if p.Approved {
			add(p, SourceLearned)
		}
	}
	return active
}

// FindPending returns the pending candidate with the given ID, or nil.
func (c *Catalog) FindPending(id string) *Pattern {
	if c == nil {
		return nil
	}
	for _, p := range c.Pending {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// FindCandidate returns the pattern an approval with the given ID would
// promote: the pending candidate, or else a learned pattern not yet
// approved. It returns nil when neither exists.
func (c *Catalog) FindCandidate(id string) *Pattern {
	if p := c.FindPending(id); p != nil {
		return p
	}
	if c == nil {
		return nil
	}
	for _, p := range c.Learned {
		if p.ID == id && !p.Approved {
			return p
		}
	}
	return nil
}

// Clone returns a copy of the catalog whose patterns may be modified
// without affecting c.
func (c *Catalog) Clone() *Catalog {
	if c == nil {
		return &Catalog{}
	}
	clone := func(ps []*Pattern) []*Pattern {
		out := make([]*Pattern, 0, len(ps))
		for _, p := range ps {
			cp := *p
			cp.Elements = append([]string(nil), p.Elements...)
			cp.URLs = append([]string(nil), p.URLs...)
			out = append(out, &cp)
		}
		return out
	}
	return &Catalog{
		Core:    clone(c.Core),
		Learned: clone(c.Learned),
		Pending: clone(c.Pending),
	}
}

// Stage appends p to the pending set.
func (c *Catalog) Stage(p *Pattern) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if c.FindPending(p.ID) != nil {
		return Errorf(ECONFLICT, "pattern %q is already pending", p.ID)
	}
	cp := *p
	c.Pending = append(c.Pending, &cp)
	return nil
}

// Approve stores p as an approved learned pattern, replacing a learned
// pattern with the same ID in place, and drops the pending candidate.
func (c *Catalog) Approve(p *Pattern) error {
	if err := p.Validate(); err != nil {
		return err
	}
	cp := *p
	cp.Approved = true

	replaced := false
	for i, l := range c.Learned {
		if l.ID == cp.ID {
			c.Learned[i] = &cp
			replaced = true
			break
		}
	}
	if !replaced {
		c.Learned = append(c.Learned, &cp)
	}
	c.removePending(cp.ID)
	return nil
}

// Reject drops the pending candidate with id.
func (c *Catalog) Reject(id string) error {
	if !c.removePending(id) {
		return Errorf(ENOTFOUND, "no pending pattern %q", id)
	}
	return nil
}

func (c *Catalog) removePending(id string) bool {
	for i, p := range c.Pending {
		if p.ID == id {
			c.Pending = append(c.Pending[:i:i], c.Pending[i+1:]...)
			return true
		}
	}
	return false
}

// PatternRepository stores the pattern catalog.
type PatternRepository interface {
	// Catalog returns the full catalog. A missing store yields an empty
	// catalog, not an error.
	Catalog(ctx context.Context) (*Catalog, error)

	// StagePattern adds a candidate to the pending set.
	// Returns ECONFLICT if a candidate with the same ID is pending.
	StagePattern(ctx context.Context, p *Pattern) error

	// ApprovePattern stores p as an approved learned pattern and removes
	// any pending candidate with the same ID in a single write.
	ApprovePattern(ctx context.Context, p *Pattern) error

	// RejectPattern discards a pending candidate.
	// Returns ENOTFOUND if no candidate has the ID.
	RejectPattern(ctx context.Context, id string) error
}
