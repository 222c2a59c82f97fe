package fs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fwojciec/sitemapper"
	"gopkg.in/yaml.v3"
)

// Top-level sections of a catalog document. Each maps pattern IDs to
// patterns in document order.
const (
	sectionCore    = "core_patterns"
	sectionLearned = "learned_patterns"
	sectionPending = "pending_patterns"
)

var _ sitemapper.PatternRepository = (*PatternStore)(nil)

// PatternStore keeps the pattern catalog in a single JSON or YAML document,
// chosen by the file extension (.yaml and .yml select YAML).
// Every change rewrites the whole document atomically.
type PatternStore struct {
	path string
	mu   sync.Mutex
}

// NewPatternStore returns a store for the catalog document at path.
func NewPatternStore(path string) *PatternStore {
	return &PatternStore{path: path}
}

// Path returns the catalog document path.
func (s *PatternStore) Path() string {
	return s.path
}

// Catalog reads the catalog. A missing document is an empty catalog.
func (s *PatternStore) Catalog(_ context.Context) (*sitemapper.Catalog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Save replaces the stored catalog with c.
func (s *PatternStore) Save(_ context.Context, c *sitemapper.Catalog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(c)
}

func (s *PatternStore) StagePattern(_ context.Context, p *sitemapper.Pattern) error {
	return s.update(func(c *sitemapper.Catalog) error { return c.Stage(p) })
}

func (s *PatternStore) ApprovePattern(_ context.Context, p *sitemapper.Pattern) error {
	return s.update(func(c *sitemapper.Catalog) error { return c.Approve(p) })
}

func (s *PatternStore) RejectPattern(_ context.Context, id string) error {
	return s.update(func(c *sitemapper.Catalog) error { return c.Reject(id) })
}

func (s *PatternStore) update(fn func(*sitemapper.Catalog) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.load()
	if err != nil {
		return err
	}
	if err := fn(c); err != nil {
		return err
	}
	return s.save(c)
}

func (s *PatternStore) isYAML() bool {
	ext := strings.ToLower(filepath.Ext(s.path))
	return ext == ".yaml" || ext == ".yml"
}

func (s *PatternStore) load() (*sitemapper.Catalog, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return &sitemapper.Catalog{}, nil
	}
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return &sitemapper.Catalog{}, nil
	}

	var c *sitemapper.Catalog
	if s.isYAML() {
		c, err = decodeYAMLCatalog(data)
	} else {
		c, err = decodeJSONCatalog(data)
	}
	if err != nil {
		return nil, sitemapper.Errorf(sitemapper.EINVALID, "invalid pattern catalog %s: %v", s.path, err)
	}
	return c, nil
}

func (s *PatternStore) save(c *sitemapper.Catalog) error {
	var (
		data []byte
		err  error
	)
	if s.isYAML() {
		data, err = encodeYAMLCatalog(c)
	} else {
		data, err = encodeJSONCatalog(c)
	}
	if err != nil {
		return fmt.Errorf("encode pattern catalog: %w", err)
	}
	return writeFileAtomic(s.path, data)
}

type section struct {
	name     string
	patterns []*sitemapper.Pattern
}

func sections(c *sitemapper.Catalog) []section {
	return []section{
		{sectionCore, c.Core},
		{sectionLearned, c.Learned},
		{sectionPending, c.Pending},
	}
}

func assign(c *sitemapper.Catalog, name string, patterns []*sitemapper.Pattern) {
	switch name {
	case sectionCore:
		c.Core = patterns
	case sectionLearned:
		c.Learned = patterns
	case sectionPending:
		c.Pending = patterns
	}
}

// stored returns p as written under its ID key.
func stored(p *sitemapper.Pattern) sitemapper.Pattern {
	cp := *p
	cp.ID = ""
	if cp.Elements == nil {
		cp.Elements = []string{}
	}
	if cp.URLs == nil {
		cp.URLs = []string{}
	}
	return cp
}

func decodeJSONCatalog(data []byte) (*sitemapper.Catalog, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	c := &sitemapper.Catalog{}
	for _, name := range []string{sectionCore, sectionLearned, sectionPending} {
		patterns, err := decodeJSONSection(doc[name])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		assign(c, name, patterns)
	}
	return c, nil
}

// decodeJSONSection walks the object token by token to keep key order.
func decodeJSONSection(raw json.RawMessage) ([]*sitemapper.Pattern, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, errors.New("expected an object keyed by pattern id")
	}

	var patterns []*sitemapper.Pattern
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		id, _ := tok.(string)
		var p sitemapper.Pattern
		if err := dec.Decode(&p); err != nil {
			return nil, fmt.Errorf("pattern %q: %w", id, err)
		}
		p.ID = id
		patterns = append(patterns, &p)
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return patterns, nil
}

func encodeJSONCatalog(c *sitemapper.Catalog) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, sec := range sections(c) {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, _ := json.Marshal(sec.name)
		buf.Write(name)
		buf.WriteString(":{")
		for j, p := range sec.patterns {
			if j > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(p.ID)
			if err != nil {
				return nil, err
			}
			value, err := json.Marshal(stored(p))
			if err != nil {
				return nil, err
			}
			buf.Write(key)
			buf.WriteByte(':')
			buf.Write(value)
		}
		buf.WriteByte('}')
	}
	buf.WriteByte('}')

	var out bytes.Buffer
	if err := json.Indent(&out, buf.Bytes(), "", "  "); err != nil {
		return nil, err
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}

func decodeYAMLCatalog(data []byte) (*sitemapper.Catalog, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	c := &sitemapper.Catalog{}
	if len(doc.Content) == 0 {
		return c, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, errors.New("expected a mapping at the top level")
	}
	for i := 0; i+1 < len(root.Content); i += 2 {
		name := root.Content[i].Value
		patterns, err := decodeYAMLSection(root.Content[i+1])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		assign(c, name, patterns)
	}
	return c, nil
}

func decodeYAMLSection(n *yaml.Node) ([]*sitemapper.Pattern, error) {
	if n.Kind == yaml.ScalarNode && n.Tag == "!!null" {
		return nil, nil
	}
	if n.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: expected a mapping keyed by pattern id", n.Line)
	}
	var patterns []*sitemapper.Pattern
	for i := 0; i+1 < len(n.Content); i += 2 {
		id := n.Content[i].Value
		var p sitemapper.Pattern
		if err := n.Content[i+1].Decode(&p); err != nil {
			return nil, fmt.Errorf("pattern %q: %w", id, err)
		}
		p.ID = id
		patterns = append(patterns, &p)
	}
	return patterns, nil
}

func encodeYAMLCatalog(c *sitemapper.Catalog) ([]byte, error) {
	root := &yaml.Node{Kind: yaml.MappingNode}
	for _, sec := range sections(c) {
		m := &yaml.Node{Kind: yaml.MappingNode}
		for _, p := range sec.patterns {
			var v yaml.Node
			if err := v.Encode(stored(p)); err != nil {
				return nil, err
			}
			m.Content = append(m.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: p.ID}, &v)
		}
		root.Content = append(root.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: sec.name}, m)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(root); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
