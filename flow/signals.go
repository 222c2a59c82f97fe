package flow

import (
	"math"
	"net/url"
	"regexp"
	"strings"
)

// Match tier multipliers for one pattern phrase against one descriptor.
const (
	exactMatch   = 1.0
	keywordMatch = 0.7
	prefixMatch  = 0.3
)

// Credit for one pattern URL fragment.
const (
	urlDirectCredit  = 1.0
	urlSegmentCredit = 0.7
	urlQueryCredit   = 0.8
)

// Context bonus levels by the number of co-occurring pattern phrases.
const (
	contextBonusStrong = 0.30
	contextBonusWeak   = 0.15
)

const (
	minKeywordLength = 3
	prefixLength     = 4
)

var keywordSplit = regexp.MustCompile(`[\[\]=\s\-_().,:]+`)

type weight struct {
	name  string
	value float64
}

// typeWeights is checked in order against the descriptor's type prefix.
var typeWeights = []weight{
	{"search", 2.0},
	{"button", 1.5},
	{"form", 1.4},
	{"input", 1.2},
	{"link", 1.0},
	{"dropdown", 1.3},
	{"checkbox", 1.1},
	{"select", 1.3},
}

// keywordWeights is checked in order; the first keyword contained in the
// text wins.
var keywordWeights = []weight{
	{"cart", 2.0},
	{"checkout", 2.0},
	{"buy", 1.8},
	{"purchase", 1.8},
	{"login", 1.8},
	{"signin", 1.8},
	{"signup", 1.8},
	{"register", 1.7},
	{"search", 1.8},
	{"filter", 1.5},
	{"sort", 1.4},
	{"book", 1.7},
	{"reserve", 1.7},
	{"schedule", 1.5},
	{"submit", 1.5},
	{"save", 1.3},
	{"add", 1.3},
	{"profile", 1.4},
	{"settings", 1.4},
	{"account", 1.4},
}

func keywordWeight(lower string) (float64, bool) {
	for _, kw := range keywordWeights {
		if strings.Contains(lower, kw.name) {
			return kw.value, true
		}
	}
	return 0, false
}

// descriptorWeight is the element-type weight of a lowercased descriptor,
// multiplied by at most one keyword weight.
func descriptorWeight(lower string) float64 {
	w := 1.0
	for _, t := range typeWeights {
		if strings.HasPrefix(lower, t.name+":") || strings.Contains(lower, "["+t.name+"]") {
			w = t.value
			break
		}
	}
	if kw, ok := keywordWeight(lower); ok {
		w *= kw
	}
	return w
}

// phrase is a lowercased pattern element with its keyword tokens.
type phrase struct {
	text     string
	keywords []string
	weight   float64
}

func newPhrase(s string) phrase {
	p := phrase{text: strings.ToLower(s), weight: 1.0}
	for _, tok := range keywordSplit.Split(p.text, -1) {
		if len(tok) >= minKeywordLength {
			p.keywords = append(p.keywords, tok)
		}
	}
	if kw, ok := keywordWeight(p.text); ok {
		p.weight = kw
	}
	return p
}

// tier returns the match multiplier of p against a lowercased descriptor.
func (p phrase) tier(lower string) float64 {
	if strings.Contains(lower, p.text) {
		return exactMatch
	}
	for _, kw := range p.keywords {
		if strings.Contains(lower, kw) {
			return keywordMatch
		}
	}
	for _, kw := range p.keywords {
		if len(kw) >= prefixLength && strings.Contains(lower, kw[:prefixLength]) {
			return prefixMatch
		}
	}
	return 0
}

// elementScore matches every pattern phrase against the best descriptor.
// Each phrase contributes at most its own weight; the sum is normalized by
// the total phrase weight.
func elementScore(descriptors []string, phrases []string) float64 {
	if len(phrases) == 0 {
		return 0
	}
	weights := make([]float64, len(descriptors))
	for i, d := range descriptors {
		weights[i] = descriptorWeight(d)
	}

	var total, matched float64
	for _, s := range phrases {
		p := newPhrase(s)
		total += p.weight
		var best float64
		for i, d := range descriptors {
			best = math.Max(best, p.tier(d)*weights[i])
		}
		matched += math.Min(p.weight, best)
	}
	if total == 0 {
		return 0
	}
	return clamp(matched / total)
}

// urlScore averages the credit of each pattern URL fragment over the
// lowercased visited URLs.
func urlScore(urls []string, fragments []string) float64 {
	if len(fragments) == 0 {
		return 0
	}
	var credit float64
	for _, f := range fragments {
		credit += fragmentCredit(strings.ToLower(f), urls)
	}
	return clamp(credit / float64(len(fragments)))
}

func fragmentCredit(fragment string, urls []string) float64 {
	for _, u := range urls {
		if strings.Contains(u, fragment) {
			return urlDirectCredit
		}
	}

	var parts []string
	for _, part := range strings.Split(strings.Trim(fragment, "/"), "/") {
		if part != "" {
			parts = append(parts, part)
		}
	}
	for _, u := range urls {
		if hasSegment(u, parts) {
			return urlSegmentCredit
		}
	}

	if key, ok := queryKey(fragment); ok {
		for _, u := range urls {
			parsed, err := url.Parse(u)
			if err != nil {
				continue
			}
			if parsed.Query().Has(key) {
				return urlQueryCredit
			}
		}
	}
	return 0
}

func hasSegment(rawURL string, parts []string) bool {
	if len(parts) == 0 {
		return false
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	for _, seg := range strings.Split(u.Path, "/") {
		if seg == "" {
			continue
		}
		for _, part := range parts {
			if seg == part {
				return true
			}
		}
	}
	return false
}

// queryKey returns "q" for fragments like "?q=" or "?q=shoes".
func queryKey(fragment string) (string, bool) {
	rest, ok := strings.CutPrefix(fragment, "?")
	if !ok {
		return "", false
	}
	key, _, _ := strings.Cut(rest, "=")
	return key, key != ""
}

// contextBonus rewards patterns whose phrases co-occur verbatim in the
// joined descriptor text.
func contextBonus(siteText string, phrases []string) float64 {
	if len(phrases) < 2 {
		return 0
	}
	found := 0
	for _, p := range phrases {
		if strings.Contains(siteText, strings.ToLower(p)) {
			found++
		}
	}
	switch {
	case found >= 3:
		return contextBonusStrong
	case found == 2:
		return contextBonusWeak
	}
	return 0
}

// cosine returns the cosine similarity of a and b rescaled to [0,1].
func cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	sim := dot / (math.Sqrt(na) * math.Sqrt(nb))
	return clamp((sim + 1) / 2)
}

func clamp(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
