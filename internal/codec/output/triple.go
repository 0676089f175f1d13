package output

import (
	"regexp"
	"strings"

	"github.com/custodia-labs/mapping-builder/internal/core/domain"
)

const kindTriple = "triple"

var tripleLine = regexp.MustCompile(`^(\S+)\s+(\S+)\s+(.+)$`)

// ParseTriple parses an "s p o" or `s p "ol"` line. An object starting
// with a double quote is a literal: when it is also closed by one, the
// wrapping quotes are removed, otherwise (e.g. `"chat"@fr`) it is kept
// verbatim. Any other object is a URI.
func ParseTriple(line string) (domain.MappedTriple, bool) {
	m := tripleLine.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return domain.MappedTriple{}, false
	}
	o := m[3]
	if !strings.HasPrefix(o, `"`) {
		return domain.NewURITriple(m[1], m[2], o), true
	}
	if len(o) >= 2 && strings.HasSuffix(o, `"`) {
		o = o[1 : len(o)-1]
	}
	return domain.NewLiteralTriple(m[1], m[2], o), true
}

// FormatTriple renders a triple as a line. Literals are wrapped in
// double quotes unless they already start with one.
func FormatTriple(t domain.MappedTriple) string {
	o := t.Object.Value
	if t.Object.IsLiteral() && !strings.HasPrefix(o, `"`) {
		o = `"` + o + `"`
	}
	return t.S + " " + t.P + " " + o
}

// ParseTriples parses a block of triple lines, dropping malformed ones.
func ParseTriples(text string) []domain.MappedTriple {
	triples, _ := parseTriples(text, false)
	return triples
}

// ParseTriplesStrict parses a block of triple lines, failing on malformed ones.
func ParseTriplesStrict(text string) ([]domain.MappedTriple, error) {
	return parseTriples(text, true)
}

func parseTriples(text string, strict bool) ([]domain.MappedTriple, error) {
	if isBlank(text) {
		return nil, nil
	}
	triples := []domain.MappedTriple{}
	err := parseBlock(kindTriple, text, strict, func(line string) bool {
		t, ok := ParseTriple(line)
		if ok {
			triples = append(triples, t)
		}
		return ok
	})
	if err != nil {
		return nil, err
	}
	return triples, nil
}

// FormatTriples renders triples one per line, in order.
func FormatTriples(triples []domain.MappedTriple) string {
	lines := make([]string, 0, len(triples))
	for _, t := range triples {
		lines = append(lines, FormatTriple(t))
	}
	return strings.Join(lines, "\n")
}
