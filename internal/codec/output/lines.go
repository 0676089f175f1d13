package output

import (
	"regexp"
	"strings"

	"github.com/custodia-labs/mapping-builder/internal/core/domain"
)

// trailingBracket matches a final "[...]" group without nested brackets.
var trailingBracket = regexp.MustCompile(`\[([^\[\]]*)\]$`)

// splitLines splits a text block into lines, dropping CR terminators.
func splitLines(text string) []string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, "\r")
	}
	return lines
}

// parseBlock runs parse on every non-blank line of text. Rejected lines
// are collected and, when strict, reported as a *domain.MalformedLineError.
func parseBlock(kind, text string, strict bool, parse func(line string) bool) error {
	var issues []domain.LineIssue
	for i, line := range splitLines(text) {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if !parse(line) {
			issues = append(issues, domain.LineIssue{Number: i + 1, Text: line})
		}
	}
	if strict && len(issues) > 0 {
		return &domain.MalformedLineError{Kind: kind, Lines: issues}
	}
	return nil
}

// cutField splits s at its first run of whitespace.
func cutField(s string) (head, tail string, ok bool) {
	i := strings.IndexAny(s, " \t")
	if i < 0 {
		return s, "", false
	}
	return s[:i], strings.TrimLeft(s[i:], " \t"), true
}

// cutBracket splits a trailing "[...]" group off s.
func cutBracket(s string) (before, inside string, ok bool) {
	loc := trailingBracket.FindStringSubmatchIndex(s)
	if loc == nil {
		return s, "", false
	}
	return s[:loc[0]], s[loc[2]:loc[3]], true
}

func isBlank(text string) bool {
	return strings.TrimSpace(text) == ""
}
