package output

import (
	"sort"
	"strings"

	"github.com/custodia-labs/mapping-builder/internal/core/domain"
)

const kindNode = "node"

// ParseNode parses a "key uid [label|tag]" line. The uid is whatever
// precedes the optional trailing bracket group; label and tag are split
// on the first "|" and either may be empty.
func ParseNode(line string) (string, domain.MappedNode, bool) {
	key, rest, ok := cutField(strings.TrimSpace(line))
	if !ok || key == "" {
		return "", domain.MappedNode{}, false
	}
	uid, inside, hasBracket := cutBracket(rest)
	node := domain.MappedNode{UID: strings.TrimSpace(uid)}
	if node.UID == "" {
		return "", domain.MappedNode{}, false
	}
	if hasBracket {
		label, tag, _ := strings.Cut(inside, "|")
		node.Label = strings.TrimSpace(label)
		node.Tag = strings.TrimSpace(tag)
	}
	return key, node, true
}

// FormatNode renders a node as a "key uid [label|tag]" line.
func FormatNode(key string, node domain.MappedNode) string {
	var sb strings.Builder
	sb.WriteString(key)
	sb.WriteByte(' ')
	sb.WriteString(node.UID)
	if node.Label != "" || node.Tag != "" {
		sb.WriteString(" [")
		sb.WriteString(node.Label)
		if node.Tag != "" {
			sb.WriteByte('|')
			sb.WriteString(node.Tag)
		}
		sb.WriteByte(']')
	}
	return sb.String()
}

// ParseNodes parses a block of node lines, dropping malformed ones.
func ParseNodes(text string) map[string]domain.MappedNode {
	nodes, _ := parseNodes(text, false)
	return nodes
}

// ParseNodesStrict parses a block of node lines, failing on malformed ones.
func ParseNodesStrict(text string) (map[string]domain.MappedNode, error) {
	return parseNodes(text, true)
}

func parseNodes(text string, strict bool) (map[string]domain.MappedNode, error) {
	if isBlank(text) {
		return nil, nil
	}
	nodes := make(map[string]domain.MappedNode)
	err := parseBlock(kindNode, text, strict, func(line string) bool {
		key, node, ok := ParseNode(line)
		if ok {
			nodes[key] = node
		}
		return ok
	})
	if err != nil {
		return nil, err
	}
	return nodes, nil
}

// FormatNodes renders nodes one per line, sorted by key.
func FormatNodes(nodes map[string]domain.MappedNode) string {
	keys := sortedKeys(nodes)
	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, FormatNode(k, nodes[k]))
	}
	return strings.Join(lines, "\n")
}

// ParseNodeValue parses the document form "uid label [tag]": the uid is
// the first field, the tag an optional trailing bracket group and the
// label whatever lies between.
func ParseNodeValue(value string) (domain.MappedNode, bool) {
	uid, rest, _ := cutField(strings.TrimSpace(value))
	if uid == "" {
		return domain.MappedNode{}, false
	}
	node := domain.MappedNode{UID: uid}
	label, tag, hasBracket := cutBracket(rest)
	if hasBracket {
		node.Tag = strings.TrimSpace(tag)
	}
	node.Label = strings.TrimSpace(label)
	return node, true
}

// FormatNodeValue renders a node in the document form "uid label [tag]".
// A label that itself ends in a bracket group is followed by "[]" so
// that it is not read back as a tag.
func FormatNodeValue(node domain.MappedNode) string {
	var sb strings.Builder
	sb.WriteString(node.UID)
	if node.Label != "" {
		sb.WriteByte(' ')
		sb.WriteString(node.Label)
	}
	switch {
	case node.Tag != "":
		sb.WriteString(" [")
		sb.WriteString(node.Tag)
		sb.WriteByte(']')
	case trailingBracket.MatchString(node.Label):
		sb.WriteString(" []")
	}
	return sb.String()
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
