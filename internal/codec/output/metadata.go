package output

import "strings"

const kindMetadata = "metadata"

// ParseMetadatum parses a "key=value" line, splitting on the first "=".
// Both sides are trimmed; a line without "=" or with an empty key fails.
func ParseMetadatum(line string) (string, string, bool) {
	key, value, ok := strings.Cut(line, "=")
	if !ok {
		return "", "", false
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return "", "", false
	}
	return key, strings.TrimSpace(value), true
}

// ParseMetadata parses a block of metadata lines, dropping malformed ones.
func ParseMetadata(text string) map[string]string {
	metadata, _ := parseMetadata(text, false)
	return metadata
}

// ParseMetadataStrict parses a block of metadata lines, failing on malformed ones.
func ParseMetadataStrict(text string) (map[string]string, error) {
	return parseMetadata(text, true)
}

func parseMetadata(text string, strict bool) (map[string]string, error) {
	if isBlank(text) {
		return nil, nil
	}
	metadata := make(map[string]string)
	err := parseBlock(kindMetadata, text, strict, func(line string) bool {
		k, v, ok := ParseMetadatum(line)
		if ok {
			metadata[k] = v
		}
		return ok
	})
	if err != nil {
		return nil, err
	}
	return metadata, nil
}

// FormatMetadata renders metadata one "key=value" per line, sorted by key.
func FormatMetadata(metadata map[string]string) string {
	keys := sortedKeys(metadata)
	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, k+"="+metadata[k])
	}
	return strings.Join(lines, "\n")
}
