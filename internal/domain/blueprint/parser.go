package blueprint

import (
	"bytes"
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/goccy/go-yaml"
)

// Decode parses blueprint content. JSON objects are decoded with sonic;
// anything else is treated as YAML.
func Decode(content []byte) (*Raw, error) {
	trimmed := bytes.TrimSpace(content)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("blueprint is empty")
	}

	var raw Raw
	if trimmed[0] == '{' {
		if err := sonic.Unmarshal(trimmed, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse JSON: %w", err)
		}
		return &raw, nil
	}

	if err := yaml.Unmarshal(trimmed, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return &raw, nil
}

// ExtractJSON returns the first balanced top-level JSON object in text,
// skipping braces inside string literals. Generators often wrap the object in
// prose or code fences.
func ExtractJSON(text string) (string, bool) {
	start := -1
	depth := 0
	inString := false
	escaped := false

	for i := 0; i < len(text); i++ {
		ch := text[i]

		if start == -1 {
			if ch == '{' {
				start = i
				depth = 1
			}
			continue
		}

		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}

		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}

	return "", false
}

// ParseText extracts the blueprint object from raw generator output and
// decodes it.
func ParseText(text string) (*Raw, error) {
	obj, ok := ExtractJSON(text)
	if !ok {
		return nil, fmt.Errorf("no JSON object found in generator output")
	}
	return Decode([]byte(obj))
}

// ParseInput accepts a JSON or YAML document, or generator output with the
// JSON object embedded in prose. The whole content is decoded first, so YAML
// flow mappings are not mistaken for embedded JSON.
func ParseInput(content []byte) (*Raw, error) {
	raw, err := Decode(content)
	if err == nil && !raw.empty() {
		return raw, nil
	}
	if _, ok := ExtractJSON(string(content)); ok {
		if embedded, textErr := ParseText(string(content)); textErr == nil {
			return embedded, nil
		}
	}
	if err != nil {
		return nil, err
	}
	return raw, nil
}
