package plan

import (
	"encoding/json"
	"regexp"
	"sort"
	"strings"
)

var fenceRE = regexp.MustCompile("(?is)```(?:json)?\\s*(.*?)```")

// Extract locates a JSON object inside raw model output. It tolerates
// prose around the JSON, fenced code blocks, multiple JSON-looking
// fragments, and malformed trailing text. Returns nil when no candidate
// parses into an object.
func Extract(raw string) map[string]any {
	text := strings.TrimSpace(raw)
	if text == "" {
		return nil
	}

	var whole any
	if err := json.Unmarshal([]byte(text), &whole); err == nil {
		if obj, ok := whole.(map[string]any); ok {
			return obj
		}
	}

	if obj := pickCandidate(fencedBlocks(text)); obj != nil {
		return obj
	}

	return pickCandidate(BalancedObjects(text))
}

func fencedBlocks(text string) []string {
	var out []string
	for _, match := range fenceRE.FindAllStringSubmatch(text, -1) {
		out = append(out, strings.TrimSpace(match[1]))
	}
	return out
}

// BalancedObjects scans text for every position where an object could
// begin and returns each brace-balanced span. The scanner tracks string
// and escape state so braces inside string values do not corrupt
// nesting. Exposed for testing independently of JSON parsing.
func BalancedObjects(text string) []string {
	var candidates []string
	for i := 0; i < len(text); i++ {
		if text[i] != '{' {
			continue
		}
		depth := 0
		inString := false
		escaped := false
		for j := i; j < len(text); j++ {
			ch := text[j]
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
			}
			if depth == 0 {
				candidates = append(candidates, text[i:j+1])
				i = j
				break
			}
		}
	}
	return candidates
}

// pickCandidate parses candidates and disambiguates: longest first,
// preferring an object carrying an operation-array key, then a nested
// plan sub-object, then the longest parse.
func pickCandidate(candidates []string) map[string]any {
	type parsed struct {
		obj  map[string]any
		size int
	}
	var objects []parsed
	for _, candidate := range candidates {
		var value any
		if err := json.Unmarshal([]byte(candidate), &value); err != nil {
			continue
		}
		obj, ok := value.(map[string]any)
		if !ok {
			continue
		}
		size := 0
		if data, err := json.Marshal(obj); err == nil {
			size = len(data)
		}
		objects = append(objects, parsed{obj: obj, size: size})
	}

	sort.SliceStable(objects, func(i, j int) bool {
		return objects[i].size > objects[j].size
	})

	for _, p := range objects {
		for _, key := range RequiredArrayKeys {
			if _, ok := p.obj[key]; ok {
				return p.obj
			}
		}
		if nested, ok := asMap(p.obj["plan"]); ok {
			return nested
		}
	}

	if len(objects) > 0 {
		return objects[0].obj
	}
	return nil
}
