package compile

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Generator responses embed JSON three ways: inside a fenced ```json block,
// inline with no fence, or not at all. Extraction tries each strategy in
// order and reports which one succeeded, so callers can distinguish a parsed
// zero from an absent payload.

// Outcome identifies which extraction strategy produced the result.
type Outcome int

const (
	// OutcomeFenced means JSON was found inside a ```json code fence.
	OutcomeFenced Outcome = iota
	// OutcomeInline means a bare brace-delimited object was found.
	OutcomeInline
	// OutcomeEmpty means no parseable JSON was present.
	OutcomeEmpty
)

func (o Outcome) String() string {
	switch o {
	case OutcomeFenced:
		return "fenced"
	case OutcomeInline:
		return "inline"
	default:
		return "empty"
	}
}

var fencedJSONRe = regexp.MustCompile("(?s)```json\\s*(\\{.*?\\})\\s*```")

// ExtractObject locates a JSON object in free-form generator text and
// unmarshals it into target. It returns OutcomeEmpty, leaving target
// untouched, when no strategy yields valid JSON; it never returns an error.
func ExtractObject(text string, target any) Outcome {
	if m := fencedJSONRe.FindStringSubmatch(text); m != nil {
		if json.Unmarshal([]byte(m[1]), target) == nil {
			return OutcomeFenced
		}
	}

	if raw, ok := firstBraceSubstring(text); ok {
		if json.Unmarshal([]byte(raw), target) == nil {
			return OutcomeInline
		}
	}

	return OutcomeEmpty
}

// StripFence removes a surrounding ```json fence, if present, and returns the
// trimmed inner text. Text without a fence is returned trimmed.
func StripFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}

	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}

// firstBraceSubstring returns the first balanced brace-delimited substring.
// Braces inside JSON strings are skipped.
func firstBraceSubstring(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
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
