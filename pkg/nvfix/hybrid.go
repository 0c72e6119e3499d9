package nvfix

import (
	"encoding/json"
	"strconv"
	"strings"
)

// IsHybrid reports whether the message is a JSON object with a trailing
// SOH metadata section.
func IsHybrid(s string) bool {
	return strings.HasPrefix(s, "{") && strings.Contains(s, SOH)
}

// SplitHybrid isolates the leading JSON object by scanning for its
// matching closing brace, respecting double-quoted strings and
// backslash escapes, and parses the remainder as SOH metadata.
func SplitHybrid(s string) (jsonPart string, meta []Field, err error) {
	if !strings.HasPrefix(s, "{") {
		err = newParseError(s, "hybrid message must start with {")
		return
	}

	depth := 0
	inString := false
	escaped := false
	end := -1

scan:
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			escaped = false
		case inString:
			if c == '\\' {
				escaped = true
			} else if c == '"' {
				inString = false
			}
		case c == '"':
			inString = true
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				end = i
				break scan
			}
		}
	}

	if end < 0 {
		err = newParseError(s, "unbalanced braces in hybrid message")
		return
	}

	jsonPart = s[:end+1]
	rest := s[end+1:]
	if rest == "" {
		return
	}
	if !strings.HasPrefix(rest, SOH) {
		err = newParseError(s, "unexpected text after json object")
		return
	}

	meta, err = Split(rest)
	if err != nil {
		return
	}

	return
}

// Object decodes a JSON or hybrid message into a generic map. Metadata
// keys are lower-cased and their values numerically promoted before the
// merge.
func Object(s string) (m map[string]interface{}, err error) {
	jsonPart := s
	var meta []Field

	if IsHybrid(s) {
		jsonPart, meta, err = SplitHybrid(s)
		if err != nil {
			return
		}
	}

	err = json.Unmarshal([]byte(jsonPart), &m)
	if err != nil {
		err = &ParseError{Raw: s, Err: err}
		return nil, err
	}

	for _, f := range meta {
		m[strings.ToLower(f.Tag)] = Promote(f.Value)
	}

	return
}

// Promote converts a metadata value to its natural type: pure digits
// become an integer, digits.digits become a real, everything else stays
// a string.
func Promote(v string) interface{} {
	if v == "" {
		return v
	}

	digits := 0
	dots := 0
	dotAt := -1
	for i := 0; i < len(v); i++ {
		switch {
		case v[i] >= '0' && v[i] <= '9':
			digits++
		case v[i] == '.':
			dots++
			dotAt = i
		default:
			return v
		}
	}

	if dots == 0 {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return v
		}
		return n
	}

	// exactly one dot with digits on both sides
	if dots == 1 && dotAt > 0 && dotAt < len(v)-1 {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return v
		}
		return f
	}

	return v
}
