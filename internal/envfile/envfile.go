package envfile

import (
	"regexp"
	"strings"
)

// LineKind tags one physical line of an env file.
type LineKind int

const (
	KindAssignment LineKind = iota
	KindComment
	KindBlank
	KindUnknown
)

func (k LineKind) String() string {
	switch k {
	case KindAssignment:
		return "assignment"
	case KindComment:
		return "comment"
	case KindBlank:
		return "blank"
	case KindUnknown:
		return "unknown"
	}
	return "?"
}

// Line is one physical line. Raw always holds the exact original text so
// untouched lines round-trip byte-for-byte through Patch.
type Line struct {
	Kind  LineKind
	Key   string // Only for KindAssignment
	Value string // Only for KindAssignment, unquoted/uncommented
	Raw   string
}

var keyRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidKey reports whether s is a well-formed variable name.
func ValidKey(s string) bool {
	return keyRe.MatchString(s)
}

// Parse splits text into typed line records. A single trailing "\n" is
// absorbed rather than produced as a phantom blank line, so parse-then-patch
// of an unchanged file reproduces it exactly.
func Parse(text string) []Line {
	if text == "" {
		return nil
	}
	raws := strings.Split(text, "\n")
	if len(raws) > 0 && raws[len(raws)-1] == "" {
		raws = raws[:len(raws)-1]
	}

	lines := make([]Line, 0, len(raws))
	for _, raw := range raws {
		lines = append(lines, parseLine(raw))
	}
	return lines
}

func parseLine(raw string) Line {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Line{Kind: KindBlank, Raw: raw}
	}
	if strings.HasPrefix(trimmed, "#") {
		return Line{Kind: KindComment, Raw: raw}
	}

	body := trimmed
	if rest, ok := strings.CutPrefix(body, "export "); ok {
		body = strings.TrimSpace(rest)
	}

	eq := strings.Index(body, "=")
	if eq < 0 {
		return Line{Kind: KindUnknown, Raw: raw}
	}

	key := strings.TrimSpace(body[:eq])
	if !keyRe.MatchString(key) {
		// Malformed left side. Preserve verbatim, never patch.
		return Line{Kind: KindUnknown, Raw: raw}
	}

	value := parseValue(body[eq+1:])
	return Line{Kind: KindAssignment, Key: key, Value: value, Raw: raw}
}

// parseValue unwraps quotes or strips an inline comment from the right-hand
// side of an assignment.
func parseValue(rhs string) string {
	v := strings.TrimSpace(rhs)

	if len(v) >= 2 && v[0] == '"' && v[len(v)-1] == '"' {
		return unescapeDouble(v[1 : len(v)-1])
	}
	if len(v) >= 2 && v[0] == '\'' && v[len(v)-1] == '\'' {
		// Single quotes are literal, no escape processing.
		return v[1 : len(v)-1]
	}

	// Unquoted: a " #" starts a trailing comment.
	if idx := strings.Index(v, " #"); idx >= 0 {
		v = strings.TrimSpace(v[:idx])
	} else if idx := strings.Index(v, "\t#"); idx >= 0 {
		v = strings.TrimSpace(v[:idx])
	}
	return v
}

func unescapeDouble(s string) string {
	if !strings.Contains(s, "\\") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			switch s[i+1] {
			case '"', '\\':
				i++
				b.WriteByte(s[i])
				continue
			}
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// Vars extracts the key/value map from parsed lines. Duplicate keys: the
// last occurrence wins, matching what Patch treats as authoritative.
func Vars(lines []Line) map[string]string {
	vars := make(map[string]string)
	for _, l := range lines {
		if l.Kind == KindAssignment {
			vars[l.Key] = l.Value
		}
	}
	return vars
}
