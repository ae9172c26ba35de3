package rst

import (
	"regexp"
	"strings"
	"unicode"
)

// fieldPattern matches a field list item such as ":date: 2024-01-02 10:00:00".
var fieldPattern = regexp.MustCompile(`^:([^:\s][^:]*):(?:[ \t]+(.*?))?\s*$`)

// FieldValue returns the value of the first top-level field named name.
func FieldValue(lines []string, name string) (string, bool) {
	for _, line := range lines {
		if m := fieldPattern.FindStringSubmatch(line); m != nil && m[1] == name {
			return m[2], true
		}
	}
	return "", false
}

// SetField returns a copy of lines where field name holds value.
//
// An existing field is replaced in place. Otherwise the field is appended to the
// leading field list, or placed after the title block when there is none.
func SetField(lines []string, name, value string) []string {
	field := ":" + name + ": " + value
	out := make([]string, 0, len(lines)+3)

	for i, line := range lines {
		if m := fieldPattern.FindStringSubmatch(line); m != nil && m[1] == name {
			out = append(out, lines...)
			out[i] = field
			return out
		}
	}

	if end, ok := fieldListEnd(lines); ok {
		out = append(out, lines[:end]...)
		out = append(out, field)
		return append(out, lines[end:]...)
	}

	titleEnd := titleBlockEnd(lines)
	insertAt := titleEnd
	for insertAt < len(lines) && strings.TrimSpace(lines[insertAt]) == "" {
		insertAt++
	}
	out = append(out, lines[:insertAt]...)
	if titleEnd > 0 && insertAt == titleEnd {
		out = append(out, "")
	}
	out = append(out, field)
	if insertAt < len(lines) {
		out = append(out, "")
	}
	return append(out, lines[insertAt:]...)
}

// fieldListEnd returns the index just past the first run of field lines, provided the
// run precedes any body text.
func fieldListEnd(lines []string) (int, bool) {
	start := -1
	body := titleBlockEnd(lines)
	for i := body; i < len(lines); i++ {
		trimmed := strings.TrimSpace(lines[i])
		if trimmed == "" {
			if start >= 0 {
				return i, true
			}
			continue
		}
		if fieldPattern.MatchString(lines[i]) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			return i, true
		}
		return 0, false
	}
	if start >= 0 {
		return len(lines), true
	}
	return 0, false
}

// titleBlockEnd returns the index just past a leading section title, or 0 when the
// document does not start with one. Both "Title/====" and "====/Title/====" forms
// are recognised.
func titleBlockEnd(lines []string) int {
	i := 0
	for i < len(lines) && strings.TrimSpace(lines[i]) == "" {
		i++
	}
	if i+1 >= len(lines) {
		return 0
	}
	if isAdornment(lines[i]) && i+2 < len(lines) && isAdornment(lines[i+2]) && !isAdornment(lines[i+1]) {
		return i + 3
	}
	if !isAdornment(lines[i]) && isAdornment(lines[i+1]) {
		return i + 2
	}
	return 0
}

// isAdornment reports whether line is a section underline or overline: a repeated
// punctuation character.
func isAdornment(line string) bool {
	line = strings.TrimRight(line, " \t\r")
	if len(line) < 2 {
		return false
	}
	c := rune(line[0])
	if !unicode.IsPunct(c) && !unicode.IsSymbol(c) {
		return false
	}
	for _, r := range line {
		if r != c {
			return false
		}
	}
	return true
}
