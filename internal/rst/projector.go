package rst

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"unicode/utf8"
)

var (
	// ErrLocationMismatch indicates a location that does not hold the old target.
	ErrLocationMismatch = errors.New("location does not reference the old target")

	// ErrDestinationNotDocument indicates an extension-less reference would have to be
	// rewritten to a destination that is not a documentation source.
	ErrDestinationNotDocument = errors.New("destination is not a documentation source")
)

// Escape sequences used by ANSIHighlight.
const (
	highlightStart = "\033[31;2m"
	highlightEnd   = "\033[0m"
)

// HighlightFunc decorates the part of a rewritten path that differs from the old one.
type HighlightFunc func(segment string) string

// ANSIHighlight renders segment in dim red for terminals.
func ANSIHighlight(segment string) string {
	return highlightStart + segment + highlightEnd
}

// ChangeRecord is the rewrite of a single line. All references on the line are
// applied in Rewritten.
type ChangeRecord struct {
	Line        int    `json:"line"`
	Original    string `json:"original"`
	Rewritten   string `json:"rewritten"`
	Highlighted string `json:"highlighted"`
}

// Projector turns reference locations into line rewrites.
type Projector struct {
	extension string
	highlight HighlightFunc
}

// NewProjector returns a Projector for the given documentation extension. A nil
// highlight selects ANSIHighlight.
func NewProjector(extension string, highlight HighlightFunc) *Projector {
	if extension == "" {
		extension = DefaultExtension
	}
	if !strings.HasPrefix(extension, ".") {
		extension = "." + extension
	}
	if highlight == nil {
		highlight = ANSIHighlight
	}
	return &Projector{extension: extension, highlight: highlight}
}

// Project is shorthand for NewProjector(DefaultExtension, nil).Project.
func Project(lines []string, locs []Location, oldTarget, newTarget string) ([]ChangeRecord, error) {
	return NewProjector(DefaultExtension, nil).Project(lines, locs, oldTarget, newTarget)
}

// Project rewrites oldTarget to newTarget at every location and returns one record
// per changed line, ordered by line. lines is not modified.
//
// A location where only the extension-less stem of oldTarget is written is rewritten
// to the stem of newTarget, so the result omits the extension as well. Lines whose
// text does not change are omitted, which makes Project(lines, locs, t, t) empty.
func (p *Projector) Project(lines []string, locs []Location, oldTarget, newTarget string) ([]ChangeRecord, error) {
	oldPath := normalizePath(oldTarget)
	newPath := normalizePath(newTarget)

	byLine := make(map[int][]int)
	for _, loc := range locs {
		if loc.Line < 0 || loc.Line >= len(lines) {
			return nil, fmt.Errorf("%w: line %d column %d out of range", ErrLocationMismatch, loc.Line, loc.Column)
		}
		offset, ok := byteOffset(lines[loc.Line], loc.Column)
		if !ok {
			return nil, fmt.Errorf("%w: line %d column %d out of range", ErrLocationMismatch, loc.Line, loc.Column)
		}
		byLine[loc.Line] = append(byLine[loc.Line], offset)
	}

	indexes := make([]int, 0, len(byLine))
	for idx := range byLine {
		indexes = append(indexes, idx)
	}
	slices.Sort(indexes)

	records := make([]ChangeRecord, 0, len(indexes))
	for _, idx := range indexes {
		cols := byLine[idx]
		slices.Sort(cols)
		cols = slices.Compact(cols)

		record, err := p.rewriteLine(idx, lines[idx], cols, oldPath, newPath)
		if err != nil {
			return nil, err
		}
		if record.Rewritten == record.Original {
			continue
		}
		records = append(records, record)
	}
	return records, nil
}

// byteOffset converts a character column of line into a byte offset. The column just
// past the last character is valid.
func byteOffset(line string, column int) (int, bool) {
	if column < 0 {
		return 0, false
	}
	offset := 0
	for i := 0; i < column; i++ {
		if offset >= len(line) {
			return 0, false
		}
		_, size := utf8.DecodeRuneInString(line[offset:])
		offset += size
	}
	return offset, true
}

func (p *Projector) rewriteLine(idx int, original string, offsets []int, oldPath, newPath string) (ChangeRecord, error) {
	var rewritten, highlighted strings.Builder
	last := 0
	for _, at := range offsets {
		if at < last {
			return ChangeRecord{}, fmt.Errorf("%w: line %d offset %d overlaps a previous reference", ErrLocationMismatch, idx, at)
		}
		from, to, err := p.substitution(original[at:], oldPath, newPath)
		if err != nil {
			return ChangeRecord{}, fmt.Errorf("line %d offset %d: %w", idx, at, err)
		}
		rewritten.WriteString(original[last:at])
		rewritten.WriteString(to)
		highlighted.WriteString(original[last:at])
		highlighted.WriteString(p.highlightChange(from, to))
		last = at + len(from)
	}
	rewritten.WriteString(original[last:])
	highlighted.WriteString(original[last:])

	return ChangeRecord{
		Line:        idx,
		Original:    original,
		Rewritten:   rewritten.String(),
		Highlighted: highlighted.String(),
	}, nil
}

// substitution decides which text written at the start of rest is replaced and by what.
func (p *Projector) substitution(rest, oldPath, newPath string) (string, string, error) {
	if strings.HasPrefix(rest, oldPath) {
		return oldPath, newPath, nil
	}
	if strings.HasSuffix(oldPath, p.extension) {
		oldStem := strings.TrimSuffix(oldPath, p.extension)
		if oldStem != "" && strings.HasPrefix(rest, oldStem) {
			if !strings.HasSuffix(newPath, p.extension) {
				return "", "", fmt.Errorf("%w: %s", ErrDestinationNotDocument, newPath)
			}
			return oldStem, strings.TrimSuffix(newPath, p.extension), nil
		}
	}
	return "", "", ErrLocationMismatch
}

// highlightChange returns to with its part that differs from from highlighted.
func (p *Projector) highlightChange(from, to string) string {
	prefix, suffix := commonAffixes(from, to)
	middle := to[prefix : len(to)-suffix]
	if middle == "" {
		return to
	}
	return to[:prefix] + p.highlight(middle) + to[len(to)-suffix:]
}

// commonAffixes returns the byte lengths of the longest common prefix of a and b and
// of the longest common suffix of what remains. Both fall on rune boundaries.
func commonAffixes(a, b string) (int, int) {
	if a == "" || b == "" {
		return 0, 0
	}
	prefix := 0
	for prefix < len(a) && prefix < len(b) && a[prefix] == b[prefix] {
		prefix++
	}
	for prefix > 0 && prefix < len(b) && !utf8.RuneStart(b[prefix]) {
		prefix--
	}

	suffix := 0
	for prefix < len(a)-suffix && prefix < len(b)-suffix && a[len(a)-suffix-1] == b[len(b)-suffix-1] {
		suffix++
	}
	for suffix > 0 && !utf8.RuneStart(b[len(b)-suffix]) {
		suffix--
	}
	return prefix, suffix
}

func normalizePath(p string) string {
	return strings.TrimPrefix(filepath.ToSlash(strings.TrimSpace(p)), "/")
}
