package rst

import (
	"path"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"unicode"
)

// DefaultExtension is the extension of documentation sources.
const DefaultExtension = ".rst"

// directivePattern matches a directive whose only argument is a path, e.g.
// ".. image:: /pics/object.png". Group 1 is the directive name, group 2 the optional
// leading "/" and group 3 the path as written.
var directivePattern = regexp.MustCompile(`^\s*\.\. (image|figure|literalinclude)::[ \t]*(/?)(.*?)\s*$`)

var directiveKinds = map[string]Kind{
	"image":          KindImage,
	"figure":         KindFigure,
	"literalinclude": KindLiteralInclude,
}

// toctreeMarker opens a toctree body. Entries must be indented past its column.
const toctreeMarker = ".. toctree::"

// Scanner locates references to a target path. The zero value is not usable; use
// NewScanner. A Scanner holds no per-scan state and may be shared between goroutines.
type Scanner struct {
	extension string
}

// NewScanner returns a Scanner treating extension (e.g. ".rst") as the documentation
// source extension. An empty extension selects DefaultExtension.
func NewScanner(extension string) *Scanner {
	if extension == "" {
		extension = DefaultExtension
	}
	if !strings.HasPrefix(extension, ".") {
		extension = "." + extension
	}
	return &Scanner{extension: extension}
}

// Extension returns the documentation source extension.
func (s *Scanner) Extension() string {
	return s.extension
}

// Scan is shorthand for NewScanner(DefaultExtension).Scan.
func Scan(lines []string, target string) ([]Reference, error) {
	return NewScanner(DefaultExtension).Scan(lines, target)
}

// Scan returns every reference to target in lines, ordered by line and then column.
//
// target is relative to the scanned file; a leading "/" is ignored. Lines must not
// carry their newline, although a trailing "\r" is tolerated. A role with unbalanced
// caption delimiters aborts the scan with a *MalformedMarkupError; a "<" left open
// at the end of input counts as unbalanced. Columns are counted in characters.
func (s *Scanner) Scan(lines []string, target string) ([]Reference, error) {
	t := s.newTarget(target)
	if t.path == "" {
		return nil, nil
	}

	var refs []Reference
	toc := toctreeState{}
	roles := roleState{}
	for i, line := range lines {
		if ref, ok := matchDirective(i, line, t); ok {
			refs = append(refs, ref)
		}

		var entry Reference
		var ok bool
		toc, entry, ok = toc.step(i, line, t)
		if ok {
			refs = append(refs, entry)
		}

		var found []Reference
		var err error
		roles, found, err = scanRoleLine(roles, i, line, t)
		if err != nil {
			return nil, err
		}
		refs = append(refs, found...)
	}
	if roles.open {
		return nil, roles.unterminated()
	}

	for i := range refs {
		refs[i].Column = runeColumn(lines[refs[i].Line], refs[i].Column)
	}
	slices.SortStableFunc(refs, func(a, b Reference) int {
		if a.Line != b.Line {
			return a.Line - b.Line
		}
		return a.Column - b.Column
	})
	return refs, nil
}

// target is the normalized path being searched for.
type target struct {
	path string // slash separated, without leading "/"
	stem string // path minus the documentation extension; empty for non-documents
}

func (s *Scanner) newTarget(raw string) target {
	p := normalizePath(raw)
	t := target{path: p}
	if strings.HasSuffix(p, s.extension) && len(p) > len(s.extension) {
		t.stem = strings.TrimSuffix(p, s.extension)
	}
	return t
}

func (t target) isDocument() bool {
	return t.stem != ""
}

// match compares text written in markup of the given kind against the target.
// It returns the byte offset of the path inside text (1 when a leading "/" was
// skipped) and the matched path.
func (t target) match(kind Kind, text string) (int, string, bool) {
	offset := 0
	if kind != KindRefRole && strings.HasPrefix(text, "/") {
		offset, text = 1, text[1:]
	}
	switch kind {
	case KindRefRole, KindDocRole:
		if t.isDocument() && text == t.stem {
			return offset, text, true
		}
	case KindToctreeEntry:
		if t.isDocument() && (text == t.path || text == t.stem) {
			return offset, text, true
		}
	default:
		if text == t.path {
			return offset, text, true
		}
	}
	return 0, "", false
}

// Stem returns the base name of target without its extension. A file that does not
// contain the stem cannot reference target, which makes it a cheap pre-filter.
func Stem(target string) string {
	base := path.Base(filepath.ToSlash(target))
	return strings.TrimSuffix(base, path.Ext(base))
}

// MayReference reports whether content could hold a reference to target.
func MayReference(content, target string) bool {
	stem := Stem(target)
	return stem != "" && stem != "." && strings.Contains(content, stem)
}

func matchDirective(lineIdx int, line string, t target) (Reference, bool) {
	m := directivePattern.FindStringSubmatchIndex(line)
	if m == nil {
		return Reference{}, false
	}
	kind := directiveKinds[line[m[2]:m[3]]]
	if line[m[6]:m[7]] != t.path {
		return Reference{}, false
	}
	return Reference{
		Location: Location{Line: lineIdx, Column: m[6]},
		Kind:     kind,
		Text:     t.path,
	}, true
}

// toctreeState tracks whether the scan is inside a toctree body.
type toctreeState struct {
	inside    bool
	minIndent int
}

// step advances the toctree state over one line and reports an entry that matches t.
func (s toctreeState) step(lineIdx int, line string, t target) (toctreeState, Reference, bool) {
	if s.inside {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			return s, Reference{}, false
		}
		indent := indentation(line)
		if indent >= s.minIndent {
			if !t.isDocument() {
				return s, Reference{}, false
			}
			offset, text, ok := t.match(KindToctreeEntry, trimmed)
			if !ok {
				return s, Reference{}, false
			}
			return s, Reference{
				Location: Location{Line: lineIdx, Column: indent + offset},
				Kind:     KindToctreeEntry,
				Text:     text,
			}, true
		}
		// A dedented line closes the body and may itself open the next toctree.
		s = toctreeState{}
	}

	if col, ok := toctreeMarkerColumn(line); ok {
		return toctreeState{inside: true, minIndent: col + 1}, Reference{}, false
	}
	return s, Reference{}, false
}

func toctreeMarkerColumn(line string) (int, bool) {
	idx := strings.Index(line, toctreeMarker)
	if idx < 0 {
		return 0, false
	}
	if strings.TrimSpace(line[:idx]) != "" || strings.TrimSpace(line[idx+len(toctreeMarker):]) != "" {
		return 0, false
	}
	return idx, true
}

// indentation returns the byte column of the first non-space character.
func indentation(line string) int {
	idx := strings.IndexFunc(line, func(r rune) bool { return !unicode.IsSpace(r) })
	if idx < 0 {
		return len(line)
	}
	return idx
}
