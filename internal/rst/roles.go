package rst

import (
	"regexp"
	"strings"
)

// rolePattern matches the opening of a supported inline role up to and including its
// opening backtick. Group 1 is the role name.
var rolePattern = regexp.MustCompile(":(ref|doc|download):`")

var roleKinds = map[string]Kind{
	"ref":      KindRefRole,
	"doc":      KindDocRole,
	"download": KindDownloadRole,
}

// roleMode is the role scanner state carried from one line to the next.
type roleMode int

const (
	// expectingTag looks for the next role opening.
	expectingTag roleMode = iota
	// expectingCaptionClose is inside a role whose closing backtick has not been seen
	// yet. Only "<target>" delimiters and the closing backtick are looked for.
	expectingCaptionClose
)

type roleState struct {
	mode roleMode
	kind Kind // role being continued while in expectingCaptionClose

	// open is set while a "<" of the current role waits for its ">". The target may
	// wrap onto a following line, in which case it is balanced but never matched.
	open    bool
	ltLine  int
	ltByte  int
	ltInput string
}

// unterminated returns the error for a role whose "<" was never closed.
func (st roleState) unterminated() error {
	return malformed(st.ltLine, st.ltInput, st.ltByte)
}

// scanRoleLine scans one line for role references starting in state st and returns the
// state to continue with on the next line.
func scanRoleLine(st roleState, lineIdx int, line string, t target) (roleState, []Reference, error) {
	var refs []Reference
	pos := 0
	for pos <= len(line) {
		if st.mode == expectingCaptionClose {
			end := len(line)
			closed := false
			if idx := strings.IndexByte(line[pos:], '`'); idx >= 0 {
				end, closed = pos+idx, true
			}
			found, err := st.scanCaption(lineIdx, line, pos, end, t)
			if err != nil {
				return st, nil, err
			}
			refs = append(refs, found...)
			if !closed {
				return st, refs, nil
			}
			if st.open {
				return st, nil, st.unterminated()
			}
			st = roleState{}
			pos = end + 1
			continue
		}

		m := rolePattern.FindStringSubmatchIndex(line[pos:])
		if m == nil {
			break
		}
		kind := roleKinds[line[pos+m[2]:pos+m[3]]]
		start := pos + m[1]
		idx := strings.IndexByte(line[start:], '`')
		if idx < 0 {
			// The role wraps onto following lines; the rest of this line is caption.
			st = roleState{mode: expectingCaptionClose, kind: kind}
			pos = start
			continue
		}
		end := start + idx
		found, err := matchRoleContent(kind, lineIdx, line, start, end, t)
		if err != nil {
			return st, nil, err
		}
		refs = append(refs, found...)
		pos = end + 1
	}
	return st, refs, nil
}

// matchRoleContent checks the content line[start:end] of a role closed on the same
// line. The content is either the bare target or "caption <target>".
func matchRoleContent(kind Kind, lineIdx int, line string, start, end int, t target) ([]Reference, error) {
	content := line[start:end]
	if !strings.ContainsAny(content, "<>") {
		offset, text, ok := t.match(kind, content)
		if !ok {
			return nil, nil
		}
		return []Reference{{
			Location: Location{Line: lineIdx, Column: start + offset},
			Kind:     kind,
			Text:     text,
		}}, nil
	}
	st := roleState{mode: expectingCaptionClose, kind: kind}
	refs, err := st.scanCaption(lineIdx, line, start, end, t)
	if err != nil {
		return nil, err
	}
	if st.open {
		return nil, st.unterminated()
	}
	return refs, nil
}

// scanCaption walks the "<" and ">" delimiters in line[start:end], the part of the
// current role that lies on this line. Caption text outside the delimiters is never
// interpreted. A "<target>" complete within the segment is matched against t; one
// still open at end is recorded in st for the following line.
func (st *roleState) scanCaption(lineIdx int, line string, start, end int, t target) ([]Reference, error) {
	var refs []Reference
	pos := start
	for pos < end {
		if st.open {
			gt := strings.IndexByte(line[pos:end], '>')
			if gt < 0 {
				return refs, nil
			}
			// The target began on an earlier line.
			st.open = false
			pos += gt + 1
			continue
		}

		idx := strings.IndexAny(line[pos:end], "<>")
		if idx < 0 {
			return refs, nil
		}
		at := pos + idx
		if line[at] == '>' {
			return nil, malformed(lineIdx, line, at)
		}
		gt := strings.IndexByte(line[at+1:end], '>')
		if gt < 0 {
			st.open, st.ltLine, st.ltByte, st.ltInput = true, lineIdx, at, line
			return refs, nil
		}
		inner := line[at+1 : at+1+gt]
		if offset, text, ok := t.match(st.kind, inner); ok {
			refs = append(refs, Reference{
				Location: Location{Line: lineIdx, Column: at + 1 + offset},
				Kind:     st.kind,
				Text:     text,
			})
		}
		pos = at + 1 + gt + 1
	}
	return refs, nil
}
