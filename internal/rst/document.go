package rst

import (
	"fmt"
	"strings"
)

// Document is a source file split into newline-stripped lines.
type Document struct {
	Lines []string
	// FinalNewline records whether the content ended with "\n".
	FinalNewline bool
}

// ParseDocument splits content on "\n". Carriage returns stay part of their line so
// CRLF files round-trip unchanged.
func ParseDocument(content []byte) Document {
	text := string(content)
	if text == "" {
		return Document{}
	}
	final := strings.HasSuffix(text, "\n")
	text = strings.TrimSuffix(text, "\n")
	return Document{Lines: strings.Split(text, "\n"), FinalNewline: final}
}

// Bytes joins the lines back into file content.
func (d Document) Bytes() []byte {
	if len(d.Lines) == 0 {
		return nil
	}
	text := strings.Join(d.Lines, "\n")
	if d.FinalNewline {
		text += "\n"
	}
	return []byte(text)
}

// Apply returns a copy of d with changes applied. Each change must still match the
// line it was computed from.
func (d Document) Apply(changes []ChangeRecord) (Document, error) {
	lines := make([]string, len(d.Lines))
	copy(lines, d.Lines)
	for _, c := range changes {
		if c.Line < 0 || c.Line >= len(lines) {
			return Document{}, fmt.Errorf("%w: line %d out of range", ErrLocationMismatch, c.Line)
		}
		if lines[c.Line] != c.Original {
			return Document{}, fmt.Errorf("%w: line %d changed since it was scanned", ErrLocationMismatch, c.Line)
		}
		lines[c.Line] = c.Rewritten
	}
	return Document{Lines: lines, FinalNewline: d.FinalNewline}, nil
}
