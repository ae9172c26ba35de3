package rst

import (
	stderrors "errors"
	"fmt"
	"unicode/utf8"

	"git.home.luguber.info/inful/rsttools/internal/foundation/errors"
)

// MalformedMarkupError reports a role whose caption target delimiters are unbalanced:
// a "<" without a closing ">" or a ">" without an opening "<".
//
// It is never recovered inside the package. A broken role makes the extent of every
// following reference on the line uncertain, so guessing could rewrite the wrong text.
type MalformedMarkupError struct {
	Line    int    // zero-based line index
	Column  int    // character column of the offending delimiter
	Content string // the line as scanned
}

func (e *MalformedMarkupError) Error() string {
	return fmt.Sprintf("malformed markup on line %d, column %d: unbalanced caption delimiter in %q",
		e.Line+1, e.Column+1, e.Content)
}

// malformed reports the delimiter at byte offset at of line.
func malformed(lineIdx int, line string, at int) *MalformedMarkupError {
	return &MalformedMarkupError{Line: lineIdx, Column: runeColumn(line, at), Content: line}
}

// runeColumn converts a byte offset of line into a character column.
func runeColumn(line string, offset int) int {
	return utf8.RuneCountInString(line[:offset])
}

// ClassifyScanError wraps a Scan failure for file. Malformed markup is the author's
// to fix and carries its one-based position; anything else is a defect.
func ClassifyScanError(err error, file string) error {
	var malformed *MalformedMarkupError
	if stderrors.As(err, &malformed) {
		return errors.MarkupError("cannot process documentation file").
			WithCause(err).
			WithContext("file", file).
			WithContextMap(errors.ErrorContext{"line": malformed.Line + 1, "column": malformed.Column + 1}).
			Build()
	}
	return errors.InternalError("reference scan failed").
		WithCause(err).
		WithContext("file", file).
		Build()
}
