package display

import (
	"fmt"
	"io"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"git.home.luguber.info/inful/rsttools/internal/rename"
)

// DiffContext is the number of unchanged lines shown around each hunk.
const DiffContext = 3

// Diff writes a unified diff of every planned file rewrite.
func Diff(w io.Writer, plan *rename.Plan) error {
	for i := range plan.Files {
		file := &plan.Files[i]
		if len(file.Changes) == 0 {
			continue
		}
		before, after, err := file.Contents()
		if err != nil {
			return fmt.Errorf("diff %s: %w", file.RelativePath, err)
		}
		patch, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
			A:        splitLinesKeepNL(string(before)),
			B:        splitLinesKeepNL(string(after)),
			FromFile: "a/" + file.RelativePath,
			ToFile:   "b/" + file.RelativePath,
			Context:  DiffContext,
		})
		if err != nil {
			return fmt.Errorf("diff %s: %w", file.RelativePath, err)
		}
		if _, err := io.WriteString(w, patch); err != nil {
			return err
		}
	}
	return nil
}

// splitLinesKeepNL splits s into lines that keep their "\n". A last line without
// one gets it added so hunks stay well formed.
func splitLinesKeepNL(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.SplitAfter(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	} else {
		lines[len(lines)-1] += "\n"
	}
	return lines
}
