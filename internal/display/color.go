package display

import (
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"git.home.luguber.info/inful/rsttools/internal/config"
)

// UseColor resolves a color mode for output written to w. In auto mode color is
// used only when w is a terminal that is not "dumb".
func UseColor(mode config.ColorMode, w io.Writer) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	if os.Getenv("TERM") == "dumb" {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Palette holds the colors used in text output.
type Palette struct {
	header  *color.Color
	changed *color.Color
	muted   *color.Color
	warn    *color.Color
}

// NewPalette returns a palette with color forced on or off, independent of
// fatih/color's own terminal detection.
func NewPalette(enabled bool) *Palette {
	p := &Palette{
		header:  color.New(color.Bold),
		changed: color.New(color.FgRed, color.Faint),
		muted:   color.New(color.Faint),
		warn:    color.New(color.FgYellow),
	}
	for _, c := range []*color.Color{p.header, p.changed, p.muted, p.warn} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// Highlight marks the changed part of a rewritten path. It satisfies
// rst.HighlightFunc.
func (p *Palette) Highlight(segment string) string {
	return p.changed.Sprint(segment)
}
