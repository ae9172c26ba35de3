package display

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/rsttools/internal/cascade"
	"git.home.luguber.info/inful/rsttools/internal/config"
	"git.home.luguber.info/inful/rsttools/internal/rename"
	"git.home.luguber.info/inful/rsttools/internal/unref"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

// logoPlan plans renaming img/logo.png to img/brand.png in a two-file project.
func logoPlan(t *testing.T, palette *Palette) *rename.Plan {
	t.Helper()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "index.rst"), "Index\n=====\n\n.. image:: img/logo.png\n")
	writeFile(t, filepath.Join(root, "guide", "install.rst"), "Install\n=======\n\n.. figure:: ../img/logo.png\n   :alt: logo\n")
	writeFile(t, filepath.Join(root, "img", "logo.png"), "png")

	r, err := rename.New(rename.Options{
		Source:      filepath.Join(root, "img", "logo.png"),
		Destination: filepath.Join(root, "img", "brand.png"),
		BaseDir:     root,
		Highlight:   palette.Highlight,
	})
	require.NoError(t, err)
	plan, err := r.Plan(context.Background())
	require.NoError(t, err)
	return plan
}

func TestTextFormatter_Plan(t *testing.T) {
	palette := NewPalette(false)
	plan := logoPlan(t, palette)

	var buf bytes.Buffer
	require.NoError(t, NewFormatter("text", palette).Plan(&buf, plan))

	out := buf.String()
	assert.Contains(t, out, "guide/install.rst\n[4];\t.. figure:: ../img/logo.png\n\t.. figure:: ../img/brand.png\n\n")
	assert.Contains(t, out, "index.rst\n[4];\t.. image:: img/logo.png\n\t.. image:: img/brand.png\n\n")
	assert.Contains(t, out, "2 lines in 2 files will be updated")
	assert.NotContains(t, out, "\x1b[")
}

func TestTextFormatter_PlanWithoutReferences(t *testing.T) {
	plan := &rename.Plan{Source: filepath.Join("base", "img", "a.png"), BaseDir: "base"}

	var buf bytes.Buffer
	require.NoError(t, NewFormatter("text", nil).Plan(&buf, plan))
	assert.Equal(t, "No references found. Only the file img/a.png will be renamed\n", buf.String())
}

func TestTextFormatter_References(t *testing.T) {
	plan := logoPlan(t, NewPalette(false))

	var buf bytes.Buffer
	require.NoError(t, NewFormatter("text", nil).References(&buf, plan))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "guide/install.rst:4:13\tfigure\t../img/logo.png", lines[0])
	assert.Equal(t, "index.rst:4:12\timage\timg/logo.png", lines[1])
}

func TestJSONFormatter_Plan(t *testing.T) {
	plan := logoPlan(t, NewPalette(false))

	var buf bytes.Buffer
	require.NoError(t, NewFormatter("json", nil).Plan(&buf, plan))

	var decoded struct {
		Files []struct {
			File       string `json:"file"`
			References []struct {
				Line int    `json:"line"`
				Kind string `json:"kind"`
			} `json:"references"`
		} `json:"files"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded.Files, 2)
	assert.Equal(t, "guide/install.rst", decoded.Files[0].File)
	assert.Equal(t, 3, decoded.Files[0].References[0].Line)
	assert.Equal(t, "figure", decoded.Files[0].References[0].Kind)
}

func TestTextFormatter_Unreferenced(t *testing.T) {
	report := &unref.Report{Resources: []unref.Resource{
		{RelativePath: "img/a.png", References: 2},
		{RelativePath: "img/b.png"},
		{RelativePath: "files/c.zip"},
	}}

	var buf bytes.Buffer
	require.NoError(t, NewFormatter("text", nil).Unreferenced(&buf, report))
	assert.Equal(t, "img/b.png\nfiles/c.zip\n", buf.String())
}

func TestTextFormatter_Cascade(t *testing.T) {
	entries := []cascade.Entry{{Path: "a.rst", Date: "2024-01-01 10:00:00"}}

	var buf bytes.Buffer
	f := NewFormatter("text", nil)
	require.NoError(t, f.Cascade(&buf, &cascade.Report{DryRun: true, Entries: entries}))
	assert.Equal(t, "a.rst date would be set to 2024-01-01 10:00:00\n", buf.String())

	buf.Reset()
	require.NoError(t, f.Cascade(&buf, &cascade.Report{Entries: entries}))
	assert.Equal(t, "processed a.rst with date 2024-01-01 10:00:00\n", buf.String())
}

func TestTextFormatter_Result(t *testing.T) {
	plan := &rename.Plan{
		Source:      filepath.Join("base", "a.rst"),
		Destination: filepath.Join("base", "b.rst"),
		BaseDir:     "base",
	}
	result := &rename.Result{Plan: plan, FilesUpdated: []string{"index.rst"}, GitMove: true}

	var buf bytes.Buffer
	require.NoError(t, NewFormatter("text", nil).Result(&buf, result))
	assert.Equal(t, "a.rst → b.rst (moved in git)\nUpdated 1 file\n", buf.String())
}

func TestDiff(t *testing.T) {
	plan := logoPlan(t, NewPalette(false))

	var buf bytes.Buffer
	require.NoError(t, Diff(&buf, plan))

	out := buf.String()
	assert.Contains(t, out, "--- a/index.rst\n+++ b/index.rst\n")
	assert.Contains(t, out, "-.. image:: img/logo.png\n+.. image:: img/brand.png\n")
	assert.Contains(t, out, "--- a/guide/install.rst\n")
	assert.Contains(t, out, " Install\n")
}

func TestDiff_HighlightNeverLeaksIntoPatch(t *testing.T) {
	plan := logoPlan(t, NewPalette(true))

	var buf bytes.Buffer
	require.NoError(t, Diff(&buf, plan))
	assert.NotContains(t, buf.String(), "\x1b[")
}

func TestSplitLinesKeepNL(t *testing.T) {
	assert.Nil(t, splitLinesKeepNL(""))
	assert.Equal(t, []string{"a\n", "b\n"}, splitLinesKeepNL("a\nb\n"))
	assert.Equal(t, []string{"a\n", "b\n"}, splitLinesKeepNL("a\nb"))
}

func TestPalette(t *testing.T) {
	assert.Equal(t, "logo.png", NewPalette(false).Highlight("logo.png"))
	assert.Contains(t, NewPalette(true).Highlight("logo.png"), "\x1b[31;2m")
}

func TestUseColor(t *testing.T) {
	var buf bytes.Buffer
	assert.True(t, UseColor(config.ColorAlways, &buf))
	assert.False(t, UseColor(config.ColorNever, &buf))
	assert.False(t, UseColor(config.ColorAuto, &buf))
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{" yes ", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
		{"yep\n", false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var out bytes.Buffer
			ok, err := Confirm(strings.NewReader(tt.input), &out, "Proceed?")
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
			assert.Equal(t, "Proceed? [y/N]: ", out.String())
		})
	}
}
