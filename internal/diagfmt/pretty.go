package diagfmt

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"lisle/internal/diag"
	"lisle/internal/source"
)

type palette struct {
	err, warn, info, note, code, gutter, caret *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		err:    color.New(color.FgRed, color.Bold),
		warn:   color.New(color.FgYellow, color.Bold),
		info:   color.New(color.FgCyan, color.Bold),
		note:   color.New(color.FgBlue, color.Bold),
		code:   color.New(color.Bold),
		gutter: color.New(color.FgBlue),
		caret:  color.New(color.FgRed, color.Bold),
	}
	for _, c := range []*color.Color{p.err, p.warn, p.info, p.note, p.code, p.gutter, p.caret} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) severity(sev diag.Severity) *color.Color {
	switch sev {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	}
	return p.info
}

// Pretty writes the diagnostics of bag in the order they are stored (call
// bag.Sort first). Each one reads
//
//	path:line:col: ERROR SYN2001: message
//	  3 | let x = (1
//	    |         ^~
//
// fs supplies the source lines; diagnostics whose file is not in fs are
// printed without a snippet.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	pal := newPalette(opts.Color)
	for _, d := range bag.Items() {
		writeOne(w, d, fs, opts, pal)
	}
}

func writeOne(w io.Writer, d diag.Diagnostic, fs *source.FileSet, opts PrettyOpts, pal palette) {
	var file *source.File
	if fs != nil && d.Path != "" {
		file, _ = fs.GetByPath(d.Path)
	}
	path := formatPath(d.Path, opts.PathMode, opts.BaseDir)

	fmt.Fprintf(w, "%s: %s", location(path, d.Line, d.Primary, file), pal.severity(d.Severity).Sprint(d.Severity))
	if d.Code != diag.UnknownCode {
		fmt.Fprintf(w, " %s", pal.code.Sprint(d.Code.ID()))
	}
	fmt.Fprintf(w, ": %s\n", d.Message)

	if file != nil && d.Line > 0 {
		writeSnippet(w, file, d.Line, d.Primary, opts, pal)
	}
	if !opts.ShowNotes {
		return
	}
	for _, n := range d.Notes {
		fmt.Fprintf(w, "  %s: %s\n", pal.note.Sprint("note"), n.Msg)
		if file != nil && n.Line > 0 && (n.Line != d.Line || n.Span != d.Primary) {
			writeSnippet(w, file, n.Line, n.Span, PrettyOpts{Width: opts.Width}, pal)
		}
	}
}

func location(path string, line uint32, sp source.Span, file *source.File) string {
	if line == 0 {
		return path
	}
	col := uint32(1)
	if file != nil {
		col = displayCol(file.GetLine(line), sp.Start)
	} else if !sp.Empty() {
		col = sp.Col()
	}
	return fmt.Sprintf("%s:%d:%d", path, line, col)
}

// displayCol converts a byte offset into a 1-based terminal column.
func displayCol(text string, off uint32) uint32 {
	if int(off) > len(text) {
		off = uint32(len(text)) // #nosec G115 -- line length fits in uint32
	}
	return uint32(runewidth.StringWidth(text[:off])) + 1 // #nosec G115 -- bounded by line length
}

func writeSnippet(w io.Writer, file *source.File, line uint32, sp source.Span, opts PrettyOpts, pal palette) {
	first := line
	if opts.Context > 0 {
		if ctx := uint32(opts.Context); ctx < line { // #nosec G115 -- small positive option
			first = line - ctx
		} else {
			first = 1
		}
	}
	width := len(strconv.Itoa(int(line)))
	gutter := func(label string) string {
		return pal.gutter.Sprint(fmt.Sprintf("%*s |", width, label))
	}
	for ln := first; ln <= line; ln++ {
		text := expandTabs(file.GetLine(ln))
		if opts.Width > 0 {
			text = runewidth.Truncate(text, opts.Width, "…")
		}
		fmt.Fprintf(w, "%s %s\n", gutter(strconv.Itoa(int(ln))), text)
	}

	text := file.GetLine(line)
	start, end := sp.Clamp(len(text))
	pad := runewidth.StringWidth(expandTabs(text[:start]))
	span := runewidth.StringWidth(expandTabs(text[start:end]))
	marker := "^"
	if span > 1 {
		marker += strings.Repeat("~", span-1)
	}
	fmt.Fprintf(w, "%s %s%s\n", gutter(""), strings.Repeat(" ", pad), pal.caret.Sprint(marker))
}

func expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", "    ")
}
