package diagfmt

import (
	"encoding/json"
	"io"

	"lisle/internal/diag"
	"lisle/internal/source"
)

// LocationJSON is a position in a program. Col and EndCol are 1-based byte
// columns.
type LocationJSON struct {
	File   string `json:"file"`
	Line   uint32 `json:"line,omitempty"`
	Col    uint32 `json:"col,omitempty"`
	EndCol uint32 `json:"end_col,omitempty"`
}

// NoteJSON is an attached note.
type NoteJSON struct {
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
}

// DiagnosticJSON is one diagnostic.
type DiagnosticJSON struct {
	Severity string       `json:"severity"`
	Code     string       `json:"code,omitempty"`
	Kind     string       `json:"kind"`
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
	Notes    []NoteJSON   `json:"notes,omitempty"`
}

// DiagnosticsOutput is the document written by JSON.
type DiagnosticsOutput struct {
	Diagnostics []DiagnosticJSON `json:"diagnostics"`
	Count       int              `json:"count"`
}

func makeLocation(path string, line uint32, sp source.Span) LocationJSON {
	loc := LocationJSON{File: path, Line: line}
	if line > 0 && !sp.Empty() {
		loc.Col = sp.Col()
		loc.EndCol = sp.End + 1
	}
	return loc
}

// BuildDiagnosticsOutput converts bag without serialising it.
func BuildDiagnosticsOutput(bag *diag.Bag, opts JSONOpts) DiagnosticsOutput {
	items := bag.Items()
	if opts.Max > 0 && opts.Max < len(items) {
		items = items[:opts.Max]
	}
	out := DiagnosticsOutput{Diagnostics: make([]DiagnosticJSON, 0, len(items)), Count: bag.Len()}
	for _, d := range items {
		path := formatPath(d.Path, opts.PathMode, opts.BaseDir)
		dj := DiagnosticJSON{
			Severity: d.Severity.String(),
			Kind:     d.Code.Kind().String(),
			Message:  d.Message,
			Location: makeLocation(path, d.Line, d.Primary),
		}
		if d.Code != diag.UnknownCode {
			dj.Code = d.Code.ID()
		}
		if opts.IncludeNotes {
			for _, n := range d.Notes {
				dj.Notes = append(dj.Notes, NoteJSON{Message: n.Msg, Location: makeLocation(path, n.Line, n.Span)})
			}
		}
		out.Diagnostics = append(out.Diagnostics, dj)
	}
	return out
}

// JSON writes bag as an indented JSON document.
func JSON(w io.Writer, bag *diag.Bag, opts JSONOpts) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(BuildDiagnosticsOutput(bag, opts))
}
