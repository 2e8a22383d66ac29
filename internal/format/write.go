package format

import "strings"

// Writer builds rendered program text one line at a time. Each line gets
// the indentation of its nesting depth; blank lines get none.
type Writer struct {
	sb   strings.Builder
	unit string
}

// NewWriter creates a writer indenting with opt's unit.
func NewWriter(opt Options) *Writer {
	opt = opt.withDefaults()
	unit := "\t"
	if !opt.UseTabs {
		unit = strings.Repeat(" ", opt.IndentWidth)
	}
	return &Writer{unit: unit}
}

// Line writes text at depth followed by a newline.
func (w *Writer) Line(depth int, text string) {
	if text != "" {
		for range max(depth, 0) {
			w.sb.WriteString(w.unit)
		}
		w.sb.WriteString(text)
	}
	w.sb.WriteByte('\n')
}

func (w *Writer) String() string { return w.sb.String() }

