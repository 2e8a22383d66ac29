package source

import "fmt"

// Span is a half-open byte range [Start, End) inside one program line.
// Spans never cross lines: a statement is exactly one line.
type Span struct {
	Start uint32
	End   uint32
}

func (s Span) Empty() bool { return s.End <= s.Start }

func (s Span) Len() uint32 {
	if s.Empty() {
		return 0
	}
	return s.End - s.Start
}

// Col returns the 1-based column of the span start.
func (s Span) Col() uint32 { return s.Start + 1 }

// Cover returns the smallest span containing s and other.
func (s Span) Cover(other Span) Span {
	return Span{Start: min(s.Start, other.Start), End: max(s.End, other.End)}
}

// Clamp returns the span bounds limited to a line of n bytes, as ints
// ready for slicing.
func (s Span) Clamp(n int) (start, end int) {
	start = min(int(s.Start), n)
	end = max(min(int(s.End), n), start)
	return start, end
}

func (s Span) String() string { return fmt.Sprintf("%d-%d", s.Start, s.End) }
