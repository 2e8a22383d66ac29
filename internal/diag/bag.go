package diag

import (
	"cmp"
	"math"
	"slices"

	"fortio.org/safecast"
)

// Bag collects the diagnostics of one file or one command, up to a limit.
// Lisle diagnostics are always line-bound, so ordering is by path, line and
// column rather than by file offset.
type Bag struct {
	items []Diagnostic
	limit uint16
}

// NewBag creates a bag holding at most limit diagnostics. Limits beyond
// 65535 are clamped.
func NewBag(limit int) *Bag {
	return &Bag{
		items: make([]Diagnostic, 0, min(max(limit, 0), 64)),
		limit: clampLimit(limit),
	}
}

func clampLimit(n int) uint16 {
	if n < 0 {
		return 0
	}
	v, err := safecast.Conv[uint16](n)
	if err != nil {
		return math.MaxUint16
	}
	return v
}

// Add stores d unless the bag is full; the result says whether it did.
func (b *Bag) Add(d Diagnostic) bool {
	if len(b.items) >= int(b.limit) {
		return false
	}
	b.items = append(b.items, d)
	return true
}

// Grow raises the limit by n, e.g. to append a summary to a full bag.
func (b *Bag) Grow(n int) {
	b.limit = clampLimit(int(b.limit) + n)
}

// HasErrors reports whether any diagnostic is an error.
func (b *Bag) HasErrors() bool { return b.any(SevError) }

// HasWarnings reports whether any diagnostic is a warning or worse.
func (b *Bag) HasWarnings() bool { return b.any(SevWarning) }

func (b *Bag) any(floor Severity) bool {
	return slices.ContainsFunc(b.items, func(d Diagnostic) bool { return d.Severity.AtLeast(floor) })
}

func (b *Bag) Len() int { return len(b.items) }

// Items returns the stored diagnostics. Callers must not modify the slice.
func (b *Bag) Items() []Diagnostic { return b.items }

// Merge appends every diagnostic of other, growing the limit as needed.
func (b *Bag) Merge(other *Bag) {
	if other == nil {
		return
	}
	if need := len(b.items) + len(other.items); need > int(b.limit) {
		b.limit = clampLimit(need)
	}
	b.items = append(b.items, other.items...)
}

// Sort orders by path, line, column, span end, then errors before
// warnings and lower codes first.
func (b *Bag) Sort() {
	slices.SortStableFunc(b.items, func(x, y Diagnostic) int {
		return cmp.Or(
			cmp.Compare(x.Path, y.Path),
			cmp.Compare(x.Line, y.Line),
			cmp.Compare(x.Primary.Start, y.Primary.Start),
			cmp.Compare(x.Primary.End, y.Primary.End),
			cmp.Compare(y.Severity, x.Severity),
			cmp.Compare(x.Code, y.Code),
		)
	})
}

type dedupKey struct {
	code Code
	path string
	line uint32
	span [2]uint32
}

// Dedup drops repeated diagnostics with the same code and location,
// keeping the first.
func (b *Bag) Dedup() {
	seen := make(map[dedupKey]struct{}, len(b.items))
	b.items = slices.DeleteFunc(b.items, func(d Diagnostic) bool {
		k := dedupKey{d.Code, d.Path, d.Line, [2]uint32{d.Primary.Start, d.Primary.End}}
		if _, dup := seen[k]; dup {
			return true
		}
		seen[k] = struct{}{}
		return false
	})
}
