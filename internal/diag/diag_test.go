package diag_test

import (
	"errors"
	"fmt"
	"testing"

	"lisle/internal/diag"
	"lisle/internal/source"
)

func TestCodeIDAndKind(t *testing.T) {
	tests := []struct {
		code diag.Code
		id   string
		kind diag.Kind
	}{
		{diag.LexUnknownChar, "LEX1001", diag.KindLex},
		{diag.SynUnexpectedToken, "SYN2001", diag.KindParse},
		{diag.StrMissingEnd, "STR3002", diag.KindStructure},
		{diag.IOInsufficientSpace, "IO4002", diag.KindCapacity},
		{diag.UnknownCode, "E0000", diag.KindUnknown},
	}
	for _, tt := range tests {
		if got := tt.code.ID(); got != tt.id {
			t.Errorf("%d.ID() = %q, want %q", tt.code, got, tt.id)
		}
		if got := tt.code.Kind(); got != tt.kind {
			t.Errorf("%d.Kind() = %v, want %v", tt.code, got, tt.kind)
		}
	}
}

func TestErrorFormatting(t *testing.T) {
	e := diag.Errorf(diag.LexUnknownChar, source.Span{Start: 4, End: 5}, "unexpected character %q", '$')
	if got := e.Error(); got != `LexError: col 5: unexpected character '$'` {
		t.Fatalf("unexpected message %q", got)
	}
	located := e.AtLine(3)
	located.Stmt = "Var"
	if got := located.Error(); got != `LexError: line 3:5: unexpected character '$' (in Var)` {
		t.Fatalf("unexpected message %q", got)
	}
	if e.Line != 0 {
		t.Fatal("AtLine must not modify the receiver")
	}
}

func TestKindOfWrapped(t *testing.T) {
	base := &diag.Error{Code: diag.StrUnmatchedEnd, Msg: "unmatched end", Line: 7}
	wrapped := fmt.Errorf("check main.lis: %w", base)
	if got := diag.KindOf(wrapped); got != diag.KindStructure {
		t.Fatalf("KindOf = %v, want StructureError", got)
	}
	if got := diag.KindOf(errors.New("plain")); got != diag.KindUnknown {
		t.Fatalf("KindOf(plain) = %v", got)
	}
}

func TestBagLimitSortDedup(t *testing.T) {
	bag := diag.NewBag(3)
	r := diag.BagReporter{Bag: bag, Path: "a.lis"}
	diag.ReportError(r, diag.SynUnexpectedToken, 5, source.Span{Start: 1, End: 2}, "b").Emit()
	diag.ReportError(r, diag.LexUnknownChar, 2, source.Span{Start: 0, End: 1}, "a").Emit()
	diag.ReportError(r, diag.LexUnknownChar, 2, source.Span{Start: 0, End: 1}, "a").Emit()
	if bag.Add(diag.NewError(diag.UnknownCode, 1, source.Span{}, "over")) {
		t.Fatal("bag should be full")
	}
	bag.Dedup()
	bag.Sort()
	items := bag.Items()
	if len(items) != 2 {
		t.Fatalf("expected 2 diagnostics after dedup, got %d", len(items))
	}
	if items[0].Line != 2 || items[1].Line != 5 {
		t.Fatalf("unexpected order: %d, %d", items[0].Line, items[1].Line)
	}
	if !bag.HasErrors() {
		t.Fatal("expected errors")
	}
}

func TestReportBuilderEmitsOnce(t *testing.T) {
	bag := diag.NewBag(10)
	b := diag.ReportWarning(diag.BagReporter{Bag: bag}, diag.StrInfo, 1, source.Span{}, "w").
		WithNote(1, source.Span{}, "note")
	b.Emit()
	b.Emit()
	if bag.Len() != 1 {
		t.Fatalf("expected one diagnostic, got %d", bag.Len())
	}
	if bag.HasErrors() || !bag.HasWarnings() {
		t.Fatal("expected a warning only")
	}
	if len(bag.Items()[0].Notes) != 1 {
		t.Fatal("expected note to be attached")
	}
}

func TestSeverityNames(t *testing.T) {
	tests := []struct {
		sev  diag.Severity
		want string
	}{
		{diag.SevInfo, "INFO"},
		{diag.SevWarning, "WARNING"},
		{diag.SevError, "ERROR"},
		{diag.Severity(9), "UNKNOWN"},
	}
	for _, tt := range tests {
		if got := tt.sev.String(); got != tt.want {
			t.Errorf("%d: got %q, want %q", tt.sev, got, tt.want)
		}
	}
	if !diag.SevError.AtLeast(diag.SevWarning) || diag.SevInfo.AtLeast(diag.SevWarning) {
		t.Fatal("AtLeast ordering broken")
	}
}
