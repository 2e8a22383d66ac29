package diag

import "lisle/internal/source"

// Reporter: минимальный контракт получения диагностик от фаз.
type Reporter interface {
	Report(code Code, sev Severity, line uint32, primary source.Span, msg string, notes []Note)
}

// ReportBuilder accumulates diagnostic details before emitting to Reporter.
type ReportBuilder struct {
	reporter Reporter
	diag     Diagnostic
	emitted  bool
}

// NewReportBuilder constructs a builder bound to Reporter.
func NewReportBuilder(r Reporter, sev Severity, code Code, line uint32, primary source.Span, msg string) *ReportBuilder {
	return &ReportBuilder{
		reporter: r,
		diag:     New(sev, code, line, primary, msg),
	}
}

// ReportError is a shortcut for SevError diagnostics.
func ReportError(r Reporter, code Code, line uint32, primary source.Span, msg string) *ReportBuilder {
	return NewReportBuilder(r, SevError, code, line, primary, msg)
}

// ReportWarning is a shortcut for SevWarning diagnostics.
func ReportWarning(r Reporter, code Code, line uint32, primary source.Span, msg string) *ReportBuilder {
	return NewReportBuilder(r, SevWarning, code, line, primary, msg)
}

// WithNote appends a note to diagnostic.
func (b *ReportBuilder) WithNote(line uint32, sp source.Span, msg string) *ReportBuilder {
	if b == nil {
		return nil
	}
	b.diag = b.diag.WithNote(line, sp, msg)
	return b
}

// Emit sends diagnostic to underlying reporter exactly once.
func (b *ReportBuilder) Emit() {
	if b == nil || b.emitted {
		return
	}
	if b.reporter != nil {
		b.reporter.Report(b.diag.Code, b.diag.Severity, b.diag.Line, b.diag.Primary, b.diag.Message, b.diag.Notes)
	}
	b.emitted = true
}

// BagReporter: адаптер, который пишет в *Bag.
type BagReporter struct {
	Bag  *Bag
	Path string
}

func (r BagReporter) Report(code Code, sev Severity, line uint32, primary source.Span, msg string, notes []Note) {
	if r.Bag == nil {
		return
	}
	r.Bag.Add(Diagnostic{
		Severity: sev, Code: code, Message: msg, Path: r.Path,
		Line: line, Primary: primary, Notes: notes,
	})
}

// ReportErr routes a compile-side error into r. Errors without a Kind are
// reported as UnknownCode.
func ReportErr(r Reporter, err error) {
	if e, ok := err.(*Error); ok {
		d := e.Diagnostic()
		r.Report(d.Code, d.Severity, d.Line, d.Primary, d.Message, d.Notes)
		return
	}
	r.Report(UnknownCode, SevError, 0, source.Span{}, err.Error(), nil)
}
