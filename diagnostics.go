package treebuilder

import (
	"errors"
	"fmt"
)

type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityFatal
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityFatal:
		return "fatal"
	}
	return fmt.Sprintf("Severity(%d)", int(s))
}

// Diagnostic is a parse error or warning. Reporting one never changes the
// tree that is built.
type Diagnostic struct {
	Severity Severity
	Message  string
	Span     Span
}

func (d Diagnostic) String() string {
	if d.Span.Line > 0 {
		return fmt.Sprintf("%d:%d: %s: %s", d.Span.Line, d.Span.Column, d.Severity, d.Message)
	}
	return d.Severity.String() + ": " + d.Message
}

// ParseError wraps an error-severity Diagnostic so that collected
// diagnostics can be returned as a Go error.
type ParseError struct {
	Diagnostic
}

func (e *ParseError) Error() string {
	return e.Diagnostic.String()
}

// FatalError aborts a parse. It is returned by every TokenHandler method
// once raised.
type FatalError struct {
	Message string
	Span    Span
	Err     error
}

func (e *FatalError) Error() string {
	msg := "treebuilder: fatal: " + e.Message
	if e.Span.Line > 0 {
		msg = fmt.Sprintf("treebuilder: fatal: %d:%d: %s", e.Span.Line, e.Span.Column, e.Message)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *FatalError) Unwrap() error {
	return e.Err
}

// errBadState is wrapped by FatalErrors raised for broken internal
// invariants, as opposed to NamePolicy violations.
var errBadState = errors.New("bad parser state")

// Diagnostics collects diagnostics. Its Add method can be used as
// Config.OnDiagnostic.
type Diagnostics struct {
	List []Diagnostic
}

func (d *Diagnostics) Add(diag Diagnostic) {
	d.List = append(d.List, diag)
}

// Len returns the number of diagnostics with the given severity.
func (d *Diagnostics) Len(s Severity) int {
	n := 0
	for _, diag := range d.List {
		if diag.Severity == s {
			n++
		}
	}
	return n
}

// Err joins every non-warning diagnostic into a single error, or returns nil
// if there are none.
func (d *Diagnostics) Err() error {
	var errs []error
	for _, diag := range d.List {
		if diag.Severity == SeverityWarning {
			continue
		}
		errs = append(errs, &ParseError{Diagnostic: diag})
	}
	return errors.Join(errs...)
}

func (tb *TreeBuilder[N]) span() Span {
	if tb.tokenizer == nil {
		return Span{}
	}
	return tb.tokenizer.Span()
}

func (tb *TreeBuilder[N]) report(s Severity, msg string) {
	if tb.cfg.OnDiagnostic == nil {
		return
	}
	tb.cfg.OnDiagnostic(Diagnostic{Severity: s, Message: msg, Span: tb.span()})
}

func (tb *TreeBuilder[N]) err(msg string) {
	tb.report(SeverityError, msg)
}

func (tb *TreeBuilder[N]) errf(format string, args ...any) {
	if tb.cfg.OnDiagnostic == nil {
		return
	}
	tb.report(SeverityError, fmt.Sprintf(format, args...))
}

func (tb *TreeBuilder[N]) warn(msg string) {
	tb.report(SeverityWarning, msg)
}

// fatal aborts the parse. The panic is recovered at the TokenHandler
// boundary by guard.
func (tb *TreeBuilder[N]) fatal(msg string, err error) {
	tb.report(SeverityFatal, msg)
	panic(&FatalError{Message: msg, Span: tb.span(), Err: err})
}

// badState reports a broken internal invariant.
func (tb *TreeBuilder[N]) badState(msg string) {
	tb.fatal(msg, errBadState)
}

func (tb *TreeBuilder[N]) errStrayStartTag(name string) {
	tb.errf("Stray start tag “%s”.", name)
}

func (tb *TreeBuilder[N]) errStrayEndTag(name string) {
	tb.errf("Stray end tag “%s”.", name)
}

func (tb *TreeBuilder[N]) errUnclosedElements(pos int, name string) {
	tb.errf("End tag “%s” seen, but there were open elements.", name)
	tb.errListUnclosedStartTags(pos)
}

func (tb *TreeBuilder[N]) errUnclosedElementsImplied(pos int, name string) {
	tb.errf("End tag “%s” implied, but there were open elements.", name)
	tb.errListUnclosedStartTags(pos)
}

func (tb *TreeBuilder[N]) errUnclosedElementsCell(pos int) {
	tb.err("A table cell was implicitly closed, but there were open elements.")
	tb.errListUnclosedStartTags(pos)
}

func (tb *TreeBuilder[N]) errEndWithUnclosedElements(msg string) {
	if tb.cfg.OnDiagnostic == nil {
		return
	}
	tb.err(msg)
	tb.errListUnclosedStartTags(0)
}

// errListUnclosedStartTags reports every element above pos that was left
// open, topmost first.
func (tb *TreeBuilder[N]) errListUnclosedStartTags(pos int) {
	if tb.cfg.OnDiagnostic == nil {
		return
	}
	for i := len(tb.stack) - 1; i > pos; i-- {
		e := tb.stack[i]
		d := Diagnostic{
			Severity: SeverityError,
			Message:  fmt.Sprintf("Unclosed element “%s”.", e.popName),
			Span:     e.span,
		}
		tb.cfg.OnDiagnostic(d)
	}
}
