// Package filter selects diagnostics with boolean expressions such as
//
//	Severity == "error" && Line > 10 && Message contains "table"
//
// The expressions are compiled with github.com/expr-lang/expr.
package filter

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/dpotapov/go-treebuilder"
)

// Env is what an expression can refer to.
type Env struct {
	Severity string `expr:"Severity"`
	Message  string `expr:"Message"`
	Line     int    `expr:"Line"`
	Column   int    `expr:"Column"`
	Offset   int    `expr:"Offset"`

	Warning bool `expr:"Warning"`
	Fatal   bool `expr:"Fatal"`
}

func envOf(d treebuilder.Diagnostic) Env {
	return Env{
		Severity: d.Severity.String(),
		Message:  d.Message,
		Line:     d.Span.Line,
		Column:   d.Span.Column,
		Offset:   d.Span.Offset,
		Warning:  d.Severity == treebuilder.SeverityWarning,
		Fatal:    d.Severity == treebuilder.SeverityFatal,
	}
}

// Filter is a compiled expression. The nil *Filter matches everything.
type Filter struct {
	src  string
	prog *vm.Program
}

// Compile compiles src. An empty or blank src gives a nil Filter.
func Compile(src string) (*Filter, error) {
	if strings.TrimSpace(src) == "" {
		return nil, nil
	}
	prog, err := expr.Compile(src,
		expr.Env(Env{}),
		expr.AsBool(),
		expr.Function("lower", func(params ...any) (any, error) {
			return strings.ToLower(params[0].(string)), nil
		}, strings.ToLower),
	)
	if err != nil {
		return nil, fmt.Errorf("compile filter %q: %w", src, err)
	}
	return &Filter{src: src, prog: prog}, nil
}

// Match evaluates the filter for d.
func (f *Filter) Match(d treebuilder.Diagnostic) (bool, error) {
	if f == nil {
		return true, nil
	}
	out, err := expr.Run(f.prog, envOf(d))
	if err != nil {
		return false, fmt.Errorf("run filter %q: %w", f.src, err)
	}
	return out.(bool), nil
}

func (f *Filter) String() string {
	if f == nil {
		return "true"
	}
	return f.src
}

// Wrap returns an OnDiagnostic callback that forwards the diagnostics
// matched by f to next. Evaluation errors are forwarded as they are.
func (f *Filter) Wrap(next func(treebuilder.Diagnostic)) func(treebuilder.Diagnostic) {
	if next == nil {
		return nil
	}
	return func(d treebuilder.Diagnostic) {
		if ok, err := f.Match(d); ok || err != nil {
			next(d)
		}
	}
}
