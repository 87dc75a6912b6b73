package inspect

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/dpotapov/go-treebuilder"
	"github.com/dpotapov/go-treebuilder/dom"
	"github.com/dpotapov/go-treebuilder/filter"
)

// Options change how a file is parsed. Clients of the websocket endpoint
// send them as JSON messages.
type Options struct {
	// Context makes the parse a fragment parse in this HTML element.
	Context   string `json:"context,omitempty"`
	Scripting bool   `json:"scripting,omitempty"`
	// Filter is a filter.Compile expression selecting diagnostics.
	Filter string `json:"filter,omitempty"`
}

// Report is the outcome of parsing one file.
type Report struct {
	File        string   `json:"file"`
	Mode        string   `json:"mode,omitempty"`
	Dump        string   `json:"dump"`
	Diagnostics []string `json:"diagnostics"`
	Error       string   `json:"error,omitempty"`
}

// String formats the report as plain text.
func (r *Report) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s", r.File)
	if r.Mode != "" {
		fmt.Fprintf(&b, " (%s)", r.Mode)
	}
	b.WriteString("\n")
	b.WriteString(r.Dump)
	if len(r.Diagnostics) > 0 {
		b.WriteString("# diagnostics\n")
		for _, d := range r.Diagnostics {
			b.WriteString(d)
			b.WriteString("\n")
		}
	}
	if r.Error != "" {
		fmt.Fprintf(&b, "# error\n%s\n", r.Error)
	}
	return b.String()
}

// BuildReport parses content according to opts. Parse failures end up in
// Report.Error; the error result is reserved for bad options.
func BuildReport(ctx context.Context, name string, content []byte, cfg treebuilder.Config, opts Options) (*Report, error) {
	f, err := filter.Compile(opts.Filter)
	if err != nil {
		return nil, err
	}

	r := &Report{File: name, Diagnostics: []string{}}
	cfg.Scripting = cfg.Scripting || opts.Scripting
	cfg.OnDiagnostic = f.Wrap(func(d treebuilder.Diagnostic) {
		r.Diagnostics = append(r.Diagnostics, d.String())
	})
	cfg.OnDocumentMode = func(mode treebuilder.DocumentMode, publicID, systemID string) {
		r.Mode = mode.String()
	}

	var nodes []*html.Node
	if opts.Context != "" {
		contextElement := &html.Node{
			Type:     html.ElementNode,
			Data:     opts.Context,
			DataAtom: atom.Lookup([]byte(opts.Context)),
		}
		nodes, err = dom.ParseFragment(ctx, bytes.NewReader(content), contextElement, cfg)
	} else {
		var doc *html.Node
		doc, err = dom.Parse(ctx, bytes.NewReader(content), "", cfg)
		nodes = []*html.Node{doc}
	}
	if err != nil {
		r.Error = err.Error()
		return r, nil
	}

	r.Dump, err = dom.DumpString(nodes...)
	if err != nil {
		r.Error = err.Error()
	}
	return r, nil
}
