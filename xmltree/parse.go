package xmltree

import (
	"context"
	"fmt"
	"io"

	"github.com/beevik/etree"
	"golang.org/x/net/html/charset"

	"github.com/dpotapov/go-treebuilder"
	"github.com/dpotapov/go-treebuilder/tokenizer"
)

// Parse builds an XML document from HTML read from r. The encoding is
// sniffed with charset.NewReader; encoding declarations are reported to the
// tokenizer but never restart the parse.
func Parse(ctx context.Context, r io.Reader, cfg treebuilder.Config) (*etree.Document, error) {
	return ParseWithSink(ctx, r, &Sink{}, cfg)
}

// ParseWithSink is Parse with a caller owned sink, which lets the caller's
// OnDiagnostic callback look at sink.Current.
func ParseWithSink(ctx context.Context, r io.Reader, sink *Sink, cfg treebuilder.Config) (*etree.Document, error) {
	cr, err := charset.NewReader(r, "")
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}
	tb := treebuilder.New[*etree.Element](sink, cfg)
	d := tokenizer.New(cr, tokenizer.WithEncoding("utf-8", true), tokenizer.WithLogger(cfg.Logger))
	if err := d.Run(ctx, tb); err != nil {
		return nil, err
	}
	return sink.Document(), nil
}

// ParseFragment parses UTF-8 HTML in the context of the element ns:name.
// The result is the html root element holding the fragment.
func ParseFragment(ctx context.Context, r io.Reader, ns, name string, cfg treebuilder.Config) (*etree.Element, error) {
	sink := &Sink{}
	tb := treebuilder.New[*etree.Element](sink, cfg)
	tb.SetFragmentContext(ns, name, false)
	tag := name
	if ns != "" && ns != treebuilder.NamespaceHTML {
		tag = ""
	}
	d := tokenizer.NewFragment(r, tag, tokenizer.WithLogger(cfg.Logger))
	if err := d.Run(ctx, tb); err != nil {
		return nil, err
	}
	return sink.Document().Root(), nil
}
