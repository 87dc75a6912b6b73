// Package dom parses HTML into golang.org/x/net/html nodes with the
// treebuilder engine.
package dom

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"

	"github.com/dpotapov/go-treebuilder"
	"github.com/dpotapov/go-treebuilder/tokenizer"
)

// Parse reads a whole document from r. The encoding is sniffed from the
// first bytes and contentType; a <meta> declaration that disagrees with a
// sniffed encoding restarts the parse once with the declared one.
func Parse(ctx context.Context, r io.Reader, contentType string, cfg treebuilder.Config) (*html.Node, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}

	_, name, certain := charset.DetermineEncoding(content, contentType)
	doc, declared, err := parseEncoded(ctx, content, name, certain, cfg)
	if errors.Is(err, tokenizer.ErrSuspended) {
		doc, _, err = parseEncoded(ctx, content, declared, true, cfg)
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// boms are the byte order marks that select an encoding.
var boms = map[string][]byte{
	"utf-8":    {0xef, 0xbb, 0xbf},
	"utf-16be": {0xfe, 0xff},
	"utf-16le": {0xff, 0xfe},
}

func parseEncoded(ctx context.Context, content []byte, encoding string, certain bool, cfg treebuilder.Config) (*html.Node, string, error) {
	content = bytes.TrimPrefix(content, boms[encoding])
	r, err := charset.NewReaderLabel(encoding, bytes.NewReader(content))
	if err != nil {
		return nil, "", fmt.Errorf("decode %s: %w", encoding, err)
	}
	sink := &Sink{}
	tb := treebuilder.New[*html.Node](sink, cfg)
	d := tokenizer.New(r, tokenizer.WithEncoding(encoding, certain), tokenizer.WithLogger(cfg.Logger))
	if err := d.Run(ctx, tb); err != nil {
		return nil, d.Declared(), err
	}
	return sink.Document(), d.Declared(), nil
}

// ParseFragment parses UTF-8 HTML as the content of contextElement. A nil
// contextElement means a <body> element. The returned nodes have no parent.
func ParseFragment(ctx context.Context, r io.Reader, contextElement *html.Node, cfg treebuilder.Config) ([]*html.Node, error) {
	ns, name := treebuilder.NamespaceHTML, "body"
	if contextElement != nil {
		if contextElement.Type != html.ElementNode {
			return nil, errors.New("dom: ParseFragment of non-element Node")
		}
		ns, name = NamespaceURI(contextElement.Namespace), strings.ToLower(contextElement.Data)
	}

	sink := &Sink{}
	tb := treebuilder.New[*html.Node](sink, cfg)
	tb.SetFragmentContext(ns, name, false)
	tag := name
	if ns != treebuilder.NamespaceHTML {
		tag = ""
	}
	d := tokenizer.NewFragment(r, tag, tokenizer.WithLogger(cfg.Logger))
	if err := d.Run(ctx, tb); err != nil {
		return nil, err
	}

	root := sink.Document().FirstChild
	if root == nil {
		return nil, nil
	}
	var nodes []*html.Node
	for c := root.FirstChild; c != nil; {
		next := c.NextSibling
		root.RemoveChild(c)
		nodes = append(nodes, c)
		c = next
	}
	return nodes, nil
}
