// Copyright 2010 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dom

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"golang.org/x/net/html"
)

func dumpIndent(w io.Writer, level int) {
	_, _ = io.WriteString(w, "| ")
	for i := 0; i < level; i++ {
		_, _ = io.WriteString(w, "  ")
	}
}

type sortedAttributes []html.Attribute

func (a sortedAttributes) Len() int {
	return len(a)
}

func (a sortedAttributes) Less(i, j int) bool {
	if a[i].Namespace != a[j].Namespace {
		return a[i].Namespace < a[j].Namespace
	}
	return a[i].Key < a[j].Key
}

func (a sortedAttributes) Swap(i, j int) {
	a[i], a[j] = a[j], a[i]
}

func dumpLevel(w io.Writer, n *html.Node, level int) error {
	dumpIndent(w, level)
	level++
	switch n.Type {
	case html.ErrorNode:
		return errors.New("unexpected ErrorNode")
	case html.DocumentNode:
		return errors.New("unexpected DocumentNode")
	case html.ElementNode:
		if n.Namespace != "" {
			fmt.Fprintf(w, "<%s %s>", n.Namespace, n.Data)
		} else {
			fmt.Fprintf(w, "<%s>", n.Data)
		}
		attr := make(sortedAttributes, len(n.Attr))
		copy(attr, n.Attr)
		sort.Sort(attr)
		for _, a := range attr {
			_, _ = io.WriteString(w, "\n")
			dumpIndent(w, level)
			if a.Namespace != "" {
				fmt.Fprintf(w, `%s %s="%s"`, a.Namespace, a.Key, a.Val)
			} else {
				fmt.Fprintf(w, `%s="%s"`, a.Key, a.Val)
			}
		}
	case html.TextNode:
		fmt.Fprintf(w, `"%s"`, n.Data)
	case html.CommentNode:
		fmt.Fprintf(w, "<!-- %s -->", n.Data)
	case html.DoctypeNode:
		fmt.Fprintf(w, "<!DOCTYPE %s", n.Data)
		var p, s string
		for _, a := range n.Attr {
			switch a.Key {
			case "public":
				p = a.Val
			case "system":
				s = a.Val
			}
		}
		if p != "" || s != "" {
			fmt.Fprintf(w, ` "%s"`, p)
			fmt.Fprintf(w, ` "%s"`, s)
		}
		_, _ = io.WriteString(w, ">")
	default:
		return errors.New("unknown node type")
	}
	_, _ = io.WriteString(w, "\n")
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := dumpLevel(w, c, level); err != nil {
			return err
		}
	}
	return nil
}

// Dump writes n in the html5lib test format, one "| " line per node. A
// document node is written as the list of its children.
func Dump(w io.Writer, n *html.Node) error {
	if n == nil {
		return nil
	}
	if n.Type != html.DocumentNode {
		return dumpLevel(w, n, 0)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := dumpLevel(w, c, 0); err != nil {
			return err
		}
	}
	return nil
}

// DumpString is Dump into a string.
func DumpString(nodes ...*html.Node) (string, error) {
	var b strings.Builder
	for _, n := range nodes {
		if err := Dump(&b, n); err != nil {
			return "", err
		}
	}
	return b.String(), nil
}
