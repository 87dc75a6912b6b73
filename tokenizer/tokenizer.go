// Package tokenizer feeds the tokens of golang.org/x/net/html's Tokenizer to
// a treebuilder.TokenHandler.
package tokenizer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"

	"github.com/dpotapov/go-treebuilder"
)

// ErrSuspended is returned by Run when the tree builder asked to stop, which
// happens when a <meta> element declares an encoding that differs from the
// one the input was decoded with. Declared tells which.
var ErrSuspended = errors.New("tokenizer: suspended")

// Driver adapts an *html.Tokenizer to the treebuilder.Tokenizer interface.
type Driver struct {
	z      *html.Tokenizer
	logger *slog.Logger

	encoding  string
	confident bool
	declared  string

	// stateSet records whether the tree builder chose a lexical state for
	// the element just opened.
	stateSet  bool
	suspended bool

	span                 treebuilder.Span
	offset, line, column int
}

var _ treebuilder.Tokenizer = (*Driver)(nil)

type Option func(*Driver)

// WithLogger sets the logger for debug output.
func WithLogger(l *slog.Logger) Option {
	return func(d *Driver) {
		d.logger = l
	}
}

// WithEncoding tells the driver which encoding the input was decoded with.
// A confident driver ignores encoding declarations, as the encoding came
// from a byte order mark or the transport layer.
func WithEncoding(name string, confident bool) Option {
	return func(d *Driver) {
		d.encoding = name
		d.confident = confident
	}
}

// WithMaxBuf limits the size of the tokenizer buffer, see
// html.Tokenizer.SetMaxBuf.
func WithMaxBuf(n int) Option {
	return func(d *Driver) {
		d.z.SetMaxBuf(n)
	}
}

// New returns a driver for a document. r must yield UTF-8.
func New(r io.Reader, opts ...Option) *Driver {
	return newDriver(html.NewTokenizer(r), opts)
}

// NewFragment returns a driver for a fragment whose context element is
// contextTag.
func NewFragment(r io.Reader, contextTag string, opts ...Option) *Driver {
	return newDriver(html.NewTokenizerFragment(r, contextTag), opts)
}

func newDriver(z *html.Tokenizer, opts []Option) *Driver {
	d := &Driver{
		z:        z,
		encoding: "utf-8",
		line:     1,
		column:   1,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return d
}

// SetState is called by the tree builder after it opened an element with a
// text-only content model. html.Tokenizer already picks the raw text states
// by tag name, so only a switch back to data needs action.
func (d *Driver) SetState(state treebuilder.LexState, endTagExpectation string) {
	d.stateSet = true
	if state == treebuilder.Data {
		d.z.NextIsNotRawText()
	}
}

func (d *Driver) RequestSuspension() {
	d.suspended = true
}

// EncodingDeclaration records the first declared encoding. It asks for a
// restart if the declaration names a known encoding other than the one in
// use and the current one was only a guess.
func (d *Driver) EncodingDeclaration(label string) bool {
	if d.declared != "" {
		return false
	}
	enc, name := charset.Lookup(label)
	if enc == nil {
		d.logger.Debug("unknown encoding declared", "label", label)
		return false
	}
	// A declared UTF-16 encoding means the page was read as ASCII
	// compatible bytes, so it is really UTF-8.
	if strings.HasPrefix(name, "utf-16") {
		name = "utf-8"
	}
	d.declared = name
	if d.confident || name == d.encoding {
		return false
	}
	d.logger.Debug("encoding declaration", "from", d.encoding, "to", name)
	return true
}

// Declared returns the canonical name of the encoding declared by the
// document, or "" if there was none.
func (d *Driver) Declared() string {
	return d.declared
}

// Span returns the location of the token being delivered.
func (d *Driver) Span() treebuilder.Span {
	return d.span
}

// advance moves the position past the raw bytes of a token.
func (d *Driver) advance(raw []byte) {
	d.span = treebuilder.Span{Offset: d.offset, Line: d.line, Column: d.column, Length: len(raw)}
	d.offset += len(raw)
	if n := bytes.Count(raw, []byte{'\n'}); n > 0 {
		d.line += n
		d.column = len(raw) - bytes.LastIndexByte(raw, '\n')
		return
	}
	d.column += len(raw)
}

// Run delivers every token to h, from StartTokenization to
// EndTokenization. It stops early if ctx is done, if h returns an error or
// if h requests a suspension, in which case the error is ErrSuspended.
func (d *Driver) Run(ctx context.Context, h treebuilder.TokenHandler) (err error) {
	defer func() {
		if endErr := h.EndTokenization(); err == nil {
			err = endErr
		}
	}()
	if err := h.StartTokenization(d); err != nil {
		return err
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.suspended {
			return ErrSuspended
		}
		d.z.AllowCDATA(h.CDATASectionAllowed())
		tt := d.z.Next()
		d.advance(d.z.Raw())

		switch tt {
		case html.ErrorToken:
			if errors.Is(d.z.Err(), io.EOF) {
				return h.EOF()
			}
			return fmt.Errorf("tokenizer: %w", d.z.Err())
		case html.TextToken:
			err = h.Characters(string(d.z.Text()))
		case html.StartTagToken, html.SelfClosingTagToken:
			name, attrs := d.tag()
			d.stateSet = false
			err = h.StartTag(name, attrs, tt == html.SelfClosingTagToken)
			if !d.stateSet {
				d.z.NextIsNotRawText()
			}
		case html.EndTagToken:
			name, _ := d.z.TagName()
			err = h.EndTag(string(name))
		case html.CommentToken:
			if h.WantsComments() {
				err = h.Comment(string(d.z.Text()))
			}
		case html.DoctypeToken:
			err = h.Doctype(parseDoctype(string(d.z.Text())))
		}
		if err != nil {
			return err
		}
	}
}

// tag reads the name and attributes of the current start tag. Later
// duplicates of an attribute are dropped.
func (d *Driver) tag() (string, *treebuilder.Attributes) {
	name, more := d.z.TagName()
	attrs := treebuilder.NewAttributes()
	for more {
		var key, val []byte
		key, val, more = d.z.TagAttr()
		attrs.Add(string(key), string(val))
	}
	return string(name), attrs
}
