package tokenizer

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dpotapov/go-treebuilder"
)

// recorder is a TokenHandler that writes every token as one line.
type recorder struct {
	t        treebuilder.Tokenizer
	lines    []string
	spans    []treebuilder.Span
	comments bool
	cdata    bool
	// onStart is called for start tags, with the tokenizer.
	onStart func(name string, t treebuilder.Tokenizer)
	ended   bool
}

func (r *recorder) add(line string) {
	r.lines = append(r.lines, line)
	r.spans = append(r.spans, r.t.Span())
}

func (r *recorder) StartTokenization(t treebuilder.Tokenizer) error {
	r.t = t
	return nil
}

func (r *recorder) StartTag(name string, attrs *treebuilder.Attributes, selfClosing bool) error {
	var b strings.Builder
	fmt.Fprintf(&b, "<%s", name)
	for _, a := range attrs.Slice() {
		fmt.Fprintf(&b, " %s=%q", a.Name, a.Value)
	}
	if selfClosing {
		b.WriteString("/")
	}
	b.WriteString(">")
	r.add(b.String())
	if r.onStart != nil {
		r.onStart(name, r.t)
	}
	return nil
}

func (r *recorder) EndTag(name string) error {
	r.add("</" + name + ">")
	return nil
}

func (r *recorder) Characters(text string) error {
	r.add(fmt.Sprintf("%q", text))
	return nil
}

func (r *recorder) Comment(text string) error {
	r.add("<!--" + text + "-->")
	return nil
}

func (r *recorder) Doctype(d treebuilder.Doctype) error {
	r.add(fmt.Sprintf("<!DOCTYPE %s>", d.Name))
	return nil
}

func (r *recorder) EOF() error {
	r.add("EOF")
	return nil
}

func (r *recorder) EndTokenization() error {
	r.ended = true
	return nil
}

func (r *recorder) WantsComments() bool      { return r.comments }
func (r *recorder) CDATASectionAllowed() bool { return r.cdata }

func TestParseDoctype(t *testing.T) {
	tests := []struct {
		in   string
		want treebuilder.Doctype
	}{
		{"html", treebuilder.Doctype{Name: "html"}},
		{" HTML ", treebuilder.Doctype{Name: "html"}},
		{"", treebuilder.Doctype{ForceQuirks: true}},
		{
			`html PUBLIC "-//W3C//DTD HTML 4.01//EN" "http://www.w3.org/TR/html4/strict.dtd"`,
			treebuilder.Doctype{
				Name:     "html",
				PublicID: "-//W3C//DTD HTML 4.01//EN", HasPublicID: true,
				SystemID: "http://www.w3.org/TR/html4/strict.dtd", HasSystemID: true,
			},
		},
		{
			`html public '-//W3C//DTD HTML 4.01//EN'`,
			treebuilder.Doctype{Name: "html", PublicID: "-//W3C//DTD HTML 4.01//EN", HasPublicID: true},
		},
		{
			`html SYSTEM "about:legacy-compat"`,
			treebuilder.Doctype{Name: "html", SystemID: "about:legacy-compat", HasSystemID: true},
		},
		{`html SYSTEM`, treebuilder.Doctype{Name: "html", ForceQuirks: true}},
		{`html FOO`, treebuilder.Doctype{Name: "html", ForceQuirks: true}},
		{`html BOGUSID "x"`, treebuilder.Doctype{Name: "html", ForceQuirks: true}},
		{`html PUBLIC x`, treebuilder.Doctype{Name: "html", ForceQuirks: true}},
		{
			`html PUBLIC "unterminated`,
			treebuilder.Doctype{Name: "html", PublicID: "unterminated", HasPublicID: true, ForceQuirks: true},
		},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := parseDoctype(tt.in)
			if diff := cmp.Diff(got, tt.want); diff != "" {
				t.Errorf("diff (-got +want):\n%s", diff)
			}
		})
	}
}

func TestRun(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		comments bool
		want     []string
	}{
		{
			name: "tags and text",
			text: `<!DOCTYPE html><p class=x id="a" class=y>Hi &amp; bye</p><br/>`,
			want: []string{`<!DOCTYPE html>`, `<p class="x" id="a">`, `"Hi & bye"`, `</p>`, `<br/>`, `EOF`},
		},
		{
			name:     "comments delivered",
			text:     `<!--a--><b>`,
			comments: true,
			want:     []string{`<!--a-->`, `<b>`, `EOF`},
		},
		{
			name: "comments dropped",
			text: `<!--a--><b>`,
			want: []string{`<b>`, `EOF`},
		},
		{
			name: "raw text by default for known tags",
			text: `<title><b></title>`,
			want: []string{`<title>`, `"<b>"`, `</title>`, `EOF`},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &recorder{comments: tt.comments}
			// A title only holds text if the tree builder says so.
			r.onStart = func(name string, tok treebuilder.Tokenizer) {
				if name == "title" {
					tok.SetState(treebuilder.RCDATA, name)
				}
			}
			require.NoError(t, New(strings.NewReader(tt.text)).Run(context.Background(), r))
			assert.Equal(t, tt.want, r.lines)
			assert.True(t, r.ended)
		})
	}
}

func TestRunRawTextNeedsState(t *testing.T) {
	// Without SetState, x/net's raw text guess is undone and the content is
	// tokenized as markup, which is what happens to <title> inside <svg>.
	r := &recorder{}
	require.NoError(t, New(strings.NewReader(`<title><b></title>`)).Run(context.Background(), r))
	assert.Equal(t, []string{`<title>`, `<b>`, `</title>`, `EOF`}, r.lines)
}

func TestRunSpans(t *testing.T) {
	r := &recorder{}
	require.NoError(t, New(strings.NewReader("<p>\nab\n<i>x")).Run(context.Background(), r))

	require.Equal(t, []string{`<p>`, `"\nab\n"`, `<i>`, `"x"`, `EOF`}, r.lines)
	assert.Equal(t, treebuilder.Span{Offset: 0, Line: 1, Column: 1, Length: 3}, r.spans[0])
	assert.Equal(t, treebuilder.Span{Offset: 3, Line: 1, Column: 4, Length: 4}, r.spans[1])
	assert.Equal(t, treebuilder.Span{Offset: 7, Line: 3, Column: 1, Length: 3}, r.spans[2])
	assert.Equal(t, treebuilder.Span{Offset: 10, Line: 3, Column: 4, Length: 1}, r.spans[3])
}

func TestRunSuspension(t *testing.T) {
	r := &recorder{}
	r.onStart = func(name string, tok treebuilder.Tokenizer) {
		if name == "meta" && tok.EncodingDeclaration("koi8-r") {
			tok.RequestSuspension()
		}
	}
	d := New(strings.NewReader(`<meta charset=koi8-r><p>x`), WithEncoding("windows-1252", false))
	err := d.Run(context.Background(), r)
	require.ErrorIs(t, err, ErrSuspended)
	assert.Equal(t, []string{`<meta charset="koi8-r">`}, r.lines)
	assert.Equal(t, "koi8-r", d.Declared())
	assert.True(t, r.ended)
}

func TestEncodingDeclaration(t *testing.T) {
	tests := []struct {
		name      string
		encoding  string
		confident bool
		labels    []string
		want      []bool
		declared  string
	}{
		{"differs", "windows-1252", false, []string{"koi8-r"}, []bool{true}, "koi8-r"},
		{"label alias", "windows-1252", false, []string{"latin1"}, []bool{false}, "windows-1252"},
		{"confident", "utf-8", true, []string{"koi8-r"}, []bool{false}, "koi8-r"},
		{"utf-16 means utf-8", "utf-8", false, []string{"utf-16"}, []bool{false}, "utf-8"},
		{"unknown label", "utf-8", false, []string{"no-such-encoding", "koi8-r"}, []bool{false, true}, "koi8-r"},
		{"first wins", "utf-8", false, []string{"windows-1251", "koi8-r"}, []bool{true, false}, "windows-1251"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := New(strings.NewReader(""), WithEncoding(tt.encoding, tt.confident))
			var got []bool
			for _, l := range tt.labels {
				got = append(got, d.EncodingDeclaration(l))
			}
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.declared, d.Declared())
		})
	}
}

func TestRunCDATA(t *testing.T) {
	r := &recorder{cdata: true}
	require.NoError(t, New(strings.NewReader(`<![CDATA[a<b]]>`)).Run(context.Background(), r))
	assert.Equal(t, []string{`"a<b"`, `EOF`}, r.lines)
}

func TestRunContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := &recorder{}
	err := New(strings.NewReader("<p>")).Run(ctx, r)
	assert.ErrorIs(t, err, context.Canceled)
	assert.True(t, r.ended)
}

func TestNewFragment(t *testing.T) {
	r := &recorder{}
	require.NoError(t, NewFragment(strings.NewReader(`a<b>c</textarea>`), "textarea").Run(context.Background(), r))
	assert.Equal(t, []string{`"a<b>c"`, `</textarea>`, `EOF`}, r.lines)
}
