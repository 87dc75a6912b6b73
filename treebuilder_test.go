package treebuilder

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countInList(tb *TreeBuilder[*node], name string) int {
	n := 0
	for _, e := range tb.afe {
		if e != nil && e.name == name {
			n++
		}
	}
	return n
}

func TestNoahsArk(t *testing.T) {
	class := func(v string) Attribute { return Attribute{Name: "class", Value: v} }

	tests := []struct {
		name string
		toks []tok
		want int
	}{
		{
			name: "identical entries",
			toks: []tok{startTag("p"), startTag("b"), startTag("b"), startTag("b"), startTag("b"), startTag("b")},
			want: 2,
		},
		{
			name: "attributes tell entries apart",
			toks: []tok{
				startTag("p"),
				startTag("b", class("x")), startTag("b", class("y")),
				startTag("b", class("x")), startTag("b", class("x")),
			},
			want: 3,
		},
		{
			name: "marker starts a new count",
			toks: []tok{
				startTag("b"), startTag("b"), startTag("b"),
				startTag("object"),
				startTag("b"), startTag("b"), startTag("b"),
			},
			want: 4,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tb := New[*node](&testSink{}, Config{})
			require.NoError(t, tb.StartTokenization(nil))
			defer tb.EndTokenization()
			require.NoError(t, deliver(tb, tt.toks...))
			assert.Equal(t, tt.want, countInList(tb, "b"))
		})
	}
}

func TestNoahsArkReconstruction(t *testing.T) {
	sink := &testSink{}
	tb := New[*node](sink, Config{})
	require.NoError(t, feed(tb, nil,
		startTag("p"), startTag("b"), startTag("b"), startTag("b"), startTag("b"), endTag("p"),
		startTag("p"), text("x"),
	))

	want := removeIndent(`
		| <html>
		|   <head>
		|   <body>
		|     <p>
		|       <b>
		|         <b>
		|           <b>
		|             <b>
		|     <p>
		|       <b>
		|         <b>
		|           "x"
		`)
	if diff := cmp.Diff(dump(sink.doc), want); diff != "" {
		t.Errorf("diff (-got +want):\n%s", diff)
	}
}

func TestSnapshot(t *testing.T) {
	head := []tok{startTag("table"), startTag("tr"), startTag("td"), startTag("b"), text("x")}
	tail := []tok{text("y"), endTag("b"), endTag("td"), startTag("i"), text("z")}

	sink := &testSink{}
	tb := New[*node](sink, Config{})
	require.NoError(t, tb.StartTokenization(nil))
	require.NoError(t, deliver(tb, head...))

	s := tb.Snapshot()
	require.True(t, tb.SnapshotMatches(s))
	tb.LoadSnapshot(s)
	require.True(t, tb.SnapshotMatches(s))

	require.NoError(t, deliver(tb, tail...))
	assert.False(t, tb.SnapshotMatches(s))
	require.NoError(t, tb.EOF())
	require.NoError(t, tb.EndTokenization())
	got := dump(sink.doc)

	refSink := &testSink{}
	require.NoError(t, feed(New[*node](refSink, Config{}), nil, append(head, tail...)...))
	if diff := cmp.Diff(got, dump(refSink.doc)); diff != "" {
		t.Errorf("diff (-got +want):\n%s", diff)
	}
}

func TestSnapshotRestoresState(t *testing.T) {
	sink := &testSink{}
	tb := New[*node](sink, Config{})
	require.NoError(t, tb.StartTokenization(nil))
	defer tb.EndTokenization()

	require.NoError(t, deliver(tb, startTag("p"), startTag("b")))
	mode := tb.Mode()
	s := tb.Snapshot()
	require.NoError(t, deliver(tb, startTag("table"), startTag("tr")))
	require.Equal(t, InRow, tb.Mode())
	require.False(t, tb.SnapshotMatches(s))

	tb.LoadSnapshot(s)
	assert.True(t, tb.SnapshotMatches(s))
	assert.Equal(t, mode, tb.Mode())
	assert.Equal(t, 1, countInList(tb, "b"))
}

func TestFragmentContextMode(t *testing.T) {
	tests := []struct {
		ns, name string
		want     InsertionMode
	}{
		{NamespaceHTML, "tr", InRow},
		{NamespaceHTML, "tbody", InTableBody},
		{NamespaceHTML, "td", FramesetOK},
		{NamespaceHTML, "select", InSelect},
		{NamespaceHTML, "table", InTable},
		{NamespaceHTML, "html", BeforeHead},
		{NamespaceHTML, "div", FramesetOK},
		{NamespaceSVG, "svg", FramesetOK},
		{"", "", FramesetOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tb := New[*node](&testSink{}, Config{})
			tb.SetFragmentContext(tt.ns, tt.name, false)
			require.NoError(t, tb.StartTokenization(nil))
			defer tb.EndTokenization()
			assert.Equal(t, tt.want, tb.Mode())
		})
	}
}

func TestFragmentContextTokenizerState(t *testing.T) {
	tests := []struct {
		name      string
		scripting bool
		want      []LexState
	}{
		{"title", false, []LexState{RCDATA}},
		{"style", false, []LexState{RAWTEXT}},
		{"noscript", false, []LexState{Data}},
		{"noscript", true, []LexState{RAWTEXT}},
		{"script", false, []LexState{ScriptData}},
		{"plaintext", false, []LexState{PLAINTEXT}},
		{"div", false, []LexState{Data}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tok := &fakeTokenizer{}
			tb := New[*node](&testSink{}, Config{Scripting: tt.scripting})
			tb.SetFragmentContext(NamespaceHTML, tt.name, false)
			require.NoError(t, tb.StartTokenization(tok))
			defer tb.EndTokenization()
			assert.Equal(t, tt.want, tok.states)
		})
	}
}

func TestDiagnosticsDoNotChangeTree(t *testing.T) {
	inputs := [][]tok{
		{startTag("i"), startTag("p"), text("repro"), endTag("i")},
		{startTag("table"), text("foo"), startTag("tr"), startTag("td"), text("bar"), endTag("table")},
		{endTag("p"), startTag("frameset"), startTag("svg"), startTag("p")},
		{startTag("select"), startTag("option"), startTag("select"), text("x")},
		{startTag("a:b", Attribute{Name: "c<d", Value: "1"}), startTag("a", Attribute{Name: "id", Value: "x"}), startTag("a", Attribute{Name: "id", Value: "x"})},
	}
	for _, toks := range inputs {
		quiet := &testSink{}
		require.NoError(t, feed(New[*node](quiet, Config{}), nil, toks...))

		var diags Diagnostics
		loud := &testSink{}
		cfg := Config{OnDiagnostic: diags.Add, CheckDuplicateIDs: true}
		require.NoError(t, feed(New[*node](loud, cfg), &fakeTokenizer{line: 1}, toks...))

		assert.NotEmpty(t, diags.List)
		if diff := cmp.Diff(dump(quiet.doc), dump(loud.doc)); diff != "" {
			t.Errorf("diff (-got +want):\n%s", diff)
		}
	}
}

func TestDiagnosticsErr(t *testing.T) {
	var diags Diagnostics
	cfg := Config{OnDiagnostic: diags.Add}
	require.NoError(t, feed(New[*node](&testSink{}, cfg), &fakeTokenizer{line: 3}, startTag("p"), endTag("div")))

	require.NotZero(t, diags.Len(SeverityError))
	err := diags.Err()
	require.Error(t, err)

	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, 3, pe.Span.Line)
	assert.Contains(t, err.Error(), "3:1: error: ")
}

func TestDuplicateIDs(t *testing.T) {
	var diags Diagnostics
	cfg := Config{OnDiagnostic: diags.Add, CheckDuplicateIDs: true}
	id := Attribute{Name: "id", Value: "main"}
	require.NoError(t, feed(New[*node](&testSink{}, cfg), nil,
		tok{doctype: &Doctype{Name: "html"}},
		startTag("div", id), startTag("span", id),
	))

	var msgs []string
	for _, d := range diags.List {
		msgs = append(msgs, d.Message)
	}
	assert.Contains(t, msgs, "Duplicate ID “main”.")
	assert.Contains(t, msgs, "The first occurrence of ID “main” was here.")
}

func TestNamePolicy(t *testing.T) {
	t.Run("allow", func(t *testing.T) {
		var diags Diagnostics
		sink := &testSink{}
		require.NoError(t, feed(New[*node](sink, Config{OnDiagnostic: diags.Add}), nil, startTag("a:b")))
		assert.Contains(t, dump(sink.doc), "<a:b>")
		assert.NotZero(t, diags.Len(SeverityWarning))
	})

	t.Run("alter infoset", func(t *testing.T) {
		sink := &testSink{}
		cfg := Config{NamePolicy: PolicyAlterInfoset}
		require.NoError(t, feed(New[*node](sink, cfg), nil,
			startTag("a:b", Attribute{Name: "x<y", Value: "1"}, Attribute{Name: "xmlns", Value: NamespaceHTML}),
		))
		got := dump(sink.doc)
		assert.Contains(t, got, "<aU0003Ab>")
		assert.Contains(t, got, `xU0003Cy="1"`)
		assert.NotContains(t, got, "xmlns")
	})

	t.Run("fatal", func(t *testing.T) {
		tb := New[*node](&testSink{}, Config{NamePolicy: PolicyFatal})
		err := feed(tb, nil, startTag("p"), startTag("a:b"), startTag("i"))
		require.Error(t, err)

		var fe *FatalError
		require.True(t, errors.As(err, &fe))
		assert.Contains(t, fe.Message, "“a:b”")

		// The error sticks until the next parse.
		assert.Equal(t, err, tb.EndTag("p"))
	})
}

func TestElementObserver(t *testing.T) {
	sink := &testSink{}
	require.NoError(t, feed(New[*node](sink, Config{}), nil, startTag("p"), startTag("br"), text("x")))

	assert.Equal(t, []string{"html", "head", "body", "p", "br"}, sink.pushed)
	assert.Equal(t, []string{"head", "br", "p", "body", "html"}, sink.popped)
}

func TestElementObserverFollowsAdoptionAgency(t *testing.T) {
	tests := []struct {
		name string
		toks []tok
	}{
		{"block inside formatting", []tok{startTag("b"), startTag("p"), text("x"), endTag("b")}},
		{"formatting then block", []tok{startTag("a"), startTag("div"), text("x"), endTag("a"), text("y")}},
		{"nested formatting", []tok{startTag("b"), startTag("i"), startTag("u"), startTag("div"), text("x"), endTag("b"), startTag("span")}},
		{"outer loop repeats", []tok{startTag("b"), startTag("p"), startTag("b"), startTag("div"), endTag("b"), endTag("b")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink := &testSink{}
			tb := New[*node](sink, Config{})
			defer tb.EndTokenization()
			require.NoError(t, tb.StartTokenization(nil))
			require.NoError(t, deliver(tb, tt.toks...))

			var stack []*node
			for _, e := range tb.stack {
				stack = append(stack, e.node)
			}
			assert.Equal(t, stack, sink.open)
		})
	}
}

func TestMetaCharset(t *testing.T) {
	tests := []struct {
		name      string
		attrs     []Attribute
		encoding  string
		declared  []string
		suspended bool
	}{
		{
			name:      "charset attribute",
			attrs:     []Attribute{{Name: "charset", Value: "utf-8"}},
			encoding:  "windows-1252",
			declared:  []string{"utf-8"},
			suspended: true,
		},
		{
			name: "http-equiv",
			attrs: []Attribute{
				{Name: "http-equiv", Value: "Content-Type"},
				{Name: "content", Value: "text/html; charset=ISO-8859-2"},
			},
			encoding:  "utf-8",
			declared:  []string{"ISO-8859-2"},
			suspended: true,
		},
		{
			name:     "same encoding",
			attrs:    []Attribute{{Name: "charset", Value: "utf-8"}},
			encoding: "utf-8",
			declared: []string{"utf-8"},
		},
		{
			name:  "content without http-equiv",
			attrs: []Attribute{{Name: "content", Value: "text/html; charset=utf-8"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tok := &fakeTokenizer{encoding: tt.encoding}
			tb := New[*node](&testSink{}, Config{})
			require.NoError(t, tb.StartTokenization(tok))
			defer tb.EndTokenization()
			require.NoError(t, deliver(tb, startTag("head"), startTag("meta", tt.attrs...)))
			assert.Equal(t, tt.declared, tok.declared)
			assert.Equal(t, tt.suspended, tok.suspended)
		})
	}
}

func TestExtractCharsetFromContent(t *testing.T) {
	tests := []struct {
		content string
		want    string
		ok      bool
	}{
		{"text/html; charset=utf-8", "utf-8", true},
		{"text/html;charset=\"windows-1251\"", "windows-1251", true},
		{"text/html; CHARSET = 'koi8-r' ", "koi8-r", true},
		{"text/html; ccharset=utf-8", "utf-8", true},
		{"text/html; charset=utf-8;foo", "utf-8", true},
		{"text/html; charset=\"utf-8", "", false},
		{"text/html; charset", "", false},
		{"text/html; charset=", "", false},
		{"text/html; charset x=utf-8", "", false},
		{"text/html", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.content, func(t *testing.T) {
			got, ok := ExtractCharsetFromContent(tt.content)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassifyDoctype(t *testing.T) {
	tests := []struct {
		name string
		d    Doctype
		want DocumentMode
	}{
		{"html5", Doctype{Name: "html"}, NoQuirksMode},
		{"force quirks", Doctype{Name: "html", ForceQuirks: true}, QuirksMode},
		{"other name", Doctype{Name: "svg"}, QuirksMode},
		{
			"html 4.01 strict",
			Doctype{Name: "html", PublicID: "-//W3C//DTD HTML 4.01//EN", HasPublicID: true, SystemID: "http://www.w3.org/TR/html4/strict.dtd", HasSystemID: true},
			NoQuirksMode,
		},
		{
			"html 4.01 transitional without system id",
			Doctype{Name: "html", PublicID: "-//W3C//DTD HTML 4.01 Transitional//EN", HasPublicID: true},
			QuirksMode,
		},
		{
			"html 4.01 transitional with system id",
			Doctype{Name: "html", PublicID: "-//W3C//DTD HTML 4.01 Transitional//EN", HasPublicID: true, SystemID: "http://www.w3.org/TR/html4/loose.dtd", HasSystemID: true},
			LimitedQuirksMode,
		},
		{
			"xhtml 1.0 transitional",
			Doctype{Name: "html", PublicID: "-//W3C//DTD XHTML 1.0 Transitional//EN", HasPublicID: true, SystemID: "http://www.w3.org/TR/xhtml1/DTD/xhtml1-transitional.dtd", HasSystemID: true},
			LimitedQuirksMode,
		},
		{
			"html 3.2",
			Doctype{Name: "html", PublicID: "-//W3C//DTD HTML 3.2 Final//EN", HasPublicID: true},
			QuirksMode,
		},
		{
			"exact match",
			Doctype{Name: "html", PublicID: "HTML", HasPublicID: true},
			QuirksMode,
		},
		{
			"ibm system id",
			Doctype{Name: "html", SystemID: "http://www.IBM.com/data/dtd/v11/ibmxhtml1-transitional.dtd", HasSystemID: true},
			QuirksMode,
		},
		{
			"empty public id",
			Doctype{Name: "html", HasPublicID: true},
			NoQuirksMode,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyDoctype(tt.d))
		})
	}
}

func TestDocumentModeCallback(t *testing.T) {
	var got []DocumentMode
	cfg := Config{OnDocumentMode: func(mode DocumentMode, publicID, systemID string) {
		got = append(got, mode)
	}}
	require.NoError(t, feed(New[*node](&testSink{}, cfg), nil, startTag("p")))
	require.NoError(t, feed(New[*node](&testSink{}, cfg), nil, tok{doctype: &Doctype{Name: "html"}}, startTag("p")))

	assert.Equal(t, []DocumentMode{QuirksMode, NoQuirksMode}, got)
}

func TestSkipDoctypeAndIgnoreComments(t *testing.T) {
	sink := &testSink{}
	cfg := Config{SkipDoctype: true, IgnoreComments: true}
	tb := New[*node](sink, cfg)
	require.NoError(t, feed(tb, nil, tok{doctype: &Doctype{Name: "html"}}, tok{comment: "c"}, startTag("p")))

	got := dump(sink.doc)
	assert.NotContains(t, got, "DOCTYPE")
	assert.NotContains(t, got, "<!--")
	assert.False(t, tb.WantsComments())
}

func TestEscapeName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"div", "div"},
		{"a:b", "aU0003Ab"},
		{"1a", "U00031a"},
		{"-x", "U0002Dx"},
		{"x-1", "x-1"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := EscapeName(tt.in)
			assert.Equal(t, tt.want, got)
			assert.True(t, IsNCName(got))
		})
	}
}

func TestLookupElementName(t *testing.T) {
	tests := []struct {
		name    string
		group   DispatchGroup
		special bool
		scoping bool
		foster  bool
	}{
		{"table", GroupTable, true, true, true},
		{"tr", GroupTr, true, false, true},
		{"td", GroupTdTh, true, true, false},
		{"b", GroupB, false, false, false},
		{"p", GroupP, true, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := LookupElementName(tt.name)
			assert.False(t, e.Custom())
			assert.Equal(t, tt.group, e.Group)
			assert.Equal(t, tt.special, e.Special())
			assert.Equal(t, tt.scoping, e.Scoping())
			assert.Equal(t, tt.foster, e.FosterParenting())
		})
	}

	custom := LookupElementName("my-element")
	assert.True(t, custom.Custom())
	assert.Equal(t, "foreignObject", LookupElementName("foreignobject").CamelCase())
}

func TestForeignContent(t *testing.T) {
	sink := &testSink{}
	require.NoError(t, feed(New[*node](sink, Config{}), nil,
		startTag("svg"), startTag("foreignobject"), startTag("p"), text("a"), endTag("p"), endTag("foreignobject"), endTag("svg"),
		startTag("math"), startTag("mi"), text("b"), endTag("math"),
		startTag("b"), text("c"),
	))

	want := removeIndent(`
		| <html>
		|   <head>
		|   <body>
		|     <svg svg>
		|       <svg foreignObject>
		|         <p>
		|           "a"
		|     <math math>
		|       <math mi>
		|         "b"
		|     <b>
		|       "c"
		`)
	if diff := cmp.Diff(dump(sink.doc), want); diff != "" {
		t.Errorf("diff (-got +want):\n%s", diff)
	}
}

func TestForeignTextDisallowsFrameset(t *testing.T) {
	sink := &testSink{}
	tb := New[*node](sink, Config{})
	defer tb.EndTokenization()
	require.NoError(t, tb.StartTokenization(nil))
	require.NoError(t, deliver(tb, startTag("svg"), text("x")))
	assert.Equal(t, InBody, tb.Mode())
	require.NoError(t, deliver(tb, endTag("svg"), startTag("frameset"), startTag("p"), text("y")))
	require.NoError(t, tb.EOF())

	want := removeIndent(`
		| <html>
		|   <head>
		|   <body>
		|     <svg svg>
		|       "x"
		|     <p>
		|       "y"
		`)
	if diff := cmp.Diff(dump(sink.doc), want); diff != "" {
		t.Errorf("diff (-got +want):\n%s", diff)
	}
}

func TestUnclosedElementsReported(t *testing.T) {
	var diags Diagnostics
	require.NoError(t, feed(New[*node](&testSink{}, Config{OnDiagnostic: diags.Add}), nil,
		tok{doctype: &Doctype{Name: "html"}}, startTag("div"), startTag("span"),
	))

	var found bool
	for _, d := range diags.List {
		if strings.Contains(d.Message, "End of file seen and there were open elements.") {
			found = true
		}
	}
	assert.True(t, found, "diagnostics: %v", diags.List)
}
