package xmltree

import (
	"context"
	"strings"
	"testing"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dpotapov/go-treebuilder"
)

func parse(t *testing.T, s string) *etree.Document {
	t.Helper()
	doc, err := Parse(context.Background(), strings.NewReader(s), treebuilder.Config{})
	require.NoError(t, err)
	return doc
}

func TestParse(t *testing.T) {
	doc := parse(t, `<!DOCTYPE html><title>T</title><p class=x>a<svg viewBox="0 0 1 1"><circle r="1"/></svg><math><mi>b</mi></math>`)

	root := doc.Root()
	require.NotNil(t, root)
	assert.Equal(t, "html", root.Tag)
	assert.Equal(t, treebuilder.NamespaceHTML, root.SelectAttrValue("xmlns", ""))
	assert.Equal(t, treebuilder.NamespaceSVG, root.SelectAttrValue("xmlns:svg", ""))
	assert.Equal(t, treebuilder.NamespaceMathML, root.SelectAttrValue("xmlns:math", ""))

	assert.Equal(t, "T", doc.FindElement("//head/title").Text())

	p := doc.FindElement("//body/p")
	require.NotNil(t, p)
	assert.Equal(t, "x", p.SelectAttrValue("class", ""))
	assert.Equal(t, "a", p.Text())

	svg := p.FindElement("svg:svg")
	require.NotNil(t, svg)
	assert.Equal(t, "0 0 1 1", svg.SelectAttrValue("viewbox", ""))
	assert.NotNil(t, svg.FindElement("svg:circle"))
	assert.Equal(t, "b", p.FindElement("math:math/math:mi").Text())

	s, err := doc.WriteToString()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(s, "<!DOCTYPE html>"), s)
}

func TestParseFosterParenting(t *testing.T) {
	doc := parse(t, `<table>foo<tr><td>bar</table>`)
	body := doc.FindElement("//body")
	require.NotNil(t, body)
	require.Len(t, body.Child, 2)

	text, ok := body.Child[0].(*etree.CharData)
	require.True(t, ok)
	assert.Equal(t, "foo", text.Data)
	assert.Equal(t, "bar", doc.FindElement("//table/tbody/tr/td").Text())
}

func TestParseComments(t *testing.T) {
	doc := parse(t, `<!--a--b--><p>x`)
	var comments []string
	for _, tok := range doc.Child {
		if c, ok := tok.(*etree.Comment); ok {
			comments = append(comments, c.Data)
		}
	}
	assert.Equal(t, []string{"a- -b"}, comments)
}

func TestParseFragment(t *testing.T) {
	root, err := ParseFragment(context.Background(), strings.NewReader("<td>x<td>y"), treebuilder.NamespaceHTML, "tr", treebuilder.Config{})
	require.NoError(t, err)

	cells := root.SelectElements("td")
	require.Len(t, cells, 2)
	assert.Equal(t, "x", cells[0].Text())
	assert.Equal(t, "y", cells[1].Text())
}

func TestSinkCurrent(t *testing.T) {
	sink := &Sink{}
	var snippets []string
	cfg := treebuilder.Config{OnDiagnostic: func(d treebuilder.Diagnostic) {
		snippets = append(snippets, Context(sink.Current()))
	}}
	_, err := ParseWithSink(context.Background(), strings.NewReader(`<!DOCTYPE html><div><span></div>`), sink, cfg)
	require.NoError(t, err)

	assert.Contains(t, snippets, "<div><span/></div>")
	assert.Nil(t, sink.Current())
}

func TestSinkCurrentAfterMisnesting(t *testing.T) {
	sink := &Sink{}
	var current *etree.Element
	cfg := treebuilder.Config{OnDiagnostic: func(d treebuilder.Diagnostic) {
		if strings.Contains(d.Message, "“div”") {
			current = sink.Current()
		}
	}}
	_, err := ParseWithSink(context.Background(), strings.NewReader(`<!DOCTYPE html><b><p>x</b></div>`), sink, cfg)
	require.NoError(t, err)

	// The b is recreated inside the p, and that clone is the current node.
	require.NotNil(t, current)
	assert.Equal(t, "b", current.Tag)
	require.NotNil(t, current.Parent())
	assert.Equal(t, "p", current.Parent().Tag)
	assert.Equal(t, "x", current.Text())
}

func TestContext(t *testing.T) {
	doc := parse(t, `<ul><li>1<li>2<li>3<li>4<li>5<li>6<li>7</ul>`)
	items := doc.FindElements("//li")
	require.Len(t, items, 7)

	tests := []struct {
		name string
		el   *etree.Element
		want string
	}{
		{"middle", items[3], "<ul>...<li>2</li><li>3</li><li>4</li><li>5</li><li>6</li>...</ul>"},
		{"first", items[0], "<ul><li>1</li><li>2</li><li>3</li>...</ul>"},
		{"last", items[6], "<ul>...<li>5</li><li>6</li><li>7</li></ul>"},
		{"grandchildren elided", doc.FindElement("//ul"), "<body><ul>...</ul></body>"},
		{"nil", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Context(tt.el))
		})
	}
}
