package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dpotapov/go-treebuilder"
)

func TestFilter(t *testing.T) {
	errAt := func(line int, msg string) treebuilder.Diagnostic {
		return treebuilder.Diagnostic{
			Severity: treebuilder.SeverityError,
			Message:  msg,
			Span:     treebuilder.Span{Line: line, Column: 1},
		}
	}
	warning := treebuilder.Diagnostic{Severity: treebuilder.SeverityWarning, Message: "Duplicate ID"}

	tests := []struct {
		src  string
		d    treebuilder.Diagnostic
		want bool
	}{
		{"", warning, true},
		{"  ", errAt(1, "x"), true},
		{"!Warning", warning, false},
		{"!Warning", errAt(1, "x"), true},
		{`Severity == "error" && Line > 10`, errAt(11, "x"), true},
		{`Severity == "error" && Line > 10`, errAt(10, "x"), false},
		{`Message contains "table"`, errAt(1, "Start tag “td” seen in “table”."), true},
		{`lower(Message) startsWith "duplicate"`, warning, true},
		{`Fatal`, errAt(1, "x"), false},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			f, err := Compile(tt.src)
			require.NoError(t, err)
			got, err := f.Match(tt.d)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCompileErrors(t *testing.T) {
	for _, src := range []string{
		`Line + 1`,
		`NoSuchField == 1`,
		`Severity ==`,
	} {
		t.Run(src, func(t *testing.T) {
			_, err := Compile(src)
			assert.Error(t, err)
		})
	}
}

func TestWrap(t *testing.T) {
	f, err := Compile(`!Warning`)
	require.NoError(t, err)

	var got []string
	cb := f.Wrap(func(d treebuilder.Diagnostic) {
		got = append(got, d.Message)
	})
	cb(treebuilder.Diagnostic{Severity: treebuilder.SeverityWarning, Message: "w"})
	cb(treebuilder.Diagnostic{Severity: treebuilder.SeverityError, Message: "e"})
	assert.Equal(t, []string{"e"}, got)

	assert.Nil(t, f.Wrap(nil))

	var none *Filter
	assert.Equal(t, "true", none.String())
	assert.Equal(t, "!Warning", f.String())
}
