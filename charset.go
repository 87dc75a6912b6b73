package treebuilder

import (
	"strings"
)

// ExtractCharsetFromContent finds the encoding name in the content attribute
// of <meta http-equiv="Content-Type">, e.g. "text/html; charset=utf-8".
//
// https://html.spec.whatwg.org/multipage/urls-and-fetching.html#algorithm-for-extracting-a-character-encoding-from-a-meta-element
func ExtractCharsetFromContent(content string) (string, bool) {
	const word = "charset"
	i, matched := 0, 0
	for ; i < len(content) && matched < len(word); i++ {
		c := lower(content[i])
		switch {
		case c == word[matched]:
			matched++
		case c == word[0]:
			matched = 1
		default:
			matched = 0
		}
	}
	if matched < len(word) {
		return "", false
	}

	i = skipSpace(content, i)
	if i == len(content) || content[i] != '=' {
		return "", false
	}
	i = skipSpace(content, i+1)
	if i == len(content) {
		return "", false
	}

	var value string
	switch q := content[i]; q {
	case '"', '\'':
		rest := content[i+1:]
		end := strings.IndexByte(rest, q)
		if end < 0 {
			return "", false
		}
		value = rest[:end]
	default:
		rest := content[i:]
		if end := strings.IndexAny(rest, whitespace+";"); end >= 0 {
			rest = rest[:end]
		}
		value = rest
	}
	if value == "" {
		return "", false
	}
	return value, true
}

func lower(c byte) byte {
	if 'A' <= c && c <= 'Z' {
		return c + 'a' - 'A'
	}
	return c
}

func skipSpace(s string, i int) int {
	for i < len(s) && strings.IndexByte(whitespace, s[i]) >= 0 {
		i++
	}
	return i
}

// checkMetaCharset hands an encoding declared by a <meta> element to the
// tokenizer, and suspends if the tokenizer wants to start over.
func (tb *TreeBuilder[N]) checkMetaCharset(attrs *Attributes) {
	if tb.tokenizer == nil {
		return
	}
	charset, ok := attrs.Value("charset")
	if !ok {
		equiv, _ := attrs.Value("http-equiv")
		if !strings.EqualFold(equiv, "content-type") {
			return
		}
		content, ok := attrs.Value("content")
		if !ok {
			return
		}
		if charset, ok = ExtractCharsetFromContent(content); !ok {
			return
		}
	}
	if tb.tokenizer.EncodingDeclaration(charset) {
		tb.logger.Debug("encoding declaration, suspending", "charset", charset)
		tb.tokenizer.RequestSuspension()
	}
}
