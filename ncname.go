package treebuilder

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// IsNCName reports whether s is an XML 1.0 NCName, meaning it could be used
// as an element or attribute name when the tree is serialized as XML.
func IsNCName(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if i == 0 {
			if !isNCNameStart(r) {
				return false
			}
			continue
		}
		if !isNCNameChar(r) {
			return false
		}
	}
	return true
}

func isNCNameStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.Is(unicode.Nl, r)
}

func isNCNameChar(r rune) bool {
	switch {
	case isNCNameStart(r), r == '-', r == '.', r == 0xB7:
		return true
	}
	return unicode.IsDigit(r) || unicode.In(r, unicode.Mn, unicode.Mc, unicode.Me, unicode.Lm)
}

// EscapeName turns s into an NCName by replacing every offending rune with
// "U" followed by its code point as five upper-case hex digits. A leading
// rune that may only appear later in a name is escaped too.
func EscapeName(s string) string {
	var b strings.Builder
	for i, r := range s {
		ok := isNCNameChar(r)
		if i == 0 {
			ok = isNCNameStart(r)
		}
		if ok && r != utf8.RuneError {
			b.WriteRune(r)
			continue
		}
		fmt.Fprintf(&b, "U%05X", r)
	}
	return b.String()
}

// foreignLocalName strips the xlink: and xml: prefixes that foreign
// attributes legitimately carry.
func foreignLocalName(name string) string {
	for _, prefix := range []string{"xlink:", "xml:"} {
		if strings.HasPrefix(name, prefix) {
			return name[len(prefix):]
		}
	}
	return name
}

// NamePolicy says what to do with element and attribute names that cannot
// be serialized as XML 1.0, and with xmlns attributes.
type NamePolicy int

const (
	// PolicyAllow keeps the name and reports a warning.
	PolicyAllow NamePolicy = iota
	// PolicyAlterInfoset escapes the name with EscapeName and drops xmlns
	// attributes from the tree.
	PolicyAlterInfoset
	// PolicyFatal aborts the parse.
	PolicyFatal
)

func (p NamePolicy) String() string {
	switch p {
	case PolicyAllow:
		return "allow"
	case PolicyAlterInfoset:
		return "alter-infoset"
	case PolicyFatal:
		return "fatal"
	}
	return fmt.Sprintf("NamePolicy(%d)", int(p))
}

// checkNames applies the NamePolicy to a start tag. It returns the element
// name to use.
func (tb *TreeBuilder[N]) checkNames(name ElementName, attrs *Attributes) ElementName {
	if !IsNCName(name.Name) {
		msg := fmt.Sprintf("Element name “%s” cannot be represented as XML 1.0.", name.Name)
		switch tb.cfg.NamePolicy {
		case PolicyAllow:
			tb.warn(msg)
		case PolicyAlterInfoset:
			tb.warn(msg)
			name = LookupElementName(EscapeName(name.Name))
		case PolicyFatal:
			tb.fatal(msg, nil)
		}
	}
	for i := 0; i < attrs.Len(); i++ {
		attr := attrs.At(i)
		if isXMLNS(attr.Name) || IsNCName(foreignLocalName(attr.Name)) {
			continue
		}
		msg := fmt.Sprintf("Attribute “%s” is not serializable as XML 1.0.", attr.Name)
		switch tb.cfg.NamePolicy {
		case PolicyAllow:
			tb.warn(msg)
		case PolicyAlterInfoset:
			tb.warn(msg)
			attrs.rename(i, EscapeName(attr.Name))
		case PolicyFatal:
			tb.fatal(msg, nil)
		}
	}
	if len(attrs.XMLNS()) > 0 {
		switch tb.cfg.NamePolicy {
		case PolicyAlterInfoset:
			attrs.dropXMLNS()
		case PolicyFatal:
			tb.fatal("Saw an xmlns attribute.", nil)
		}
	}
	return name
}
