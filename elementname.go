package treebuilder

import (
	a "golang.org/x/net/html/atom"
)

// DispatchGroup is a coarse classification of element names. Insertion modes
// switch on it instead of comparing tag names one by one.
type DispatchGroup uint8

const (
	GroupOther DispatchGroup = iota
	GroupA
	GroupAddress // address, article, aside, details, dialog, dir, figcaption, figure, footer, header, hgroup, main, nav, section, summary
	GroupAnnotationXML
	GroupArea // area, wbr
	GroupB    // b, big, code, em, i, s, small, strike, strong, tt, u
	GroupBase
	GroupBody
	GroupBr
	GroupButton
	GroupCaption
	GroupCol
	GroupColgroup
	GroupCommand
	GroupDdDt
	GroupDiv // div, blockquote, center, menu
	GroupEmbed
	GroupFieldset
	GroupFont
	GroupForm
	GroupFrame
	GroupFrameset
	GroupHead
	GroupHeading // h1 to h6
	GroupHr
	GroupHTML
	GroupIframe
	GroupImage
	GroupImg
	GroupInput
	GroupIsindex
	GroupKeygen
	GroupLi
	GroupLink // link, basefont, bgsound
	GroupList // ul, ol, dl
	GroupMarquee // marquee, applet
	GroupMath
	GroupMathText // mi, mo, mn, ms, mtext
	GroupMeta
	GroupMglyph // mglyph, malignmark
	GroupNobr
	GroupNoembed
	GroupNoframes
	GroupNoscript
	GroupObject
	GroupOptgroup
	GroupOption
	GroupOutput // output, label
	GroupP
	GroupParam // param, source, track
	GroupPlaintext
	GroupPre // pre, listing
	GroupRtRp
	GroupRuby // ruby, span, sub, sup, var
	GroupScript
	GroupSelect
	GroupStyle
	GroupSvg
	GroupTable
	GroupTbody // tbody, thead, tfoot
	GroupTdTh
	GroupTextarea
	GroupTitle
	GroupTr
	GroupXmp
)

type elementFlags uint8

const (
	flagSpecial elementFlags = 1 << iota
	flagScoping
	flagFosterParenting
)

// ElementName is an interned element name with its dispatch group. The
// zero Atom marks a name outside the known HTML vocabulary.
type ElementName struct {
	Name  string
	Atom  a.Atom
	Group DispatchGroup
	flags elementFlags
}

// Custom reports whether the name is not a known HTML element name.
func (e ElementName) Custom() bool {
	return e.Atom == 0
}

// Special reports whether the element is in the HTML "special" category.
func (e ElementName) Special() bool { return e.flags&flagSpecial != 0 }

// Scoping reports whether the element bounds the default scope.
func (e ElementName) Scoping() bool { return e.flags&flagScoping != 0 }

// FosterParenting reports whether content inserted into the element is
// redirected in front of the enclosing table.
func (e ElementName) FosterParenting() bool { return e.flags&flagFosterParenting != 0 }

// CamelCase returns the name as it is spelled in SVG, which differs from the
// lower-cased tokenizer output for names like "foreignObject".
func (e ElementName) CamelCase() string {
	if s, ok := svgTagNameAdjustments[e.Name]; ok {
		return s
	}
	return e.Name
}

// HasCamelCase reports whether CamelCase differs from Name.
func (e ElementName) HasCamelCase() bool {
	_, ok := svgTagNameAdjustments[e.Name]
	return ok
}

// LookupElementName classifies a lower-case tag name.
func LookupElementName(name string) ElementName {
	atom := a.Lookup([]byte(name))
	e := ElementName{Name: name, Atom: atom}
	if atom == 0 {
		return e
	}
	e.Group = categorize(atom)
	if isSpecial(atom) {
		e.flags |= flagSpecial
	}
	switch atom {
	case a.Applet, a.Caption, a.Html, a.Table, a.Td, a.Th, a.Marquee, a.Object:
		e.flags |= flagScoping
	}
	switch atom {
	case a.Table, a.Tbody, a.Thead, a.Tfoot, a.Tr:
		e.flags |= flagFosterParenting
	}
	return e
}

func elementNameFor(atom a.Atom) ElementName {
	return LookupElementName(atom.String())
}

var (
	nameHTML     = elementNameFor(a.Html)
	nameHead     = elementNameFor(a.Head)
	nameBody     = elementNameFor(a.Body)
	nameP        = elementNameFor(a.P)
	nameTr       = elementNameFor(a.Tr)
	nameTbody    = elementNameFor(a.Tbody)
	nameColgroup = elementNameFor(a.Colgroup)
	nameImg      = elementNameFor(a.Img)
	nameBr       = elementNameFor(a.Br)
	nameTable    = elementNameFor(a.Table)
	nameSvg      = elementNameFor(a.Svg)
)

func categorize(atom a.Atom) DispatchGroup {
	switch atom {
	case a.A:
		return GroupA
	case a.Address, a.Article, a.Aside, a.Details, a.Dialog, a.Dir, a.Figcaption, a.Figure,
		a.Footer, a.Header, a.Hgroup, a.Main, a.Nav, a.Section, a.Summary:
		return GroupAddress
	case a.AnnotationXml:
		return GroupAnnotationXML
	case a.Area, a.Wbr:
		return GroupArea
	case a.B, a.Big, a.Code, a.Em, a.I, a.S, a.Small, a.Strike, a.Strong, a.Tt, a.U:
		return GroupB
	case a.Base:
		return GroupBase
	case a.Body:
		return GroupBody
	case a.Br:
		return GroupBr
	case a.Button:
		return GroupButton
	case a.Caption:
		return GroupCaption
	case a.Col:
		return GroupCol
	case a.Colgroup:
		return GroupColgroup
	case a.Command:
		return GroupCommand
	case a.Dd, a.Dt:
		return GroupDdDt
	case a.Div, a.Blockquote, a.Center, a.Menu:
		return GroupDiv
	case a.Embed:
		return GroupEmbed
	case a.Fieldset:
		return GroupFieldset
	case a.Font:
		return GroupFont
	case a.Form:
		return GroupForm
	case a.Frame:
		return GroupFrame
	case a.Frameset:
		return GroupFrameset
	case a.Head:
		return GroupHead
	case a.H1, a.H2, a.H3, a.H4, a.H5, a.H6:
		return GroupHeading
	case a.Hr:
		return GroupHr
	case a.Html:
		return GroupHTML
	case a.Iframe:
		return GroupIframe
	case a.Image:
		return GroupImage
	case a.Img:
		return GroupImg
	case a.Input:
		return GroupInput
	case a.Isindex:
		return GroupIsindex
	case a.Keygen:
		return GroupKeygen
	case a.Li:
		return GroupLi
	case a.Link, a.Basefont, a.Bgsound:
		return GroupLink
	case a.Ul, a.Ol, a.Dl:
		return GroupList
	case a.Marquee, a.Applet:
		return GroupMarquee
	case a.Math:
		return GroupMath
	case a.Mi, a.Mo, a.Mn, a.Ms, a.Mtext:
		return GroupMathText
	case a.Meta:
		return GroupMeta
	case a.Mglyph, a.Malignmark:
		return GroupMglyph
	case a.Nobr:
		return GroupNobr
	case a.Noembed:
		return GroupNoembed
	case a.Noframes:
		return GroupNoframes
	case a.Noscript:
		return GroupNoscript
	case a.Object:
		return GroupObject
	case a.Optgroup:
		return GroupOptgroup
	case a.Option:
		return GroupOption
	case a.Output, a.Label:
		return GroupOutput
	case a.P:
		return GroupP
	case a.Param, a.Source, a.Track:
		return GroupParam
	case a.Plaintext:
		return GroupPlaintext
	case a.Pre, a.Listing:
		return GroupPre
	case a.Rt, a.Rp:
		return GroupRtRp
	case a.Ruby, a.Span, a.Sub, a.Sup, a.Var:
		return GroupRuby
	case a.Script:
		return GroupScript
	case a.Select:
		return GroupSelect
	case a.Style:
		return GroupStyle
	case a.Svg:
		return GroupSvg
	case a.Table:
		return GroupTable
	case a.Tbody, a.Thead, a.Tfoot:
		return GroupTbody
	case a.Td, a.Th:
		return GroupTdTh
	case a.Textarea:
		return GroupTextarea
	case a.Title:
		return GroupTitle
	case a.Tr:
		return GroupTr
	case a.Xmp:
		return GroupXmp
	}
	return GroupOther
}

func isSpecial(atom a.Atom) bool {
	switch atom {
	case a.Address, a.Applet, a.Area, a.Article, a.Aside, a.Base, a.Basefont, a.Bgsound,
		a.Blockquote, a.Body, a.Br, a.Button, a.Caption, a.Center, a.Col, a.Colgroup,
		a.Command, a.Dd, a.Details, a.Dialog, a.Dir, a.Div, a.Dl, a.Dt, a.Embed, a.Fieldset,
		a.Figcaption, a.Figure, a.Footer, a.Form, a.Frame, a.Frameset, a.H1, a.H2, a.H3,
		a.H4, a.H5, a.H6, a.Head, a.Header, a.Hgroup, a.Hr, a.Html, a.Iframe, a.Img,
		a.Input, a.Isindex, a.Keygen, a.Li, a.Link, a.Listing, a.Main, a.Marquee, a.Menu,
		a.Meta, a.Nav, a.Noembed, a.Noframes, a.Noscript, a.Object, a.Ol, a.P, a.Param,
		a.Plaintext, a.Pre, a.Script, a.Section, a.Select, a.Source, a.Style, a.Summary,
		a.Table, a.Tbody, a.Td, a.Textarea, a.Tfoot, a.Th, a.Thead, a.Title, a.Tr,
		a.Track, a.Ul, a.Wbr, a.Xmp:
		return true
	}
	return false
}

// Section 13.2.6.5, "adjust SVG tag names".
var svgTagNameAdjustments = map[string]string{
	"altglyph":            "altGlyph",
	"altglyphdef":         "altGlyphDef",
	"altglyphitem":        "altGlyphItem",
	"animatecolor":        "animateColor",
	"animatemotion":       "animateMotion",
	"animatetransform":    "animateTransform",
	"clippath":            "clipPath",
	"feblend":             "feBlend",
	"fecolormatrix":       "feColorMatrix",
	"fecomponenttransfer": "feComponentTransfer",
	"fecomposite":         "feComposite",
	"feconvolvematrix":    "feConvolveMatrix",
	"fediffuselighting":   "feDiffuseLighting",
	"fedisplacementmap":   "feDisplacementMap",
	"fedistantlight":      "feDistantLight",
	"fedropshadow":        "feDropShadow",
	"feflood":             "feFlood",
	"fefunca":             "feFuncA",
	"fefuncb":             "feFuncB",
	"fefuncg":             "feFuncG",
	"fefuncr":             "feFuncR",
	"fegaussianblur":      "feGaussianBlur",
	"feimage":             "feImage",
	"femerge":             "feMerge",
	"femergenode":         "feMergeNode",
	"femorphology":        "feMorphology",
	"feoffset":            "feOffset",
	"fepointlight":        "fePointLight",
	"fespecularlighting":  "feSpecularLighting",
	"fespotlight":         "feSpotLight",
	"fetile":              "feTile",
	"feturbulence":        "feTurbulence",
	"foreignobject":       "foreignObject",
	"glyphref":            "glyphRef",
	"lineargradient":      "linearGradient",
	"radialgradient":      "radialGradient",
	"textpath":            "textPath",
}
