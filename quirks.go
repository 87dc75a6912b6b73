package treebuilder

import (
	"fmt"
	"strings"
)

type DocumentMode int

const (
	NoQuirksMode DocumentMode = iota
	LimitedQuirksMode
	QuirksMode
)

func (m DocumentMode) String() string {
	switch m {
	case NoQuirksMode:
		return "no-quirks"
	case LimitedQuirksMode:
		return "limited-quirks"
	case QuirksMode:
		return "quirks"
	}
	return fmt.Sprintf("DocumentMode(%d)", int(m))
}

// ClassifyDoctype returns the document mode a DOCTYPE selects.
func ClassifyDoctype(d Doctype) DocumentMode {
	switch {
	case isQuirky(d):
		return QuirksMode
	case isAlmostStandards(d):
		return LimitedQuirksMode
	}
	return NoQuirksMode
}

func isQuirky(d Doctype) bool {
	if d.ForceQuirks || d.Name != "html" {
		return true
	}
	if d.HasPublicID {
		pub := strings.ToLower(d.PublicID)
		for _, q := range quirkyPublicIDPrefixes {
			if strings.HasPrefix(pub, q) {
				return true
			}
		}
		switch pub {
		case "-//w3o//dtd w3 html strict 3.0//en//", "-/w3c/dtd html 4.0 transitional/en", "html":
			return true
		}
	}
	if !d.HasSystemID {
		return hasHTML401TransitionalOrFramesetPrefix(d)
	}
	return strings.EqualFold(d.SystemID, "http://www.ibm.com/data/dtd/v11/ibmxhtml1-transitional.dtd")
}

func isAlmostStandards(d Doctype) bool {
	if !d.HasPublicID {
		return false
	}
	pub := strings.ToLower(d.PublicID)
	if strings.HasPrefix(pub, "-//w3c//dtd xhtml 1.0 transitional//") ||
		strings.HasPrefix(pub, "-//w3c//dtd xhtml 1.0 frameset//") {
		return true
	}
	return d.HasSystemID && hasHTML401TransitionalOrFramesetPrefix(d)
}

func hasHTML401TransitionalOrFramesetPrefix(d Doctype) bool {
	if !d.HasPublicID {
		return false
	}
	pub := strings.ToLower(d.PublicID)
	return strings.HasPrefix(pub, "-//w3c//dtd html 4.01 transitional//") ||
		strings.HasPrefix(pub, "-//w3c//dtd html 4.01 frameset//")
}

// Public identifiers are compared case-insensitively by prefix.
var quirkyPublicIDPrefixes = []string{
	"+//silmaril//dtd html pro v0r11 19970101//",
	"-//advasoft ltd//dtd html 3.0 aswedit + extensions//",
	"-//as//dtd html 3.0 aswedit + extensions//",
	"-//ietf//dtd html 2.0 level 1//",
	"-//ietf//dtd html 2.0 level 2//",
	"-//ietf//dtd html 2.0 strict level 1//",
	"-//ietf//dtd html 2.0 strict level 2//",
	"-//ietf//dtd html 2.0 strict//",
	"-//ietf//dtd html 2.0//",
	"-//ietf//dtd html 2.1e//",
	"-//ietf//dtd html 3.0//",
	"-//ietf//dtd html 3.2 final//",
	"-//ietf//dtd html 3.2//",
	"-//ietf//dtd html 3//",
	"-//ietf//dtd html level 0//",
	"-//ietf//dtd html level 1//",
	"-//ietf//dtd html level 2//",
	"-//ietf//dtd html level 3//",
	"-//ietf//dtd html strict level 0//",
	"-//ietf//dtd html strict level 1//",
	"-//ietf//dtd html strict level 2//",
	"-//ietf//dtd html strict level 3//",
	"-//ietf//dtd html strict//",
	"-//ietf//dtd html//",
	"-//metrius//dtd metrius presentational//",
	"-//microsoft//dtd internet explorer 2.0 html strict//",
	"-//microsoft//dtd internet explorer 2.0 html//",
	"-//microsoft//dtd internet explorer 2.0 tables//",
	"-//microsoft//dtd internet explorer 3.0 html strict//",
	"-//microsoft//dtd internet explorer 3.0 html//",
	"-//microsoft//dtd internet explorer 3.0 tables//",
	"-//netscape comm. corp.//dtd html//",
	"-//netscape comm. corp.//dtd strict html//",
	"-//o'reilly and associates//dtd html 2.0//",
	"-//o'reilly and associates//dtd html extended 1.0//",
	"-//o'reilly and associates//dtd html extended relaxed 1.0//",
	"-//softquad software//dtd hotmetal pro 6.0::19990601::extensions to html 4.0//",
	"-//softquad//dtd hotmetal pro 4.0::19971010::extensions to html 4.0//",
	"-//spyglass//dtd html 2.0 extended//",
	"-//sq//dtd html 2.0 hotmetal + extensions//",
	"-//sun microsystems corp.//dtd hotjava html//",
	"-//sun microsystems corp.//dtd hotjava strict html//",
	"-//w3c//dtd html 3 1995-03-24//",
	"-//w3c//dtd html 3.2 draft//",
	"-//w3c//dtd html 3.2 final//",
	"-//w3c//dtd html 3.2//",
	"-//w3c//dtd html 3.2s draft//",
	"-//w3c//dtd html 4.0 frameset//",
	"-//w3c//dtd html 4.0 transitional//",
	"-//w3c//dtd html experimental 19960712//",
	"-//w3c//dtd html experimental 970421//",
	"-//w3c//dtd w3 html//",
	"-//w3o//dtd w3 html 3.0//",
	"-//webtechs//dtd mozilla html 2.0//",
	"-//webtechs//dtd mozilla html//",
}

// DoctypeExpectation selects which doctype the document is expected to
// carry. It only affects diagnostics, never the document mode.
type DoctypeExpectation int

const (
	ExpectHTML DoctypeExpectation = iota
	ExpectHTML401Strict
	ExpectHTML401Transitional
	ExpectAuto
	ExpectNoDoctypeErrors
)

const (
	expectedHTML                = "Expected “<!DOCTYPE html>”."
	expectedHTMLAuto            = "Expected e.g. “<!DOCTYPE html>”."
	expectedHTML401Strict       = "Expected “<!DOCTYPE HTML PUBLIC \"-//W3C//DTD HTML 4.01//EN\" \"http://www.w3.org/TR/html4/strict.dtd\">”."
	expectedHTML401Transitional = "Expected “<!DOCTYPE HTML PUBLIC \"-//W3C//DTD HTML 4.01 Transitional//EN\" \"http://www.w3.org/TR/html4/loose.dtd\">”."
)

// expected returns the "Expected ..." suffix for missing doctype messages,
// or "" when doctype errors are off.
func (e DoctypeExpectation) expected() string {
	switch e {
	case ExpectHTML:
		return expectedHTML
	case ExpectHTML401Strict:
		return expectedHTML401Strict
	case ExpectHTML401Transitional:
		return expectedHTML401Transitional
	case ExpectAuto:
		return expectedHTMLAuto
	}
	return ""
}

// errNoDoctype reports content seen before any doctype. what describes the
// content, e.g. "Start tag seen".
func (tb *TreeBuilder[N]) errNoDoctype(what string) {
	if exp := tb.cfg.DoctypeExpectation.expected(); exp != "" {
		tb.err(what + " without seeing a doctype first. " + exp)
	}
}

const (
	html401StrictPublicID       = "-//W3C//DTD HTML 4.01//EN"
	html401StrictSystemID       = "http://www.w3.org/TR/html4/strict.dtd"
	html401TransitionalPublicID = "-//W3C//DTD HTML 4.01 Transitional//EN"
	html401TransitionalSystemID = "http://www.w3.org/TR/html4/loose.dtd"
	msgHTML401SystemID          = "The doctype did not contain the system identifier prescribed by the HTML 4.01 specification. "
)

// checkDoctype reports the doctype diagnostics the configured expectation
// calls for and returns the document mode.
func (tb *TreeBuilder[N]) checkDoctype(d Doctype) DocumentMode {
	mode := ClassifyDoctype(d)
	pub, sys := d.PublicID, d.SystemID
	switch tb.cfg.DoctypeExpectation {
	case ExpectHTML:
		switch mode {
		case QuirksMode:
			tb.err("Quirky doctype. " + expectedHTML)
		case LimitedQuirksMode:
			tb.err("Almost standards mode doctype. " + expectedHTML)
		default:
			switch {
			case isObsoletePermittedDoctype(d):
				tb.warn("Obsolete doctype. " + expectedHTML)
			case !((!d.HasSystemID || sys == "about:legacy-compat") && !d.HasPublicID):
				tb.err("Legacy doctype. " + expectedHTML)
			}
		}
	case ExpectHTML401Strict:
		switch mode {
		case QuirksMode:
			tb.err("Quirky doctype. " + expectedHTML401Strict)
		case LimitedQuirksMode:
			tb.err("Almost standards mode doctype. " + expectedHTML401Strict)
		default:
			if pub == html401StrictPublicID {
				if sys != html401StrictSystemID {
					tb.warn(msgHTML401SystemID + expectedHTML401Strict)
				}
			} else {
				tb.err("The doctype was not the HTML 4.01 Strict doctype. " + expectedHTML401Strict)
			}
		}
	case ExpectHTML401Transitional:
		switch mode {
		case QuirksMode:
			tb.err("Quirky doctype. " + expectedHTML401Transitional)
		case LimitedQuirksMode:
			if pub == html401TransitionalPublicID && d.HasSystemID {
				if sys != html401TransitionalSystemID {
					tb.warn(msgHTML401SystemID + expectedHTML401Transitional)
				}
			} else {
				tb.err("The doctype was not a non-quirky HTML 4.01 Transitional doctype. " + expectedHTML401Transitional)
			}
		default:
			tb.err("The doctype was not the HTML 4.01 Transitional doctype. " + expectedHTML401Transitional)
		}
	case ExpectAuto:
		switch mode {
		case QuirksMode:
			tb.err("Quirky doctype. " + expectedHTMLAuto)
		case LimitedQuirksMode:
			if pub == html401TransitionalPublicID {
				if sys != html401TransitionalSystemID {
					tb.warn(msgHTML401SystemID + expectedHTML401Transitional)
				}
			} else {
				tb.err("Almost standards mode doctype. " + expectedHTMLAuto)
			}
		default:
			if pub == html401StrictPublicID {
				if sys != html401StrictSystemID {
					tb.warn(msgHTML401SystemID + expectedHTML401Strict)
				}
			} else if d.HasPublicID || d.HasSystemID {
				tb.err("Legacy doctype. " + expectedHTMLAuto)
			}
		}
	}
	return mode
}

func isObsoletePermittedDoctype(d Doctype) bool {
	pub, sys := d.PublicID, d.SystemID
	switch pub {
	case "-//W3C//DTD HTML 4.0//EN":
		return !d.HasSystemID || sys == "http://www.w3.org/TR/REC-html40/strict.dtd"
	case html401StrictPublicID:
		return !d.HasSystemID || sys == html401StrictSystemID
	case "-//W3C//DTD XHTML 1.0 Strict//EN":
		return sys == "http://www.w3.org/TR/xhtml1/DTD/xhtml1-strict.dtd"
	case "-//W3C//DTD XHTML 1.1//EN":
		return sys == "http://www.w3.org/TR/xhtml11/DTD/xhtml11.dtd"
	}
	return false
}
