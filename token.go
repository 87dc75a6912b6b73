package treebuilder

// LexState is a lexical state the tree builder can ask the tokenizer to
// switch to after opening an element with a text-only content model.
type LexState int

const (
	Data LexState = iota
	RCDATA
	RAWTEXT
	ScriptData
	PLAINTEXT
)

func (s LexState) String() string {
	switch s {
	case Data:
		return "data"
	case RCDATA:
		return "rcdata"
	case RAWTEXT:
		return "rawtext"
	case ScriptData:
		return "script data"
	case PLAINTEXT:
		return "plaintext"
	}
	return "unknown"
}

// Span locates a token in the source. Line and Column are 1-based; the zero
// Span means "unknown".
type Span struct {
	Offset int
	Line   int
	Column int
	Length int
}

func (s Span) IsZero() bool {
	return s == Span{}
}

// Doctype is the payload of a DOCTYPE token. The Has* flags distinguish a
// missing identifier from an empty one.
type Doctype struct {
	Name        string
	PublicID    string
	SystemID    string
	HasPublicID bool
	HasSystemID bool
	ForceQuirks bool
}

// Tokenizer is the part of the tokenizer the tree builder calls back into.
type Tokenizer interface {
	// SetState switches the lexical state. endTagExpectation is the name of
	// the element whose end tag terminates RCDATA, RAWTEXT and script data.
	SetState(state LexState, endTagExpectation string)

	// RequestSuspension asks the tokenizer to stop delivering tokens after
	// the current one.
	RequestSuspension()

	// EncodingDeclaration reports a <meta> charset found in the document.
	// It returns true if the tokenizer wants to restart with that encoding.
	EncodingDeclaration(charset string) bool

	// Span returns the location of the token being delivered.
	Span() Span
}

// TokenHandler receives tokens from a tokenizer. *TreeBuilder implements it.
type TokenHandler interface {
	StartTokenization(tokenizer Tokenizer) error
	StartTag(name string, attrs *Attributes, selfClosing bool) error
	EndTag(name string) error
	Characters(text string) error
	Comment(text string) error
	Doctype(d Doctype) error
	EOF() error
	EndTokenization() error

	// WantsComments reports whether comment tokens should be delivered.
	WantsComments() bool

	// CDATASectionAllowed reports whether <![CDATA[ starts a CDATA section
	// at the current position, which is only the case in foreign content.
	CDATASectionAllowed() bool
}

type tokenKind int

const (
	startTagToken tokenKind = iota
	endTagToken
	charactersToken
	commentToken
	doctypeToken
	eofToken
)

func (k tokenKind) String() string {
	switch k {
	case startTagToken:
		return "start tag"
	case endTagToken:
		return "end tag"
	case charactersToken:
		return "characters"
	case commentToken:
		return "comment"
	case doctypeToken:
		return "doctype"
	case eofToken:
		return "eof"
	}
	return "unknown"
}

// token is the token being processed. Insertion modes may rewrite it before
// asking for it to be reprocessed.
type token struct {
	kind        tokenKind
	name        ElementName
	attrs       *Attributes
	selfClosing bool
	text        string
	doctype     Doctype
}
