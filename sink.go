package treebuilder

// Namespace URIs for elements created by the tree builder.
const (
	NamespaceHTML   = "http://www.w3.org/1999/xhtml"
	NamespaceSVG    = "http://www.w3.org/2000/svg"
	NamespaceMathML = "http://www.w3.org/1998/Math/MathML"
	NamespaceXLink  = "http://www.w3.org/1999/xlink"
	NamespaceXML    = "http://www.w3.org/XML/1998/namespace"
	NamespaceXMLNS  = "http://www.w3.org/2000/xmlns/"
)

// Sink builds the concrete tree. N is the sink's node handle; its zero value
// is never a valid node.
//
// The tree builder never reads the tree back except through HasChildren, so a
// sink is free to represent nodes however it likes.
type Sink[N comparable] interface {
	// CreateElement creates an element that is not yet attached anywhere.
	// form is the form owner for form-associated elements, or the zero N.
	CreateElement(ns, name string, attrs *Attributes, form N) N

	// CreateHTMLElementSetAsRoot creates the html element and makes it the
	// document element.
	CreateHTMLElementSetAsRoot(attrs *Attributes) N

	AppendElement(child, parent N)

	// AppendCharacters appends text to parent. Sinks merge it into a
	// preceding text node.
	AppendCharacters(parent N, text string)

	AppendComment(parent N, text string)
	AppendCommentToDocument(text string)
	AppendDoctypeToDocument(name, publicID, systemID string)

	// AddAttributesToElement adds the attributes element does not have yet.
	AddAttributesToElement(element N, attrs *Attributes)

	HasChildren(element N) bool
	DetachFromParent(element N)

	// InsertFosterParentedChild inserts child before table if table has a
	// parent, and appends it to stackParent otherwise.
	InsertFosterParentedChild(child, table, stackParent N)

	// InsertFosterParentedCharacters is InsertFosterParentedChild for text.
	InsertFosterParentedCharacters(text string, table, stackParent N)

	// AppendChildrenToNewParent moves every child of oldParent to the end
	// of newParent.
	AppendChildrenToNewParent(oldParent, newParent N)
}

// ElementObserver is implemented by sinks that want to know when elements
// enter and leave the stack of open elements. Void elements are reported as
// pushed and immediately popped.
type ElementObserver[N comparable] interface {
	ElementPushed(ns, name string, node N)
	ElementPopped(ns, name string, node N)
}

// DocumentModeReceiver is implemented by sinks that record the document mode.
type DocumentModeReceiver interface {
	ReceiveDocumentMode(mode DocumentMode, publicID, systemID string)
}

// Starter is implemented by sinks that need setup and teardown around a parse.
type Starter interface {
	Start(fragment bool)
	End()
}
