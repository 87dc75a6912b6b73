package treebuilder

import "strings"

// Attribute is a single name/value pair. Namespace is empty for ordinary
// attributes and holds a namespace URI for xmlns declarations.
type Attribute struct {
	Namespace string
	Name      string
	Value     string
}

// Attributes is an ordered attribute list. Names are unique within the
// ordinary set; xmlns and xmlns:* declarations are kept in a parallel set.
// A nil *Attributes is a valid empty list.
type Attributes struct {
	attrs []Attribute
	xmlns []Attribute
	id    string
	hasID bool
}

func NewAttributes(attrs ...Attribute) *Attributes {
	as := &Attributes{}
	for _, attr := range attrs {
		as.Add(attr.Name, attr.Value)
	}
	return as
}

func isXMLNS(name string) bool {
	return name == "xmlns" || strings.HasPrefix(name, "xmlns:")
}

// Add appends an attribute. Duplicate names are dropped and reported by
// returning false. xmlns declarations go to the parallel set as well as the
// ordinary one; the tree builder's NamePolicy decides whether they stay in
// the ordinary set.
func (as *Attributes) Add(name, value string) bool {
	if as.Contains(name) {
		return false
	}
	if name == "id" && !as.hasID {
		as.id, as.hasID = value, true
	}
	if isXMLNS(name) {
		as.xmlns = append(as.xmlns, Attribute{Namespace: NamespaceXMLNS, Name: name, Value: value})
	}
	as.attrs = append(as.attrs, Attribute{Name: name, Value: value})
	return true
}

func (as *Attributes) Len() int {
	if as == nil {
		return 0
	}
	return len(as.attrs)
}

func (as *Attributes) At(i int) Attribute {
	return as.attrs[i]
}

// Slice returns a copy of the ordinary attributes.
func (as *Attributes) Slice() []Attribute {
	if as == nil || len(as.attrs) == 0 {
		return nil
	}
	return append([]Attribute(nil), as.attrs...)
}

// XMLNS returns the xmlns declarations.
func (as *Attributes) XMLNS() []Attribute {
	if as == nil {
		return nil
	}
	return append([]Attribute(nil), as.xmlns...)
}

func (as *Attributes) Value(name string) (string, bool) {
	if as == nil {
		return "", false
	}
	for _, attr := range as.attrs {
		if attr.Name == name {
			return attr.Value, true
		}
	}
	return "", false
}

func (as *Attributes) Contains(name string) bool {
	_, ok := as.Value(name)
	return ok
}

// ID returns the first id attribute value.
func (as *Attributes) ID() (string, bool) {
	if as == nil {
		return "", false
	}
	return as.id, as.hasID
}

// Clone returns a deep copy. The tree builder clones attributes for every
// element it may have to recreate, so sinks may keep the originals.
func (as *Attributes) Clone() *Attributes {
	clone := &Attributes{}
	if as == nil {
		return clone
	}
	clone.attrs = append(clone.attrs, as.attrs...)
	clone.xmlns = append(clone.xmlns, as.xmlns...)
	clone.id, clone.hasID = as.id, as.hasID
	return clone
}

// Equal reports whether both lists hold the same names with the same
// values, ignoring order. Used by the Noah's Ark clause.
func (as *Attributes) Equal(other *Attributes) bool {
	if as.Len() != other.Len() {
		return false
	}
	for i := 0; i < as.Len(); i++ {
		attr := as.attrs[i]
		v, ok := other.Value(attr.Name)
		if !ok || v != attr.Value {
			return false
		}
	}
	return true
}

// Missing returns the attributes for which existing reports false. Sinks use
// it to merge the attributes of a stray <html> start tag.
func (as *Attributes) Missing(existing func(name string) bool) []Attribute {
	var out []Attribute
	for i := 0; i < as.Len(); i++ {
		if !existing(as.attrs[i].Name) {
			out = append(out, as.attrs[i])
		}
	}
	return out
}

// rename replaces the name of the i-th attribute.
func (as *Attributes) rename(i int, name string) {
	as.attrs[i].Name = name
}

// dropXMLNS removes xmlns declarations from the ordinary set.
func (as *Attributes) dropXMLNS() {
	kept := as.attrs[:0]
	for _, attr := range as.attrs {
		if !isXMLNS(attr.Name) {
			kept = append(kept, attr)
		}
	}
	as.attrs = kept
}
