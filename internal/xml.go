package internal

import (
	"bytes"
	"encoding/xml"
)

// RawXMLValue is a captured XML subtree made of raw tokens, as returned by
// xml.Decoder.RawToken: names keep their original prefix in Name.Space. It
// can be rendered back to standalone XML text.
type RawXMLValue struct {
	tok      xml.Token // guaranteed not to be xml.EndElement
	children []*RawXMLValue
}

// NewRawXMLElement creates a new element node.
func NewRawXMLElement(start xml.StartElement) *RawXMLValue {
	return &RawXMLValue{tok: start.Copy()}
}

// AppendToken appends a leaf token (character data, comment, processing
// instruction or directive).
func (val *RawXMLValue) AppendToken(tok xml.Token) {
	if _, ok := tok.(xml.EndElement); ok {
		panic("unexpected end element")
	}
	val.children = append(val.children, &RawXMLValue{tok: xml.CopyToken(tok)})
}

// AppendChild appends a child element.
func (val *RawXMLValue) AppendChild(child *RawXMLValue) {
	val.children = append(val.children, child)
}

// Children returns the child nodes.
func (val *RawXMLValue) Children() []*RawXMLValue {
	return val.children
}

// XMLName returns the raw name of the element, if the value is an element.
func (val *RawXMLValue) XMLName() (name xml.Name, ok bool) {
	if start, ok := val.tok.(xml.StartElement); ok {
		return start.Name, true
	}
	return xml.Name{}, false
}

// Declare adds a namespace declaration to the element, unless the prefix is
// already declared on it.
func (val *RawXMLValue) Declare(prefix, uri string) {
	start, ok := val.tok.(xml.StartElement)
	if !ok {
		return
	}
	decl := xmlnsName(prefix)
	for _, attr := range start.Attr {
		if attr.Name == decl {
			return
		}
	}
	start.Attr = append(start.Attr, xml.Attr{Name: decl, Value: uri})
	val.tok = start
}

func (val *RawXMLValue) declarations() []xml.Attr {
	start, ok := val.tok.(xml.StartElement)
	if !ok {
		return nil
	}
	var l []xml.Attr
	for _, attr := range start.Attr {
		if attr.Name.Space == "xmlns" || (attr.Name.Space == "" && attr.Name.Local == "xmlns") {
			l = append(l, attr)
		}
	}
	return l
}

func xmlnsName(prefix string) xml.Name {
	if prefix == "" {
		return xml.Name{Local: "xmlns"}
	}
	return xml.Name{Space: "xmlns", Local: prefix}
}

// flatten turns a raw prefixed name into a plain name, so that xml.Encoder
// writes it as-is instead of generating namespace declarations.
func flatten(name xml.Name) xml.Name {
	if name.Space == "" {
		return name
	}
	return xml.Name{Local: name.Space + ":" + name.Local}
}

func (val *RawXMLValue) encode(e *xml.Encoder) error {
	switch tok := val.tok.(type) {
	case xml.StartElement:
		start := xml.StartElement{Name: flatten(tok.Name)}
		for _, attr := range tok.Attr {
			start.Attr = append(start.Attr, xml.Attr{Name: flatten(attr.Name), Value: attr.Value})
		}
		if err := e.EncodeToken(start); err != nil {
			return err
		}
		for _, child := range val.children {
			if err := child.encode(e); err != nil {
				return err
			}
		}
		return e.EncodeToken(start.End())
	case xml.EndElement:
		panic("unexpected end element")
	default:
		return e.EncodeToken(tok)
	}
}

// OuterXML renders the value, including its own tags.
func (val *RawXMLValue) OuterXML() (string, error) {
	var buf bytes.Buffer
	enc := xml.NewEncoder(&buf)
	if err := val.encode(enc); err != nil {
		return "", err
	}
	if err := enc.Flush(); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// InnerXML renders the children of the value. Namespace declarations of the
// value are copied onto top-level child elements, so that each of them stays
// parseable on its own.
func (val *RawXMLValue) InnerXML() (string, error) {
	decls := val.declarations()

	var buf bytes.Buffer
	enc := xml.NewEncoder(&buf)
	for _, child := range val.children {
		if _, ok := child.tok.(xml.StartElement); ok && len(decls) > 0 {
			clone := *child
			clone.tok = child.tok.(xml.StartElement).Copy()
			for _, decl := range decls {
				prefix := decl.Name.Local
				if decl.Name.Space == "" {
					prefix = ""
				}
				clone.Declare(prefix, decl.Value)
			}
			child = &clone
		}
		if err := child.encode(enc); err != nil {
			return "", err
		}
	}
	if err := enc.Flush(); err != nil {
		return "", err
	}
	return buf.String(), nil
}
