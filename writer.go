package ews

import (
	"encoding/xml"
	"io"
)

// Writer serializes EWS XML. Elements are written with the conventional
// prefix of their namespace; the declarations of all EWS namespaces are
// emitted on the root element.
//
// A Writer is not safe for concurrent use.
type Writer struct {
	enc     *xml.Encoder
	version Version
	open    []xml.Name
	pending *xml.StartElement
	err     error
}

// NewWriter creates a new writer targeting the provided server version.
func NewWriter(w io.Writer, version Version) *Writer {
	return &Writer{enc: xml.NewEncoder(w), version: version}
}

// Version returns the target server version.
func (w *Writer) Version() Version {
	return w.version
}

func prefixedName(ns Namespace, local string) xml.Name {
	if prefix := ns.Prefix(); prefix != "" {
		return xml.Name{Local: prefix + ":" + local}
	}
	return xml.Name{Local: local}
}

func (w *Writer) flushPending() error {
	if w.err != nil {
		return w.err
	}
	if w.pending == nil {
		return nil
	}
	start := *w.pending
	w.pending = nil
	if err := w.enc.EncodeToken(start); err != nil {
		w.err = &Error{Kind: ErrKindInvalidValue, Name: start.Name.Local, Err: err}
		return w.err
	}
	return nil
}

// WriteStartElement starts a new element. Attributes can be added with
// WriteAttributeValue until content is written.
func (w *Writer) WriteStartElement(ns Namespace, local string) error {
	if err := w.flushPending(); err != nil {
		return err
	}
	start := xml.StartElement{Name: prefixedName(ns, local)}
	if len(w.open) == 0 {
		for _, decl := range []Namespace{NamespaceXMLSchemaInstance, NamespaceSOAP, NamespaceMessages, NamespaceTypes} {
			start.Attr = append(start.Attr, xml.Attr{
				Name:  xml.Name{Local: "xmlns:" + decl.Prefix()},
				Value: decl.URI(),
			})
		}
	}
	w.pending = &start
	w.open = append(w.open, start.Name)
	return nil
}

// WriteAttributeValue adds an attribute to the element being started. Nil
// values are omitted.
func (w *Writer) WriteAttributeValue(name string, value interface{}) error {
	if w.err != nil {
		return w.err
	}
	if w.pending == nil {
		return newError(ErrKindInvalidValue, name, "attribute written outside of a start element")
	}
	if value == nil {
		return nil
	}
	s, err := FormatValue(value)
	if err != nil {
		return invalidValue(name, err)
	}
	w.pending.Attr = append(w.pending.Attr, xml.Attr{Name: xml.Name{Local: name}, Value: s})
	return nil
}

// WriteValue writes text content.
func (w *Writer) WriteValue(s string) error {
	if err := w.flushPending(); err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	if err := w.enc.EncodeToken(xml.CharData(s)); err != nil {
		w.err = &Error{Kind: ErrKindInvalidValue, Err: err}
		return w.err
	}
	return nil
}

// WriteEndElement closes the last started element.
func (w *Writer) WriteEndElement() error {
	if err := w.flushPending(); err != nil {
		return err
	}
	if len(w.open) == 0 {
		return newError(ErrKindInvalidValue, "", "no element to close")
	}
	name := w.open[len(w.open)-1]
	w.open = w.open[:len(w.open)-1]
	if err := w.enc.EncodeToken(xml.EndElement{Name: name}); err != nil {
		w.err = &Error{Kind: ErrKindInvalidValue, Name: name.Local, Err: err}
		return w.err
	}
	return nil
}

// WriteElementValue writes an element with text content. Nil values are
// omitted.
func (w *Writer) WriteElementValue(ns Namespace, local string, value interface{}) error {
	if value == nil {
		return nil
	}
	s, err := FormatValue(value)
	if err != nil {
		return invalidValue(local, err)
	}
	if err := w.WriteStartElement(ns, local); err != nil {
		return err
	}
	if err := w.WriteValue(s); err != nil {
		return err
	}
	return w.WriteEndElement()
}

// Flush writes buffered data to the underlying writer.
func (w *Writer) Flush() error {
	if err := w.flushPending(); err != nil {
		return err
	}
	return w.enc.Flush()
}
