package ews

import (
	"encoding/xml"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/emersion/go-ews/internal"
)

// NodeKind is the kind of the node a Reader is positioned on.
type NodeKind int

const (
	NodeStartDocument NodeKind = iota
	NodeStartElement
	NodeEndElement
	NodeCharData
	NodeEndDocument
	// comments, processing instructions and directives
	nodeIgnorable
)

func (k NodeKind) String() string {
	switch k {
	case NodeStartDocument:
		return "start of document"
	case NodeStartElement:
		return "start element"
	case NodeEndElement:
		return "end element"
	case NodeCharData:
		return "character data"
	case NodeEndDocument:
		return "end of document"
	}
	return "ignorable node"
}

const xmlNamespaceURI = "http://www.w3.org/XML/1998/namespace"

// Attr is an attribute of a start element.
type Attr struct {
	Name  QName
	Value string
}

type nsScope struct {
	parent   *nsScope
	prefixes map[string]string
}

func (s *nsScope) lookup(prefix string) (string, bool) {
	if prefix == "xml" {
		return xmlNamespaceURI, true
	}
	for ; s != nil; s = s.parent {
		if uri, ok := s.prefixes[prefix]; ok {
			return uri, true
		}
	}
	return "", false
}

func (s *nsScope) bindings() map[string]string {
	m := make(map[string]string)
	for ; s != nil; s = s.parent {
		for prefix, uri := range s.prefixes {
			if _, ok := m[prefix]; !ok {
				m[prefix] = uri
			}
		}
	}
	return m
}

type node struct {
	kind  NodeKind
	name  QName
	attrs []Attr
	text  string
	raw   xml.Token
	scope *nsScope // scope of a start element, including its own declarations
}

func (n *node) significant() bool {
	switch n.kind {
	case nodeIgnorable:
		return false
	case NodeCharData:
		return !isWhitespace(n.text)
	}
	return true
}

func (n *node) describe() string {
	switch n.kind {
	case NodeStartElement, NodeEndElement:
		return fmt.Sprintf("%v %v", n.kind, n.name)
	}
	return n.kind.String()
}

func isWhitespace(s string) bool {
	return strings.TrimLeft(s, " \t\r\n") == ""
}

// Reader is a forward-only, namespace-aware cursor over an XML document.
//
// A Reader is not safe for concurrent use.
type Reader struct {
	dec      *xml.Decoder
	scope    *nsScope
	open     []QName
	scopes   []*nsScope
	rootSeen bool
	ended    bool

	cur   node
	prev  NodeKind
	queue []node // nodes pulled ahead of the cursor
}

// NewReader creates a new cursor over an XML document. The reader is
// positioned on NodeStartDocument.
func NewReader(r io.Reader) *Reader {
	return &Reader{
		dec: xml.NewDecoder(r),
		cur: node{kind: NodeStartDocument},
	}
}

func (r *Reader) resolve(name xml.Name, element bool) QName {
	if name.Space == "" && !element {
		return QName{Local: name.Local}
	}
	uri, _ := r.scope.lookup(name.Space)
	return QName{Local: name.Local, Space: uri, Prefix: name.Space}
}

// pull reads the next node from the decoder.
func (r *Reader) pull() (node, error) {
	if r.ended {
		return node{}, &Error{Kind: ErrKindUnexpectedEndOfDocument}
	}

	tok, err := r.dec.RawToken()
	if err == io.EOF {
		if len(r.open) > 0 || !r.rootSeen {
			return node{}, &Error{Kind: ErrKindUnexpectedEndOfDocument}
		}
		r.ended = true
		return node{kind: NodeEndDocument}, nil
	} else if err != nil {
		return node{}, &Error{Kind: ErrKindReadError, Err: err}
	}
	tok = xml.CopyToken(tok)

	switch tok := tok.(type) {
	case xml.StartElement:
		var prefixes map[string]string
		for _, attr := range tok.Attr {
			var prefix string
			if attr.Name.Space == "xmlns" {
				prefix = attr.Name.Local
			} else if attr.Name.Space == "" && attr.Name.Local == "xmlns" {
				prefix = ""
			} else {
				continue
			}
			if prefixes == nil {
				prefixes = make(map[string]string)
			}
			prefixes[prefix] = attr.Value
		}

		r.scopes = append(r.scopes, r.scope)
		if prefixes != nil {
			r.scope = &nsScope{parent: r.scope, prefixes: prefixes}
		}

		n := node{
			kind:  NodeStartElement,
			name:  r.resolve(tok.Name, true),
			raw:   tok,
			scope: r.scope,
		}
		for _, attr := range tok.Attr {
			if attr.Name.Space == "xmlns" || (attr.Name.Space == "" && attr.Name.Local == "xmlns") {
				continue
			}
			n.attrs = append(n.attrs, Attr{Name: r.resolve(attr.Name, false), Value: attr.Value})
		}

		r.open = append(r.open, n.name)
		r.rootSeen = true
		return n, nil
	case xml.EndElement:
		if len(r.open) == 0 {
			return node{}, newError(ErrKindReadError, tok.Name.Local, "unexpected end element")
		}
		top := r.open[len(r.open)-1]
		if top.Local != tok.Name.Local || top.Prefix != tok.Name.Space {
			return node{}, &Error{
				Kind:     ErrKindReadError,
				Expected: "end element " + top.String(),
				Actual:   "end element " + flatName(tok.Name),
				Message:  "mismatched end element",
			}
		}
		r.open = r.open[:len(r.open)-1]
		r.scope = r.scopes[len(r.scopes)-1]
		r.scopes = r.scopes[:len(r.scopes)-1]
		return node{kind: NodeEndElement, name: top, raw: tok}, nil
	case xml.CharData:
		if len(r.open) == 0 {
			return node{kind: nodeIgnorable, raw: tok}, nil
		}
		return node{kind: NodeCharData, text: string(tok), raw: tok}, nil
	default:
		return node{kind: nodeIgnorable, raw: tok}, nil
	}
}

func flatName(name xml.Name) string {
	if name.Space != "" {
		return name.Space + ":" + name.Local
	}
	return name.Local
}

func (r *Reader) nextRaw() (node, error) {
	if len(r.queue) > 0 {
		n := r.queue[0]
		r.queue = r.queue[1:]
		return n, nil
	}
	return r.pull()
}

// peek returns the next significant node without consuming it.
func (r *Reader) peek() (*node, error) {
	for i := 0; ; i++ {
		if i == len(r.queue) {
			n, err := r.pull()
			if err != nil {
				return nil, err
			}
			r.queue = append(r.queue, n)
		}
		if r.queue[i].significant() {
			return &r.queue[i], nil
		}
	}
}

func (r *Reader) setCurrent(n node) {
	r.prev = r.cur.kind
	r.cur = n
}

// Read advances the cursor to the next significant node. Comments,
// processing instructions and whitespace-only text are skipped.
func (r *Reader) Read() error {
	for {
		n, err := r.nextRaw()
		if err != nil {
			return err
		}
		if n.significant() {
			r.setCurrent(n)
			return nil
		}
	}
}

// NodeKind returns the kind of the current node.
func (r *Reader) NodeKind() NodeKind {
	return r.cur.kind
}

// PrevNodeKind returns the kind of the node the cursor was positioned on
// before the current one.
func (r *Reader) PrevNodeKind() NodeKind {
	return r.prev
}

// Name returns the qualified name of the current element.
func (r *Reader) Name() QName {
	return r.cur.name
}

// LocalName returns the local name of the current element.
func (r *Reader) LocalName() string {
	return r.cur.name.Local
}

// Text returns the text of the current character data node.
func (r *Reader) Text() string {
	return r.cur.text
}

// Attrs returns the attributes of the current start element.
func (r *Reader) Attrs() []Attr {
	return r.cur.attrs
}

// IsStartElement reports whether the cursor is on a start element with the
// provided name.
func (r *Reader) IsStartElement(ns Namespace, local string) bool {
	return r.cur.kind == NodeStartElement && r.cur.name.Match(ns.Name(local))
}

// IsEndElement reports whether the cursor is on an end element with the
// provided name.
func (r *Reader) IsEndElement(ns Namespace, local string) bool {
	return r.cur.kind == NodeEndElement && r.cur.name.Match(ns.Name(local))
}

func (r *Reader) expect(kind NodeKind, ns Namespace, local string) error {
	if r.cur.kind == kind && r.cur.name.Match(ns.Name(local)) {
		return nil
	}
	return &Error{
		Kind:     ErrKindSchemaMismatch,
		Expected: fmt.Sprintf("%v %v", kind, ns.Name(local)),
		Actual:   r.cur.describe(),
		Name:     local,
	}
}

// ReadStartElement advances the cursor and checks that it is positioned on
// the provided start element.
func (r *Reader) ReadStartElement(ns Namespace, local string) error {
	if err := r.Read(); err != nil {
		return err
	}
	return r.expect(NodeStartElement, ns, local)
}

// ReadEndElement advances the cursor and checks that it is positioned on the
// provided end element.
func (r *Reader) ReadEndElement(ns Namespace, local string) error {
	if err := r.Read(); err != nil {
		return err
	}
	return r.expect(NodeEndElement, ns, local)
}

// ReadEndElementIfNecessary is like ReadEndElement, but doesn't advance when
// the cursor is already on the end element.
func (r *Reader) ReadEndElementIfNecessary(ns Namespace, local string) error {
	if r.IsEndElement(ns, local) {
		return nil
	}
	return r.ReadEndElement(ns, local)
}

// IsEmptyElement reports whether the cursor is on a start element
// immediately followed by its end element. It doesn't move the cursor.
func (r *Reader) IsEmptyElement() (bool, error) {
	if r.cur.kind != NodeStartElement {
		return false, nil
	}
	next, err := r.peek()
	if err != nil {
		return false, err
	}
	return next.kind == NodeEndElement && next.name == r.cur.name, nil
}

// ReadValue reads the text content of the current start element and leaves
// the cursor on its end element. Text fragments are concatenated.
// Whitespace-only fragments before the first or after the last significant
// fragment are dropped unless preserveWhitespace is set.
func (r *Reader) ReadValue(preserveWhitespace bool) (string, error) {
	if r.cur.kind != NodeStartElement {
		return "", &Error{
			Kind:     ErrKindReadError,
			Expected: NodeStartElement.String(),
			Actual:   r.cur.describe(),
		}
	}
	parent := r.cur.name

	var sb strings.Builder
	var pending string
	for {
		n, err := r.nextRaw()
		if err != nil {
			return "", err
		}
		switch n.kind {
		case NodeCharData:
			if preserveWhitespace || !isWhitespace(n.text) {
				sb.WriteString(pending)
				sb.WriteString(n.text)
				pending = ""
			} else if sb.Len() > 0 {
				pending += n.text
			}
		case NodeEndElement:
			r.setCurrent(n)
			return sb.String(), nil
		case NodeStartElement:
			r.setCurrent(n)
			return "", &Error{
				Kind:    ErrKindReadError,
				Name:    parent.Local,
				Message: fmt.Sprintf("unexpected element %v in text content", n.name),
			}
		}
	}
}

// ReadElementValue reads the text content of an element. If the cursor isn't
// already on the start element, it is advanced to it first.
func (r *Reader) ReadElementValue(ns Namespace, local string) (string, error) {
	if !r.IsStartElement(ns, local) {
		if err := r.ReadStartElement(ns, local); err != nil {
			return "", err
		}
	}
	return r.ReadValue(false)
}

// ReadElementValueAs is like Reader.ReadElementValue, but decodes the value.
func ReadElementValueAs[T any](r *Reader, ns Namespace, local string) (T, error) {
	var zero T
	s, err := r.ReadElementValue(ns, local)
	if err != nil {
		return zero, err
	}
	v, err := ParseValue[T](s)
	if err != nil {
		return zero, invalidValue(local, err)
	}
	return v, nil
}

// ReadAttributeValue returns the value of an unqualified attribute of the
// current start element.
func (r *Reader) ReadAttributeValue(name string) (string, bool) {
	for _, attr := range r.cur.attrs {
		if attr.Name.Local == name && attr.Name.Prefix == "" {
			return attr.Value, true
		}
	}
	return "", false
}

// ReadAttributeValueAs is like Reader.ReadAttributeValue, but decodes the
// value.
func ReadAttributeValueAs[T any](r *Reader, name string) (v T, ok bool, err error) {
	s, ok := r.ReadAttributeValue(name)
	if !ok {
		return v, false, nil
	}
	v, err = ParseValue[T](s)
	if err != nil {
		return v, true, invalidValue(name, err)
	}
	return v, true, nil
}

// ReadToDescendant advances the cursor until it reaches the provided start
// element.
func (r *Reader) ReadToDescendant(ns Namespace, local string) error {
	for !r.IsStartElement(ns, local) {
		if err := r.Read(); err != nil {
			return err
		}
		if r.cur.kind == NodeEndDocument {
			return &Error{Kind: ErrKindUnexpectedEndOfDocument, Name: local}
		}
	}
	return nil
}

// SkipCurrentElement skips the subtree of the current start element and
// leaves the cursor on its end element.
func (r *Reader) SkipCurrentElement() error {
	if r.cur.kind != NodeStartElement {
		return nil
	}
	depth := 0
	for {
		n, err := r.nextRaw()
		if err != nil {
			return err
		}
		switch n.kind {
		case NodeStartElement:
			depth++
		case NodeEndElement:
			if depth == 0 {
				r.setCurrent(n)
				return nil
			}
			depth--
		}
	}
}

// SkipElement skips content until the cursor reaches the provided end
// element. It does nothing if the cursor is already there.
func (r *Reader) SkipElement(ns Namespace, local string) error {
	if r.IsEndElement(ns, local) {
		return nil
	}
	if r.IsStartElement(ns, local) {
		return r.SkipCurrentElement()
	}
	for {
		if err := r.Read(); err != nil {
			return err
		}
		if r.IsEndElement(ns, local) {
			return nil
		}
	}
}

// captureSubtree consumes the subtree of the current start element. Nesting
// is tracked by balancing start and end elements bearing the same name as the
// captured element.
func (r *Reader) captureSubtree() (*internal.RawXMLValue, error) {
	if r.cur.kind != NodeStartElement {
		return nil, &Error{
			Kind:     ErrKindReadError,
			Expected: NodeStartElement.String(),
			Actual:   r.cur.describe(),
		}
	}
	name := r.cur.name

	root := internal.NewRawXMLElement(r.cur.raw.(xml.StartElement))
	bindings := r.cur.scope.bindings()
	prefixes := make([]string, 0, len(bindings))
	for prefix := range bindings {
		prefixes = append(prefixes, prefix)
	}
	sort.Strings(prefixes)
	for _, prefix := range prefixes {
		root.Declare(prefix, bindings[prefix])
	}

	stack := []*internal.RawXMLValue{root}
	balance := 1
	for {
		n, err := r.nextRaw()
		if err != nil {
			return nil, err
		}
		top := stack[len(stack)-1]
		switch n.kind {
		case NodeStartElement:
			if n.name == name {
				balance++
			}
			child := internal.NewRawXMLElement(n.raw.(xml.StartElement))
			top.AppendChild(child)
			stack = append(stack, child)
		case NodeEndElement:
			if n.name == name {
				balance--
			}
			if balance == 0 {
				r.setCurrent(n)
				return root, nil
			}
			stack = stack[:len(stack)-1]
		case NodeEndDocument:
			return nil, &Error{Kind: ErrKindUnexpectedEndOfDocument, Name: name.Local}
		default:
			top.AppendToken(n.raw)
		}
	}
}

// ReadOuterXML returns the current element, tags included, as a standalone
// XML fragment. The cursor is left on the element's end element.
func (r *Reader) ReadOuterXML() (string, error) {
	val, err := r.captureSubtree()
	if err != nil {
		return "", err
	}
	s, err := val.OuterXML()
	if err != nil {
		return "", &Error{Kind: ErrKindReadError, Err: err}
	}
	return s, nil
}

// ReadInnerXML returns the content of the current element. The cursor is
// left on the element's end element.
func (r *Reader) ReadInnerXML() (string, error) {
	val, err := r.captureSubtree()
	if err != nil {
		return "", err
	}
	s, err := val.InnerXML()
	if err != nil {
		return "", &Error{Kind: ErrKindReadError, Err: err}
	}
	return s, nil
}
