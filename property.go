package ews

import (
	"fmt"
	"reflect"
	"strings"
)

// PropertyFlags are capability flags of a property definition.
type PropertyFlags uint

const (
	// CanSet indicates the property can be set when creating an object.
	CanSet PropertyFlags = 1 << iota
	// CanUpdate indicates the property can be updated.
	CanUpdate
	// CanDelete indicates the property can be deleted.
	CanDelete
	// CanFind indicates the property is returned by find operations.
	CanFind
	// MustBeExplicitlyLoaded indicates the property isn't a first-class
	// property and needs to be requested explicitly.
	MustBeExplicitlyLoaded
	// AutoInstantiateOnRead indicates an empty value is created when the
	// property is read from an object which doesn't have it.
	AutoInstantiateOnRead
	// ReuseInstance indicates an existing value is loaded in place instead of
	// being replaced.
	ReuseInstance
	// UpdateCollectionItems indicates an empty collection is deleted instead
	// of being set when updating.
	UpdateCollectionItems
)

var propertyFlagNames = []string{
	"CanSet",
	"CanUpdate",
	"CanDelete",
	"CanFind",
	"MustBeExplicitlyLoaded",
	"AutoInstantiateOnRead",
	"ReuseInstance",
	"UpdateCollectionItems",
}

func (f PropertyFlags) String() string {
	var l []string
	for i, name := range propertyFlagNames {
		if f&(1<<uint(i)) != 0 {
			l = append(l, name)
		}
	}
	return strings.Join(l, "|")
}

// ComplexProperty is implemented by structured property values.
//
// LoadFromXML is called with the reader positioned on the value's start
// element and must leave it on the matching end element.
type ComplexProperty interface {
	LoadFromXML(r *Reader, local string) error
	WriteToXML(w *Writer, ns Namespace, local string) error
}

type ownedProperty interface {
	setOwner(owner ServiceObject)
}

type propertyHandler interface {
	valueType() reflect.Type
	newValue() interface{}
	load(r *Reader, def *PropertyDefinition, existing interface{}) (interface{}, error)
	write(w *Writer, def *PropertyDefinition, v interface{}) error
}

type versionFlags struct {
	version Version
	flags   PropertyFlags
}

// PropertyDefinition describes a schema property: its element name, URI,
// capabilities, minimum server version and wire format.
//
// Definitions are created once when the package is initialized and are never
// modified afterwards. Property bags key values by definition identity.
type PropertyDefinition struct {
	name      string
	uri       string
	flags     PropertyFlags
	version   Version
	overrides []versionFlags // newest first

	associated []*PropertyDefinition
	primary    *PropertyDefinition

	handler propertyHandler
}

func newPropertyDefinition(name, uri string, flags PropertyFlags, version Version, h propertyHandler) *PropertyDefinition {
	return &PropertyDefinition{
		name:    name,
		uri:     uri,
		flags:   flags,
		version: version,
		handler: h,
	}
}

// XMLElementName returns the local name of the property element.
func (def *PropertyDefinition) XMLElementName() string {
	return def.name
}

// URI returns the property URI, used in FieldURI elements. Internal
// properties have an empty URI.
func (def *PropertyDefinition) URI() string {
	return def.uri
}

// Version returns the minimum server version supporting the property.
func (def *PropertyDefinition) Version() Version {
	return def.version
}

// Type returns the Go type of the property values.
func (def *PropertyDefinition) Type() reflect.Type {
	return def.handler.valueType()
}

// AssociatedProperties returns the definitions kept in sync with this one.
func (def *PropertyDefinition) AssociatedProperties() []*PropertyDefinition {
	return def.associated
}

// Flags returns the flags of the property for a server version.
func (def *PropertyDefinition) Flags(version Version) PropertyFlags {
	for _, o := range def.overrides {
		if version >= o.version {
			return o.flags
		}
	}
	return def.flags
}

// HasFlag reports whether the property has a flag for a server version.
func (def *PropertyDefinition) HasFlag(flag PropertyFlags, version Version) bool {
	return def.Flags(version)&flag == flag
}

// IsSupported reports whether a server version supports the property.
func (def *PropertyDefinition) IsSupported(version Version) bool {
	return version >= def.version
}

// WithVersionFlags replaces the flags of the property starting at a server
// version. It must only be called while declaring the definition.
func (def *PropertyDefinition) WithVersionFlags(version Version, flags PropertyFlags) *PropertyDefinition {
	i := 0
	for i < len(def.overrides) && def.overrides[i].version > version {
		i++
	}
	def.overrides = append(def.overrides, versionFlags{})
	copy(def.overrides[i+1:], def.overrides[i:])
	def.overrides[i] = versionFlags{version: version, flags: flags}
	return def
}

// WithAssociated declares secondary definitions expressing the same value,
// typically legacy properties used by older server versions. It must only be
// called while declaring the definition.
func (def *PropertyDefinition) WithAssociated(defs ...*PropertyDefinition) *PropertyDefinition {
	for _, assoc := range defs {
		if assoc.handler.valueType() != def.handler.valueType() {
			panic(fmt.Sprintf("ews: associated property %v has type %v, want %v", assoc.name, assoc.handler.valueType(), def.handler.valueType()))
		}
		assoc.primary = def
	}
	def.associated = append(def.associated, defs...)
	return def
}

func (def *PropertyDefinition) String() string {
	if def.uri != "" {
		return def.uri
	}
	return def.name
}

// writeTarget returns the definition to serialize for a server version: the
// definition itself, or the newest associated definition supported by the
// version.
func (def *PropertyDefinition) writeTarget(version Version) *PropertyDefinition {
	if def.IsSupported(version) {
		return def
	}
	var best *PropertyDefinition
	for _, assoc := range def.associated {
		if assoc.IsSupported(version) && (best == nil || assoc.version > best.version) {
			best = assoc
		}
	}
	return best
}

// LoadValue reads the property element and stores its value in the bag,
// along with associated definitions. The reader is left on the element's end
// element.
func (def *PropertyDefinition) LoadValue(r *Reader, bag *PropertyBag) error {
	if !r.IsStartElement(NamespaceTypes, def.name) {
		if err := r.ReadStartElement(NamespaceTypes, def.name); err != nil {
			return err
		}
	}

	existing, _ := bag.Get(def)
	v, err := def.handler.load(r, def, existing)
	if err != nil {
		return err
	}
	if err := r.ReadEndElementIfNecessary(NamespaceTypes, def.name); err != nil {
		return err
	}

	if owned, ok := v.(ownedProperty); ok && bag.owner != nil {
		owned.setOwner(bag.owner)
	}
	bag.load(def, v)
	return nil
}

// WriteValue writes the property value held by the bag. Nothing is written
// if the bag doesn't hold a value. If the writer's version doesn't support
// the definition, an associated definition may be written instead.
func (def *PropertyDefinition) WriteValue(w *Writer, bag *PropertyBag, isUpdate bool) error {
	v, ok := bag.Get(def)
	if !ok || v == nil {
		return nil
	}
	target := def.writeTarget(w.Version())
	if target == nil {
		return nil
	}
	if isUpdate && !target.HasFlag(CanUpdate, w.Version()) {
		return newError(ErrKindInvalidValue, target.name, "property cannot be updated")
	}
	return target.handler.write(w, target, v)
}

// simpleHandler handles properties whose value is the text content of the
// property element.
type simpleHandler[T any] struct{}

func (simpleHandler[T]) valueType() reflect.Type {
	var v T
	return reflect.TypeOf(&v).Elem()
}

func (simpleHandler[T]) newValue() interface{} {
	return nil
}

func (simpleHandler[T]) load(r *Reader, def *PropertyDefinition, existing interface{}) (interface{}, error) {
	s, err := r.ReadValue(false)
	if err != nil {
		return nil, err
	}
	v, err := ParseValue[T](s)
	if err != nil {
		return nil, invalidValue(def.name, err)
	}
	return v, nil
}

func (simpleHandler[T]) write(w *Writer, def *PropertyDefinition, v interface{}) error {
	if _, ok := v.(T); !ok {
		return newError(ErrKindInvalidValue, def.name, "unexpected value type %T", v)
	}
	return w.WriteElementValue(NamespaceTypes, def.name, v)
}

// NewSimpleProperty declares a property whose value is the text content of
// the property element, decoded with the value codecs.
func NewSimpleProperty[T any](name, uri string, flags PropertyFlags, version Version) *PropertyDefinition {
	h := simpleHandler[T]{}
	if !hasCodec(h.valueType()) {
		panic(fmt.Sprintf("ews: no codec for property %v of type %v", name, h.valueType()))
	}
	return newPropertyDefinition(name, uri, flags, version, h)
}

type complexHandler[T ComplexProperty] struct {
	create    func() T
	contained string
}

func (h complexHandler[T]) valueType() reflect.Type {
	var v T
	return reflect.TypeOf(&v).Elem()
}

func (h complexHandler[T]) newValue() interface{} {
	return h.create()
}

func (h complexHandler[T]) load(r *Reader, def *PropertyDefinition, existing interface{}) (interface{}, error) {
	v, ok := existing.(T)
	if !ok || !def.flags.has(ReuseInstance) {
		v = h.create()
	}

	local := def.name
	if h.contained != "" {
		empty, err := r.IsEmptyElement()
		if err != nil {
			return nil, err
		}
		if empty {
			return v, r.Read()
		}
		if err := r.ReadStartElement(NamespaceTypes, h.contained); err != nil {
			return nil, err
		}
		local = h.contained
	}

	if err := v.LoadFromXML(r, local); err != nil {
		return nil, err
	}

	if h.contained != "" {
		if err := r.ReadEndElement(NamespaceTypes, def.name); err != nil {
			return nil, err
		}
	}
	return v, nil
}

func (h complexHandler[T]) write(w *Writer, def *PropertyDefinition, v interface{}) error {
	value, ok := v.(T)
	if !ok {
		return newError(ErrKindInvalidValue, def.name, "unexpected value type %T", v)
	}
	if h.contained == "" {
		return value.WriteToXML(w, NamespaceTypes, def.name)
	}
	if err := w.WriteStartElement(NamespaceTypes, def.name); err != nil {
		return err
	}
	if err := value.WriteToXML(w, NamespaceTypes, h.contained); err != nil {
		return err
	}
	return w.WriteEndElement()
}

func (f PropertyFlags) has(flag PropertyFlags) bool {
	return f&flag == flag
}

// NewComplexProperty declares a property holding a structured value.
func NewComplexProperty[T ComplexProperty](name, uri string, flags PropertyFlags, version Version, create func() T) *PropertyDefinition {
	return newPropertyDefinition(name, uri, flags, version, complexHandler[T]{create: create})
}

// NewContainedProperty declares a property whose structured value is wrapped
// in a single child element, such as <From><Mailbox>...</Mailbox></From>.
func NewContainedProperty[T ComplexProperty](name, contained, uri string, flags PropertyFlags, version Version, create func() T) *PropertyDefinition {
	return newPropertyDefinition(name, uri, flags, version, complexHandler[T]{create: create, contained: contained})
}

type customHandler[T any] struct {
	loadFunc  func(r *Reader, local string) (T, error)
	writeFunc func(w *Writer, local string, v T) error
}

func (customHandler[T]) valueType() reflect.Type {
	var v T
	return reflect.TypeOf(&v).Elem()
}

func (customHandler[T]) newValue() interface{} {
	return nil
}

func (h customHandler[T]) load(r *Reader, def *PropertyDefinition, existing interface{}) (interface{}, error) {
	return h.loadFunc(r, def.name)
}

func (h customHandler[T]) write(w *Writer, def *PropertyDefinition, v interface{}) error {
	value, ok := v.(T)
	if !ok {
		return newError(ErrKindInvalidValue, def.name, "unexpected value type %T", v)
	}
	return h.writeFunc(w, def.name, value)
}

// NewCustomProperty declares a property with a custom wire format.
func NewCustomProperty[T any](name, uri string, flags PropertyFlags, version Version, load func(r *Reader, local string) (T, error), write func(w *Writer, local string, v T) error) *PropertyDefinition {
	return newPropertyDefinition(name, uri, flags, version, customHandler[T]{loadFunc: load, writeFunc: write})
}
