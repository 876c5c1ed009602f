package ews

import (
	"fmt"
	"sync"
)

// Schema is the ordered set of property definitions of one object kind.
type Schema struct {
	name       string
	defs       []*PropertyDefinition
	byName     map[string]*PropertyDefinition
	visible    []*PropertyDefinition
	firstClass []*PropertyDefinition
	summary    []*PropertyDefinition
}

// NewSchema creates a schema. The definitions of the parent schema, if any,
// come first. Two definitions with the same element name are rejected.
func NewSchema(name string, parent *Schema, defs ...*PropertyDefinition) (*Schema, error) {
	s := &Schema{
		name:   name,
		byName: make(map[string]*PropertyDefinition),
	}
	if parent != nil {
		defs = append(append([]*PropertyDefinition(nil), parent.defs...), defs...)
	}
	for _, def := range defs {
		if other, ok := s.byName[def.name]; ok {
			if other == def {
				continue
			}
			return nil, &Error{
				Kind:    ErrKindRegistrationConflict,
				Name:    def.name,
				Message: fmt.Sprintf("schema %v declares element %q twice", name, def.name),
			}
		}
		s.byName[def.name] = def
		s.defs = append(s.defs, def)

		if def.uri != "" {
			s.visible = append(s.visible, def)
		}
		if !def.flags.has(MustBeExplicitlyLoaded) {
			s.firstClass = append(s.firstClass, def)
			if def.flags.has(CanFind) {
				s.summary = append(s.summary, def)
			}
		}
	}
	return s, nil
}

func mustSchema(name string, parent *Schema, defs ...*PropertyDefinition) *Schema {
	s, err := NewSchema(name, parent, defs...)
	if err != nil {
		panic(err)
	}
	return s
}

// Name returns the name of the schema.
func (s *Schema) Name() string {
	return s.name
}

// Definitions returns all property definitions, in schema order.
func (s *Schema) Definitions() []*PropertyDefinition {
	return s.defs
}

// VisibleDefinitions returns the definitions which aren't internal.
func (s *Schema) VisibleDefinitions() []*PropertyDefinition {
	return s.visible
}

// FirstClassDefinitions returns the definitions loaded by default.
func (s *Schema) FirstClassDefinitions() []*PropertyDefinition {
	return s.firstClass
}

// FirstClassSummaryDefinitions returns the first-class definitions returned
// by find operations.
func (s *Schema) FirstClassSummaryDefinitions() []*PropertyDefinition {
	return s.summary
}

// Lookup returns the definition of an element.
func (s *Schema) Lookup(local string) (*PropertyDefinition, bool) {
	def, ok := s.byName[local]
	return def, ok
}

// Contains reports whether the schema holds a definition.
func (s *Schema) Contains(def *PropertyDefinition) bool {
	other, ok := s.byName[def.name]
	return ok && other == def
}

// Registry indexes the property definitions of a set of schemas by URI.
type Registry struct {
	schemas []*Schema
	byURI   map[string]*PropertyDefinition
}

// NewRegistry builds a registry. Two distinct definitions sharing a URI are
// a programming error, reported as ErrKindRegistrationConflict.
func NewRegistry(schemas ...*Schema) (*Registry, error) {
	reg := &Registry{
		schemas: schemas,
		byURI:   make(map[string]*PropertyDefinition),
	}
	for _, s := range schemas {
		for _, def := range s.defs {
			if def.uri == "" {
				continue
			}
			if other, ok := reg.byURI[def.uri]; ok && other != def {
				return nil, &Error{
					Kind:    ErrKindRegistrationConflict,
					Name:    def.name,
					Message: fmt.Sprintf("URI %q is claimed by %v and %v", def.uri, other.name, def.name),
				}
			}
			reg.byURI[def.uri] = def
		}
	}
	return reg, nil
}

// Lookup returns the definition of a property URI.
func (reg *Registry) Lookup(uri string) (*PropertyDefinition, bool) {
	def, ok := reg.byURI[uri]
	return def, ok
}

// Schemas returns the registered schemas.
func (reg *Registry) Schemas() []*Schema {
	return reg.schemas
}

var defaultRegistry struct {
	once sync.Once
	reg  *Registry
}

// DefaultRegistry returns the registry of all built-in schemas. It is built
// on first use and shared afterwards.
func DefaultRegistry() *Registry {
	defaultRegistry.once.Do(func() {
		reg, err := NewRegistry(builtinSchemas()...)
		if err != nil {
			panic(err)
		}
		defaultRegistry.reg = reg
	})
	return defaultRegistry.reg
}

// BasePropertySet is the base shape of a property set.
type BasePropertySet int

const (
	IDOnly BasePropertySet = iota
	FirstClassProperties
)

func (b BasePropertySet) MarshalText() ([]byte, error) {
	switch b {
	case IDOnly:
		return []byte("IdOnly"), nil
	case FirstClassProperties:
		return []byte("AllProperties"), nil
	}
	return nil, fmt.Errorf("ews: invalid BasePropertySet %d", int(b))
}

// PropertySet describes the properties requested from the server.
type PropertySet struct {
	Base       BasePropertySet
	Additional []*PropertyDefinition
}

// NewPropertySet creates a property set.
func NewPropertySet(base BasePropertySet, additional ...*PropertyDefinition) *PropertySet {
	return &PropertySet{Base: base, Additional: additional}
}

// definitions returns the definitions of a schema covered by the set.
func (ps *PropertySet) definitions(s *Schema, summaryOnly bool) []*PropertyDefinition {
	var l []*PropertyDefinition
	if ps.Base == FirstClassProperties {
		if summaryOnly {
			l = append(l, s.summary...)
		} else {
			l = append(l, s.firstClass...)
		}
	}
	for _, def := range ps.Additional {
		if s.Contains(def) {
			l = append(l, def)
		}
	}
	return l
}

// WriteToXML writes the set as a shape element, such as ItemShape.
func (ps *PropertySet) WriteToXML(w *Writer, local string) error {
	if err := w.WriteStartElement(NamespaceMessages, local); err != nil {
		return err
	}
	if err := w.WriteElementValue(NamespaceTypes, "BaseShape", ps.Base); err != nil {
		return err
	}
	if len(ps.Additional) > 0 {
		if err := w.WriteStartElement(NamespaceTypes, "AdditionalProperties"); err != nil {
			return err
		}
		for _, def := range ps.Additional {
			if !def.IsSupported(w.Version()) {
				return newError(ErrKindInvalidValue, def.name, "property not supported by %v", w.Version())
			}
			if err := writeFieldURI(w, def); err != nil {
				return err
			}
		}
		if err := w.WriteEndElement(); err != nil {
			return err
		}
	}
	return w.WriteEndElement()
}
