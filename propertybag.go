package ews

// PropertyBag stores the property values of one service object, keyed by
// property definition, and tracks which properties changed.
//
// The bag doesn't validate values; objects validate themselves before being
// serialized.
type PropertyBag struct {
	owner    ServiceObject
	values   map[*PropertyDefinition]interface{}
	loaded   map[*PropertyDefinition]bool
	dirty    []*PropertyDefinition
	dirtySet map[*PropertyDefinition]bool
}

// NewPropertyBag creates an empty property bag owned by an object. The owner
// may be nil.
func NewPropertyBag(owner ServiceObject) *PropertyBag {
	return &PropertyBag{
		owner:    owner,
		values:   make(map[*PropertyDefinition]interface{}),
		loaded:   make(map[*PropertyDefinition]bool),
		dirtySet: make(map[*PropertyDefinition]bool),
	}
}

// Get returns the value of a property.
func (b *PropertyBag) Get(def *PropertyDefinition) (interface{}, bool) {
	v, ok := b.values[def]
	return v, ok
}

// Value returns the value of a property. If the bag doesn't hold a value and
// the property has the AutoInstantiateOnRead flag, an empty value is created
// and stored.
func (b *PropertyBag) Value(def *PropertyDefinition) interface{} {
	if v, ok := b.values[def]; ok {
		return v
	}
	if !def.flags.has(AutoInstantiateOnRead) {
		return nil
	}
	v := def.handler.newValue()
	if v == nil {
		return nil
	}
	if owned, ok := v.(ownedProperty); ok && b.owner != nil {
		owned.setOwner(b.owner)
	}
	b.values[def] = v
	return v
}

// Set sets the value of a property and marks it as changed. A nil value
// deletes the property.
func (b *PropertyBag) Set(def *PropertyDefinition, v interface{}) {
	if v == nil {
		delete(b.values, def)
	} else {
		b.values[def] = v
	}
	b.loaded[def] = true
	b.markDirty(def)
}

// Changed marks a property as changed, e.g. after a collection value has
// been modified in place.
func (b *PropertyBag) Changed(def *PropertyDefinition) {
	b.markDirty(def)
}

func (b *PropertyBag) markDirty(def *PropertyDefinition) {
	if b.dirtySet[def] {
		return
	}
	b.dirtySet[def] = true
	b.dirty = append(b.dirty, def)
}

// Contains reports whether the bag holds a value for a property.
func (b *PropertyBag) Contains(def *PropertyDefinition) bool {
	_, ok := b.values[def]
	return ok
}

// IsLoaded reports whether a property has been loaded from the server or
// set, even if the server returned no value for it.
func (b *PropertyBag) IsLoaded(def *PropertyDefinition) bool {
	return b.loaded[def] || b.Contains(def)
}

// DirtyDefinitions returns the properties changed since the last call to
// ClearChanges, in the order they were first changed.
func (b *PropertyBag) DirtyDefinitions() []*PropertyDefinition {
	l := make([]*PropertyDefinition, len(b.dirty))
	copy(l, b.dirty)
	return l
}

// IsDirty reports whether any property changed.
func (b *PropertyBag) IsDirty() bool {
	return len(b.dirty) > 0
}

// ClearChanges forgets the changes, typically after a successful create or
// update round-trip.
func (b *PropertyBag) ClearChanges() {
	b.dirty = nil
	b.dirtySet = make(map[*PropertyDefinition]bool)
}

// Clear removes all values and changes.
func (b *PropertyBag) Clear() {
	b.values = make(map[*PropertyDefinition]interface{})
	b.loaded = make(map[*PropertyDefinition]bool)
	b.ClearChanges()
}

// load stores a value read from the server under a definition and all the
// definitions associated with it.
func (b *PropertyBag) load(def *PropertyDefinition, v interface{}) {
	b.values[def] = v
	b.loaded[def] = true

	related := def.associated
	if def.primary != nil {
		related = append([]*PropertyDefinition{def.primary}, def.primary.associated...)
	}
	for _, other := range related {
		if other == def {
			continue
		}
		b.values[other] = v
		b.loaded[other] = true
	}
}

func (b *PropertyBag) markLoaded(defs []*PropertyDefinition) {
	for _, def := range defs {
		b.loaded[def] = true
	}
}

// WriteToXML writes the properties which can be set when creating an
// object, in schema order.
func (b *PropertyBag) WriteToXML(w *Writer, schema *Schema) error {
	for _, def := range schema.Definitions() {
		if def.primary != nil {
			// written through the primary definition
			continue
		}
		if !def.HasFlag(CanSet, w.Version()) || !b.Contains(def) {
			continue
		}
		if err := def.WriteValue(w, b, false); err != nil {
			return err
		}
	}
	return nil
}

// UpdateNames are the element names used to express updates of an object.
type UpdateNames struct {
	// Object is the element name of the object, e.g. "Message".
	Object string
	// Set and Delete are the names of the set and delete field elements,
	// e.g. "SetItemField" and "DeleteItemField".
	Set, Delete string
}

type emptiable interface {
	IsEmpty() bool
}

// WriteUpdatesToXML writes the changed properties as a list of field
// updates.
func (b *PropertyBag) WriteUpdatesToXML(w *Writer, names UpdateNames) error {
	version := w.Version()
	for _, def := range b.dirty {
		target := def.writeTarget(version)
		if target == nil {
			return newError(ErrKindInvalidValue, def.name, "property not supported by %v", version)
		}

		v, ok := b.values[def]
		if ok && target.HasFlag(UpdateCollectionItems, version) {
			if e, isEmptiable := v.(emptiable); isEmptiable && e.IsEmpty() {
				ok = false
			}
		}

		if !ok {
			if !target.HasFlag(CanDelete, version) {
				return newError(ErrKindInvalidValue, def.name, "property cannot be deleted")
			}
			if err := w.WriteStartElement(NamespaceTypes, names.Delete); err != nil {
				return err
			}
			if err := writeFieldURI(w, target); err != nil {
				return err
			}
			if err := w.WriteEndElement(); err != nil {
				return err
			}
			continue
		}

		if !target.HasFlag(CanUpdate, version) {
			return newError(ErrKindInvalidValue, def.name, "property cannot be updated")
		}
		if err := w.WriteStartElement(NamespaceTypes, names.Set); err != nil {
			return err
		}
		if err := writeFieldURI(w, target); err != nil {
			return err
		}
		if err := w.WriteStartElement(NamespaceTypes, names.Object); err != nil {
			return err
		}
		if err := def.WriteValue(w, b, true); err != nil {
			return err
		}
		if err := w.WriteEndElement(); err != nil {
			return err
		}
		if err := w.WriteEndElement(); err != nil {
			return err
		}
	}
	return nil
}

func writeFieldURI(w *Writer, def *PropertyDefinition) error {
	if def.uri == "" {
		return newError(ErrKindInvalidValue, def.name, "internal property cannot be referenced")
	}
	if err := w.WriteStartElement(NamespaceTypes, "FieldURI"); err != nil {
		return err
	}
	if err := w.WriteAttributeValue("FieldURI", def.uri); err != nil {
		return err
	}
	return w.WriteEndElement()
}

func bagValue[T any](b *PropertyBag, def *PropertyDefinition) T {
	v, _ := b.Value(def).(T)
	return v
}
