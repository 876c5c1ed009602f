package ews

// ReadServiceObjects reads the service objects held by a container element.
// The reader must be on the container's start element, or right before it.
//
// Each child element is handed to create. Elements create doesn't recognize
// are skipped. The reader is left on the container's end element.
func ReadServiceObjects[T ServiceObject](r *Reader, ns Namespace, container string, create func(name string) (T, bool), opts LoadOptions) ([]T, error) {
	if !r.IsStartElement(ns, container) {
		if err := r.ReadStartElement(ns, container); err != nil {
			return nil, err
		}
	}

	l := []T{}
	empty, err := r.IsEmptyElement()
	if err != nil {
		return nil, err
	}
	if empty {
		if err := r.Read(); err != nil {
			return nil, err
		}
		return l, nil
	}

	for {
		if err := r.Read(); err != nil {
			return nil, err
		}
		if r.IsEndElement(ns, container) {
			break
		}
		if r.NodeKind() != NodeStartElement {
			continue
		}

		name := r.LocalName()
		obj, ok := create(name)
		if !ok {
			Logger.Debug().Str("container", container).Str("element", name).Msg("skipping unrecognized object")
			promUnknownObjects.Inc()
			if err := r.SkipCurrentElement(); err != nil {
				return nil, err
			}
			continue
		}
		if obj.XMLElementName() != name {
			return nil, &Error{
				Kind:     ErrKindTypeMismatch,
				Expected: NamespaceTypes.Name(name).String(),
				Actual:   NamespaceTypes.Name(obj.XMLElementName()).String(),
				Message:  "factory created an object of another kind",
			}
		}
		if err := obj.LoadFromXML(r, opts); err != nil {
			return nil, err
		}
		l = append(l, obj)
	}
	return l, nil
}
