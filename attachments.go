package ews

import (
	"time"
)

// Attachment is a file or item attachment.
type Attachment interface {
	Info() *AttachmentInfo
	LoadFromXML(r *Reader, local string) error
	WriteToXML(w *Writer, ns Namespace, local string) error
}

// AttachmentInfo holds the properties shared by all attachments.
type AttachmentInfo struct {
	ID               string
	Name             string
	ContentType      string
	ContentID        string
	Size             int
	LastModifiedTime time.Time
	IsInline         bool
}

func (info *AttachmentInfo) Info() *AttachmentInfo {
	return info
}

// load reads a property shared by all attachments. It leaves the reader on
// the child start element if the property is unknown.
func (info *AttachmentInfo) load(r *Reader) error {
	switch r.LocalName() {
	case "AttachmentId":
		info.ID, _ = r.ReadAttributeValue("Id")
		return r.SkipCurrentElement()
	case "Name":
		return readString(r, &info.Name)
	case "ContentType":
		return readString(r, &info.ContentType)
	case "ContentId":
		return readString(r, &info.ContentID)
	case "Size":
		return readParsed(r, &info.Size)
	case "LastModifiedTime":
		return readParsed(r, &info.LastModifiedTime)
	case "IsInline":
		return readParsed(r, &info.IsInline)
	}
	return nil
}

func (info *AttachmentInfo) write(w *Writer) error {
	if err := writeString(w, NamespaceTypes, "Name", info.Name); err != nil {
		return err
	}
	if err := writeString(w, NamespaceTypes, "ContentType", info.ContentType); err != nil {
		return err
	}
	if err := writeString(w, NamespaceTypes, "ContentId", info.ContentID); err != nil {
		return err
	}
	if info.IsInline {
		return w.WriteElementValue(NamespaceTypes, "IsInline", true)
	}
	return nil
}

// FileAttachment is a file attached to an item.
type FileAttachment struct {
	AttachmentInfo
	IsContactPhoto bool
	Content        []byte
}

func (a *FileAttachment) LoadFromXML(r *Reader, local string) error {
	return loadChildren(r, NamespaceTypes, local, func(r *Reader) error {
		switch r.LocalName() {
		case "IsContactPhoto":
			return readParsed(r, &a.IsContactPhoto)
		case "Content":
			return readParsed(r, &a.Content)
		}
		return a.AttachmentInfo.load(r)
	})
}

func (a *FileAttachment) WriteToXML(w *Writer, ns Namespace, local string) error {
	if err := w.WriteStartElement(ns, local); err != nil {
		return err
	}
	if err := a.AttachmentInfo.write(w); err != nil {
		return err
	}
	if a.IsContactPhoto {
		if err := w.WriteElementValue(NamespaceTypes, "IsContactPhoto", true); err != nil {
			return err
		}
	}
	if err := w.WriteElementValue(NamespaceTypes, "Content", a.Content); err != nil {
		return err
	}
	return w.WriteEndElement()
}

// ItemAttachment is an item attached to another item.
type ItemAttachment struct {
	AttachmentInfo
	owner *Item
	item  ItemObject
}

// Owner returns the item holding the attachment.
func (a *ItemAttachment) Owner() *Item {
	return a.owner
}

// Item returns the attached item, if it has been loaded.
func (a *ItemAttachment) Item() ItemObject {
	return a.item
}

// SetItem sets the attached item.
func (a *ItemAttachment) SetItem(item ItemObject) {
	item.BaseItem().bindAttachment(a)
	a.item = item
}

func (a *ItemAttachment) LoadFromXML(r *Reader, local string) error {
	return loadChildren(r, NamespaceTypes, local, func(r *Reader) error {
		kind := ResolveKind(r.LocalName())
		if item, ok := kind.NewAttached(a); ok {
			if err := item.LoadFromXML(r, LoadOptions{}); err != nil {
				return err
			}
			a.item = item
			return nil
		}
		return a.AttachmentInfo.load(r)
	})
}

func (a *ItemAttachment) WriteToXML(w *Writer, ns Namespace, local string) error {
	if err := w.WriteStartElement(ns, local); err != nil {
		return err
	}
	if err := a.AttachmentInfo.write(w); err != nil {
		return err
	}
	if a.item != nil {
		if err := a.item.WriteToXML(w); err != nil {
			return err
		}
	}
	return w.WriteEndElement()
}

// AttachmentCollection is the list of attachments of an item.
type AttachmentCollection struct {
	owner *Item
	items []Attachment
}

func (c *AttachmentCollection) setOwner(owner ServiceObject) {
	if item, ok := owner.(ItemObject); ok {
		c.owner = item.BaseItem()
	}
	for _, a := range c.items {
		if ia, ok := a.(*ItemAttachment); ok {
			ia.owner = c.owner
			if ia.item != nil {
				ia.item.BaseItem().bindAttachment(ia)
			}
		}
	}
}

func (c *AttachmentCollection) Items() []Attachment {
	return c.items
}

func (c *AttachmentCollection) Len() int {
	return len(c.items)
}

func (c *AttachmentCollection) IsEmpty() bool {
	return len(c.items) == 0
}

// AddFile adds a file attachment.
func (c *AttachmentCollection) AddFile(name, contentType string, content []byte) *FileAttachment {
	a := &FileAttachment{
		AttachmentInfo: AttachmentInfo{Name: name, ContentType: contentType},
		Content:        content,
	}
	c.items = append(c.items, a)
	return a
}

// AddItem adds an item attachment.
func (c *AttachmentCollection) AddItem(name string, item ItemObject) *ItemAttachment {
	a := &ItemAttachment{
		AttachmentInfo: AttachmentInfo{Name: name},
		owner:          c.owner,
	}
	a.SetItem(item)
	c.items = append(c.items, a)
	return a
}

func (c *AttachmentCollection) LoadFromXML(r *Reader, local string) error {
	c.items = nil
	return loadChildren(r, NamespaceTypes, local, func(r *Reader) error {
		var a Attachment
		switch r.LocalName() {
		case "FileAttachment":
			a = &FileAttachment{}
		case "ItemAttachment":
			a = &ItemAttachment{owner: c.owner}
		default:
			return nil
		}
		if err := a.LoadFromXML(r, r.LocalName()); err != nil {
			return err
		}
		c.items = append(c.items, a)
		return nil
	})
}

func (c *AttachmentCollection) WriteToXML(w *Writer, ns Namespace, local string) error {
	if err := w.WriteStartElement(ns, local); err != nil {
		return err
	}
	for _, a := range c.items {
		name := "FileAttachment"
		if _, ok := a.(*ItemAttachment); ok {
			name = "ItemAttachment"
		}
		if err := a.WriteToXML(w, NamespaceTypes, name); err != nil {
			return err
		}
	}
	return w.WriteEndElement()
}
