package ews

import (
	"time"
)

// loadChildren calls fn for each child element of the current start element,
// then leaves the reader on the element's end element. fn must either
// consume the child up to its end element or leave the reader on the child's
// start element, in which case the child is skipped.
func loadChildren(r *Reader, ns Namespace, local string, fn func(r *Reader) error) error {
	empty, err := r.IsEmptyElement()
	if err != nil {
		return err
	}
	if empty {
		return r.Read()
	}
	for {
		if err := r.Read(); err != nil {
			return err
		}
		if r.IsEndElement(ns, local) {
			return nil
		}
		if r.NodeKind() != NodeStartElement {
			continue
		}
		if err := fn(r); err != nil {
			return err
		}
		if r.NodeKind() == NodeStartElement {
			if err := r.SkipCurrentElement(); err != nil {
				return err
			}
		}
	}
}

func readString(r *Reader, dst *string) error {
	s, err := r.ReadValue(false)
	if err != nil {
		return err
	}
	*dst = s
	return nil
}

func readParsed[T any](r *Reader, dst *T) error {
	name := r.LocalName()
	s, err := r.ReadValue(false)
	if err != nil {
		return err
	}
	v, err := ParseValue[T](s)
	if err != nil {
		return invalidValue(name, err)
	}
	*dst = v
	return nil
}

// writeString writes an element with text content, unless s is empty.
func writeString(w *Writer, ns Namespace, local, s string) error {
	if s == "" {
		return nil
	}
	return w.WriteElementValue(ns, local, s)
}

// ItemID identifies an item.
type ItemID struct {
	ID        string
	ChangeKey string
}

func NewItemID(id string) *ItemID {
	return &ItemID{ID: id}
}

func (id *ItemID) LoadFromXML(r *Reader, local string) error {
	id.ID, _ = r.ReadAttributeValue("Id")
	id.ChangeKey, _ = r.ReadAttributeValue("ChangeKey")
	return r.SkipCurrentElement()
}

func (id *ItemID) WriteToXML(w *Writer, ns Namespace, local string) error {
	if err := w.WriteStartElement(ns, local); err != nil {
		return err
	}
	if err := w.WriteAttributeValue("Id", id.ID); err != nil {
		return err
	}
	if id.ChangeKey != "" {
		if err := w.WriteAttributeValue("ChangeKey", id.ChangeKey); err != nil {
			return err
		}
	}
	return w.WriteEndElement()
}

// Well-known folder names.
const (
	FolderInbox        = "inbox"
	FolderCalendar     = "calendar"
	FolderContacts     = "contacts"
	FolderTasks        = "tasks"
	FolderDrafts       = "drafts"
	FolderSentItems    = "sentitems"
	FolderDeletedItems = "deleteditems"
	FolderRoot         = "msgfolderroot"
)

// FolderID identifies a folder, either by id or by well-known name.
type FolderID struct {
	ID        string
	ChangeKey string
	// Distinguished is a well-known folder name, such as FolderInbox.
	Distinguished string
}

func NewFolderID(id string) *FolderID {
	return &FolderID{ID: id}
}

// NewDistinguishedFolderID references a well-known folder.
func NewDistinguishedFolderID(name string) *FolderID {
	return &FolderID{Distinguished: name}
}

func (id *FolderID) LoadFromXML(r *Reader, local string) error {
	id.ID, _ = r.ReadAttributeValue("Id")
	id.ChangeKey, _ = r.ReadAttributeValue("ChangeKey")
	return r.SkipCurrentElement()
}

func (id *FolderID) WriteToXML(w *Writer, ns Namespace, local string) error {
	if err := w.WriteStartElement(ns, local); err != nil {
		return err
	}
	if err := w.WriteAttributeValue("Id", id.ID); err != nil {
		return err
	}
	if id.ChangeKey != "" {
		if err := w.WriteAttributeValue("ChangeKey", id.ChangeKey); err != nil {
			return err
		}
	}
	return w.WriteEndElement()
}

// writeReference writes the folder as a FolderId or DistinguishedFolderId
// element, as expected in requests.
func (id *FolderID) writeReference(w *Writer) error {
	if id.Distinguished == "" {
		return id.WriteToXML(w, NamespaceTypes, "FolderId")
	}
	if err := w.WriteStartElement(NamespaceTypes, "DistinguishedFolderId"); err != nil {
		return err
	}
	if err := w.WriteAttributeValue("Id", id.Distinguished); err != nil {
		return err
	}
	return w.WriteEndElement()
}

// Body is the body of an item.
type Body struct {
	Type        BodyType
	Content     string
	IsTruncated bool
}

func NewTextBody(content string) *Body {
	return &Body{Type: BodyText, Content: content}
}

func NewHTMLBody(content string) *Body {
	return &Body{Type: BodyHTML, Content: content}
}

func (b *Body) LoadFromXML(r *Reader, local string) error {
	t, _, err := ReadAttributeValueAs[BodyType](r, "BodyType")
	if err != nil {
		return err
	}
	truncated, _, err := ReadAttributeValueAs[bool](r, "IsTruncated")
	if err != nil {
		return err
	}
	content, err := r.ReadValue(true)
	if err != nil {
		return err
	}
	b.Type = t
	b.IsTruncated = truncated
	b.Content = content
	return nil
}

func (b *Body) WriteToXML(w *Writer, ns Namespace, local string) error {
	if err := w.WriteStartElement(ns, local); err != nil {
		return err
	}
	if err := w.WriteAttributeValue("BodyType", b.Type); err != nil {
		return err
	}
	if err := w.WriteValue(b.Content); err != nil {
		return err
	}
	return w.WriteEndElement()
}

// MimeContent is the raw MIME representation of an item.
type MimeContent struct {
	CharacterSet string
	Content      []byte
}

func (mc *MimeContent) LoadFromXML(r *Reader, local string) error {
	mc.CharacterSet, _ = r.ReadAttributeValue("CharacterSet")
	return readParsed(r, &mc.Content)
}

func (mc *MimeContent) WriteToXML(w *Writer, ns Namespace, local string) error {
	if err := w.WriteStartElement(ns, local); err != nil {
		return err
	}
	if mc.CharacterSet != "" {
		if err := w.WriteAttributeValue("CharacterSet", mc.CharacterSet); err != nil {
			return err
		}
	}
	s, err := FormatValue(mc.Content)
	if err != nil {
		return invalidValue(local, err)
	}
	if err := w.WriteValue(s); err != nil {
		return err
	}
	return w.WriteEndElement()
}

// StringList is a list of strings, such as item categories.
type StringList struct {
	items []string
}

func NewStringList(items ...string) *StringList {
	return &StringList{items: append([]string(nil), items...)}
}

func (l *StringList) Items() []string {
	return l.items
}

func (l *StringList) Len() int {
	return len(l.items)
}

func (l *StringList) IsEmpty() bool {
	return len(l.items) == 0
}

func (l *StringList) Add(s string) {
	l.items = append(l.items, s)
}

// Remove removes the first occurrence of s. It returns false if s isn't in
// the list.
func (l *StringList) Remove(s string) bool {
	for i, item := range l.items {
		if item == s {
			l.items = append(l.items[:i], l.items[i+1:]...)
			return true
		}
	}
	return false
}

func (l *StringList) Clear() {
	l.items = nil
}

func (l *StringList) LoadFromXML(r *Reader, local string) error {
	l.items = nil
	return loadChildren(r, NamespaceTypes, local, func(r *Reader) error {
		if !r.IsStartElement(NamespaceTypes, "String") {
			return nil
		}
		var s string
		if err := readString(r, &s); err != nil {
			return err
		}
		l.items = append(l.items, s)
		return nil
	})
}

func (l *StringList) WriteToXML(w *Writer, ns Namespace, local string) error {
	if err := w.WriteStartElement(ns, local); err != nil {
		return err
	}
	for _, s := range l.items {
		if err := w.WriteElementValue(NamespaceTypes, "String", s); err != nil {
			return err
		}
	}
	return w.WriteEndElement()
}

// EmailAddress is a mailbox.
type EmailAddress struct {
	Name        string
	Address     string
	RoutingType string
	MailboxType string
}

func NewEmailAddress(name, address string) *EmailAddress {
	return &EmailAddress{Name: name, Address: address}
}

func (addr *EmailAddress) String() string {
	if addr.Name == "" {
		return addr.Address
	}
	return addr.Name + " <" + addr.Address + ">"
}

func (addr *EmailAddress) LoadFromXML(r *Reader, local string) error {
	return loadChildren(r, NamespaceTypes, local, func(r *Reader) error {
		switch r.LocalName() {
		case "Name":
			return readString(r, &addr.Name)
		case "EmailAddress":
			return readString(r, &addr.Address)
		case "RoutingType":
			return readString(r, &addr.RoutingType)
		case "MailboxType":
			return readString(r, &addr.MailboxType)
		}
		return nil
	})
}

func (addr *EmailAddress) WriteToXML(w *Writer, ns Namespace, local string) error {
	if err := w.WriteStartElement(ns, local); err != nil {
		return err
	}
	if err := writeString(w, NamespaceTypes, "Name", addr.Name); err != nil {
		return err
	}
	if err := writeString(w, NamespaceTypes, "EmailAddress", addr.Address); err != nil {
		return err
	}
	if err := writeString(w, NamespaceTypes, "RoutingType", addr.RoutingType); err != nil {
		return err
	}
	return w.WriteEndElement()
}

// EmailAddressCollection is a list of mailboxes, such as the recipients of a
// message.
type EmailAddressCollection struct {
	items []*EmailAddress
}

func (c *EmailAddressCollection) Items() []*EmailAddress {
	return c.items
}

func (c *EmailAddressCollection) Len() int {
	return len(c.items)
}

func (c *EmailAddressCollection) IsEmpty() bool {
	return len(c.items) == 0
}

func (c *EmailAddressCollection) Add(name, address string) *EmailAddress {
	addr := NewEmailAddress(name, address)
	c.items = append(c.items, addr)
	return addr
}

func (c *EmailAddressCollection) Clear() {
	c.items = nil
}

func (c *EmailAddressCollection) LoadFromXML(r *Reader, local string) error {
	c.items = nil
	return loadChildren(r, NamespaceTypes, local, func(r *Reader) error {
		if !r.IsStartElement(NamespaceTypes, "Mailbox") {
			return nil
		}
		addr := &EmailAddress{}
		if err := addr.LoadFromXML(r, "Mailbox"); err != nil {
			return err
		}
		c.items = append(c.items, addr)
		return nil
	})
}

func (c *EmailAddressCollection) WriteToXML(w *Writer, ns Namespace, local string) error {
	if err := w.WriteStartElement(ns, local); err != nil {
		return err
	}
	for _, addr := range c.items {
		if err := addr.WriteToXML(w, NamespaceTypes, "Mailbox"); err != nil {
			return err
		}
	}
	return w.WriteEndElement()
}

// Attendee is a meeting attendee.
type Attendee struct {
	Mailbox          EmailAddress
	ResponseType     ResponseType
	LastResponseTime time.Time
}

func (a *Attendee) LoadFromXML(r *Reader, local string) error {
	return loadChildren(r, NamespaceTypes, local, func(r *Reader) error {
		switch r.LocalName() {
		case "Mailbox":
			return a.Mailbox.LoadFromXML(r, "Mailbox")
		case "ResponseType":
			return readParsed(r, &a.ResponseType)
		case "LastResponseTime":
			return readParsed(r, &a.LastResponseTime)
		}
		return nil
	})
}

// WriteToXML writes the attendee mailbox. Responses are set by the server.
func (a *Attendee) WriteToXML(w *Writer, ns Namespace, local string) error {
	if err := w.WriteStartElement(ns, local); err != nil {
		return err
	}
	if err := a.Mailbox.WriteToXML(w, NamespaceTypes, "Mailbox"); err != nil {
		return err
	}
	return w.WriteEndElement()
}

// AttendeeCollection is the list of required, optional or resource
// attendees of a meeting.
type AttendeeCollection struct {
	items []*Attendee
}

func (c *AttendeeCollection) Items() []*Attendee {
	return c.items
}

func (c *AttendeeCollection) Len() int {
	return len(c.items)
}

func (c *AttendeeCollection) IsEmpty() bool {
	return len(c.items) == 0
}

func (c *AttendeeCollection) Add(name, address string) *Attendee {
	a := &Attendee{Mailbox: EmailAddress{Name: name, Address: address}}
	c.items = append(c.items, a)
	return a
}

func (c *AttendeeCollection) Clear() {
	c.items = nil
}

func (c *AttendeeCollection) LoadFromXML(r *Reader, local string) error {
	c.items = nil
	return loadChildren(r, NamespaceTypes, local, func(r *Reader) error {
		if !r.IsStartElement(NamespaceTypes, "Attendee") {
			return nil
		}
		a := &Attendee{}
		if err := a.LoadFromXML(r, "Attendee"); err != nil {
			return err
		}
		c.items = append(c.items, a)
		return nil
	})
}

func (c *AttendeeCollection) WriteToXML(w *Writer, ns Namespace, local string) error {
	if err := w.WriteStartElement(ns, local); err != nil {
		return err
	}
	for _, a := range c.items {
		if err := a.WriteToXML(w, NamespaceTypes, "Attendee"); err != nil {
			return err
		}
	}
	return w.WriteEndElement()
}

// CompleteName is the structured name of a contact, computed by the server.
type CompleteName struct {
	Title      string
	FirstName  string
	MiddleName string
	LastName   string
	Suffix     string
	Initials   string
	FullName   string
	Nickname   string
}

func (n *CompleteName) fields() []struct {
	name string
	v    *string
} {
	return []struct {
		name string
		v    *string
	}{
		{"Title", &n.Title},
		{"FirstName", &n.FirstName},
		{"MiddleName", &n.MiddleName},
		{"LastName", &n.LastName},
		{"Suffix", &n.Suffix},
		{"Initials", &n.Initials},
		{"FullName", &n.FullName},
		{"Nickname", &n.Nickname},
	}
}

func (n *CompleteName) LoadFromXML(r *Reader, local string) error {
	fields := n.fields()
	return loadChildren(r, NamespaceTypes, local, func(r *Reader) error {
		for _, f := range fields {
			if r.LocalName() == f.name {
				return readString(r, f.v)
			}
		}
		return nil
	})
}

func (n *CompleteName) WriteToXML(w *Writer, ns Namespace, local string) error {
	if err := w.WriteStartElement(ns, local); err != nil {
		return err
	}
	for _, f := range n.fields() {
		if err := writeString(w, NamespaceTypes, f.name, *f.v); err != nil {
			return err
		}
	}
	return w.WriteEndElement()
}

// StringDictionary holds string entries keyed by the Key attribute, such as
// the e-mail addresses and phone numbers of a contact. Keys keep their
// insertion order.
type StringDictionary struct {
	keys   []string
	values map[string]string
}

func NewStringDictionary() *StringDictionary {
	return &StringDictionary{values: make(map[string]string)}
}

func (d *StringDictionary) Keys() []string {
	return d.keys
}

func (d *StringDictionary) Get(key string) (string, bool) {
	v, ok := d.values[key]
	return v, ok
}

func (d *StringDictionary) Set(key, value string) {
	if _, ok := d.values[key]; !ok {
		d.keys = append(d.keys, key)
	}
	d.values[key] = value
}

func (d *StringDictionary) Len() int {
	return len(d.keys)
}

func (d *StringDictionary) IsEmpty() bool {
	return len(d.keys) == 0
}

func (d *StringDictionary) LoadFromXML(r *Reader, local string) error {
	d.keys = nil
	d.values = make(map[string]string)
	return loadChildren(r, NamespaceTypes, local, func(r *Reader) error {
		if !r.IsStartElement(NamespaceTypes, "Entry") {
			return nil
		}
		key, ok := r.ReadAttributeValue("Key")
		if !ok {
			return newError(ErrKindReadError, local, "dictionary entry without key")
		}
		var v string
		if err := readString(r, &v); err != nil {
			return err
		}
		d.Set(key, v)
		return nil
	})
}

func (d *StringDictionary) WriteToXML(w *Writer, ns Namespace, local string) error {
	if err := w.WriteStartElement(ns, local); err != nil {
		return err
	}
	for _, key := range d.keys {
		if err := w.WriteStartElement(NamespaceTypes, "Entry"); err != nil {
			return err
		}
		if err := w.WriteAttributeValue("Key", key); err != nil {
			return err
		}
		if err := w.WriteValue(d.values[key]); err != nil {
			return err
		}
		if err := w.WriteEndElement(); err != nil {
			return err
		}
	}
	return w.WriteEndElement()
}

// PhysicalAddress is a postal address.
type PhysicalAddress struct {
	Street          string
	City            string
	State           string
	CountryOrRegion string
	PostalCode      string
}

func (addr *PhysicalAddress) fields() []struct {
	name string
	v    *string
} {
	return []struct {
		name string
		v    *string
	}{
		{"Street", &addr.Street},
		{"City", &addr.City},
		{"State", &addr.State},
		{"CountryOrRegion", &addr.CountryOrRegion},
		{"PostalCode", &addr.PostalCode},
	}
}

// PhysicalAddressDictionary holds the postal addresses of a contact, keyed
// by "Business", "Home" or "Other".
type PhysicalAddressDictionary struct {
	keys   []string
	values map[string]*PhysicalAddress
}

func NewPhysicalAddressDictionary() *PhysicalAddressDictionary {
	return &PhysicalAddressDictionary{values: make(map[string]*PhysicalAddress)}
}

func (d *PhysicalAddressDictionary) Keys() []string {
	return d.keys
}

func (d *PhysicalAddressDictionary) Get(key string) (*PhysicalAddress, bool) {
	v, ok := d.values[key]
	return v, ok
}

func (d *PhysicalAddressDictionary) Set(key string, addr *PhysicalAddress) {
	if _, ok := d.values[key]; !ok {
		d.keys = append(d.keys, key)
	}
	d.values[key] = addr
}

func (d *PhysicalAddressDictionary) IsEmpty() bool {
	return len(d.keys) == 0
}

func (d *PhysicalAddressDictionary) LoadFromXML(r *Reader, local string) error {
	d.keys = nil
	d.values = make(map[string]*PhysicalAddress)
	return loadChildren(r, NamespaceTypes, local, func(r *Reader) error {
		if !r.IsStartElement(NamespaceTypes, "Entry") {
			return nil
		}
		key, ok := r.ReadAttributeValue("Key")
		if !ok {
			return newError(ErrKindReadError, local, "dictionary entry without key")
		}
		addr := &PhysicalAddress{}
		fields := addr.fields()
		err := loadChildren(r, NamespaceTypes, "Entry", func(r *Reader) error {
			for _, f := range fields {
				if r.LocalName() == f.name {
					return readString(r, f.v)
				}
			}
			return nil
		})
		if err != nil {
			return err
		}
		d.Set(key, addr)
		return nil
	})
}

func (d *PhysicalAddressDictionary) WriteToXML(w *Writer, ns Namespace, local string) error {
	if err := w.WriteStartElement(ns, local); err != nil {
		return err
	}
	for _, key := range d.keys {
		if err := w.WriteStartElement(NamespaceTypes, "Entry"); err != nil {
			return err
		}
		if err := w.WriteAttributeValue("Key", key); err != nil {
			return err
		}
		for _, f := range d.values[key].fields() {
			if err := writeString(w, NamespaceTypes, f.name, *f.v); err != nil {
				return err
			}
		}
		if err := w.WriteEndElement(); err != nil {
			return err
		}
	}
	return w.WriteEndElement()
}
