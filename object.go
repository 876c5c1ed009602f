package ews

import (
	"time"

	"github.com/rs/zerolog"
)

// LoadOptions control how an object is loaded from XML.
type LoadOptions struct {
	// Clear removes existing values before loading.
	Clear bool
	// Requested is the property set requested from the server. Its
	// properties are marked as loaded, even if absent from the response.
	Requested *PropertySet
	// SummaryOnly indicates that only summary properties were requested, as
	// in find operations.
	SummaryOnly bool
}

// ServiceObject is an object exchanged with the server: an item or a
// folder.
type ServiceObject interface {
	// Kind returns the kind of the object.
	Kind() ObjectKind
	// XMLElementName returns the element name of the object.
	XMLElementName() string
	Schema() *Schema
	Properties() *PropertyBag
	// LoadFromXML reads the object subtree. The reader must be on the
	// object's start element, or right before it. It is left on the
	// object's end element.
	LoadFromXML(r *Reader, opts LoadOptions) error
	// WriteToXML writes the object as needed by create operations.
	WriteToXML(w *Writer) error
}

type validator interface {
	Validate() error
}

type serviceObject struct {
	self    ServiceObject
	kind    ObjectKind
	schema  *Schema
	bag     *PropertyBag
	service *Service
}

func (o *serviceObject) init(self ServiceObject, kind ObjectKind, schema *Schema, s *Service) {
	o.self = self
	o.kind = kind
	o.schema = schema
	o.bag = NewPropertyBag(self)
	o.service = s
}

func (o *serviceObject) Kind() ObjectKind {
	return o.kind
}

func (o *serviceObject) XMLElementName() string {
	return o.kind.ElementName()
}

func (o *serviceObject) Schema() *Schema {
	return o.schema
}

func (o *serviceObject) Properties() *PropertyBag {
	return o.bag
}

// Service returns the service the object is bound to. It may be nil.
func (o *serviceObject) Service() *Service {
	return o.service
}

func (o *serviceObject) logger() *zerolog.Logger {
	if o.service != nil {
		return &o.service.Logger
	}
	return &Logger
}

func (o *serviceObject) LoadFromXML(r *Reader, opts LoadOptions) error {
	name := o.XMLElementName()
	if !r.IsStartElement(NamespaceTypes, name) {
		if err := r.ReadStartElement(NamespaceTypes, name); err != nil {
			return err
		}
	}

	if opts.Clear {
		o.bag.Clear()
	}

	empty, err := r.IsEmptyElement()
	if err != nil {
		return err
	}
	if empty {
		if err := r.Read(); err != nil {
			return err
		}
	} else {
		for {
			if err := r.Read(); err != nil {
				return err
			}
			if r.IsEndElement(NamespaceTypes, name) {
				break
			}
			if r.NodeKind() != NodeStartElement {
				continue
			}

			def, ok := o.schema.Lookup(r.LocalName())
			if ok && r.IsStartElement(NamespaceTypes, def.name) {
				if err := def.LoadValue(r, o.bag); err != nil {
					return err
				}
				continue
			}

			o.logger().Debug().
				Str("object", name).
				Str("element", r.Name().String()).
				Msg("skipping unknown element")
			promSkippedElements.Inc()
			if err := r.SkipCurrentElement(); err != nil {
				return err
			}
		}
	}

	if opts.Requested != nil {
		o.bag.markLoaded(opts.Requested.definitions(o.schema, opts.SummaryOnly))
	}
	o.bag.ClearChanges()
	promDecodedObjects.WithLabelValues(o.kind.String()).Inc()
	return nil
}

func (o *serviceObject) WriteToXML(w *Writer) error {
	if v, ok := o.self.(validator); ok {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	if err := w.WriteStartElement(NamespaceTypes, o.XMLElementName()); err != nil {
		return err
	}
	if err := o.bag.WriteToXML(w, o.schema); err != nil {
		return err
	}
	return w.WriteEndElement()
}

// ItemObject is implemented by all item kinds.
type ItemObject interface {
	ServiceObject
	BaseItem() *Item
}

// Item is a generic item. More specific kinds embed it.
type Item struct {
	serviceObject
	attachment *ItemAttachment
}

// NewItem creates a new generic item.
func NewItem(s *Service) *Item {
	item := &Item{}
	item.init(item, KindItem, ItemSchema, s)
	return item
}

func (item *Item) BaseItem() *Item {
	return item
}

// Attachment returns the attachment holding the item, if the item was read
// from an item attachment.
func (item *Item) Attachment() *ItemAttachment {
	return item.attachment
}

func (item *Item) bindAttachment(a *ItemAttachment) {
	item.attachment = a
	if a != nil && a.owner != nil {
		item.service = a.owner.service
	}
}

func (item *Item) ID() *ItemID {
	return bagValue[*ItemID](item.bag, PropItemID)
}

func (item *Item) ParentFolderID() *FolderID {
	return bagValue[*FolderID](item.bag, PropItemParentFolderID)
}

func (item *Item) ItemClass() string {
	return bagValue[string](item.bag, PropItemClass)
}

func (item *Item) SetItemClass(class string) {
	item.bag.Set(PropItemClass, class)
}

func (item *Item) Subject() string {
	return bagValue[string](item.bag, PropItemSubject)
}

func (item *Item) SetSubject(subject string) {
	item.bag.Set(PropItemSubject, subject)
}

func (item *Item) Body() *Body {
	return bagValue[*Body](item.bag, PropItemBody)
}

func (item *Item) SetBody(body *Body) {
	item.bag.Set(PropItemBody, body)
}

func (item *Item) UniqueBody() *Body {
	return bagValue[*Body](item.bag, PropItemUniqueBody)
}

func (item *Item) MimeContent() *MimeContent {
	return bagValue[*MimeContent](item.bag, PropItemMimeContent)
}

// Categories returns the categories of the item. Changes made to the
// returned list need to be reported with PropertyBag.Changed.
func (item *Item) Categories() *StringList {
	return bagValue[*StringList](item.bag, PropItemCategories)
}

func (item *Item) SetCategories(categories ...string) {
	item.bag.Set(PropItemCategories, NewStringList(categories...))
}

func (item *Item) Importance() Importance {
	return bagValue[Importance](item.bag, PropItemImportance)
}

func (item *Item) SetImportance(importance Importance) {
	item.bag.Set(PropItemImportance, importance)
}

func (item *Item) Sensitivity() Sensitivity {
	return bagValue[Sensitivity](item.bag, PropItemSensitivity)
}

func (item *Item) SetSensitivity(sensitivity Sensitivity) {
	item.bag.Set(PropItemSensitivity, sensitivity)
}

func (item *Item) Attachments() *AttachmentCollection {
	return bagValue[*AttachmentCollection](item.bag, PropItemAttachments)
}

func (item *Item) HasAttachments() bool {
	return bagValue[bool](item.bag, PropItemHasAttachments)
}

func (item *Item) Size() int {
	return bagValue[int](item.bag, PropItemSize)
}

func (item *Item) DateTimeReceived() time.Time {
	return bagValue[time.Time](item.bag, PropItemDateTimeReceived)
}

func (item *Item) DateTimeSent() time.Time {
	return bagValue[time.Time](item.bag, PropItemDateTimeSent)
}

func (item *Item) DateTimeCreated() time.Time {
	return bagValue[time.Time](item.bag, PropItemDateTimeCreated)
}

func (item *Item) LastModifiedTime() time.Time {
	return bagValue[time.Time](item.bag, PropItemLastModifiedTime)
}

func (item *Item) Culture() string {
	return bagValue[string](item.bag, PropItemCulture)
}

// FolderObject is implemented by all folder kinds.
type FolderObject interface {
	ServiceObject
	BaseFolder() *Folder
}

// Folder is a generic folder. More specific kinds embed it.
type Folder struct {
	serviceObject
}

// NewFolder creates a new generic folder.
func NewFolder(s *Service) *Folder {
	f := &Folder{}
	f.init(f, KindFolder, FolderSchema, s)
	return f
}

func (f *Folder) BaseFolder() *Folder {
	return f
}

func (f *Folder) ID() *FolderID {
	return bagValue[*FolderID](f.bag, PropFolderID)
}

func (f *Folder) ParentFolderID() *FolderID {
	return bagValue[*FolderID](f.bag, PropFolderParentFolderID)
}

func (f *Folder) FolderClass() string {
	return bagValue[string](f.bag, PropFolderClass)
}

func (f *Folder) DisplayName() string {
	return bagValue[string](f.bag, PropFolderDisplayName)
}

func (f *Folder) SetDisplayName(name string) {
	f.bag.Set(PropFolderDisplayName, name)
}

func (f *Folder) TotalCount() int {
	return bagValue[int](f.bag, PropFolderTotalCount)
}

func (f *Folder) ChildFolderCount() int {
	return bagValue[int](f.bag, PropFolderChildFolderCount)
}

func (f *Folder) UnreadCount() int {
	return bagValue[int](f.bag, PropFolderUnreadCount)
}

// CalendarFolder is a folder holding calendar items.
type CalendarFolder struct {
	Folder
}

func NewCalendarFolder(s *Service) *CalendarFolder {
	f := &CalendarFolder{}
	f.init(f, KindCalendarFolder, CalendarFolderSchema, s)
	return f
}

// ContactsFolder is a folder holding contacts.
type ContactsFolder struct {
	Folder
}

func NewContactsFolder(s *Service) *ContactsFolder {
	f := &ContactsFolder{}
	f.init(f, KindContactsFolder, ContactsFolderSchema, s)
	return f
}

// TasksFolder is a folder holding tasks.
type TasksFolder struct {
	Folder
}

func NewTasksFolder(s *Service) *TasksFolder {
	f := &TasksFolder{}
	f.init(f, KindTasksFolder, TasksFolderSchema, s)
	return f
}

// SearchFolder is a folder whose content is defined by a search.
type SearchFolder struct {
	Folder
}

func NewSearchFolder(s *Service) *SearchFolder {
	f := &SearchFolder{}
	f.init(f, KindSearchFolder, SearchFolderSchema, s)
	return f
}
