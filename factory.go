package ews

// ObjectKind identifies a concrete kind of service object.
type ObjectKind int

const (
	KindUnrecognized ObjectKind = iota
	KindItem
	KindMessage
	KindPostItem
	KindTask
	KindContact
	KindCalendarItem
	KindFolder
	KindCalendarFolder
	KindContactsFolder
	KindTasksFolder
	KindSearchFolder

	kindCount
)

var kindNames = [kindCount]string{
	KindUnrecognized:   "",
	KindItem:           "Item",
	KindMessage:        "Message",
	KindPostItem:       "PostItem",
	KindTask:           "Task",
	KindContact:        "Contact",
	KindCalendarItem:   "CalendarItem",
	KindFolder:         "Folder",
	KindCalendarFolder: "CalendarFolder",
	KindContactsFolder: "ContactsFolder",
	KindTasksFolder:    "TasksFolder",
	KindSearchFolder:   "SearchFolder",
}

// ResolveKind maps an element name to an object kind. Unknown names resolve
// to KindUnrecognized.
func ResolveKind(name string) ObjectKind {
	for k := KindItem; k < kindCount; k++ {
		if kindNames[k] == name {
			return k
		}
	}
	return KindUnrecognized
}

// ElementName returns the element name of the kind.
func (k ObjectKind) ElementName() string {
	if k < 0 || k >= kindCount {
		return ""
	}
	return kindNames[k]
}

func (k ObjectKind) String() string {
	if name := k.ElementName(); name != "" {
		return name
	}
	return "Unrecognized"
}

// IsItem reports whether the kind is an item kind.
func (k ObjectKind) IsItem() bool {
	return k >= KindItem && k <= KindCalendarItem
}

// IsFolder reports whether the kind is a folder kind.
func (k ObjectKind) IsFolder() bool {
	return k >= KindFolder && k <= KindSearchFolder
}

type objectFactory struct {
	session  func(s *Service) ServiceObject
	attached func(a *ItemAttachment) ItemObject
}

// objectFactories is filled in init, since constructors depend on schemas.
var objectFactories [kindCount]objectFactory

func init() {
	objectFactories = [kindCount]objectFactory{
		KindItem: {
			session:  func(s *Service) ServiceObject { return NewItem(s) },
			attached: func(a *ItemAttachment) ItemObject { return attach(NewItem(nil), a) },
		},
		KindMessage: {
			session:  func(s *Service) ServiceObject { return NewEmailMessage(s) },
			attached: func(a *ItemAttachment) ItemObject { return attach(NewEmailMessage(nil), a) },
		},
		KindPostItem: {
			session:  func(s *Service) ServiceObject { return NewPostItem(s) },
			attached: func(a *ItemAttachment) ItemObject { return attach(NewPostItem(nil), a) },
		},
		KindTask: {
			session:  func(s *Service) ServiceObject { return NewTask(s) },
			attached: func(a *ItemAttachment) ItemObject { return attach(NewTask(nil), a) },
		},
		KindContact: {
			session:  func(s *Service) ServiceObject { return NewContact(s) },
			attached: func(a *ItemAttachment) ItemObject { return attach(NewContact(nil), a) },
		},
		KindCalendarItem: {
			session:  func(s *Service) ServiceObject { return NewCalendarItem(s) },
			attached: func(a *ItemAttachment) ItemObject { return attach(NewCalendarItem(nil), a) },
		},
		KindFolder: {
			session: func(s *Service) ServiceObject { return NewFolder(s) },
		},
		KindCalendarFolder: {
			session: func(s *Service) ServiceObject { return NewCalendarFolder(s) },
		},
		KindContactsFolder: {
			session: func(s *Service) ServiceObject { return NewContactsFolder(s) },
		},
		KindTasksFolder: {
			session: func(s *Service) ServiceObject { return NewTasksFolder(s) },
		},
		KindSearchFolder: {
			session: func(s *Service) ServiceObject { return NewSearchFolder(s) },
		},
	}
}

func attach(item ItemObject, a *ItemAttachment) ItemObject {
	item.BaseItem().bindAttachment(a)
	return item
}

// New creates an empty object of the kind, bound to a service. It returns
// false for KindUnrecognized.
func (k ObjectKind) New(s *Service) (ServiceObject, bool) {
	if k <= KindUnrecognized || k >= kindCount {
		return nil, false
	}
	return objectFactories[k].session(s), true
}

// NewAttached creates an empty item of the kind, held by an item attachment.
// It returns false for kinds which can't be attached.
func (k ObjectKind) NewAttached(a *ItemAttachment) (ItemObject, bool) {
	if k <= KindUnrecognized || k >= kindCount || objectFactories[k].attached == nil {
		return nil, false
	}
	return objectFactories[k].attached(a), true
}

// ObjectFactory returns a factory creating objects of any kind for
// ReadServiceObjects.
func ObjectFactory(s *Service) func(name string) (ServiceObject, bool) {
	return func(name string) (ServiceObject, bool) {
		return ResolveKind(name).New(s)
	}
}

// ItemFactory returns a factory creating items for ReadServiceObjects.
// Folder elements are rejected.
func ItemFactory(s *Service) func(name string) (ItemObject, bool) {
	return func(name string) (ItemObject, bool) {
		obj, ok := ResolveKind(name).New(s)
		if !ok {
			return nil, false
		}
		item, ok := obj.(ItemObject)
		return item, ok
	}
}

// FolderFactory returns a factory creating folders for ReadServiceObjects.
func FolderFactory(s *Service) func(name string) (FolderObject, bool) {
	return func(name string) (FolderObject, bool) {
		obj, ok := ResolveKind(name).New(s)
		if !ok {
			return nil, false
		}
		f, ok := obj.(FolderObject)
		return f, ok
	}
}
