package ews

import (
	"time"
)

func newItemID() *ItemID               { return &ItemID{} }
func newFolderID() *FolderID           { return &FolderID{} }
func newBody() *Body                   { return &Body{} }
func newMimeContent() *MimeContent     { return &MimeContent{} }
func newStringList() *StringList       { return &StringList{} }
func newEmailAddress() *EmailAddress   { return &EmailAddress{} }
func newCompleteName() *CompleteName   { return &CompleteName{} }
func newTimeZone() *TimeZoneDefinition { return &TimeZoneDefinition{} }

func newAttendees() *AttendeeCollection {
	return &AttendeeCollection{}
}

func newAttachments() *AttachmentCollection {
	return &AttachmentCollection{}
}

func newEmailAddresses() *EmailAddressCollection {
	return &EmailAddressCollection{}
}

const (
	canSetUpdate       = CanSet | CanUpdate
	canSetUpdateFind   = CanSet | CanUpdate | CanFind
	canSetUpdateDelete = CanSet | CanUpdate | CanDelete
	canAll             = CanSet | CanUpdate | CanDelete | CanFind
	updatedCollection  = canSetUpdateDelete | AutoInstantiateOnRead | UpdateCollectionItems
)

// ServiceObjectSchema is the root of all schemas.
var ServiceObjectSchema = mustSchema("ServiceObject", nil)

// Item properties.
var (
	PropItemMimeContent      = NewComplexProperty("MimeContent", "item:MimeContent", CanSet|MustBeExplicitlyLoaded, Exchange2007SP1, newMimeContent)
	PropItemID               = NewComplexProperty("ItemId", "item:ItemId", CanFind, Exchange2007SP1, newItemID)
	PropItemParentFolderID   = NewComplexProperty("ParentFolderId", "item:ParentFolderId", CanFind, Exchange2007SP1, newFolderID)
	PropItemClass            = NewSimpleProperty[string]("ItemClass", "item:ItemClass", canSetUpdateFind, Exchange2007SP1)
	PropItemSubject          = NewSimpleProperty[string]("Subject", "item:Subject", canAll, Exchange2007SP1)
	PropItemSensitivity      = NewSimpleProperty[Sensitivity]("Sensitivity", "item:Sensitivity", canSetUpdateFind, Exchange2007SP1)
	PropItemBody             = NewComplexProperty("Body", "item:Body", canSetUpdateDelete, Exchange2007SP1, newBody)
	PropItemAttachments      = NewComplexProperty("Attachments", "item:Attachments", CanSet|AutoInstantiateOnRead, Exchange2007SP1, newAttachments)
	PropItemDateTimeReceived = NewSimpleProperty[time.Time]("DateTimeReceived", "item:DateTimeReceived", CanFind, Exchange2007SP1)
	PropItemSize             = NewSimpleProperty[int]("Size", "item:Size", CanFind, Exchange2007SP1)
	PropItemCategories       = NewComplexProperty("Categories", "item:Categories", canAll|AutoInstantiateOnRead|UpdateCollectionItems, Exchange2007SP1, newStringList)
	PropItemImportance       = NewSimpleProperty[Importance]("Importance", "item:Importance", canSetUpdateFind, Exchange2007SP1)
	PropItemInReplyTo        = NewSimpleProperty[string]("InReplyTo", "item:InReplyTo", canSetUpdateDelete, Exchange2007SP1)
	PropItemDateTimeSent     = NewSimpleProperty[time.Time]("DateTimeSent", "item:DateTimeSent", CanFind, Exchange2007SP1)
	PropItemDateTimeCreated  = NewSimpleProperty[time.Time]("DateTimeCreated", "item:DateTimeCreated", CanFind, Exchange2007SP1)
	PropItemHasAttachments   = NewSimpleProperty[bool]("HasAttachments", "item:HasAttachments", CanFind, Exchange2007SP1)
	PropItemCulture          = NewSimpleProperty[string]("Culture", "item:Culture", canSetUpdateFind, Exchange2007SP1)
	PropItemLastModifiedTime = NewSimpleProperty[time.Time]("LastModifiedTime", "item:LastModifiedTime", CanFind, Exchange2010)
	PropItemUniqueBody       = NewComplexProperty("UniqueBody", "item:UniqueBody", MustBeExplicitlyLoaded, Exchange2010, newBody)
)

var ItemSchema = mustSchema("Item", ServiceObjectSchema,
	PropItemMimeContent,
	PropItemID,
	PropItemParentFolderID,
	PropItemClass,
	PropItemSubject,
	PropItemSensitivity,
	PropItemBody,
	PropItemAttachments,
	PropItemDateTimeReceived,
	PropItemSize,
	PropItemCategories,
	PropItemImportance,
	PropItemInReplyTo,
	PropItemDateTimeSent,
	PropItemDateTimeCreated,
	PropItemHasAttachments,
	PropItemCulture,
	PropItemLastModifiedTime,
	PropItemUniqueBody,
)

// Message properties.
var (
	PropMessageSender                 = NewContainedProperty("Sender", "Mailbox", "message:Sender", canAll, Exchange2007SP1, newEmailAddress)
	PropMessageToRecipients           = NewComplexProperty("ToRecipients", "message:ToRecipients", updatedCollection, Exchange2007SP1, newEmailAddresses)
	PropMessageCcRecipients           = NewComplexProperty("CcRecipients", "message:CcRecipients", updatedCollection, Exchange2007SP1, newEmailAddresses)
	PropMessageBccRecipients          = NewComplexProperty("BccRecipients", "message:BccRecipients", updatedCollection, Exchange2007SP1, newEmailAddresses)
	PropMessageIsReadReceiptRequested = NewSimpleProperty[bool]("IsReadReceiptRequested", "message:IsReadReceiptRequested", canSetUpdateDelete, Exchange2007SP1)
	PropMessageFrom                   = NewContainedProperty("From", "Mailbox", "message:From", canAll, Exchange2007SP1, newEmailAddress)
	PropMessageInternetMessageID      = NewSimpleProperty[string]("InternetMessageId", "message:InternetMessageId", CanFind, Exchange2007SP1)
	PropMessageIsRead                 = NewSimpleProperty[bool]("IsRead", "message:IsRead", canSetUpdateFind, Exchange2007SP1)
)

var EmailMessageSchema = mustSchema("EmailMessage", ItemSchema,
	PropMessageSender,
	PropMessageToRecipients,
	PropMessageCcRecipients,
	PropMessageBccRecipients,
	PropMessageIsReadReceiptRequested,
	PropMessageFrom,
	PropMessageInternetMessageID,
	PropMessageIsRead,
)

var PropPostItemPostedTime = NewSimpleProperty[time.Time]("PostedTime", "postitem:PostedTime", CanFind, Exchange2007SP1)

// PostItemSchema shares the sender properties of messages.
var PostItemSchema = mustSchema("PostItem", ItemSchema,
	PropMessageFrom,
	PropMessageInternetMessageID,
	PropMessageIsRead,
	PropPostItemPostedTime,
	PropMessageSender,
)

// Task properties.
var (
	PropTaskActualWork        = NewSimpleProperty[int]("ActualWork", "task:ActualWork", canAll, Exchange2007SP1)
	PropTaskCompleteDate      = NewSimpleProperty[time.Time]("CompleteDate", "task:CompleteDate", canSetUpdateFind, Exchange2007SP1)
	PropTaskDueDate           = NewSimpleProperty[time.Time]("DueDate", "task:DueDate", canAll, Exchange2007SP1)
	PropTaskIsComplete        = NewSimpleProperty[bool]("IsComplete", "task:IsComplete", CanFind, Exchange2007SP1)
	PropTaskOwner             = NewSimpleProperty[string]("Owner", "task:Owner", CanFind, Exchange2007SP1)
	PropTaskPercentComplete   = NewSimpleProperty[float64]("PercentComplete", "task:PercentComplete", canSetUpdateFind, Exchange2007SP1)
	PropTaskStartDate         = NewSimpleProperty[time.Time]("StartDate", "task:StartDate", canAll, Exchange2007SP1)
	PropTaskStatus            = NewSimpleProperty[TaskStatus]("Status", "task:Status", canSetUpdateFind, Exchange2007SP1)
	PropTaskStatusDescription = NewSimpleProperty[string]("StatusDescription", "task:StatusDescription", CanFind, Exchange2007SP1)
	PropTaskTotalWork         = NewSimpleProperty[int]("TotalWork", "task:TotalWork", canAll, Exchange2007SP1)
)

var TaskSchema = mustSchema("Task", ItemSchema,
	PropTaskActualWork,
	PropTaskCompleteDate,
	PropTaskDueDate,
	PropTaskIsComplete,
	PropTaskOwner,
	PropTaskPercentComplete,
	PropTaskStartDate,
	PropTaskStatus,
	PropTaskStatusDescription,
	PropTaskTotalWork,
)

// Contact properties.
var (
	PropContactFileAs            = NewSimpleProperty[string]("FileAs", "contacts:FileAs", canAll, Exchange2007SP1)
	PropContactDisplayName       = NewSimpleProperty[string]("DisplayName", "contacts:DisplayName", canAll, Exchange2007SP1)
	PropContactGivenName         = NewSimpleProperty[string]("GivenName", "contacts:GivenName", canAll, Exchange2007SP1)
	PropContactInitials          = NewSimpleProperty[string]("Initials", "contacts:Initials", canAll, Exchange2007SP1)
	PropContactMiddleName        = NewSimpleProperty[string]("MiddleName", "contacts:MiddleName", canAll, Exchange2007SP1)
	PropContactNickname          = NewSimpleProperty[string]("Nickname", "contacts:Nickname", canAll, Exchange2007SP1)
	PropContactCompleteName      = NewComplexProperty("CompleteName", "contacts:CompleteName", CanFind, Exchange2007SP1, newCompleteName)
	PropContactCompanyName       = NewSimpleProperty[string]("CompanyName", "contacts:CompanyName", canAll, Exchange2007SP1)
	PropContactEmailAddresses    = NewComplexProperty("EmailAddresses", "contacts:EmailAddresses", CanSet|AutoInstantiateOnRead, Exchange2007SP1, NewStringDictionary)
	PropContactPhysicalAddresses = NewComplexProperty("PhysicalAddresses", "contacts:PhysicalAddresses", CanSet|AutoInstantiateOnRead, Exchange2007SP1, NewPhysicalAddressDictionary)
	PropContactPhoneNumbers      = NewComplexProperty("PhoneNumbers", "contacts:PhoneNumbers", CanSet|AutoInstantiateOnRead, Exchange2007SP1, NewStringDictionary)
	PropContactBirthday          = NewSimpleProperty[time.Time]("Birthday", "contacts:Birthday", canAll, Exchange2007SP1)
	PropContactBusinessHomePage  = NewSimpleProperty[string]("BusinessHomePage", "contacts:BusinessHomePage", canAll, Exchange2007SP1)
	PropContactDepartment        = NewSimpleProperty[string]("Department", "contacts:Department", canAll, Exchange2007SP1)
	PropContactJobTitle          = NewSimpleProperty[string]("JobTitle", "contacts:JobTitle", canAll, Exchange2007SP1)
	PropContactSurname           = NewSimpleProperty[string]("Surname", "contacts:Surname", canAll, Exchange2007SP1)
)

var ContactSchema = mustSchema("Contact", ItemSchema,
	PropContactFileAs,
	PropContactDisplayName,
	PropContactGivenName,
	PropContactInitials,
	PropContactMiddleName,
	PropContactNickname,
	PropContactCompleteName,
	PropContactCompanyName,
	PropContactEmailAddresses,
	PropContactPhysicalAddresses,
	PropContactPhoneNumbers,
	PropContactBirthday,
	PropContactBusinessHomePage,
	PropContactDepartment,
	PropContactJobTitle,
	PropContactSurname,
)

// Calendar item properties.
var (
	PropAppointmentUID                   = NewSimpleProperty[string]("UID", "calendar:UID", canAll, Exchange2007SP1)
	PropAppointmentStart                 = NewSimpleProperty[time.Time]("Start", "calendar:Start", canSetUpdateFind, Exchange2007SP1)
	PropAppointmentEnd                   = NewSimpleProperty[time.Time]("End", "calendar:End", canSetUpdateFind, Exchange2007SP1)
	PropAppointmentOriginalStart         = NewSimpleProperty[time.Time]("OriginalStart", "calendar:OriginalStart", CanFind, Exchange2007SP1)
	PropAppointmentIsAllDayEvent         = NewSimpleProperty[bool]("IsAllDayEvent", "calendar:IsAllDayEvent", canSetUpdateFind, Exchange2007SP1)
	PropAppointmentLegacyFreeBusyStatus  = NewSimpleProperty[FreeBusyStatus]("LegacyFreeBusyStatus", "calendar:LegacyFreeBusyStatus", canSetUpdateFind, Exchange2007SP1)
	PropAppointmentLocation              = NewSimpleProperty[string]("Location", "calendar:Location", canAll, Exchange2007SP1)
	PropAppointmentIsMeeting             = NewSimpleProperty[bool]("IsMeeting", "calendar:IsMeeting", CanFind, Exchange2007SP1)
	PropAppointmentIsCancelled           = NewSimpleProperty[bool]("IsCancelled", "calendar:IsCancelled", CanFind, Exchange2007SP1)
	PropAppointmentIsRecurring           = NewSimpleProperty[bool]("IsRecurring", "calendar:IsRecurring", CanFind, Exchange2007SP1)
	PropAppointmentMeetingRequestWasSent = NewSimpleProperty[bool]("MeetingRequestWasSent", "calendar:MeetingRequestWasSent", CanFind, Exchange2007SP1)
	PropAppointmentCalendarItemType      = NewSimpleProperty[CalendarItemType]("CalendarItemType", "calendar:CalendarItemType", CanFind, Exchange2007SP1)
	PropAppointmentMyResponseType        = NewSimpleProperty[ResponseType]("MyResponseType", "calendar:MyResponseType", CanFind, Exchange2007SP1)
	PropAppointmentOrganizer             = NewContainedProperty("Organizer", "Mailbox", "calendar:Organizer", CanFind, Exchange2007SP1, newEmailAddress)
	PropAppointmentRequiredAttendees     = NewComplexProperty("RequiredAttendees", "calendar:RequiredAttendees", updatedCollection, Exchange2007SP1, newAttendees)
	PropAppointmentOptionalAttendees     = NewComplexProperty("OptionalAttendees", "calendar:OptionalAttendees", updatedCollection, Exchange2007SP1, newAttendees)
	PropAppointmentDuration              = NewSimpleProperty[time.Duration]("Duration", "calendar:Duration", CanFind, Exchange2007SP1)
	PropAppointmentTimeZone              = NewSimpleProperty[string]("TimeZone", "calendar:TimeZone", CanFind, Exchange2007SP1)
	PropAppointmentMeetingTimeZone       = NewCustomProperty("MeetingTimeZone", "calendar:MeetingTimeZone", canSetUpdate, Exchange2007SP1, loadMeetingTimeZone, writeMeetingTimeZone)
	PropAppointmentEndTimeZone           = NewComplexProperty("EndTimeZone", "calendar:EndTimeZone", canSetUpdateFind, Exchange2010, newTimeZone)
)

// PropAppointmentStartTimeZone is written as MeetingTimeZone for servers
// older than Exchange 2010.
var PropAppointmentStartTimeZone = NewComplexProperty("StartTimeZone", "calendar:StartTimeZone", canSetUpdateFind, Exchange2010, newTimeZone).
	WithAssociated(PropAppointmentMeetingTimeZone)

// PropAppointmentIsOnlineMeeting is read-only before Exchange 2013.
var PropAppointmentIsOnlineMeeting = NewSimpleProperty[bool]("IsOnlineMeeting", "calendar:IsOnlineMeeting", CanFind, Exchange2007SP1).
	WithVersionFlags(Exchange2013, canSetUpdateFind)

// AppointmentSchema is the schema of calendar items.
var AppointmentSchema = mustSchema("CalendarItem", ItemSchema,
	PropAppointmentUID,
	PropAppointmentStart,
	PropAppointmentEnd,
	PropAppointmentOriginalStart,
	PropAppointmentIsAllDayEvent,
	PropAppointmentLegacyFreeBusyStatus,
	PropAppointmentLocation,
	PropAppointmentIsMeeting,
	PropAppointmentIsCancelled,
	PropAppointmentIsRecurring,
	PropAppointmentMeetingRequestWasSent,
	PropAppointmentCalendarItemType,
	PropAppointmentMyResponseType,
	PropAppointmentOrganizer,
	PropAppointmentRequiredAttendees,
	PropAppointmentOptionalAttendees,
	PropAppointmentDuration,
	PropAppointmentTimeZone,
	PropAppointmentMeetingTimeZone,
	PropAppointmentStartTimeZone,
	PropAppointmentEndTimeZone,
	PropAppointmentIsOnlineMeeting,
)

// Folder properties.
var (
	PropFolderID               = NewComplexProperty("FolderId", "folder:FolderId", CanFind, Exchange2007SP1, newFolderID)
	PropFolderParentFolderID   = NewComplexProperty("ParentFolderId", "folder:ParentFolderId", CanFind, Exchange2007SP1, newFolderID)
	PropFolderClass            = NewSimpleProperty[string]("FolderClass", "folder:FolderClass", canSetUpdateFind, Exchange2007SP1)
	PropFolderDisplayName      = NewSimpleProperty[string]("DisplayName", "folder:DisplayName", canAll, Exchange2007SP1)
	PropFolderTotalCount       = NewSimpleProperty[int]("TotalCount", "folder:TotalCount", CanFind, Exchange2007SP1)
	PropFolderChildFolderCount = NewSimpleProperty[int]("ChildFolderCount", "folder:ChildFolderCount", CanFind, Exchange2007SP1)
	PropFolderUnreadCount      = NewSimpleProperty[int]("UnreadCount", "folder:UnreadCount", CanFind, Exchange2007SP1)
)

var FolderSchema = mustSchema("Folder", ServiceObjectSchema,
	PropFolderID,
	PropFolderParentFolderID,
	PropFolderClass,
	PropFolderDisplayName,
	PropFolderTotalCount,
	PropFolderChildFolderCount,
	PropFolderUnreadCount,
)

var (
	CalendarFolderSchema = mustSchema("CalendarFolder", FolderSchema)
	ContactsFolderSchema = mustSchema("ContactsFolder", FolderSchema)
	TasksFolderSchema    = mustSchema("TasksFolder", FolderSchema)
	SearchFolderSchema   = mustSchema("SearchFolder", FolderSchema)
)

func builtinSchemas() []*Schema {
	return []*Schema{
		ServiceObjectSchema,
		ItemSchema,
		EmailMessageSchema,
		PostItemSchema,
		TaskSchema,
		ContactSchema,
		AppointmentSchema,
		FolderSchema,
		CalendarFolderSchema,
		ContactsFolderSchema,
		TasksFolderSchema,
		SearchFolderSchema,
	}
}
