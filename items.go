package ews

import (
	"bytes"
	"fmt"
	"time"

	"github.com/emersion/go-message/mail"
)

// EmailMessage is an e-mail message.
type EmailMessage struct {
	Item
}

func NewEmailMessage(s *Service) *EmailMessage {
	msg := &EmailMessage{}
	msg.init(msg, KindMessage, EmailMessageSchema, s)
	return msg
}

func (msg *EmailMessage) From() *EmailAddress {
	return bagValue[*EmailAddress](msg.bag, PropMessageFrom)
}

func (msg *EmailMessage) SetFrom(addr *EmailAddress) {
	msg.bag.Set(PropMessageFrom, addr)
}

func (msg *EmailMessage) Sender() *EmailAddress {
	return bagValue[*EmailAddress](msg.bag, PropMessageSender)
}

func (msg *EmailMessage) ToRecipients() *EmailAddressCollection {
	return bagValue[*EmailAddressCollection](msg.bag, PropMessageToRecipients)
}

func (msg *EmailMessage) CcRecipients() *EmailAddressCollection {
	return bagValue[*EmailAddressCollection](msg.bag, PropMessageCcRecipients)
}

func (msg *EmailMessage) BccRecipients() *EmailAddressCollection {
	return bagValue[*EmailAddressCollection](msg.bag, PropMessageBccRecipients)
}

func (msg *EmailMessage) IsRead() bool {
	return bagValue[bool](msg.bag, PropMessageIsRead)
}

func (msg *EmailMessage) SetIsRead(read bool) {
	msg.bag.Set(PropMessageIsRead, read)
}

func (msg *EmailMessage) InternetMessageID() string {
	return bagValue[string](msg.bag, PropMessageInternetMessageID)
}

// MIMEReader parses the MIME content of the message. The MimeContent
// property must have been loaded.
func (msg *EmailMessage) MIMEReader() (*mail.Reader, error) {
	mc := msg.MimeContent()
	if mc == nil {
		return nil, fmt.Errorf("ews: MIME content of message not loaded")
	}
	return mail.CreateReader(bytes.NewReader(mc.Content))
}

// PostItem is an item posted to a public folder.
type PostItem struct {
	Item
}

func NewPostItem(s *Service) *PostItem {
	post := &PostItem{}
	post.init(post, KindPostItem, PostItemSchema, s)
	return post
}

func (post *PostItem) From() *EmailAddress {
	return bagValue[*EmailAddress](post.bag, PropMessageFrom)
}

func (post *PostItem) PostedTime() time.Time {
	return bagValue[time.Time](post.bag, PropPostItemPostedTime)
}

// Task is a task item.
type Task struct {
	Item
}

func NewTask(s *Service) *Task {
	task := &Task{}
	task.init(task, KindTask, TaskSchema, s)
	return task
}

func (task *Task) Status() TaskStatus {
	return bagValue[TaskStatus](task.bag, PropTaskStatus)
}

func (task *Task) SetStatus(status TaskStatus) {
	task.bag.Set(PropTaskStatus, status)
}

// PercentComplete returns the progress of the task, between 0 and 100.
func (task *Task) PercentComplete() float64 {
	return bagValue[float64](task.bag, PropTaskPercentComplete)
}

func (task *Task) SetPercentComplete(percent float64) {
	task.bag.Set(PropTaskPercentComplete, percent)
}

func (task *Task) StartDate() time.Time {
	return bagValue[time.Time](task.bag, PropTaskStartDate)
}

func (task *Task) SetStartDate(t time.Time) {
	task.bag.Set(PropTaskStartDate, t)
}

func (task *Task) DueDate() time.Time {
	return bagValue[time.Time](task.bag, PropTaskDueDate)
}

func (task *Task) SetDueDate(t time.Time) {
	task.bag.Set(PropTaskDueDate, t)
}

func (task *Task) CompleteDate() time.Time {
	return bagValue[time.Time](task.bag, PropTaskCompleteDate)
}

func (task *Task) IsComplete() bool {
	return bagValue[bool](task.bag, PropTaskIsComplete)
}

func (task *Task) Owner() string {
	return bagValue[string](task.bag, PropTaskOwner)
}

// Validate checks the task before it is sent to the server.
func (task *Task) Validate() error {
	if p := task.PercentComplete(); p < 0 || p > 100 {
		return newError(ErrKindInvalidValue, PropTaskPercentComplete.name, "percentage %v out of range", p)
	}
	if start, due := task.StartDate(), task.DueDate(); !start.IsZero() && !due.IsZero() && due.Before(start) {
		return newError(ErrKindInvalidValue, PropTaskDueDate.name, "due date before start date")
	}
	return nil
}

// Contact is a contact item.
type Contact struct {
	Item
}

func NewContact(s *Service) *Contact {
	c := &Contact{}
	c.init(c, KindContact, ContactSchema, s)
	return c
}

func (c *Contact) FileAs() string {
	return bagValue[string](c.bag, PropContactFileAs)
}

func (c *Contact) SetFileAs(s string) {
	c.bag.Set(PropContactFileAs, s)
}

func (c *Contact) DisplayName() string {
	return bagValue[string](c.bag, PropContactDisplayName)
}

func (c *Contact) SetDisplayName(name string) {
	c.bag.Set(PropContactDisplayName, name)
}

func (c *Contact) GivenName() string {
	return bagValue[string](c.bag, PropContactGivenName)
}

func (c *Contact) SetGivenName(name string) {
	c.bag.Set(PropContactGivenName, name)
}

func (c *Contact) MiddleName() string {
	return bagValue[string](c.bag, PropContactMiddleName)
}

func (c *Contact) Surname() string {
	return bagValue[string](c.bag, PropContactSurname)
}

func (c *Contact) SetSurname(name string) {
	c.bag.Set(PropContactSurname, name)
}

func (c *Contact) SetMiddleName(name string) {
	c.bag.Set(PropContactMiddleName, name)
}

func (c *Contact) Nickname() string {
	return bagValue[string](c.bag, PropContactNickname)
}

func (c *Contact) SetNickname(name string) {
	c.bag.Set(PropContactNickname, name)
}

func (c *Contact) CompleteName() *CompleteName {
	return bagValue[*CompleteName](c.bag, PropContactCompleteName)
}

func (c *Contact) CompanyName() string {
	return bagValue[string](c.bag, PropContactCompanyName)
}

func (c *Contact) SetCompanyName(name string) {
	c.bag.Set(PropContactCompanyName, name)
}

func (c *Contact) Department() string {
	return bagValue[string](c.bag, PropContactDepartment)
}

func (c *Contact) SetDepartment(department string) {
	c.bag.Set(PropContactDepartment, department)
}

func (c *Contact) JobTitle() string {
	return bagValue[string](c.bag, PropContactJobTitle)
}

func (c *Contact) SetJobTitle(title string) {
	c.bag.Set(PropContactJobTitle, title)
}

func (c *Contact) Birthday() time.Time {
	return bagValue[time.Time](c.bag, PropContactBirthday)
}

func (c *Contact) SetBirthday(t time.Time) {
	c.bag.Set(PropContactBirthday, t)
}

func (c *Contact) BusinessHomePage() string {
	return bagValue[string](c.bag, PropContactBusinessHomePage)
}

func (c *Contact) SetBusinessHomePage(url string) {
	c.bag.Set(PropContactBusinessHomePage, url)
}

// EmailAddresses returns the e-mail addresses of the contact, keyed by
// "EmailAddress1" to "EmailAddress3".
func (c *Contact) EmailAddresses() *StringDictionary {
	return bagValue[*StringDictionary](c.bag, PropContactEmailAddresses)
}

// PhoneNumbers returns the phone numbers of the contact, keyed by kind, such
// as "BusinessPhone" or "MobilePhone".
func (c *Contact) PhoneNumbers() *StringDictionary {
	return bagValue[*StringDictionary](c.bag, PropContactPhoneNumbers)
}

func (c *Contact) SetEmailAddresses(d *StringDictionary) {
	c.bag.Set(PropContactEmailAddresses, d)
}

func (c *Contact) SetPhoneNumbers(d *StringDictionary) {
	c.bag.Set(PropContactPhoneNumbers, d)
}

func (c *Contact) PhysicalAddresses() *PhysicalAddressDictionary {
	return bagValue[*PhysicalAddressDictionary](c.bag, PropContactPhysicalAddresses)
}

func (c *Contact) SetPhysicalAddresses(d *PhysicalAddressDictionary) {
	c.bag.Set(PropContactPhysicalAddresses, d)
}

// CalendarItem is an appointment or a meeting.
type CalendarItem struct {
	Item
}

func NewCalendarItem(s *Service) *CalendarItem {
	ci := &CalendarItem{}
	ci.init(ci, KindCalendarItem, AppointmentSchema, s)
	return ci
}

func (ci *CalendarItem) UID() string {
	return bagValue[string](ci.bag, PropAppointmentUID)
}

func (ci *CalendarItem) SetUID(uid string) {
	ci.bag.Set(PropAppointmentUID, uid)
}

func (ci *CalendarItem) Start() time.Time {
	return bagValue[time.Time](ci.bag, PropAppointmentStart)
}

func (ci *CalendarItem) SetStart(t time.Time) {
	ci.bag.Set(PropAppointmentStart, t)
}

func (ci *CalendarItem) End() time.Time {
	return bagValue[time.Time](ci.bag, PropAppointmentEnd)
}

func (ci *CalendarItem) SetEnd(t time.Time) {
	ci.bag.Set(PropAppointmentEnd, t)
}

func (ci *CalendarItem) IsAllDayEvent() bool {
	return bagValue[bool](ci.bag, PropAppointmentIsAllDayEvent)
}

func (ci *CalendarItem) SetIsAllDayEvent(allDay bool) {
	ci.bag.Set(PropAppointmentIsAllDayEvent, allDay)
}

func (ci *CalendarItem) Location() string {
	return bagValue[string](ci.bag, PropAppointmentLocation)
}

func (ci *CalendarItem) SetLocation(location string) {
	ci.bag.Set(PropAppointmentLocation, location)
}

func (ci *CalendarItem) LegacyFreeBusyStatus() FreeBusyStatus {
	return bagValue[FreeBusyStatus](ci.bag, PropAppointmentLegacyFreeBusyStatus)
}

func (ci *CalendarItem) SetLegacyFreeBusyStatus(status FreeBusyStatus) {
	ci.bag.Set(PropAppointmentLegacyFreeBusyStatus, status)
}

func (ci *CalendarItem) IsMeeting() bool {
	return bagValue[bool](ci.bag, PropAppointmentIsMeeting)
}

func (ci *CalendarItem) IsCancelled() bool {
	return bagValue[bool](ci.bag, PropAppointmentIsCancelled)
}

func (ci *CalendarItem) IsRecurring() bool {
	return bagValue[bool](ci.bag, PropAppointmentIsRecurring)
}

func (ci *CalendarItem) CalendarItemType() CalendarItemType {
	return bagValue[CalendarItemType](ci.bag, PropAppointmentCalendarItemType)
}

func (ci *CalendarItem) MyResponseType() ResponseType {
	return bagValue[ResponseType](ci.bag, PropAppointmentMyResponseType)
}

func (ci *CalendarItem) Organizer() *EmailAddress {
	return bagValue[*EmailAddress](ci.bag, PropAppointmentOrganizer)
}

func (ci *CalendarItem) RequiredAttendees() *AttendeeCollection {
	return bagValue[*AttendeeCollection](ci.bag, PropAppointmentRequiredAttendees)
}

func (ci *CalendarItem) OptionalAttendees() *AttendeeCollection {
	return bagValue[*AttendeeCollection](ci.bag, PropAppointmentOptionalAttendees)
}

func (ci *CalendarItem) SetRequiredAttendees(c *AttendeeCollection) {
	ci.bag.Set(PropAppointmentRequiredAttendees, c)
}

func (ci *CalendarItem) SetOptionalAttendees(c *AttendeeCollection) {
	ci.bag.Set(PropAppointmentOptionalAttendees, c)
}

func (ci *CalendarItem) Duration() time.Duration {
	return bagValue[time.Duration](ci.bag, PropAppointmentDuration)
}

// StartTimeZone returns the time zone of the start time. On servers older
// than Exchange 2010 it is read from the MeetingTimeZone property.
func (ci *CalendarItem) StartTimeZone() *TimeZoneDefinition {
	return bagValue[*TimeZoneDefinition](ci.bag, PropAppointmentStartTimeZone)
}

func (ci *CalendarItem) SetStartTimeZone(tz *TimeZoneDefinition) {
	ci.bag.Set(PropAppointmentStartTimeZone, tz)
}

func (ci *CalendarItem) EndTimeZone() *TimeZoneDefinition {
	return bagValue[*TimeZoneDefinition](ci.bag, PropAppointmentEndTimeZone)
}

func (ci *CalendarItem) SetEndTimeZone(tz *TimeZoneDefinition) {
	ci.bag.Set(PropAppointmentEndTimeZone, tz)
}

func (ci *CalendarItem) IsOnlineMeeting() bool {
	return bagValue[bool](ci.bag, PropAppointmentIsOnlineMeeting)
}

// Validate checks the calendar item before it is sent to the server.
func (ci *CalendarItem) Validate() error {
	start, end := ci.Start(), ci.End()
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		return newError(ErrKindInvalidValue, PropAppointmentEnd.name, "end %v before start %v", end, start)
	}
	return nil
}
