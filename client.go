package ews

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/emersion/go-ews/internal"
)

// HTTPClient performs HTTP requests. It's implemented by *http.Client.
type HTTPClient = internal.HTTPClient

// HTTPError is returned when the server replies with a non-2xx status.
type HTTPError = internal.HTTPError

// Fault is a SOAP fault returned by the server. It is wrapped in an
// *HTTPError.
type Fault = internal.Fault

// Service is an EWS client bound to one endpoint.
type Service struct {
	// Version is the protocol version requested from the server. It selects
	// the properties written in requests.
	Version Version
	Logger  zerolog.Logger

	c *internal.Client
}

// NewService creates a client for an EWS endpoint, typically
// "https://<host>/EWS/Exchange.asmx".
func NewService(c HTTPClient, endpoint string, version Version) (*Service, error) {
	ic, err := internal.NewClient(c, endpoint)
	if err != nil {
		return nil, err
	}
	return &Service{Version: version, Logger: Logger, c: ic}, nil
}

// SetBasicAuth sets the credentials sent with each request.
func (s *Service) SetBasicAuth(username, password string) {
	s.c.SetBasicAuth(username, password)
}

// do sends a request and parses its response. writeBody writes the request
// element into the SOAP body. readBody is called with the reader on the
// response element and must leave it on its end element.
func (s *Service) do(ctx context.Context, action, response string, writeBody func(w *Writer) error, readBody func(r *Reader) error) error {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	w := NewWriter(&buf, s.Version)
	if err := writeEnvelope(w, writeBody); err != nil {
		return err
	}

	req, err := s.c.NewSOAPRequest(ctx, action, &buf)
	if err != nil {
		return err
	}
	s.Logger.Trace().
		Str("action", action).
		Str("client-request-id", req.Header.Get("client-request-id")).
		Msg("sending request")

	resp, err := s.c.Do(req)
	if err != nil {
		promRequests.WithLabelValues(action, "error").Inc()
		return err
	}
	defer resp.Body.Close()

	r := NewReader(resp.Body)
	if err := readEnvelope(r, response, readBody); err != nil {
		promRequests.WithLabelValues(action, "error").Inc()
		return err
	}
	promRequests.WithLabelValues(action, "success").Inc()
	return nil
}

func writeEnvelope(w *Writer, writeBody func(w *Writer) error) error {
	if err := w.WriteStartElement(NamespaceSOAP, "Envelope"); err != nil {
		return err
	}
	if err := w.WriteStartElement(NamespaceSOAP, "Header"); err != nil {
		return err
	}
	if err := w.WriteStartElement(NamespaceTypes, "RequestServerVersion"); err != nil {
		return err
	}
	if err := w.WriteAttributeValue("Version", w.Version()); err != nil {
		return err
	}
	if err := w.WriteEndElement(); err != nil {
		return err
	}
	if err := w.WriteEndElement(); err != nil {
		return err
	}
	if err := w.WriteStartElement(NamespaceSOAP, "Body"); err != nil {
		return err
	}
	if err := writeBody(w); err != nil {
		return err
	}
	if err := w.WriteEndElement(); err != nil {
		return err
	}
	if err := w.WriteEndElement(); err != nil {
		return err
	}
	return w.Flush()
}

func readEnvelope(r *Reader, response string, readBody func(r *Reader) error) error {
	if err := r.ReadStartElement(NamespaceSOAP, "Envelope"); err != nil {
		return err
	}
	for {
		if err := r.Read(); err != nil {
			return err
		}
		if r.IsStartElement(NamespaceSOAP, "Body") {
			break
		}
		if err := r.SkipCurrentElement(); err != nil {
			return err
		}
	}
	if err := r.ReadStartElement(NamespaceMessages, response); err != nil {
		return err
	}
	if err := readBody(r); err != nil {
		return err
	}
	if err := r.ReadEndElementIfNecessary(NamespaceMessages, response); err != nil {
		return err
	}
	if err := r.ReadEndElement(NamespaceSOAP, "Body"); err != nil {
		return err
	}
	return r.ReadEndElement(NamespaceSOAP, "Envelope")
}

// readResponseMessages reads the response messages of an operation. fn is
// called for each payload element of successful messages. The first failed
// message is returned as a *ResponseError.
func (s *Service) readResponseMessages(r *Reader, response string, fn func(r *Reader) error) error {
	return loadChildren(r, NamespaceMessages, response, func(r *Reader) error {
		if !r.IsStartElement(NamespaceMessages, "ResponseMessages") {
			return nil
		}
		return loadChildren(r, NamespaceMessages, "ResponseMessages", func(r *Reader) error {
			return s.readResponseMessage(r, r.LocalName(), fn)
		})
	})
}

func (s *Service) readResponseMessage(r *Reader, local string, fn func(r *Reader) error) error {
	class, _ := r.ReadAttributeValue("ResponseClass")
	respErr := &ResponseError{Class: class}
	err := loadChildren(r, NamespaceMessages, local, func(r *Reader) error {
		switch r.LocalName() {
		case "MessageText":
			return readString(r, &respErr.Message)
		case "ResponseCode":
			return readString(r, &respErr.Code)
		case "DescriptiveLinkKey", "MessageXml":
			return nil
		}
		if class == "Error" {
			return nil
		}
		return fn(r)
	})
	if err != nil {
		return err
	}

	switch class {
	case "Error":
		return respErr
	case "Warning":
		s.Logger.Warn().Str("code", respErr.Code).Msg(respErr.Message)
	}
	return nil
}

func writeItemIDs(w *Writer, ns Namespace, local string, ids []*ItemID) error {
	if err := w.WriteStartElement(ns, local); err != nil {
		return err
	}
	for _, id := range ids {
		if err := id.WriteToXML(w, NamespaceTypes, "ItemId"); err != nil {
			return err
		}
	}
	return w.WriteEndElement()
}

// GetItems fetches items by id.
func (s *Service) GetItems(ctx context.Context, ids []*ItemID, props *PropertySet) ([]ItemObject, error) {
	if props == nil {
		props = NewPropertySet(FirstClassProperties)
	}

	var items []ItemObject
	err := s.do(ctx, "GetItem", "GetItemResponse", func(w *Writer) error {
		if err := w.WriteStartElement(NamespaceMessages, "GetItem"); err != nil {
			return err
		}
		if err := props.WriteToXML(w, "ItemShape"); err != nil {
			return err
		}
		if err := writeItemIDs(w, NamespaceMessages, "ItemIds", ids); err != nil {
			return err
		}
		return w.WriteEndElement()
	}, func(r *Reader) error {
		return s.readResponseMessages(r, "GetItemResponse", func(r *Reader) error {
			if !r.IsStartElement(NamespaceMessages, "Items") {
				return nil
			}
			l, err := ReadServiceObjects(r, NamespaceMessages, "Items", ItemFactory(s), LoadOptions{
				Clear:     true,
				Requested: props,
			})
			items = append(items, l...)
			return err
		})
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

// FindItemsOptions control a FindItems request.
type FindItemsOptions struct {
	// Offset is the index of the first item to return.
	Offset int
	// MaxEntries is the maximum number of items to return. Zero means no
	// limit.
	MaxEntries int
}

// FindItemsResult is a page of items.
type FindItemsResult struct {
	Items []ItemObject
	// Total is the number of items in the folder.
	Total int
	// NextOffset is the offset of the next page.
	NextOffset int
	// MoreAvailable indicates there are items after this page.
	MoreAvailable bool
}

// FindItems lists the items of a folder. Only summary properties are
// returned.
func (s *Service) FindItems(ctx context.Context, folder *FolderID, props *PropertySet, opts *FindItemsOptions) (*FindItemsResult, error) {
	if props == nil {
		props = NewPropertySet(FirstClassProperties)
	}
	if opts == nil {
		opts = &FindItemsOptions{}
	}

	result := &FindItemsResult{}
	err := s.do(ctx, "FindItem", "FindItemResponse", func(w *Writer) error {
		if err := w.WriteStartElement(NamespaceMessages, "FindItem"); err != nil {
			return err
		}
		if err := w.WriteAttributeValue("Traversal", "Shallow"); err != nil {
			return err
		}
		if err := props.WriteToXML(w, "ItemShape"); err != nil {
			return err
		}
		if err := w.WriteStartElement(NamespaceMessages, "IndexedPageItemView"); err != nil {
			return err
		}
		if opts.MaxEntries > 0 {
			if err := w.WriteAttributeValue("MaxEntriesReturned", opts.MaxEntries); err != nil {
				return err
			}
		}
		if err := w.WriteAttributeValue("Offset", opts.Offset); err != nil {
			return err
		}
		if err := w.WriteAttributeValue("BasePoint", "Beginning"); err != nil {
			return err
		}
		if err := w.WriteEndElement(); err != nil {
			return err
		}
		if err := w.WriteStartElement(NamespaceMessages, "ParentFolderIds"); err != nil {
			return err
		}
		if err := folder.writeReference(w); err != nil {
			return err
		}
		if err := w.WriteEndElement(); err != nil {
			return err
		}
		return w.WriteEndElement()
	}, func(r *Reader) error {
		return s.readResponseMessages(r, "FindItemResponse", func(r *Reader) error {
			if !r.IsStartElement(NamespaceMessages, "RootFolder") {
				return nil
			}
			return result.load(r, s, props)
		})
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (result *FindItemsResult) load(r *Reader, s *Service, props *PropertySet) error {
	var err error
	if result.NextOffset, _, err = ReadAttributeValueAs[int](r, "IndexedPagingOffset"); err != nil {
		return err
	}
	if result.Total, _, err = ReadAttributeValueAs[int](r, "TotalItemsInView"); err != nil {
		return err
	}
	last, _, err := ReadAttributeValueAs[bool](r, "IncludesLastItemInRange")
	if err != nil {
		return err
	}
	result.MoreAvailable = !last

	return loadChildren(r, NamespaceMessages, "RootFolder", func(r *Reader) error {
		if !r.IsStartElement(NamespaceTypes, "Items") {
			return nil
		}
		l, err := ReadServiceObjects(r, NamespaceTypes, "Items", ItemFactory(s), LoadOptions{
			Clear:       true,
			Requested:   props,
			SummaryOnly: true,
		})
		result.Items = append(result.Items, l...)
		return err
	})
}

// GetFolder fetches a folder.
func (s *Service) GetFolder(ctx context.Context, id *FolderID, props *PropertySet) (FolderObject, error) {
	if props == nil {
		props = NewPropertySet(FirstClassProperties)
	}

	var folders []FolderObject
	err := s.do(ctx, "GetFolder", "GetFolderResponse", func(w *Writer) error {
		if err := w.WriteStartElement(NamespaceMessages, "GetFolder"); err != nil {
			return err
		}
		if err := props.WriteToXML(w, "FolderShape"); err != nil {
			return err
		}
		if err := w.WriteStartElement(NamespaceMessages, "FolderIds"); err != nil {
			return err
		}
		if err := id.writeReference(w); err != nil {
			return err
		}
		if err := w.WriteEndElement(); err != nil {
			return err
		}
		return w.WriteEndElement()
	}, func(r *Reader) error {
		return s.readResponseMessages(r, "GetFolderResponse", func(r *Reader) error {
			if !r.IsStartElement(NamespaceMessages, "Folders") {
				return nil
			}
			l, err := ReadServiceObjects(r, NamespaceMessages, "Folders", FolderFactory(s), LoadOptions{
				Clear:     true,
				Requested: props,
			})
			folders = append(folders, l...)
			return err
		})
	})
	if err != nil {
		return nil, err
	}
	if len(folders) != 1 {
		return nil, fmt.Errorf("ews: expected exactly one folder in response, got %v", len(folders))
	}
	return folders[0], nil
}

// CreateItems saves new items in a folder. On success, the ids assigned by
// the server are stored in the items and their changes are cleared.
func (s *Service) CreateItems(ctx context.Context, folder *FolderID, items []ItemObject) error {
	hasMeeting := false
	for _, item := range items {
		if item.Kind() == KindCalendarItem {
			hasMeeting = true
		}
	}

	var created []ItemObject
	err := s.do(ctx, "CreateItem", "CreateItemResponse", func(w *Writer) error {
		if err := w.WriteStartElement(NamespaceMessages, "CreateItem"); err != nil {
			return err
		}
		if err := w.WriteAttributeValue("MessageDisposition", "SaveOnly"); err != nil {
			return err
		}
		if hasMeeting {
			if err := w.WriteAttributeValue("SendMeetingInvitations", "SendToNone"); err != nil {
				return err
			}
		}
		if folder != nil {
			if err := w.WriteStartElement(NamespaceMessages, "SavedItemFolderId"); err != nil {
				return err
			}
			if err := folder.writeReference(w); err != nil {
				return err
			}
			if err := w.WriteEndElement(); err != nil {
				return err
			}
		}
		if err := w.WriteStartElement(NamespaceMessages, "Items"); err != nil {
			return err
		}
		for _, item := range items {
			if err := item.WriteToXML(w); err != nil {
				return err
			}
		}
		if err := w.WriteEndElement(); err != nil {
			return err
		}
		return w.WriteEndElement()
	}, func(r *Reader) error {
		return s.readResponseMessages(r, "CreateItemResponse", func(r *Reader) error {
			if !r.IsStartElement(NamespaceMessages, "Items") {
				return nil
			}
			l, err := ReadServiceObjects(r, NamespaceMessages, "Items", ItemFactory(s), LoadOptions{})
			created = append(created, l...)
			return err
		})
	})
	if err != nil {
		return err
	}

	if len(created) != len(items) {
		return fmt.Errorf("ews: expected %v created items in response, got %v", len(items), len(created))
	}
	for i, item := range items {
		item.Properties().load(PropItemID, created[i].BaseItem().ID())
		item.Properties().ClearChanges()
	}
	return nil
}

// UpdateItem sends the changes made to an item. On success, the new change
// key is stored in the item and its changes are cleared.
func (s *Service) UpdateItem(ctx context.Context, item ItemObject) error {
	id := item.BaseItem().ID()
	if id == nil {
		return newError(ErrKindInvalidValue, PropItemID.name, "item has no id")
	}
	if v, ok := item.(validator); ok {
		if err := v.Validate(); err != nil {
			return err
		}
	}

	var updated []ItemObject
	err := s.do(ctx, "UpdateItem", "UpdateItemResponse", func(w *Writer) error {
		if err := w.WriteStartElement(NamespaceMessages, "UpdateItem"); err != nil {
			return err
		}
		if err := w.WriteAttributeValue("ConflictResolution", "AutoResolve"); err != nil {
			return err
		}
		if err := w.WriteAttributeValue("MessageDisposition", "SaveOnly"); err != nil {
			return err
		}
		if item.Kind() == KindCalendarItem {
			if err := w.WriteAttributeValue("SendMeetingInvitationsOrCancellations", "SendToNone"); err != nil {
				return err
			}
		}
		if err := w.WriteStartElement(NamespaceMessages, "ItemChanges"); err != nil {
			return err
		}
		if err := w.WriteStartElement(NamespaceTypes, "ItemChange"); err != nil {
			return err
		}
		if err := id.WriteToXML(w, NamespaceTypes, "ItemId"); err != nil {
			return err
		}
		if err := w.WriteStartElement(NamespaceTypes, "Updates"); err != nil {
			return err
		}
		err := item.Properties().WriteUpdatesToXML(w, UpdateNames{
			Object: item.XMLElementName(),
			Set:    "SetItemField",
			Delete: "DeleteItemField",
		})
		if err != nil {
			return err
		}
		for i := 0; i < 4; i++ {
			if err := w.WriteEndElement(); err != nil {
				return err
			}
		}
		return nil
	}, func(r *Reader) error {
		return s.readResponseMessages(r, "UpdateItemResponse", func(r *Reader) error {
			if !r.IsStartElement(NamespaceMessages, "Items") {
				return nil
			}
			l, err := ReadServiceObjects(r, NamespaceMessages, "Items", ItemFactory(s), LoadOptions{})
			updated = append(updated, l...)
			return err
		})
	})
	if err != nil {
		return err
	}

	if len(updated) == 1 {
		if newID := updated[0].BaseItem().ID(); newID != nil {
			item.Properties().load(PropItemID, newID)
		}
	}
	item.Properties().ClearChanges()
	return nil
}

// GetUserAvailability fetches the free/busy view and working hours of a set
// of mailboxes over a time window.
func (s *Service) GetUserAvailability(ctx context.Context, mailboxes []string, start, end time.Time) ([]*Availability, error) {
	var l []*Availability
	err := s.do(ctx, "GetUserAvailability", "GetUserAvailabilityResponse", func(w *Writer) error {
		return writeAvailabilityRequest(w, mailboxes, start, end)
	}, func(r *Reader) error {
		return loadChildren(r, NamespaceMessages, "GetUserAvailabilityResponse", func(r *Reader) error {
			if !r.IsStartElement(NamespaceMessages, "FreeBusyResponseArray") {
				return nil
			}
			return loadChildren(r, NamespaceMessages, "FreeBusyResponseArray", func(r *Reader) error {
				if !r.IsStartElement(NamespaceMessages, "FreeBusyResponse") {
					return nil
				}
				av := &Availability{}
				err := loadChildren(r, NamespaceMessages, "FreeBusyResponse", func(r *Reader) error {
					switch r.LocalName() {
					case "ResponseMessage":
						return s.readResponseMessage(r, "ResponseMessage", func(r *Reader) error {
							return nil
						})
					case "FreeBusyView":
						return av.LoadFromXML(r, "FreeBusyView")
					}
					return nil
				})
				if err != nil {
					return err
				}
				l = append(l, av)
				return nil
			})
		})
	})
	if err != nil {
		return nil, err
	}
	return l, nil
}

func writeAvailabilityRequest(w *Writer, mailboxes []string, start, end time.Time) error {
	if err := w.WriteStartElement(NamespaceMessages, "GetUserAvailabilityRequest"); err != nil {
		return err
	}

	// Times are sent in UTC, expressed as a time zone without bias.
	if err := w.WriteStartElement(NamespaceTypes, "TimeZone"); err != nil {
		return err
	}
	if err := w.WriteElementValue(NamespaceTypes, "Bias", 0); err != nil {
		return err
	}
	for _, local := range []string{"StandardTime", "DaylightTime"} {
		if err := w.WriteStartElement(NamespaceTypes, local); err != nil {
			return err
		}
		if err := w.WriteElementValue(NamespaceTypes, "Bias", 0); err != nil {
			return err
		}
		if err := w.WriteElementValue(NamespaceTypes, "Time", "00:00:00"); err != nil {
			return err
		}
		if err := w.WriteElementValue(NamespaceTypes, "DayOrder", 0); err != nil {
			return err
		}
		if err := w.WriteElementValue(NamespaceTypes, "Month", 0); err != nil {
			return err
		}
		if err := w.WriteElementValue(NamespaceTypes, "DayOfWeek", Sunday); err != nil {
			return err
		}
		if err := w.WriteEndElement(); err != nil {
			return err
		}
	}
	if err := w.WriteEndElement(); err != nil {
		return err
	}

	if err := w.WriteStartElement(NamespaceMessages, "MailboxDataArray"); err != nil {
		return err
	}
	for _, mailbox := range mailboxes {
		if err := w.WriteStartElement(NamespaceTypes, "MailboxData"); err != nil {
			return err
		}
		if err := w.WriteStartElement(NamespaceTypes, "Email"); err != nil {
			return err
		}
		if err := w.WriteElementValue(NamespaceTypes, "Address", mailbox); err != nil {
			return err
		}
		if err := w.WriteEndElement(); err != nil {
			return err
		}
		if err := w.WriteElementValue(NamespaceTypes, "AttendeeType", "Required"); err != nil {
			return err
		}
		if err := w.WriteEndElement(); err != nil {
			return err
		}
	}
	if err := w.WriteEndElement(); err != nil {
		return err
	}

	if err := w.WriteStartElement(NamespaceTypes, "FreeBusyViewOptions"); err != nil {
		return err
	}
	if err := w.WriteStartElement(NamespaceTypes, "TimeWindow"); err != nil {
		return err
	}
	if err := w.WriteElementValue(NamespaceTypes, "StartTime", start.UTC()); err != nil {
		return err
	}
	if err := w.WriteElementValue(NamespaceTypes, "EndTime", end.UTC()); err != nil {
		return err
	}
	if err := w.WriteEndElement(); err != nil {
		return err
	}
	if err := w.WriteElementValue(NamespaceTypes, "RequestedView", "DetailedMerged"); err != nil {
		return err
	}
	if err := w.WriteEndElement(); err != nil {
		return err
	}

	return w.WriteEndElement()
}
