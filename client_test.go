package ews

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

type testRequest struct {
	action string
	body   string
}

type testRecorder struct {
	mu       sync.Mutex
	requests []testRequest
}

func (rec *testRecorder) get(i int) testRequest {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	return rec.requests[i]
}

func (rec *testRecorder) len() int {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	return len(rec.requests)
}

// newTestService starts a server answering each request with the SOAP
// envelope returned by handle.
func newTestService(t *testing.T, handle func(action string) (int, string)) (*Service, *testRecorder) {
	t.Helper()

	rec := &testRecorder{}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		action := path.Base(strings.Trim(r.Header.Get("SOAPAction"), `"`))
		rec.mu.Lock()
		rec.requests = append(rec.requests, testRequest{action: action, body: string(b)})
		rec.mu.Unlock()

		code, body := handle(action)
		w.Header().Set("Content-Type", "text/xml; charset=utf-8")
		w.WriteHeader(code)
		io.WriteString(w, body)
	}))
	t.Cleanup(ts.Close)

	s, err := NewService(ts.Client(), ts.URL, Exchange2013)
	require.NoError(t, err)
	return s, rec
}

func soapEnvelope(body string) string {
	return `<?xml version="1.0" encoding="utf-8"?>
<s:Envelope xmlns:s="http://schemas.xmlsoap.org/soap/envelope/">
  <s:Header>
    <h:ServerVersionInfo xmlns:h="http://schemas.microsoft.com/exchange/services/2006/types" MajorVersion="15" MinorVersion="0"/>
  </s:Header>
  <s:Body xmlns:m="http://schemas.microsoft.com/exchange/services/2006/messages" xmlns:t="http://schemas.microsoft.com/exchange/services/2006/types">
` + body + `
  </s:Body>
</s:Envelope>`
}

const getItemResponse = `<m:GetItemResponse>
  <m:ResponseMessages>
    <m:GetItemResponseMessage ResponseClass="Success">
      <m:ResponseCode>NoError</m:ResponseCode>
      <m:Items>
        <t:Message>
          <t:ItemId Id="AAMk1" ChangeKey="CK1"/>
          <t:Subject>Hello</t:Subject>
          <t:Body BodyType="HTML">&lt;p&gt;Hi&lt;/p&gt;</t:Body>
        </t:Message>
      </m:Items>
    </m:GetItemResponseMessage>
  </m:ResponseMessages>
</m:GetItemResponse>`

func TestService_GetItems(t *testing.T) {
	s, requests := newTestService(t, func(action string) (int, string) {
		return http.StatusOK, soapEnvelope(getItemResponse)
	})

	success := promRequests.WithLabelValues("GetItem", "success")
	before := testutil.ToFloat64(success)

	items, err := s.GetItems(context.Background(), []*ItemID{{ID: "AAMk1"}}, nil)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, before+1, testutil.ToFloat64(success))

	msg, ok := items[0].(*EmailMessage)
	require.True(t, ok, "items[0] is %T", items[0])
	require.Equal(t, "Hello", msg.Subject())
	require.Equal(t, BodyHTML, msg.Body().Type)
	require.Equal(t, "<p>Hi</p>", msg.Body().Content)
	require.Equal(t, "CK1", msg.ID().ChangeKey)
	require.Same(t, s, msg.Service())
	require.False(t, msg.Properties().IsDirty())

	require.Equal(t, 1, requests.len())
	req := requests.get(0)
	require.Equal(t, "GetItem", req.action)
	require.Contains(t, req.body, `<t:RequestServerVersion Version="Exchange2013">`)
	require.Contains(t, req.body, `<m:GetItem><m:ItemShape><t:BaseShape>AllProperties</t:BaseShape></m:ItemShape>`)
	require.Contains(t, req.body, `<m:ItemIds><t:ItemId Id="AAMk1"></t:ItemId></m:ItemIds>`)
}

func TestService_UpdateItem(t *testing.T) {
	s, requests := newTestService(t, func(action string) (int, string) {
		switch action {
		case "GetItem":
			return http.StatusOK, soapEnvelope(getItemResponse)
		case "UpdateItem":
			return http.StatusOK, soapEnvelope(`<m:UpdateItemResponse>
  <m:ResponseMessages>
    <m:UpdateItemResponseMessage ResponseClass="Success">
      <m:ResponseCode>NoError</m:ResponseCode>
      <m:Items><t:Message><t:ItemId Id="AAMk1" ChangeKey="CK2"/></t:Message></m:Items>
      <m:ConflictResults><t:Count>0</t:Count></m:ConflictResults>
    </m:UpdateItemResponseMessage>
  </m:ResponseMessages>
</m:UpdateItemResponse>`)
		}
		return http.StatusBadRequest, ""
	})

	items, err := s.GetItems(context.Background(), []*ItemID{{ID: "AAMk1"}}, nil)
	require.NoError(t, err)
	msg := items[0].(*EmailMessage)

	msg.SetSubject("Hello again")
	msg.SetIsRead(true)
	require.NoError(t, s.UpdateItem(context.Background(), msg))

	require.Equal(t, "CK2", msg.ID().ChangeKey)
	require.False(t, msg.Properties().IsDirty())
	require.Equal(t, "Hello again", msg.Subject())

	req := requests.get(1)
	require.Equal(t, "UpdateItem", req.action)
	require.Contains(t, req.body, `<t:ItemId Id="AAMk1" ChangeKey="CK1"></t:ItemId>`)
	require.Contains(t, req.body, `<t:SetItemField><t:FieldURI FieldURI="item:Subject"></t:FieldURI>`+
		`<t:Message><t:Subject>Hello again</t:Subject></t:Message></t:SetItemField>`)
	require.Contains(t, req.body, `<t:FieldURI FieldURI="message:IsRead">`)

	require.True(t, IsKind(s.UpdateItem(context.Background(), NewEmailMessage(s)), ErrKindInvalidValue))
}

func TestService_CreateItems(t *testing.T) {
	s, requests := newTestService(t, func(action string) (int, string) {
		return http.StatusOK, soapEnvelope(`<m:CreateItemResponse>
  <m:ResponseMessages>
    <m:CreateItemResponseMessage ResponseClass="Success">
      <m:ResponseCode>NoError</m:ResponseCode>
      <m:Items><t:Task><t:ItemId Id="task1" ChangeKey="c1"/></t:Task></m:Items>
    </m:CreateItemResponseMessage>
  </m:ResponseMessages>
</m:CreateItemResponse>`)
	})

	task := NewTask(s)
	task.SetSubject("Buy milk")
	require.True(t, task.Properties().IsDirty())

	err := s.CreateItems(context.Background(), NewDistinguishedFolderID(FolderTasks), []ItemObject{task})
	require.NoError(t, err)
	require.Equal(t, &ItemID{ID: "task1", ChangeKey: "c1"}, task.ID())
	require.False(t, task.Properties().IsDirty())

	req := requests.get(0)
	require.Equal(t, "CreateItem", req.action)
	require.Contains(t, req.body, `<m:CreateItem MessageDisposition="SaveOnly">`)
	require.Contains(t, req.body, `<t:DistinguishedFolderId Id="tasks"`)
	require.Contains(t, req.body, `<t:Subject>Buy milk</t:Subject>`)
	require.NotContains(t, req.body, "SendMeetingInvitations")
}

func TestService_FindItems(t *testing.T) {
	s, requests := newTestService(t, func(action string) (int, string) {
		return http.StatusOK, soapEnvelope(`<m:FindItemResponse>
  <m:ResponseMessages>
    <m:FindItemResponseMessage ResponseClass="Success">
      <m:ResponseCode>NoError</m:ResponseCode>
      <m:RootFolder IndexedPagingOffset="2" TotalItemsInView="3" IncludesLastItemInRange="false">
        <t:Items>
          <t:Message><t:ItemId Id="a"/><t:Subject>A</t:Subject></t:Message>
          <t:CalendarItem><t:ItemId Id="b"/><t:Subject>B</t:Subject></t:CalendarItem>
        </t:Items>
      </m:RootFolder>
    </m:FindItemResponseMessage>
  </m:ResponseMessages>
</m:FindItemResponse>`)
	})

	result, err := s.FindItems(context.Background(), NewDistinguishedFolderID(FolderInbox), nil, &FindItemsOptions{MaxEntries: 2})
	require.NoError(t, err)
	require.Equal(t, 3, result.Total)
	require.Equal(t, 2, result.NextOffset)
	require.True(t, result.MoreAvailable)
	require.Len(t, result.Items, 2)
	require.Equal(t, KindMessage, result.Items[0].Kind())
	require.Equal(t, KindCalendarItem, result.Items[1].Kind())
	require.Equal(t, "B", result.Items[1].BaseItem().Subject())

	req := requests.get(0)
	require.Contains(t, req.body, `<m:FindItem Traversal="Shallow">`)
	require.Contains(t, req.body, `<m:IndexedPageItemView MaxEntriesReturned="2" Offset="0" BasePoint="Beginning">`)
	require.Contains(t, req.body, `<t:DistinguishedFolderId Id="inbox"`)
}

func TestService_GetFolder(t *testing.T) {
	s, _ := newTestService(t, func(action string) (int, string) {
		return http.StatusOK, soapEnvelope(`<m:GetFolderResponse>
  <m:ResponseMessages>
    <m:GetFolderResponseMessage ResponseClass="Success">
      <m:ResponseCode>NoError</m:ResponseCode>
      <m:Folders>
        <t:CalendarFolder>
          <t:FolderId Id="cal" ChangeKey="fk"/>
          <t:DisplayName>Calendar</t:DisplayName>
          <t:TotalCount>12</t:TotalCount>
        </t:CalendarFolder>
      </m:Folders>
    </m:GetFolderResponseMessage>
  </m:ResponseMessages>
</m:GetFolderResponse>`)
	})

	folder, err := s.GetFolder(context.Background(), NewDistinguishedFolderID(FolderCalendar), nil)
	require.NoError(t, err)
	require.Equal(t, KindCalendarFolder, folder.Kind())
	require.Equal(t, "Calendar", folder.BaseFolder().DisplayName())
	require.Equal(t, 12, folder.BaseFolder().TotalCount())
	require.Equal(t, "fk", folder.BaseFolder().ID().ChangeKey)
}

func TestService_responseError(t *testing.T) {
	s, _ := newTestService(t, func(action string) (int, string) {
		return http.StatusOK, soapEnvelope(`<m:GetItemResponse>
  <m:ResponseMessages>
    <m:GetItemResponseMessage ResponseClass="Error">
      <m:MessageText>The specified object was not found in the store.</m:MessageText>
      <m:ResponseCode>ErrorItemNotFound</m:ResponseCode>
      <m:DescriptiveLinkKey>0</m:DescriptiveLinkKey>
      <m:Items/>
    </m:GetItemResponseMessage>
  </m:ResponseMessages>
</m:GetItemResponse>`)
	})

	_, err := s.GetItems(context.Background(), []*ItemID{{ID: "gone"}}, nil)
	var respErr *ResponseError
	require.True(t, errors.As(err, &respErr), "GetItems() = %v", err)
	require.Equal(t, "Error", respErr.Class)
	require.Equal(t, "ErrorItemNotFound", respErr.Code)
	require.Equal(t, "The specified object was not found in the store.", respErr.Message)
}

func TestService_fault(t *testing.T) {
	s, _ := newTestService(t, func(action string) (int, string) {
		return http.StatusInternalServerError, `<?xml version="1.0" encoding="utf-8"?>
<s:Envelope xmlns:s="http://schemas.xmlsoap.org/soap/envelope/">
  <s:Body>
    <s:Fault>
      <faultcode xmlns:a="http://schemas.microsoft.com/exchange/services/2006/types">a:ErrorInvalidServerVersion</faultcode>
      <faultstring xml:lang="en-US">The specified server version is invalid.</faultstring>
      <detail>
        <e:ResponseCode xmlns:e="http://schemas.microsoft.com/exchange/services/2006/errors">ErrorInvalidServerVersion</e:ResponseCode>
      </detail>
    </s:Fault>
  </s:Body>
</s:Envelope>`
	})

	_, err := s.GetItems(context.Background(), []*ItemID{{ID: "AAMk1"}}, nil)
	var httpErr *HTTPError
	require.True(t, errors.As(err, &httpErr), "GetItems() = %v", err)
	require.Equal(t, http.StatusInternalServerError, httpErr.Code)

	var fault *Fault
	require.True(t, errors.As(err, &fault), "GetItems() = %v", err)
	require.Equal(t, "ErrorInvalidServerVersion", fault.Detail.ResponseCode)
}

func TestService_GetUserAvailability(t *testing.T) {
	s, requests := newTestService(t, func(action string) (int, string) {
		return http.StatusOK, soapEnvelope(`<m:GetUserAvailabilityResponse>
  <m:FreeBusyResponseArray>
    <m:FreeBusyResponse>
      <m:ResponseMessage ResponseClass="Success"><m:ResponseCode>NoError</m:ResponseCode></m:ResponseMessage>
      <m:FreeBusyView>
        <t:FreeBusyViewType>DetailedMerged</t:FreeBusyViewType>
        <t:MergedFreeBusy>0020</t:MergedFreeBusy>
        <t:CalendarEventArray>
          <t:CalendarEvent>
            <t:StartTime>2024-03-11T09:00:00</t:StartTime>
            <t:EndTime>2024-03-11T09:30:00</t:EndTime>
            <t:BusyType>Tentative</t:BusyType>
          </t:CalendarEvent>
        </t:CalendarEventArray>
      </m:FreeBusyView>
    </m:FreeBusyResponse>
  </m:FreeBusyResponseArray>
</m:GetUserAvailabilityResponse>`)
	})

	start := time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)
	l, err := s.GetUserAvailability(context.Background(), []string{"bob@example.org"}, start, start.Add(24*time.Hour))
	require.NoError(t, err)
	require.Len(t, l, 1)
	require.Equal(t, "DetailedMerged", l[0].ViewType)
	require.Len(t, l[0].Events, 1)
	require.Equal(t, FreeBusyTentative, l[0].Events[0].BusyType)
	require.Nil(t, l[0].WorkingHours)

	req := requests.get(0)
	require.Equal(t, "GetUserAvailability", req.action)
	require.Contains(t, req.body, `<t:Email><t:Address>bob@example.org</t:Address></t:Email>`)
	require.Contains(t, req.body, `<t:StartTime>2024-03-11T00:00:00Z</t:StartTime>`)
}
