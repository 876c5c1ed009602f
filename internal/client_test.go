package internal

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
)

const faultResponse = `<?xml version="1.0" encoding="utf-8"?>
<s:Envelope xmlns:s="http://schemas.xmlsoap.org/soap/envelope/">
  <s:Body>
    <s:Fault>
      <faultcode xmlns:a="http://schemas.microsoft.com/exchange/services/2006/types">a:ErrorSchemaValidation</faultcode>
      <faultstring xml:lang="en-US">The request failed schema validation.</faultstring>
      <detail>
        <e:ResponseCode xmlns:e="http://schemas.microsoft.com/exchange/services/2006/errors">ErrorSchemaValidation</e:ResponseCode>
        <e:Message xmlns:e="http://schemas.microsoft.com/exchange/services/2006/errors">The request failed schema validation.</e:Message>
      </detail>
    </s:Fault>
  </s:Body>
</s:Envelope>`

func TestNewClient_invalidEndpoint(t *testing.T) {
	for _, endpoint := range []string{"", "/EWS/Exchange.asmx", "://"} {
		if _, err := NewClient(nil, endpoint); err == nil {
			t.Errorf("NewClient(%q) returned a nil error", endpoint)
		}
	}
}

func TestClient_NewSOAPRequest(t *testing.T) {
	c, err := NewClient(nil, "https://mail.example.org/EWS/Exchange.asmx")
	if err != nil {
		t.Fatalf("NewClient() = %v", err)
	}
	c.SetBasicAuth("alice", "secret")

	req, err := c.NewSOAPRequest(context.Background(), "GetItem", strings.NewReader("<Envelope/>"))
	if err != nil {
		t.Fatalf("NewSOAPRequest() = %v", err)
	}

	if req.Method != http.MethodPost {
		t.Errorf("Method = %v, want POST", req.Method)
	}
	if got := req.Header.Get("SOAPAction"); !strings.HasSuffix(got, `/messages/GetItem"`) {
		t.Errorf("SOAPAction = %v", got)
	}
	if _, err := uuid.Parse(req.Header.Get("client-request-id")); err != nil {
		t.Errorf("client-request-id is not a UUID: %v", err)
	}
	if username, password, ok := req.BasicAuth(); !ok || username != "alice" || password != "secret" {
		t.Errorf("BasicAuth() = %v, %v, %v", username, password, ok)
	}

	other, err := c.NewSOAPRequest(context.Background(), "GetItem", nil)
	if err != nil {
		t.Fatalf("NewSOAPRequest() = %v", err)
	}
	if other.Header.Get("client-request-id") == req.Header.Get("client-request-id") {
		t.Errorf("client-request-id reused across requests")
	}
}

func TestClient_Do_fault(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/xml; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, faultResponse)
	}))
	defer ts.Close()

	c, err := NewClient(ts.Client(), ts.URL)
	if err != nil {
		t.Fatalf("NewClient() = %v", err)
	}
	req, err := c.NewSOAPRequest(context.Background(), "GetItem", strings.NewReader("<Envelope/>"))
	if err != nil {
		t.Fatalf("NewSOAPRequest() = %v", err)
	}

	_, err = c.Do(req)
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("Do() = %v, want an *HTTPError", err)
	}
	if httpErr.Code != http.StatusInternalServerError {
		t.Errorf("HTTPError.Code = %v, want 500", httpErr.Code)
	}

	var fault *Fault
	if !errors.As(err, &fault) {
		t.Fatalf("Do() = %v, want a *Fault", err)
	}
	if fault.Detail.ResponseCode != "ErrorSchemaValidation" {
		t.Errorf("Fault.Detail.ResponseCode = %q", fault.Detail.ResponseCode)
	}
	if fault.String != "The request failed schema validation." {
		t.Errorf("Fault.String = %q", fault.String)
	}
}

func TestClient_Do_text(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, "  access denied\n")
	}))
	defer ts.Close()

	c, err := NewClient(ts.Client(), ts.URL)
	if err != nil {
		t.Fatalf("NewClient() = %v", err)
	}
	req, err := c.NewSOAPRequest(context.Background(), "GetFolder", nil)
	if err != nil {
		t.Fatalf("NewSOAPRequest() = %v", err)
	}

	_, err = c.Do(req)
	if err == nil {
		t.Fatalf("Do() returned a nil error")
	}
	if want := "401 Unauthorized: access denied"; err.Error() != want {
		t.Errorf("Do() = %q, want %q", err.Error(), want)
	}
}
