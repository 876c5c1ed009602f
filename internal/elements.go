package internal

import (
	"encoding/xml"
	"fmt"
)

const (
	NamespaceSOAP   = "http://schemas.xmlsoap.org/soap/envelope/"
	NamespaceErrors = "http://schemas.microsoft.com/exchange/services/2006/errors"
)

// FaultEnvelope is a SOAP envelope holding a fault, as sent by the server
// along with a 500 status.
type FaultEnvelope struct {
	XMLName xml.Name `xml:"http://schemas.xmlsoap.org/soap/envelope/ Envelope"`
	Body    struct {
		Fault *Fault `xml:"http://schemas.xmlsoap.org/soap/envelope/ Fault"`
	} `xml:"http://schemas.xmlsoap.org/soap/envelope/ Body"`
}

// Fault is a SOAP fault.
type Fault struct {
	XMLName xml.Name    `xml:"http://schemas.xmlsoap.org/soap/envelope/ Fault"`
	Code    string      `xml:"faultcode"`
	String  string      `xml:"faultstring"`
	Actor   string      `xml:"faultactor,omitempty"`
	Detail  FaultDetail `xml:"detail"`
}

// FaultDetail holds the EWS-specific details of a fault.
type FaultDetail struct {
	ResponseCode string `xml:"http://schemas.microsoft.com/exchange/services/2006/errors ResponseCode"`
	Message      string `xml:"http://schemas.microsoft.com/exchange/services/2006/errors Message"`
}

func (f *Fault) Error() string {
	s := fmt.Sprintf("ews: SOAP fault %v: %v", f.Code, f.String)
	if f.Detail.ResponseCode != "" {
		s += fmt.Sprintf(" (%v)", f.Detail.ResponseCode)
	}
	return s
}
