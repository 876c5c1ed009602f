// Package ews provides a client for Exchange Web Services.
//
// At its core is a streaming XML object-mapping engine: a forward-only cursor
// (Reader), a versioned property schema registry and a factory turning EWS
// element names into typed service objects.
package ews

import (
	"encoding/xml"
	"fmt"
)

// Version is an EWS protocol version, as sent in the RequestServerVersion
// SOAP header.
type Version int

const (
	Exchange2007SP1 Version = iota
	Exchange2010
	Exchange2010SP1
	Exchange2010SP2
	Exchange2013
	Exchange2013SP1
)

var versionNames = []string{
	Exchange2007SP1: "Exchange2007_SP1",
	Exchange2010:    "Exchange2010",
	Exchange2010SP1: "Exchange2010_SP1",
	Exchange2010SP2: "Exchange2010_SP2",
	Exchange2013:    "Exchange2013",
	Exchange2013SP1: "Exchange2013_SP1",
}

// ParseVersion parses a RequestServerVersion value.
func ParseVersion(s string) (Version, error) {
	for v, name := range versionNames {
		if name == s {
			return Version(v), nil
		}
	}
	return 0, fmt.Errorf("ews: unknown version %q", s)
}

// String formats the version.
func (v Version) String() string {
	if v < 0 || int(v) >= len(versionNames) {
		panic("ews: invalid Version value")
	}
	return versionNames[v]
}

func (v Version) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

func (v *Version) UnmarshalText(b []byte) error {
	parsed, err := ParseVersion(string(b))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// Namespace is one of the fixed XML namespaces used by EWS documents.
type Namespace int

const (
	NamespaceNone Namespace = iota
	NamespaceTypes
	NamespaceMessages
	NamespaceErrors
	NamespaceSOAP
	NamespaceXMLSchemaInstance
)

var namespaces = []struct {
	prefix, uri string
}{
	NamespaceNone:              {"", ""},
	NamespaceTypes:             {"t", "http://schemas.microsoft.com/exchange/services/2006/types"},
	NamespaceMessages:          {"m", "http://schemas.microsoft.com/exchange/services/2006/messages"},
	NamespaceErrors:            {"e", "http://schemas.microsoft.com/exchange/services/2006/errors"},
	NamespaceSOAP:              {"soap", "http://schemas.xmlsoap.org/soap/envelope/"},
	NamespaceXMLSchemaInstance: {"xsi", "http://www.w3.org/2001/XMLSchema-instance"},
}

// Prefix returns the conventional prefix of the namespace.
func (ns Namespace) Prefix() string {
	return namespaces[ns].prefix
}

// URI returns the namespace URI.
func (ns Namespace) URI() string {
	return namespaces[ns].uri
}

// Name returns the qualified name of a local name in this namespace.
func (ns Namespace) Name(local string) QName {
	return QName{Local: local, Space: ns.URI(), Prefix: ns.Prefix()}
}

// QName is a qualified XML name.
type QName struct {
	Local  string
	Space  string
	Prefix string
}

// Match reports whether two names designate the same element. EWS documents
// are not always strictly qualified, so either the prefixes or the namespace
// URIs need to agree.
func (n QName) Match(other QName) bool {
	if n.Local != other.Local {
		return false
	}
	return n.Prefix == other.Prefix || n.Space == other.Space
}

// XMLName converts the name to an encoding/xml name.
func (n QName) XMLName() xml.Name {
	return xml.Name{Space: n.Space, Local: n.Local}
}

func (n QName) String() string {
	if n.Prefix != "" {
		return n.Prefix + ":" + n.Local
	}
	if n.Space != "" {
		return "{" + n.Space + "}" + n.Local
	}
	return n.Local
}
