package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/emersion/go-ews"
)

// decodeFile reads the service objects held by the first container element
// with the provided local name. "-" reads from stdin.
func decodeFile(path, container string, ns ews.Namespace) ([]ews.ServiceObject, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	xr := ews.NewReader(r)
	if err := xr.ReadToDescendant(ns, container); err != nil {
		return nil, fmt.Errorf("looking for %v container: %w", container, err)
	}
	return ews.ReadServiceObjects(xr, ns, container, ews.ObjectFactory(nil), ews.LoadOptions{})
}

func parseNamespace(s string) (ews.Namespace, error) {
	switch s {
	case "m", "messages":
		return ews.NamespaceMessages, nil
	case "t", "types":
		return ews.NamespaceTypes, nil
	}
	return 0, fmt.Errorf("unknown namespace %q", s)
}

// objectYAML turns an object into an ordered YAML mapping holding the
// properties present in its bag, in schema order.
func objectYAML(obj ews.ServiceObject) yaml.MapSlice {
	props := yaml.MapSlice{}
	bag := obj.Properties()
	for _, def := range obj.Schema().Definitions() {
		v, ok := bag.Get(def)
		if !ok {
			continue
		}
		props = append(props, yaml.MapItem{Key: def.XMLElementName(), Value: valueYAML(v)})
	}
	return yaml.MapSlice{
		{Key: "kind", Value: obj.Kind().String()},
		{Key: "properties", Value: props},
	}
}

func valueYAML(v interface{}) interface{} {
	switch v := v.(type) {
	case *ews.ItemID:
		return v.ID
	case *ews.FolderID:
		if v.Distinguished != "" {
			return v.Distinguished
		}
		return v.ID
	case *ews.Body:
		return v.Content
	case *ews.MimeContent:
		return fmt.Sprintf("<%d bytes>", len(v.Content))
	case *ews.StringList:
		return v.Items()
	case *ews.EmailAddress:
		return v.String()
	case *ews.EmailAddressCollection:
		l := []string{}
		for _, addr := range v.Items() {
			l = append(l, addr.String())
		}
		return l
	case *ews.AttendeeCollection:
		l := []string{}
		for _, a := range v.Items() {
			l = append(l, a.Mailbox.String())
		}
		return l
	case *ews.StringDictionary:
		m := yaml.MapSlice{}
		for _, key := range v.Keys() {
			value, _ := v.Get(key)
			m = append(m, yaml.MapItem{Key: key, Value: value})
		}
		return m
	case *ews.PhysicalAddressDictionary:
		m := yaml.MapSlice{}
		for _, key := range v.Keys() {
			addr, _ := v.Get(key)
			m = append(m, yaml.MapItem{Key: key, Value: addr})
		}
		return m
	case *ews.AttachmentCollection:
		l := []interface{}{}
		for _, a := range v.Items() {
			entry := yaml.MapSlice{{Key: "name", Value: a.Info().Name}}
			if ia, ok := a.(*ews.ItemAttachment); ok && ia.Item() != nil {
				entry = append(entry, yaml.MapItem{Key: "item", Value: objectYAML(ia.Item())})
			}
			l = append(l, entry)
		}
		return l
	case *ews.TimeZoneDefinition:
		if v.Name != "" {
			return v.Name
		}
		return v.ID
	case time.Time:
		return ews.FormatDateTime(v)
	case time.Duration:
		return ews.FormatDuration(v)
	}
	if s, err := ews.FormatValue(v); err == nil {
		return s
	}
	return v
}

func writeYAML(w io.Writer, v interface{}) error {
	b, err := yaml.Marshal(v)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

func dumpObjects(w io.Writer, objs []ews.ServiceObject) error {
	l := make([]yaml.MapSlice, 0, len(objs))
	for _, obj := range objs {
		l = append(l, objectYAML(obj))
	}
	return writeYAML(w, l)
}

func availabilityYAML(mailbox string, av *ews.Availability) yaml.MapSlice {
	events := []yaml.MapSlice{}
	for _, ev := range av.Events {
		events = append(events, yaml.MapSlice{
			{Key: "start", Value: ews.FormatDateTime(ev.StartTime)},
			{Key: "end", Value: ews.FormatDateTime(ev.EndTime)},
			{Key: "status", Value: valueYAML(ev.BusyType)},
		})
	}
	m := yaml.MapSlice{
		{Key: "mailbox", Value: mailbox},
		{Key: "view", Value: av.ViewType},
		{Key: "events", Value: events},
	}
	if wh := av.WorkingHours; wh != nil {
		days := make([]string, 0, len(wh.DaysOfWeek))
		for _, d := range wh.DaysOfWeek {
			days = append(days, fmt.Sprint(valueYAML(d)))
		}
		m = append(m, yaml.MapItem{Key: "working_hours", Value: yaml.MapSlice{
			{Key: "days", Value: strings.Join(days, " ")},
			{Key: "start", Value: wh.StartTime.String()},
			{Key: "end", Value: wh.EndTime.String()},
		}})
	}
	return m
}
