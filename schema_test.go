package ews

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewSchema(t *testing.T) {
	title := NewSimpleProperty[string]("Title", "test:Title", CanSet|CanFind, Exchange2007SP1)
	notes := NewSimpleProperty[string]("Notes", "test:Notes", CanSet|MustBeExplicitlyLoaded, Exchange2007SP1)
	hidden := NewSimpleProperty[string]("Internal", "", CanFind, Exchange2007SP1)

	s, err := NewSchema("Note", ItemSchema, title, notes, hidden, title)
	require.NoError(t, err)
	require.Equal(t, "Note", s.Name())

	defs := s.Definitions()
	require.Len(t, defs, len(ItemSchema.Definitions())+3)
	require.Equal(t, PropItemMimeContent, defs[0])
	require.Equal(t, hidden, defs[len(defs)-1])

	def, ok := s.Lookup("Title")
	require.True(t, ok)
	require.Same(t, title, def)
	require.True(t, s.Contains(PropItemSubject))
	require.False(t, s.Contains(PropMessageIsRead))

	require.Contains(t, s.FirstClassDefinitions(), title)
	require.NotContains(t, s.FirstClassDefinitions(), notes)
	require.NotContains(t, s.FirstClassDefinitions(), PropItemUniqueBody)
	require.Contains(t, s.FirstClassSummaryDefinitions(), hidden)
	require.NotContains(t, s.FirstClassSummaryDefinitions(), PropItemBody)
	require.NotContains(t, s.VisibleDefinitions(), hidden)

	other := NewSimpleProperty[int]("Title", "test:OtherTitle", CanSet, Exchange2007SP1)
	_, err = NewSchema("Broken", s, other)
	require.True(t, IsKind(err, ErrKindRegistrationConflict), "NewSchema() = %v", err)
}

func TestNewRegistry(t *testing.T) {
	a := NewSimpleProperty[string]("A", "test:Shared", CanSet, Exchange2007SP1)
	b := NewSimpleProperty[string]("B", "test:Shared", CanSet, Exchange2007SP1)

	sa, err := NewSchema("SA", nil, a)
	require.NoError(t, err)
	sb, err := NewSchema("SB", nil, b)
	require.NoError(t, err)

	_, err = NewRegistry(sa, sb)
	require.True(t, IsKind(err, ErrKindRegistrationConflict), "NewRegistry() = %v", err)

	// the same definition in two schemas is fine
	sa2, err := NewSchema("SA2", nil, a)
	require.NoError(t, err)
	reg, err := NewRegistry(sa, sa2)
	require.NoError(t, err)
	def, ok := reg.Lookup("test:Shared")
	require.True(t, ok)
	require.Same(t, a, def)
	require.Len(t, reg.Schemas(), 2)
}

func TestDefaultRegistry(t *testing.T) {
	reg := DefaultRegistry()
	require.Same(t, reg, DefaultRegistry())

	for uri, want := range map[string]*PropertyDefinition{
		"item:Subject":             PropItemSubject,
		"message:IsRead":           PropMessageIsRead,
		"calendar:StartTimeZone":   PropAppointmentStartTimeZone,
		"calendar:MeetingTimeZone": PropAppointmentMeetingTimeZone,
		"contacts:DisplayName":     PropContactDisplayName,
		"folder:DisplayName":       PropFolderDisplayName,
		"task:PercentComplete":     PropTaskPercentComplete,
	} {
		def, ok := reg.Lookup(uri)
		require.True(t, ok, "Lookup(%q)", uri)
		require.Same(t, want, def, "Lookup(%q)", uri)
	}

	_, ok := reg.Lookup("item:Nonexistent")
	require.False(t, ok)
}

func TestPropertySet_WriteToXML(t *testing.T) {
	ps := NewPropertySet(IDOnly, PropItemSubject, PropAppointmentStartTimeZone)

	s, err := writeTestXML(t, Exchange2013, func(w *Writer) error {
		return ps.WriteToXML(w, "ItemShape")
	})
	require.NoError(t, err)
	require.Contains(t, s, `<m:ItemShape><t:BaseShape>IdOnly</t:BaseShape><t:AdditionalProperties>`+
		`<t:FieldURI FieldURI="item:Subject"></t:FieldURI>`+
		`<t:FieldURI FieldURI="calendar:StartTimeZone"></t:FieldURI>`+
		`</t:AdditionalProperties></m:ItemShape>`)

	_, err = writeTestXML(t, Exchange2007SP1, func(w *Writer) error {
		return ps.WriteToXML(w, "ItemShape")
	})
	require.True(t, IsKind(err, ErrKindInvalidValue), "WriteToXML() = %v", err)

	s, err = writeTestXML(t, Exchange2007SP1, func(w *Writer) error {
		return NewPropertySet(FirstClassProperties).WriteToXML(w, "FolderShape")
	})
	require.NoError(t, err)
	require.Contains(t, s, `<m:FolderShape><t:BaseShape>AllProperties</t:BaseShape></m:FolderShape>`)
}

func TestPropertySet_definitions(t *testing.T) {
	ps := NewPropertySet(FirstClassProperties, PropItemMimeContent, PropMessageIsRead)

	defs := ps.definitions(AppointmentSchema, false)
	require.Contains(t, defs, PropItemMimeContent)
	require.Contains(t, defs, PropAppointmentStart)
	require.NotContains(t, defs, PropMessageIsRead)

	defs = ps.definitions(AppointmentSchema, true)
	require.NotContains(t, defs, PropItemBody)
	require.Contains(t, defs, PropItemSubject)
}
