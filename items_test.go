package ews

import (
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

const mimeMessage = `<t:Message xmlns:t="` + typesURI + `">
  <t:MimeContent CharacterSet="UTF-8">RnJvbTogQWxpY2UgPGFsaWNlQGV4YW1wbGUub3JnPg0KVG86IGJvYkBleGFtcGxlLm9yZw0KU3ViamVjdDogUXVhcnRlcmx5IHJlcG9ydA0KQ29udGVudC1UeXBlOiB0ZXh0L3BsYWluOyBjaGFyc2V0PXV0Zi04DQoNCk51bWJlcnMgYXR0YWNoZWQuDQo=</t:MimeContent>
  <t:ItemId Id="AAMkMime" ChangeKey="CQAA"/>
  <t:Subject>Quarterly report</t:Subject>
  <t:From>
    <t:Mailbox>
      <t:Name>Alice</t:Name>
      <t:EmailAddress>alice@example.org</t:EmailAddress>
    </t:Mailbox>
  </t:From>
</t:Message>`

func TestEmailMessage_MIMEReader(t *testing.T) {
	msg := NewEmailMessage(nil)
	require.NoError(t, msg.LoadFromXML(newTestReader(mimeMessage), LoadOptions{}))

	require.Equal(t, "Quarterly report", msg.Subject())
	require.Equal(t, "alice@example.org", msg.From().Address)
	require.Equal(t, "UTF-8", msg.MimeContent().CharacterSet)

	mr, err := msg.MIMEReader()
	require.NoError(t, err)
	defer mr.Close()

	subject, err := mr.Header.Subject()
	require.NoError(t, err)
	require.Equal(t, "Quarterly report", subject)

	from, err := mr.Header.AddressList("From")
	require.NoError(t, err)
	require.Len(t, from, 1)
	require.Equal(t, "alice@example.org", from[0].Address)

	p, err := mr.NextPart()
	require.NoError(t, err)
	b, err := io.ReadAll(p.Body)
	require.NoError(t, err)
	require.Equal(t, "Numbers attached.\r\n", string(b))
}

func TestEmailMessage_MIMEReader_notLoaded(t *testing.T) {
	msg := NewEmailMessage(nil)
	_, err := msg.MIMEReader()
	require.Error(t, err)
}
