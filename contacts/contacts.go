// Package contacts converts EWS contacts to and from vCards.
//
// vCard is defined in RFC 6350.
package contacts

import (
	"fmt"
	"strings"
	"time"

	"github.com/emersion/go-vcard"

	"github.com/emersion/go-ews"
)

var phoneTypes = []struct {
	key   string
	types []string
}{
	{"BusinessPhone", []string{vcard.TypeWork, vcard.TypeVoice}},
	{"HomePhone", []string{vcard.TypeHome, vcard.TypeVoice}},
	{"MobilePhone", []string{vcard.TypeCell}},
	{"BusinessFax", []string{vcard.TypeWork, vcard.TypeFax}},
	{"HomeFax", []string{vcard.TypeHome, vcard.TypeFax}},
	{"Pager", []string{vcard.TypePager}},
	{"OtherTelephone", nil},
}

var addressTypes = []struct {
	key string
	typ string
}{
	{"Business", vcard.TypeWork},
	{"Home", vcard.TypeHome},
	{"Other", ""},
}

var emailKeys = []string{"EmailAddress1", "EmailAddress2", "EmailAddress3"}

const birthdayLayout = "20060102"

// ToCard converts a contact to a vCard 4.0.
func ToCard(c *ews.Contact) (vcard.Card, error) {
	card := make(vcard.Card)

	if id := c.ID(); id != nil && id.ID != "" {
		card.SetValue(vcard.FieldUID, id.ID)
	}

	fn := c.DisplayName()
	if fn == "" {
		fn = c.FileAs()
	}
	if fn == "" {
		fn = strings.TrimSpace(c.GivenName() + " " + c.Surname())
	}
	if fn == "" {
		return nil, fmt.Errorf("contacts: contact has no name")
	}
	card.SetValue(vcard.FieldFormattedName, fn)

	card.SetName(&vcard.Name{
		Field:          &vcard.Field{Params: make(vcard.Params)},
		FamilyName:     c.Surname(),
		GivenName:      c.GivenName(),
		AdditionalName: c.MiddleName(),
	})
	if s := c.Nickname(); s != "" {
		card.SetValue(vcard.FieldNickname, s)
	}
	if company, department := c.CompanyName(), c.Department(); company != "" || department != "" {
		org := company
		if department != "" {
			org += ";" + department
		}
		card.SetValue(vcard.FieldOrganization, org)
	}
	if s := c.JobTitle(); s != "" {
		card.SetValue(vcard.FieldTitle, s)
	}
	if s := c.BusinessHomePage(); s != "" {
		card.SetValue(vcard.FieldURL, s)
	}
	if t := c.Birthday(); !t.IsZero() {
		card.SetValue(vcard.FieldBirthday, t.Format(birthdayLayout))
	}

	if d := c.EmailAddresses(); d != nil {
		for i, key := range emailKeys {
			addr, ok := d.Get(key)
			if !ok || addr == "" {
				continue
			}
			field := &vcard.Field{Value: addr, Params: make(vcard.Params)}
			if i == 0 {
				field.Params.Set(vcard.ParamPreferred, "1")
			}
			card.Add(vcard.FieldEmail, field)
		}
	}

	if d := c.PhoneNumbers(); d != nil {
		for _, pt := range phoneTypes {
			number, ok := d.Get(pt.key)
			if !ok || number == "" {
				continue
			}
			field := &vcard.Field{Value: number, Params: make(vcard.Params)}
			for _, t := range pt.types {
				field.Params.Add(vcard.ParamType, t)
			}
			card.Add(vcard.FieldTelephone, field)
		}
	}

	if d := c.PhysicalAddresses(); d != nil {
		for _, at := range addressTypes {
			addr, ok := d.Get(at.key)
			if !ok {
				continue
			}
			va := &vcard.Address{
				Field:         &vcard.Field{Params: make(vcard.Params)},
				StreetAddress: addr.Street,
				Locality:      addr.City,
				Region:        addr.State,
				PostalCode:    addr.PostalCode,
				Country:       addr.CountryOrRegion,
			}
			if at.typ != "" {
				va.Params.Set(vcard.ParamType, at.typ)
			}
			card.AddAddress(va)
		}
	}

	vcard.ToV4(card)
	return card, nil
}

// FromCard converts a vCard to a new contact bound to s. s may be nil.
func FromCard(s *ews.Service, card vcard.Card) (*ews.Contact, error) {
	c := ews.NewContact(s)

	fn := card.PreferredValue(vcard.FieldFormattedName)
	if n := card.Name(); n != nil {
		if n.GivenName != "" {
			c.SetGivenName(n.GivenName)
		}
		if n.FamilyName != "" {
			c.SetSurname(n.FamilyName)
		}
		if n.AdditionalName != "" {
			c.SetMiddleName(n.AdditionalName)
		}
		if fn == "" {
			fn = strings.TrimSpace(n.GivenName + " " + n.FamilyName)
		}
	}
	if fn == "" {
		return nil, fmt.Errorf("contacts: card has no name")
	}
	c.SetDisplayName(fn)
	c.SetFileAs(fn)

	if v := card.Value(vcard.FieldNickname); v != "" {
		c.SetNickname(v)
	}
	if v := card.Value(vcard.FieldOrganization); v != "" {
		company, department, _ := strings.Cut(v, ";")
		if company != "" {
			c.SetCompanyName(company)
		}
		if department != "" {
			c.SetDepartment(department)
		}
	}
	if v := card.Value(vcard.FieldTitle); v != "" {
		c.SetJobTitle(v)
	}
	if v := card.Value(vcard.FieldURL); v != "" {
		c.SetBusinessHomePage(v)
	}
	if v := card.Value(vcard.FieldBirthday); v != "" {
		t, err := parseBirthday(v)
		if err != nil {
			return nil, err
		}
		c.SetBirthday(t)
	}

	if fields := card[vcard.FieldEmail]; len(fields) > 0 {
		d := ews.NewStringDictionary()
		for i, field := range fields {
			if i >= len(emailKeys) {
				break
			}
			d.Set(emailKeys[i], field.Value)
		}
		c.SetEmailAddresses(d)
	}

	if fields := card[vcard.FieldTelephone]; len(fields) > 0 {
		d := ews.NewStringDictionary()
		for _, field := range fields {
			key := phoneKey(field.Params)
			if _, ok := d.Get(key); ok {
				continue
			}
			d.Set(key, field.Value)
		}
		c.SetPhoneNumbers(d)
	}

	if addrs := card.Addresses(); len(addrs) > 0 {
		d := ews.NewPhysicalAddressDictionary()
		for _, va := range addrs {
			key := "Other"
			if hasType(va.Params, vcard.TypeWork) {
				key = "Business"
			} else if hasType(va.Params, vcard.TypeHome) {
				key = "Home"
			}
			if _, ok := d.Get(key); ok {
				continue
			}
			d.Set(key, &ews.PhysicalAddress{
				Street:          va.StreetAddress,
				City:            va.Locality,
				State:           va.Region,
				PostalCode:      va.PostalCode,
				CountryOrRegion: va.Country,
			})
		}
		c.SetPhysicalAddresses(d)
	}

	return c, nil
}

func hasType(params vcard.Params, t string) bool {
	for _, typ := range params.Types() {
		if strings.EqualFold(typ, t) {
			return true
		}
	}
	return false
}

func phoneKey(params vcard.Params) string {
	switch {
	case hasType(params, vcard.TypeCell):
		return "MobilePhone"
	case hasType(params, vcard.TypePager):
		return "Pager"
	case hasType(params, vcard.TypeFax) && hasType(params, vcard.TypeHome):
		return "HomeFax"
	case hasType(params, vcard.TypeFax):
		return "BusinessFax"
	case hasType(params, vcard.TypeWork):
		return "BusinessPhone"
	case hasType(params, vcard.TypeHome):
		return "HomePhone"
	}
	return "OtherTelephone"
}

func parseBirthday(s string) (time.Time, error) {
	for _, layout := range []string{birthdayLayout, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("contacts: invalid birthday %q", s)
}
