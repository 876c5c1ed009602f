package contacts

import (
	"fmt"
	"strings"

	"github.com/emersion/go-vcard"
)

// MatchType is the comparison applied by a TextMatch.
type MatchType string

const (
	MatchEquals     MatchType = "equals"
	MatchContains   MatchType = "contains"
	MatchStartsWith MatchType = "starts-with"
	MatchEndsWith   MatchType = "ends-with"
)

// TextMatch matches the values of a vCard property against a text.
type TextMatch struct {
	// Field is the property name, such as vcard.FieldEmail.
	Field           string
	Text            string
	MatchType       MatchType
	NegateCondition bool
}

// ParseTextMatch parses a match written as "FIELD=text" (equals) or
// "FIELD~text" (contains).
func ParseTextMatch(s string) (TextMatch, error) {
	if i := strings.IndexAny(s, "=~"); i > 0 {
		m := TextMatch{Field: strings.ToUpper(s[:i]), Text: s[i+1:], MatchType: MatchContains}
		if s[i] == '=' {
			m.MatchType = MatchEquals
		}
		return m, nil
	}
	return TextMatch{}, fmt.Errorf("contacts: invalid match %q", s)
}

// Filter returns the cards matching all the provided text matches.
func Filter(cards []vcard.Card, matches ...TextMatch) ([]vcard.Card, error) {
	if len(matches) == 0 {
		return cards, nil
	}

	var out []vcard.Card
	for _, card := range cards {
		ok, err := Match(card, matches...)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, card)
		}
	}
	return out, nil
}

// Match reports whether a card matches all the provided text matches. A match
// succeeds if any value of its property matches.
func Match(card vcard.Card, matches ...TextMatch) (bool, error) {
	for _, m := range matches {
		matched := false
		for _, field := range card[m.Field] {
			ok, err := matchTextMatch(m, field)
			if err != nil {
				return false, err
			}
			if ok {
				matched = true
				break
			}
		}
		if !matched {
			return false, nil
		}
	}
	return true, nil
}

func matchTextMatch(txt TextMatch, field *vcard.Field) (bool, error) {
	var ok bool
	switch txt.MatchType {
	default:
		return false, fmt.Errorf("contacts: unknown text match type %q", txt.MatchType)

	case MatchEquals:
		ok = txt.Text == field.Value

	case MatchContains, "":
		ok = strings.Contains(field.Value, txt.Text)

	case MatchStartsWith:
		ok = strings.HasPrefix(field.Value, txt.Text)

	case MatchEndsWith:
		ok = strings.HasSuffix(field.Value, txt.Text)
	}

	if txt.NegateCondition {
		ok = !ok
	}
	return ok, nil
}
