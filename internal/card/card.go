package card

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"
)

var (
	// ErrNameRequired is returned by Validate when a card has no name.
	ErrNameRequired = errors.New("card name is required")
	// ErrInvalidUTF8 is returned by Validate when a field is not valid UTF-8.
	// Such text cannot be written to a document unchanged.
	ErrInvalidUTF8 = errors.New("card text must be valid UTF-8")
)

// Card represents a single Magic: The Gathering card
type Card struct {
	Name              string   // Unique name, also the key in a collection
	ConvertedManaCost string   // Kept verbatim (e.g. "2WW"), never parsed
	Color             string   // Free-form (e.g. "Red", "Multicolor")
	Keywords          []string // Ordered, may be empty, duplicates kept
	Type              string   // Free-form (e.g. "Creature — Elf")
	Text              string   // Rules text, may be empty
	Legality          []string // Format names; nil means not recorded
}

// Validate checks the fields a card cannot be stored without.
func (c Card) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrNameRequired
	}
	for _, f := range []struct {
		name  string
		value string
	}{
		{FieldName, c.Name},
		{FieldCCM, c.ConvertedManaCost},
		{FieldColor, c.Color},
		{FieldType, c.Type},
		{FieldText, c.Text},
	} {
		if !utf8.ValidString(f.value) {
			return fmt.Errorf("%s: %w", f.name, ErrInvalidUTF8)
		}
	}
	for _, list := range []struct {
		name   string
		values []string
	}{
		{FieldKeywords, c.Keywords},
		{FieldLegality, c.Legality},
	} {
		for _, v := range list.values {
			if !utf8.ValidString(v) {
				return fmt.Errorf("%s: %w", list.name, ErrInvalidUTF8)
			}
		}
	}
	return nil
}

// HasLegality reports whether legality has been recorded for the card at all.
func (c Card) HasLegality() bool {
	return c.Legality != nil
}

// Clone returns a deep copy. Keywords are always non-nil in the copy, while a
// nil Legality stays nil.
func (c Card) Clone() Card {
	out := c
	out.Keywords = make([]string, len(c.Keywords))
	copy(out.Keywords, c.Keywords)
	if c.Legality != nil {
		out.Legality = make([]string, len(c.Legality))
		copy(out.Legality, c.Legality)
	}
	return out
}

// Equal compares two cards field by field. An unrecorded legality is not
// equal to an empty one.
func (c Card) Equal(other Card) bool {
	if c.Name != other.Name ||
		c.ConvertedManaCost != other.ConvertedManaCost ||
		c.Color != other.Color ||
		c.Type != other.Type ||
		c.Text != other.Text {
		return false
	}
	if !slices.Equal(c.Keywords, other.Keywords) {
		return false
	}
	if (c.Legality == nil) != (other.Legality == nil) {
		return false
	}
	return slices.Equal(c.Legality, other.Legality)
}

// IsLegalIn reports whether format appears in the card's legality list.
func (c Card) IsLegalIn(format string) bool {
	for _, f := range c.Legality {
		if strings.EqualFold(f, format) {
			return true
		}
	}
	return false
}

func (c Card) String() string {
	legality := "not recorded"
	if c.Legality != nil {
		legality = strings.Join(c.Legality, ", ")
	}
	return fmt.Sprintf("%s (ccm %s, %s, %s) keywords=[%s] legality=[%s]",
		c.Name, c.ConvertedManaCost, c.Color, c.Type, strings.Join(c.Keywords, ", "), legality)
}
