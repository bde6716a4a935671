package card

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Field names used in card documents. Casing matches the documents written by
// earlier versions of the catalog and must not change.
const (
	FieldName     = "name"
	FieldCCM      = "ccm"
	FieldColor    = "color"
	FieldKeywords = "keywords"
	FieldType     = "type"
	FieldText     = "text"
	FieldLegality = "legality"

	// legacy spellings, accepted on decode only
	FieldDetails       = "details"
	FieldCCMUpper      = "CCM"
	FieldKeywordSingle = "keyword"
)

var errNotObject = errors.New("card must be a JSON object")

// wireCard is the canonical shape written to documents and API responses.
type wireCard struct {
	Name     string    `json:"name"`
	CCM      string    `json:"ccm"`
	Color    string    `json:"color"`
	Keywords []string  `json:"keywords"`
	Type     string    `json:"type"`
	Text     string    `json:"text"`
	Legality *[]string `json:"legality,omitempty"`
}

// MarshalJSON writes the canonical card shape. Legality is omitted when not
// recorded and written as [] when recorded but empty.
func (c Card) MarshalJSON() ([]byte, error) {
	w := wireCard{
		Name:     c.Name,
		CCM:      c.ConvertedManaCost,
		Color:    c.Color,
		Keywords: c.Keywords,
		Type:     c.Type,
		Text:     c.Text,
	}
	if w.Keywords == nil {
		w.Keywords = []string{}
	}
	if c.Legality != nil {
		legality := c.Legality
		w.Legality = &legality
	}
	return json.Marshal(w)
}

// UnmarshalJSON reads the canonical shape as well as the older variants found
// in existing documents: a nested "details" object, "CCM" and "keyword"
// spellings, and legality given as a single string.
func (c *Card) UnmarshalJSON(b []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(b, &fields); err != nil {
		return errNotObject
	}
	if fields == nil {
		return errNotObject
	}
	if raw, ok := fields[FieldDetails]; ok {
		var details map[string]json.RawMessage
		if err := json.Unmarshal(raw, &details); err != nil || details == nil {
			return fmt.Errorf("%s: %w", FieldDetails, errNotObject)
		}
		delete(fields, FieldDetails)
		for k, v := range details {
			if _, exists := fields[k]; !exists {
				fields[k] = v
			}
		}
	}

	var out Card
	if err := decodeString(fields, &out.Name, FieldName); err != nil {
		return err
	}
	if err := decodeString(fields, &out.ConvertedManaCost, FieldCCM, FieldCCMUpper); err != nil {
		return err
	}
	if err := decodeString(fields, &out.Color, FieldColor); err != nil {
		return err
	}
	if err := decodeString(fields, &out.Type, FieldType); err != nil {
		return err
	}
	if err := decodeString(fields, &out.Text, FieldText); err != nil {
		return err
	}
	keywords, err := decodeList(fields, FieldKeywords, FieldKeywordSingle)
	if err != nil {
		return err
	}
	if keywords == nil {
		keywords = []string{}
	}
	out.Keywords = keywords
	if out.Legality, err = decodeList(fields, FieldLegality); err != nil {
		return err
	}
	*c = out
	return nil
}

// lookup returns the raw value of the first of keys present in fields.
func lookup(fields map[string]json.RawMessage, keys ...string) (string, json.RawMessage, bool) {
	for _, k := range keys {
		if raw, ok := fields[k]; ok {
			return k, raw, true
		}
	}
	return "", nil, false
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func decodeString(fields map[string]json.RawMessage, dst *string, keys ...string) error {
	key, raw, ok := lookup(fields, keys...)
	if !ok || isNull(raw) {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("%s: must be a string", key)
	}
	return nil
}

// decodeList decodes an array of strings. A bare string is accepted and split
// on commas. Absent or null yields nil.
func decodeList(fields map[string]json.RawMessage, keys ...string) ([]string, error) {
	key, raw, ok := lookup(fields, keys...)
	if !ok || isNull(raw) {
		return nil, nil
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		if list == nil {
			list = []string{}
		}
		return list, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("%s: must be an array of strings", key)
	}
	return SplitList(s), nil
}

// SplitList splits a comma separated list, trimming space and dropping empty
// parts. The result is never nil.
func SplitList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
