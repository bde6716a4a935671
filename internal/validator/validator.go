package validator

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/arcanaland/spellbook/internal/card"
	"github.com/arcanaland/spellbook/internal/store"
)

// ValidationResults lists the problems found in a card document. Errors make
// the document unloadable; warnings point at content that loads but is not in
// the canonical shape.
type ValidationResults struct {
	Cards    int
	Errors   []string
	Warnings []string
}

// Valid reports whether the document can be loaded.
func (r ValidationResults) Valid() bool { return len(r.Errors) == 0 }

type Validator struct {
	Path    string
	Results ValidationResults
}

var knownFields = map[string]bool{
	card.FieldName:          true,
	card.FieldCCM:           true,
	card.FieldColor:         true,
	card.FieldKeywords:      true,
	card.FieldType:          true,
	card.FieldText:          true,
	card.FieldLegality:      true,
	card.FieldDetails:       true,
	card.FieldCCMUpper:      true,
	card.FieldKeywordSingle: true,
}

func NewValidator(path string) *Validator {
	return &Validator{
		Path:    path,
		Results: ValidationResults{},
	}
}

// Validate checks the document at Path. The returned error is set only when
// the file cannot be read at all.
func (v *Validator) Validate() (ValidationResults, error) {
	data, err := os.ReadFile(v.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return v.Results, fmt.Errorf("card document not found: %s", v.Path)
		}
		return v.Results, fmt.Errorf("error reading card document: %w", err)
	}
	v.validateDocument(data)

	// Anything the checks above missed still surfaces here.
	if v.Results.Valid() {
		if _, err := store.Decode(data); err != nil {
			v.errorf("%v", errors.Unwrap(err))
		}
	}
	return v.Results, nil
}

func (v *Validator) errorf(format string, args ...any) {
	v.Results.Errors = append(v.Results.Errors, fmt.Sprintf(format, args...))
}

func (v *Validator) warnf(format string, args ...any) {
	v.Results.Warnings = append(v.Results.Warnings, fmt.Sprintf(format, args...))
}

// validateDocument walks the top-level object entry by entry so every bad card
// is reported, not just the first.
func (v *Validator) validateDocument(data []byte) {
	if len(bytes.TrimSpace(data)) == 0 {
		v.warnf("document is empty")
		return
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		v.errorf("document is not valid JSON: %v", err)
		return
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		v.errorf("document must be a JSON object of cards keyed by name")
		return
	}

	seen := map[string]bool{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			v.errorf("document is not valid JSON: %v", err)
			return
		}
		key := tok.(string)
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			v.errorf("card %q: not valid JSON: %v", key, err)
			return
		}

		if seen[key] {
			v.errorf("duplicate card %q", key)
		}
		seen[key] = true
		v.Results.Cards++

		if strings.TrimSpace(key) == "" {
			v.errorf("card with an empty name")
		}
		v.validateCard(key, raw)
	}
	if _, err := dec.Token(); err != nil {
		v.errorf("document is not valid JSON: %v", err)
		return
	}
	if _, err := dec.Token(); err != io.EOF {
		v.errorf("unexpected data after document")
	}
}

func (v *Validator) validateCard(key string, raw json.RawMessage) {
	var cd card.Card
	if err := json.Unmarshal(raw, &cd); err != nil {
		v.errorf("card %q: %v", key, err)
		return
	}

	var fields map[string]json.RawMessage
	_ = json.Unmarshal(raw, &fields)
	if details, ok := fields[card.FieldDetails]; ok {
		v.warnf("card %q: fields nested under %q", key, card.FieldDetails)
		var nested map[string]json.RawMessage
		_ = json.Unmarshal(details, &nested)
		for k, val := range nested {
			if _, dup := fields[k]; dup {
				v.warnf("card %q: %q set both inside and outside %q; the outer value is used", key, k, card.FieldDetails)
				continue
			}
			fields[k] = val
		}
	}

	if cd.Name != "" && cd.Name != key {
		v.warnf("card %q: name %q differs from its key; the key is used", key, cd.Name)
	}
	if _, ok := fields[card.FieldCCMUpper]; ok {
		v.warnf("card %q: %q should be spelled %q", key, card.FieldCCMUpper, card.FieldCCM)
	}
	if _, ok := fields[card.FieldKeywordSingle]; ok {
		v.warnf("card %q: %q should be spelled %q", key, card.FieldKeywordSingle, card.FieldKeywords)
	}
	if isString(fields[card.FieldLegality]) {
		v.warnf("card %q: %q should be an array of format names", key, card.FieldLegality)
	}

	for _, f := range []struct {
		name  string
		value string
	}{
		{card.FieldCCM, cd.ConvertedManaCost},
		{card.FieldColor, cd.Color},
		{card.FieldType, cd.Type},
	} {
		if f.value == "" {
			v.warnf("card %q: missing %s", key, f.name)
		}
	}
	if dups := duplicates(cd.Keywords); len(dups) > 0 {
		v.warnf("card %q: repeated keywords: %s", key, strings.Join(dups, ", "))
	}

	var unknown []string
	for k := range fields {
		if !knownFields[k] {
			unknown = append(unknown, k)
		}
	}
	sort.Strings(unknown)
	for _, k := range unknown {
		v.warnf("card %q: unknown field %q is dropped on save", key, k)
	}
}

func isString(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '"'
}

func duplicates(list []string) []string {
	seen := map[string]int{}
	var out []string
	for _, s := range list {
		seen[s]++
		if seen[s] == 2 {
			out = append(out, s)
		}
	}
	return out
}
