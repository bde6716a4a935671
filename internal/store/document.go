package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/arcanaland/spellbook/internal/card"
	"github.com/sdassow/atomic"
)

const (
	documentIndent = "    "
	documentMode   = 0o644
)

// writeDocument replaces path with the contents of r. The replacement is
// atomic: readers see either the old or the new document.
var writeDocument = func(path string, r io.Reader) error {
	return atomic.WriteFile(path, r, atomic.DefaultFileMode(documentMode))
}

// Load reads the card document at path. A missing file is not an error and
// yields an empty collection.
func Load(path string) (*Collection, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return NewCollection()
	}
	if err != nil {
		return nil, &Error{Op: "load", Kind: KindIOFailure, Path: path, Err: err}
	}
	c, err := Decode(b)
	if err != nil {
		var se *Error
		if errors.As(err, &se) {
			se.Op, se.Path = "load", path
		}
		return nil, err
	}
	return c, nil
}

// Save writes the whole collection to path, replacing any existing document.
func Save(c *Collection, path string) error {
	b, err := Encode(c)
	if err != nil {
		return &Error{Op: "save", Kind: KindIOFailure, Path: path, Err: err}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return &Error{Op: "save", Kind: KindIOFailure, Path: path, Err: err}
	}
	if err := writeDocument(path, bytes.NewReader(b)); err != nil {
		return &Error{Op: "save", Kind: KindIOFailure, Path: path, Err: err}
	}
	return nil
}

// Decode parses a card document: a JSON object mapping card names to cards.
// Blank input decodes to an empty collection. The object key is authoritative
// for a card's name.
func Decode(b []byte) (*Collection, error) {
	c, _ := NewCollection()
	if len(bytes.TrimSpace(b)) == 0 {
		return c, nil
	}
	malformed := func(err error) error {
		return &Error{Op: "decode", Kind: KindMalformedData, Err: err}
	}

	dec := json.NewDecoder(bytes.NewReader(b))
	tok, err := dec.Token()
	if err != nil {
		return nil, malformed(err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, malformed(errors.New("document must be a JSON object of cards keyed by name"))
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, malformed(err)
		}
		name := tok.(string)
		var cd card.Card
		if err := dec.Decode(&cd); err != nil {
			return nil, malformed(fmt.Errorf("card %q: %w", name, err))
		}
		cd.Name = name
		if err := c.insert("decode", cd); err != nil {
			if IsKind(err, KindAlreadyExists) {
				return nil, malformed(fmt.Errorf("duplicate card %q", name))
			}
			return nil, malformed(fmt.Errorf("card %q: %w", name, errors.Unwrap(err)))
		}
	}
	if _, err := dec.Token(); err != nil {
		return nil, malformed(err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, malformed(errors.New("unexpected data after document"))
	}
	return c, nil
}

// Encode renders the collection as an indented JSON document in collection
// order.
func Encode(c *Collection) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	buf.WriteByte('{')
	for i, name := range c.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := enc.Encode(name); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		if err := enc.Encode(c.cards[name]); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')

	var out bytes.Buffer
	if err := json.Indent(&out, buf.Bytes(), "", documentIndent); err != nil {
		return nil, err
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}
