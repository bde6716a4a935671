package store

import (
	"slices"

	"github.com/arcanaland/spellbook/internal/card"
)

// Collection is an in-memory set of cards keyed by name. Insertion order is
// kept so that saving a loaded document does not reorder it.
type Collection struct {
	names []string
	cards map[string]card.Card
}

// NewCollection builds a collection from cards, failing if any card is
// invalid or two cards share a name.
func NewCollection(cards ...card.Card) (*Collection, error) {
	c := &Collection{cards: make(map[string]card.Card, len(cards))}
	for _, cd := range cards {
		if err := c.insert("new", cd); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *Collection) Len() int { return len(c.names) }

// Has reports whether a card with exactly this name exists.
func (c *Collection) Has(name string) bool {
	_, ok := c.cards[name]
	return ok
}

// Get returns a copy of the card with exactly this name.
func (c *Collection) Get(name string) (card.Card, error) {
	cd, ok := c.cards[name]
	if !ok {
		return card.Card{}, notFound("get", name)
	}
	return cd.Clone(), nil
}

// List returns copies of all cards in collection order. The result is
// empty, not nil, for an empty collection.
func (c *Collection) List() []card.Card {
	out := make([]card.Card, 0, len(c.names))
	for _, name := range c.names {
		out = append(out, c.cards[name].Clone())
	}
	return out
}

// Names returns card names in collection order.
func (c *Collection) Names() []string {
	return slices.Clone(c.names)
}

// Equal reports whether both collections hold the same cards. Order is
// ignored.
func (c *Collection) Equal(other *Collection) bool {
	if c.Len() != other.Len() {
		return false
	}
	for name, cd := range c.cards {
		o, ok := other.cards[name]
		if !ok || !cd.Equal(o) {
			return false
		}
	}
	return true
}

func (c *Collection) insert(op string, cd card.Card) error {
	if err := cd.Validate(); err != nil {
		return &Error{Op: op, Kind: KindInvalidRecord, Name: cd.Name, Err: err}
	}
	if c.Has(cd.Name) {
		return &Error{Op: op, Kind: KindAlreadyExists, Name: cd.Name}
	}
	c.names = append(c.names, cd.Name)
	c.cards[cd.Name] = cd.Clone()
	return nil
}

// remove deletes the named card, returning it and its position so the
// removal can be undone.
func (c *Collection) remove(op, name string) (card.Card, int, error) {
	cd, ok := c.cards[name]
	if !ok {
		return card.Card{}, 0, notFound(op, name)
	}
	i := slices.Index(c.names, name)
	c.names = slices.Delete(c.names, i, i+1)
	delete(c.cards, name)
	return cd, i, nil
}

func (c *Collection) restore(cd card.Card, i int) {
	c.names = slices.Insert(c.names, i, cd.Name)
	c.cards[cd.Name] = cd
}

// put replaces the card in place, or appends it when absent. It returns the
// previous card, if any.
func (c *Collection) put(cd card.Card) (prev card.Card, existed bool) {
	prev, existed = c.cards[cd.Name]
	if !existed {
		c.names = append(c.names, cd.Name)
	}
	c.cards[cd.Name] = cd.Clone()
	return prev, existed
}
