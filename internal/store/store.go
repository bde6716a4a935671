package store

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/arcanaland/spellbook/internal/card"
	"github.com/go-logr/logr"
	"github.com/gofrs/flock"
)

type (
	// Store owns the card collection backed by one JSON document. Every
	// successful mutation is flushed to the document before returning.
	//
	// A Store is safe for concurrent use. Mutations also hold an advisory
	// lock on <path>.lock, so separate processes sharing a document do not
	// lose each other's updates.
	Store struct {
		logger logr.Logger
		path   string
		lock   *flock.Flock

		mu    sync.Mutex
		coll  *Collection
		stamp stamp
	}

	Option func(*Store)

	// stamp identifies the version of the document last seen on disk.
	stamp struct {
		exists bool
		size   int64
		mod    int64
	}
)

// WithLogger sets the logger used to report loads and saves.
func WithLogger(logger logr.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// Open loads the document at path into a new Store. A missing document gives
// an empty store; the file is created by the first mutation.
func Open(path string, opts ...Option) (*Store, error) {
	s := &Store{
		logger: logr.Discard(),
		path:   path,
		lock:   flock.New(path + ".lock"),
	}
	for _, fn := range opts {
		fn(s)
	}
	if err := s.reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the document path.
func (s *Store) Path() string { return s.path }

// Len returns the number of cards in the document, reloading it if it
// changed on disk. If the document cannot be read the last loaded count is
// returned.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.refresh(); err != nil {
		s.logger.Error(err, "refreshing card document", "path", s.path)
	}
	return s.coll.Len()
}

// Get returns the card with exactly this name.
func (s *Store) Get(name string) (card.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.refresh(); err != nil {
		return card.Card{}, err
	}
	return s.coll.Get(name)
}

// List returns every card in document order.
func (s *Store) List() ([]card.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.refresh(); err != nil {
		return nil, err
	}
	return s.coll.List(), nil
}

// Insert adds a new card and saves the document. It never overwrites: a card
// with the same name yields ErrAlreadyExists.
func (s *Store) Insert(cd card.Card) error {
	return s.mutate("insert", func(c *Collection) (func(), error) {
		if err := c.insert("insert", cd); err != nil {
			return nil, err
		}
		return func() { c.remove("undo", cd.Name) }, nil
	})
}

// Remove deletes the named card and saves the document.
func (s *Store) Remove(name string) error {
	return s.mutate("remove", func(c *Collection) (func(), error) {
		prev, i, err := c.remove("remove", name)
		if err != nil {
			return nil, err
		}
		return func() { c.restore(prev, i) }, nil
	})
}

// Replace stores cd under its name, replacing any existing card, and saves
// the document. It reports whether the card was newly created.
func (s *Store) Replace(cd card.Card) (created bool, err error) {
	err = s.mutate("replace", func(c *Collection) (func(), error) {
		if err := cd.Validate(); err != nil {
			return nil, &Error{Op: "replace", Kind: KindInvalidRecord, Name: cd.Name, Err: err}
		}
		prev, existed := c.put(cd)
		created = !existed
		if !existed {
			return func() { c.remove("undo", cd.Name) }, nil
		}
		return func() { c.put(prev) }, nil
	})
	return created, err
}

// mutate applies fn to the collection while holding both locks, then saves.
// If the save fails the change is undone so memory matches the document.
func (s *Store) mutate(op string, fn func(*Collection) (undo func(), err error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return &Error{Op: op, Kind: KindIOFailure, Path: s.path, Err: err}
	}
	if err := s.lock.Lock(); err != nil {
		return &Error{Op: op, Kind: KindIOFailure, Path: s.lock.Path(), Err: err}
	}
	defer s.lock.Unlock()

	// the document may have been changed by another process since it was
	// last read, so always mutate the latest version
	if err := s.reload(); err != nil {
		return err
	}
	undo, err := fn(s.coll)
	if err != nil {
		return err
	}
	if err := Save(s.coll, s.path); err != nil {
		undo()
		s.logger.Error(err, "saving card document", "op", op, "path", s.path)
		return err
	}
	s.stamp = s.currentStamp()
	s.logger.V(1).Info("saved card document", "op", op, "path", s.path, "cards", s.coll.Len())
	return nil
}

// refresh reloads the document if it changed on disk since it was last seen.
func (s *Store) refresh() error {
	if s.currentStamp() == s.stamp {
		return nil
	}
	return s.reload()
}

func (s *Store) reload() error {
	st := s.currentStamp()
	c, err := Load(s.path)
	if err != nil {
		return err
	}
	s.coll, s.stamp = c, st
	s.logger.V(1).Info("loaded card document", "path", s.path, "cards", c.Len(), "exists", st.exists)
	return nil
}

func (s *Store) currentStamp() stamp {
	fi, err := os.Stat(s.path)
	if err != nil {
		return stamp{}
	}
	return stamp{exists: true, size: fi.Size(), mod: fi.ModTime().UnixNano()}
}
