// Package memory provides an in-memory ledger.Store used by tests and
// the server's dev mode. State lives for the process only.
package memory

import (
	"sync"
	"time"

	"github.com/docvault/docvault/pkg/identity"
	"github.com/docvault/docvault/pkg/ledger"
)

// Store is an in-memory ledger.Store. Transactions run against a copy of
// the state and commit by swapping it in, so a failed transaction leaves
// the store untouched.
type Store struct {
	mu sync.Mutex
	st *state
}

var _ ledger.Store = (*Store)(nil)

// NewStore returns an empty in-memory store.
func NewStore() *Store {
	return &Store{st: newState()}
}

func (s *Store) Transaction(fn func(tx ledger.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.st.clone()
	if err := fn(&tx{st: next}); err != nil {
		return err
	}
	s.st = next
	return nil
}

func (s *Store) InsertDocument(doc *ledger.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.insertDocument(doc)
}

func (s *Store) FetchDocument(id uint64) (*ledger.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.fetchDocument(id)
}

func (s *Store) SaveBody(id uint64, body string, editor identity.ID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.saveBody(id, body, editor, at)
}

func (s *Store) InsertGrant(id uint64, editor identity.ID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.insertGrant(id, editor)
}

func (s *Store) HasGrant(id uint64, editor identity.ID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.hasGrant(id, editor), nil
}

func (s *Store) DocumentIDsByOwner(owner identity.ID) ([]uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.idsByOwner(owner), nil
}

func (s *Store) DocumentIDsForEditor(editor identity.ID) ([]uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.idsForEditor(editor), nil
}

// tx is the transactional view handed to Transaction callbacks. The
// outer Store holds its lock for the duration, so tx needs none.
type tx struct {
	st *state
}

var _ ledger.Store = (*tx)(nil)

func (t *tx) Transaction(fn func(tx ledger.Store) error) error {
	return fn(t)
}

func (t *tx) InsertDocument(doc *ledger.Document) error {
	return t.st.insertDocument(doc)
}

func (t *tx) FetchDocument(id uint64) (*ledger.Document, error) {
	return t.st.fetchDocument(id)
}

func (t *tx) SaveBody(id uint64, body string, editor identity.ID, at time.Time) error {
	return t.st.saveBody(id, body, editor, at)
}

func (t *tx) InsertGrant(id uint64, editor identity.ID, at time.Time) error {
	return t.st.insertGrant(id, editor)
}

func (t *tx) HasGrant(id uint64, editor identity.ID) (bool, error) {
	return t.st.hasGrant(id, editor), nil
}

func (t *tx) DocumentIDsByOwner(owner identity.ID) ([]uint64, error) {
	return t.st.idsByOwner(owner), nil
}

func (t *tx) DocumentIDsForEditor(editor identity.ID) ([]uint64, error) {
	return t.st.idsForEditor(editor), nil
}

type state struct {
	nextID uint64
	order  []uint64
	docs   map[uint64]ledger.Document
	grants map[uint64][]identity.ID
}

func newState() *state {
	return &state{
		nextID: 1,
		docs:   make(map[uint64]ledger.Document),
		grants: make(map[uint64][]identity.ID),
	}
}

func (st *state) clone() *state {
	next := &state{
		nextID: st.nextID,
		order:  append([]uint64(nil), st.order...),
		docs:   make(map[uint64]ledger.Document, len(st.docs)),
		grants: make(map[uint64][]identity.ID, len(st.grants)),
	}
	for id, doc := range st.docs {
		next.docs[id] = doc
	}
	for id, editors := range st.grants {
		next.grants[id] = append([]identity.ID(nil), editors...)
	}
	return next
}

func (st *state) insertDocument(doc *ledger.Document) error {
	doc.ID = st.nextID
	st.nextID++
	st.order = append(st.order, doc.ID)
	st.docs[doc.ID] = *doc
	return nil
}

func (st *state) fetchDocument(id uint64) (*ledger.Document, error) {
	doc, ok := st.docs[id]
	if !ok {
		return nil, ledger.ErrNotFound
	}
	return &doc, nil
}

func (st *state) saveBody(id uint64, body string, editor identity.ID, at time.Time) error {
	doc, ok := st.docs[id]
	if !ok {
		return ledger.ErrNotFound
	}
	doc.EncryptedBody = body
	doc.LastEditor = editor
	doc.UpdatedAt = at
	st.docs[id] = doc
	return nil
}

func (st *state) insertGrant(id uint64, editor identity.ID) error {
	if _, ok := st.docs[id]; !ok {
		return ledger.ErrNotFound
	}
	if st.hasGrant(id, editor) {
		return nil
	}
	st.grants[id] = append(st.grants[id], editor)
	return nil
}

func (st *state) hasGrant(id uint64, editor identity.ID) bool {
	for _, e := range st.grants[id] {
		if e == editor {
			return true
		}
	}
	return false
}

func (st *state) idsByOwner(owner identity.ID) []uint64 {
	ids := []uint64{}
	for _, id := range st.order {
		if st.docs[id].Owner == owner {
			ids = append(ids, id)
		}
	}
	return ids
}

func (st *state) idsForEditor(editor identity.ID) []uint64 {
	ids := []uint64{}
	for _, id := range st.order {
		if st.hasGrant(id, editor) {
			ids = append(ids, id)
		}
	}
	return ids
}
