package ledger

import (
	"errors"
	"time"

	"github.com/docvault/docvault/pkg/enclave"
	"github.com/docvault/docvault/pkg/identity"
)

// ErrInvalidArgument is returned for an empty document name or a null
// identity.
var ErrInvalidArgument = errors.New("invalid argument")

// ErrNotFound is returned when a document id references no record.
var ErrNotFound = errors.New("document not found")

// ErrNotAuthorized is returned when a non-editor mutates a body or a
// non-owner extends the editor set.
var ErrNotAuthorized = errors.New("caller is not authorized")

// Document is a ledger record with its ownership and edit history
// metadata. The encrypted body and access key handle are opaque to the
// ledger.
type Document struct {
	ID              uint64
	Name            string
	EncryptedBody   string
	AccessKeyHandle enclave.Handle
	Owner           identity.ID
	LastEditor      identity.ID
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Store abstracts document and editor-set persistence. Mutations are
// composed inside Transaction so each ledger operation commits all of its
// state changes together or none of them.
type Store interface {
	// Transaction runs fn against a transactional view of the store.
	// A non-nil error from fn rolls every mutation back.
	Transaction(fn func(tx Store) error) error

	// InsertDocument persists a new document and assigns its id.
	InsertDocument(doc *Document) error

	// FetchDocument retrieves a document by id.
	// Returns ErrNotFound if it doesn't exist.
	FetchDocument(id uint64) (*Document, error)

	// SaveBody replaces a document's encrypted body and updates the last
	// editor and update timestamp.
	SaveBody(id uint64, body string, editor identity.ID, at time.Time) error

	// InsertGrant appends an identity to a document's editor set.
	InsertGrant(id uint64, editor identity.ID, at time.Time) error

	// HasGrant reports whether an identity is in a document's editor set.
	HasGrant(id uint64, editor identity.ID) (bool, error)

	// DocumentIDsByOwner returns the ids owned by an identity, in
	// creation order.
	DocumentIDsByOwner(owner identity.ID) ([]uint64, error)

	// DocumentIDsForEditor returns the ids an identity may edit, in grant
	// order.
	DocumentIDsForEditor(editor identity.ID) ([]uint64, error)
}
