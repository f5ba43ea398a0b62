package ledger

import (
	"context"
	"time"

	"github.com/docvault/docvault/pkg/audit"
	"github.com/docvault/docvault/pkg/enclave"
	"github.com/docvault/docvault/pkg/identity"
)

// Ledger implements document lifecycle on top of a Store and a KeyVault.
// Every access key sealed through CreateDocument is bound to the ledger's
// own context address, and editor grants are mirrored into the vault's
// authorization set so a granted editor can always run the re-encryption
// handshake for the document's key.
type Ledger struct {
	store   Store
	vault   enclave.KeyVault
	context identity.ID
	now     func() time.Time
}

// New returns a Ledger over the given store and vault. contextAddr is the
// ledger's own context address, carried in every re-encryption request
// against keys sealed through this ledger.
func New(store Store, vault enclave.KeyVault, contextAddr identity.ID) *Ledger {
	return &Ledger{
		store:   store,
		vault:   vault,
		context: contextAddr,
		now:     time.Now,
	}
}

// ContextAddress returns the ledger context address handles are bound to.
func (l *Ledger) ContextAddress() identity.ID {
	return l.context
}

// CreateDocument registers a named document with an empty body. accessKey
// is the creator's symmetric document key; it is sealed in the vault and
// only its handle is recorded. The creator becomes owner, last editor and
// the first member of the editor set, and is authorized on the sealed key
// along with the ledger itself.
func (l *Ledger) CreateDocument(ctx context.Context, caller identity.ID, name string, accessKey []byte, proof enclave.Proof) (*Document, error) {
	fail := func(err error) (*Document, error) {
		audit.Log(audit.CreateEvent{
			Owner:        caller.String(),
			Name:         name,
			ClientIP:     identity.ClientIP(ctx),
			ErrorMessage: err.Error(),
		})
		return nil, err
	}

	if caller.IsZero() {
		return fail(ErrInvalidArgument)
	}
	if name == "" {
		return fail(ErrInvalidArgument)
	}
	if identity.AddressOf(proof.PublicKey) != caller {
		return fail(ErrNotAuthorized)
	}

	// Seal before the transaction. If the transaction rolls back the
	// sealed value is orphaned, which is safe: nothing references its
	// handle and it carries no plaintext.
	handle, err := l.vault.Seal(ctx, accessKey, proof, l.context)
	if err != nil {
		return fail(err)
	}

	now := l.now()
	doc := &Document{
		Name:            name,
		AccessKeyHandle: handle,
		Owner:           caller,
		LastEditor:      caller,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	err = l.store.Transaction(func(tx Store) error {
		if err := tx.InsertDocument(doc); err != nil {
			return err
		}
		if err := tx.InsertGrant(doc.ID, caller, now); err != nil {
			return err
		}
		// Vault calls last, so a vault failure rolls the record back.
		if err := l.vault.Authorize(ctx, handle, caller); err != nil {
			return err
		}
		return l.vault.Authorize(ctx, handle, l.context)
	})
	if err != nil {
		return fail(err)
	}

	audit.Log(audit.CreateEvent{
		DocumentID: doc.ID,
		Owner:      caller.String(),
		Name:       name,
		ClientIP:   identity.ClientIP(ctx),
		Success:    true,
	})
	return doc, nil
}

// UpdateDocument replaces a document's encrypted body. The caller must be
// in the document's editor set; a rejected update leaves the record
// untouched. The body is opaque ciphertext and is not inspected.
func (l *Ledger) UpdateDocument(ctx context.Context, caller identity.ID, id uint64, body string) error {
	fail := func(err error) error {
		audit.Log(audit.UpdateEvent{
			DocumentID:    id,
			Editor:        caller.String(),
			EncryptedBody: body,
			ClientIP:      identity.ClientIP(ctx),
			ErrorMessage:  err.Error(),
		})
		return err
	}

	if caller.IsZero() {
		return fail(ErrInvalidArgument)
	}

	err := l.store.Transaction(func(tx Store) error {
		if _, err := tx.FetchDocument(id); err != nil {
			return err
		}
		ok, err := tx.HasGrant(id, caller)
		if err != nil {
			return err
		}
		if !ok {
			return ErrNotAuthorized
		}
		return tx.SaveBody(id, body, caller, l.now())
	})
	if err != nil {
		return fail(err)
	}

	audit.Log(audit.UpdateEvent{
		DocumentID:    id,
		Editor:        caller.String(),
		EncryptedBody: body,
		ClientIP:      identity.ClientIP(ctx),
		Success:       true,
	})
	return nil
}

// AllowEditor adds an identity to a document's editor set and authorizes
// it on the document's sealed access key. Only the owner may grant, and
// grants are idempotent and irrevocable.
func (l *Ledger) AllowEditor(ctx context.Context, caller identity.ID, id uint64, editor identity.ID) error {
	fail := func(err error) error {
		audit.Log(audit.GrantEvent{
			DocumentID:   id,
			Owner:        caller.String(),
			Editor:       editor.String(),
			ClientIP:     identity.ClientIP(ctx),
			ErrorMessage: err.Error(),
		})
		return err
	}

	if caller.IsZero() || editor.IsZero() {
		return fail(ErrInvalidArgument)
	}

	err := l.store.Transaction(func(tx Store) error {
		doc, err := tx.FetchDocument(id)
		if err != nil {
			return err
		}
		if doc.Owner != caller {
			return ErrNotAuthorized
		}

		granted, err := tx.HasGrant(id, editor)
		if err != nil {
			return err
		}
		if !granted {
			if err := tx.InsertGrant(id, editor, l.now()); err != nil {
				return err
			}
		}
		// Authorize even on a repeat grant. The vault side is monotone,
		// so this repairs any drift between the two sets.
		return l.vault.Authorize(ctx, doc.AccessKeyHandle, editor)
	})
	if err != nil {
		return fail(err)
	}

	audit.Log(audit.GrantEvent{
		DocumentID: id,
		Owner:      caller.String(),
		Editor:     editor.String(),
		ClientIP:   identity.ClientIP(ctx),
		Success:    true,
	})
	return nil
}

// GetDocument retrieves a document record by id.
func (l *Ledger) GetDocument(id uint64) (*Document, error) {
	return l.store.FetchDocument(id)
}

// IsEditor reports whether an identity is in a document's editor set.
// Returns ErrNotFound for an unknown document.
func (l *Ledger) IsEditor(id uint64, editor identity.ID) (bool, error) {
	if _, err := l.store.FetchDocument(id); err != nil {
		return false, err
	}
	return l.store.HasGrant(id, editor)
}

// DocumentsByOwner returns the ids of documents owned by an identity, in
// creation order.
func (l *Ledger) DocumentsByOwner(owner identity.ID) ([]uint64, error) {
	return l.store.DocumentIDsByOwner(owner)
}

// DocumentsForEditor returns the ids of documents an identity may edit,
// in grant order.
func (l *Ledger) DocumentsForEditor(editor identity.ID) ([]uint64, error) {
	return l.store.DocumentIDsForEditor(editor)
}
