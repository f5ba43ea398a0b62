package gorm

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/docvault/docvault/pkg/enclave"
	"github.com/docvault/docvault/pkg/identity"
	"github.com/docvault/docvault/pkg/ledger"
	"github.com/docvault/docvault/pkg/model"
)

// Ensure Store implements ledger.Store
var _ ledger.Store = (*Store)(nil)

// Store implements ledger.Store using GORM
type Store struct {
	db *gorm.DB
}

// NewStore creates a new Store
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Transaction runs fn inside a database transaction. A non-nil error
// from fn rolls the transaction back.
func (s *Store) Transaction(fn func(tx ledger.Store) error) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

// InsertDocument persists a new document record and assigns its id.
func (s *Store) InsertDocument(doc *ledger.Document) error {
	record := model.Document{
		Name:            doc.Name,
		EncryptedBody:   doc.EncryptedBody,
		AccessKeyHandle: string(doc.AccessKeyHandle),
		Owner:           doc.Owner.String(),
		LastEditor:      doc.LastEditor.String(),
		CreatedAt:       doc.CreatedAt,
		UpdatedAt:       doc.UpdatedAt,
	}
	if err := s.db.Create(&record).Error; err != nil {
		return err
	}
	doc.ID = record.ID
	return nil
}

// FetchDocument retrieves a document by id.
func (s *Store) FetchDocument(id uint64) (*ledger.Document, error) {
	var record model.Document
	tx := s.db.Where("id = ?", id).First(&record)
	if tx.Error != nil {
		if tx.Error == gorm.ErrRecordNotFound {
			return nil, ledger.ErrNotFound
		}
		return nil, tx.Error
	}
	return documentFromModel(&record)
}

// SaveBody replaces a document's encrypted body and edit metadata.
func (s *Store) SaveBody(id uint64, body string, editor identity.ID, at time.Time) error {
	tx := s.db.Model(&model.Document{}).Where("id = ?", id).Updates(map[string]interface{}{
		"encrypted_body": body,
		"last_editor":    editor.String(),
		"updated_at":     at,
	})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ledger.ErrNotFound
	}
	return nil
}

// InsertGrant appends an identity to a document's editor set.
func (s *Store) InsertGrant(id uint64, editor identity.ID, at time.Time) error {
	return s.db.Create(&model.EditorGrant{
		DocumentID: id,
		Editor:     editor.String(),
		CreatedAt:  at,
	}).Error
}

// HasGrant reports whether an identity is in a document's editor set.
func (s *Store) HasGrant(id uint64, editor identity.ID) (bool, error) {
	var count int64
	tx := s.db.Model(&model.EditorGrant{}).
		Where("document_id = ? AND editor = ?", id, editor.String()).
		Count(&count)
	if tx.Error != nil {
		return false, tx.Error
	}
	return count > 0, nil
}

// DocumentIDsByOwner returns the ids owned by an identity, oldest first.
func (s *Store) DocumentIDsByOwner(owner identity.ID) ([]uint64, error) {
	ids := []uint64{}
	tx := s.db.Model(&model.Document{}).
		Where("owner = ?", owner.String()).
		Order("id asc").
		Pluck("id", &ids)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return ids, nil
}

// DocumentIDsForEditor returns the ids an identity may edit, in grant
// order.
func (s *Store) DocumentIDsForEditor(editor identity.ID) ([]uint64, error) {
	ids := []uint64{}
	tx := s.db.Model(&model.EditorGrant{}).
		Where("editor = ?", editor.String()).
		Order("id asc").
		Pluck("document_id", &ids)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return ids, nil
}

func documentFromModel(record *model.Document) (*ledger.Document, error) {
	owner, err := identity.Parse(record.Owner)
	if err != nil {
		return nil, fmt.Errorf("document %d: bad owner: %w", record.ID, err)
	}
	lastEditor, err := identity.Parse(record.LastEditor)
	if err != nil {
		return nil, fmt.Errorf("document %d: bad last editor: %w", record.ID, err)
	}
	return &ledger.Document{
		ID:              record.ID,
		Name:            record.Name,
		EncryptedBody:   record.EncryptedBody,
		AccessKeyHandle: enclave.Handle(record.AccessKeyHandle),
		Owner:           owner,
		LastEditor:      lastEditor,
		CreatedAt:       record.CreatedAt,
		UpdatedAt:       record.UpdatedAt,
	}, nil
}
