package model

import "time"

// EditorGrant records one identity's membership in a document's editor
// set. The serial id preserves grant order for the editor index; the
// unique (document_id, editor) pair makes repeat grants no-ops.
type EditorGrant struct {
	ID         uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	DocumentID uint64    `gorm:"column:document_id;not null;uniqueIndex:idx_grants_document_editor"`
	Editor     string    `gorm:"column:editor;not null;uniqueIndex:idx_grants_document_editor;index"`
	CreatedAt  time.Time `gorm:"column:created_at"`
}

func (EditorGrant) TableName() string {
	return "editor_grants"
}
