package model

import "time"

// Document is a ledger record protected by a sealed access key. The name
// and owner are immutable after creation, and the access key handle is set
// exactly once; only the encrypted body and editor bookkeeping change.
type Document struct {
	ID              uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	Name            string    `gorm:"column:name;not null"`
	EncryptedBody   string    `gorm:"column:encrypted_body;not null;default:''"`
	AccessKeyHandle string    `gorm:"column:access_key_handle;not null"`
	Owner           string    `gorm:"column:owner;not null;index"`
	LastEditor      string    `gorm:"column:last_editor;not null"`
	CreatedAt       time.Time `gorm:"column:created_at"`
	UpdatedAt       time.Time `gorm:"column:updated_at"`
}

func (Document) TableName() string {
	return "documents"
}
