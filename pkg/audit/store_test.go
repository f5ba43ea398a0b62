package audit

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestStoreSave(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock: %v", err)
	}
	defer func() { _ = db.Close() }()

	store := NewStoreWithDB(db)

	mock.ExpectExec("INSERT INTO messages").
		WillReturnResult(sqlmock.NewResult(1, 1))

	event := UpdateEvent{
		DocumentID:    9,
		Editor:        "0xaa",
		EncryptedBody: "bm9uY2VhbmRjaXBoZXJ0ZXh0",
		Success:       true,
	}

	if err := store.Save(event); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet sqlmock expectations: %v", err)
	}
}

func TestStoreSaveWithNilDB(t *testing.T) {
	store := &Store{}
	if err := store.Save(CreateEvent{Success: true}); err != nil {
		t.Errorf("Save with nil db should be a no-op, got %v", err)
	}
}
