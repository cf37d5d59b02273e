package kv

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestPostgresStoreReadPresent(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New failed: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT value FROM vault_kv WHERE key = \$1`).
		WithArgs("encrypted_notes").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow("[]"))

	ps := NewPostgresStoreFromDB(db)
	value, ok, err := ps.Read(context.Background(), "encrypted_notes")
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if !ok || value != "[]" {
		t.Errorf("Read = %q ok=%v; want [] true", value, ok)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresStoreReadAbsentKey(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New failed: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT value FROM vault_kv WHERE key = \$1`).
		WithArgs("encrypted_notes").
		WillReturnRows(sqlmock.NewRows([]string{"value"}))

	ps := NewPostgresStoreFromDB(db)
	_, ok, err := ps.Read(context.Background(), "encrypted_notes")
	if err != nil {
		t.Fatalf("Read of absent key returned error: %v", err)
	}
	if ok {
		t.Errorf("Read of absent key reported ok")
	}
}

func TestPostgresStoreWriteUpserts(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New failed: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(`INSERT INTO vault_kv \(key, value\)`).
		WithArgs("encrypted_notes", "[]").
		WillReturnResult(sqlmock.NewResult(0, 1))

	ps := NewPostgresStoreFromDB(db)
	if err := ps.Write(context.Background(), "encrypted_notes", "[]"); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresStoreDelete(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New failed: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(`DELETE FROM vault_kv WHERE key = \$1`).
		WithArgs("encrypted_notes").
		WillReturnResult(sqlmock.NewResult(0, 0))

	ps := NewPostgresStoreFromDB(db)
	if err := ps.Delete(context.Background(), "encrypted_notes"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
