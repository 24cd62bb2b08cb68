package data

import (
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

// Creates a database for testing. For the sake of simplicity, this only uses
// the SQLite engine and creates a new database on every invocation since it
// is relatively cheap to do so.
func setUpDatabase(t *testing.T) *gorm.DB {
	testDBFile := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(testDBFile))
	if err != nil {
		t.Fatalf("error initializing test database: %s", err)
	}

	if err = db.AutoMigrate(&KeyRecord{}, &Secret{}); err != nil {
		t.Fatalf("error auto migrating db: %s", err)
	}
	return db
}

func TestKeyRecordLifecycle(t *testing.T) {
	db := setUpDatabase(t)

	record, err := FindKeyRecordByLabel(db, "missing")
	if err != nil {
		t.Fatalf("unexpected error on lookup: %s", err)
	}
	if record != nil {
		t.Fatal("expected no key record for an unused label")
	}

	if err := CreateKeyRecord(db, &KeyRecord{Label: "default", Checksum: "abc123"}); err != nil {
		t.Fatalf("error creating key record: %s", err)
	}

	record, err = FindKeyRecordByLabel(db, "default")
	if err != nil {
		t.Fatalf("unexpected error on lookup: %s", err)
	}
	if record == nil {
		t.Fatal("expected to find the created key record")
	}
	if record.Checksum != "abc123" {
		t.Errorf("expected checksum = abc123, got = %s", record.Checksum)
	}

	if err := CreateKeyRecord(db, &KeyRecord{Label: "default", Checksum: "other"}); err == nil {
		t.Error("expected duplicate label to be rejected")
	}

	if err := DeleteKeyRecord(db, record); err != nil {
		t.Fatalf("error deleting key record: %s", err)
	}
	record, _ = FindKeyRecordByLabel(db, "default")
	if record != nil {
		t.Error("expected key record to be gone after delete")
	}
}

func TestSecretLifecycle(t *testing.T) {
	db := setUpDatabase(t)

	if err := UpsertSecret(db, &Secret{Name: "api_token", Ciphertext: "first"}); err != nil {
		t.Fatalf("error creating secret: %s", err)
	}
	if err := UpsertSecret(db, &Secret{Name: "db_password", Ciphertext: "second"}); err != nil {
		t.Fatalf("error creating secret: %s", err)
	}

	// Upsert with an existing name replaces the ciphertext.
	if err := UpsertSecret(db, &Secret{Name: "api_token", Ciphertext: "rotated"}); err != nil {
		t.Fatalf("error upserting secret: %s", err)
	}

	secret, err := FindSecretByName(db, "api_token")
	if err != nil {
		t.Fatalf("unexpected error on lookup: %s", err)
	}
	if secret == nil {
		t.Fatal("expected to find upserted secret")
	}
	if secret.Ciphertext != "rotated" {
		t.Errorf("expected ciphertext = rotated, got = %s", secret.Ciphertext)
	}

	names, err := ListSecretNames(db)
	if err != nil {
		t.Fatalf("error listing secrets: %s", err)
	}
	if len(names) != 2 || names[0] != "api_token" || names[1] != "db_password" {
		t.Errorf("unexpected name listing: %v", names)
	}

	if err := DeleteSecret(db, secret); err != nil {
		t.Fatalf("error deleting secret: %s", err)
	}
	secret, _ = FindSecretByName(db, "api_token")
	if secret != nil {
		t.Error("expected secret to be gone after delete")
	}
}
