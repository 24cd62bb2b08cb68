package vault

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/tkarsten/bluefin/internal/core/data"
)

func setUpDatabase(t *testing.T) *gorm.DB {
	testDBFile := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(testDBFile))
	if err != nil {
		t.Fatalf("error initializing test database: %s", err)
	}
	if err = db.AutoMigrate(&data.KeyRecord{}, &data.Secret{}); err != nil {
		t.Fatalf("error auto migrating db: %s", err)
	}
	return db
}

func testLogger() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

func TestVault_InitializeAndReopen(t *testing.T) {
	db := setUpDatabase(t)

	v, err := Initialize(db, testLogger(), "hunter2", "default", time.Minute)
	if err != nil {
		t.Fatalf("error initializing vault: %s", err)
	}
	v.Close()

	if _, err := Initialize(db, testLogger(), "hunter2", "default", time.Minute); !errors.Is(err, ErrKeyExists) {
		t.Errorf("expected ErrKeyExists on second initialize, got = %v", err)
	}

	if _, err := Open(db, testLogger(), "wrong password", "default", time.Minute); !errors.Is(err, ErrInvalidPassword) {
		t.Errorf("expected ErrInvalidPassword, got = %v", err)
	}
	if _, err := Open(db, testLogger(), "hunter2", "unknown", time.Minute); !errors.Is(err, ErrNoSuchKey) {
		t.Errorf("expected ErrNoSuchKey, got = %v", err)
	}

	v, err = Open(db, testLogger(), "hunter2", "default", time.Minute)
	if err != nil {
		t.Fatalf("error reopening vault: %s", err)
	}
	v.Close()
}

func TestVault_SecretRoundTrip(t *testing.T) {
	db := setUpDatabase(t)

	v, err := Initialize(db, testLogger(), "hunter2", "default", time.Minute)
	if err != nil {
		t.Fatalf("error initializing vault: %s", err)
	}
	defer v.Close()

	if err := v.Put("api_token", "s3cr3t-value"); err != nil {
		t.Fatalf("error storing secret: %s", err)
	}

	// The stored row must hold ciphertext, not the plaintext.
	row, err := data.FindSecretByName(db, "api_token")
	if err != nil || row == nil {
		t.Fatalf("expected stored secret row, got err = %v", err)
	}
	if row.Ciphertext == "s3cr3t-value" {
		t.Fatal("secret stored in the clear")
	}

	got, err := v.Get("api_token")
	if err != nil {
		t.Fatalf("error fetching secret: %s", err)
	}
	if got != "s3cr3t-value" {
		t.Errorf("expected secret = s3cr3t-value, got = %s", got)
	}

	// Cached read returns the same value.
	got, err = v.Get("api_token")
	if err != nil || got != "s3cr3t-value" {
		t.Errorf("cached read failed: %s / %v", got, err)
	}

	// A vault reopened with the same password reads the same secret.
	reopened, err := Open(db, testLogger(), "hunter2", "default", time.Minute)
	if err != nil {
		t.Fatalf("error reopening vault: %s", err)
	}
	defer reopened.Close()
	got, err = reopened.Get("api_token")
	if err != nil || got != "s3cr3t-value" {
		t.Errorf("reopened read failed: %s / %v", got, err)
	}
}

func TestVault_PutReplacesAndDropsCache(t *testing.T) {
	db := setUpDatabase(t)

	v, err := Initialize(db, testLogger(), "hunter2", "default", time.Minute)
	if err != nil {
		t.Fatalf("error initializing vault: %s", err)
	}
	defer v.Close()

	if err := v.Put("name", "before"); err != nil {
		t.Fatalf("error storing secret: %s", err)
	}
	if _, err := v.Get("name"); err != nil {
		t.Fatalf("error priming cache: %s", err)
	}
	if err := v.Put("name", "after"); err != nil {
		t.Fatalf("error replacing secret: %s", err)
	}

	got, err := v.Get("name")
	if err != nil {
		t.Fatalf("error fetching secret: %s", err)
	}
	if got != "after" {
		t.Errorf("expected replacement value, got = %s", got)
	}
}

func TestVault_ListAndDelete(t *testing.T) {
	db := setUpDatabase(t)

	v, err := Initialize(db, testLogger(), "hunter2", "default", time.Minute)
	if err != nil {
		t.Fatalf("error initializing vault: %s", err)
	}
	defer v.Close()

	for _, name := range []string{"b", "a", "c"} {
		if err := v.Put(name, "value of "+name); err != nil {
			t.Fatalf("error storing %s: %s", name, err)
		}
	}

	names, err := v.List()
	if err != nil {
		t.Fatalf("error listing: %s", err)
	}
	if len(names) != 3 || names[0] != "a" || names[1] != "b" || names[2] != "c" {
		t.Errorf("unexpected listing: %v", names)
	}

	if err := v.Delete("b"); err != nil {
		t.Fatalf("error deleting: %s", err)
	}
	if err := v.Delete("b"); !errors.Is(err, ErrNoSuchSecret) {
		t.Errorf("expected ErrNoSuchSecret on double delete, got = %v", err)
	}
	if _, err := v.Get("b"); !errors.Is(err, ErrNoSuchSecret) {
		t.Errorf("expected ErrNoSuchSecret on read of deleted secret, got = %v", err)
	}
}

func TestVault_CorruptCiphertext(t *testing.T) {
	db := setUpDatabase(t)

	v, err := Initialize(db, testLogger(), "hunter2", "default", time.Minute)
	if err != nil {
		t.Fatalf("error initializing vault: %s", err)
	}
	defer v.Close()

	if err := data.UpsertSecret(db, &data.Secret{Name: "mangled", Ciphertext: "!!! not an envelope"}); err != nil {
		t.Fatalf("error planting corrupt row: %s", err)
	}

	if _, err := v.Get("mangled"); !errors.Is(err, ErrCorruptSecret) {
		t.Errorf("expected ErrCorruptSecret, got = %v", err)
	}
}
