// Package vault implements a password-protected secret store on top of the
// envelope format. Secrets are kept encrypted at rest in the configured
// database; the password is vetted against a stored key checksum before any
// cipher state is built.
package vault

import (
	"errors"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/tkarsten/bluefin/envelope"
	"github.com/tkarsten/bluefin/internal/core/data"
)

var (
	// ErrInvalidPassword is returned when the password does not match the
	// stored key checksum.
	ErrInvalidPassword = errors.New("vault: password does not match key checksum")
	// ErrNoSuchKey is returned when no key record exists under the label.
	ErrNoSuchKey = errors.New("vault: no key record with that label")
	// ErrKeyExists is returned by Initialize when the label is taken.
	ErrKeyExists = errors.New("vault: key record already exists for that label")
	// ErrNoSuchSecret is returned by Get and Delete for unknown names.
	ErrNoSuchSecret = errors.New("vault: no secret with that name")
	// ErrCorruptSecret is returned when a stored ciphertext fails to
	// decrypt under the vault key.
	ErrCorruptSecret = errors.New("vault: stored ciphertext failed to decrypt")
)

// Vault is an unlocked secret store. Instances are not safe for concurrent
// use; the underlying envelope carries cipher state.
type Vault struct {
	db     *gorm.DB
	env    *envelope.Simple
	logger *zap.SugaredLogger

	// Decrypted secrets are held briefly so repeated reads don't pay for
	// a CBC pass each time. Entries are dropped on write and on expiry.
	plaintextCache *cache.Cache
}

// Initialize creates the key record for a new vault under the given label
// and returns the unlocked vault. Fails with ErrKeyExists if the label is
// already in use.
func Initialize(db *gorm.DB, logger *zap.SugaredLogger, password, label string, cacheTTL time.Duration) (*Vault, error) {
	existing, err := data.FindKeyRecordByLabel(db, label)
	if err != nil {
		return nil, fmt.Errorf("looking up key record: %w", err)
	}
	if existing != nil {
		return nil, ErrKeyExists
	}

	env, err := envelope.New(password, nil)
	if err != nil {
		return nil, fmt.Errorf("deriving vault key: %w", err)
	}

	if err := data.CreateKeyRecord(db, &data.KeyRecord{
		Label:    label,
		Checksum: env.KeyChecksum(),
	}); err != nil {
		env.Invalidate()
		return nil, fmt.Errorf("storing key record: %w", err)
	}

	logger.Infow("created vault key record", "label", label)
	return newVault(db, env, logger, cacheTTL), nil
}

// Open unlocks the vault under the given label. The password is checked
// against the stored key checksum before any secrets can be touched.
func Open(db *gorm.DB, logger *zap.SugaredLogger, password, label string, cacheTTL time.Duration) (*Vault, error) {
	record, err := data.FindKeyRecordByLabel(db, label)
	if err != nil {
		return nil, fmt.Errorf("looking up key record: %w", err)
	}
	if record == nil {
		return nil, ErrNoSuchKey
	}

	if !envelope.VerifyKey(password, record.Checksum) {
		logger.Warnw("vault unlock rejected", "label", label)
		return nil, ErrInvalidPassword
	}

	env, err := envelope.New(password, nil)
	if err != nil {
		return nil, fmt.Errorf("deriving vault key: %w", err)
	}

	logger.Debugw("vault unlocked", "label", label)
	return newVault(db, env, logger, cacheTTL), nil
}

func newVault(db *gorm.DB, env *envelope.Simple, logger *zap.SugaredLogger, cacheTTL time.Duration) *Vault {
	return &Vault{
		db:             db,
		env:            env,
		logger:         logger,
		plaintextCache: cache.New(cacheTTL, 2*cacheTTL),
	}
}

// Put encrypts value and stores it under name, replacing any existing
// secret with that name.
func (v *Vault) Put(name, value string) error {
	cipherText, err := v.env.Encrypt(value)
	if err != nil {
		return fmt.Errorf("encrypting secret: %w", err)
	}

	if err := data.UpsertSecret(v.db, &data.Secret{Name: name, Ciphertext: cipherText}); err != nil {
		return fmt.Errorf("storing secret: %w", err)
	}

	v.plaintextCache.Delete(name)
	v.logger.Debugw("stored secret", "name", name)
	return nil
}

// Get returns the decrypted secret stored under name.
func (v *Vault) Get(name string) (string, error) {
	if value, hit := v.plaintextCache.Get(name); hit {
		return value.(string), nil
	}

	secret, err := data.FindSecretByName(v.db, name)
	if err != nil {
		return "", fmt.Errorf("looking up secret: %w", err)
	}
	if secret == nil {
		return "", ErrNoSuchSecret
	}

	value, ok := v.env.Decrypt(secret.Ciphertext)
	if !ok {
		v.logger.Errorw("stored ciphertext failed to decrypt", "name", name)
		return "", ErrCorruptSecret
	}

	v.plaintextCache.SetDefault(name, value)
	return value, nil
}

// List returns the names of every stored secret.
func (v *Vault) List() ([]string, error) {
	names, err := data.ListSecretNames(v.db)
	if err != nil {
		return nil, fmt.Errorf("listing secrets: %w", err)
	}
	return names, nil
}

// Delete removes the secret stored under name.
func (v *Vault) Delete(name string) error {
	secret, err := data.FindSecretByName(v.db, name)
	if err != nil {
		return fmt.Errorf("looking up secret: %w", err)
	}
	if secret == nil {
		return ErrNoSuchSecret
	}

	if err := data.DeleteSecret(v.db, secret); err != nil {
		return fmt.Errorf("deleting secret: %w", err)
	}
	v.plaintextCache.Delete(name)
	return nil
}

// Close drops the cached plaintext and wipes the cipher state. The vault
// must be reopened before further use.
func (v *Vault) Close() {
	v.plaintextCache.Flush()
	v.env.Invalidate()
}
