package data

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Secret is a named ciphertext held by the vault. The ciphertext column
// holds the base64 envelope string; plaintext never reaches the database.
type Secret struct {
	ID         uint64 `gorm:"primaryKey"`
	Name       string `gorm:"unique; not null"`
	Ciphertext string `gorm:"not null"`
	UpdatedAt  time.Time
}

// FindSecretByName returns the secret with the given name, or nil if there
// is no match.
func FindSecretByName(db *gorm.DB, name string) (*Secret, error) {
	var secret Secret
	err := db.Where("name = ?", name).First(&secret).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &secret, nil
}

// UpsertSecret creates the secret or replaces the ciphertext of an existing
// one with the same name.
func UpsertSecret(db *gorm.DB, secret *Secret) error {
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"ciphertext", "updated_at"}),
	}).Create(secret).Error
}

// ListSecretNames returns the names of all stored secrets in sorted order.
func ListSecretNames(db *gorm.DB) ([]string, error) {
	var names []string
	err := db.Model(&Secret{}).Order("name").Pluck("name", &names).Error
	return names, err
}

// DeleteSecret permanently deletes a secret from the database.
func DeleteSecret(db *gorm.DB, secret *Secret) error {
	return db.Unscoped().Delete(secret).Error
}
