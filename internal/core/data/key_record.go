package data

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// KeyRecord stores the salted checksum of a vault password so that a
// password can be vetted offline without decrypting anything. The checksum
// column holds the 40-byte base64 envelope produced at key setup.
type KeyRecord struct {
	ID        uint64 `gorm:"primaryKey"`
	Label     string `gorm:"unique; not null"`
	Checksum  string `gorm:"not null"`
	CreatedAt time.Time
}

// FindKeyRecordByLabel returns the key record with the given label, or nil
// if none exists.
func FindKeyRecordByLabel(db *gorm.DB, label string) (*KeyRecord, error) {
	var record KeyRecord
	err := db.Where("label = ?", label).First(&record).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &record, nil
}

// CreateKeyRecord persists the KeyRecord to the database.
func CreateKeyRecord(db *gorm.DB, record *KeyRecord) error {
	return db.Create(record).Error
}

// DeleteKeyRecord permanently deletes a KeyRecord from the database.
func DeleteKeyRecord(db *gorm.DB, record *KeyRecord) error {
	return db.Unscoped().Delete(record).Error
}
