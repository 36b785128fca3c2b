package models

import "time"

// APIKey is a long-lived credential owned by one user. The raw secret is never
// stored; Prefix is for display only.
type APIKey struct {
	ID         uint64     `gorm:"primarykey" json:"id"`
	UserID     uint64     `gorm:"not null;index" json:"user_id"`
	HashedKey  string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"-"`
	Prefix     string     `gorm:"type:varchar(16);not null" json:"prefix"`
	Revoked    bool       `gorm:"not null;default:false" json:"revoked"`
	LastUsedAt *time.Time `json:"last_used_at"`
	CreatedAt  time.Time  `json:"created_at"`
}

// IsActive reports whether the key may still be used.
func (k APIKey) IsActive() bool {
	return !k.Revoked
}
