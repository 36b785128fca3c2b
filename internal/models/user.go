package models

import (
	"time"
)

type User struct {
	ID            uint64    `gorm:"primarykey" json:"id"`
	Username      string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"username"`
	Email         *string   `gorm:"type:varchar(255);uniqueIndex" json:"email"`
	DisplayName   *string   `gorm:"type:varchar(255)" json:"display_name"`
	PasswordHash  string    `gorm:"type:varchar(255);not null" json:"-"`
	EmailVerified bool      `gorm:"not null;default:false" json:"email_verified"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	// Only the SHA-256 digest of a pending verification token is stored.
	VerificationTokenHash      *string    `gorm:"type:varchar(64);uniqueIndex" json:"-"`
	VerificationTokenExpiresAt *time.Time `json:"-"`

	// Relations
	Tasks   []Task   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	APIKeys []APIKey `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}
