package model

import (
	"crypto/subtle"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Role is the authorization role of a user.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// ResetTokenTTL is how long a password reset token stays valid.
const ResetTokenTTL = time.Hour

// User represents an authenticated user in the system.
type User struct {
	ID                   uuid.UUID  `json:"_id" gorm:"type:char(36);primaryKey"`
	Email                string     `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash         string     `json:"-" gorm:"size:255;not null"` // Never expose in JSON
	FirstName            string     `json:"firstName" gorm:"size:50;not null"`
	LastName             string     `json:"lastName" gorm:"size:50;not null"`
	Role                 Role       `json:"role" gorm:"type:varchar(20);not null;default:'user'"`
	ProfileImage         string     `json:"profileImage,omitempty" gorm:"size:512"`
	ResetPasswordToken   *string    `json:"-" gorm:"size:64;index"`
	ResetPasswordExpires *time.Time `json:"-"`
	CreatedAt            time.Time  `json:"createdAt"`
	UpdatedAt            time.Time  `json:"updatedAt"`
}

// BeforeCreate sets UUID and default role before creating the record.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Role == "" {
		u.Role = RoleUser
	}
	return nil
}

// NormalizeEmail lower-cases and trims an email so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SetPassword replaces the stored hash with a fresh bcrypt hash of plain.
func (u *User) SetPassword(plain string, cost int) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return nil
}

// ComparePassword reports whether plain matches the stored hash.
func (u *User) ComparePassword(plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(plain)) == nil
}

// IssueResetToken stores token with an expiry exactly ResetTokenTTL after now.
func (u *User) IssueResetToken(token string, now time.Time) {
	expires := now.Add(ResetTokenTTL)
	u.ResetPasswordToken = &token
	u.ResetPasswordExpires = &expires
}

// ResetTokenValid reports whether token matches the stored one and has not expired.
func (u *User) ResetTokenValid(token string, now time.Time) bool {
	if u.ResetPasswordToken == nil || u.ResetPasswordExpires == nil || token == "" {
		return false
	}
	if !now.Before(*u.ResetPasswordExpires) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(*u.ResetPasswordToken), []byte(token)) == 1
}

// ClearResetToken removes any pending reset token.
func (u *User) ClearResetToken() {
	u.ResetPasswordToken = nil
	u.ResetPasswordExpires = nil
}
