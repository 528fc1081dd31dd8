package models

import "time"

// AuthSession tracks an issued bearer token for device/session management.
// A session is valid iff Active is true and ExpiresAt is in the future.
// Revocation flips Active, rows are kept for audit history.
type AuthSession struct {
	Base
	UserID         string    `json:"user_id"          gorm:"index;not null"`
	Token          string    `json:"-"                gorm:"type:text"`
	Device         string    `json:"device"`
	IP             string    `json:"ip"`
	UA             string    `json:"ua"               gorm:"type:text"`
	LastActivityAt time.Time `json:"last_activity_at"`
	ExpiresAt      time.Time `json:"expires_at"       gorm:"index;not null"`
	Active         bool      `json:"active"           gorm:"index;not null;default:true"`
}

func (AuthSession) TableName() string { return "auth_sessions" }
