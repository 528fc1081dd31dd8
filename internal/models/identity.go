package models

import "time"

// Identity is a user's authentication record. The identity store is owned
// externally; this core only reads it and stamps last-login metadata.
//
// Password holds either a bcrypt hash (recognized by its $2a$/$2b$/$2y$ prefix)
// or a legacy plaintext credential awaiting migration.
type Identity struct {
	Base
	Email         string     `json:"email"           gorm:"uniqueIndex:idx_identities_email_role;not null"`
	Phone         string     `json:"phone"           gorm:"index"`
	Password      string     `json:"-"               gorm:"not null"`
	Role          string     `json:"role"            gorm:"uniqueIndex:idx_identities_email_role;index;not null"`
	Active        bool       `json:"active"          gorm:"not null;default:true"`
	LastLoginTime *time.Time `json:"last_login_time"`
	LastLoginIP   string     `json:"last_login_ip"`
}

func (Identity) TableName() string { return "identities" }
