package models

import "time"

// Code purposes. A purpose classifies why a code was issued; verification is
// always keyed on (user, target, purpose).
const (
	PurposeLogin         = "LOGIN"
	PurposePasswordReset = "PASSWORD_RESET"
	PurposeVerification  = "VERIFICATION"
)

// OneTimeCode is a short-lived numeric secret delivered out of band.
// Records are append-only: for a (user, target, purpose) key the most recently
// created row is the only one eligible for verification, older rows are
// superseded but never deleted. Used flips to true exactly once.
type OneTimeCode struct {
	Base
	UserID    string    `json:"user_id"    gorm:"index;not null"`
	Target    string    `json:"target"     gorm:"index;not null"`
	Purpose   string    `json:"purpose"    gorm:"index;not null"`
	Code      string    `json:"-"          gorm:"not null"`
	ExpiresAt time.Time `json:"expires_at" gorm:"not null"`
	Used      bool      `json:"used"       gorm:"not null;default:false"`
	Attempts  int       `json:"attempts"   gorm:"not null;default:0"`
	IP        string    `json:"ip"`
}

func (OneTimeCode) TableName() string { return "one_time_codes" }
