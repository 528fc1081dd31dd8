package login

import (
	"errors"
	"time"
)

// Step identifiers accepted by the legacy dispatcher. The set is closed:
// anything else is a validation error, never a silent fall-through.
const (
	StepCredentialValidation = "credential_validation"
	StepSendOTP              = "send_otp"
	StepFinalLogin           = "final_login"
)

var (
	// ErrMobileRequired means final login could resolve no mobile target,
	// neither from the request nor from the stored identity.
	ErrMobileRequired = errors.New("mobile number required for verification")
	// ErrSessionCreate means the code was consumed but the session could not
	// be created. The code is burned; the client must request a new one.
	ErrSessionCreate = errors.New("session creation failed after code was consumed")
)

type CredentialsDTO struct {
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role"     binding:"required"`
}

type SendOTPDTO struct {
	Mobile string `json:"mobile" binding:"required"`
	Role   string `json:"role"   binding:"required"`
}

type FinalLoginDTO struct {
	Email  string `json:"email"`
	Mobile string `json:"mobile"`
	Role   string `json:"role" binding:"required"`
	Code   string `json:"code" binding:"required"`
}

// legacyLoginDTO is the union body of the step-dispatch endpoint.
type legacyLoginDTO struct {
	Step     string `json:"step" binding:"required"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Mobile   string `json:"mobile"`
	Role     string `json:"role"`
	Code     string `json:"code"`
}

type revokeSessionDTO struct {
	SessionID string `json:"session_id" binding:"required"`
}

type sessionResponse struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	Device         string    `json:"device"`
	IP             string    `json:"ip"`
	UA             string    `json:"ua"`
	LastActivityAt time.Time `json:"last_activity_at"`
	ExpiresAt      time.Time `json:"expires_at"`
	Created        time.Time `json:"created"`
}
