package credential

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"
	"time"

	"github.com/signet-id/core/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials covers absent identity, inactive identity and wrong
// password alike, so callers cannot probe which accounts exist.
var ErrInvalidCredentials = errors.New("invalid user credentials")

// IdentityStore is the read-mostly surface of the external identity store.
type IdentityStore interface {
	FindByEmailRole(ctx context.Context, email, role string) (*models.Identity, error)
	FindByPhoneRole(ctx context.Context, phone, role string) (*models.Identity, error)
	StampLogin(ctx context.Context, userID, ip string, at time.Time) error
}

// Service verifies stored credentials. It never mutates identities beyond
// stamping last-login metadata after a completed login.
type Service struct {
	store IdentityStore
}

func NewService(store IdentityStore) *Service { return &Service{store: store} }

// Verify checks an email/role pair and a password against the identity store.
func (s *Service) Verify(ctx context.Context, email, role, password string) (*models.Identity, error) {
	ident, err := s.LookupByEmail(ctx, email, role)
	if err != nil {
		return nil, err
	}
	if !matchesCredential(ident.Password, password) {
		return nil, ErrInvalidCredentials
	}
	return ident, nil
}

// LookupByEmail resolves an active identity by email and role.
func (s *Service) LookupByEmail(ctx context.Context, email, role string) (*models.Identity, error) {
	ident, err := s.store.FindByEmailRole(ctx, strings.TrimSpace(email), strings.TrimSpace(role))
	return requireActive(ident, err)
}

// LookupByPhone resolves an active identity by phone and role. Structurally
// the same lookup as LookupByEmail, used by the send-otp step where no
// password is involved.
func (s *Service) LookupByPhone(ctx context.Context, phone, role string) (*models.Identity, error) {
	ident, err := s.store.FindByPhoneRole(ctx, strings.TrimSpace(phone), strings.TrimSpace(role))
	return requireActive(ident, err)
}

// StampLogin records last-login time and IP. Best effort.
func (s *Service) StampLogin(ctx context.Context, userID, ip string, at time.Time) error {
	return s.store.StampLogin(ctx, userID, ip, at)
}

func requireActive(ident *models.Identity, err error) (*models.Identity, error) {
	if err != nil {
		return nil, err
	}
	if ident == nil || !ident.Active {
		return nil, ErrInvalidCredentials
	}
	return ident, nil
}

// bcryptPrefixes tag the adaptive-hash credential encoding. Anything else is
// a legacy plaintext credential kept comparable for zero-downtime migration.
var bcryptPrefixes = []string{"$2a$", "$2b$", "$2y$"}

func matchesCredential(stored, supplied string) bool {
	for _, prefix := range bcryptPrefixes {
		if strings.HasPrefix(stored, prefix) {
			return bcrypt.CompareHashAndPassword([]byte(stored), []byte(supplied)) == nil
		}
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(supplied)) == 1
}
