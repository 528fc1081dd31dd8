package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/signet-id/core/internal/models"
	"go.uber.org/zap"
)

var (
	// ErrNotFound means no session record exists for the id.
	ErrNotFound = errors.New("session not found")
	// ErrInactive means the session was revoked.
	ErrInactive = errors.New("session inactive")
	// ErrExpired means the session is past its expiry.
	ErrExpired = errors.New("session expired")
)

// Store persists session records. Revocation flips the active flag; rows are
// never deleted so the audit trail survives.
type Store interface {
	Create(ctx context.Context, sess *models.AuthSession) error
	Get(ctx context.Context, id string) (*models.AuthSession, error)
	Deactivate(ctx context.Context, userID, id string) error
	DeactivateAll(ctx context.Context, userID string) error
	DeactivateAllExcept(ctx context.Context, userID, keepID string) error
	ListActive(ctx context.Context, userID string, now time.Time) ([]models.AuthSession, error)
	Touch(ctx context.Context, id string, at time.Time) error
}

// CreateInput carries the fields of a new session. ID may be preset so the
// caller can embed it in the signed token before the record exists.
type CreateInput struct {
	ID     string
	UserID string
	Token  string
	Device string
	IP     string
	UA     string
}

// Service creates, validates and revokes sessions.
type Service struct {
	store  Store
	ttl    time.Duration
	loc    *time.Location
	logger *zap.Logger

	now func() time.Time
}

func NewService(store Store, ttl time.Duration, loc *time.Location, logger *zap.Logger) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{
		store:  store,
		ttl:    ttl,
		loc:    loc,
		logger: logger,
		now:    time.Now,
	}
}

// Create persists a new active session with expiry = now + TTL.
func (s *Service) Create(ctx context.Context, in CreateInput) (*models.AuthSession, error) {
	now := s.now().In(s.loc)
	sess := &models.AuthSession{
		Base:           models.Base{ID: in.ID},
		UserID:         in.UserID,
		Token:          in.Token,
		Device:         in.Device,
		IP:             strings.TrimSpace(in.IP),
		UA:             strings.TrimSpace(in.UA),
		LastActivityAt: now,
		ExpiresAt:      now.Add(s.ttl),
		Active:         true,
	}
	if err := s.store.Create(ctx, sess); err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}
	return sess, nil
}

// Validate reports whether a session is usable. It never mutates the record;
// activity stamping is a separate, explicit Touch.
func (s *Service) Validate(ctx context.Context, sessionID string) (*models.AuthSession, error) {
	sess, err := s.store.Get(ctx, strings.TrimSpace(sessionID))
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if sess == nil {
		return nil, ErrNotFound
	}
	if !sess.Active {
		return nil, ErrInactive
	}
	if !s.now().In(s.loc).Before(sess.ExpiresAt) {
		return nil, ErrExpired
	}
	return sess, nil
}

// Touch stamps last activity. Best effort: a failed stamp never fails the
// request that triggered it.
func (s *Service) Touch(ctx context.Context, sessionID string) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return
	}
	if err := s.store.Touch(ctx, sessionID, s.now().In(s.loc)); err != nil {
		s.logger.Warn("session touch failed", zap.String("session_id", sessionID), zap.Error(err))
	}
}

// Revoke deactivates one session belonging to the given user. The owner scope
// is part of the store predicate, so a caller can never revoke a session it
// does not own. Idempotent: revoking an already-inactive, unknown or foreign
// session is not an error.
func (s *Service) Revoke(ctx context.Context, userID, sessionID string) error {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil
	}
	return s.store.Deactivate(ctx, userID, sessionID)
}

// RevokeAll deactivates every session of a user.
func (s *Service) RevokeAll(ctx context.Context, userID string) error {
	return s.store.DeactivateAll(ctx, userID)
}

// RevokeAllExcept deactivates every session of a user but the given one.
func (s *Service) RevokeAllExcept(ctx context.Context, userID, keepID string) error {
	if strings.TrimSpace(keepID) == "" {
		return s.store.DeactivateAll(ctx, userID)
	}
	return s.store.DeactivateAllExcept(ctx, userID, keepID)
}

// ListActive returns the user's currently valid sessions.
func (s *Service) ListActive(ctx context.Context, userID string) ([]models.AuthSession, error) {
	return s.store.ListActive(ctx, userID, s.now().In(s.loc))
}
