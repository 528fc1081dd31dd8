package login

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/signet-id/core/internal/models"
	"github.com/signet-id/core/internal/modules/auth/credential"
	"github.com/signet-id/core/internal/modules/auth/otp"
	"github.com/signet-id/core/internal/modules/auth/session"
	jwtpkg "github.com/signet-id/core/internal/pkg/jwt"
	"go.uber.org/zap"
)

// Service sequences the three login steps. It holds no per-attempt state:
// the flow lives entirely in the stored code and session records, so any
// step can be retried or resumed across requests and processes.
type Service struct {
	creds      *credential.Service
	codes      *otp.Service
	sessions   *session.Service
	sessionTTL time.Duration
	logger     *zap.Logger

	now func() time.Time
}

func NewService(creds *credential.Service, codes *otp.Service, sessions *session.Service, sessionTTL time.Duration, logger *zap.Logger) *Service {
	return &Service{
		creds:      creds,
		codes:      codes,
		sessions:   sessions,
		sessionTTL: sessionTTL,
		logger:     logger,
		now:        time.Now,
	}
}

// IssueResult is the outcome of the two code-issuing steps.
type IssueResult struct {
	UserID    string
	Target    string
	Code      string
	ExpiresAt time.Time
}

// ValidateCredentials runs step one: password check, then code issuance.
func (s *Service) ValidateCredentials(ctx context.Context, email, role, password, ip string) (*IssueResult, error) {
	ident, err := s.creds.Verify(ctx, email, role, password)
	if err != nil {
		return nil, err
	}
	return s.issue(ctx, ident, "", ip)
}

// SendOTP runs step two: identity lookup by mobile, then code issuance.
func (s *Service) SendOTP(ctx context.Context, mobile, role, ip string) (*IssueResult, error) {
	ident, err := s.creds.LookupByPhone(ctx, mobile, role)
	if err != nil {
		return nil, err
	}
	return s.issue(ctx, ident, mobile, ip)
}

func (s *Service) issue(ctx context.Context, ident *models.Identity, explicitTarget, ip string) (*IssueResult, error) {
	issued, err := s.codes.Issue(ctx, ident, models.PurposeLogin, explicitTarget, ip)
	if err != nil {
		return nil, err
	}
	s.logger.Info("login code issued",
		zap.String("user_id", ident.ID),
		zap.Time("expires_at", issued.ExpiresAt),
	)
	return &IssueResult{
		UserID:    ident.ID,
		Target:    issued.Target,
		Code:      issued.Code,
		ExpiresAt: issued.ExpiresAt,
	}, nil
}

// FinalLoginInput carries step three's request plus caller metadata.
type FinalLoginInput struct {
	Email  string
	Mobile string
	Role   string
	Code   string
	Device string
	IP     string
	UA     string
}

// LoginResult is a completed login: the bearer token and its session.
type LoginResult struct {
	Token    string
	Session  *models.AuthSession
	Identity *models.Identity
}

// FinalLogin runs step three: resolve the identity, consume the code, mint
// the token and create the session. The code is marked used atomically at
// verification time, before session creation, so a replayed request can
// never ride the same code into a second session.
func (s *Service) FinalLogin(ctx context.Context, in FinalLoginInput) (*LoginResult, error) {
	ident, err := s.resolveIdentity(ctx, in)
	if err != nil {
		return nil, err
	}

	target := strings.TrimSpace(in.Mobile)
	if target == "" {
		target = strings.TrimSpace(ident.Phone)
	}
	if target == "" {
		return nil, ErrMobileRequired
	}

	if _, err := s.codes.Consume(ctx, ident.ID, target, models.PurposeLogin, in.Code); err != nil {
		return nil, err
	}

	sessionID := uuid.New().String()
	token, err := jwtpkg.SignWithOptions(ident.ID, s.sessionTTL, jwtpkg.SignOptions{
		Email:     ident.Email,
		Role:      ident.Role,
		SessionID: sessionID,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSessionCreate, err)
	}

	sess, err := s.sessions.Create(ctx, session.CreateInput{
		ID:     sessionID,
		UserID: ident.ID,
		Token:  token,
		Device: in.Device,
		IP:     in.IP,
		UA:     in.UA,
	})
	if err != nil {
		// The code is already consumed; replaying it cannot recover this.
		s.logger.Error("session creation failed after code consumption",
			zap.String("user_id", ident.ID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %v", ErrSessionCreate, err)
	}

	if err := s.creds.StampLogin(ctx, ident.ID, in.IP, s.now()); err != nil {
		s.logger.Warn("last-login stamp failed", zap.String("user_id", ident.ID), zap.Error(err))
	}

	s.logger.Info("login completed",
		zap.String("user_id", ident.ID),
		zap.String("session_id", sess.ID),
	)
	return &LoginResult{Token: token, Session: sess, Identity: ident}, nil
}

func (s *Service) resolveIdentity(ctx context.Context, in FinalLoginInput) (*models.Identity, error) {
	if strings.TrimSpace(in.Email) != "" {
		return s.creds.LookupByEmail(ctx, in.Email, in.Role)
	}
	return s.creds.LookupByPhone(ctx, in.Mobile, in.Role)
}
