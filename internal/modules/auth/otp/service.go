package otp

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/signet-id/core/internal/models"
	"go.uber.org/zap"
)

var (
	// ErrNotFound means no code record exists for the (user, target, purpose) key.
	ErrNotFound = errors.New("verification code not found")
	// ErrUsed means the latest record was already consumed.
	ErrUsed = errors.New("verification code already used")
	// ErrExpired means the latest record is past its expiry.
	ErrExpired = errors.New("verification code expired")
	// ErrMismatch means the submitted code does not match the stored one.
	ErrMismatch = errors.New("verification code mismatch")
	// ErrTooManyAttempts means the attempt budget for the record is spent.
	ErrTooManyAttempts = errors.New("too many verification attempts")
	// ErrCooldown means a code for the same user/purpose was issued too recently.
	ErrCooldown = errors.New("verification code requested too recently")
	// ErrNoTarget means no deliverable target could be resolved for the identity.
	ErrNoTarget = errors.New("no delivery target available")
)

const deliveryTimeout = 10 * time.Second

// CodeStore persists one-time-code records. Records are append-only; the
// latest row per key supersedes older ones, which are never deleted.
type CodeStore interface {
	Create(ctx context.Context, code *models.OneTimeCode) error
	Latest(ctx context.Context, userID, target, purpose string) (*models.OneTimeCode, error)
	// MarkUsed flips used to true iff it is still false, reporting whether
	// this call won the flip.
	MarkUsed(ctx context.Context, id string) (bool, error)
	BumpAttempts(ctx context.Context, id string) error
}

// Cooldown serializes issuance per key. Acquire returns false while a
// previous acquisition is still within its TTL. Release drops a held lease
// early so a failed issuance does not block the caller's retry.
type Cooldown interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

// Sender is a pluggable delivery channel (SMS, email, log-only).
type Sender interface {
	SendCode(ctx context.Context, target, code, purpose string) error
	Enabled() bool
}

// Options carry the externally supplied code policy.
type Options struct {
	TTL            time.Duration
	CodeLength     int
	MaxAttempts    int
	ResendCooldown time.Duration
	Location       *time.Location
}

// Issued is the outcome of a successful issuance.
type Issued struct {
	Code      string
	Target    string
	ExpiresAt time.Time
}

// Service generates, persists, delivers and verifies one-time codes.
type Service struct {
	store    CodeStore
	cooldown Cooldown
	sms      Sender
	mail     Sender
	opts     Options
	logger   *zap.Logger

	now func() time.Time
}

func NewService(store CodeStore, cooldown Cooldown, sms, mail Sender, opts Options, logger *zap.Logger) *Service {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	return &Service{
		store:    store,
		cooldown: cooldown,
		sms:      sms,
		mail:     mail,
		opts:     opts,
		logger:   logger,
		now:      time.Now,
	}
}

// Issue generates a code for the identity, persists it and dispatches
// delivery to every present channel. Delivery failures are logged and never
// fail issuance; issuance success means the record exists.
func (s *Service) Issue(ctx context.Context, ident *models.Identity, purpose, explicitTarget, ip string) (*Issued, error) {
	target := strings.TrimSpace(explicitTarget)
	if target == "" {
		target = strings.TrimSpace(ident.Phone)
	}
	if target == "" {
		target = strings.TrimSpace(ident.Email)
	}
	if target == "" {
		return nil, ErrNoTarget
	}

	var leaseKey string
	if s.cooldown != nil && s.opts.ResendCooldown > 0 {
		key := fmt.Sprintf("signet:otp_cooldown:%s:%s", ident.ID, purpose)
		ok, err := s.cooldown.Acquire(ctx, key, s.opts.ResendCooldown)
		if err != nil {
			// Cooldown trouble must not block login entirely.
			s.logger.Warn("otp cooldown check failed", zap.Error(err))
		} else if !ok {
			return nil, ErrCooldown
		} else {
			leaseKey = key
		}
	}

	code, err := GenerateCode(s.opts.CodeLength)
	if err != nil {
		s.releaseLease(ctx, leaseKey)
		return nil, fmt.Errorf("generate code: %w", err)
	}

	now := s.now().In(s.opts.Location)
	rec := &models.OneTimeCode{
		UserID:    ident.ID,
		Target:    target,
		Purpose:   purpose,
		Code:      code,
		ExpiresAt: now.Add(s.opts.TTL),
		IP:        ip,
	}
	if err := s.store.Create(ctx, rec); err != nil {
		// No record exists, so the retry must not sit out the cooldown.
		s.releaseLease(ctx, leaseKey)
		return nil, fmt.Errorf("persist code: %w", err)
	}

	s.deliver(ctx, ident, target, code, purpose)

	return &Issued{Code: code, Target: target, ExpiresAt: rec.ExpiresAt}, nil
}

func (s *Service) releaseLease(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.cooldown.Release(ctx, key); err != nil {
		s.logger.Warn("otp cooldown release failed", zap.String("key", key), zap.Error(err))
	}
}

// deliver dispatches the code concurrently to phone and email channels and
// awaits both within a bounded window. A failure on one channel never aborts
// the other.
func (s *Service) deliver(ctx context.Context, ident *models.Identity, phoneTarget, code, purpose string) {
	dctx, cancel := context.WithTimeout(ctx, deliveryTimeout)
	defer cancel()

	var wg sync.WaitGroup
	send := func(sender Sender, channel, target string) {
		if sender == nil || !sender.Enabled() || target == "" {
			return
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := sender.SendCode(dctx, target, code, purpose); err != nil {
				s.logger.Warn("code delivery failed",
					zap.String("channel", channel),
					zap.String("purpose", purpose),
					zap.String("user_id", ident.ID),
					zap.Error(err),
				)
			}
		}()
	}

	send(s.sms, "sms", phoneTarget)
	send(s.mail, "email", strings.TrimSpace(ident.Email))
	wg.Wait()
}

// Verify checks a submitted code against the latest record for the key.
// It is read-only apart from the attempt counter; flipping used is Consume's
// job so a code is never burned before the caller's step actually completes.
func (s *Service) Verify(ctx context.Context, userID, target, purpose, submitted string) (*models.OneTimeCode, error) {
	rec, err := s.store.Latest(ctx, userID, strings.TrimSpace(target), purpose)
	if err != nil {
		return nil, fmt.Errorf("load code: %w", err)
	}
	if rec == nil {
		return nil, ErrNotFound
	}
	if rec.Used {
		return nil, ErrUsed
	}
	if !s.now().In(s.opts.Location).Before(rec.ExpiresAt) {
		return nil, ErrExpired
	}
	if s.opts.MaxAttempts > 0 && rec.Attempts >= s.opts.MaxAttempts {
		return nil, ErrTooManyAttempts
	}
	// String comparison on purpose: codes keep leading zeros.
	if strings.TrimSpace(rec.Code) != strings.TrimSpace(submitted) {
		if err := s.store.BumpAttempts(ctx, rec.ID); err != nil {
			s.logger.Warn("bump attempts failed", zap.String("code_id", rec.ID), zap.Error(err))
		}
		return nil, ErrMismatch
	}
	return rec, nil
}

// Consume verifies and atomically marks the record used. A concurrent
// Consume of the same code loses the flip and gets ErrUsed, so a valid code
// completes at most one login.
func (s *Service) Consume(ctx context.Context, userID, target, purpose, submitted string) (*models.OneTimeCode, error) {
	rec, err := s.Verify(ctx, userID, target, purpose, submitted)
	if err != nil {
		return nil, err
	}
	won, err := s.store.MarkUsed(ctx, rec.ID)
	if err != nil {
		return nil, fmt.Errorf("mark code used: %w", err)
	}
	if !won {
		return nil, ErrUsed
	}
	rec.Used = true
	return rec, nil
}

// GenerateCode returns a fixed-width numeric code from crypto/rand.
func GenerateCode(length int) (string, error) {
	if length < 4 {
		length = 4
	}
	digits := make([]byte, length)
	for i := range digits {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		digits[i] = byte('0' + n.Int64())
	}
	return string(digits), nil
}
