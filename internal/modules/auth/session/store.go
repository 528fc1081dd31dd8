package session

import (
	"context"
	"errors"
	"time"

	"github.com/signet-id/core/internal/models"
	"gorm.io/gorm"
)

// GormStore implements Store on the relational session table.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore { return &GormStore{db: db} }

func (s *GormStore) Create(ctx context.Context, sess *models.AuthSession) error {
	return s.db.WithContext(ctx).Create(sess).Error
}

func (s *GormStore) Get(ctx context.Context, id string) (*models.AuthSession, error) {
	var sess models.AuthSession
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&sess).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sess, nil
}

func (s *GormStore) Deactivate(ctx context.Context, userID, id string) error {
	return s.db.WithContext(ctx).Model(&models.AuthSession{}).
		Where("id = ? AND user_id = ? AND active = ?", id, userID, true).
		Update("active", false).Error
}

func (s *GormStore) DeactivateAll(ctx context.Context, userID string) error {
	return s.db.WithContext(ctx).Model(&models.AuthSession{}).
		Where("user_id = ? AND active = ?", userID, true).
		Update("active", false).Error
}

func (s *GormStore) DeactivateAllExcept(ctx context.Context, userID, keepID string) error {
	return s.db.WithContext(ctx).Model(&models.AuthSession{}).
		Where("user_id = ? AND active = ? AND id <> ?", userID, true, keepID).
		Update("active", false).Error
}

func (s *GormStore) ListActive(ctx context.Context, userID string, now time.Time) ([]models.AuthSession, error) {
	var sessions []models.AuthSession
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND active = ? AND expires_at > ?", userID, true, now).
		Order("last_activity_at DESC, created_at DESC").
		Find(&sessions).Error
	return sessions, err
}

func (s *GormStore) Touch(ctx context.Context, id string, at time.Time) error {
	return s.db.WithContext(ctx).Model(&models.AuthSession{}).
		Where("id = ? AND active = ? AND expires_at > ?", id, true, at).
		Update("last_activity_at", at).Error
}
