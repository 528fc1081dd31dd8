package otp

import (
	"context"
	"errors"

	"github.com/signet-id/core/internal/models"
	"gorm.io/gorm"
)

// GormStore implements CodeStore on the relational code table.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore { return &GormStore{db: db} }

func (s *GormStore) Create(ctx context.Context, code *models.OneTimeCode) error {
	return s.db.WithContext(ctx).Create(code).Error
}

// Latest returns the most recently created record for the key. Older records
// are implicitly superseded by read-time ordering, never deleted.
func (s *GormStore) Latest(ctx context.Context, userID, target, purpose string) (*models.OneTimeCode, error) {
	var rec models.OneTimeCode
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND target = ? AND purpose = ?", userID, target, purpose).
		Order("created_at DESC").
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// MarkUsed is a conditional single-row update; the WHERE guard makes the
// flip atomic under concurrent consumers.
func (s *GormStore) MarkUsed(ctx context.Context, id string) (bool, error) {
	res := s.db.WithContext(ctx).Model(&models.OneTimeCode{}).
		Where("id = ? AND used = ?", id, false).
		Update("used", true)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (s *GormStore) BumpAttempts(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Model(&models.OneTimeCode{}).
		Where("id = ?", id).
		UpdateColumn("attempts", gorm.Expr("attempts + 1")).Error
}
