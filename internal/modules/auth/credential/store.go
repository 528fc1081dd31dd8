package credential

import (
	"context"
	"errors"
	"time"

	"github.com/signet-id/core/internal/models"
	"gorm.io/gorm"
)

// GormStore implements IdentityStore on the relational identity table.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore { return &GormStore{db: db} }

func (s *GormStore) FindByEmailRole(ctx context.Context, email, role string) (*models.Identity, error) {
	return s.findOne(ctx, "email = ? AND role = ?", email, role)
}

func (s *GormStore) FindByPhoneRole(ctx context.Context, phone, role string) (*models.Identity, error) {
	return s.findOne(ctx, "phone = ? AND role = ?", phone, role)
}

func (s *GormStore) findOne(ctx context.Context, query string, args ...interface{}) (*models.Identity, error) {
	var ident models.Identity
	err := s.db.WithContext(ctx).Where(query, args...).First(&ident).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ident, nil
}

func (s *GormStore) StampLogin(ctx context.Context, userID, ip string, at time.Time) error {
	return s.db.WithContext(ctx).Model(&models.Identity{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"last_login_time": &at,
			"last_login_ip":   ip,
		}).Error
}
