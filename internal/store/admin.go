package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/atlasbuild/buildsite/internal/domain"
)

// Admin accounts are read per request, not mirrored.

func (s *Store) AdminUserByUsername(ctx context.Context, username string) (*domain.AdminUser, error) {
	var u domain.AdminUser
	err := s.db.WithContext(ctx).Where("username = ? AND is_active = ?", username, true).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find admin user: %w", err)
	}
	return &u, nil
}

func (s *Store) TouchAdminLogin(ctx context.Context, id uint) error {
	now := time.Now().UTC()
	err := s.db.WithContext(ctx).Model(&domain.AdminUser{}).
		Where("id = ?", id).Update("last_login", &now).Error
	if err != nil {
		return fmt.Errorf("record admin login: %w", err)
	}
	return nil
}
