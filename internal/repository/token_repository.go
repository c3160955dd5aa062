package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"tasktracker/internal/model"
)

// TokenRepository tracks issued refresh tokens by their JWT ID.
type TokenRepository struct {
	db *gorm.DB
}

func NewTokenRepository(db *gorm.DB) *TokenRepository {
	return &TokenRepository{db: db}
}

func (r *TokenRepository) Create(ctx context.Context, token *model.RefreshToken) error {
	if err := r.db.WithContext(ctx).Create(token).Error; err != nil {
		return fmt.Errorf("create refresh token: %w", err)
	}
	return nil
}

func (r *TokenRepository) FindByJTI(ctx context.Context, jti string) (*model.RefreshToken, error) {
	var token model.RefreshToken
	if err := r.db.WithContext(ctx).Where("jti = ?", jti).First(&token).Error; err != nil {
		return nil, err
	}
	return &token, nil
}

// Revoke marks the refresh token with the given JWT ID as withdrawn.
func (r *TokenRepository) Revoke(ctx context.Context, jti string, at time.Time) error {
	err := r.db.WithContext(ctx).Model(&model.RefreshToken{}).
		Where("jti = ?", jti).
		Update("revoked_at", at).Error
	if err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	return nil
}

// DeleteExpired removes refresh-token rows past their expiry along
// with revoked ones.
func (r *TokenRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("expires_at < ? OR revoked_at IS NOT NULL", now).
		Delete(&model.RefreshToken{})
	if res.Error != nil {
		return 0, fmt.Errorf("purge refresh tokens: %w", res.Error)
	}
	return res.RowsAffected, nil
}
