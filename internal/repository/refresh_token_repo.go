package repository

import (
	"context"
	"time"

	"storefront/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RefreshTokenRepository provides DB access for refresh tokens.
type RefreshTokenRepository struct {
	db *gorm.DB
}

func NewRefreshTokenRepository(db *gorm.DB) *RefreshTokenRepository {
	return &RefreshTokenRepository{db: db}
}

// WithTx binds the repository to a running transaction.
func (r *RefreshTokenRepository) WithTx(tx *gorm.DB) *RefreshTokenRepository {
	return &RefreshTokenRepository{db: tx}
}

func (r *RefreshTokenRepository) Transaction(ctx context.Context, fn func(*RefreshTokenRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(r.WithTx(tx))
	})
}

func (r *RefreshTokenRepository) Create(ctx context.Context, t *domain.RefreshToken) error {
	return r.db.WithContext(ctx).Create(t).Error
}

// GetByHashForUpdate locks the row on databases that support it.
func (r *RefreshTokenRepository) GetByHashForUpdate(ctx context.Context, hash string) (*domain.RefreshToken, error) {
	var t domain.RefreshToken
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("token_hash = ?", hash).
		First(&t).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *RefreshTokenRepository) GetByHash(ctx context.Context, hash string) (*domain.RefreshToken, error) {
	var t domain.RefreshToken
	if err := r.db.WithContext(ctx).Where("token_hash = ?", hash).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

// MarkUsed spends a token as part of a rotation.
func (r *RefreshTokenRepository) MarkUsed(ctx context.Context, id int64, now time.Time) error {
	return r.db.WithContext(ctx).Model(&domain.RefreshToken{}).
		Where("id = ?", id).
		Updates(map[string]any{"used_at": now, "revoked_at": now}).Error
}

func (r *RefreshTokenRepository) Revoke(ctx context.Context, id int64, now time.Time) error {
	return r.db.WithContext(ctx).Model(&domain.RefreshToken{}).
		Where("id = ? AND revoked_at IS NULL", id).
		Update("revoked_at", now).Error
}

// RevokeFamily revokes every live token of a rotation chain and flags the
// token that was replayed.
func (r *RefreshTokenRepository) RevokeFamily(ctx context.Context, familyID string, reusedID int64, now time.Time) error {
	db := r.db.WithContext(ctx)
	if err := db.Model(&domain.RefreshToken{}).
		Where("id = ?", reusedID).
		Update("reuse_detected_at", now).Error; err != nil {
		return err
	}
	return db.Model(&domain.RefreshToken{}).
		Where("family_id = ? AND revoked_at IS NULL", familyID).
		Update("revoked_at", now).Error
}

func (r *RefreshTokenRepository) RevokeByUser(ctx context.Context, userID int64, now time.Time) error {
	return r.db.WithContext(ctx).Model(&domain.RefreshToken{}).
		Where("user_id = ? AND revoked_at IS NULL", userID).
		Update("revoked_at", now).Error
}

// DeleteStale removes expired tokens and tokens revoked before
// revokedBefore. It returns the number of rows removed.
func (r *RefreshTokenRepository) DeleteStale(ctx context.Context, now, revokedBefore time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("expires_at < ? OR (revoked_at IS NOT NULL AND revoked_at < ?)", now, revokedBefore).
		Delete(&domain.RefreshToken{})
	return res.RowsAffected, res.Error
}
