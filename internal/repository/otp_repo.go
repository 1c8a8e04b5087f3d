package repository

import (
	"context"
	"errors"
	"time"

	"storefront/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OTPRepository struct {
	db *gorm.DB
}

func NewOTPRepository(db *gorm.DB) *OTPRepository {
	return &OTPRepository{db: db}
}

// Get returns nil, nil when no code was ever sent to phone.
func (r *OTPRepository) Get(ctx context.Context, phone string) (*domain.OTPCode, error) {
	var row domain.OTPCode
	err := r.db.WithContext(ctx).Where("phone = ?", phone).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// Issue replaces any pending code for the phone and resets its attempts.
func (r *OTPRepository) Issue(ctx context.Context, phone, codeHash string, now, expiresAt time.Time) error {
	row := domain.OTPCode{
		Phone:      phone,
		CodeHash:   codeHash,
		LastSentAt: now,
		ExpiresAt:  expiresAt,
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "phone"}},
		DoUpdates: clause.Assignments(map[string]any{
			"code_hash":    codeHash,
			"attempts":     0,
			"last_sent_at": now,
			"expires_at":   expiresAt,
			"used_at":      nil,
		}),
	}).Create(&row).Error
}

// Fail records a wrong guess and returns the new attempt count.
func (r *OTPRepository) Fail(ctx context.Context, row *domain.OTPCode) (int, error) {
	row.Attempts++
	err := r.db.WithContext(ctx).Model(&domain.OTPCode{}).
		Where("id = ?", row.ID).
		Update("attempts", row.Attempts).Error
	return row.Attempts, err
}

func (r *OTPRepository) MarkUsed(ctx context.Context, id int64, now time.Time) error {
	return r.db.WithContext(ctx).Model(&domain.OTPCode{}).
		Where("id = ?", id).
		Update("used_at", now).Error
}

func (r *OTPRepository) DeleteStale(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("expires_at < ? OR used_at IS NOT NULL", now).
		Delete(&domain.OTPCode{})
	return res.RowsAffected, res.Error
}
