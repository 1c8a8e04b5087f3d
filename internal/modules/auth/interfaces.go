package auth

import (
	"context"
	"time"

	"storefront/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByPhone(ctx context.Context, phone string) (*domain.User, error)
}

type OTPRepository interface {
	Get(ctx context.Context, phone string) (*domain.OTPCode, error)
	Issue(ctx context.Context, phone, codeHash string, now, expiresAt time.Time) error
	Fail(ctx context.Context, row *domain.OTPCode) (int, error)
	MarkUsed(ctx context.Context, id int64, now time.Time) error
}

type jwtService interface {
	GenerateToken(userID int64, role string) (string, error)
}

// OTPSender delivers a login code to a phone.
type OTPSender interface {
	SendOTP(ctx context.Context, phone, code string) error
}
