package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"storefront/internal/domain"
)

var (
	otpRegex   = regexp.MustCompile(`^\d{6}$`)
	phoneRegex = regexp.MustCompile(`^\d{10}$`)
)

// DevConsoleSender logs codes instead of texting them.
type DevConsoleSender struct {
	log *zap.Logger
}

func NewDevConsoleSender(log *zap.Logger) *DevConsoleSender {
	return &DevConsoleSender{log: log}
}

func (s *DevConsoleSender) SendOTP(_ context.Context, phone, code string) error {
	s.log.Info("[DEV-SMS] login code", zap.String("phone", phone), zap.String("code", code))
	return nil
}

func normalizePhone(phone string) (string, error) {
	p := strings.TrimSpace(phone)
	p = strings.TrimPrefix(p, "+91")
	p = strings.ReplaceAll(p, " ", "")
	if !phoneRegex.MatchString(p) {
		return "", ErrInvalidPhone
	}
	return p, nil
}

func (s *Service) SendOTP(ctx context.Context, phone string) error {
	phone, err := normalizePhone(phone)
	if err != nil {
		return err
	}

	now := s.now()
	current, err := s.otps.Get(ctx, phone)
	if err != nil {
		return err
	}
	if current != nil && current.UsedAt == nil && current.LastSentAt.Add(s.cfg.OTPResend).After(now) {
		return ErrOTPCooldown
	}

	code, err := generateOTP()
	if err != nil {
		return err
	}
	if err := s.otps.Issue(ctx, phone, hashWithPepper(code, s.cfg.OTPPepper), now, now.Add(s.cfg.OTPTTL)); err != nil {
		return err
	}
	return s.sender.SendOTP(ctx, phone, code)
}

// VerifyOTP signs the phone's owner in, registering a customer account on
// first use.
func (s *Service) VerifyOTP(ctx context.Context, phone, code string, meta ClientMeta) (*Session, error) {
	phone, err := normalizePhone(phone)
	if err != nil {
		return nil, err
	}
	code = strings.TrimSpace(code)
	if !otpRegex.MatchString(code) {
		return nil, ErrInvalidOTP
	}

	now := s.now()
	row, err := s.otps.Get(ctx, phone)
	if err != nil {
		return nil, err
	}
	if row == nil || row.UsedAt != nil || !row.ExpiresAt.After(now) {
		return nil, ErrInvalidOTP
	}
	if row.Attempts >= s.cfg.OTPMaxAttempts {
		return nil, ErrTooManyAttempts
	}

	if hashWithPepper(code, s.cfg.OTPPepper) != row.CodeHash {
		attempts, err := s.otps.Fail(ctx, row)
		if err != nil {
			return nil, err
		}
		if attempts >= s.cfg.OTPMaxAttempts {
			return nil, ErrTooManyAttempts
		}
		return nil, ErrInvalidOTP
	}
	if err := s.otps.MarkUsed(ctx, row.ID, now); err != nil {
		return nil, err
	}

	user, err := s.users.GetByPhone(ctx, phone)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		user = &domain.User{Name: "Customer", Phone: &phone, Role: domain.RoleCustomer}
		if err := s.users.Create(ctx, user); err != nil {
			return nil, err
		}
		s.log.Info("registered customer by phone", zap.Int64("user_id", user.ID))
	} else if err != nil {
		return nil, err
	}

	return s.startSession(ctx, user, meta)
}

func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
