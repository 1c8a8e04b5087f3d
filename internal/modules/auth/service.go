package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"storefront/internal/domain"
	"storefront/internal/repository"
)

// Settings are the auth knobs of the backend config.
type Settings struct {
	RefreshPepper  string
	RefreshTTL     time.Duration
	OTPPepper      string
	OTPTTL         time.Duration
	OTPResend      time.Duration
	OTPMaxAttempts int
}

type ClientMeta struct {
	UserAgent string
	IP        string
}

// Session is what a successful login or refresh hands to the client.
type Session struct {
	User         *domain.User
	AccessToken  string
	RefreshToken string
}

// Service contains all business logic for authentication
type Service struct {
	users  UserRepository
	tokens *repository.RefreshTokenRepository
	otps   OTPRepository
	jwt    jwtService
	sender OTPSender
	cfg    Settings
	now    func() time.Time
	log    *zap.Logger
}

func NewService(
	users UserRepository,
	tokens *repository.RefreshTokenRepository,
	otps OTPRepository,
	jwt jwtService,
	sender OTPSender,
	cfg Settings,
	log *zap.Logger,
) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		users:  users,
		tokens: tokens,
		otps:   otps,
		jwt:    jwt,
		sender: sender,
		cfg:    cfg,
		now:    func() time.Time { return time.Now().UTC() },
		log:    log,
	}
}

// SetClock replaces the service clock; it must return UTC times.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

func (s *Service) Login(ctx context.Context, req LoginRequest, meta ClientMeta) (*Session, error) {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if user.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.startSession(ctx, user, meta)
}

// startSession opens a new refresh token family for user.
func (s *Service) startSession(ctx context.Context, user *domain.User, meta ClientMeta) (*Session, error) {
	access, err := s.jwt.GenerateToken(user.ID, string(user.Role))
	if err != nil {
		return nil, err
	}
	raw, hash, err := generateOpaqueToken(s.cfg.RefreshPepper)
	if err != nil {
		return nil, err
	}

	if err := s.tokens.Create(ctx, &domain.RefreshToken{
		UserID:    user.ID,
		TokenHash: hash,
		JTI:       uuid.NewString(),
		FamilyID:  uuid.NewString(),
		ExpiresAt: s.now().Add(s.cfg.RefreshTTL),
		UserAgent: nullableString(meta.UserAgent),
		IP:        nullableString(meta.IP),
	}); err != nil {
		return nil, err
	}

	user.PasswordHash = ""
	return &Session{User: user, AccessToken: access, RefreshToken: raw}, nil
}

// Refresh rotates raw. Presenting an already rotated token revokes its
// whole family, ending every session descended from the same login.
func (s *Service) Refresh(ctx context.Context, raw string, meta ClientMeta) (*Session, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrInvalidRefreshToken
	}
	now := s.now()
	hash := hashWithPepper(raw, s.cfg.RefreshPepper)

	// The owner is loaded up front so the transaction below touches only
	// the token table.
	peek, err := s.tokens.GetByHash(ctx, hash)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, err
	}
	user, err := s.users.GetByID(ctx, peek.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, err
	}

	var (
		result *Session
		reused bool
	)
	err = s.tokens.Transaction(ctx, func(tx *repository.RefreshTokenRepository) error {
		current, err := tx.GetByHashForUpdate(ctx, hash)
		if err != nil {
			return err
		}
		if current.IsExpired(now) {
			return ErrInvalidRefreshToken
		}
		if current.IsSpent() {
			reused = true
			return tx.RevokeFamily(ctx, current.FamilyID, current.ID, now)
		}

		access, err := s.jwt.GenerateToken(user.ID, string(user.Role))
		if err != nil {
			return err
		}
		newRaw, newHash, err := generateOpaqueToken(s.cfg.RefreshPepper)
		if err != nil {
			return err
		}

		if err := tx.MarkUsed(ctx, current.ID, now); err != nil {
			return err
		}
		rotatedFrom := current.ID
		if err := tx.Create(ctx, &domain.RefreshToken{
			UserID:      current.UserID,
			TokenHash:   newHash,
			JTI:         uuid.NewString(),
			FamilyID:    current.FamilyID,
			RotatedFrom: &rotatedFrom,
			ExpiresAt:   now.Add(s.cfg.RefreshTTL),
			UserAgent:   nullableString(meta.UserAgent),
			IP:          nullableString(meta.IP),
		}); err != nil {
			return err
		}

		user.PasswordHash = ""
		result = &Session{User: user, AccessToken: access, RefreshToken: newRaw}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if reused {
		s.log.Warn("refresh token reuse detected, family revoked")
		return nil, ErrRefreshTokenReused
	}
	return result, nil
}

// Logout revokes raw. Unknown tokens are ignored.
func (s *Service) Logout(ctx context.Context, raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	token, err := s.tokens.GetByHash(ctx, hashWithPepper(raw, s.cfg.RefreshPepper))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	return s.tokens.Revoke(ctx, token.ID, s.now())
}

func (s *Service) GetCurrentUser(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = ""
	return user, nil
}

// HashPassword is exported for the seed command.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func generateOpaqueToken(pepper string) (raw string, hash string, err error) {
	buf := make([]byte, 32)
	if _, err = rand.Read(buf); err != nil {
		return "", "", err
	}
	raw = hex.EncodeToString(buf)
	return raw, hashWithPepper(raw, pepper), nil
}

func hashWithPepper(raw, pepper string) string {
	sum := sha256.Sum256([]byte(raw + pepper))
	return hex.EncodeToString(sum[:])
}

func nullableString(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}
