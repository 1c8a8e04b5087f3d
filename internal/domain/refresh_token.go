package domain

import "time"

// RefreshToken is one link in a rotation chain. Only the peppered SHA-256
// of the raw token is stored. Every token minted from the same login
// shares FamilyID, so presenting a spent token revokes the whole chain.
type RefreshToken struct {
	ID     int64 `json:"id" gorm:"primaryKey"`
	UserID int64 `json:"userId" gorm:"index;not null"`
	User   User  `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`

	TokenHash   string  `json:"-" gorm:"size:64;uniqueIndex;not null"`
	JTI         string  `json:"jti" gorm:"size:36;not null"`
	FamilyID    string  `json:"familyId" gorm:"size:36;index;not null"`
	RotatedFrom *int64  `json:"rotatedFrom,omitempty"`
	UserAgent   *string `json:"-" gorm:"size:255"`
	IP          *string `json:"-" gorm:"size:64"`

	CreatedAt       time.Time  `json:"createdAt"`
	ExpiresAt       time.Time  `json:"expiresAt" gorm:"index;not null"`
	UsedAt          *time.Time `json:"usedAt,omitempty"`
	RevokedAt       *time.Time `json:"revokedAt,omitempty" gorm:"index"`
	ReuseDetectedAt *time.Time `json:"reuseDetectedAt,omitempty"`
}

func (t *RefreshToken) IsExpired(now time.Time) bool {
	return !t.ExpiresAt.After(now)
}

// IsSpent reports a token that was already rotated or revoked.
func (t *RefreshToken) IsSpent() bool {
	return t.UsedAt != nil || t.RevokedAt != nil
}
