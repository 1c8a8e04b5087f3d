package domain

import "time"

// OTPCode is the single pending login code for a phone number.
type OTPCode struct {
	ID         int64      `gorm:"primaryKey"`
	Phone      string     `gorm:"size:20;uniqueIndex;not null"`
	CodeHash   string     `gorm:"size:64;not null"`
	Attempts   int        `gorm:"not null;default:0"`
	LastSentAt time.Time  `gorm:"not null"`
	ExpiresAt  time.Time  `gorm:"index;not null"`
	UsedAt     *time.Time
	CreatedAt  time.Time
}

func (OTPCode) TableName() string { return "otp_codes" }
