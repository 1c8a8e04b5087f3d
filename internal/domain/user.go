package domain

import "time"

type UserRole string

const (
	RoleCustomer UserRole = "customer"
	RoleAdmin    UserRole = "admin"
)

type User struct {
	ID           int64     `json:"id" gorm:"primaryKey"`
	Name         string    `json:"name" gorm:"size:120;not null"`
	Email        *string   `json:"email,omitempty" gorm:"size:255;uniqueIndex"`
	Phone        *string   `json:"phone,omitempty" gorm:"size:20;uniqueIndex"`
	PasswordHash string    `json:"-"`
	Role         UserRole  `json:"role" gorm:"size:20;not null;default:customer"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
