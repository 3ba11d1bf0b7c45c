package models

import (
	"time"
)

type UserRole string

const (
	RoleCustomer UserRole = "customer"
	RoleProvider UserRole = "provider"
	RoleAdmin    UserRole = "admin"
)

type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusPending   UserStatus = "pending" // provider awaiting admin approval
	UserStatusApproved  UserStatus = "approved"
	UserStatusSuspended UserStatus = "suspended"
	UserStatusBanned    UserStatus = "banned"
)

type User struct {
	ID             uint       `json:"id" gorm:"primaryKey"`
	Name           string     `json:"name" gorm:"size:255;not null"`
	Email          string     `json:"email" gorm:"size:255;uniqueIndex;not null"`
	PasswordHash   string     `json:"-" gorm:"size:255;not null"`
	Role           UserRole   `json:"role" gorm:"type:varchar(20);not null;default:'customer';check:role IN ('customer','provider','admin')"`
	Status         UserStatus `json:"status" gorm:"type:varchar(20);not null;default:'active'"`
	SuspendedUntil *time.Time `json:"suspended_until"`
	PhotoURL       *string    `json:"photo_url" gorm:"size:500"`
	Skills         string     `json:"skills" gorm:"type:text"` // comma-separated provider trades
	CreatedAt      time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt      time.Time  `json:"updated_at" gorm:"autoUpdateTime"`

	// Relationships
	Notifications []Notification `json:"notifications,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) IsProvider() bool {
	return u.Role == RoleProvider
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u *User) IsCustomer() bool {
	return u.Role == RoleCustomer
}

// RegisterRequest is the payload for POST /auth/register
type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Role     string `json:"role" binding:"required,oneof=customer provider"`
}

// LoginRequest is the payload for POST /auth/login
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}
