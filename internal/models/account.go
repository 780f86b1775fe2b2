package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// Role is the closed set of account roles.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin:
		return true
	}
	return false
}

// Account is a registered user. Accounts are created at registration and
// read-only to the core except for role/active checks.
type Account struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	DisplayName  string    `json:"display_name"`
	Email        string    `json:"email" gorm:"uniqueIndex"`
	Role         Role      `json:"role" gorm:"type:varchar(16)"`
	PasswordHash string    `json:"-"`
	Active       bool      `json:"active" gorm:"default:true"`
	JoinedAt     time.Time `json:"joined_at"`
}

// AccountSummary is the compact account shape embedded in list responses.
type AccountSummary struct {
	ID          uint   `json:"id"`
	DisplayName string `json:"display_name"`
	Role        Role   `json:"role"`
}

// ToSummary converts an account to its compact representation.
func (a *Account) ToSummary() AccountSummary {
	return AccountSummary{ID: a.ID, DisplayName: a.DisplayName, Role: a.Role}
}

// Principal is the authenticated identity resolved from a verified token,
// valid only for the lifetime of one request.
type Principal struct {
	ID          uint   `json:"id"`
	Role        Role   `json:"role"`
	DisplayName string `json:"display_name"`
}

// IsAdmin reports whether the principal carries the admin role.
func (p *Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// TokenClaims are the custom claims embedded in every issued token,
// extending standard jwt.RegisteredClaims.
type TokenClaims struct {
	UserID      uint   `json:"user_id"`
	Role        Role   `json:"role"`
	DisplayName string `json:"name"`
	jwt.RegisteredClaims
}

// SignupRequest defines the request body for local registration.
type SignupRequest struct {
	DisplayName string `json:"display_name" validate:"required,min=2,max=50"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8"`
}

// SigninRequest defines the request body for local authentication.
type SigninRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}
