package domain

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// User represents a user in the system
type User struct {
	ID           int       `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Role         Role      `json:"role" db:"role"`
	Username     string    `json:"username" db:"username"`
	PasswordHash string    `json:"-" db:"password"`
	CompanyID    *int      `json:"companyId,omitempty" db:"company_id"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// UserInput represents input for creating/updating a user
type UserInput struct {
	Name      string `mapstructure:"name"`
	Role      Role   `mapstructure:"role"`
	Username  string `mapstructure:"username"`
	Password  string `mapstructure:"password"`
	CompanyID *int   `mapstructure:"companyId"`
}

// LoginInput represents login credentials
type LoginInput struct {
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// LoginResult is returned by a successful login
type LoginResult struct {
	Token string `json:"token"`
}

// JWTClaims represents JWT token claims
type JWTClaims struct {
	UserID int    `json:"id"`
	Role   Role   `json:"role"`
	Name   string `json:"name"`
	jwt.RegisteredClaims
}
