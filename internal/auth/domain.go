// Package auth implements account registration and session login.
package auth

import "time"

// User is an account bound to exactly one tenant company.
type User struct {
	ID           int64
	CompanyID    int64
	Email        string
	FullName     string
	PasswordHash string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// RegisterInput carries everything needed to open a new tenant account.
type RegisterInput struct {
	CompanyName string
	FullName    string
	Email       string
	Password    string
}
