package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrCompanyMismatch occurs when a record belongs to another tenant.
	ErrCompanyMismatch = errors.New("record belongs to another company")
)
