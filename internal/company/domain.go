package company

import (
	"time"

	"github.com/hisaab-pk/hisaab/internal/fbr"
)

// Company is a tenant: one registered business reporting invoices to FBR.
type Company struct {
	ID                int64
	Name              string
	Identifier        string
	Scheme            fbr.IdentifierScheme
	Province          string
	Address           string
	DefaultScenarioID string
	FBRToken          string
	FBREnvironment    string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// UpdateSettingsInput carries the mutable tenant settings.
type UpdateSettingsInput struct {
	Name              string
	Identifier        string
	Scheme            fbr.IdentifierScheme
	Province          string
	Address           string
	DefaultScenarioID string
	FBRToken          string
	FBREnvironment    string
}

// FBR environment labels.
const (
	EnvSandbox    = "sandbox"
	EnvProduction = "production"
)
