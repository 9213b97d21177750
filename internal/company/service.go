package company

import (
	"context"
	"errors"
	"fmt"

	"github.com/hisaab-pk/hisaab/internal/fbr"
)

// RepositoryPort defines data access for tenant settings.
type RepositoryPort interface {
	GetCompany(ctx context.Context, id int64) (*Company, error)
	UpdateCompany(ctx context.Context, id int64, input UpdateSettingsInput) (*Company, error)
	CreateCompany(ctx context.Context, name string) (*Company, error)
}

// Service handles tenant settings.
type Service struct {
	repo RepositoryPort
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// Get returns the tenant profile.
func (s *Service) Get(ctx context.Context, id int64) (*Company, error) {
	if id == 0 {
		return nil, errors.New("company ID required")
	}
	return s.repo.GetCompany(ctx, id)
}

// UpdateSettings validates and stores tenant settings. The registration
// identifier must normalize under the chosen scheme; an invalid one would
// block every FBR submission later, so it is rejected here.
func (s *Service) UpdateSettings(ctx context.Context, id int64, input UpdateSettingsInput) (*Company, error) {
	if id == 0 {
		return nil, errors.New("company ID required")
	}
	if input.Name == "" {
		return nil, errors.New("company name required")
	}
	if input.Scheme == "" {
		input.Scheme = fbr.SchemeNTN
	}
	if input.Identifier != "" {
		if _, err := fbr.NormalizeIdentifier(input.Identifier, input.Scheme, fbr.PartySeller); err != nil {
			return nil, err
		}
	}
	switch input.FBREnvironment {
	case "", EnvSandbox, EnvProduction:
	default:
		return nil, fmt.Errorf("unknown fbr environment %q", input.FBREnvironment)
	}
	if input.FBREnvironment == "" {
		input.FBREnvironment = EnvSandbox
	}
	return s.repo.UpdateCompany(ctx, id, input)
}
