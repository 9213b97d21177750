package company

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hisaab-pk/hisaab/internal/fbr"
	"github.com/hisaab-pk/hisaab/internal/shared"
)

type memoryCompanyRepo struct {
	companies map[int64]*Company
	nextID    int64
}

func newMemoryCompanyRepo() *memoryCompanyRepo {
	return &memoryCompanyRepo{companies: make(map[int64]*Company)}
}

func (r *memoryCompanyRepo) GetCompany(ctx context.Context, id int64) (*Company, error) {
	c, ok := r.companies[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *c
	return &copied, nil
}

func (r *memoryCompanyRepo) CreateCompany(ctx context.Context, name string) (*Company, error) {
	r.nextID++
	c := &Company{
		ID:                r.nextID,
		Name:              name,
		Scheme:            fbr.SchemeNTN,
		DefaultScenarioID: fbr.DefaultScenarioID,
		FBREnvironment:    EnvSandbox,
		CreatedAt:         time.Now(),
		UpdatedAt:         time.Now(),
	}
	r.companies[c.ID] = c
	return c, nil
}

func (r *memoryCompanyRepo) UpdateCompany(ctx context.Context, id int64, input UpdateSettingsInput) (*Company, error) {
	c, ok := r.companies[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	c.Name = input.Name
	c.Identifier = input.Identifier
	c.Scheme = input.Scheme
	c.Province = input.Province
	c.Address = input.Address
	c.DefaultScenarioID = input.DefaultScenarioID
	c.FBRToken = input.FBRToken
	c.FBREnvironment = input.FBREnvironment
	c.UpdatedAt = time.Now()
	return c, nil
}

func TestUpdateSettingsValidatesIdentifier(t *testing.T) {
	repo := newMemoryCompanyRepo()
	svc := NewService(repo)
	created, err := repo.CreateCompany(context.Background(), "Karachi Traders")
	require.NoError(t, err)

	_, err = svc.UpdateSettings(context.Background(), created.ID, UpdateSettingsInput{
		Name:       "Karachi Traders",
		Identifier: "12-34",
		Scheme:     fbr.SchemeNTN,
	})
	var idErr *fbr.InvalidIdentifierError
	require.True(t, errors.As(err, &idErr))

	updated, err := svc.UpdateSettings(context.Background(), created.ID, UpdateSettingsInput{
		Name:       "Karachi Traders",
		Identifier: "7654321-0",
		Scheme:     fbr.SchemeNTN,
	})
	require.NoError(t, err)
	require.Equal(t, "7654321-0", updated.Identifier)
	require.Equal(t, EnvSandbox, updated.FBREnvironment)
}

func TestUpdateSettingsRejectsUnknownEnvironment(t *testing.T) {
	repo := newMemoryCompanyRepo()
	svc := NewService(repo)
	created, err := repo.CreateCompany(context.Background(), "Acme")
	require.NoError(t, err)

	_, err = svc.UpdateSettings(context.Background(), created.ID, UpdateSettingsInput{
		Name:           "Acme",
		FBREnvironment: "staging",
	})
	require.Error(t, err)
}
