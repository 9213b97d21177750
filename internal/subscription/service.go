package subscription

import (
	"context"
	"fmt"
)

// RepositoryPort defines data access for subscriptions.
type RepositoryPort interface {
	Create(ctx context.Context, companyID int64, plan Plan) (*Subscription, error)
	GetCurrent(ctx context.Context, companyID int64) (*Subscription, error)
	ExpireOverdue(ctx context.Context) (int64, error)
}

// Service handles subscription business logic. Activation itself happens in
// the payment callback transaction, not here.
type Service struct {
	repo RepositoryPort
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// Plans returns the catalog.
func (s *Service) Plans() []Plan {
	return Catalog
}

// StartPending creates a pending subscription awaiting payment.
func (s *Service) StartPending(ctx context.Context, companyID int64, planCode string) (*Subscription, error) {
	plan, ok := PlanByCode(planCode)
	if !ok {
		return nil, fmt.Errorf("subscription: unknown plan %q", planCode)
	}
	return s.repo.Create(ctx, companyID, plan)
}

// Current returns the tenant's newest subscription.
func (s *Service) Current(ctx context.Context, companyID int64) (*Subscription, error) {
	return s.repo.GetCurrent(ctx, companyID)
}

// ExpireOverdue marks active subscriptions past their expiry as expired.
func (s *Service) ExpireOverdue(ctx context.Context) (int64, error) {
	return s.repo.ExpireOverdue(ctx)
}
