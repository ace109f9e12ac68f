package clients

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Service wraps client business rules.
type Service struct {
	repo Repository
}

// NewService constructs a new Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Client, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]Client, error) {
	return s.repo.List(ctx)
}

// Create stores a new client. HasVAT is derived from the country, never taken
// from the request.
func (s *Service) Create(ctx context.Context, req UpsertClientRequest) (*Client, error) {
	client := Client{
		ID:          uuid.New(),
		CompanyName: req.CompanyName,
		Email:       req.Email,
		Address:     req.Address,
		City:        req.City,
		PostCode:    req.PostCode,
		Country:     req.Country,
		HasVAT:      HasVAT(req.Country),
		TRN:         req.TRN,
	}
	if err := s.repo.Create(ctx, client); err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}
	return s.repo.Get(ctx, client.ID)
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req UpsertClientRequest) (*Client, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get client: %w", err)
	}
	existing.CompanyName = req.CompanyName
	existing.Email = req.Email
	existing.Address = req.Address
	existing.City = req.City
	existing.PostCode = req.PostCode
	existing.Country = req.Country
	existing.HasVAT = HasVAT(req.Country)
	existing.TRN = req.TRN
	if err := s.repo.Update(ctx, *existing); err != nil {
		return nil, fmt.Errorf("update client: %w", err)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}
