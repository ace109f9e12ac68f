package profiles

import (
	"context"
	"log/slog"
)

// Service resolves the company profile for a client country.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService constructs a new Service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Resolve picks the regional profile matching the client country. Lookup
// failures degrade to the hardcoded non-UAE default so rendering never blocks
// on the profile store.
func (s *Service) Resolve(ctx context.Context, country string) CompanyProfile {
	region := RegionForCountry(country)
	profile, err := s.repo.GetByRegion(ctx, region)
	if err != nil {
		s.logger.Warn("profile lookup failed, using default",
			slog.String("region", string(region)), slog.Any("error", err))
		return DefaultProfile
	}
	return *profile
}
