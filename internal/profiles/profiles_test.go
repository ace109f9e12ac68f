package profiles

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegionForCountry(t *testing.T) {
	require.Equal(t, RegionUAE, RegionForCountry("UAE"))
	require.Equal(t, RegionUAE, RegionForCountry("United Arab Emirates"))
	require.Equal(t, RegionUAE, RegionForCountry("Dubai, U.A.E emirates"))
	require.Equal(t, RegionInternational, RegionForCountry("Singapore"))
	require.Equal(t, RegionInternational, RegionForCountry(""))
}

type stubProfileRepo struct {
	profiles map[Region]CompanyProfile
	err      error
}

func (r *stubProfileRepo) GetByRegion(ctx context.Context, region Region) (*CompanyProfile, error) {
	if r.err != nil {
		return nil, r.err
	}
	p, ok := r.profiles[region]
	if !ok {
		return nil, errors.New("no profile")
	}
	return &p, nil
}

func (r *stubProfileRepo) Upsert(ctx context.Context, profile CompanyProfile) error {
	return nil
}

func TestResolvePicksRegionalProfile(t *testing.T) {
	repo := &stubProfileRepo{profiles: map[Region]CompanyProfile{
		RegionUAE:  {Region: RegionUAE, Name: "FT Gifting Trading Co. LLC"},
		RegionInternational: {Region: RegionInternational, Name: "FT Gifting Trading Co."},
	}}
	svc := NewService(repo, slog.New(slog.NewTextHandler(io.Discard, nil)))

	profile := svc.Resolve(context.Background(), "United Arab Emirates")
	require.Equal(t, "FT Gifting Trading Co. LLC", profile.Name)

	profile = svc.Resolve(context.Background(), "Singapore")
	require.Equal(t, "FT Gifting Trading Co.", profile.Name)
}

func TestResolveDegradesToDefault(t *testing.T) {
	repo := &stubProfileRepo{err: errors.New("store down")}
	svc := NewService(repo, slog.New(slog.NewTextHandler(io.Discard, nil)))

	profile := svc.Resolve(context.Background(), "Singapore")
	require.Equal(t, DefaultProfile.Name, profile.Name)
}
