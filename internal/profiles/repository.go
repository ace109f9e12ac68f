package profiles

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("company profile not found")

// Repository reads and writes regional company profiles.
type Repository interface {
	GetByRegion(ctx context.Context, region Region) (*CompanyProfile, error)
	Upsert(ctx context.Context, profile CompanyProfile) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the Postgres-backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) GetByRegion(ctx context.Context, region Region) (*CompanyProfile, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT region, name, address, city, country, phone, email, trn, logo_path, bank_info
		FROM company_profiles WHERE region = $1`, region)

	var p CompanyProfile
	var city, phone, email, trn, logoPath, bankInfo pgtype.Text
	err := row.Scan(&p.Region, &p.Name, &p.Address, &city, &p.Country,
		&phone, &email, &trn, &logoPath, &bankInfo)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	p.City = city.String
	p.Phone = phone.String
	p.Email = email.String
	p.TRN = trn.String
	p.LogoPath = logoPath.String
	p.BankInfo = bankInfo.String
	return &p, nil
}

func (r *repository) Upsert(ctx context.Context, p CompanyProfile) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO company_profiles (region, name, address, city, country, phone, email, trn, logo_path, bank_info)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		ON CONFLICT (region) DO UPDATE SET
			name = EXCLUDED.name, address = EXCLUDED.address, city = EXCLUDED.city,
			country = EXCLUDED.country, phone = EXCLUDED.phone, email = EXCLUDED.email,
			trn = EXCLUDED.trn, logo_path = EXCLUDED.logo_path, bank_info = EXCLUDED.bank_info`,
		p.Region, p.Name, p.Address, nullable(p.City), p.Country, nullable(p.Phone),
		nullable(p.Email), nullable(p.TRN), nullable(p.LogoPath), nullable(p.BankInfo))
	return err
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
