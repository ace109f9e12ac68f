package clients

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("client not found")

// Repository persists client records.
type Repository interface {
	Get(ctx context.Context, id uuid.UUID) (*Client, error)
	List(ctx context.Context) ([]Client, error)
	Create(ctx context.Context, client Client) error
	Update(ctx context.Context, client Client) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the Postgres-backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const clientColumns = `id, company_name, email, address, city, post_code, country, has_vat, trn, created_at, updated_at`

func (r *repository) Get(ctx context.Context, id uuid.UUID) (*Client, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+clientColumns+` FROM clients WHERE id = $1`, id)
	client, err := scanClient(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return client, nil
}

func (r *repository) List(ctx context.Context) ([]Client, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+clientColumns+` FROM clients ORDER BY company_name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []Client
	for rows.Next() {
		client, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *client)
	}
	return list, rows.Err()
}

func (r *repository) Create(ctx context.Context, client Client) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO clients (id, company_name, email, address, city, post_code, country, has_vat, trn, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,NOW(),NOW())`,
		client.ID, client.CompanyName, nullable(client.Email), nullable(client.Address),
		nullable(client.City), nullable(client.PostCode), nullable(client.Country),
		client.HasVAT, nullable(client.TRN))
	return err
}

func (r *repository) Update(ctx context.Context, client Client) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE clients SET company_name = $2, email = $3, address = $4, city = $5,
			post_code = $6, country = $7, has_vat = $8, trn = $9, updated_at = NOW()
		WHERE id = $1`,
		client.ID, client.CompanyName, nullable(client.Email), nullable(client.Address),
		nullable(client.City), nullable(client.PostCode), nullable(client.Country),
		client.HasVAT, nullable(client.TRN))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM clients WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanClient(row rowScanner) (*Client, error) {
	var client Client
	var email, address, city, postCode, country, trn pgtype.Text
	var createdAt, updatedAt pgtype.Timestamptz
	err := row.Scan(&client.ID, &client.CompanyName, &email, &address, &city,
		&postCode, &country, &client.HasVAT, &trn, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	client.Email = email.String
	client.Address = address.String
	client.City = city.String
	client.PostCode = postCode.String
	client.Country = country.String
	client.TRN = trn.String
	if createdAt.Valid {
		client.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		client.UpdatedAt = updatedAt.Time
	}
	return &client, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
