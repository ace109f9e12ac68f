package documents

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ftgifting/backoffice/internal/platform/db"
)

var (
	ErrNotFound = errors.New("document not found")
)

// ListFilter narrows a collection scan.
type ListFilter struct {
	Status *Status
	Limit  int
	Offset int
}

// Patch is a partial update. Nil fields are not written, mirroring how the
// store rejects undefined values.
type Patch struct {
	Status             *Status    `json:"status,omitempty"`
	ConvertedToInvoice *string    `json:"convertedToInvoice,omitempty"`
	PaymentDue         *time.Time `json:"paymentDue,omitempty"`
}

// Repository persists documents.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	Get(ctx context.Context, kind Kind, id uuid.UUID) (*Document, error)
	GetByCustomID(ctx context.Context, kind Kind, customID string) (*Document, error)
	List(ctx context.Context, kind Kind, filter ListFilter) ([]Document, error)
	ListCustomIDs(ctx context.Context, kind Kind, prefix string) ([]string, error)
	Create(ctx context.Context, doc Document) error
	Save(ctx context.Context, doc Document) error
	Update(ctx context.Context, kind Kind, id uuid.UUID, patch Patch) error
	Delete(ctx context.Context, kind Kind, id uuid.UUID) error
	CountByStatus(ctx context.Context, kind Kind) (map[Status]int, error)
	SumOutstanding(ctx context.Context, kind Kind) (float64, error)
}

type dbtx interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

type repository struct {
	db   dbtx
	pool *pgxpool.Pool
}

// NewRepository constructs the Postgres-backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool, pool: pool}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &repository{db: tx, pool: r.pool})
	})
}

const documentColumns = `id, kind, custom_id, status, currency, description, terms,
	client_id, client_name, client_email, client_street, client_city, client_post_code,
	client_country, client_has_vat, items, payment_terms, created_at, payment_due,
	updated_at, quotation_id, converted_to_invoice`

func (r *repository) Get(ctx context.Context, kind Kind, id uuid.UUID) (*Document, error) {
	row := r.db.QueryRow(ctx, fmt.Sprintf(`SELECT %s FROM documents WHERE kind = $1 AND id = $2`, documentColumns), kind, id)
	return scanDocument(row)
}

func (r *repository) GetByCustomID(ctx context.Context, kind Kind, customID string) (*Document, error) {
	row := r.db.QueryRow(ctx, fmt.Sprintf(`SELECT %s FROM documents WHERE kind = $1 AND custom_id = $2 ORDER BY created_at DESC LIMIT 1`, documentColumns), kind, customID)
	return scanDocument(row)
}

func (r *repository) List(ctx context.Context, kind Kind, filter ListFilter) ([]Document, error) {
	query := fmt.Sprintf(`SELECT %s FROM documents WHERE kind = $1`, documentColumns)
	args := []interface{}{kind}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	query += " ORDER BY created_at DESC, custom_id DESC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		doc, err := scanDocumentRow(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}
	return docs, rows.Err()
}

func (r *repository) ListCustomIDs(ctx context.Context, kind Kind, prefix string) ([]string, error) {
	rows, err := r.db.Query(ctx,
		`SELECT custom_id FROM documents WHERE kind = $1 AND custom_id LIKE $2 || '%'`,
		kind, prefix)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *repository) Create(ctx context.Context, doc Document) error {
	items, err := json.Marshal(doc.Items)
	if err != nil {
		return fmt.Errorf("marshal items: %w", err)
	}
	_, err = r.db.Exec(ctx, `
		INSERT INTO documents (
			id, kind, custom_id, status, currency, description, terms,
			client_id, client_name, client_email, client_street, client_city,
			client_post_code, client_country, client_has_vat, items, payment_terms,
			created_at, payment_due, updated_at, quotation_id, converted_to_invoice
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22)`,
		doc.ID, doc.Kind, doc.CustomID, doc.Status, doc.Currency,
		textOrNil(doc.Description), textOrNil(doc.TermsAndConditions),
		doc.ClientID, doc.ClientName, textOrNil(doc.ClientEmail),
		textOrNil(doc.ClientAddress.Street), textOrNil(doc.ClientAddress.City),
		textOrNil(doc.ClientAddress.PostCode), textOrNil(doc.ClientAddress.Country),
		doc.ClientHasVAT, items, doc.PaymentTerms,
		doc.CreatedAt, doc.PaymentDue, time.Now(), doc.QuotationID, doc.ConvertedToInvoice)
	return err
}

func (r *repository) Save(ctx context.Context, doc Document) error {
	items, err := json.Marshal(doc.Items)
	if err != nil {
		return fmt.Errorf("marshal items: %w", err)
	}
	tag, err := r.db.Exec(ctx, `
		UPDATE documents SET
			status = $3, currency = $4, description = $5, terms = $6,
			client_id = $7, client_name = $8, client_email = $9, client_street = $10,
			client_city = $11, client_post_code = $12, client_country = $13,
			client_has_vat = $14, items = $15, payment_terms = $16, payment_due = $17,
			updated_at = NOW(), quotation_id = $18, converted_to_invoice = $19
		WHERE kind = $1 AND id = $2`,
		doc.Kind, doc.ID, doc.Status, doc.Currency,
		textOrNil(doc.Description), textOrNil(doc.TermsAndConditions),
		doc.ClientID, doc.ClientName, textOrNil(doc.ClientEmail),
		textOrNil(doc.ClientAddress.Street), textOrNil(doc.ClientAddress.City),
		textOrNil(doc.ClientAddress.PostCode), textOrNil(doc.ClientAddress.Country),
		doc.ClientHasVAT, items, doc.PaymentTerms, doc.PaymentDue,
		doc.QuotationID, doc.ConvertedToInvoice)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) Update(ctx context.Context, kind Kind, id uuid.UUID, patch Patch) error {
	query := "UPDATE documents SET updated_at = NOW()"
	args := []interface{}{kind, id}
	if patch.Status != nil {
		args = append(args, *patch.Status)
		query += fmt.Sprintf(", status = $%d", len(args))
	}
	if patch.ConvertedToInvoice != nil {
		args = append(args, *patch.ConvertedToInvoice)
		query += fmt.Sprintf(", converted_to_invoice = $%d", len(args))
	}
	if patch.PaymentDue != nil {
		args = append(args, *patch.PaymentDue)
		query += fmt.Sprintf(", payment_due = $%d", len(args))
	}
	query += " WHERE kind = $1 AND id = $2"

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, kind Kind, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM documents WHERE kind = $1 AND id = $2`, kind, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) CountByStatus(ctx context.Context, kind Kind) (map[Status]int, error) {
	rows, err := r.db.Query(ctx,
		`SELECT status, COUNT(*) FROM documents WHERE kind = $1 GROUP BY status`, kind)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[Status]int)
	for rows.Next() {
		var status Status
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

func (r *repository) SumOutstanding(ctx context.Context, kind Kind) (float64, error) {
	// Outstanding value is derived from items so it can never drift from them.
	docs, err := r.List(ctx, kind, ListFilter{Status: statusPtr(StatusPending)})
	if err != nil {
		return 0, err
	}
	var sum float64
	for _, doc := range docs {
		sum += doc.GrandTotal
	}
	return sum, nil
}

func statusPtr(s Status) *Status { return &s }

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row pgx.Row) (*Document, error) {
	doc, err := scanDocumentRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return doc, nil
}

func scanDocumentRow(row rowScanner) (*Document, error) {
	var doc Document
	var description, terms, clientEmail, street, city, postCode, country, convertedTo pgtype.Text
	var clientID, quotationID pgtype.UUID
	var items []byte
	var createdAt, paymentDue, updatedAt pgtype.Timestamptz

	err := row.Scan(
		&doc.ID, &doc.Kind, &doc.CustomID, &doc.Status, &doc.Currency,
		&description, &terms, &clientID, &doc.ClientName, &clientEmail,
		&street, &city, &postCode, &country, &doc.ClientHasVAT, &items,
		&doc.PaymentTerms, &createdAt, &paymentDue, &updatedAt,
		&quotationID, &convertedTo,
	)
	if err != nil {
		return nil, err
	}

	doc.Description = description.String
	doc.TermsAndConditions = terms.String
	doc.ClientEmail = clientEmail.String
	doc.ClientAddress = Address{
		Street:   street.String,
		City:     city.String,
		PostCode: postCode.String,
		Country:  country.String,
	}
	if clientID.Valid {
		id := uuid.UUID(clientID.Bytes)
		doc.ClientID = &id
	}
	if quotationID.Valid {
		id := uuid.UUID(quotationID.Bytes)
		doc.QuotationID = &id
	}
	if convertedTo.Valid {
		val := convertedTo.String
		doc.ConvertedToInvoice = &val
	}
	if createdAt.Valid {
		doc.CreatedAt = createdAt.Time
	}
	if paymentDue.Valid {
		doc.PaymentDue = paymentDue.Time
	}
	if updatedAt.Valid {
		doc.UpdatedAt = updatedAt.Time
	}
	if len(items) > 0 {
		if err := json.Unmarshal(items, &doc.Items); err != nil {
			return nil, fmt.Errorf("unmarshal items: %w", err)
		}
	}

	Normalize(&doc)
	return &doc, nil
}

func textOrNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
