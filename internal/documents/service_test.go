package documents

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/ftgifting/backoffice/internal/clients"
	"github.com/ftgifting/backoffice/internal/shared"
)

type memoryRepo struct {
	docs map[Kind]map[uuid.UUID]Document
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{docs: make(map[Kind]map[uuid.UUID]Document)}
}

func (r *memoryRepo) bucket(kind Kind) map[uuid.UUID]Document {
	if r.docs[kind] == nil {
		r.docs[kind] = make(map[uuid.UUID]Document)
	}
	return r.docs[kind]
}

func (r *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return fn(ctx, r)
}

func (r *memoryRepo) Get(ctx context.Context, kind Kind, id uuid.UUID) (*Document, error) {
	doc, ok := r.bucket(kind)[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := doc
	return &copied, nil
}

func (r *memoryRepo) GetByCustomID(ctx context.Context, kind Kind, customID string) (*Document, error) {
	for _, doc := range r.bucket(kind) {
		if doc.CustomID == customID {
			copied := doc
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memoryRepo) List(ctx context.Context, kind Kind, filter ListFilter) ([]Document, error) {
	var out []Document
	for _, doc := range r.bucket(kind) {
		if filter.Status != nil && doc.Status != *filter.Status {
			continue
		}
		out = append(out, doc)
	}
	return out, nil
}

func (r *memoryRepo) ListCustomIDs(ctx context.Context, kind Kind, prefix string) ([]string, error) {
	var out []string
	for _, doc := range r.bucket(kind) {
		if strings.HasPrefix(doc.CustomID, prefix) {
			out = append(out, doc.CustomID)
		}
	}
	return out, nil
}

func (r *memoryRepo) Create(ctx context.Context, doc Document) error {
	r.bucket(doc.Kind)[doc.ID] = doc
	return nil
}

func (r *memoryRepo) Save(ctx context.Context, doc Document) error {
	if _, ok := r.bucket(doc.Kind)[doc.ID]; !ok {
		return ErrNotFound
	}
	r.bucket(doc.Kind)[doc.ID] = doc
	return nil
}

func (r *memoryRepo) Update(ctx context.Context, kind Kind, id uuid.UUID, patch Patch) error {
	doc, ok := r.bucket(kind)[id]
	if !ok {
		return ErrNotFound
	}
	if patch.Status != nil {
		doc.Status = *patch.Status
	}
	if patch.ConvertedToInvoice != nil {
		doc.ConvertedToInvoice = patch.ConvertedToInvoice
	}
	if patch.PaymentDue != nil {
		doc.PaymentDue = *patch.PaymentDue
	}
	r.bucket(kind)[id] = doc
	return nil
}

func (r *memoryRepo) Delete(ctx context.Context, kind Kind, id uuid.UUID) error {
	if _, ok := r.bucket(kind)[id]; !ok {
		return ErrNotFound
	}
	delete(r.bucket(kind), id)
	return nil
}

func (r *memoryRepo) CountByStatus(ctx context.Context, kind Kind) (map[Status]int, error) {
	counts := make(map[Status]int)
	for _, doc := range r.bucket(kind) {
		counts[doc.Status]++
	}
	return counts, nil
}

func (r *memoryRepo) SumOutstanding(ctx context.Context, kind Kind) (float64, error) {
	var sum float64
	for _, doc := range r.bucket(kind) {
		if doc.Status == StatusPending {
			sum += doc.GrandTotal
		}
	}
	return sum, nil
}

var _ Repository = (*memoryRepo)(nil)

type memoryIdem struct {
	keys map[string]bool
}

func (m *memoryIdem) CheckAndInsert(ctx context.Context, key, module string) error {
	if m.keys == nil {
		m.keys = make(map[string]bool)
	}
	if m.keys[key] {
		return shared.ErrIdempotencyConflict
	}
	m.keys[key] = true
	return nil
}

func (m *memoryIdem) Delete(ctx context.Context, key string) error {
	delete(m.keys, key)
	return nil
}

type memoryClients struct {
	byID map[uuid.UUID]clients.Client
}

func (m *memoryClients) Get(ctx context.Context, id uuid.UUID) (*clients.Client, error) {
	c, ok := m.byID[id]
	if !ok {
		return nil, clients.ErrNotFound
	}
	return &c, nil
}

func (m *memoryClients) List(ctx context.Context) ([]clients.Client, error) { return nil, nil }
func (m *memoryClients) Create(ctx context.Context, c clients.Client) error { return nil }
func (m *memoryClients) Update(ctx context.Context, c clients.Client) error { return nil }
func (m *memoryClients) Delete(ctx context.Context, id uuid.UUID) error     { return nil }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService(repo Repository) *Service {
	logger := testLogger()
	svc := NewService(repo, NewNumbering(repo, logger), &memoryClients{}, &memoryIdem{}, logger)
	svc.now = func() time.Time { return time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC) }
	return svc
}

func submitRequest() SubmitRequest {
	return SubmitRequest{
		ClientName:         "Golden Sands Hospitality",
		ClientEmail:        "purchasing@goldensands.example",
		Description:        "Corporate gift hampers",
		TermsAndConditions: "Payment within 30 days.",
		ClientAddress: Address{
			Street:  "Sheikh Zayed Road",
			City:    "Dubai",
			Country: "United Arab Emirates",
		},
		Items: []LineItemRequest{
			{Name: "Gift hamper", Quantity: 10, Price: 2.5, VAT: 1.25},
		},
	}
}

func TestSubmitCreatesPendingDocument(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	doc, vres, err := svc.Submit(ctx, KindQuotation, submitRequest(), SubmitModeNew)
	require.NoError(t, err)
	require.Nil(t, vres)
	require.Equal(t, "FTQ0001", doc.CustomID)
	require.Equal(t, StatusPending, doc.Status)
	require.True(t, doc.ClientHasVAT)
	require.InDelta(t, 25.0, doc.Subtotal, 1e-9)
	require.InDelta(t, 1.25, doc.TotalVAT, 1e-9)
	require.InDelta(t, 26.25, doc.GrandTotal, 1e-9)
	require.Equal(t, doc.CreatedAt.AddDate(0, 0, 30), doc.PaymentDue)

	stored, err := repo.Get(ctx, KindQuotation, doc.ID)
	require.NoError(t, err)
	require.Equal(t, doc.CustomID, stored.CustomID)
}

func TestSubmitSaveModeStoresDraft(t *testing.T) {
	svc := newTestService(newMemoryRepo())

	// A draft only needs the client name.
	doc, vres, err := svc.Submit(context.Background(), KindInvoice, SubmitRequest{ClientName: "Harbourview"}, SubmitModeSave)
	require.NoError(t, err)
	require.Nil(t, vres)
	require.Equal(t, StatusDraft, doc.Status)
}

func TestSubmitReturnsValidationErrors(t *testing.T) {
	svc := newTestService(newMemoryRepo())

	doc, vres, err := svc.Submit(context.Background(), KindInvoice, SubmitRequest{}, SubmitModeNew)
	require.NoError(t, err)
	require.Nil(t, doc)
	require.NotNil(t, vres)
	require.True(t, vres.IsError)
}

func TestSubmitSnapshotsClient(t *testing.T) {
	repo := newMemoryRepo()
	clientID := uuid.New()
	logger := testLogger()
	clientRepo := &memoryClients{byID: map[uuid.UUID]clients.Client{
		clientID: {
			ID:          clientID,
			CompanyName: "Golden Sands Hospitality",
			Email:       "purchasing@goldensands.example",
			Address:     "Sheikh Zayed Road",
			City:        "Dubai",
			Country:     "United Arab Emirates",
		},
	}}
	svc := NewService(repo, NewNumbering(repo, logger), clientRepo, &memoryIdem{}, logger)

	req := submitRequest()
	req.ClientID = &clientID
	req.ClientName = ""
	req.ClientEmail = ""
	req.ClientAddress = Address{}

	doc, vres, err := svc.Submit(context.Background(), KindQuotation, req, SubmitModeNew)
	require.NoError(t, err)
	require.Nil(t, vres)
	require.Equal(t, "Golden Sands Hospitality", doc.ClientName)
	require.Equal(t, "Sheikh Zayed Road", doc.ClientAddress.Street)
	require.True(t, doc.ClientHasVAT)
}

func TestSequentialCodes(t *testing.T) {
	svc := newTestService(newMemoryRepo())
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		doc, _, err := svc.Submit(ctx, KindInvoice, submitRequest(), SubmitModeNew)
		require.NoError(t, err)
		require.Equal(t, fmt.Sprintf("FTIN%04d", i), doc.CustomID)
	}
}

func TestTransitionFollowsStateMachine(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	doc, _, err := svc.Submit(ctx, KindInvoice, submitRequest(), SubmitModeNew)
	require.NoError(t, err)

	updated, err := svc.MarkPaid(ctx, KindInvoice, doc.ID)
	require.NoError(t, err)
	require.Equal(t, StatusPaid, updated.Status)

	_, err = svc.Void(ctx, KindInvoice, doc.ID)
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestConvertQuotation(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	quotation, _, err := svc.Submit(ctx, KindQuotation, submitRequest(), SubmitModeNew)
	require.NoError(t, err)

	invoice, err := svc.Convert(ctx, quotation.ID)
	require.NoError(t, err)
	require.Equal(t, KindInvoice, invoice.Kind)
	require.Equal(t, "FTIN0001", invoice.CustomID)
	require.Equal(t, StatusPending, invoice.Status)
	require.InDelta(t, 25.0, invoice.Subtotal, 1e-9)
	require.InDelta(t, 1.25, invoice.TotalVAT, 1e-9)
	require.InDelta(t, 26.25, invoice.GrandTotal, 1e-9)
	require.NotNil(t, invoice.QuotationID)
	require.Equal(t, quotation.ID, *invoice.QuotationID)

	source, err := repo.Get(ctx, KindQuotation, quotation.ID)
	require.NoError(t, err)
	require.Equal(t, StatusInvoiced, source.Status)
	require.NotNil(t, source.ConvertedToInvoice)
	require.Equal(t, invoice.CustomID, *source.ConvertedToInvoice)
}

func TestConvertTwiceFails(t *testing.T) {
	svc := newTestService(newMemoryRepo())
	ctx := context.Background()

	quotation, _, err := svc.Submit(ctx, KindQuotation, submitRequest(), SubmitModeNew)
	require.NoError(t, err)

	_, err = svc.Convert(ctx, quotation.ID)
	require.NoError(t, err)

	_, err = svc.Convert(ctx, quotation.ID)
	require.ErrorIs(t, err, ErrConverted)
}

func TestConvertRollsBackIdempotencyKeyOnFailure(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	quotation, _, err := svc.Submit(ctx, KindQuotation, submitRequest(), SubmitModeNew)
	require.NoError(t, err)

	failing := &failingTxRepo{memoryRepo: repo}
	svc.repo = failing

	_, err = svc.Convert(ctx, quotation.ID)
	require.Error(t, err)

	// The key was released, the retry must succeed.
	svc.repo = repo
	_, err = svc.Convert(ctx, quotation.ID)
	require.NoError(t, err)
}

type failingTxRepo struct {
	*memoryRepo
}

func (r *failingTxRepo) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return errors.New("tx failed")
}

func TestChangePreservesIdentity(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	doc, _, err := svc.Submit(ctx, KindInvoice, submitRequest(), SubmitModeNew)
	require.NoError(t, err)

	req := submitRequest()
	req.Description = "Updated hamper order"
	changed, vres, err := svc.Change(ctx, KindInvoice, doc.ID, req)
	require.NoError(t, err)
	require.Nil(t, vres)
	require.Equal(t, doc.ID, changed.ID)
	require.Equal(t, doc.CustomID, changed.CustomID)
	require.Equal(t, doc.Status, changed.Status)
	require.Equal(t, doc.CreatedAt, changed.CreatedAt)
	require.Equal(t, "Updated hamper order", changed.Description)
}

func TestChangeConvertedQuotationRejected(t *testing.T) {
	svc := newTestService(newMemoryRepo())
	ctx := context.Background()

	quotation, _, err := svc.Submit(ctx, KindQuotation, submitRequest(), SubmitModeNew)
	require.NoError(t, err)
	_, err = svc.Convert(ctx, quotation.ID)
	require.NoError(t, err)

	_, _, err = svc.Change(ctx, KindQuotation, quotation.ID, submitRequest())
	require.ErrorIs(t, err, ErrConverted)
}

func TestDuplicate(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	quotation, _, err := svc.Submit(ctx, KindQuotation, submitRequest(), SubmitModeNew)
	require.NoError(t, err)
	_, err = svc.Convert(ctx, quotation.ID)
	require.NoError(t, err)

	dup, err := svc.Duplicate(ctx, KindQuotation, quotation.ID)
	require.NoError(t, err)
	require.Equal(t, quotation.CustomID+"-a", dup.CustomID)
	require.Equal(t, StatusPending, dup.Status)
	require.Nil(t, dup.QuotationID)
	require.Nil(t, dup.ConvertedToInvoice)
	require.Equal(t, svc.now().AddDate(0, 0, 30), dup.PaymentDue)
	require.NotEqual(t, quotation.ID, dup.ID)

	second, err := svc.Duplicate(ctx, KindQuotation, quotation.ID)
	require.NoError(t, err)
	require.Equal(t, quotation.CustomID+"-b", second.CustomID)
}

func TestOverview(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	inv, _, err := svc.Submit(ctx, KindInvoice, submitRequest(), SubmitModeNew)
	require.NoError(t, err)
	_, _, err = svc.Submit(ctx, KindInvoice, submitRequest(), SubmitModeNew)
	require.NoError(t, err)
	_, err = svc.MarkPaid(ctx, KindInvoice, inv.ID)
	require.NoError(t, err)

	entries, err := svc.Overview(ctx)
	require.NoError(t, err)
	require.Len(t, entries, len(Kinds))

	var invoices OverviewEntry
	for _, e := range entries {
		if e.Kind == KindInvoice {
			invoices = e
		}
	}
	require.Equal(t, 1, invoices.Counts[StatusPending])
	require.Equal(t, 1, invoices.Counts[StatusPaid])
	require.InDelta(t, 26.25, invoices.Outstanding, 1e-9)
}

func TestDelete(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	doc, _, err := svc.Submit(ctx, KindInvoice, submitRequest(), SubmitModeNew)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, KindInvoice, doc.ID))
	_, err = svc.Get(ctx, KindInvoice, doc.ID)
	require.ErrorIs(t, err, ErrNotFound)
}
