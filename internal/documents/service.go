package documents

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ftgifting/backoffice/internal/clients"
	"github.com/ftgifting/backoffice/internal/shared"
)

var (
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrConverted         = errors.New("quotation already converted to an invoice")
)

// Idempotency guards multi-step flows against re-execution.
type Idempotency interface {
	CheckAndInsert(ctx context.Context, key, module string) error
	Delete(ctx context.Context, key string) error
}

// Service owns the document lifecycle: creation, submission, status
// transitions, quotation conversion, duplication and deletion.
type Service struct {
	repo       Repository
	numbering  *Numbering
	clientRepo clients.Repository
	idem       Idempotency
	logger     *slog.Logger
	now        func() time.Time
}

// NewService constructs a new Service.
func NewService(repo Repository, numbering *Numbering, clientRepo clients.Repository, idem Idempotency, logger *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		numbering:  numbering,
		clientRepo: clientRepo,
		idem:       idem,
		logger:     logger,
		now:        time.Now,
	}
}

func (s *Service) Get(ctx context.Context, kind Kind, id uuid.UUID) (*Document, error) {
	return s.repo.Get(ctx, kind, id)
}

func (s *Service) List(ctx context.Context, kind Kind, filter ListFilter) ([]Document, error) {
	return s.repo.List(ctx, kind, filter)
}

// NewDraft allocates an unsaved skeleton with a fresh business code, creation
// time and payment due date. Nothing is persisted until Submit.
func (s *Service) NewDraft(ctx context.Context, kind Kind) (*Document, error) {
	code, err := s.numbering.Generate(ctx, kind)
	if err != nil {
		return nil, fmt.Errorf("generate code: %w", err)
	}
	now := s.now()
	doc := &Document{
		ID:           uuid.New(),
		Kind:         kind,
		CustomID:     code,
		Status:       StatusDraft,
		Currency:     DefaultCurrency,
		Items:        []LineItem{},
		PaymentTerms: DefaultPaymentTerms,
		CreatedAt:    now,
		PaymentDue:   now.AddDate(0, 0, DefaultPaymentTerms),
	}
	return doc, nil
}

// Submit validates and persists a new document. Mode "new" requires full
// validation and stores the document as pending; mode "save" applies
// draft-mode validation only and stores it as a draft.
func (s *Service) Submit(ctx context.Context, kind Kind, req SubmitRequest, mode SubmitMode) (*Document, *ValidationResult, error) {
	doc, err := s.buildDocument(ctx, kind, req)
	if err != nil {
		return nil, nil, err
	}

	result := Validate(*doc, mode == SubmitModeSave)
	if result.IsError {
		return nil, &result, nil
	}

	code, err := s.numbering.Generate(ctx, kind)
	if err != nil {
		return nil, nil, fmt.Errorf("generate code: %w", err)
	}
	doc.ID = uuid.New()
	doc.CustomID = code
	doc.Status = StatusPending
	if mode == SubmitModeSave {
		doc.Status = StatusDraft
	}
	now := s.now()
	doc.CreatedAt = now
	if req.PaymentDue != nil {
		doc.PaymentDue = *req.PaymentDue
	} else {
		doc.PaymentDue = now.AddDate(0, 0, doc.PaymentTerms)
	}

	if err := s.repo.Create(ctx, *doc); err != nil {
		return nil, nil, fmt.Errorf("create document: %w", err)
	}
	return doc, nil, nil
}

// Change replaces the contents of an existing document. Status, creation time
// and business code are preserved. A converted quotation cannot be changed.
func (s *Service) Change(ctx context.Context, kind Kind, id uuid.UUID, req SubmitRequest) (*Document, *ValidationResult, error) {
	existing, err := s.repo.Get(ctx, kind, id)
	if err != nil {
		return nil, nil, fmt.Errorf("get document: %w", err)
	}
	if kind == KindQuotation && existing.Converted() {
		return nil, nil, ErrConverted
	}

	doc, err := s.buildDocument(ctx, kind, req)
	if err != nil {
		return nil, nil, err
	}
	result := Validate(*doc, false)
	if result.IsError {
		return nil, &result, nil
	}

	doc.ID = existing.ID
	doc.CustomID = existing.CustomID
	doc.Status = existing.Status
	doc.CreatedAt = existing.CreatedAt
	doc.QuotationID = existing.QuotationID
	doc.ConvertedToInvoice = existing.ConvertedToInvoice
	if req.PaymentDue != nil {
		doc.PaymentDue = *req.PaymentDue
	} else {
		doc.PaymentDue = existing.CreatedAt.AddDate(0, 0, doc.PaymentTerms)
	}

	if err := s.repo.Save(ctx, *doc); err != nil {
		return nil, nil, fmt.Errorf("save document: %w", err)
	}
	return doc, nil, nil
}

// Transition applies a single status change after checking the kind's state machine.
func (s *Service) Transition(ctx context.Context, kind Kind, id uuid.UUID, to Status) (*Document, error) {
	doc, err := s.repo.Get(ctx, kind, id)
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}
	if kind == KindQuotation && doc.Converted() && (to == StatusDraft || to == StatusPending) {
		return nil, ErrConverted
	}
	if !CanTransition(kind, doc.Status, to) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, doc.Status, to)
	}
	if err := s.repo.Update(ctx, kind, id, Patch{Status: &to}); err != nil {
		return nil, fmt.Errorf("update status: %w", err)
	}
	doc.Status = to
	return doc, nil
}

func (s *Service) MarkPaid(ctx context.Context, kind Kind, id uuid.UUID) (*Document, error) {
	return s.Transition(ctx, kind, id, StatusPaid)
}

func (s *Service) Approve(ctx context.Context, kind Kind, id uuid.UUID) (*Document, error) {
	return s.Transition(ctx, kind, id, StatusApproved)
}

func (s *Service) Reject(ctx context.Context, kind Kind, id uuid.UUID) (*Document, error) {
	return s.Transition(ctx, kind, id, StatusRejected)
}

func (s *Service) Void(ctx context.Context, kind Kind, id uuid.UUID) (*Document, error) {
	return s.Transition(ctx, kind, id, StatusVoid)
}

// Convert turns a quotation into a pending invoice. The invoice insert and the
// quotation patch run in one transaction, and the operation records a
// deterministic idempotency key so a retry after partial failure cannot
// produce a second invoice.
func (s *Service) Convert(ctx context.Context, quotationID uuid.UUID) (*Document, error) {
	quotation, err := s.repo.Get(ctx, KindQuotation, quotationID)
	if err != nil {
		return nil, fmt.Errorf("get quotation: %w", err)
	}
	if quotation.Status == StatusInvoiced || quotation.Converted() {
		return nil, ErrConverted
	}

	idemKey := fmt.Sprintf("convert:%s", quotationID)
	if s.idem != nil {
		if err := s.idem.CheckAndInsert(ctx, idemKey, "documents"); err != nil {
			if errors.Is(err, shared.ErrIdempotencyConflict) {
				return nil, ErrConverted
			}
			return nil, fmt.Errorf("idempotency check: %w", err)
		}
	}

	code, err := s.numbering.Generate(ctx, KindInvoice)
	if err != nil {
		s.idemRollback(ctx, idemKey)
		return nil, fmt.Errorf("generate invoice code: %w", err)
	}

	// Subtotal is VAT-exclusive; VAT comes from the stored per-item amounts.
	var subtotal, vatAmount float64
	items := make([]LineItem, len(quotation.Items))
	copy(items, quotation.Items)
	for i := range items {
		items[i].Total = items[i].Quantity * items[i].Price
		subtotal += items[i].Total
		if quotation.ClientHasVAT {
			vatAmount += items[i].VAT
		}
	}

	now := s.now()
	invoice := Document{
		ID:                 uuid.New(),
		Kind:               KindInvoice,
		CustomID:           code,
		Status:             StatusPending,
		Currency:           quotation.Currency,
		Description:        quotation.Description,
		TermsAndConditions: quotation.TermsAndConditions,
		ClientID:           quotation.ClientID,
		ClientName:         quotation.ClientName,
		ClientEmail:        quotation.ClientEmail,
		ClientAddress:      quotation.ClientAddress,
		ClientHasVAT:       quotation.ClientHasVAT,
		Items:              items,
		Subtotal:           subtotal,
		TotalVAT:           vatAmount,
		GrandTotal:         subtotal + vatAmount,
		PaymentTerms:       quotation.PaymentTerms,
		CreatedAt:          now,
		PaymentDue:         now.AddDate(0, 0, quotation.PaymentTerms),
		QuotationID:        &quotation.ID,
	}

	err = s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		if err := repo.Create(ctx, invoice); err != nil {
			return fmt.Errorf("create invoice: %w", err)
		}
		invoiced := StatusInvoiced
		patch := Patch{Status: &invoiced, ConvertedToInvoice: &code}
		if err := repo.Update(ctx, KindQuotation, quotation.ID, patch); err != nil {
			return fmt.Errorf("mark quotation invoiced: %w", err)
		}
		return nil
	})
	if err != nil {
		s.idemRollback(ctx, idemKey)
		return nil, err
	}
	return &invoice, nil
}

// Duplicate copies a document under a letter-suffixed code. The copy starts
// over as pending, drops any conversion links, and is due 30 days from now.
func (s *Service) Duplicate(ctx context.Context, kind Kind, id uuid.UUID) (*Document, error) {
	src, err := s.repo.Get(ctx, kind, id)
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}

	code, err := s.numbering.DuplicateCode(ctx, kind, src.CustomID)
	if err != nil {
		return nil, err
	}

	dup := *src
	dup.ID = uuid.New()
	dup.CustomID = code
	dup.Status = StatusPending
	dup.QuotationID = nil
	dup.ConvertedToInvoice = nil
	dup.Items = make([]LineItem, len(src.Items))
	copy(dup.Items, src.Items)
	now := s.now()
	dup.CreatedAt = now
	dup.PaymentDue = now.AddDate(0, 0, 30)
	dup.ClientHasVAT = clients.HasVAT(dup.ClientAddress.Country)
	dup.Subtotal, dup.TotalVAT, dup.GrandTotal = ComputeTotals(dup.Items, dup.ClientHasVAT)

	if err := s.repo.Create(ctx, dup); err != nil {
		return nil, fmt.Errorf("create duplicate: %w", err)
	}
	return &dup, nil
}

// Delete hard-removes the record. There is no soft delete.
func (s *Service) Delete(ctx context.Context, kind Kind, id uuid.UUID) error {
	return s.repo.Delete(ctx, kind, id)
}

// Overview gathers per-kind counts and outstanding totals in parallel.
func (s *Service) Overview(ctx context.Context) ([]OverviewEntry, error) {
	entries := make([]OverviewEntry, len(Kinds))
	g, ctx := errgroup.WithContext(ctx)
	for i, kind := range Kinds {
		g.Go(func() error {
			counts, err := s.repo.CountByStatus(ctx, kind)
			if err != nil {
				return fmt.Errorf("count %s: %w", kind, err)
			}
			outstanding, err := s.repo.SumOutstanding(ctx, kind)
			if err != nil {
				return fmt.Errorf("sum %s: %w", kind, err)
			}
			entries[i] = OverviewEntry{
				Kind:        kind,
				Label:       kind.Label(),
				Counts:      counts,
				Outstanding: outstanding,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Kind < entries[j].Kind })
	return entries, nil
}

// buildDocument assembles the in-memory record from a submission, snapshotting
// the referenced client when one is named.
func (s *Service) buildDocument(ctx context.Context, kind Kind, req SubmitRequest) (*Document, error) {
	doc := &Document{
		Kind:               kind,
		Currency:           req.Currency,
		Description:        req.Description,
		TermsAndConditions: req.TermsAndConditions,
		ClientID:           req.ClientID,
		ClientName:         req.ClientName,
		ClientEmail:        req.ClientEmail,
		ClientAddress:      req.ClientAddress,
		PaymentTerms:       req.PaymentTerms,
	}
	if doc.Currency == "" {
		doc.Currency = DefaultCurrency
	}
	if !validTerms(doc.PaymentTerms) {
		doc.PaymentTerms = DefaultPaymentTerms
	}

	if req.ClientID != nil && s.clientRepo != nil {
		client, err := s.clientRepo.Get(ctx, *req.ClientID)
		if err != nil {
			return nil, fmt.Errorf("snapshot client: %w", err)
		}
		if doc.ClientName == "" {
			doc.ClientName = client.CompanyName
		}
		if doc.ClientEmail == "" {
			doc.ClientEmail = client.Email
		}
		if doc.ClientAddress.Street == "" {
			doc.ClientAddress = Address{
				Street:   client.Address,
				City:     client.City,
				PostCode: client.PostCode,
				Country:  client.Country,
			}
		}
	}
	doc.ClientHasVAT = clients.HasVAT(doc.ClientAddress.Country)

	doc.Items = make([]LineItem, len(req.Items))
	for i, item := range req.Items {
		doc.Items[i] = LineItem{
			Name:        item.Name,
			Description: item.Description,
			Quantity:    item.Quantity,
			Price:       item.Price,
			VAT:         item.VAT,
		}
	}
	doc.Subtotal, doc.TotalVAT, doc.GrandTotal = ComputeTotals(doc.Items, doc.ClientHasVAT)
	return doc, nil
}

func (s *Service) idemRollback(ctx context.Context, key string) {
	if s.idem == nil {
		return
	}
	if err := s.idem.Delete(ctx, key); err != nil {
		s.logger.Warn("rollback idempotency key", slog.String("key", key), slog.Any("error", err))
	}
}

func validTerms(days int) bool {
	for _, preset := range PaymentTermsDays {
		if preset == days {
			return true
		}
	}
	return false
}
