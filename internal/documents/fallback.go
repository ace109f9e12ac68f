package documents

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ReplayOp is a deferred write captured while the primary store was down.
// Ops are replayed by the worker with the queue's retry policy.
type ReplayOp struct {
	Op    string    `json:"op"` // "save", "update" or "delete"
	Kind  Kind      `json:"kind"`
	ID    uuid.UUID `json:"id"`
	Doc   *Document `json:"doc,omitempty"`
	Patch *Patch    `json:"patch,omitempty"`
}

// ReplayEnqueuer hands deferred writes to the background queue.
type ReplayEnqueuer interface {
	EnqueueReplay(ctx context.Context, op ReplayOp) error
}

// Fallback layers a Redis cache under the primary repository. Reads degrade to
// the cache when the primary is unreachable; failed writes are applied to the
// cache so the caller still observes its change, and are queued for replay.
//
// WithTx intentionally has no degraded mode: multi-step flows such as
// quotation conversion either run transactionally or fail outright.
type Fallback struct {
	primary Repository
	cache   *redis.Client
	replay  ReplayEnqueuer
	logger  *slog.Logger
	ttl     time.Duration
}

// NewFallback wraps primary with the cache tier.
func NewFallback(primary Repository, cache *redis.Client, replay ReplayEnqueuer, logger *slog.Logger) *Fallback {
	return &Fallback{
		primary: primary,
		cache:   cache,
		replay:  replay,
		logger:  logger,
		ttl:     24 * time.Hour,
	}
}

func (f *Fallback) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return f.primary.WithTx(ctx, fn)
}

func (f *Fallback) Get(ctx context.Context, kind Kind, id uuid.UUID) (*Document, error) {
	doc, err := f.primary.Get(ctx, kind, id)
	if err == nil {
		f.cacheSet(ctx, doc)
		return doc, nil
	}
	if errors.Is(err, ErrNotFound) {
		return nil, err
	}
	f.logger.Warn("primary read failed, serving cache", slog.Any("error", err))
	cached, cacheErr := f.cacheGet(ctx, kind, id)
	if cacheErr != nil {
		return nil, err
	}
	return cached, nil
}

func (f *Fallback) GetByCustomID(ctx context.Context, kind Kind, customID string) (*Document, error) {
	doc, err := f.primary.GetByCustomID(ctx, kind, customID)
	if err == nil {
		f.cacheSet(ctx, doc)
		return doc, nil
	}
	if errors.Is(err, ErrNotFound) {
		return nil, err
	}
	docs, cacheErr := f.cacheList(ctx, kind)
	if cacheErr != nil {
		return nil, err
	}
	for i := range docs {
		if docs[i].CustomID == customID {
			return &docs[i], nil
		}
	}
	return nil, err
}

func (f *Fallback) List(ctx context.Context, kind Kind, filter ListFilter) ([]Document, error) {
	docs, err := f.primary.List(ctx, kind, filter)
	if err == nil {
		for i := range docs {
			f.cacheSet(ctx, &docs[i])
		}
		return docs, nil
	}
	f.logger.Warn("primary list failed, serving cache", slog.Any("error", err))
	cached, cacheErr := f.cacheList(ctx, kind)
	if cacheErr != nil {
		return nil, err
	}
	if filter.Status != nil {
		filtered := cached[:0]
		for _, doc := range cached {
			if doc.Status == *filter.Status {
				filtered = append(filtered, doc)
			}
		}
		cached = filtered
	}
	// Match the primary's ordering so limit/offset page the same way.
	sort.Slice(cached, func(i, j int) bool {
		if !cached[i].CreatedAt.Equal(cached[j].CreatedAt) {
			return cached[i].CreatedAt.After(cached[j].CreatedAt)
		}
		return cached[i].CustomID > cached[j].CustomID
	})
	if filter.Offset > 0 {
		if filter.Offset >= len(cached) {
			return []Document{}, nil
		}
		cached = cached[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(cached) {
		cached = cached[:filter.Limit]
	}
	return cached, nil
}

// ListCustomIDs does not degrade: the code generator has its own fallback when
// the scan cannot reach the store.
func (f *Fallback) ListCustomIDs(ctx context.Context, kind Kind, prefix string) ([]string, error) {
	return f.primary.ListCustomIDs(ctx, kind, prefix)
}

func (f *Fallback) Create(ctx context.Context, doc Document) error {
	err := f.primary.Create(ctx, doc)
	if err == nil {
		f.cacheSet(ctx, &doc)
		return nil
	}
	return f.degradeWrite(ctx, err, &doc, ReplayOp{Op: "save", Kind: doc.Kind, ID: doc.ID, Doc: &doc})
}

func (f *Fallback) Save(ctx context.Context, doc Document) error {
	err := f.primary.Save(ctx, doc)
	if err == nil {
		f.cacheSet(ctx, &doc)
		return nil
	}
	if errors.Is(err, ErrNotFound) {
		return err
	}
	return f.degradeWrite(ctx, err, &doc, ReplayOp{Op: "save", Kind: doc.Kind, ID: doc.ID, Doc: &doc})
}

func (f *Fallback) Update(ctx context.Context, kind Kind, id uuid.UUID, patch Patch) error {
	err := f.primary.Update(ctx, kind, id, patch)
	if err == nil {
		if doc, getErr := f.primary.Get(ctx, kind, id); getErr == nil {
			f.cacheSet(ctx, doc)
		}
		return nil
	}
	if errors.Is(err, ErrNotFound) {
		return err
	}

	// Apply the patch to the cached copy so the caller sees its change.
	if cached, cacheErr := f.cacheGet(ctx, kind, id); cacheErr == nil {
		if patch.Status != nil {
			cached.Status = *patch.Status
		}
		if patch.ConvertedToInvoice != nil {
			cached.ConvertedToInvoice = patch.ConvertedToInvoice
		}
		if patch.PaymentDue != nil {
			cached.PaymentDue = *patch.PaymentDue
		}
		f.cacheSet(ctx, cached)
	}
	return f.degradeWrite(ctx, err, nil, ReplayOp{Op: "update", Kind: kind, ID: id, Patch: &patch})
}

func (f *Fallback) Delete(ctx context.Context, kind Kind, id uuid.UUID) error {
	err := f.primary.Delete(ctx, kind, id)
	if err == nil || errors.Is(err, ErrNotFound) {
		f.cacheDel(ctx, kind, id)
		return err
	}
	f.cacheDel(ctx, kind, id)
	return f.degradeWrite(ctx, err, nil, ReplayOp{Op: "delete", Kind: kind, ID: id})
}

func (f *Fallback) CountByStatus(ctx context.Context, kind Kind) (map[Status]int, error) {
	counts, err := f.primary.CountByStatus(ctx, kind)
	if err == nil {
		return counts, nil
	}
	cached, cacheErr := f.cacheList(ctx, kind)
	if cacheErr != nil {
		return nil, err
	}
	counts = make(map[Status]int)
	for _, doc := range cached {
		counts[doc.Status]++
	}
	return counts, nil
}

func (f *Fallback) SumOutstanding(ctx context.Context, kind Kind) (float64, error) {
	sum, err := f.primary.SumOutstanding(ctx, kind)
	if err == nil {
		return sum, nil
	}
	cached, cacheErr := f.cacheList(ctx, kind)
	if cacheErr != nil {
		return 0, err
	}
	sum = 0
	for _, doc := range cached {
		if doc.Status == StatusPending {
			sum += doc.GrandTotal
		}
	}
	return sum, nil
}

func (f *Fallback) degradeWrite(ctx context.Context, cause error, doc *Document, op ReplayOp) error {
	f.logger.Warn("primary write failed, queueing replay",
		slog.String("op", op.Op), slog.String("kind", string(op.Kind)),
		slog.String("id", op.ID.String()), slog.Any("error", cause))
	if doc != nil {
		f.cacheSet(ctx, doc)
	}
	if f.replay == nil {
		return cause
	}
	if err := f.replay.EnqueueReplay(ctx, op); err != nil {
		// Nothing retains the write anymore, surface the original failure.
		f.logger.Error("enqueue replay failed", slog.Any("error", err))
		return cause
	}
	return nil
}

func docKey(kind Kind, id uuid.UUID) string {
	return fmt.Sprintf("doc:%s:%s", kind, id)
}

func indexKey(kind Kind) string {
	return fmt.Sprintf("docs:%s", kind)
}

func (f *Fallback) cacheSet(ctx context.Context, doc *Document) {
	if f.cache == nil || doc == nil {
		return
	}
	payload, err := json.Marshal(doc)
	if err != nil {
		return
	}
	pipe := f.cache.Pipeline()
	pipe.Set(ctx, docKey(doc.Kind, doc.ID), payload, f.ttl)
	pipe.SAdd(ctx, indexKey(doc.Kind), doc.ID.String())
	pipe.Expire(ctx, indexKey(doc.Kind), f.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		f.logger.Warn("cache write failed", slog.Any("error", err))
	}
}

func (f *Fallback) cacheDel(ctx context.Context, kind Kind, id uuid.UUID) {
	if f.cache == nil {
		return
	}
	pipe := f.cache.Pipeline()
	pipe.Del(ctx, docKey(kind, id))
	pipe.SRem(ctx, indexKey(kind), id.String())
	_, _ = pipe.Exec(ctx)
}

func (f *Fallback) cacheGet(ctx context.Context, kind Kind, id uuid.UUID) (*Document, error) {
	if f.cache == nil {
		return nil, errors.New("cache not configured")
	}
	payload, err := f.cache.Get(ctx, docKey(kind, id)).Bytes()
	if err != nil {
		return nil, err
	}
	var doc Document
	if err := json.Unmarshal(payload, &doc); err != nil {
		return nil, err
	}
	Normalize(&doc)
	return &doc, nil
}

func (f *Fallback) cacheList(ctx context.Context, kind Kind) ([]Document, error) {
	if f.cache == nil {
		return nil, errors.New("cache not configured")
	}
	ids, err := f.cache.SMembers(ctx, indexKey(kind)).Result()
	if err != nil {
		return nil, err
	}
	docs := make([]Document, 0, len(ids))
	for _, raw := range ids {
		id, err := uuid.Parse(strings.TrimSpace(raw))
		if err != nil {
			continue
		}
		doc, err := f.cacheGet(ctx, kind, id)
		if err != nil {
			continue
		}
		docs = append(docs, *doc)
	}
	return docs, nil
}
