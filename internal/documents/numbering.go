package documents

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"
)

// ErrDuplicatesExhausted is returned when a base code already carries
// duplicate suffixes -a through -z.
var ErrDuplicatesExhausted = errors.New("no more duplicates available for this document")

// Prefix returns the business-code prefix for a kind. Internal purchase
// orders use a date-based scheme instead, see Numbering.Generate.
func Prefix(kind Kind) string {
	switch kind {
	case KindInvoice:
		return "FTIN"
	case KindQuotation:
		return "FTQ"
	case KindPurchaseOrder:
		return "FTPO"
	case KindDeliveryOrder:
		return "FTDO"
	case KindReceipt:
		return "FTRC"
	}
	return "FT"
}

// CodeScanner lists the existing business codes for a kind, optionally
// restricted to a prefix.
type CodeScanner interface {
	ListCustomIDs(ctx context.Context, kind Kind, prefix string) ([]string, error)
}

// Numbering produces human-facing document codes.
//
// The primary path scans existing codes and assigns max(existing)+1,
// zero-padded to four digits. When the scan cannot reach the store the
// generator falls back to a random four-digit number rather than blocking
// document creation; the rare collision this allows is tolerated downstream.
type Numbering struct {
	scanner CodeScanner
	logger  *slog.Logger
	now     func() time.Time
	intn    func(int) int
}

// NewNumbering constructs the generator.
func NewNumbering(scanner CodeScanner, logger *slog.Logger) *Numbering {
	return &Numbering{
		scanner: scanner,
		logger:  logger,
		now:     time.Now,
		intn:    rand.IntN,
	}
}

// Generate allocates a fresh code for kind.
func (n *Numbering) Generate(ctx context.Context, kind Kind) (string, error) {
	if kind == KindInternalPO {
		// PO-YYMMDD-#### with a random numeric suffix.
		return fmt.Sprintf("PO-%s-%04d", n.now().Format("060102"), n.intn(10000)), nil
	}

	prefix := Prefix(kind)
	existing, err := n.scanner.ListCustomIDs(ctx, kind, prefix)
	if err != nil {
		if n.logger != nil {
			n.logger.Warn("code scan failed, falling back to random suffix",
				slog.String("kind", string(kind)), slog.Any("error", err))
		}
		return fmt.Sprintf("%s%04d", prefix, n.intn(10000)), nil
	}

	next := 1
	for _, code := range existing {
		suffix, ok := numericSuffix(code, prefix)
		if !ok {
			continue
		}
		if suffix+1 > next {
			next = suffix + 1
		}
	}
	return fmt.Sprintf("%s%04d", prefix, next), nil
}

// DuplicateCode derives the code for a duplicate of base: the base code with
// the next unused lowercase letter appended (-a, -b, ...). Once -z is taken
// the operation fails and must not produce a colliding code.
func (n *Numbering) DuplicateCode(ctx context.Context, kind Kind, base string) (string, error) {
	// Duplicating a duplicate chains off the original code.
	if i := strings.LastIndex(base, "-"); i > 0 && len(base)-i == 2 {
		if c := base[i+1]; c >= 'a' && c <= 'z' {
			base = base[:i]
		}
	}

	existing, err := n.scanner.ListCustomIDs(ctx, kind, base)
	if err != nil {
		return "", fmt.Errorf("scan duplicate codes: %w", err)
	}

	used := make(map[byte]bool, len(existing))
	for _, code := range existing {
		rest, ok := strings.CutPrefix(code, base+"-")
		if !ok || len(rest) != 1 {
			continue
		}
		if rest[0] >= 'a' && rest[0] <= 'z' {
			used[rest[0]] = true
		}
	}

	for c := byte('a'); c <= 'z'; c++ {
		if !used[c] {
			return fmt.Sprintf("%s-%c", base, c), nil
		}
	}
	return "", ErrDuplicatesExhausted
}

func numericSuffix(code, prefix string) (int, bool) {
	rest, ok := strings.CutPrefix(code, prefix)
	if !ok || rest == "" {
		return 0, false
	}
	// Duplicate codes like FTQ0001-a do not advance the sequence.
	if i := strings.IndexByte(rest, '-'); i >= 0 {
		rest = rest[:i]
	}
	num, err := strconv.Atoi(rest)
	if err != nil {
		return 0, false
	}
	return num, true
}
