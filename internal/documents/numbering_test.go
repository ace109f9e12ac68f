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

	"github.com/stretchr/testify/require"
)

type stubScanner struct {
	codes map[Kind][]string
	err   error
}

func (s *stubScanner) ListCustomIDs(ctx context.Context, kind Kind, prefix string) ([]string, error) {
	if s.err != nil {
		return nil, s.err
	}
	var matches []string
	for _, code := range s.codes[kind] {
		if strings.HasPrefix(code, prefix) {
			matches = append(matches, code)
		}
	}
	return matches, nil
}

func testNumbering(scanner CodeScanner) *Numbering {
	n := NewNumbering(scanner, slog.New(slog.NewTextHandler(io.Discard, nil)))
	n.now = func() time.Time { return time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC) }
	n.intn = func(int) int { return 4242 }
	return n
}

func TestGenerateAssignsNextInSequence(t *testing.T) {
	scanner := &stubScanner{codes: map[Kind][]string{
		KindQuotation: {"FTQ0001", "FTQ0007", "FTQ0003"},
	}}
	n := testNumbering(scanner)

	code, err := n.Generate(context.Background(), KindQuotation)
	require.NoError(t, err)
	require.Equal(t, "FTQ0008", code)
}

func TestGenerateStartsAtOne(t *testing.T) {
	n := testNumbering(&stubScanner{codes: map[Kind][]string{}})

	code, err := n.Generate(context.Background(), KindInvoice)
	require.NoError(t, err)
	require.Equal(t, "FTIN0001", code)
}

func TestGenerateIgnoresDuplicateSuffixes(t *testing.T) {
	scanner := &stubScanner{codes: map[Kind][]string{
		KindReceipt: {"FTRC0002", "FTRC0002-a", "FTRC0002-b"},
	}}
	n := testNumbering(scanner)

	code, err := n.Generate(context.Background(), KindReceipt)
	require.NoError(t, err)
	require.Equal(t, "FTRC0003", code)
}

func TestGenerateFallsBackToRandomOnScanFailure(t *testing.T) {
	n := testNumbering(&stubScanner{err: errors.New("store down")})

	code, err := n.Generate(context.Background(), KindPurchaseOrder)
	require.NoError(t, err)
	require.Equal(t, "FTPO4242", code)
}

func TestGenerateInternalPOUsesDateScheme(t *testing.T) {
	n := testNumbering(&stubScanner{})

	code, err := n.Generate(context.Background(), KindInternalPO)
	require.NoError(t, err)
	require.Equal(t, "PO-260314-4242", code)
}

func TestDuplicateCodePicksNextLetter(t *testing.T) {
	scanner := &stubScanner{codes: map[Kind][]string{
		KindQuotation: {"FTQ0005", "FTQ0005-a", "FTQ0005-b"},
	}}
	n := testNumbering(scanner)

	code, err := n.DuplicateCode(context.Background(), KindQuotation, "FTQ0005")
	require.NoError(t, err)
	require.Equal(t, "FTQ0005-c", code)
}

func TestDuplicateCodeChainsOffOriginal(t *testing.T) {
	scanner := &stubScanner{codes: map[Kind][]string{
		KindQuotation: {"FTQ0005", "FTQ0005-a"},
	}}
	n := testNumbering(scanner)

	// Duplicating the -a copy still derives from FTQ0005.
	code, err := n.DuplicateCode(context.Background(), KindQuotation, "FTQ0005-a")
	require.NoError(t, err)
	require.Equal(t, "FTQ0005-b", code)
}

func TestDuplicateCodeExhausted(t *testing.T) {
	codes := []string{"FTIN0001"}
	for c := 'a'; c <= 'z'; c++ {
		codes = append(codes, fmt.Sprintf("FTIN0001-%c", c))
	}
	n := testNumbering(&stubScanner{codes: map[Kind][]string{KindInvoice: codes}})

	_, err := n.DuplicateCode(context.Background(), KindInvoice, "FTIN0001")
	require.ErrorIs(t, err, ErrDuplicatesExhausted)
}

func TestDuplicateCodeScanFailure(t *testing.T) {
	n := testNumbering(&stubScanner{err: errors.New("store down")})

	_, err := n.DuplicateCode(context.Background(), KindInvoice, "FTIN0001")
	require.Error(t, err)
}
