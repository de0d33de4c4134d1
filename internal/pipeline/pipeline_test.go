package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tsaito/receipt-ledger/internal/depreciation"
	"github.com/tsaito/receipt-ledger/internal/domain"
	"github.com/tsaito/receipt-ledger/internal/store/inmemory"
	"github.com/tsaito/receipt-ledger/internal/validation"
)

type mockStorage struct {
	data []byte
	err  error
}

func (m *mockStorage) Fetch(ctx context.Context, uri string) ([]byte, error) {
	return m.data, m.err
}

type mockParser struct {
	output map[string]interface{}
	err    error
}

func (m *mockParser) ParseReceipt(ctx context.Context, image []byte, mimeType string) (map[string]interface{}, error) {
	return m.output, m.err
}

type mockNotifier struct {
	notified []string
}

func (m *mockNotifier) NotifyReview(ctx context.Context, rcpt *domain.Receipt) error {
	m.notified = append(m.notified, rcpt.ID)
	return nil
}

func parserFor(t *testing.T, raw string) *mockParser {
	t.Helper()
	var m map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		t.Fatalf("bad test fixture: %v", err)
	}
	return &mockParser{output: m}
}

func newTestProcessor(t *testing.T, parser VisionParser, notifier ReviewNotifier) (*Processor, *inmemory.Store) {
	t.Helper()
	st := inmemory.NewStore()
	p := NewProcessor(Deps{
		Storage:    &mockStorage{data: []byte("jpeg bytes")},
		Parser:     parser,
		Store:      st,
		Classifier: depreciation.NewClassifier(depreciation.DefaultConfig()),
		Policy:     validation.DefaultReviewPolicy,
		Notifier:   notifier,
		Log:        zerolog.Nop(),
	})
	return p, st
}

func TestProcessor_CompletesCleanReceipt(t *testing.T) {
	p, st := newTestProcessor(t, parserFor(t, completeReceiptJSON), nil)

	rcpt, err := p.ProcessReceipt(context.Background(), "r1", "gs://bucket/r1.jpg", "image/jpeg")
	if err != nil {
		t.Fatalf("ProcessReceipt: %v", err)
	}
	if rcpt.Status != domain.StatusCompleted {
		t.Errorf("Status = %q, want completed", rcpt.Status)
	}
	if rcpt.NeedsReview {
		t.Error("clean confident receipt must not need review")
	}

	stored, err := st.Get(context.Background(), "r1")
	if err != nil {
		t.Fatalf("stored receipt missing: %v", err)
	}
	if stored.Data.TotalAmount != 10000 {
		t.Errorf("stored TotalAmount = %d", stored.Data.TotalAmount)
	}
}

func TestProcessor_FlagsLowConfidenceForReview(t *testing.T) {
	notifier := &mockNotifier{}
	parser := parserFor(t, completeReceiptJSON)
	parser.output["confidence"] = map[string]interface{}{"overall": 0.4}

	p, _ := newTestProcessor(t, parser, notifier)

	rcpt, err := p.ProcessReceipt(context.Background(), "r2", "gs://bucket/r2.jpg", "image/jpeg")
	if err != nil {
		t.Fatalf("ProcessReceipt: %v", err)
	}
	if !rcpt.NeedsReview {
		t.Error("low confidence receipt must need review")
	}
	if len(notifier.notified) != 1 || notifier.notified[0] != "r2" {
		t.Errorf("notifier calls = %v, want [r2]", notifier.notified)
	}
}

func TestProcessor_HardErrorRoutesToManual(t *testing.T) {
	parser := parserFor(t, completeReceiptJSON)
	parser.output["t_number"] = "T123"

	p, _ := newTestProcessor(t, parser, nil)

	rcpt, err := p.ProcessReceipt(context.Background(), "r3", "gs://bucket/r3.jpg", "image/jpeg")
	if err != nil {
		t.Fatalf("ProcessReceipt: %v", err)
	}
	if rcpt.Status != domain.StatusManual {
		t.Errorf("Status = %q, want manual", rcpt.Status)
	}
	if !rcpt.NeedsReview {
		t.Error("invalid receipt must need review")
	}
}

func TestProcessor_AttachesDepreciationNote(t *testing.T) {
	parser := parserFor(t, completeReceiptJSON)
	parser.output["total_amount"] = 250000.0
	parser.output["subtotal_excluding_tax"] = 227273.0
	parser.output["tax_breakdown"] = []interface{}{
		map[string]interface{}{"rate": 10.0, "subtotal": 227273.0, "tax_amount": 22727.0, "total": 250000.0},
	}

	p, _ := newTestProcessor(t, parser, nil)

	rcpt, err := p.ProcessReceipt(context.Background(), "r4", "gs://bucket/r4.jpg", "image/jpeg")
	if err != nil {
		t.Fatalf("ProcessReceipt: %v", err)
	}
	if rcpt.Notes == "" {
		t.Error("expensive consumables purchase must carry a depreciation note")
	}
	if !rcpt.NeedsReview {
		t.Error("depreciation warning must force review")
	}
}

func TestProcessor_ParserFailureMarksReceiptFailed(t *testing.T) {
	p, st := newTestProcessor(t, &mockParser{err: errors.New("model unavailable")}, nil)

	if _, err := p.ProcessReceipt(context.Background(), "r5", "gs://bucket/r5.jpg", "image/jpeg"); err == nil {
		t.Fatal("expected error from failing parser")
	}

	stored, err := st.Get(context.Background(), "r5")
	if err != nil {
		t.Fatalf("failed receipt not recorded: %v", err)
	}
	if stored.Status != domain.StatusFailed {
		t.Errorf("Status = %q, want failed", stored.Status)
	}
	if stored.Notes == "" {
		t.Error("failure cause missing from notes")
	}
}
