package processor

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/pressroom/article-pager/internal/paginator"
	"github.com/pressroom/article-pager/internal/payment"
	"github.com/pressroom/article-pager/internal/storage"
)

func newTestProcessor(t *testing.T) (*Processor, *storage.MemoryStorage) {
	t.Helper()

	store := storage.NewMemoryStorage()
	return New(store, zaptest.NewLogger(t)), store
}

func TestProcessPartialPageArticle(t *testing.T) {
	t.Parallel()

	proc, _ := newTestProcessor(t)

	report, err := proc.Process(wordsText(115))
	if err != nil {
		t.Fatalf("Process returned error: %v", err)
	}

	if report.TotalWords != 115 {
		t.Fatalf("expected 115 words, got %d", report.TotalWords)
	}
	if report.TotalPages != 1 {
		t.Fatalf("expected 1 page, got %d", report.TotalPages)
	}
	if len(report.Pages) != 1 || len(report.Pages[0]) != 10 {
		t.Fatalf("expected one page of 10 lines, got %d pages", len(report.Pages))
	}
	if report.Payment != 30 {
		t.Fatalf("expected payment 30, got %d", report.Payment)
	}
}

func TestProcessFullPageBoundary(t *testing.T) {
	t.Parallel()

	proc, _ := newTestProcessor(t)

	full, err := proc.Process(wordsText(240))
	if err != nil {
		t.Fatalf("Process returned error: %v", err)
	}
	if full.TotalPages != 1 || full.Payment != 30 {
		t.Fatalf("240 words: expected 1 page payment 30, got %d pages payment %d", full.TotalPages, full.Payment)
	}

	overflow, err := proc.Process(wordsText(241))
	if err != nil {
		t.Fatalf("Process returned error: %v", err)
	}
	if overflow.TotalPages != 2 || overflow.Payment != 30 {
		t.Fatalf("241 words: expected 2 pages payment 30, got %d pages payment %d", overflow.TotalPages, overflow.Payment)
	}
}

func TestProcessEmptyArticle(t *testing.T) {
	t.Parallel()

	proc, _ := newTestProcessor(t)

	report, err := proc.Process("")
	if err != nil {
		t.Fatalf("Process returned error: %v", err)
	}
	if report.TotalPages != 0 || len(report.Pages) != 0 {
		t.Fatalf("expected zero pages for empty article, got %+v", report)
	}
	if report.Payment != 0 {
		t.Fatalf("expected payment 0 for empty article, got %d", report.Payment)
	}
}

func TestProcessRejectsInvalidTextAllOrNothing(t *testing.T) {
	t.Parallel()

	proc, _ := newTestProcessor(t)

	report, err := proc.Process("good words \xff then garbage")
	if !errors.Is(err, paginator.ErrInvalidText) {
		t.Fatalf("expected ErrInvalidText, got %v", err)
	}
	if report.TotalPages != 0 || report.Pages != nil {
		t.Fatalf("expected empty report on validation failure, got %+v", report)
	}
}

func TestProcessUsesStoredSettings(t *testing.T) {
	t.Parallel()

	proc, store := newTestProcessor(t)

	settings := storage.Settings{
		WordsPerLine: 2,
		LinesPerPage: 2,
		Tiers: []payment.Tier{
			{Low: 0, High: 1, Amount: 5},
			{Low: 2, High: payment.Unbounded, Amount: 50},
		},
	}
	if err := store.SetSettings(settings); err != nil {
		t.Fatalf("SetSettings returned error: %v", err)
	}

	report, err := proc.Process("a b c d e")
	if err != nil {
		t.Fatalf("Process returned error: %v", err)
	}

	// 5 words, 2 per line, 2 lines per page: pages [a b / c d] and [e]
	if report.TotalPages != 2 {
		t.Fatalf("expected 2 pages, got %d", report.TotalPages)
	}
	if report.Pages[0][0] != "a b" || report.Pages[0][1] != "c d" || report.Pages[1][0] != "e" {
		t.Fatalf("unexpected page content: %+v", report.Pages)
	}
	if report.Payment != 50 {
		t.Fatalf("expected payment 50, got %d", report.Payment)
	}
}

func TestReportWriteText(t *testing.T) {
	t.Parallel()

	report := Report{
		Pages: []paginator.Page{
			{"first line", "second line"},
			{"third line"},
		},
		TotalPages: 2,
		TotalWords: 5,
		Payment:    30,
	}

	var buf strings.Builder
	if err := report.WriteText(&buf); err != nil {
		t.Fatalf("WriteText returned error: %v", err)
	}

	want := "Total Pages: 2\n" +
		"Payment Due: $30\n" +
		"Page 1:\n" +
		"first line\n" +
		"second line\n" +
		"Page 2:\n" +
		"third line\n"
	if buf.String() != want {
		t.Fatalf("unexpected report:\n got %q\nwant %q", buf.String(), want)
	}
}

func wordsText(n int) string {
	words := make([]string, n)
	for i := range words {
		words[i] = fmt.Sprintf("w%d", i+1)
	}
	return strings.Join(words, " ")
}
