package processor

import (
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/pressroom/article-pager/internal/paginator"
	"github.com/pressroom/article-pager/internal/payment"
	"github.com/pressroom/article-pager/internal/storage"
)

// Report is the outcome of processing one article.
type Report struct {
	Pages      []paginator.Page
	TotalPages int
	TotalWords int
	Payment    int
}

// WriteText renders the report as human-readable text: totals first, then each
// page's lines in order, starting at page 1.
func (r Report) WriteText(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "Total Pages: %d\n", r.TotalPages); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Payment Due: $%d\n", r.Payment); err != nil {
		return err
	}
	for i, page := range r.Pages {
		if _, err := fmt.Fprintf(w, "Page %d:\n", i+1); err != nil {
			return err
		}
		for _, line := range page {
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
		}
	}
	return nil
}

// Processor paginates articles and computes the payment due using the settings
// held in storage. Failures are logged through the injected logger and returned;
// no partial report is ever produced.
type Processor struct {
	storage storage.Storage
	logger  *zap.Logger
}

// New constructs a Processor with the provided dependencies.
func New(store storage.Storage, logger *zap.Logger) *Processor {
	return &Processor{
		storage: store,
		logger:  logger,
	}
}

// Process splits the article into pages, counts its words, and computes the
// payment due. Validation failures surface as paginator sentinel errors.
func (p *Processor) Process(text string) (Report, error) {
	settings, err := p.storage.GetSettings()
	if err != nil {
		p.logger.Error("failed to load settings", zap.Error(err))
		return Report{}, fmt.Errorf("load settings: %w", err)
	}

	pager, err := paginator.New(settings.WordsPerLine, settings.LinesPerPage)
	if err != nil {
		p.logger.Error("invalid pagination layout", zap.Error(err))
		return Report{}, fmt.Errorf("build paginator: %w", err)
	}

	iter, err := pager.Split(text)
	if err != nil {
		p.logger.Error("rejected article text", zap.Error(err))
		return Report{}, fmt.Errorf("split article: %w", err)
	}

	calc, err := payment.New(settings.WordsPerLine, settings.LinesPerPage, settings.Tiers)
	if err != nil {
		p.logger.Error("invalid payment schedule", zap.Error(err))
		return Report{}, fmt.Errorf("build payment calculator: %w", err)
	}

	pages := iter.Collect()
	totalWords := paginator.CountWords(text)

	report := Report{
		Pages:      pages,
		TotalPages: len(pages),
		TotalWords: totalWords,
		Payment:    calc.Amount(totalWords),
	}

	p.logger.Debug("article processed",
		zap.Int("total_pages", report.TotalPages),
		zap.Int("total_words", report.TotalWords),
		zap.Int("payment", report.Payment),
	)

	return report, nil
}
