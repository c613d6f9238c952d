package payment

import (
	"fmt"
	"strconv"
	"strings"
)

// Unbounded marks a tier with no upper page limit.
const Unbounded = -1

// Tier maps an inclusive page-count range to a fixed payment amount.
// High set to Unbounded means the range extends indefinitely.
type Tier struct {
	Low    int `yaml:"low"`
	High   int `yaml:"high"`
	Amount int `yaml:"amount"`
}

func (t Tier) contains(pages int) bool {
	if pages < t.Low {
		return false
	}
	return t.High == Unbounded || pages <= t.High
}

// String renders a tier in the textual schedule encoding, e.g. "1-2:30" or "5+:100".
func (t Tier) String() string {
	if t.High == Unbounded {
		return fmt.Sprintf("%d+:%d", t.Low, t.Amount)
	}
	return fmt.Sprintf("%d-%d:%d", t.Low, t.High, t.Amount)
}

// DefaultTiers returns the standard payment schedule.
func DefaultTiers() []Tier {
	return []Tier{
		{Low: 0, High: 0, Amount: 0},
		{Low: 1, High: 2, Amount: 30},
		{Low: 3, High: 4, Amount: 60},
		{Low: 5, High: Unbounded, Amount: 100},
	}
}

// ValidateTiers checks that every tier has a sane range and a non-negative amount.
// Overlap between tiers is allowed; lookup resolves it by first match.
func ValidateTiers(tiers []Tier) error {
	if len(tiers) == 0 {
		return ErrInvalidTiers
	}
	for _, t := range tiers {
		if t.Low < 0 || t.Amount < 0 {
			return ErrInvalidTiers
		}
		if t.High != Unbounded && t.High < t.Low {
			return ErrInvalidTiers
		}
	}
	return nil
}

// Calculator computes the payment due for an article from its total word count.
type Calculator struct {
	wordsPerPage int
	tiers        []Tier
}

// New creates a Calculator for the given layout and ordered payment schedule.
func New(wordsPerLine, linesPerPage int, tiers []Tier) (*Calculator, error) {
	if wordsPerLine <= 0 || linesPerPage <= 0 {
		return nil, fmt.Errorf("payment: words per line and lines per page must be positive")
	}
	if err := ValidateTiers(tiers); err != nil {
		return nil, err
	}
	owned := make([]Tier, len(tiers))
	copy(owned, tiers)
	return &Calculator{
		wordsPerPage: wordsPerLine * linesPerPage,
		tiers:        owned,
	}, nil
}

// TotalPages derives the billable page count from the total word count: one page
// per full words-per-page block, plus one for any non-empty remainder. This equals
// the number of pages pagination actually produces for the same layout.
func (c *Calculator) TotalPages(totalWords int) int {
	if totalWords <= 0 {
		return 0
	}
	pages := totalWords / c.wordsPerPage
	if totalWords%c.wordsPerPage > 0 {
		pages++
	}
	return pages
}

// Amount returns the payment for the given total word count. Tiers are scanned in
// schedule order and the first tier containing the billable page count wins. A
// schedule that covers no tier for the count yields 0 rather than an error.
func (c *Calculator) Amount(totalWords int) int {
	return c.AmountForPages(c.TotalPages(totalWords))
}

// AmountForPages looks up the payment for an already-derived page count.
func (c *Calculator) AmountForPages(totalPages int) int {
	for _, t := range c.tiers {
		if t.contains(totalPages) {
			return t.Amount
		}
	}
	return 0
}

// ParseTiers parses a comma-separated schedule such as "0-0:0,1-2:30,3-4:60,5+:100".
// A "low+" range has no upper bound. The parsed order is preserved.
func ParseTiers(raw string) ([]Tier, error) {
	parts := strings.Split(raw, ",")
	tiers := make([]Tier, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		rangePart, amountPart, ok := strings.Cut(part, ":")
		if !ok {
			return nil, fmt.Errorf("invalid tier %q: missing amount", part)
		}
		amount, err := strconv.Atoi(strings.TrimSpace(amountPart))
		if err != nil {
			return nil, fmt.Errorf("invalid tier %q: bad amount", part)
		}

		rangePart = strings.TrimSpace(rangePart)
		tier := Tier{Amount: amount}
		switch {
		case strings.HasSuffix(rangePart, "+"):
			low, err := strconv.Atoi(strings.TrimSuffix(rangePart, "+"))
			if err != nil {
				return nil, fmt.Errorf("invalid tier %q: bad range", part)
			}
			tier.Low = low
			tier.High = Unbounded
		case strings.Contains(rangePart, "-"):
			lowPart, highPart, _ := strings.Cut(rangePart, "-")
			low, lowErr := strconv.Atoi(strings.TrimSpace(lowPart))
			high, highErr := strconv.Atoi(strings.TrimSpace(highPart))
			if lowErr != nil || highErr != nil {
				return nil, fmt.Errorf("invalid tier %q: bad range", part)
			}
			tier.Low = low
			tier.High = high
		default:
			single, err := strconv.Atoi(rangePart)
			if err != nil {
				return nil, fmt.Errorf("invalid tier %q: bad range", part)
			}
			tier.Low = single
			tier.High = single
		}
		tiers = append(tiers, tier)
	}

	if err := ValidateTiers(tiers); err != nil {
		return nil, err
	}
	return tiers, nil
}

// FormatTiers renders a schedule back into the textual encoding.
func FormatTiers(tiers []Tier) string {
	parts := make([]string, len(tiers))
	for i, t := range tiers {
		parts[i] = t.String()
	}
	return strings.Join(parts, ",")
}
