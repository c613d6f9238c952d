package paginator

import (
	"strings"
	"unicode/utf8"
)

// Page is an ordered group of rendered lines.
type Page []string

// Paginator splits article text into fixed-layout lines and pages.
type Paginator struct {
	wordsPerLine int
	linesPerPage int
}

// New creates a Paginator for the given layout. Both dimensions must be positive.
func New(wordsPerLine, linesPerPage int) (*Paginator, error) {
	if wordsPerLine <= 0 || linesPerPage <= 0 {
		return nil, ErrInvalidLayout
	}
	return &Paginator{
		wordsPerLine: wordsPerLine,
		linesPerPage: linesPerPage,
	}, nil
}

// WordsPerLine returns the configured line width in words.
func (p *Paginator) WordsPerLine() int { return p.wordsPerLine }

// LinesPerPage returns the configured page height in lines.
func (p *Paginator) LinesPerPage() int { return p.linesPerPage }

// WordsPerPage returns the capacity of a full page in words.
func (p *Paginator) WordsPerPage() int { return p.wordsPerLine * p.linesPerPage }

// Split validates the text and returns a forward-only iterator over its pages.
// Word order is preserved; only the final line and the final page may be short.
// Empty text yields an immediately exhausted iterator, not a single empty page.
func (p *Paginator) Split(text string) (*PageIter, error) {
	if !utf8.ValidString(text) {
		return nil, ErrInvalidText
	}
	return &PageIter{
		words:        strings.Fields(text),
		wordsPerLine: p.wordsPerLine,
		linesPerPage: p.linesPerPage,
	}, nil
}

// PageIter produces pages one at a time. It is not safe for concurrent use and
// cannot be restarted; call Split again for a fresh pass.
type PageIter struct {
	words        []string
	wordsPerLine int
	linesPerPage int
	pos          int
}

// Next returns the next page and true, or a nil page and false once exhausted.
func (it *PageIter) Next() (Page, bool) {
	if it.pos >= len(it.words) {
		return nil, false
	}

	page := make(Page, 0, it.linesPerPage)
	for len(page) < it.linesPerPage && it.pos < len(it.words) {
		end := it.pos + it.wordsPerLine
		if end > len(it.words) {
			end = len(it.words)
		}
		page = append(page, strings.Join(it.words[it.pos:end], " "))
		it.pos = end
	}
	return page, true
}

// Collect drains the iterator and returns the remaining pages in order.
func (it *PageIter) Collect() []Page {
	var pages []Page
	for page, ok := it.Next(); ok; page, ok = it.Next() {
		pages = append(pages, page)
	}
	return pages
}

// CountWords counts whitespace-separated words, independently of any layout.
func CountWords(text string) int {
	return len(strings.Fields(text))
}
