package paginator

import "errors"

var (
	// ErrInvalidLayout is returned when words per line or lines per page is not positive.
	ErrInvalidLayout = errors.New("words per line and lines per page must be positive integers")
	// ErrInvalidText is returned when the article text is not well-formed UTF-8.
	ErrInvalidText = errors.New("article text must be valid UTF-8")
)
