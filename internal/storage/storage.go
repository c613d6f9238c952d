package storage

import (
	"errors"
	"sync"

	"github.com/pressroom/article-pager/internal/payment"
)

const (
	defaultWordsPerLine = 12
	defaultLinesPerPage = 20
)

var (
	// ErrInvalidSettings indicates the provided settings violate validation rules.
	ErrInvalidSettings = errors.New("words per line and lines per page must be positive and the payment schedule valid")
)

// Settings holds the pagination layout and payment schedule used by the processor.
type Settings struct {
	WordsPerLine int
	LinesPerPage int
	Tiers        []payment.Tier
}

// Storage provides access to the settings used by the processor.
type Storage interface {
	GetSettings() (Settings, error)
	SetSettings(settings Settings) error
}

// MemoryStorage keeps settings in-memory and guards access with a RWMutex.
type MemoryStorage struct {
	mu       sync.RWMutex
	settings Settings
}

// NewMemoryStorage initialises storage with a copy of the default settings.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		settings: DefaultSettings(),
	}
}

// DefaultSettings returns the standard layout and payment schedule.
func DefaultSettings() Settings {
	return Settings{
		WordsPerLine: defaultWordsPerLine,
		LinesPerPage: defaultLinesPerPage,
		Tiers:        payment.DefaultTiers(),
	}
}

// GetSettings returns a defensive copy of the currently configured settings.
func (s *MemoryStorage) GetSettings() (Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return cloneSettings(s.settings), nil
}

// SetSettings validates and stores the provided settings.
func (s *MemoryStorage) SetSettings(settings Settings) error {
	if err := validateSettings(settings); err != nil {
		return err
	}

	s.mu.Lock()
	s.settings = cloneSettings(settings)
	s.mu.Unlock()

	return nil
}

func cloneSettings(src Settings) Settings {
	out := src
	out.Tiers = make([]payment.Tier, len(src.Tiers))
	copy(out.Tiers, src.Tiers)
	return out
}

func validateSettings(settings Settings) error {
	if settings.WordsPerLine <= 0 || settings.LinesPerPage <= 0 {
		return ErrInvalidSettings
	}
	if err := payment.ValidateTiers(settings.Tiers); err != nil {
		return ErrInvalidSettings
	}
	return nil
}
