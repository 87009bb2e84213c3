package storage

import (
	"errors"
	"fmt"
	"sync"
)

const (
	// MaxPageSize caps pages at the largest texture dimension common GPUs accept.
	MaxPageSize = 16384

	defaultPageSize = 2048
	defaultPadding  = 2
)

var (
	// ErrInvalidSettings indicates the provided settings violate validation rules.
	ErrInvalidSettings = errors.New("page size must be between 1 and 16384 and padding between 0 and page size")
)

// Settings are the packing parameters applied when a request does not supply its own.
type Settings struct {
	PageSize int `json:"pageSize"`
	Padding  int `json:"padding"`
}

// Validate checks the settings against the service limits.
func (s Settings) Validate() error {
	if s.PageSize <= 0 || s.PageSize > MaxPageSize {
		return fmt.Errorf("%w: page size %d", ErrInvalidSettings, s.PageSize)
	}
	if s.Padding < 0 || s.Padding >= s.PageSize {
		return fmt.Errorf("%w: padding %d", ErrInvalidSettings, s.Padding)
	}
	return nil
}

// DefaultSettings returns the settings used before anything is configured.
func DefaultSettings() Settings {
	return Settings{
		PageSize: defaultPageSize,
		Padding:  defaultPadding,
	}
}

// Storage provides access to the default packing settings.
type Storage interface {
	GetSettings() (Settings, error)
	SetSettings(settings Settings) error
}

// MemoryStorage keeps settings in-memory and guards access with a RWMutex.
type MemoryStorage struct {
	mu       sync.RWMutex
	settings Settings
}

// NewMemoryStorage initialises storage with the default settings.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		settings: DefaultSettings(),
	}
}

// GetSettings returns the currently configured settings.
func (s *MemoryStorage) GetSettings() (Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.settings, nil
}

// SetSettings validates and stores the provided settings.
func (s *MemoryStorage) SetSettings(settings Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	s.settings = settings
	s.mu.Unlock()

	return nil
}
