package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"storefront/internal/model"
)

// StorageKey is the single key under which a shopper's cart is persisted.
const StorageKey = "daydreamers-cart"

// Storage persists the full list of cart lines.
type Storage interface {
	// Load returns every persisted line. A missing cart is not an error.
	Load(ctx context.Context) ([]model.CartLineItem, error)

	// Save replaces the persisted lines.
	Save(ctx context.Context, lines []model.CartLineItem) error
}

// FileStorage keeps the cart as a JSON document on local disk.
type FileStorage struct {
	path string
}

// NewFileStorage stores the cart in dir/daydreamers-cart.json.
func NewFileStorage(dir string) *FileStorage {
	return &FileStorage{path: filepath.Join(dir, StorageKey+".json")}
}

// Path returns the file backing the cart.
func (s *FileStorage) Path() string {
	return s.path
}

// Load reads the cart file.
func (s *FileStorage) Load(ctx context.Context) ([]model.CartLineItem, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []model.CartLineItem{}, nil
		}
		return nil, fmt.Errorf("failed to read cart file %s: %w", s.path, err)
	}
	if len(data) == 0 {
		return []model.CartLineItem{}, nil
	}

	var lines []model.CartLineItem
	if err := json.Unmarshal(data, &lines); err != nil {
		return nil, fmt.Errorf("failed to decode cart file %s: %w", s.path, err)
	}
	return lines, nil
}

// Save writes the cart atomically through a temporary file.
func (s *FileStorage) Save(ctx context.Context, lines []model.CartLineItem) error {
	if lines == nil {
		lines = []model.CartLineItem{}
	}
	data, err := json.Marshal(lines)
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create cart directory: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write cart file %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace cart file %s: %w", s.path, err)
	}
	return nil
}

// MemoryStorage keeps the cart in process memory.
type MemoryStorage struct {
	mu    sync.Mutex
	lines []model.CartLineItem
	saves int
}

// NewMemoryStorage returns a storage seeded with lines.
func NewMemoryStorage(lines ...model.CartLineItem) *MemoryStorage {
	return &MemoryStorage{lines: append([]model.CartLineItem(nil), lines...)}
}

// Load returns a copy of the stored lines.
func (s *MemoryStorage) Load(ctx context.Context) ([]model.CartLineItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.CartLineItem{}, s.lines...), nil
}

// Save replaces the stored lines.
func (s *MemoryStorage) Save(ctx context.Context, lines []model.CartLineItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = append([]model.CartLineItem{}, lines...)
	s.saves++
	return nil
}

// Saves reports how many times Save was called.
func (s *MemoryStorage) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}
