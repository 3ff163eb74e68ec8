package store

import (
	"context"
	"sync"

	"github.com/abgdnv/productstore/internal/product/errors"
)

var _ ProductStore = (*InMemoryStore)(nil)

// InMemoryStore implements ProductStore using a map guarded by a RWMutex.
// Every check-then-act sequence runs under a single lock acquisition.
type InMemoryStore struct {
	mu       sync.RWMutex
	products map[int64]Product
}

// NewInMemoryStore creates an empty InMemoryStore.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		products: make(map[int64]Product),
	}
}

func (s *InMemoryStore) Exists(_ context.Context, pid int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.products[pid]
	return ok, nil
}

func (s *InMemoryStore) FindByID(_ context.Context, pid int64) (*Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[pid]
	if !ok {
		return nil, errors.ErrProductNotFound
	}
	return &p, nil
}

func (s *InMemoryStore) Create(_ context.Context, product Product) (*Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.products[product.PID]; exists {
		return nil, errors.ErrProductConflict
	}
	s.products[product.PID] = product
	return &product, nil
}

func (s *InMemoryStore) Upsert(_ context.Context, product Product) (*Product, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, existed := s.products[product.PID]
	s.products[product.PID] = product
	return &product, !existed, nil
}

func (s *InMemoryStore) Patch(_ context.Context, pid int64, mutate func(*Product)) (*Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[pid]
	if !ok {
		return nil, errors.ErrProductNotFound
	}
	mutate(&p)
	p.PID = pid
	s.products[pid] = p
	return &p, nil
}

func (s *InMemoryStore) DeleteByID(_ context.Context, pid int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.products[pid]; !exists {
		return errors.ErrProductNotFound
	}
	delete(s.products, pid)
	return nil
}

func (s *InMemoryStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.products), nil
}
