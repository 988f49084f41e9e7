// Package store holds the in-memory product collection.
package store

import (
	"sync"

	"github.com/juju/errors"

	"github.com/fairyhunter13/product-catalog-service/internal/model"
)

// Seed is the catalog the service starts with.
var Seed = []model.Product{
	{ID: 1, Name: "Laptop", Description: "High-performance laptop", Price: 999.99},
	{ID: 2, Name: "Mouse", Description: "Wireless mouse", Price: 29.99},
	{ID: 3, Name: "Keyboard", Description: "Mechanical keyboard", Price: 89.99},
}

// Store is an ordered, mutex-guarded product collection. Insertion order is
// preserved and updates keep the record at its original position.
type Store struct {
	mu       sync.RWMutex
	products []model.Product
	onResize func(n int)
}

// New returns an empty store.
func New() *Store {
	return &Store{}
}

// NewSeeded returns a store holding a copy of Seed.
func NewSeeded() *Store {
	s := &Store{products: make([]model.Product, len(Seed))}
	copy(s.products, Seed)
	return s
}

// Observe registers fn to be told the collection size, once now and then
// after every create and delete. fn runs with the write lock held, so the
// sizes it sees are in mutation order; it must not call back into s.
func (s *Store) Observe(fn func(n int)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onResize = fn
	s.resized()
}

// resized must be called with mu held for writing.
func (s *Store) resized() {
	if s.onResize != nil {
		s.onResize(len(s.products))
	}
}

// List returns a snapshot of the collection in insertion order.
func (s *Store) List() []model.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Product, len(s.products))
	copy(out, s.products)
	return out
}

// Len reports the number of live products.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.products)
}

// Get returns the first product with the given id.
func (s *Store) Get(id int) (model.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexOf(id)
	if i < 0 {
		return model.Product{}, errors.NotFoundf("product %d", id)
	}
	return s.products[i], nil
}

// Create appends a product with id max(ids)+1. An empty collection counts
// as max 0, so the first id handed out is 1.
func (s *Store) Create(in model.ProductInput) model.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	maxID := 0
	for _, p := range s.products {
		if p.ID > maxID {
			maxID = p.ID
		}
	}
	p := in.WithID(maxID + 1)
	s.products = append(s.products, p)
	s.resized()
	return p
}

// Update replaces the product with the given id, keeping its position.
func (s *Store) Update(id int, in model.ProductInput) (model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return model.Product{}, errors.NotFoundf("product %d", id)
	}
	p := in.WithID(id)
	s.products[i] = p
	return p, nil
}

// Delete removes the product with the given id.
func (s *Store) Delete(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return errors.NotFoundf("product %d", id)
	}
	s.products = append(s.products[:i], s.products[i+1:]...)
	s.resized()
	return nil
}

// indexOf must be called with mu held.
func (s *Store) indexOf(id int) int {
	for i, p := range s.products {
		if p.ID == id {
			return i
		}
	}
	return -1
}
