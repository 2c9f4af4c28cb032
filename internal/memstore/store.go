package memstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/imrishuroy/go-cart-view/internal/cart"
)

// Store keeps a cart in process memory. Each Store owns its lines and id
// sequence, so two stores never share state.
type Store struct {
	mu     sync.Mutex
	lines  cart.State
	nextID int
	prefix string
}

// New returns an empty Store whose ids look like "<prefix>_1", "<prefix>_2"...
func New(prefix string) *Store {
	if prefix == "" {
		prefix = "line"
	}
	return &Store{lines: cart.State{}, nextID: 1, prefix: prefix}
}

func (s *Store) List(ctx context.Context) (cart.State, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lines.Clone(), nil
}

func (s *Store) Create(ctx context.Context, item cart.LineItem) (cart.State, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = cart.ApplyCreate(s.lines, item, s.newID)
	return s.lines.Clone(), nil
}

func (s *Store) Update(ctx context.Context, id string, patch cart.LineItem) (cart.State, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = cart.ApplyUpdate(s.lines, id, patch)
	return s.lines.Clone(), nil
}

// newID must be called with mu held.
func (s *Store) newID() string {
	id := fmt.Sprintf("%s_%d", s.prefix, s.nextID)
	s.nextID++
	return id
}
