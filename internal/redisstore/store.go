package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/imrishuroy/go-cart-view/internal/cart"
)

const maxTxRetries = 10

// ErrContention is returned when the optimistic transaction keeps losing.
var ErrContention = errors.New("cart key contended")

// Store keeps the whole cart as one JSON value. Writes run under WATCH so a
// concurrent writer forces a retry instead of a lost update. Line ids come
// from an INCR counter and are therefore never reused.
type Store struct {
	rdb    redis.UniversalClient
	cartID string
}

func New(rdb redis.UniversalClient, cartID string) *Store {
	return &Store{rdb: rdb, cartID: cartID}
}

func (s *Store) linesKey() string { return "cart:" + s.cartID + ":lines" }
func (s *Store) seqKey() string   { return "cart:" + s.cartID + ":seq" }

func (s *Store) List(ctx context.Context) (cart.State, error) {
	return s.read(ctx, s.rdb)
}

func (s *Store) Create(ctx context.Context, item cart.LineItem) (cart.State, error) {
	return s.mutate(ctx, func(tx *redis.Tx, lines cart.State) (cart.State, error) {
		var idErr error
		next := cart.ApplyCreate(lines, item, func() string {
			n, err := tx.Incr(ctx, s.seqKey()).Result()
			if err != nil {
				idErr = err
				return ""
			}
			return fmt.Sprintf("line_%d", n)
		})
		if idErr != nil {
			return nil, fmt.Errorf("next line id: %w", idErr)
		}
		return next, nil
	})
}

func (s *Store) Update(ctx context.Context, id string, patch cart.LineItem) (cart.State, error) {
	return s.mutate(ctx, func(_ *redis.Tx, lines cart.State) (cart.State, error) {
		return cart.ApplyUpdate(lines, id, patch), nil
	})
}

// getter is satisfied by both the client and a WATCH transaction.
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (s *Store) read(ctx context.Context, c getter) (cart.State, error) {
	raw, err := c.Get(ctx, s.linesKey()).Bytes()
	if errors.Is(err, redis.Nil) {
		return cart.State{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}
	var lines cart.State
	if err := json.Unmarshal(raw, &lines); err != nil {
		return nil, fmt.Errorf("decode cart: %w", err)
	}
	if lines == nil {
		lines = cart.State{}
	}
	return lines, nil
}

func (s *Store) mutate(ctx context.Context, fn func(*redis.Tx, cart.State) (cart.State, error)) (cart.State, error) {
	var result cart.State
	txf := func(tx *redis.Tx) error {
		lines, err := s.read(ctx, tx)
		if err != nil {
			return err
		}
		next, err := fn(tx, lines)
		if err != nil {
			return err
		}
		raw, err := json.Marshal(next)
		if err != nil {
			return fmt.Errorf("encode cart: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, s.linesKey(), raw, 0)
			return nil
		})
		if err == nil {
			result = next
		}
		return err
	}

	for i := 0; i < maxTxRetries; i++ {
		err := s.rdb.Watch(ctx, txf, s.linesKey())
		if err == nil {
			return result, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return nil, err
	}
	return nil, ErrContention
}
