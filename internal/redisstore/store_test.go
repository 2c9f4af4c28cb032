package redisstore

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imrishuroy/go-cart-view/internal/cart"
)

// newTestStore talks to REDIS_ADDR when set and to an in-process miniredis
// otherwise. Each test gets its own cart id so runs never collide.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = miniredis.RunT(t).Addr()
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	ctx := context.Background()
	if err := rdb.Ping(ctx).Err(); err != nil {
		t.Skipf("redis unreachable: %v", err)
	}
	s := New(rdb, "test-"+uuid.NewString())
	t.Cleanup(func() {
		rdb.Del(ctx, s.linesKey(), s.seqKey())
		_ = rdb.Close()
	})
	return s
}

var acai = cart.LineItem{Name: "Açaí", Price: 4.00, Quantity: 1}

func TestStore_EmptyList(t *testing.T) {
	s := newTestStore(t)
	lines, err := s.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, lines)
	assert.NotNil(t, lines)
}

func TestStore_CreateUpdateDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	lines, err := s.Create(ctx, acai)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "line_1", lines[0].ID)

	lines, err = s.Create(ctx, acai)
	require.NoError(t, err)
	assert.Equal(t, 2, lines[0].Quantity)

	lines, err = s.Update(ctx, "line_1", cart.LineItem{Quantity: 6})
	require.NoError(t, err)
	assert.Equal(t, 6, lines[0].Quantity)

	lines, err = s.Update(ctx, "line_1", cart.LineItem{})
	require.NoError(t, err)
	assert.Empty(t, lines)

	lines, err = s.Create(ctx, acai)
	require.NoError(t, err)
	assert.Equal(t, "line_2", lines[0].ID)
}

func TestStore_ConcurrentCreatesDoNotLoseUpdates(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Create(ctx, acai)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	lines, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 5, lines[0].Quantity)
}
