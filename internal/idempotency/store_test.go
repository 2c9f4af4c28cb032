package idempotency

import (
	"context"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClaim_Get_Complete(t *testing.T) {
	mock := newSimpleMock()
	s := NewStore(mock, "idempotency-table", 48*time.Hour)
	ctx := context.Background()
	key := "test-key-1"

	claimed, err := s.Claim(ctx, key, "POST /cart")
	require.NoError(t, err)
	assert.True(t, claimed)

	claimed, err = s.Claim(ctx, key, "POST /cart")
	require.NoError(t, err)
	assert.False(t, claimed, "second claim must lose")

	rec, err := s.Get(ctx, key)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, StatusInProgress, rec.Status)
	assert.Equal(t, "POST /cart", rec.Route)

	require.NoError(t, s.Complete(ctx, key, `{"items":[]}`, 200))

	item := mock.table[key]
	st, ok := item["status"].(*types.AttributeValueMemberS)
	require.True(t, ok)
	assert.Equal(t, StatusDone, st.Value)

	rec, err = s.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, `{"items":[]}`, rec.ResponseBody)
	assert.Equal(t, 200, rec.ResponseStatus)
}

func TestRelease_AllowsRetry(t *testing.T) {
	mock := newSimpleMock()
	s := NewStore(mock, "idempotency-table", time.Hour)
	ctx := context.Background()

	_, err := s.Claim(ctx, "k", "DELETE /cart/:id")
	require.NoError(t, err)
	require.NoError(t, s.Release(ctx, "k"))

	rec, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Nil(t, rec)

	claimed, err := s.Claim(ctx, "k", "DELETE /cart/:id")
	require.NoError(t, err)
	assert.True(t, claimed)
}

func TestClaim_ExpiredRecordIsReclaimed(t *testing.T) {
	mock := newSimpleMock()
	s := NewStore(mock, "idempotency-table", time.Minute)
	ctx := context.Background()

	start := time.Date(2026, 10, 18, 10, 0, 0, 0, time.UTC)
	s.nowFunc = func() time.Time { return start }
	claimed, err := s.Claim(ctx, "k", "POST /cart")
	require.NoError(t, err)
	require.True(t, claimed)

	s.nowFunc = func() time.Time { return start.Add(2 * time.Minute) }
	claimed, err = s.Claim(ctx, "k", "POST /cart")
	require.NoError(t, err)
	assert.True(t, claimed)
}
