package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/imrishuroy/go-cart-view/internal/cart"
	"github.com/imrishuroy/go-cart-view/internal/catalog"
	"github.com/imrishuroy/go-cart-view/internal/config"
	"github.com/imrishuroy/go-cart-view/internal/events"
	"github.com/imrishuroy/go-cart-view/internal/handlers"
	"github.com/imrishuroy/go-cart-view/internal/memstore"
	"github.com/imrishuroy/go-cart-view/internal/redisstore"
)

type recordingSender struct {
	sent []events.CartUpdated
	err  error
}

func (r *recordingSender) SendCartUpdated(ctx context.Context, evt events.CartUpdated) error {
	r.sent = append(r.sent, evt)
	return r.err
}

func TestBuildRepository(t *testing.T) {
	repo, err := buildRepository(config.Config{Backend: config.BackendMemory}, nil)
	require.NoError(t, err)
	assert.IsType(t, &memstore.Store{}, repo)

	repo, err = buildRepository(config.Config{Backend: config.BackendRedis, RedisAddr: "localhost:0", CartID: "c"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &redisstore.Store{}, repo)

	_, err = buildRepository(config.Config{Backend: config.BackendDynamoDB}, nil)
	assert.Error(t, err)
}

func TestNeedsAWS(t *testing.T) {
	assert.False(t, needsAWS(config.Config{Backend: config.BackendMemory}))
	assert.True(t, needsAWS(config.Config{Backend: config.BackendDynamoDB}))
	assert.True(t, needsAWS(config.Config{Backend: config.BackendRedis, EventsQueueURL: "q"}))
}

func TestCartEventListener(t *testing.T) {
	sender := &recordingSender{}
	ctrl := cart.NewController(memstore.New(""),
		cart.WithLogger(zap.NewNop()),
		cart.WithListener(cartEventListener(sender, "kiosk", zap.NewNop())),
	)
	ctx := context.Background()

	_, err := ctrl.Add(ctx, cart.Product{Name: "Coco", Price: 3.25})
	require.NoError(t, err)
	_, err = ctrl.Add(ctx, cart.Product{Name: "Coco", Price: 3.25})
	require.NoError(t, err)

	require.Len(t, sender.sent, 2)
	last := sender.sent[1]
	assert.Equal(t, "kiosk", last.CartID)
	assert.Equal(t, 1, last.Lines)
	assert.Equal(t, 2, last.Units)
	assert.Equal(t, 6.5, last.Subtotal)
	assert.NotEqual(t, sender.sent[0].EventID, last.EventID)
}

func TestCartEventListener_SendFailureDoesNotFailOperation(t *testing.T) {
	sender := &recordingSender{err: errors.New("queue gone")}
	ctrl := cart.NewController(memstore.New(""),
		cart.WithLogger(zap.NewNop()),
		cart.WithListener(cartEventListener(sender, "kiosk", zap.NewNop())),
	)

	s, err := ctrl.Add(context.Background(), cart.Product{Name: "Coco", Price: 3.25})
	require.NoError(t, err)
	assert.Len(t, s, 1)
}

func TestSetupRouter_Health(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := setupRouter(handlers.HandlerConfig{
		Controller: cart.NewController(memstore.New(""), cart.WithLogger(zap.NewNop())),
		Catalog:    catalog.Default(),
		Logger:     zap.NewNop(),
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/cart", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
