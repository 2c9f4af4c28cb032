package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/imrishuroy/go-cart-view/internal/cart"
	"github.com/imrishuroy/go-cart-view/internal/catalog"
	"github.com/imrishuroy/go-cart-view/internal/idempotency"
	"github.com/imrishuroy/go-cart-view/internal/validation"
)

// IdempotencyGuard is implemented by idempotency.Store.
type IdempotencyGuard interface {
	Claim(ctx context.Context, key, route string) (bool, error)
	Get(ctx context.Context, key string) (*idempotency.Record, error)
	Complete(ctx context.Context, key, responseBody string, responseStatus int) error
	Release(ctx context.Context, key string) error
}

// HandlerConfig groups dependencies for the cart handler. Guard is optional;
// without it the Idempotency-Key header is ignored.
type HandlerConfig struct {
	Controller *cart.Controller
	Catalog    *catalog.Catalog
	Guard      IdempotencyGuard
	Logger     *zap.Logger
}

type cartHandler struct {
	ctrl    *cart.Controller
	catalog *catalog.Catalog
	guard   IdempotencyGuard
	v       *validatorv10.Validate
	logger  *zap.Logger
}

// RegisterCartRoutes registers the catalog and cart routes.
func RegisterCartRoutes(r gin.IRouter, cfg HandlerConfig) {
	h := &cartHandler{
		ctrl:    cfg.Controller,
		catalog: cfg.Catalog,
		guard:   cfg.Guard,
		v:       validation.New(),
		logger:  cfg.Logger,
	}
	if h.logger == nil {
		h.logger = zap.L().Named("cart.handler")
	}

	r.GET("/catalog", h.listCatalog)
	r.GET("/cart", h.getCart)
	r.POST("/cart", h.addItem)
	r.POST("/cart/:id/increase", h.increase)
	r.POST("/cart/:id/decrease", h.decrease)
	r.PUT("/cart/:id", h.setQuantity)
	r.DELETE("/cart/:id", h.remove)
}

func (h *cartHandler) listCatalog(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"products": newProductViews(h.catalog.Products())})
}

func (h *cartHandler) getCart(c *gin.Context) {
	s, err := h.ctrl.Load(c.Request.Context())
	if err != nil {
		h.writeError(c, "load", err)
		return
	}
	c.JSON(http.StatusOK, newCartView(s))
}

func (h *cartHandler) addItem(c *gin.Context) {
	var req validation.AddItemRequest
	if err := validation.BindAndValidate(c, &req, h.v); err != nil {
		return
	}
	p, err := h.catalog.Lookup(req.Name)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown_product", "name": req.Name})
		return
	}
	h.runMutation(c, "add", func(ctx context.Context) (cart.State, error) {
		return h.ctrl.Add(ctx, p)
	})
}

func (h *cartHandler) increase(c *gin.Context) {
	var params validation.LineParams
	if err := validation.BindURIAndValidate(c, &params, h.v); err != nil {
		return
	}
	h.runMutation(c, "increase", func(ctx context.Context) (cart.State, error) {
		line, err := h.ctrl.FreshLine(ctx, params.ID)
		if err != nil {
			return nil, err
		}
		return h.ctrl.IncreaseQuantity(ctx, line)
	})
}

func (h *cartHandler) decrease(c *gin.Context) {
	var params validation.LineParams
	if err := validation.BindURIAndValidate(c, &params, h.v); err != nil {
		return
	}
	h.runMutation(c, "decrease", func(ctx context.Context) (cart.State, error) {
		line, err := h.ctrl.FreshLine(ctx, params.ID)
		if err != nil {
			return nil, err
		}
		return h.ctrl.DecreaseQuantity(ctx, line)
	})
}

func (h *cartHandler) setQuantity(c *gin.Context) {
	var params validation.LineParams
	if err := validation.BindURIAndValidate(c, &params, h.v); err != nil {
		return
	}
	var req validation.SetQuantityRequest
	if err := validation.BindAndValidate(c, &req, h.v); err != nil {
		return
	}
	h.runMutation(c, "set_quantity", func(ctx context.Context) (cart.State, error) {
		return h.ctrl.SetQuantity(ctx, params.ID, *req.Quantity)
	})
}

func (h *cartHandler) remove(c *gin.Context) {
	var params validation.LineParams
	if err := validation.BindURIAndValidate(c, &params, h.v); err != nil {
		return
	}
	h.runMutation(c, "remove", func(ctx context.Context) (cart.State, error) {
		return h.ctrl.Remove(ctx, cart.LineItem{ID: params.ID})
	})
}

// runMutation executes op and writes the refreshed cart. With a guard and an
// Idempotency-Key header, a key that already completed replays its stored
// response instead of running op again.
func (h *cartHandler) runMutation(c *gin.Context, op string, fn func(context.Context) (cart.State, error)) {
	ctx := c.Request.Context()
	key := c.GetHeader("Idempotency-Key")
	route := c.Request.Method + " " + c.FullPath()

	if h.guard == nil || key == "" {
		s, err := fn(ctx)
		if err != nil {
			h.writeError(c, op, err)
			return
		}
		c.JSON(http.StatusOK, newCartView(s))
		return
	}

	claimed, err := h.guard.Claim(ctx, key, route)
	if err != nil {
		h.logger.Error("idempotency claim failed", zap.String("op", op), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "idempotency_check_failed"})
		return
	}
	if !claimed {
		h.replay(c, key, route)
		return
	}

	s, err := fn(ctx)
	if err != nil {
		if rerr := h.guard.Release(ctx, key); rerr != nil {
			h.logger.Warn("idempotency release failed", zap.String("op", op), zap.Error(rerr))
		}
		h.writeError(c, op, err)
		return
	}

	body, err := json.Marshal(newCartView(s))
	if err != nil {
		h.writeError(c, op, err)
		return
	}
	if err := h.guard.Complete(ctx, key, string(body), http.StatusOK); err != nil {
		h.logger.Warn("idempotency complete failed", zap.String("op", op), zap.Error(err))
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
}

func (h *cartHandler) replay(c *gin.Context, key, route string) {
	rec, err := h.guard.Get(c.Request.Context(), key)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "idempotency_check_failed"})
		return
	}
	if rec == nil {
		// released between our claim and this read
		c.JSON(http.StatusConflict, gin.H{"error": "request_in_progress"})
		return
	}
	if rec.Route != "" && rec.Route != route {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "idempotency_key_reused", "route": rec.Route})
		return
	}
	switch rec.Status {
	case idempotency.StatusDone:
		status := rec.ResponseStatus
		if status == 0 {
			status = http.StatusOK
		}
		c.Header("Idempotent-Replayed", "true")
		c.Data(status, "application/json; charset=utf-8", []byte(rec.ResponseBody))
	default:
		c.JSON(http.StatusConflict, gin.H{"error": "request_in_progress"})
	}
}

func (h *cartHandler) writeError(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, cart.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "line_not_found"})
	case errors.Is(err, cart.ErrPersistenceUnavailable):
		h.logger.Warn("cart operation failed", zap.String("op", op), zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "persistence_unavailable",
			"cart":  newCartView(h.ctrl.State()),
		})
	default:
		h.logger.Error("cart operation failed", zap.String("op", op), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
	}
}
