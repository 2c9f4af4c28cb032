package cart

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// Listener receives every newly published state.
type Listener func(ctx context.Context, s State)

// Controller owns the published cart state. Each mutation writes through the
// Repository and then re-reads the whole cart; only the re-read result is
// published. On any failure the published state is left untouched.
//
// Operations are not serialized by default: concurrent calls race and the
// last refresh wins. WithLineSerialization queues calls per line id.
type Controller struct {
	repo   Repository
	logger *zap.Logger

	mu        sync.RWMutex
	state     State
	listeners []Listener

	locks   *lineLocks
	pending atomic.Int64
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the controller logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithListener registers fn to be called after each publish.
func WithListener(fn Listener) Option {
	return func(c *Controller) {
		if fn != nil {
			c.listeners = append(c.listeners, fn)
		}
	}
}

// WithLineSerialization makes operations on the same line (or, for Add, the
// same product name) run one at a time.
func WithLineSerialization() Option {
	return func(c *Controller) {
		c.locks = newLineLocks()
	}
}

// NewController returns a Controller with an empty published state. Call
// Load to fetch the persisted cart.
func NewController(repo Repository, opts ...Option) *Controller {
	c := &Controller{
		repo:   repo,
		logger: zap.L().Named("cart.controller"),
		state:  State{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns a copy of the published state.
func (c *Controller) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.Clone()
}

// Subtotal is recomputed from the published state.
func (c *Controller) Subtotal() float64 {
	return Subtotal(c.State())
}

// Pending reports how many operations are between their first call and
// their publish (or failure).
func (c *Controller) Pending() int {
	return int(c.pending.Load())
}

// Line looks up a line in the published state.
func (c *Controller) Line(id string) (LineItem, error) {
	l, ok := Find(c.State(), id)
	if !ok {
		return LineItem{}, fmt.Errorf("line %q: %w", id, ErrNotFound)
	}
	return l, nil
}

// FreshLine reloads the persisted cart and looks up id in it. Use it when
// other processes write to the same storage and the published state may lag.
func (c *Controller) FreshLine(ctx context.Context, id string) (LineItem, error) {
	s, err := c.Load(ctx)
	if err != nil {
		return LineItem{}, err
	}
	l, ok := Find(s, id)
	if !ok {
		return LineItem{}, fmt.Errorf("line %q: %w", id, ErrNotFound)
	}
	return l, nil
}

// Load fetches the persisted cart and publishes it.
func (c *Controller) Load(ctx context.Context) (State, error) {
	c.pending.Add(1)
	defer c.pending.Add(-1)
	return c.refresh(ctx, "load", c.State())
}

// Add sends a create-or-increment for p and refreshes.
func (c *Controller) Add(ctx context.Context, p Product) (State, error) {
	cur := c.State()
	c.logger.Debug("add product",
		zap.String("name", p.Name),
		zap.Bool("merge", len(AddProduct(cur, p)) == len(cur)),
	)
	return c.mutate(ctx, "add", "name:"+p.Name, func(ctx context.Context) error {
		_, err := c.repo.Create(ctx, NewLineItem(p))
		return err
	})
}

// IncreaseQuantity adds one unit to line. There is no upper bound.
func (c *Controller) IncreaseQuantity(ctx context.Context, line LineItem) (State, error) {
	return c.commitQuantity(ctx, "increase", line, IncreasedQuantity(line))
}

// DecreaseQuantity removes one unit from line; reaching zero removes it.
func (c *Controller) DecreaseQuantity(ctx context.Context, line LineItem) (State, error) {
	return c.commitQuantity(ctx, "decrease", line, DecreasedQuantity(line))
}

// SetQuantity stores an explicit quantity for the line with id. Negative
// values are clamped to zero, which removes the line.
func (c *Controller) SetQuantity(ctx context.Context, id string, quantity int) (State, error) {
	if quantity < 0 {
		c.logger.Warn("clamping quantity",
			zap.String("line_id", id),
			zap.Int("quantity", quantity),
			zap.Error(ErrInvalidQuantity),
		)
		quantity = 0
	}
	return c.commitQuantity(ctx, "set_quantity", LineItem{ID: id}, quantity)
}

// Remove deletes line.
func (c *Controller) Remove(ctx context.Context, line LineItem) (State, error) {
	return c.removeLine(ctx, "remove", line.ID)
}

func (c *Controller) commitQuantity(ctx context.Context, op string, line LineItem, quantity int) (State, error) {
	if quantity == 0 {
		return c.removeLine(ctx, op, line.ID)
	}
	patch := line
	patch.ID = ""
	patch.Quantity = quantity
	return c.mutate(ctx, op, "line:"+line.ID, func(ctx context.Context) error {
		_, err := c.repo.Update(ctx, line.ID, patch)
		return err
	})
}

// removeLine is the only place a quantity-zero update is sent.
func (c *Controller) removeLine(ctx context.Context, op, id string) (State, error) {
	return c.mutate(ctx, op, "line:"+id, func(ctx context.Context) error {
		_, err := c.repo.Update(ctx, id, LineItem{Quantity: 0})
		return err
	})
}

func (c *Controller) mutate(ctx context.Context, op, key string, write func(context.Context) error) (State, error) {
	c.pending.Add(1)
	defer c.pending.Add(-1)
	if c.locks != nil {
		unlock := c.locks.lock(key)
		defer unlock()
	}

	prev := c.State()
	if err := write(ctx); err != nil {
		c.logger.Warn("cart write failed",
			zap.String("op", op),
			zap.String("key", key),
			zap.Error(err),
		)
		return prev, fmt.Errorf("%w: %s: %w", ErrPersistenceUnavailable, op, err)
	}
	return c.refresh(ctx, op, prev)
}

func (c *Controller) refresh(ctx context.Context, op string, prev State) (State, error) {
	s, err := c.repo.List(ctx)
	if err != nil {
		c.logger.Warn("cart refresh failed",
			zap.String("op", op),
			zap.Error(err),
		)
		return prev, fmt.Errorf("%w: %s refresh: %w", ErrPersistenceUnavailable, op, err)
	}
	c.publish(ctx, s)
	return s.Clone(), nil
}

func (c *Controller) publish(ctx context.Context, s State) {
	c.mu.Lock()
	c.state = s.Clone()
	listeners := c.listeners
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(ctx, s.Clone())
	}
}
