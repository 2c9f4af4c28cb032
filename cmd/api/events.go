package main

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/imrishuroy/go-cart-view/internal/cart"
	"github.com/imrishuroy/go-cart-view/internal/events"
)

type cartEventSender interface {
	SendCartUpdated(ctx context.Context, evt events.CartUpdated) error
}

// cartEventListener forwards every published cart as a CartUpdated event.
// Send failures are logged only; the cart operation has already succeeded.
func cartEventListener(sender cartEventSender, cartID string, log *zap.Logger) cart.Listener {
	return func(ctx context.Context, s cart.State) {
		evt := events.NewCartUpdated(uuid.NewString(), cartID, s, time.Now())
		if err := sender.SendCartUpdated(ctx, evt); err != nil {
			log.Warn("cart event not sent",
				zap.String("event_id", evt.EventID),
				zap.Error(err),
			)
		}
	}
}
