package events

import (
	"time"

	"github.com/imrishuroy/go-cart-view/internal/cart"
)

// TypeCartUpdated is carried in the event_type message attribute.
const TypeCartUpdated = "cart.updated"

// CartUpdated is the payload sent API -> SQS -> worker after every publish.
type CartUpdated struct {
	EventID     string    `json:"event_id"`
	CartID      string    `json:"cart_id"`
	Lines       int       `json:"lines"`
	Units       int       `json:"units"`
	Subtotal    float64   `json:"subtotal"`
	PublishedAt time.Time `json:"published_at"`
}

// NewCartUpdated summarizes s.
func NewCartUpdated(eventID, cartID string, s cart.State, at time.Time) CartUpdated {
	return CartUpdated{
		EventID:     eventID,
		CartID:      cartID,
		Lines:       len(s),
		Units:       s.Units(),
		Subtotal:    cart.Subtotal(s),
		PublishedAt: at.UTC(),
	}
}
