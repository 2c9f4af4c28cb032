package cartstore

import (
	"time"

	"github.com/imrishuroy/go-cart-view/internal/cart"
)

// LineRecord is the item stored in the cart lines DynamoDB table.
type LineRecord struct {
	CartID    string    `dynamodbav:"cart_id"` // PK
	LineID    string    `dynamodbav:"line_id"` // SK
	Name      string    `dynamodbav:"name"`
	Image     string    `dynamodbav:"image,omitempty"`
	Category  string    `dynamodbav:"category,omitempty"`
	Price     float64   `dynamodbav:"price"`
	Quantity  int       `dynamodbav:"quantity"`
	Seq       int64     `dynamodbav:"seq"` // insertion order
	CreatedAt time.Time `dynamodbav:"created_at"`
	UpdatedAt time.Time `dynamodbav:"updated_at"`
}

// NameRecord reserves a product name within a cart. It shares the lines
// table under the sort key "name#<name>" and points at the line holding it.
type NameRecord struct {
	CartID string `dynamodbav:"cart_id"`
	LineID string `dynamodbav:"line_id"`
	Target string `dynamodbav:"target"`
}

func (r LineRecord) lineItem() cart.LineItem {
	return cart.LineItem{
		ID:       r.LineID,
		Name:     r.Name,
		Image:    r.Image,
		Category: r.Category,
		Price:    r.Price,
		Quantity: r.Quantity,
	}
}
