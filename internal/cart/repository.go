package cart

import "context"

// Repository is the persistence collaborator. Every call returns the full
// collection as it stands after the call.
type Repository interface {
	// List returns the current cart.
	List(ctx context.Context) (State, error)
	// Create increments the line with the same name, or appends item with a
	// freshly assigned id and quantity 1.
	Create(ctx context.Context, item LineItem) (State, error)
	// Update deletes the line when patch.Quantity is 0 and merges patch into
	// it otherwise. Unknown ids are ignored.
	Update(ctx context.Context, id string, patch LineItem) (State, error)
}
