package validation

// AddItemRequest is the payload for POST /cart.
type AddItemRequest struct {
	Name string `json:"name" validate:"required,max=120"` // catalog product name
}

// SetQuantityRequest is the payload for PUT /cart/:id. Negative quantities
// pass validation and are clamped to zero by the cart controller.
type SetQuantityRequest struct {
	Quantity *int `json:"quantity" validate:"required"`
}

// LineParams binds the :id path segment.
type LineParams struct {
	ID string `uri:"id" validate:"required,max=128"`
}
