package validation

import (
	"strings"

	validatorv10 "github.com/go-playground/validator/v10"
)

// New returns a validator with the cart rules registered.
func New() *validatorv10.Validate {
	v := validatorv10.New()
	v.RegisterStructValidation(addItemStructValidation, AddItemRequest{})
	return v
}

// addItemStructValidation rejects names that are only whitespace.
func addItemStructValidation(sl validatorv10.StructLevel) {
	req := sl.Current().Interface().(AddItemRequest)
	if req.Name != "" && strings.TrimSpace(req.Name) == "" {
		sl.ReportError(req.Name, "name", "Name", "not_blank", "")
	}
}
