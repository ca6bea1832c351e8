package cli

import (
	"fmt"
	"time"

	"github.com/seguido/seguido/internal/order"
)

// FieldError is a field-level validation message. Validation errors block
// submission entirely; nothing is partially saved.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// validateOrderInput checks the required fields of a new or edited order.
// Returns every problem found so the user can fix them in one pass.
//
// Applied to manual entry and AI-extracted input alike: the extraction
// collaborator is never trusted to have produced valid required fields.
func validateOrderInput(o order.Order) []FieldError {
	var errs []FieldError
	if o.Title == "" {
		errs = append(errs, FieldError{Field: "title", Message: "title is required"})
	}
	if len(o.Items) == 0 {
		errs = append(errs, FieldError{Field: "items", Message: "at least one product is required"})
	}
	if o.StoreName == "" {
		errs = append(errs, FieldError{Field: "store", Message: "store name is required"})
	}
	if o.Amount <= 0 {
		errs = append(errs, FieldError{Field: "amount", Message: "amount must be positive"})
	}
	if _, err := time.Parse("2006-01-02", o.Date); err != nil {
		errs = append(errs, FieldError{Field: "date", Message: "date must be YYYY-MM-DD"})
	}
	return errs
}

// failValidation renders field errors and returns the blocking ExitError.
func failValidation(f *OutputFormatter, errs []FieldError) error {
	if f.Format == "json" {
		_ = f.Error("E_VALIDATION", "submission blocked by validation errors", errs)
	} else {
		_ = f.Error("E_VALIDATION", "submission blocked by validation errors", nil)
		for _, fe := range errs {
			fmt.Fprintf(f.Writer, "  %s: %s\n", fe.Field, fe.Message)
		}
	}
	return NewExitError(ExitFailure, "validation failed")
}
