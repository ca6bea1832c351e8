package engine

import (
	"errors"
	"fmt"

	"github.com/seguido/seguido/internal/order"
)

// TransitionError reports a rejected item transition.
//
// Transitions are rejected for:
//   - Empty selection: no item indices were supplied.
//   - Ineligible item: a selected item's current status does not permit
//     the requested target status.
//   - Bad target: the target is not a partial-transition status.
//   - Bad index: a selected index is out of range.
type TransitionError struct {
	// Code identifies the rejection category.
	Code TransitionErrorCode

	// Message is a human-readable description.
	Message string

	// Target is the requested target status.
	Target order.Status

	// Index is the offending item index (ineligible/bad index), or -1.
	Index int
}

// TransitionErrorCode categorizes transition rejections.
type TransitionErrorCode string

const (
	// ErrCodeEmptySelection indicates no items were selected.
	ErrCodeEmptySelection TransitionErrorCode = "EMPTY_SELECTION"

	// ErrCodeIneligibleItem indicates a selected item cannot take the target.
	ErrCodeIneligibleItem TransitionErrorCode = "INELIGIBLE_ITEM"

	// ErrCodeBadTarget indicates the target status is not Shipped or Received.
	ErrCodeBadTarget TransitionErrorCode = "BAD_TARGET"

	// ErrCodeBadIndex indicates a selected index is out of range.
	ErrCodeBadIndex TransitionErrorCode = "BAD_INDEX"
)

// Error implements the error interface.
func (e *TransitionError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("%s: %s (target=%s, item=%d)", e.Code, e.Message, e.Target, e.Index)
	}
	return fmt.Sprintf("%s: %s (target=%s)", e.Code, e.Message, e.Target)
}

// IsIneligibleError returns true if err is an ineligible-item rejection.
// Uses errors.As to handle wrapped errors.
func IsIneligibleError(err error) bool {
	var te *TransitionError
	if errors.As(err, &te) {
		return te.Code == ErrCodeIneligibleItem
	}
	return false
}

// IsEmptySelectionError returns true if err is an empty-selection rejection.
func IsEmptySelectionError(err error) bool {
	var te *TransitionError
	if errors.As(err, &te) {
		return te.Code == ErrCodeEmptySelection
	}
	return false
}

func newEmptySelectionError(target order.Status) *TransitionError {
	return &TransitionError{
		Code:    ErrCodeEmptySelection,
		Message: "no items selected for transition",
		Target:  target,
		Index:   -1,
	}
}

func newIneligibleError(target order.Status, index int, current order.Status) *TransitionError {
	return &TransitionError{
		Code:    ErrCodeIneligibleItem,
		Message: fmt.Sprintf("item status %q does not permit transition", current),
		Target:  target,
		Index:   index,
	}
}

func newBadTargetError(target order.Status) *TransitionError {
	return &TransitionError{
		Code:    ErrCodeBadTarget,
		Message: "partial transitions only target Enviado or Recibido",
		Target:  target,
		Index:   -1,
	}
}

func newBadIndexError(target order.Status, index int) *TransitionError {
	return &TransitionError{
		Code:    ErrCodeBadIndex,
		Message: "item index out of range",
		Target:  target,
		Index:   index,
	}
}
