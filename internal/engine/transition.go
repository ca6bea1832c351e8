package engine

import (
	"time"

	"github.com/seguido/seguido/internal/order"
)

// Eligible reports whether an item with the given current status may take
// the target status.
//
// For target Shipped the item must still be Ordered. For target Received the
// item may be Ordered, Shipped or PartiallyShipped. All other targets are
// never applied item by item.
func Eligible(current, target order.Status) bool {
	switch target {
	case order.StatusShipped:
		return current == order.StatusOrdered
	case order.StatusReceived:
		return current == order.StatusOrdered ||
			current == order.StatusShipped ||
			current == order.StatusPartiallyShipped
	}
	return false
}

// EligibleIndices returns the indices of items that may take the target
// status. Used by callers to build selections for ApplyPartialTransition
// (e.g. --all flags) and to refuse submission when nothing is eligible.
func EligibleIndices(o *order.Order, target order.Status) []int {
	var idx []int
	for i, it := range o.Items {
		if Eligible(it.Status, target) {
			idx = append(idx, i)
		}
	}
	return idx
}

// ApplyPartialTransition marks the selected items with the target status and
// recomputes the order's aggregate status.
//
// The target must be Shipped or Received, the selection must be non-empty,
// and every selected index must reference an eligible item; otherwise a
// *TransitionError is returned and the order is unchanged. Non-selected items
// are untouched. When transitioning to Received and the order has no receipt
// date yet, ReceivedDate is stamped from now.
//
// The input order is not mutated; the updated copy is returned.
func ApplyPartialTransition(o order.Order, target order.Status, selected []int, now time.Time) (order.Order, error) {
	if target != order.StatusShipped && target != order.StatusReceived {
		return o, newBadTargetError(target)
	}
	if len(selected) == 0 {
		return o, newEmptySelectionError(target)
	}

	items := o.CloneItems()
	for _, i := range selected {
		if i < 0 || i >= len(items) {
			return o, newBadIndexError(target, i)
		}
		if !Eligible(items[i].Status, target) {
			return o, newIneligibleError(target, i, items[i].Status)
		}
		items[i].Status = target
	}

	o.Items = items
	o.Status = DeriveGlobalStatus(items, o.Status)
	if target == order.StatusReceived && o.ReceivedDate == "" {
		o.ReceivedDate = now.Format("2006-01-02")
	}
	return o, nil
}

// ApplyReturn marks every item Returned and recomputes the aggregate.
//
// The aggregate becomes Received: a fully returned order is deliberately
// represented as a degenerate case of "fully received", while the item-level
// detail retains Returned.
func ApplyReturn(o order.Order) order.Order {
	items := o.CloneItems()
	for i := range items {
		items[i].Status = order.StatusReturned
	}
	o.Items = items
	o.Status = DeriveGlobalStatus(items, o.Status)
	return o
}

// ApplyClaim sets the order's status to Claimed without touching item
// statuses. The flag is an incident overlay independent of item progress;
// it is dropped automatically the next time items drive the aggregate away
// from Claimed (see DeriveGlobalStatus rule precedence).
func ApplyClaim(o order.Order) order.Order {
	o.Status = order.StatusClaimed
	return o
}
