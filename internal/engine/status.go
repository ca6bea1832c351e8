// Package engine computes aggregate order status from item state and applies
// item-level transitions.
//
// All functions are pure: they take values, return values, and perform no
// storage or UI side effects. Persistence and confirmation prompts belong to
// the store adapter and the CLI respectively.
package engine

import "github.com/seguido/seguido/internal/order"

// DeriveGlobalStatus computes an order's aggregate status from its item list.
//
// Rules, evaluated in this precedence order:
//
//  1. Empty items: return current unchanged (nothing to derive from).
//  2. Every item Received or Returned → Received.
//  3. Every item in {Shipped, PartiallyReceived, Received, Returned} → Shipped.
//  4. Any item Received → PartiallyReceived.
//  5. Any item Shipped → PartiallyShipped.
//  6. Current status Claimed → Claimed.
//  7. Otherwise → Ordered.
//
// Rule order matters: "all received/returned" must win over "any received",
// and the Claimed preservation is checked last so the incident flag never
// masks genuine progress from items. A Claimed order therefore reverts to an
// item-derived status as soon as any item ships or arrives; this precedence
// is intentional.
//
// The result depends only on the multiset of item statuses plus the single
// prior aggregate value, never on item ordering.
func DeriveGlobalStatus(items []order.Item, current order.Status) order.Status {
	if len(items) == 0 {
		return current
	}

	allReceived := true
	allShippedOrBetter := true
	anyReceived := false
	anyShipped := false
	for _, it := range items {
		switch it.Status {
		case order.StatusReceived:
			anyReceived = true
		case order.StatusReturned:
			// Counts toward both "all received" and "all shipped or better".
		case order.StatusShipped:
			allReceived = false
			anyShipped = true
		case order.StatusPartiallyReceived:
			allReceived = false
		default:
			allReceived = false
			allShippedOrBetter = false
		}
	}

	switch {
	case allReceived:
		return order.StatusReceived
	case allShippedOrBetter:
		return order.StatusShipped
	case anyReceived:
		return order.StatusPartiallyReceived
	case anyShipped:
		return order.StatusPartiallyShipped
	case current == order.StatusClaimed:
		return order.StatusClaimed
	}
	return order.StatusOrdered
}
