package store

import "sort"

// maxProbeDepth caps structure probing so hostile or cyclic-looking input
// cannot cause unbounded traversal.
const maxProbeDepth = 8

// priorityKeys are checked first when probing an object for the order
// collection; backup formats have historically nested it under these.
var priorityKeys = []string{"data", "orders", "items"}

// findOrdersArray locates the first array of object-shaped elements in a
// parsed JSON structure.
//
// Arrays qualify when empty or when their first element is an object.
// Objects are probed by the fixed priority keys first, then by an exhaustive
// scan of the remaining keys in sorted order, descending into nested objects
// and arrays up to maxProbeDepth. Returns nil when nothing qualifies.
//
// Tolerance here is deliberate: the backup format has evolved and users
// restore files from several generations of the tracker.
func findOrdersArray(v any, depth int) []any {
	if depth > maxProbeDepth {
		return nil
	}

	switch node := v.(type) {
	case []any:
		if len(node) == 0 {
			return node
		}
		if _, ok := node[0].(map[string]any); ok {
			return node
		}
		// Array of non-records; the collection may sit deeper.
		for _, el := range node {
			if found := findOrdersArray(el, depth+1); found != nil {
				return found
			}
		}
	case map[string]any:
		for _, key := range priorityKeys {
			if arr, ok := node[key].([]any); ok {
				if found := findOrdersArray(arr, depth+1); found != nil {
					return found
				}
			}
		}

		keys := make([]string, 0, len(node))
		for k := range node {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if found := findOrdersArray(node[k], depth+1); found != nil {
				return found
			}
		}
	}
	return nil
}
