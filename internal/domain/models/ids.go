// internal/domain/models/ids.go
package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// IsPermutation reports whether proposed is exactly a reordering of
// current: same length, same ids, no omissions, additions, or
// duplicates. Both reorder operations (statuses and todos) accept a
// new order only under this law.
func IsPermutation(current, proposed []primitive.ObjectID) bool {
	if len(current) != len(proposed) {
		return false
	}
	counts := make(map[primitive.ObjectID]int, len(current))
	for _, id := range current {
		counts[id]++
	}
	for _, id := range proposed {
		counts[id]--
		if counts[id] < 0 {
			return false
		}
	}
	return true
}
