package domain

import "sort"

// CanonicalOrder sorts items by the challenge metric in the challenge's
// declared direction. The sort is stable so ties keep input order. Items
// missing the metric are filtered out before sorting.
func CanonicalOrder(items []*Item, challenge Challenge) []*Item {
	out := make([]*Item, 0, len(items))
	for _, it := range items {
		if _, ok := it.Metric(challenge.Metric); ok {
			out = append(out, it)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, _ := out[i].Metric(challenge.Metric)
		b, _ := out[j].Metric(challenge.Metric)
		if challenge.Direction == Descending {
			return a > b
		}
		return a < b
	})
	return out
}

// ValidStep reports whether curr maintains the challenge's monotonic
// relation relative to prev: >= for ascending, <= for descending. Equal
// metrics are always a valid step.
func ValidStep(prev, curr *Item, challenge Challenge) bool {
	a, okA := prev.Metric(challenge.Metric)
	b, okB := curr.Metric(challenge.Metric)
	if !okA || !okB {
		return false
	}
	if challenge.Direction == Descending {
		return b <= a
	}
	return b >= a
}

// FirstBreak returns the index of the first adjacent pair in the candidate
// order that violates the challenge direction, or -1 if the whole order is
// valid. Index i means the step from item i-1 to item i broke the sequence.
func FirstBreak(order []*Item, challenge Challenge) int {
	for i := 1; i < len(order); i++ {
		if !ValidStep(order[i-1], order[i], challenge) {
			return i
		}
	}
	return -1
}
