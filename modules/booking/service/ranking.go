package service

import "sort"

// Rank orders candidates by fewest mirrored bookings, then highest spend.
// With usePriority the account priority score breaks booking-count ties
// before spend does. The sort is stable so equal candidates keep store order.
func Rank(candidates []Candidate, usePriority bool) []Candidate {
	ranked := make([]Candidate, len(candidates))
	copy(ranked, candidates)

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := &ranked[i], &ranked[j]
		if a.BookedSlots != b.BookedSlots {
			return a.BookedSlots < b.BookedSlots
		}
		if usePriority {
			if pa, pb := a.Priority(), b.Priority(); pa != pb {
				return pa > pb
			}
		}
		return a.Spend() > b.Spend()
	})
	return ranked
}
