package domain

import "sort"

// SeatSet is a set of seat numbers scoped to one showing.
type SeatSet map[int]struct{}

func NewSeatSet(seats ...int) SeatSet {
	s := make(SeatSet, len(seats))
	for _, n := range seats {
		s[n] = struct{}{}
	}
	return s
}

func (s SeatSet) Contains(seat int) bool {
	_, ok := s[seat]
	return ok
}

func (s SeatSet) Add(seat int) { s[seat] = struct{}{} }

func (s SeatSet) Remove(seat int) { delete(s, seat) }

func (s SeatSet) Len() int { return len(s) }

// Intersect returns the seats present in both s and other.
func (s SeatSet) Intersect(other SeatSet) SeatSet {
	small, large := s, other
	if len(large) < len(small) {
		small, large = large, small
	}
	out := make(SeatSet)
	for n := range small {
		if large.Contains(n) {
			out.Add(n)
		}
	}
	return out
}

func (s SeatSet) Clone() SeatSet {
	out := make(SeatSet, len(s))
	for n := range s {
		out[n] = struct{}{}
	}
	return out
}

// Sorted returns the seat numbers in ascending order.
func (s SeatSet) Sorted() []int {
	out := make([]int, 0, len(s))
	for n := range s {
		out = append(out, n)
	}
	sort.Ints(out)
	return out
}
