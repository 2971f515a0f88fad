package codec

import "sort"

// StringSet is an unordered set of strings. On the wire it becomes a tagged,
// sorted array, so two sets with the same members always encode identically.
type StringSet map[string]struct{}

// NewStringSet builds a set from its members.
func NewStringSet(members ...string) StringSet {
	s := make(StringSet, len(members))
	for _, m := range members {
		s[m] = struct{}{}
	}
	return s
}

// Contains reports membership.
func (s StringSet) Contains(member string) bool {
	_, ok := s[member]
	return ok
}

// Add inserts a member.
func (s StringSet) Add(member string) {
	s[member] = struct{}{}
}

// Sorted returns the members in lexicographic order.
func (s StringSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for m := range s {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}

// Len returns the member count.
func (s StringSet) Len() int { return len(s) }
