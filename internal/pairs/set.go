package pairs

import "slices"

// Set is an immutable, deduplicated collection of pairs ordered by key.
type Set struct {
	pairs []Pair
	index map[Key]int
}

// NewSet deduplicates pairs by key. Duplicates are merged: ranges widen,
// categories union, and record counts add up.
func NewSet(values []Pair) *Set {
	index := make(map[Key]int, len(values))
	merged := make([]Pair, 0, len(values))
	for _, p := range values {
		key := p.Key()
		if pos, ok := index[key]; ok {
			merged[pos] = merge(merged[pos], p)
			continue
		}
		index[key] = len(merged)
		merged = append(merged, p)
	}
	slices.SortFunc(merged, func(a, b Pair) int { return a.Key().Compare(b.Key()) })
	for i, p := range merged {
		index[p.Key()] = i
	}
	return &Set{pairs: merged, index: index}
}

// Len returns the number of distinct pairs.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.pairs)
}

// Pairs returns a copy of the pairs in key order.
func (s *Set) Pairs() []Pair {
	if s == nil {
		return nil
	}
	return slices.Clone(s.pairs)
}

// Get returns the pair stored under key.
func (s *Set) Get(key Key) (Pair, bool) {
	if s == nil {
		return Pair{}, false
	}
	pos, ok := s.index[key]
	if !ok {
		return Pair{}, false
	}
	return s.pairs[pos], true
}

// Contains reports whether key is present.
func (s *Set) Contains(key Key) bool {
	_, ok := s.Get(key)
	return ok
}

// ReferenceSet is the trusted set indexed by make.
type ReferenceSet struct {
	*Set
	byMake map[string][]int
	makes  []string
}

// NewReferenceSet builds the reference index.
func NewReferenceSet(values []Pair) *ReferenceSet {
	set := NewSet(values)
	byMake := make(map[string][]int)
	makes := make([]string, 0)
	for i, p := range set.pairs {
		if _, ok := byMake[p.Make]; !ok {
			makes = append(makes, p.Make)
		}
		byMake[p.Make] = append(byMake[p.Make], i)
	}
	return &ReferenceSet{Set: set, byMake: byMake, makes: makes}
}

// Makes returns the distinct reference makes in order.
func (r *ReferenceSet) Makes() []string {
	if r == nil {
		return nil
	}
	return slices.Clone(r.makes)
}

// ByMake returns the reference pairs for a canonical make.
func (r *ReferenceSet) ByMake(makeName string) []Pair {
	if r == nil {
		return nil
	}
	positions := r.byMake[canonical(makeName)]
	out := make([]Pair, 0, len(positions))
	for _, pos := range positions {
		out = append(out, r.pairs[pos])
	}
	return out
}

// Subtract returns the evaluation pairs whose key is absent from ref.
func Subtract(evaluation *Set, ref *ReferenceSet) *Set {
	if evaluation == nil {
		return NewSet(nil)
	}
	out := make([]Pair, 0, evaluation.Len())
	for _, p := range evaluation.pairs {
		if ref != nil && ref.Contains(p.Key()) {
			continue
		}
		out = append(out, p)
	}
	return NewSet(out)
}
