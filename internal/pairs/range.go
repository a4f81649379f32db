package pairs

import "fmt"

// YearRange is an inclusive span of years. The zero value means unknown.
type YearRange struct {
	Start int `json:"start,omitempty"`
	End   int `json:"end,omitempty"`
}

// NewYearRange builds a range, swapping the bounds when given out of order.
func NewYearRange(start, end int) YearRange {
	if start > end && end != 0 {
		start, end = end, start
	}
	if end == 0 {
		end = start
	}
	if start == 0 {
		start = end
	}
	return YearRange{Start: start, End: end}
}

// Known reports whether the range carries data.
func (r YearRange) Known() bool {
	return r.Start > 0 && r.End >= r.Start
}

// Overlaps reports whether two known ranges share at least one year.
func (r YearRange) Overlaps(other YearRange) bool {
	if !r.Known() || !other.Known() {
		return false
	}
	return r.Start <= other.End && other.Start <= r.End
}

// Gap returns the distance in years from the end of the earlier range to the
// start of the later one, or 0 when they overlap. It is symmetric.
func (r YearRange) Gap(other YearRange) int {
	if !r.Known() || !other.Known() || r.Overlaps(other) {
		return 0
	}
	if r.End < other.Start {
		return other.Start - r.End
	}
	return r.Start - other.End
}

// Union returns the smallest range covering both. Unknown ranges are ignored.
func (r YearRange) Union(other YearRange) YearRange {
	switch {
	case !r.Known():
		return other
	case !other.Known():
		return r
	}
	out := r
	if other.Start < out.Start {
		out.Start = other.Start
	}
	if other.End > out.End {
		out.End = other.End
	}
	return out
}

func (r YearRange) String() string {
	switch {
	case !r.Known():
		return "unknown"
	case r.Start == r.End:
		return fmt.Sprintf("%d", r.Start)
	default:
		return fmt.Sprintf("%d-%d", r.Start, r.End)
	}
}
