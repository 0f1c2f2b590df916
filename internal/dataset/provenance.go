package dataset

import "strconv"

// ProvenanceYear extracts the publication year from a key number such as
// "2005AB12" or "1998Sm05".
func ProvenanceYear(provenance string) (int, bool) {
	if len(provenance) < 4 {
		return 0, false
	}
	year, err := strconv.Atoi(provenance[:4])
	if err != nil || year < 1000 {
		return 0, false
	}
	return year, true
}

// MoreRecent reports whether provenance a is more recent than b. Key
// numbers with a year beat those without one; equal years compare lexically.
func MoreRecent(a, b string) bool {
	ya, okA := ProvenanceYear(a)
	yb, okB := ProvenanceYear(b)
	switch {
	case okA && !okB:
		return true
	case !okA && okB:
		return false
	case okA && okB && ya != yb:
		return ya > yb
	default:
		return a > b
	}
}
