package tree

import "github.com/henderiw/intervaltree/pkg/interval"

// SortedEndpoints returns the distinct endpoints of a set of intervals in
// strictly increasing order. leftSorted and rightSorted hold the same intervals,
// sorted ascending by left and by right endpoint respectively.
func SortedEndpoints(leftSorted, rightSorted interval.Intervals) []float64 {
	lefts := make([]float64, 0, len(leftSorted))
	for _, i := range leftSorted {
		lefts = appendDistinct(lefts, i.Left)
	}
	rights := make([]float64, 0, len(rightSorted))
	for _, i := range rightSorted {
		rights = appendDistinct(rights, i.Right)
	}

	points := make([]float64, 0, len(lefts)+len(rights))
	l, r := 0, 0
	for l < len(lefts) && r < len(rights) {
		switch {
		case lefts[l] < rights[r]:
			points = append(points, lefts[l])
			l++
		case rights[r] < lefts[l]:
			points = append(points, rights[r])
			r++
		default:
			// used as a left and as a right endpoint - record once
			points = append(points, lefts[l])
			l++
			r++
		}
	}
	points = append(points, lefts[l:]...)
	points = append(points, rights[r:]...)
	return points
}

// appendDistinct appends p unless it equals the last element; the input is
// sorted so this collapses runs of equal values.
func appendDistinct(points []float64, p float64) []float64 {
	if len(points) > 0 && points[len(points)-1] == p {
		return points
	}
	return append(points, p)
}
