package interval

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

var ErrInvalidInterval = errors.New("invalid interval")

// Interval is the closed range [Left, Right] on the real line.
type Interval struct {
	Left  float64
	Right float64
}

type Intervals []Interval

// New returns the interval [left, right], rejecting left > right and NaN or
// infinite bounds.
func New(left, right float64) (Interval, error) {
	i := Interval{Left: left, Right: right}
	if !i.IsValid() {
		return Interval{}, fmt.Errorf("%w: %s", ErrInvalidInterval, i.String())
	}
	return i, nil
}

// Point returns the degenerate interval [p, p].
func Point(p float64) Interval {
	return Interval{Left: p, Right: p}
}

// Parse parses "<left>-<right>" or a single number. Either bound may carry a
// leading sign, e.g. "-3--1".
func Parse(s string) (Interval, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Interval{}, fmt.Errorf("%w: empty string", ErrInvalidInterval)
	}
	// skip a leading sign so "-3-5" splits after the 3
	h := strings.IndexByte(s[1:], '-')
	if h == -1 {
		p, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return Interval{}, fmt.Errorf("%w: invalid point %q", ErrInvalidInterval, s)
		}
		return New(p, p)
	}
	h++
	from, to := strings.TrimSpace(s[:h]), strings.TrimSpace(s[h+1:])
	left, err := strconv.ParseFloat(from, 64)
	if err != nil {
		return Interval{}, fmt.Errorf("%w: invalid left endpoint %q in %q", ErrInvalidInterval, from, s)
	}
	right, err := strconv.ParseFloat(to, 64)
	if err != nil {
		return Interval{}, fmt.Errorf("%w: invalid right endpoint %q in %q", ErrInvalidInterval, to, s)
	}
	return New(left, right)
}

func MustParse(s string) Interval {
	i, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return i
}

func (r Interval) String() string {
	return fmt.Sprintf("%s-%s", formatFloat(r.Left), formatFloat(r.Right))
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// IsValid reports whether both bounds are finite and Left <= Right.
func (r Interval) IsValid() bool {
	return isFinite(r.Left) && isFinite(r.Right) && r.Left <= r.Right
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Contains returns whether point lies in the closed range.
func (r Interval) Contains(point float64) bool {
	return r.Left <= point && point <= r.Right
}

// Intersects returns whether the two closed ranges share at least one point.
// Ranges touching at an endpoint intersect.
func (r Interval) Intersects(other Interval) bool {
	return r.Left <= other.Right && other.Left <= r.Right
}

func (r Interval) Equal(other Interval) bool {
	return r.Left == other.Left && r.Right == other.Right
}

// Less orders by left endpoint, then by right endpoint.
func (r Interval) Less(other Interval) bool {
	if r.Left != other.Left {
		return r.Left < other.Left
	}
	return r.Right < other.Right
}

// SortByLeft returns a copy sorted ascending by left endpoint. Equal left
// endpoints keep their input order.
func (rr Intervals) SortByLeft() Intervals {
	out := rr.clone()
	sort.SliceStable(out, func(i, j int) bool { return out[i].Left < out[j].Left })
	return out
}

// SortByRight returns a copy sorted ascending by right endpoint. Equal right
// endpoints keep their input order.
func (rr Intervals) SortByRight() Intervals {
	out := rr.clone()
	sort.SliceStable(out, func(i, j int) bool { return out[i].Right < out[j].Right })
	return out
}

func (rr Intervals) clone() Intervals {
	out := make(Intervals, len(rr))
	copy(out, rr)
	return out
}

// Validate returns all invalid intervals joined in a single error.
func (rr Intervals) Validate() error {
	var errm error
	for idx, r := range rr {
		if !r.IsValid() {
			errm = errors.Join(errm, fmt.Errorf("%w: %s at index %d", ErrInvalidInterval, r.String(), idx))
		}
	}
	return errm
}

func (rr Intervals) Strings() []string {
	out := make([]string, 0, len(rr))
	for _, r := range rr {
		out = append(out, r.String())
	}
	return out
}
