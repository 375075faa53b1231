package tree

import (
	"fmt"

	"github.com/henderiw/intervaltree/pkg/interval"
	"k8s.io/apimachinery/pkg/labels"
)

type Entry interface {
	Interval() interval.Interval
	Labels() labels.Set
	String() string
	Equal(e2 Entry) bool
}

type entry struct {
	i      interval.Interval
	labels labels.Set
}
type Entries []Entry

func (r entry) Interval() interval.Interval { return r.i }
func (r entry) Labels() labels.Set          { return r.labels }
func (r entry) String() string {
	return fmt.Sprintf("interval: %s, labels: %s", r.i.String(), r.labels.String())
}
func (r entry) Equal(e2 Entry) bool {
	if e2 == nil {
		return false
	}
	return r.i.Equal(e2.Interval()) && r.labels.String() == e2.Labels().String()
}

func NewEntry(i interval.Interval, labels labels.Set) Entry {
	return entry{
		i:      i,
		labels: labels,
	}
}

// Intervals returns the intervals of the entries, in entry order.
func (r Entries) Intervals() interval.Intervals {
	intervals := make(interval.Intervals, 0, len(r))
	for _, e := range r {
		intervals = append(intervals, e.Interval())
	}
	return intervals
}

func entriesFromIntervals(intervals interval.Intervals) Entries {
	entries := make(Entries, 0, len(intervals))
	for _, i := range intervals {
		entries = append(entries, NewEntry(i, nil))
	}
	return entries
}
