package iprange

import (
	"encoding/binary"
	"errors"
	"fmt"
	"net/netip"
	"strings"

	"github.com/hansthienpondt/nipam/pkg/table"
	"github.com/henderiw/intervaltree/pkg/interval"
	"github.com/henderiw/intervaltree/pkg/tree"
	"go4.org/netipx"
	"k8s.io/apimachinery/pkg/labels"
)

var (
	ErrInvalidRange      = errors.New("invalid ip range")
	ErrUnsupportedFamily = errors.New("only ipv4 ranges are supported")
)

// IPRangeTree answers which stored IPv4 ranges overlap a range, prefix or address.
type IPRangeTree interface {
	Overlapping(r netipx.IPRange) (Entries, error)
	OverlappingPrefix(p netip.Prefix) (Entries, error)
	Containing(addr netip.Addr) (Entries, error)
	GetByLabel(r netipx.IPRange, selector labels.Selector) (Entries, error)

	Count() int
	GetAll() Entries
}

type Entry interface {
	tree.Entry
	Range() netipx.IPRange
}

type Entries []Entry

type entry struct {
	ipRange netipx.IPRange
	labels  labels.Set
}

func NewEntry(r netipx.IPRange, labels labels.Set) Entry {
	return entry{ipRange: r, labels: labels}
}

// RouteEntry is an entry indexed from a route; its range is the route prefix.
type RouteEntry interface {
	Entry
	Route() table.Route
}

type routeEntry struct {
	entry
	route table.Route
}

func NewRouteEntry(route table.Route) RouteEntry {
	return routeEntry{
		entry: entry{ipRange: netipx.RangeOfPrefix(route.Prefix()), labels: route.Labels()},
		route: route,
	}
}

func (r routeEntry) Route() table.Route { return r.route }
func (r routeEntry) String() string {
	return fmt.Sprintf("prefix: %s, labels: %s", r.route.Prefix().String(), r.labels.String())
}

func (r entry) Range() netipx.IPRange { return r.ipRange }
func (r entry) Labels() labels.Set    { return r.labels }
func (r entry) String() string {
	return fmt.Sprintf("range: %s, labels: %s", r.ipRange.String(), r.labels.String())
}
func (r entry) Equal(e2 tree.Entry) bool {
	other, ok := e2.(Entry)
	if !ok {
		return false
	}
	return r.ipRange == other.Range() && r.labels.String() == other.Labels().String()
}

// Interval maps the range onto the numeric line; an invalid range maps to an
// invalid interval so the tree rejects it.
func (r entry) Interval() interval.Interval {
	if validate(r.ipRange) != nil {
		return interval.Interval{Left: 1, Right: 0}
	}
	return toInterval(r.ipRange)
}

func (rr Entries) Ranges() []netipx.IPRange {
	ranges := make([]netipx.IPRange, 0, len(rr))
	for _, e := range rr {
		ranges = append(ranges, e.Range())
	}
	return ranges
}

func (rr Entries) Strings() []string {
	out := make([]string, 0, len(rr))
	for _, e := range rr {
		out = append(out, e.Range().String())
	}
	return out
}

// New builds the index. All invalid or non IPv4 ranges are reported together.
func New(entries Entries, opts ...tree.Option) (IPRangeTree, error) {
	var errm error
	treeEntries := make(tree.Entries, 0, len(entries))
	for idx, e := range entries {
		if e == nil {
			errm = errors.Join(errm, fmt.Errorf("nil entry at index %d", idx))
			continue
		}
		if err := validate(e.Range()); err != nil {
			errm = errors.Join(errm, err)
			continue
		}
		treeEntries = append(treeEntries, e)
	}
	if errm != nil {
		return nil, errm
	}
	t, err := tree.New(treeEntries, opts...)
	if err != nil {
		return nil, err
	}
	return &ipRangeTree{tree: t}, nil
}

type ipRangeTree struct {
	tree *tree.Tree
}

func (r *ipRangeTree) Overlapping(ipRange netipx.IPRange) (Entries, error) {
	if err := validate(ipRange); err != nil {
		return nil, err
	}
	entries, err := r.tree.FindIntersectingEntries(toInterval(ipRange))
	if err != nil {
		return nil, err
	}
	return fromTreeEntries(entries), nil
}

func (r *ipRangeTree) OverlappingPrefix(p netip.Prefix) (Entries, error) {
	if !p.IsValid() {
		return nil, fmt.Errorf("%w: prefix %s", ErrInvalidRange, p.String())
	}
	return r.Overlapping(netipx.RangeOfPrefix(p))
}

func (r *ipRangeTree) Containing(addr netip.Addr) (Entries, error) {
	return r.Overlapping(netipx.IPRangeFrom(addr, addr))
}

func (r *ipRangeTree) GetByLabel(ipRange netipx.IPRange, selector labels.Selector) (Entries, error) {
	if err := validate(ipRange); err != nil {
		return nil, err
	}
	entries, err := r.tree.GetByLabel(toInterval(ipRange), selector)
	if err != nil {
		return nil, err
	}
	return fromTreeEntries(entries), nil
}

func (r *ipRangeTree) Count() int {
	return r.tree.Size()
}

func (r *ipRangeTree) GetAll() Entries {
	return fromTreeEntries(r.tree.GetAll())
}

// ParseEntry parses the range forms accepted by ParseRange. A prefix becomes a
// route entry so the prefix is kept next to its address range.
func ParseEntry(s string, l labels.Set) (Entry, error) {
	s = strings.TrimSpace(s)
	if strings.Contains(s, "/") {
		p, err := netip.ParsePrefix(s)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidRange, err.Error())
		}
		return NewRouteEntry(table.NewRoute(p.Masked(), l, nil)), nil
	}
	r, err := ParseRange(s)
	if err != nil {
		return nil, err
	}
	return NewEntry(r, l), nil
}

// ParseRange parses "10.0.0.1-10.0.0.9", "10.0.0.0/24" or a single address.
func ParseRange(s string) (netipx.IPRange, error) {
	s = strings.TrimSpace(s)
	switch {
	case strings.Contains(s, "-"):
		r, err := netipx.ParseIPRange(s)
		if err != nil {
			return netipx.IPRange{}, fmt.Errorf("%w: %s", ErrInvalidRange, err.Error())
		}
		return r, nil
	case strings.Contains(s, "/"):
		p, err := netip.ParsePrefix(s)
		if err != nil {
			return netipx.IPRange{}, fmt.Errorf("%w: %s", ErrInvalidRange, err.Error())
		}
		return netipx.RangeOfPrefix(p), nil
	default:
		a, err := netip.ParseAddr(s)
		if err != nil {
			return netipx.IPRange{}, fmt.Errorf("%w: %s", ErrInvalidRange, err.Error())
		}
		return netipx.IPRangeFrom(a, a), nil
	}
}

func validate(r netipx.IPRange) error {
	if !r.IsValid() {
		return fmt.Errorf("%w: %s", ErrInvalidRange, r.String())
	}
	if !r.From().Is4() {
		return fmt.Errorf("%w: %s", ErrUnsupportedFamily, r.String())
	}
	return nil
}

func toInterval(r netipx.IPRange) interval.Interval {
	return interval.Interval{Left: addrValue(r.From()), Right: addrValue(r.To())}
}

// addrValue returns the address as a number; every uint32 is exact in a float64.
func addrValue(a netip.Addr) float64 {
	b := a.As4()
	return float64(binary.BigEndian.Uint32(b[:]))
}

func fromTreeEntries(entries tree.Entries) Entries {
	out := make(Entries, 0, len(entries))
	for _, e := range entries {
		// the tree only ever holds the entries handed to New
		out = append(out, e.(Entry))
	}
	return out
}
