package iprange

import (
	"errors"
	"net/netip"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/tj/assert"
	"go4.org/netipx"
	"k8s.io/apimachinery/pkg/labels"
)

var sortStrings = cmpopts.SortSlices(func(a, b string) bool { return a < b })

func newTestTree(t *testing.T, ranges map[string]labels.Set) IPRangeTree {
	entries := Entries{}
	for s, l := range ranges {
		ipRange, err := netipx.ParseIPRange(s)
		assert.NoError(t, err)
		entries = append(entries, NewEntry(ipRange, l))
	}
	r, err := New(entries)
	assert.NoError(t, err)
	return r
}

var testRanges = map[string]labels.Set{
	"10.0.0.0-10.0.0.255":     {"pool": "a"},
	"10.0.0.128-10.0.1.10":    {"pool": "b"},
	"10.0.2.0-10.0.2.0":       {"pool": "a", "kind": "host"},
	"192.168.0.1-192.168.0.9": {"pool": "c"},
}

func TestOverlapping(t *testing.T) {
	cases := map[string]struct {
		query    string
		expected []string
	}{
		"Normal": {
			query:    "10.0.0.200-10.0.0.210",
			expected: []string{"10.0.0.0-10.0.0.255", "10.0.0.128-10.0.1.10"},
		},
		"Edge": {
			query:    "10.0.1.10-10.0.2.0",
			expected: []string{"10.0.0.128-10.0.1.10", "10.0.2.0-10.0.2.0"},
		},
		"None": {
			query:    "10.0.1.11-10.0.1.255",
			expected: []string{},
		},
		"All": {
			query:    "0.0.0.0-255.255.255.255",
			expected: []string{"10.0.0.0-10.0.0.255", "10.0.0.128-10.0.1.10", "10.0.2.0-10.0.2.0", "192.168.0.1-192.168.0.9"},
		},
	}
	r := newTestTree(t, testRanges)
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			q, err := netipx.ParseIPRange(tc.query)
			assert.NoError(t, err)
			got, err := r.Overlapping(q)
			assert.NoError(t, err)
			if diff := cmp.Diff(tc.expected, got.Strings(), sortStrings); diff != "" {
				t.Errorf("%s: -want, +got:\n%s", name, diff)
			}
		})
	}
}

func TestContaining(t *testing.T) {
	r := newTestTree(t, testRanges)

	got, err := r.Containing(netip.MustParseAddr("10.0.0.130"))
	assert.NoError(t, err)
	if diff := cmp.Diff([]string{"10.0.0.0-10.0.0.255", "10.0.0.128-10.0.1.10"}, got.Strings(), sortStrings); diff != "" {
		t.Errorf("-want, +got:\n%s", diff)
	}

	got, err = r.Containing(netip.MustParseAddr("192.168.0.10"))
	assert.NoError(t, err)
	assert.Equal(t, 0, len(got))

	_, err = r.Containing(netip.MustParseAddr("2001:db8::1"))
	assert.True(t, errors.Is(err, ErrUnsupportedFamily))
}

func TestOverlappingPrefix(t *testing.T) {
	r := newTestTree(t, testRanges)

	got, err := r.OverlappingPrefix(netip.MustParsePrefix("10.0.2.0/24"))
	assert.NoError(t, err)
	if diff := cmp.Diff([]string{"10.0.2.0-10.0.2.0"}, got.Strings()); diff != "" {
		t.Errorf("-want, +got:\n%s", diff)
	}

	_, err = r.OverlappingPrefix(netip.Prefix{})
	assert.True(t, errors.Is(err, ErrInvalidRange))
}

func TestGetByLabel(t *testing.T) {
	r := newTestTree(t, testRanges)

	selector, err := labels.Parse("pool=a")
	assert.NoError(t, err)
	q, err := ParseRange("10.0.0.0/16")
	assert.NoError(t, err)
	got, err := r.GetByLabel(q, selector)
	assert.NoError(t, err)
	if diff := cmp.Diff([]string{"10.0.0.0-10.0.0.255", "10.0.2.0-10.0.2.0"}, got.Strings(), sortStrings); diff != "" {
		t.Errorf("-want, +got:\n%s", diff)
	}
	for _, e := range got {
		assert.Equal(t, "a", e.Labels()["pool"])
	}
}

func TestNew(t *testing.T) {
	cases := map[string]struct {
		entries     Entries
		expectedErr error
		expectedOK  bool
	}{
		"Empty": {
			entries:    Entries{},
			expectedOK: true,
		},
		"IPv6": {
			entries: Entries{
				NewEntry(netipx.IPRangeFrom(netip.MustParseAddr("2001:db8::1"), netip.MustParseAddr("2001:db8::9")), nil),
			},
			expectedErr: ErrUnsupportedFamily,
		},
		"Reversed": {
			entries: Entries{
				NewEntry(netipx.IPRangeFrom(netip.MustParseAddr("10.0.0.9"), netip.MustParseAddr("10.0.0.1")), nil),
			},
			expectedErr: ErrInvalidRange,
		},
		"Nil": {
			entries: Entries{nil},
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			r, err := New(tc.entries)
			if tc.expectedOK {
				assert.NoError(t, err)
				assert.Equal(t, 0, r.Count())
				return
			}
			assert.Error(t, err)
			if tc.expectedErr != nil {
				assert.True(t, errors.Is(err, tc.expectedErr))
			}
		})
	}
}

func TestParseRange(t *testing.T) {
	cases := map[string]struct {
		s           string
		expected    string
		expectedErr bool
	}{
		"Range":    {s: "10.0.0.1-10.0.0.9", expected: "10.0.0.1-10.0.0.9"},
		"Prefix":   {s: "10.0.0.0/30", expected: "10.0.0.0-10.0.0.3"},
		"Addr":     {s: " 10.0.0.5 ", expected: "10.0.0.5-10.0.0.5"},
		"BadRange": {s: "10.0.0.9-10.0.0.1", expectedErr: true},
		"BadAddr":  {s: "10.0.0", expectedErr: true},
		"BadPfx":   {s: "10.0.0.0/33", expectedErr: true},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			r, err := ParseRange(tc.s)
			if tc.expectedErr {
				assert.True(t, errors.Is(err, ErrInvalidRange))
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.expected, r.String())
		})
	}
}

func TestEntry(t *testing.T) {
	q, err := ParseRange("10.0.0.1-10.0.0.2")
	assert.NoError(t, err)
	e := NewEntry(q, labels.Set{"pool": "a"})
	assert.Equal(t, float64(167772161), e.Interval().Left)
	assert.Equal(t, float64(167772162), e.Interval().Right)
	assert.True(t, e.Equal(NewEntry(q, labels.Set{"pool": "a"})))
	assert.False(t, e.Equal(NewEntry(q, nil)))
	assert.Equal(t, "range: 10.0.0.1-10.0.0.2, labels: pool=a", e.String())
}

func TestParseEntry(t *testing.T) {
	cases := map[string]struct {
		s              string
		expected       string
		expectedPrefix string
		expectedErr    bool
	}{
		"Prefix":   {s: "10.0.0.0/30", expected: "10.0.0.0-10.0.0.3", expectedPrefix: "10.0.0.0/30"},
		"Unmasked": {s: "10.0.0.7/30", expected: "10.0.0.4-10.0.0.7", expectedPrefix: "10.0.0.4/30"},
		"Range":    {s: "10.0.0.1-10.0.0.9", expected: "10.0.0.1-10.0.0.9"},
		"Addr":     {s: "10.0.0.5", expected: "10.0.0.5-10.0.0.5"},
		"BadPfx":   {s: "10.0.0.0/33", expectedErr: true},
		"BadRange": {s: "10.0.0.9-10.0.0.1", expectedErr: true},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			e, err := ParseEntry(tc.s, labels.Set{"pool": "a"})
			if tc.expectedErr {
				assert.True(t, errors.Is(err, ErrInvalidRange))
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.expected, e.Range().String())
			assert.Equal(t, "a", e.Labels()["pool"])

			re, ok := e.(RouteEntry)
			assert.Equal(t, tc.expectedPrefix != "", ok)
			if ok {
				assert.Equal(t, tc.expectedPrefix, re.Route().Prefix().String())
			}
		})
	}
}

func TestRouteEntries(t *testing.T) {
	entries := Entries{}
	for s, l := range map[string]labels.Set{
		"10.0.0.0/24": {"pool": "a"},
		"10.0.1.0/24": {"pool": "b"},
	} {
		e, err := ParseEntry(s, l)
		assert.NoError(t, err)
		entries = append(entries, e)
	}
	entries = append(entries, NewEntry(netipx.MustParseIPRange("10.0.0.200-10.0.1.20"), labels.Set{"pool": "c"}))

	r, err := New(entries)
	assert.NoError(t, err)

	got, err := r.Containing(netip.MustParseAddr("10.0.1.5"))
	assert.NoError(t, err)
	if diff := cmp.Diff([]string{"10.0.0.200-10.0.1.20", "10.0.1.0-10.0.1.255"}, got.Strings(), sortStrings); diff != "" {
		t.Errorf("-want, +got:\n%s", diff)
	}

	got, err = r.GetByLabel(netipx.MustParseIPRange("10.0.0.0-10.0.255.255"), labels.SelectorFromSet(labels.Set{"pool": "a"}))
	assert.NoError(t, err)
	assert.Len(t, got, 1)
	re, ok := got[0].(RouteEntry)
	assert.True(t, ok)
	assert.Equal(t, "10.0.0.0/24", re.Route().Prefix().String())
	assert.Equal(t, "prefix: 10.0.0.0/24, labels: pool=a", re.String())
}
