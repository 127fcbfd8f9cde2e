// Package rangemap implements a sorted map from disjoint closed Position
// intervals to values of any type. It is the data structure the
// recombination map, its flipped form, and the mutation applier's
// baseline are all built from.
package rangemap

import (
	"sort"

	"github.com/maize-genetics/recomb-gvcf/internal/corerr"
	"github.com/maize-genetics/recomb-gvcf/internal/genome"
)

// Entry pairs a stored interval with its value.
type Entry[V any] struct {
	Interval genome.Interval
	Value    V
}

// Map is a sorted collection of disjoint closed intervals, each mapped to
// a value of type V. Get and GetEntry are O(log n) and SubRangeMap is
// O(log n + k) for k returned entries; Put (which shifts the backing
// slice), Remove (a linear scan) and AsMapOfRanges (a full copy) are
// O(n). Map is not safe for concurrent use without external
// synchronization.
type Map[V any] struct {
	entries []Entry[V]
}

// New returns an empty Map.
func New[V any]() *Map[V] {
	return &Map[V]{}
}

// Len returns the number of stored intervals.
func (m *Map[V]) Len() int { return len(m.entries) }

// searchLo returns the index of the first entry whose Lo does not sort
// before p, i.e. the insertion point for a point query at p.
func (m *Map[V]) searchLo(p genome.Position) int {
	return sort.Search(len(m.entries), func(i int) bool {
		return !m.entries[i].Interval.Lo.Less(p)
	})
}

// Get returns the value of the unique interval containing p, if any.
func (m *Map[V]) Get(p genome.Position) (V, bool) {
	iv, v, ok := m.GetEntry(p)
	_ = iv
	return v, ok
}

// GetEntry returns the (interval, value) pair for the interval containing
// p, if any.
func (m *Map[V]) GetEntry(p genome.Position) (genome.Interval, V, bool) {
	i := m.searchLo(p)
	// The entry containing p, if any, either starts exactly at p (index i)
	// or starts before p (index i-1), since entries are sorted by Lo and
	// disjoint.
	if i < len(m.entries) && m.entries[i].Interval.Lo.Equal(p) {
		return m.entries[i].Interval, m.entries[i].Value, true
	}
	if i > 0 {
		e := m.entries[i-1]
		if e.Interval.Contains(p) {
			return e.Interval, e.Value, true
		}
	}
	var zero V
	return genome.Interval{}, zero, false
}

// Put inserts interval -> value. interval must not overlap any stored
// interval; callers are responsible for removing conflicting intervals
// first. Violating this precondition is an invariant violation, not a
// recoverable error, since it indicates two donors (or two added
// mutations) claim the same reference position.
func (m *Map[V]) Put(interval genome.Interval, value V) error {
	i := m.searchInsertionPoint(interval.Lo)
	if i > 0 && m.entries[i-1].Interval.Overlaps(interval) {
		return corerr.Invariant("rangemap.Put", overlapError(m.entries[i-1].Interval, interval))
	}
	if i < len(m.entries) && m.entries[i].Interval.Overlaps(interval) {
		return corerr.Invariant("rangemap.Put", overlapError(m.entries[i].Interval, interval))
	}

	m.entries = append(m.entries, Entry[V]{})
	copy(m.entries[i+1:], m.entries[i:])
	m.entries[i] = Entry[V]{Interval: interval, Value: value}
	return nil
}

func (m *Map[V]) searchInsertionPoint(lo genome.Position) int {
	return sort.Search(len(m.entries), func(i int) bool {
		return lo.Less(m.entries[i].Interval.Lo)
	})
}

// Remove deletes the stored entry whose key equals interval exactly. A
// non-matching interval is a no-op.
func (m *Map[V]) Remove(interval genome.Interval) {
	for i, e := range m.entries {
		if e.Interval.Equal(interval) {
			m.entries = append(m.entries[:i], m.entries[i+1:]...)
			return
		}
	}
}

// SubRangeMap returns the entries whose intervals overlap r, each
// intersected with r, in interval-ascending order. Returned intervals may
// be narrower than the stored interval at the endpoints of r.
func (m *Map[V]) SubRangeMap(r genome.Interval) []Entry[V] {
	// The first candidate interval may start before r.Lo (if it extends
	// into r), so start one position left of the search result.
	start := m.searchLo(r.Lo)
	if start > 0 {
		start--
	}

	var out []Entry[V]
	for i := start; i < len(m.entries); i++ {
		e := m.entries[i]
		if e.Interval.Lo.Contig == r.Lo.Contig && r.Hi.Less(e.Interval.Lo) {
			break
		}
		if iv, ok := e.Interval.Intersect(r); ok {
			out = append(out, Entry[V]{Interval: iv, Value: e.Value})
		}
	}
	return out
}

// AsMapOfRanges returns every stored entry in interval-ascending order.
// The returned slice is a copy; changing it does not change the Map.
func (m *Map[V]) AsMapOfRanges() []Entry[V] {
	out := make([]Entry[V], len(m.entries))
	copy(out, m.entries)
	return out
}

func overlapError(existing, incoming genome.Interval) error {
	return &overlapErr{existing: existing, incoming: incoming}
}

type overlapErr struct {
	existing, incoming genome.Interval
}

func (e *overlapErr) Error() string {
	return "interval " + e.incoming.String() + " overlaps existing interval " + e.existing.String()
}
