package bedmap

import (
	"github.com/maize-genetics/recomb-gvcf/internal/corerr"
	"github.com/maize-genetics/recomb-gvcf/internal/rangemap"
)

// FlippedMap maps target name to that target's disjoint range map of
// donor names.
type FlippedMap map[string]*rangemap.Map[string]

// Flip inverts a RecombinationMap into its FlippedMap form, grouping
// intervals by target instead of by donor. Flip is an involution under
// the precondition that every donor's own map is disjoint (Invariant 1);
// it allocates a fresh structure and never mutates recomb. A Put
// collision means two donors both claim the same target over an
// overlapping interval, which is an invariant violation, not something
// Flip can silently resolve.
func Flip(recomb RecombinationMap) (FlippedMap, error) {
	flipped := make(FlippedMap)
	for donor, m := range recomb {
		for _, e := range m.AsMapOfRanges() {
			target := e.Value
			tm, ok := flipped[target]
			if !ok {
				tm = rangemap.New[string]()
				flipped[target] = tm
			}
			if err := tm.Put(e.Interval, donor); err != nil {
				return nil, corerr.Invariant("bedmap.Flip: target claimed by overlapping donors", err)
			}
		}
	}
	return flipped, nil
}

// Unflip inverts a FlippedMap back into RecombinationMap form.
func Unflip(flipped FlippedMap) (RecombinationMap, error) {
	recomb := make(RecombinationMap)
	for target, m := range flipped {
		for _, e := range m.AsMapOfRanges() {
			donor := e.Value
			dm, ok := recomb[donor]
			if !ok {
				dm = rangemap.New[string]()
				recomb[donor] = dm
			}
			if err := dm.Put(e.Interval, target); err != nil {
				return nil, corerr.Invariant("bedmap.Unflip: donor claimed by overlapping targets", err)
			}
		}
	}
	return recomb, nil
}
