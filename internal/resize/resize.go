// Package resize implements the indel-aware recombination-map resizer:
// it scans donor GVCFs for indels that straddle a donor's own target
// boundary, then rewrites that boundary so the indel lands in exactly
// one target.
package resize

import (
	"context"
	"sort"

	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"

	"github.com/maize-genetics/recomb-gvcf/internal/bedmap"
	"github.com/maize-genetics/recomb-gvcf/internal/corerr"
	"github.com/maize-genetics/recomb-gvcf/internal/genome"
	"github.com/maize-genetics/recomb-gvcf/internal/gvcf"
	"github.com/maize-genetics/recomb-gvcf/internal/rangemap"
	"github.com/maize-genetics/recomb-gvcf/internal/variant"
)

// StraddlingIndel is one Phase-A finding: an indel in donor's own GVCF
// whose closed reference interval spans more than one interval of
// donor's recombination map.
type StraddlingIndel struct {
	Donor      string
	LeftTarget string
	Variant    variant.Variant
}

// Options tunes the resizer's optional parallelism. The zero value runs
// Phase A single-threaded, which is what every correctness test in this
// package exercises.
type Options struct {
	// PhaseAWorkers, if > 1, fans Phase A's per-donor GVCF scan out across
	// a worker pool. Donor scanning is pure (no shared writes), so results
	// do not depend on donor scan order.
	PhaseAWorkers int
}

// Resize runs Phase A (collection) and Phases B-D (rewrite) over recomb,
// scanning each donor's GVCF in gvcfDir. Donors present in recomb but
// absent from gvcfDir contribute no straddling indels (not an error).
func Resize(ctx context.Context, recomb bedmap.RecombinationMap, gvcfDir string, opts Options, logger *zap.Logger) (bedmap.RecombinationMap, error) {
	straddling, err := CollectStraddling(ctx, recomb, gvcfDir, opts, logger)
	if err != nil {
		return nil, err
	}
	return ResizeMaps(recomb, straddling, logger)
}

// CollectStraddling is Phase A: it scans each donor's GVCF for indels
// that cross that donor's own target boundary.
func CollectStraddling(ctx context.Context, recomb bedmap.RecombinationMap, gvcfDir string, opts Options, logger *zap.Logger) ([]StraddlingIndel, error) {
	donors := make([]string, 0, len(recomb))
	for d := range recomb {
		donors = append(donors, d)
	}
	sort.Strings(donors)

	index, err := gvcf.IndexDonorFiles(gvcfDir)
	if err != nil {
		return nil, err
	}

	type donorResult struct {
		donor  string
		found  []StraddlingIndel
		err    error
	}

	scanOne := func(donor string) donorResult {
		path, ok := index[donor]
		if !ok {
			return donorResult{donor: donor}
		}
		found, err := scanStraddling(donor, recomb[donor], path)
		return donorResult{donor: donor, found: found, err: err}
	}

	results := make([]donorResult, len(donors))

	if opts.PhaseAWorkers > 1 {
		p := pool.New().WithMaxGoroutines(opts.PhaseAWorkers)
		for i, donor := range donors {
			i, donor := i, donor
			p.Go(func() { results[i] = scanOne(donor) })
		}
		p.Wait()
	} else {
		for i, donor := range donors {
			results[i] = scanOne(donor)
		}
	}

	var all []StraddlingIndel
	for _, r := range results {
		if r.err != nil {
			return nil, r.err
		}
		all = append(all, r.found...)
	}
	return all, nil
}

func scanStraddling(donor string, donorMap *rangemap.Map[string], gvcfPath string) ([]StraddlingIndel, error) {
	r, err := gvcf.NewReader(gvcfPath)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var out []StraddlingIndel
	for {
		rec, err := r.Next()
		if err != nil {
			// IO/malformed failures during reader iteration are scoped to
			// this file only; the caller treats them as fatal for the
			// whole Resize call since a partial Phase-A scan would make
			// the resized map unsound.
			return nil, err
		}
		if rec == nil {
			break
		}

		v := rec.Variant()
		if variant.Classify(v) != variant.KindIndel {
			continue
		}

		startIv, startTarget, startOK := donorMap.GetEntry(v.RefStart)
		endIv, _, endOK := donorMap.GetEntry(v.RefEnd)
		if !startOK || !endOK {
			continue
		}
		if startIv.Equal(endIv) {
			continue
		}

		out = append(out, StraddlingIndel{Donor: donor, LeftTarget: startTarget, Variant: v})
	}
	return out, nil
}

// boundaryKey identifies the (target, interval) slice a straddling indel
// would extend.
type boundaryKey struct {
	target string
	lo     genome.Position
}

// ResizeMaps is Phases B-D: it flips recomb, rewrites boundaries for each
// straddling indel (applying the tie-break rule for indels competing over
// the same boundary), and flips back. If straddling is empty, recomb is
// returned unchanged.
func ResizeMaps(recomb bedmap.RecombinationMap, straddling []StraddlingIndel, logger *zap.Logger) (bedmap.RecombinationMap, error) {
	if len(straddling) == 0 {
		return recomb, nil
	}

	flipped, err := bedmap.Flip(recomb)
	if err != nil {
		return nil, err
	}

	winners := make(map[boundaryKey]StraddlingIndel)
	winnerI0 := make(map[boundaryKey]genome.Interval)

	for _, s := range straddling {
		tm, ok := flipped[s.LeftTarget]
		if !ok {
			continue
		}
		i0, atDonor, ok := tm.GetEntry(s.Variant.RefStart)
		if !ok || atDonor != s.Donor {
			continue
		}
		k := boundaryKey{target: s.LeftTarget, lo: i0.Lo}
		cur, has := winners[k]
		if !has || preferIndel(s, cur) {
			winners[k] = s
			winnerI0[k] = i0
		}
	}

	keys := make([]boundaryKey, 0, len(winners))
	for k := range winners {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].target != keys[j].target {
			return keys[i].target < keys[j].target
		}
		return keys[i].lo.Less(keys[j].lo)
	})

	for _, k := range keys {
		s := winners[k]
		i0 := winnerI0[k]
		if err := applyBoundaryFix(flipped, recomb, s, i0, logger); err != nil {
			return nil, err
		}
	}

	return bedmap.Unflip(flipped)
}

// preferIndel reports whether a should win over b when both compete to
// extend the same left slice: larger RefEnd wins; ties break by donor
// name ascending, then RefStart ascending.
func preferIndel(a, b StraddlingIndel) bool {
	if c := a.Variant.RefEnd.Compare(b.Variant.RefEnd); c != 0 {
		return c > 0
	}
	if a.Donor != b.Donor {
		return a.Donor < b.Donor
	}
	return a.Variant.RefStart.Less(b.Variant.RefStart)
}

// applyBoundaryFix extends i0 (in flipped[s.LeftTarget]) to fully contain
// s.Variant's indel, consuming or shrinking whatever original donor
// intervals (in any target) the extension swallows. It reads overlap
// information from the pre-resize donor map in recomb, which is never
// mutated, so every boundary fix sees the same pre-resize state
// regardless of processing order.
func applyBoundaryFix(flipped bedmap.FlippedMap, recomb bedmap.RecombinationMap, s StraddlingIndel, i0 genome.Interval, logger *zap.Logger) error {
	target := s.LeftTarget
	donor := s.Donor
	refEnd := s.Variant.RefEnd

	tm := flipped[target]

	// Re-fetch: a prior boundary fix in this batch may already have
	// consumed or extended this exact slice.
	curI0, curDonor, ok := tm.GetEntry(i0.Lo)
	if !ok || curDonor != donor || !curI0.Lo.Equal(i0.Lo) {
		return nil
	}
	if curI0.Contains(refEnd) {
		return nil // already fixed
	}

	overlapLo := genome.New(curI0.Hi.Contig, curI0.Hi.Position+1)
	overlapIv, err := genome.NewInterval(overlapLo, refEnd)
	if err != nil {
		return corerr.Invariant("resize: indel refEnd before donor interval end", err)
	}

	donorMap := recomb[donor]
	var swallowed []rangemap.Entry[string]
	for _, e := range donorMap.AsMapOfRanges() {
		if e.Interval.Overlaps(overlapIv) {
			swallowed = append(swallowed, e)
		}
	}
	sort.Slice(swallowed, func(i, j int) bool { return swallowed[i].Interval.Lo.Less(swallowed[j].Interval.Lo) })

	// Degenerate case: if the swallowed intervals don't contiguously
	// cover (curI0.Hi, refEnd], the indel runs off the edge of the
	// donor's mapped region. Skip it with a warning rather than apply a
	// partial, unsound fix.
	if !contiguousCoverage(curI0, overlapIv, swallowed) {
		if logger != nil {
			logger.Warn("skipping indel: extends beyond mapped recombination region",
				zap.String("donor", donor), zap.String("target", target),
				zap.String("contig", refEnd.Contig), zap.Int64("refStart", s.Variant.RefStart.Position),
				zap.Int64("refEnd", refEnd.Position))
		}
		return nil
	}

	for _, e := range swallowed {
		owner := e.Value
		otm := flipped[owner]
		otm.Remove(e.Interval)
		if refEnd.Less(e.Interval.Hi) {
			shrunk, err := genome.NewInterval(genome.New(refEnd.Contig, refEnd.Position+1), e.Interval.Hi)
			if err != nil {
				return corerr.Invariant("resize: shrink interval", err)
			}
			if err := otm.Put(shrunk, donor); err != nil {
				return corerr.Invariant("resize: shrink collides with existing interval", err)
			}
		}
	}

	// Clear or shrink whatever else currently occupies (curI0.Hi, refEnd]
	// in the target's own flipped map, no matter which donor holds it.
	// This is distinct from the swallowed-entries loop above: that one
	// mirrors donor's own claims across its other targets; this one makes
	// room in target's map itself, which other donors' claims may already
	// occupy independently of donor's own assignments.
	for _, e := range tm.AsMapOfRanges() {
		if e.Interval.Equal(curI0) || !e.Interval.Overlaps(overlapIv) {
			continue
		}
		tm.Remove(e.Interval)
		if refEnd.Less(e.Interval.Hi) {
			shrunk, err := genome.NewInterval(genome.New(refEnd.Contig, refEnd.Position+1), e.Interval.Hi)
			if err != nil {
				return corerr.Invariant("resize: shrink target-side interval", err)
			}
			if err := tm.Put(shrunk, e.Value); err != nil {
				return corerr.Invariant("resize: shrink target-side interval collides", err)
			}
		}
	}

	tm.Remove(curI0)
	extended, err := genome.NewInterval(curI0.Lo, refEnd)
	if err != nil {
		return corerr.Invariant("resize: extend interval", err)
	}
	if err := tm.Put(extended, donor); err != nil {
		return corerr.Invariant("resize: extended interval collides", err)
	}
	return nil
}

// contiguousCoverage reports whether swallowed (sorted ascending) exactly
// tiles overlapIv with no gaps, and the final entry reaches at least
// overlapIv.Hi.
func contiguousCoverage(curI0, overlapIv genome.Interval, swallowed []rangemap.Entry[string]) bool {
	if len(swallowed) == 0 {
		return false
	}
	expectedLo := overlapIv.Lo
	for _, e := range swallowed {
		if !e.Interval.Lo.Equal(expectedLo) {
			return false
		}
		expectedLo = genome.New(e.Interval.Hi.Contig, e.Interval.Hi.Position+1)
	}
	last := swallowed[len(swallowed)-1]
	return !last.Interval.Hi.Less(overlapIv.Hi)
}
