// Package mutate implements the mutation applier: it loads a baseline
// donor GVCF into a range map keyed by variant interval, applies new
// variants against it (splitting or rejecting against existing entries),
// and re-emits the mutated GVCF, reusing internal/gvcf directly for both
// input and output since the wire format is identical to the
// recombination writer's.
package mutate

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/maize-genetics/recomb-gvcf/internal/corerr"
	"github.com/maize-genetics/recomb-gvcf/internal/genome"
	"github.com/maize-genetics/recomb-gvcf/internal/gvcf"
	"github.com/maize-genetics/recomb-gvcf/internal/rangemap"
	"github.com/maize-genetics/recomb-gvcf/internal/variant"
)

// Baseline is a donor's variants indexed by their closed reference
// interval. Entries never overlap.
type Baseline struct {
	genotypes map[string]string // keyed by RefStart.String()+"-"+RefEnd.String(), see genotypeKey
	entries   *rangemap.Map[variant.Variant]
}

// LoadBaseline reads path into a Baseline range map.
func LoadBaseline(path string) (*Baseline, error) {
	r, err := gvcf.NewReader(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	b := &Baseline{
		genotypes: make(map[string]string),
		entries:   rangemap.New[variant.Variant](),
	}

	for {
		rec, err := r.Next()
		if err != nil {
			return nil, err
		}
		if rec == nil {
			break
		}
		v := rec.Variant()
		if err := b.entries.Put(v.Interval(), v); err != nil {
			return nil, err
		}
		b.genotypes[genotypeKey(v)] = rec.Genotype
	}

	return b, nil
}

func genotypeKey(v variant.Variant) string {
	return v.RefStart.String() + "-" + v.RefEnd.String()
}

// Apply adds v (with genotype) to the baseline:
//   - RefBlock additions are always skipped (reference blocks never
//     overlay an existing map).
//   - if v overlaps any existing Indel, the baseline is left unchanged.
//   - otherwise, any overlapped ref-block(s) are split around v, or a
//     point-equal SNP is replaced outright, and v is inserted with
//     IsAddedMutation = true.
//
// Apply reports whether the map changed.
func (b *Baseline) Apply(v variant.Variant, genotype string) (bool, error) {
	if variant.Classify(v) == variant.KindRefBlock {
		return false, nil
	}

	span := v.Interval()
	overlapped := b.entries.SubRangeMap(span)

	for _, e := range overlapped {
		if variant.Classify(e.Value) == variant.KindIndel {
			return false, nil
		}
	}

	// Same-position SNP replacement.
	if len(overlapped) == 1 && overlapped[0].Interval.Equal(span) && variant.Classify(overlapped[0].Value) == variant.KindSNP {
		full, _, _ := b.entries.GetEntry(span.Lo)
		b.entries.Remove(full)
		delete(b.genotypes, genotypeKey(overlapped[0].Value))
		return b.insert(v, genotype)
	}

	for _, e := range overlapped {
		k := variant.Classify(e.Value)
		if k != variant.KindRefBlock {
			return false, corerr.Invariant("mutate.Apply", errNonRefBlockOverlap)
		}
	}

	// If v overlaps anything at all, it must land fully inside a single
	// ref-block. If it straddles the boundary between two ref-blocks,
	// splitting both would silently stitch them into a fabricated layout
	// instead of failing loudly on a malformed input.
	if len(overlapped) > 1 || (len(overlapped) == 1 && (!overlapped[0].Interval.Contains(span.Lo) || !overlapped[0].Interval.Contains(span.Hi))) {
		return false, corerr.Invariant("mutate.Apply", errPartialRefBlockOverlap)
	}

	for _, e := range overlapped {
		full, _, ok := b.entries.GetEntry(e.Interval.Lo)
		if !ok {
			continue
		}
		if err := b.splitRefBlock(full, v); err != nil {
			return false, err
		}
	}

	return b.insert(v, genotype)
}

// splitRefBlock removes rb and re-inserts the surviving left/right
// pieces (omitting any that would be empty), carrying rb's original ref
// allele forward. The added variant v itself is inserted separately by
// the caller.
func (b *Baseline) splitRefBlock(rb genome.Interval, v variant.Variant) error {
	rbVal, ok := b.entries.Get(rb.Lo)
	if !ok {
		return corerr.Invariant("mutate.splitRefBlock", errRefBlockVanished)
	}
	gt := b.genotypes[genotypeKey(rbVal)]
	b.entries.Remove(rb)
	delete(b.genotypes, genotypeKey(rbVal))

	if rb.Lo.Contig != v.RefStart.Contig {
		return corerr.Invariant("mutate.splitRefBlock", errCrossContigSplit)
	}

	if v.RefStart.Position-1 >= rb.Lo.Position {
		left, err := genome.NewInterval(rb.Lo, genome.New(rb.Lo.Contig, v.RefStart.Position-1))
		if err != nil {
			return corerr.Invariant("mutate.splitRefBlock: left piece", err)
		}
		leftVariant := variant.Variant{RefStart: left.Lo, RefEnd: left.Hi, RefAllele: rbVal.RefAllele, AltAllele: rbVal.AltAllele}
		if err := b.entries.Put(left, leftVariant); err != nil {
			return corerr.Invariant("mutate.splitRefBlock: left piece collides", err)
		}
		b.genotypes[genotypeKey(leftVariant)] = gt
	}

	if v.RefEnd.Position+1 <= rb.Hi.Position {
		right, err := genome.NewInterval(genome.New(rb.Hi.Contig, v.RefEnd.Position+1), rb.Hi)
		if err != nil {
			return corerr.Invariant("mutate.splitRefBlock: right piece", err)
		}
		rightVariant := variant.Variant{RefStart: right.Lo, RefEnd: right.Hi, RefAllele: rbVal.RefAllele, AltAllele: rbVal.AltAllele}
		if err := b.entries.Put(right, rightVariant); err != nil {
			return corerr.Invariant("mutate.splitRefBlock: right piece collides", err)
		}
		b.genotypes[genotypeKey(rightVariant)] = gt
	}

	return nil
}

func (b *Baseline) insert(v variant.Variant, genotype string) (bool, error) {
	v.IsAddedMutation = true
	if err := b.entries.Put(v.Interval(), v); err != nil {
		return false, corerr.Invariant("mutate.Apply: added variant collides", err)
	}
	b.genotypes[genotypeKey(v)] = genotype
	return true, nil
}

// Write re-emits the baseline in key order as a GVCF for sampleName.
func (b *Baseline) Write(path, sampleName string) error {
	w, err := gvcf.NewWriter(path, sampleName)
	if err != nil {
		return err
	}
	defer w.Close()

	for _, e := range b.entries.AsMapOfRanges() {
		v := e.Value
		gt := b.genotypes[genotypeKey(v)]
		if variant.Classify(v) == variant.KindRefBlock {
			if err := w.WriteRefBlock(v.RefStart, v.RefEnd, v.RefAllele); err != nil {
				return err
			}
			continue
		}
		if err := w.WriteRecord(v, gt); err != nil {
			return err
		}
	}
	return w.Close()
}

// Mutation is one variant to add to a baseline, paired with its
// genotype.
type Mutation struct {
	Variant  variant.Variant
	Genotype string
}

// ApplyAll loads baselinePath, applies every mutation in order, and
// writes the result to outPath under sampleName.
func ApplyAll(baselinePath string, mutations []Mutation, outPath, sampleName string) error {
	b, err := LoadBaseline(baselinePath)
	if err != nil {
		return err
	}
	for _, m := range mutations {
		if _, err := b.Apply(m.Variant, m.Genotype); err != nil {
			return err
		}
	}
	return b.Write(outPath, sampleName)
}

// Job pairs one baseline/mutation-set/output triple for ApplyAllConcurrent.
type Job struct {
	BaselinePath string
	Mutations    []Mutation
	OutPath      string
	SampleName   string
}

// ApplyAllConcurrent runs ApplyAll for each job over independent
// baselines concurrently. Each job only ever touches its own Baseline
// and Writer, so jobs never contend with one another.
func ApplyAllConcurrent(ctx context.Context, jobs []Job) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, job := range jobs {
		job := job
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return ApplyAll(job.BaselinePath, job.Mutations, job.OutPath, job.SampleName)
		})
	}
	return g.Wait()
}
