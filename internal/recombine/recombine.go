// Package recombine implements the recombination writer: it streams
// each donor GVCF through that donor's (resized) range map, rewrites
// the sample name to the owning target, splits reference blocks across
// target boundaries, and emits the resized BED files used as an audit
// artifact. The writer stays single-threaded; per-item fan-out belongs
// to the mutation applier instead, where baselines are independent.
package recombine

import (
	"bufio"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/maize-genetics/recomb-gvcf/internal/bedmap"
	"github.com/maize-genetics/recomb-gvcf/internal/corerr"
	"github.com/maize-genetics/recomb-gvcf/internal/fasta"
	"github.com/maize-genetics/recomb-gvcf/internal/genome"
	"github.com/maize-genetics/recomb-gvcf/internal/gvcf"
	"github.com/maize-genetics/recomb-gvcf/internal/rangemap"
	"github.com/maize-genetics/recomb-gvcf/internal/variant"
)

var errMissingReferenceBase = errors.New("reference base unavailable at this position")

// Stats summarizes one Run, for the audit trail.
type Stats struct {
	DonorsProcessed  int
	RecordsWritten   int
	RecordsSkipped   int
	RefBlocksSplit   int
}

// Run streams every donor present in both recomb and gvcfDir through its
// resized map, writing one GVCF per target under outGVCFDir and one
// resized BED per target under outBEDDir. ref supplies reference bases
// for split reference blocks.
func Run(ctx context.Context, recomb bedmap.RecombinationMap, gvcfDir, outGVCFDir, outBEDDir string, ref *fasta.Reference, logger *zap.Logger) (Stats, error) {
	var stats Stats

	index, err := gvcf.IndexDonorFiles(gvcfDir)
	if err != nil {
		return stats, err
	}

	donors := make([]string, 0, len(recomb))
	for d := range recomb {
		donors = append(donors, d)
	}
	sort.Strings(donors)

	writers := make(map[string]*gvcf.Writer)
	defer func() {
		for _, w := range writers {
			w.Close()
		}
	}()

	getWriter := func(target string) (*gvcf.Writer, error) {
		if w, ok := writers[target]; ok {
			return w, nil
		}
		path := filepath.Join(outGVCFDir, target+"_recombined.gvcf")
		w, err := gvcf.NewWriter(path, target)
		if err != nil {
			return nil, err
		}
		writers[target] = w
		return w, nil
	}

	for _, donor := range donors {
		if err := ctx.Err(); err != nil {
			return stats, corerr.Precondition("recombine.Run: cancelled", err)
		}

		path, ok := index[donor]
		if !ok {
			continue
		}
		donorMap := recomb[donor]

		if err := streamDonor(donor, path, donorMap, ref, getWriter, logger, &stats); err != nil {
			return stats, err
		}
		stats.DonorsProcessed++
	}

	flipped, err := bedmap.Flip(recomb)
	if err != nil {
		return stats, err
	}
	if err := writeResizedBEDs(flipped, outBEDDir); err != nil {
		return stats, err
	}

	return stats, nil
}

func streamDonor(donor, path string, donorMap *rangemap.Map[string], ref *fasta.Reference, getWriter func(string) (*gvcf.Writer, error), logger *zap.Logger, stats *Stats) error {
	r, err := gvcf.NewReader(path)
	if err != nil {
		return err
	}
	defer r.Close()

	for {
		rec, err := r.Next()
		if err != nil {
			return err
		}
		if rec == nil {
			return nil
		}

		v := rec.Variant()
		kind := variant.Classify(v)

		if kind == variant.KindRefBlock {
			n, err := splitRefBlock(donorMap, v, ref, getWriter)
			if err != nil {
				return err
			}
			stats.RefBlocksSplit++
			stats.RecordsWritten += n
			continue
		}

		target, ok := donorMap.Get(v.RefStart)
		if !ok {
			if logger != nil {
				logger.Warn("skipping record: no target mapped at position",
					zap.String("donor", donor), zap.String("contig", v.RefStart.Contig),
					zap.Int64("pos", v.RefStart.Position))
			}
			stats.RecordsSkipped++
			continue
		}

		w, err := getWriter(target)
		if err != nil {
			return err
		}
		if err := w.WriteRecord(v, rec.Genotype); err != nil {
			return err
		}
		stats.RecordsWritten++
	}
}

// splitRefBlock walks the donor map's sub-range over [v.RefStart,
// v.RefEnd], emitting one reference block per overlapped target interval
// and skipping any gap where the donor has no target coverage.
func splitRefBlock(donorMap *rangemap.Map[string], v variant.Variant, ref *fasta.Reference, getWriter func(string) (*gvcf.Writer, error)) (int, error) {
	start, end := v.RefStart, v.RefEnd
	span, err := genome.NewInterval(start, end)
	if err != nil {
		return 0, corerr.Invariant("recombine: refblock span", err)
	}

	entries := donorMap.SubRangeMap(span)
	written := 0
	cur := start

	for _, e := range entries {
		if cur.Less(e.Interval.Lo) {
			cur = e.Interval.Lo // gap: donor has no target coverage here
		}
		blockEnd := end
		if e.Interval.Hi.Less(blockEnd) {
			blockEnd = e.Interval.Hi
		}

		base, ok := refBase(ref, cur)
		if !ok {
			return written, corerr.IO(cur.Contig, errMissingReferenceBase)
		}

		w, err := getWriter(e.Value)
		if err != nil {
			return written, err
		}
		if err := w.WriteRefBlock(cur, blockEnd, base); err != nil {
			return written, err
		}
		written++

		if !blockEnd.Less(end) {
			break
		}
		cur = genome.New(blockEnd.Contig, blockEnd.Position+1)
	}

	return written, nil
}

func refBase(ref *fasta.Reference, p genome.Position) (string, bool) {
	if ref == nil {
		return "N", true
	}
	return ref.Base(p.Contig, p.Position)
}

func writeResizedBEDs(flipped bedmap.FlippedMap, outBEDDir string) error {
	targets := make([]string, 0, len(flipped))
	for t := range flipped {
		targets = append(targets, t)
	}
	sort.Strings(targets)

	for _, target := range targets {
		if err := writeResizedBED(target, flipped[target], outBEDDir); err != nil {
			return err
		}
	}
	return nil
}

func writeResizedBED(target string, m *rangemap.Map[string], outBEDDir string) error {
	path := filepath.Join(outBEDDir, target+"_resized.bed")
	f, err := os.Create(path)
	if err != nil {
		return corerr.IO(path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	entries := m.AsMapOfRanges()
	sort.Slice(entries, func(i, j int) bool { return entries[i].Interval.Lo.Less(entries[j].Interval.Lo) })

	for _, e := range entries {
		var b strings.Builder
		b.WriteString(e.Interval.Lo.Contig)
		b.WriteByte('\t')
		b.WriteString(strconv.FormatInt(e.Interval.Lo.Position-1, 10))
		b.WriteByte('\t')
		b.WriteString(strconv.FormatInt(e.Interval.Hi.Position, 10))
		b.WriteByte('\t')
		b.WriteString(e.Value)
		b.WriteByte('\n')
		if _, err := w.WriteString(b.String()); err != nil {
			return corerr.IO(path, err)
		}
	}

	if err := w.Flush(); err != nil {
		return corerr.IO(path, err)
	}
	return nil
}
