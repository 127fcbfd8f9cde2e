package recombine

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maize-genetics/recomb-gvcf/internal/bedmap"
	"github.com/maize-genetics/recomb-gvcf/internal/fasta"
	"github.com/maize-genetics/recomb-gvcf/internal/genome"
	"github.com/maize-genetics/recomb-gvcf/internal/rangemap"
)

func writeGVCFFile(t *testing.T, dir, name, sample string, lines ...string) {
	t.Helper()
	contents := "##fileformat=VCFv4.2\n#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\tFORMAT\t" + sample + "\n"
	for _, l := range lines {
		contents += l + "\n"
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(contents), 0o644))
}

func threeWayMap(t *testing.T) bedmap.RecombinationMap {
	t.Helper()
	mk := func(pairs ...interface{}) *rangemap.Map[string] {
		m := rangemap.New[string]()
		for i := 0; i < len(pairs); i += 2 {
			iv := pairs[i].(genome.Interval)
			require.NoError(t, m.Put(iv, pairs[i+1].(string)))
		}
		return m
	}
	ivl := func(lo, hi int64) genome.Interval {
		iv, err := genome.NewInterval(genome.New("chr1", lo), genome.New("chr1", hi))
		require.NoError(t, err)
		return iv
	}
	return bedmap.RecombinationMap{
		"sampleA": mk(ivl(1, 10), "sampleX", ivl(11, 20), "sampleY", ivl(21, 30), "sampleZ"),
		"sampleB": mk(ivl(1, 10), "sampleY", ivl(11, 20), "sampleZ", ivl(21, 30), "sampleX"),
		"sampleC": mk(ivl(1, 10), "sampleZ", ivl(11, 20), "sampleX", ivl(21, 30), "sampleY"),
	}
}

// TestRun_S1_BasicThreeWayRecombination covers seed scenario S1: three
// donors each contributing one full-span reference block, split at their
// own boundaries, covering [1,30] per target once reassembled.
func TestRun_S1_BasicThreeWayRecombination(t *testing.T) {
	gvcfDir := t.TempDir()
	outGVCF := t.TempDir()
	outBED := t.TempDir()

	writeGVCFFile(t, gvcfDir, "sampleA.g.vcf", "sampleA", "chr1\t1\t.\tA\t<NON_REF>\t.\t.\tEND=30\tGT\t0/0")
	writeGVCFFile(t, gvcfDir, "sampleB.g.vcf", "sampleB", "chr1\t1\t.\tA\t<NON_REF>\t.\t.\tEND=30\tGT\t0/0")
	writeGVCFFile(t, gvcfDir, "sampleC.g.vcf", "sampleC", "chr1\t1\t.\tA\t<NON_REF>\t.\t.\tEND=30\tGT\t0/0")

	ref := fastaRefAllA(t)

	stats, err := Run(context.Background(), threeWayMap(t), gvcfDir, outGVCF, outBED, ref, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.DonorsProcessed)

	for _, target := range []string{"sampleX", "sampleY", "sampleZ"} {
		data, err := os.ReadFile(filepath.Join(outGVCF, target+"_recombined.gvcf"))
		require.NoError(t, err)
		lines := dataRecordLines(string(data))
		require.Len(t, lines, 3, "one ref-block contribution from each of the three donors")
	}
}

func TestRun_S3_RefBlockSplitAtTwoBoundaries(t *testing.T) {
	gvcfDir := t.TempDir()
	outGVCF := t.TempDir()
	outBED := t.TempDir()

	writeGVCFFile(t, gvcfDir, "donorD.g.vcf", "donorD", "chr1\t5\t.\tA\t<NON_REF>\t.\t.\tEND=25\tGT\t0/0")

	ivl := func(lo, hi int64) genome.Interval {
		iv, err := genome.NewInterval(genome.New("chr1", lo), genome.New("chr1", hi))
		require.NoError(t, err)
		return iv
	}
	m := rangemap.New[string]()
	require.NoError(t, m.Put(ivl(1, 10), "X"))
	require.NoError(t, m.Put(ivl(11, 20), "Y"))
	require.NoError(t, m.Put(ivl(21, 30), "Z"))
	recomb := bedmap.RecombinationMap{"donorD": m}

	ref := fastaRefAllA(t)

	stats, err := Run(context.Background(), recomb, gvcfDir, outGVCF, outBED, ref, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.RecordsWritten)

	xData, err := os.ReadFile(filepath.Join(outGVCF, "X_recombined.gvcf"))
	require.NoError(t, err)
	assert.Contains(t, string(xData), "chr1\t5\t.\tA\t<NON_REF>\t.\t.\tEND=10")

	yData, err := os.ReadFile(filepath.Join(outGVCF, "Y_recombined.gvcf"))
	require.NoError(t, err)
	assert.Contains(t, string(yData), "chr1\t11\t.\tA\t<NON_REF>\t.\t.\tEND=20")

	zData, err := os.ReadFile(filepath.Join(outGVCF, "Z_recombined.gvcf"))
	require.NoError(t, err)
	assert.Contains(t, string(zData), "chr1\t21\t.\tA\t<NON_REF>\t.\t.\tEND=25")
}

func TestRun_S6_EmptyRecombinationMap_NoFilesNoError(t *testing.T) {
	gvcfDir := t.TempDir()
	outGVCF := t.TempDir()
	outBED := t.TempDir()

	stats, err := Run(context.Background(), bedmap.RecombinationMap{}, gvcfDir, outGVCF, outBED, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.DonorsProcessed)

	entries, err := os.ReadDir(outGVCF)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRun_EmitsResizedBEDPerTarget(t *testing.T) {
	gvcfDir := t.TempDir()
	outGVCF := t.TempDir()
	outBED := t.TempDir()

	stats, err := Run(context.Background(), threeWayMap(t), gvcfDir, outGVCF, outBED, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.DonorsProcessed, "no donor GVCFs present in gvcfDir")

	data, err := os.ReadFile(filepath.Join(outBED, "sampleX_resized.bed"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "chr1\t0\t10\tsampleA")
}

func fastaRefAllA(t *testing.T) *fasta.Reference {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "ref.fa")
	require.NoError(t, os.WriteFile(path, []byte(">chr1\n"+strings.Repeat("A", 40)+"\n"), 0o644))
	ref, err := fasta.Load(path)
	require.NoError(t, err)
	return ref
}

func dataRecordLines(contents string) []string {
	var out []string
	for _, l := range strings.Split(contents, "\n") {
		if l == "" || strings.HasPrefix(l, "#") {
			continue
		}
		out = append(out, l)
	}
	return out
}
