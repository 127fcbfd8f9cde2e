package mutate

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maize-genetics/recomb-gvcf/internal/genome"
	"github.com/maize-genetics/recomb-gvcf/internal/variant"
)

func writeBaselineGVCF(t *testing.T, dir, name string, lines ...string) string {
	t.Helper()
	contents := "##fileformat=VCFv4.2\n#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\tFORMAT\tbaseline\n"
	for _, l := range lines {
		contents += l + "\n"
	}
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func snp(contig string, pos int64, ref, alt string) variant.Variant {
	return variant.Variant{RefStart: genome.New(contig, pos), RefEnd: genome.New(contig, pos), RefAllele: ref, AltAllele: alt}
}

// TestApply_S4_SNPInsideIndel_NoChange and
// TestApply_S4_SNPInRefBlock_SplitsSurroundingBlock together cover seed scenario S4: a baseline indel [201,205] GGGGG->G;
// adding SNP 202 G->A leaves the map unchanged; adding SNP 500 A->G (inside
// a surrounding ref block) inserts and splits it.
func TestApply_S4_SNPInsideIndel_NoChange(t *testing.T) {
	dir := t.TempDir()
	path := writeBaselineGVCF(t, dir, "baseline.g.vcf",
		"chr1\t201\t.\tGGGGG\tG\t.\t.\t.\tGT\t0/1",
	)

	b, err := LoadBaseline(path)
	require.NoError(t, err)

	changed, err := b.Apply(snp("chr1", 202, "G", "A"), "0/1")
	require.NoError(t, err)
	assert.False(t, changed)

	v, ok := b.entries.Get(genome.New("chr1", 202))
	require.True(t, ok)
	assert.Equal(t, variant.KindIndel, variant.Classify(v))
}

func TestApply_S4_SNPInRefBlock_SplitsSurroundingBlock(t *testing.T) {
	dir := t.TempDir()
	path := writeBaselineGVCF(t, dir, "baseline.g.vcf",
		"chr1\t400\t.\tA\t<NON_REF>\t.\t.\tEND=600\tGT\t0/0",
	)

	b, err := LoadBaseline(path)
	require.NoError(t, err)

	changed, err := b.Apply(snp("chr1", 500, "A", "G"), "0/1")
	require.NoError(t, err)
	assert.True(t, changed)

	left, ok := b.entries.Get(genome.New("chr1", 450))
	require.True(t, ok)
	assert.Equal(t, variant.KindRefBlock, variant.Classify(left))

	mid, ok := b.entries.Get(genome.New("chr1", 500))
	require.True(t, ok)
	assert.Equal(t, variant.KindSNP, variant.Classify(mid))
	assert.True(t, mid.IsAddedMutation)

	right, ok := b.entries.Get(genome.New("chr1", 550))
	require.True(t, ok)
	assert.Equal(t, variant.KindRefBlock, variant.Classify(right))
}

func TestApply_RefBlockAddition_AlwaysSkipped(t *testing.T) {
	dir := t.TempDir()
	path := writeBaselineGVCF(t, dir, "baseline.g.vcf",
		"chr1\t1\t.\tA\t<NON_REF>\t.\t.\tEND=100\tGT\t0/0",
	)
	b, err := LoadBaseline(path)
	require.NoError(t, err)

	rb := variant.Variant{RefStart: genome.New("chr1", 10), RefEnd: genome.New("chr1", 20), RefAllele: "A", AltAllele: variant.NonRefAllele}
	changed, err := b.Apply(rb, "0/0")
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestApply_ReplacesExactSamePositionSNP(t *testing.T) {
	dir := t.TempDir()
	path := writeBaselineGVCF(t, dir, "baseline.g.vcf",
		"chr1\t50\t.\tA\tT\t.\t.\t.\tGT\t0/1",
	)
	b, err := LoadBaseline(path)
	require.NoError(t, err)

	changed, err := b.Apply(snp("chr1", 50, "A", "C"), "1/1")
	require.NoError(t, err)
	assert.True(t, changed)

	v, ok := b.entries.Get(genome.New("chr1", 50))
	require.True(t, ok)
	assert.Equal(t, "C", v.AltAllele)
	assert.True(t, v.IsAddedMutation)
}

func TestApply_VariantStraddlesTwoRefBlocks_Errors(t *testing.T) {
	dir := t.TempDir()
	path := writeBaselineGVCF(t, dir, "baseline.g.vcf",
		"chr1\t1\t.\tA\t<NON_REF>\t.\t.\tEND=100\tGT\t0/0",
		"chr1\t101\t.\tA\t<NON_REF>\t.\t.\tEND=200\tGT\t0/0",
	)
	b, err := LoadBaseline(path)
	require.NoError(t, err)

	straddling := variant.Variant{RefStart: genome.New("chr1", 95), RefEnd: genome.New("chr1", 105), RefAllele: "A", AltAllele: "T"}
	_, err = b.Apply(straddling, "0/1")
	require.Error(t, err)

	left, ok := b.entries.Get(genome.New("chr1", 50))
	require.True(t, ok)
	assert.Equal(t, variant.KindRefBlock, variant.Classify(left))
	right, ok := b.entries.Get(genome.New("chr1", 150))
	require.True(t, ok)
	assert.Equal(t, variant.KindRefBlock, variant.Classify(right))
}

func TestApplyAll_EndToEnd(t *testing.T) {
	dir := t.TempDir()
	path := writeBaselineGVCF(t, dir, "baseline.g.vcf",
		"chr1\t1\t.\tA\t<NON_REF>\t.\t.\tEND=100\tGT\t0/0",
	)
	out := filepath.Join(dir, "out.g.vcf")

	err := ApplyAll(path, []Mutation{{Variant: snp("chr1", 50, "A", "G"), Genotype: "0/1"}}, out, "mutatedSample")
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "chr1\t50\t.\tA\tG")
}

func TestApplyAllConcurrent_IndependentBaselines(t *testing.T) {
	dir := t.TempDir()
	p1 := writeBaselineGVCF(t, dir, "b1.g.vcf", "chr1\t1\t.\tA\t<NON_REF>\t.\t.\tEND=100\tGT\t0/0")
	p2 := writeBaselineGVCF(t, dir, "b2.g.vcf", "chr2\t1\t.\tA\t<NON_REF>\t.\t.\tEND=100\tGT\t0/0")

	jobs := []Job{
		{BaselinePath: p1, Mutations: []Mutation{{Variant: snp("chr1", 50, "A", "G"), Genotype: "0/1"}}, OutPath: filepath.Join(dir, "o1.g.vcf"), SampleName: "s1"},
		{BaselinePath: p2, Mutations: []Mutation{{Variant: snp("chr2", 50, "A", "T"), Genotype: "0/1"}}, OutPath: filepath.Join(dir, "o2.g.vcf"), SampleName: "s2"},
	}

	require.NoError(t, ApplyAllConcurrent(context.Background(), jobs))

	for _, p := range []string{filepath.Join(dir, "o1.g.vcf"), filepath.Join(dir, "o2.g.vcf")} {
		_, err := os.Stat(p)
		require.NoError(t, err)
	}
}
