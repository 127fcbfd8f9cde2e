package bedmap

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maize-genetics/recomb-gvcf/internal/genome"
)

func writeBED(t *testing.T, dir, name, contents string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(contents), 0o644))
}

func TestDonorFromFilename(t *testing.T) {
	assert.Equal(t, "sampleA", donorFromFilename("sampleA_chr1.bed"))
	assert.Equal(t, "sampleA_recombination", donorFromFilename("sampleA_recombination_map.bed"))
	assert.Equal(t, "sampleA", donorFromFilename("sampleA.bed")) // no underscore at all
}

func TestLoad_BasicThreeDonors(t *testing.T) {
	dir := t.TempDir()
	writeBED(t, dir, "sampleA_1.bed", "chr1\t0\t10\tsampleX\nchr1\t10\t20\tsampleY\n")
	writeBED(t, dir, "sampleB_1.bed", "chr1\t0\t10\tsampleY\nchr1\t10\t20\tsampleZ\n")

	recomb, targets, err := Load(dir)
	require.NoError(t, err)

	require.Contains(t, recomb, "sampleA")
	require.Contains(t, recomb, "sampleB")
	assert.Equal(t, []string{"sampleX", "sampleY", "sampleZ"}, targets)

	v, ok := recomb["sampleA"].Get(genome.New("chr1", 5))
	require.True(t, ok)
	assert.Equal(t, "sampleX", v)

	v, ok = recomb["sampleA"].Get(genome.New("chr1", 15))
	require.True(t, ok)
	assert.Equal(t, "sampleY", v)
}

func TestLoad_SkipsShortLinesAndComments(t *testing.T) {
	dir := t.TempDir()
	writeBED(t, dir, "sampleA_1.bed", "# comment\nchr1\t0\t10\n\nchr1\t10\t20\ttargetOnly\n")

	recomb, targets, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"targetOnly"}, targets)

	_, ok := recomb["sampleA"].Get(genome.New("chr1", 5)) // the <4 column line was skipped
	assert.False(t, ok)

	_, ok = recomb["sampleA"].Get(genome.New("chr1", 15))
	assert.True(t, ok)
}

func TestLoad_MultipleFilesAppendSameDonor(t *testing.T) {
	dir := t.TempDir()
	writeBED(t, dir, "sampleA_chr1.bed", "chr1\t0\t10\ttargetX\n")
	writeBED(t, dir, "sampleA_chr2.bed", "chr2\t0\t10\ttargetY\n")

	recomb, _, err := Load(dir)
	require.NoError(t, err)
	require.Len(t, recomb, 1)

	_, ok := recomb["sampleA"].Get(genome.New("chr1", 5))
	assert.True(t, ok)
	_, ok = recomb["sampleA"].Get(genome.New("chr2", 5))
	assert.True(t, ok)
}

func TestLoad_OverlappingDonorIntervalsIsInvariantViolation(t *testing.T) {
	dir := t.TempDir()
	writeBED(t, dir, "sampleA_1.bed", "chr1\t0\t10\ttargetX\nchr1\t5\t15\ttargetY\n")

	_, _, err := Load(dir)
	require.Error(t, err)
}

func TestLoad_EmptyDirectory(t *testing.T) {
	dir := t.TempDir()

	recomb, targets, err := Load(dir)
	require.NoError(t, err)
	assert.Empty(t, recomb)
	assert.Empty(t, targets)
}
