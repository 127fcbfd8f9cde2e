// Package bedmap builds per-donor recombination maps from a directory of
// BED files whose filename encodes the donor, using plain tab-split line
// parsing generalized to a directory of files rather than one.
package bedmap

import (
	"bufio"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/maize-genetics/recomb-gvcf/internal/corerr"
	"github.com/maize-genetics/recomb-gvcf/internal/genome"
	"github.com/maize-genetics/recomb-gvcf/internal/rangemap"
)

// RecombinationMap maps donor name to that donor's disjoint range map of
// target names.
type RecombinationMap map[string]*rangemap.Map[string]

// Load reads every *.bed file directly under dir and builds the
// donor -> RangeMap<Position, target> recombination map, plus the sorted
// set of distinct target names observed. An empty directory yields empty
// results, not an error.
func Load(dir string) (RecombinationMap, []string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, corerr.IO(dir, err)
	}

	recomb := make(RecombinationMap)
	targetSet := make(map[string]struct{})

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".bed") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		donor := donorFromFilename(entry.Name())

		m, ok := recomb[donor]
		if !ok {
			m = rangemap.New[string]()
			recomb[donor] = m
		}

		if err := loadBEDFile(path, m, targetSet); err != nil {
			return nil, nil, err
		}
	}

	targets := make([]string, 0, len(targetSet))
	for t := range targetSet {
		targets = append(targets, t)
	}
	sort.Strings(targets)

	return recomb, targets, nil
}

// donorFromFilename strips the ".bed" extension, then strips everything
// from (and including) the last underscore.
func donorFromFilename(name string) string {
	base := strings.TrimSuffix(name, ".bed")
	if i := strings.LastIndexByte(base, '_'); i >= 0 {
		base = base[:i]
	}
	return base
}

func loadBEDFile(path string, m *rangemap.Map[string], targetSet map[string]struct{}) error {
	f, err := os.Open(path)
	if err != nil {
		return corerr.IO(path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 16*1024*1024)

	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := scanner.Text()
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Split(line, "\t")
		if len(fields) < 4 {
			continue // fewer than 4 columns: skipped silently
		}

		chrom := fields[0]
		start0, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			continue
		}
		end, err := strconv.ParseInt(fields[2], 10, 64)
		if err != nil {
			continue
		}
		target := fields[3]

		iv, err := genome.NewInterval(genome.New(chrom, start0+1), genome.New(chrom, end))
		if err != nil {
			continue
		}

		if err := m.Put(iv, target); err != nil {
			return corerr.Invariant("bedmap: donor interval overlap in "+path, err)
		}

		targetSet[target] = struct{}{}
	}

	if err := scanner.Err(); err != nil {
		return corerr.IO(path, err)
	}
	return nil
}
