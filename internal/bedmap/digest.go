package bedmap

import (
	"sort"
	"strconv"
	"strings"

	"github.com/zeebo/xxh3"
)

// Digest returns a stable content hash of recomb: every donor's sorted
// intervals and target values, in donor-name order. Two RecombinationMaps
// built from the same BED contents hash identically regardless of file
// enumeration order, which is what the audit trail uses to detect a
// resize run operating against unchanged input.
func Digest(recomb RecombinationMap) string {
	donors := make([]string, 0, len(recomb))
	for d := range recomb {
		donors = append(donors, d)
	}
	sort.Strings(donors)

	var b strings.Builder
	for _, donor := range donors {
		b.WriteString(donor)
		b.WriteByte('\n')
		for _, e := range recomb[donor].AsMapOfRanges() {
			b.WriteString(e.Interval.Lo.Contig)
			b.WriteByte('\t')
			b.WriteString(strconv.FormatInt(e.Interval.Lo.Position, 10))
			b.WriteByte('\t')
			b.WriteString(strconv.FormatInt(e.Interval.Hi.Position, 10))
			b.WriteByte('\t')
			b.WriteString(e.Value)
			b.WriteByte('\n')
		}
	}

	sum := xxh3.HashString(b.String())
	return strconv.FormatUint(sum, 16)
}
