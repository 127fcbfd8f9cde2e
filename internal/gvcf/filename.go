package gvcf

import "regexp"

// donorFilenamePattern extracts a donor/sample name from a GVCF filename,
// tolerating ".gvcf", ".g.vcf", ".gvcf.gz", and ".g.vcf.gz" suffixes.
var donorFilenamePattern = regexp.MustCompile(`^(.+?)\.g(?:\.?vcf|vcs)(?:\.gz)?$`)

// DonorName extracts the donor/sample name encoded in a GVCF filename
// (the base name only; callers strip any directory component first).
func DonorName(filename string) (string, bool) {
	m := donorFilenamePattern.FindStringSubmatch(filename)
	if m == nil {
		return "", false
	}
	return m[1], true
}
