package gvcf

import (
	"github.com/maize-genetics/recomb-gvcf/internal/genome"
	"github.com/maize-genetics/recomb-gvcf/internal/variant"
)

// Record is one GVCF data line as exposed by Reader. Only the first ALT
// allele is retained (multi-allelic GVCF records are not a core concern),
// and only a single sample's genotype is read.
type Record struct {
	Contig    string
	Start     int64 // 1-based
	End       int64 // 1-based, inclusive
	RefAllele string
	AltAllele string // first alt only
	Genotype  string // the GT subfield value, e.g. "0/1"; "" if absent
}

// Variant returns the core's classification-ready Variant for this record.
func (r Record) Variant() variant.Variant {
	return variant.Variant{
		RefStart:  genome.New(r.Contig, r.Start),
		RefEnd:    genome.New(r.Contig, r.End),
		RefAllele: r.RefAllele,
		AltAllele: r.AltAllele,
	}
}
