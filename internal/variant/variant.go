// Package variant provides the tagged GVCF record representation used by
// the streaming writer and the mutation applier. Classification is a pure
// function of the allele strings and the reference span.
package variant

import "github.com/maize-genetics/recomb-gvcf/internal/genome"

// NonRefAllele is the GVCF convention for "any other allele" reference
// blocks use as their ALT.
const NonRefAllele = "<NON_REF>"

// Kind tags the classification of a Variant.
type Kind int

const (
	// KindComplex is the fallback tag: anything that is not a SNP, an
	// Indel, or a RefBlock by the rules below.
	KindComplex Kind = iota
	KindSNP
	KindIndel
	KindRefBlock
)

func (k Kind) String() string {
	switch k {
	case KindSNP:
		return "SNP"
	case KindIndel:
		return "Indel"
	case KindRefBlock:
		return "RefBlock"
	default:
		return "Complex"
	}
}

// Variant is a single GVCF record in the core's internal representation.
type Variant struct {
	RefStart        genome.Position
	RefEnd          genome.Position
	RefAllele       string
	AltAllele       string
	IsAddedMutation bool
}

// Interval returns the closed reference interval [RefStart, RefEnd] this
// variant occupies.
func (v Variant) Interval() genome.Interval {
	iv, _ := genome.NewInterval(v.RefStart, v.RefEnd)
	return iv
}

// Classify tags v as SNP, Indel, RefBlock, or Complex:
//   - SNP:      len(ref)=1, len(alt)=1, alt != <NON_REF>
//   - RefBlock: len(ref)=1, alt = <NON_REF>, refEnd >= refStart
//   - Indel:    len(ref) != len(alt), alt != <NON_REF>
//   - Complex:  otherwise
func Classify(v Variant) Kind {
	switch {
	case len(v.RefAllele) == 1 && len(v.AltAllele) == 1 && v.AltAllele != NonRefAllele:
		return KindSNP
	case len(v.RefAllele) == 1 && v.AltAllele == NonRefAllele && !v.RefEnd.Less(v.RefStart):
		return KindRefBlock
	case len(v.RefAllele) != len(v.AltAllele) && v.AltAllele != NonRefAllele:
		return KindIndel
	default:
		return KindComplex
	}
}
