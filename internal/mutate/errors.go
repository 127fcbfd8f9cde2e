package mutate

import "errors"

var (
	errRefBlockVanished       = errors.New("ref-block vanished mid-apply")
	errCrossContigSplit       = errors.New("ref-block split would cross contigs")
	errNonRefBlockOverlap     = errors.New("variant overlaps a non-ref-block, non-point-SNP entry")
	errPartialRefBlockOverlap = errors.New("variant is not fully contained within a single ref-block")
)
