package gvcf

import "errors"

var (
	errUnexpectedLine = errors.New("expected #CHROM header line")
	errNoChromLine    = errors.New("no #CHROM header line found")
	errTooFewColumns  = errors.New("expected at least 8 columns")
	errBadPosition    = errors.New("invalid position")
)
