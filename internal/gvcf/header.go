package gvcf

// genericHeaderLines is the fixed header every Writer emits before its
// first record: GT, AD, DP, GQ, PL (format) and DP, NS, AF, END, ASM_Chr,
// ASM_Start, ASM_End, ASM_Strand (info). The core never evolves this
// header at runtime.
var genericHeaderLines = []string{
	`##fileformat=VCFv4.2`,
	`##INFO=<ID=DP,Number=1,Type=Integer,Description="Total depth of coverage">`,
	`##INFO=<ID=NS,Number=1,Type=Integer,Description="Number of samples with data">`,
	`##INFO=<ID=AF,Number=A,Type=Float,Description="Allele frequency">`,
	`##INFO=<ID=END,Number=1,Type=Integer,Description="End position of the reference block">`,
	`##INFO=<ID=ASM_Chr,Number=1,Type=String,Description="Assembly contig of alignment source">`,
	`##INFO=<ID=ASM_Start,Number=1,Type=Integer,Description="Assembly start position of alignment source">`,
	`##INFO=<ID=ASM_End,Number=1,Type=Integer,Description="Assembly end position of alignment source">`,
	`##INFO=<ID=ASM_Strand,Number=1,Type=String,Description="Assembly strand of alignment source">`,
	`##FORMAT=<ID=GT,Number=1,Type=String,Description="Genotype">`,
	`##FORMAT=<ID=AD,Number=R,Type=Integer,Description="Allelic depths">`,
	`##FORMAT=<ID=DP,Number=1,Type=Integer,Description="Read depth">`,
	`##FORMAT=<ID=GQ,Number=1,Type=Integer,Description="Genotype quality">`,
	`##FORMAT=<ID=PL,Number=G,Type=Integer,Description="Phred-scaled genotype likelihoods">`,
	`##ALT=<ID=NON_REF,Description="Represents any possible alternative allele">`,
}

const chromHeaderPrefix = "#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\tFORMAT\t"
