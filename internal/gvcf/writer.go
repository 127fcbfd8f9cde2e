package gvcf

import (
	"bufio"
	"os"
	"strconv"
	"strings"

	"github.com/maize-genetics/recomb-gvcf/internal/corerr"
	"github.com/maize-genetics/recomb-gvcf/internal/genome"
	"github.com/maize-genetics/recomb-gvcf/internal/variant"
)

// homRefGenotype is emitted for reference blocks, which never carry a
// source genotype of their own.
const homRefGenotype = "0/0"

// Writer is an eager, push-based GVCF writer: callers call WriteRefBlock
// or WriteRecord synchronously per record and the Writer owns a buffered file handle,
// released on Close. One Writer serves exactly one target sample.
type Writer struct {
	f             *os.File
	w             *bufio.Writer
	sampleName    string
	headerWritten bool
	closed        bool
}

// NewWriter creates path and prepares it to receive records for
// sampleName. The header is written lazily on the first WriteRefBlock or
// WriteRecord call.
func NewWriter(path, sampleName string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, corerr.IO(path, err)
	}
	return &Writer{
		f:          f,
		w:          bufio.NewWriter(f),
		sampleName: sampleName,
	}, nil
}

func (w *Writer) ensureHeader() error {
	if w.headerWritten {
		return nil
	}
	for _, line := range genericHeaderLines {
		if _, err := w.w.WriteString(line); err != nil {
			return corerr.IO(w.sampleName, err)
		}
		if _, err := w.w.WriteString("\n"); err != nil {
			return corerr.IO(w.sampleName, err)
		}
	}
	if _, err := w.w.WriteString(chromHeaderPrefix); err != nil {
		return corerr.IO(w.sampleName, err)
	}
	if _, err := w.w.WriteString(w.sampleName); err != nil {
		return corerr.IO(w.sampleName, err)
	}
	if _, err := w.w.WriteString("\n"); err != nil {
		return corerr.IO(w.sampleName, err)
	}
	w.headerWritten = true
	return nil
}

// WriteRefBlock writes a reference-block record covering the closed
// interval [start, end] with refBase as the single reference-allele
// character. The sample carries a homozygous-reference genotype.
func (w *Writer) WriteRefBlock(start, end genome.Position, refBase string) error {
	if err := w.ensureHeader(); err != nil {
		return err
	}
	return w.writeLine(start.Contig, start.Position, refBase, variant.NonRefAllele, end.Position, homRefGenotype)
}

// WriteRecord writes a SNP, Indel, or Complex record carrying the
// variant's own alleles and the original (re-sampled) genotype.
func (w *Writer) WriteRecord(v variant.Variant, genotype string) error {
	if err := w.ensureHeader(); err != nil {
		return err
	}
	if genotype == "" {
		genotype = homRefGenotype
	}
	return w.writeLine(v.RefStart.Contig, v.RefStart.Position, v.RefAllele, v.AltAllele, 0, genotype)
}

func (w *Writer) writeLine(contig string, pos int64, ref, alt string, end int64, genotype string) error {
	var b strings.Builder
	b.Grow(96)
	b.WriteString(contig)
	b.WriteByte('\t')
	b.WriteString(strconv.FormatInt(pos, 10))
	b.WriteString("\t.\t")
	b.WriteString(ref)
	b.WriteByte('\t')
	b.WriteString(alt)
	b.WriteString("\t.\t.\t")
	if alt == variant.NonRefAllele {
		b.WriteString("END=")
		b.WriteString(strconv.FormatInt(end, 10))
	} else {
		b.WriteByte('.')
	}
	b.WriteString("\tGT\t")
	b.WriteString(genotype)
	b.WriteByte('\n')

	if _, err := w.w.WriteString(b.String()); err != nil {
		return corerr.IO(w.sampleName, err)
	}
	return nil
}

// Close flushes and releases the underlying file handle. Idempotent and
// safe to call more than once or in any order relative to other Writers.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	if err := w.w.Flush(); err != nil {
		w.f.Close()
		return corerr.IO(w.sampleName, err)
	}
	if err := w.f.Close(); err != nil {
		return corerr.IO(w.sampleName, err)
	}
	return nil
}
