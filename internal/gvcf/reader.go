// Package gvcf provides forward-only GVCF reading and per-target GVCF
// writing: a header/body split with transparent gzip and per-line error
// wrapping on the read side, a buffered bufio.Writer with the header
// emitted once before the first record on the write side.
package gvcf

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/maize-genetics/recomb-gvcf/internal/corerr"
)

// Reader yields Records from a GVCF file in file order. It is
// non-restartable: once Next returns nil, nil (EOF) or an error, the
// Reader must be closed and not reused.
type Reader struct {
	file       *os.File
	gzipReader *gzip.Reader
	scanner    *bufio.Scanner
	path       string
	lineNumber int
	sampleName string
	done       bool
}

// NewReader opens path for forward-only GVCF reading. Gzip is detected
// transparently regardless of file extension.
func NewReader(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, corerr.IO(path, err)
	}

	r := &Reader{file: f, path: path}

	var reader io.Reader = f
	magic := make([]byte, 2)
	n, _ := io.ReadFull(f, magic)
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		f.Close()
		return nil, corerr.IO(path, err)
	}
	if n == 2 && magic[0] == 0x1f && magic[1] == 0x8b {
		gz, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, corerr.IO(path, err)
		}
		r.gzipReader = gz
		reader = gz
	}

	r.scanner = bufio.NewScanner(reader)
	buf := make([]byte, 0, 64*1024)
	r.scanner.Buffer(buf, 16*1024*1024)

	if err := r.parseHeader(); err != nil {
		r.Close()
		return nil, err
	}

	return r, nil
}

func (r *Reader) parseHeader() error {
	for r.scanner.Scan() {
		r.lineNumber++
		line := r.scanner.Text()

		if strings.HasPrefix(line, "##") {
			continue
		}
		if strings.HasPrefix(line, "#CHROM") {
			fields := strings.Split(line, "\t")
			if len(fields) > 9 {
				r.sampleName = fields[9]
			}
			return nil
		}
		return corerr.Malformed(r.path, r.lineNumber, errUnexpectedLine)
	}
	if err := r.scanner.Err(); err != nil {
		return corerr.IO(r.path, err)
	}
	return corerr.Malformed(r.path, r.lineNumber, errNoChromLine)
}

// SampleName returns the sample name from the #CHROM header line. The
// recombination writer ignores this; it names output columns after the
// target, not the source sample.
func (r *Reader) SampleName() string { return r.sampleName }

// Next returns the next Record in file order, or nil, nil at EOF.
// Malformed lines return a *corerr.Error of KindMalformed.
func (r *Reader) Next() (*Record, error) {
	if r.done {
		return nil, nil
	}
	if !r.scanner.Scan() {
		r.done = true
		if err := r.scanner.Err(); err != nil {
			return nil, corerr.IO(r.path, err)
		}
		return nil, nil
	}
	r.lineNumber++
	line := r.scanner.Text()
	if line == "" {
		return r.Next()
	}
	return r.parseLine(line)
}

func (r *Reader) parseLine(line string) (*Record, error) {
	fields := strings.Split(line, "\t")
	if len(fields) < 8 {
		return nil, corerr.Malformed(r.path, r.lineNumber, errTooFewColumns)
	}

	pos, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return nil, corerr.Malformed(r.path, r.lineNumber, errBadPosition)
	}

	ref := fields[3]
	alt := firstAllele(fields[4])

	end := pos + int64(len(ref)) - 1
	if endOverride, ok := parseEndInfo(fields[7]); ok {
		end = endOverride
	}

	rec := &Record{
		Contig:    fields[0],
		Start:     pos,
		End:       end,
		RefAllele: ref,
		AltAllele: alt,
	}

	if len(fields) >= 10 {
		rec.Genotype = extractGT(fields[8], fields[9])
	}

	return rec, nil
}

func firstAllele(altField string) string {
	if i := strings.IndexByte(altField, ','); i >= 0 {
		return altField[:i]
	}
	return altField
}

func parseEndInfo(info string) (int64, bool) {
	if info == "." || info == "" {
		return 0, false
	}
	for _, kv := range strings.Split(info, ";") {
		if !strings.HasPrefix(kv, "END=") {
			continue
		}
		v, err := strconv.ParseInt(kv[len("END="):], 10, 64)
		if err != nil {
			return 0, false
		}
		return v, true
	}
	return 0, false
}

func extractGT(format, sample string) string {
	formatKeys := strings.Split(format, ":")
	sampleVals := strings.Split(sample, ":")
	for i, k := range formatKeys {
		if k == "GT" && i < len(sampleVals) {
			return sampleVals[i]
		}
	}
	return ""
}

// Close releases the underlying file handle. Safe to call more than once.
func (r *Reader) Close() error {
	var err error
	if r.gzipReader != nil {
		err = r.gzipReader.Close()
		r.gzipReader = nil
	}
	if r.file != nil {
		if cerr := r.file.Close(); err == nil {
			err = cerr
		}
		r.file = nil
	}
	return err
}
