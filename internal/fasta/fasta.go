// Package fasta provides read-only random access to a reference genome
// keyed by contig name: a header-delimited scan, gzip-transparent, that
// accumulates each contig's sequence before storing it.
package fasta

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/maize-genetics/recomb-gvcf/internal/corerr"
)

// Reference is an immutable, loaded-once map of contig name to its full
// sequence, case preserved exactly as read.
type Reference struct {
	sequences map[string]string
}

// Load reads a FASTA file into memory in full. A path ending in ".gz" is
// read as gzip-compressed; any other path is read as plain text.
func Load(path string) (*Reference, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, corerr.IO(path, err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, corerr.IO(path, err)
		}
		defer gz.Close()
		r = gz
	}

	seqs := make(map[string]string)
	scanner := bufio.NewScanner(r)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 64*1024*1024)

	var currentID string
	var body strings.Builder

	flush := func() {
		if currentID != "" {
			seqs[currentID] = body.String()
		}
		body.Reset()
	}

	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, ">") {
			flush()
			currentID = parseHeader(line)
			continue
		}
		body.WriteString(strings.TrimSpace(line))
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, corerr.IO(path, err)
	}
	return &Reference{sequences: seqs}, nil
}

// parseHeader extracts the contig name: everything up to the first
// whitespace run after the leading '>'.
func parseHeader(header string) string {
	header = strings.TrimPrefix(header, ">")
	if idx := strings.IndexAny(header, " \t"); idx != -1 {
		return header[:idx]
	}
	return header
}

// Base returns the single reference base at contig:pos (1-based), or
// false if the contig is unknown or pos is out of range.
func (r *Reference) Base(contig string, pos int64) (string, bool) {
	seq, ok := r.sequences[contig]
	if !ok || pos < 1 || pos > int64(len(seq)) {
		return "", false
	}
	return string(seq[pos-1]), true
}
