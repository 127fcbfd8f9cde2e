package gvcf

import (
	"os"
	"path/filepath"

	"github.com/maize-genetics/recomb-gvcf/internal/corerr"
)

// IndexDonorFiles maps donor name -> absolute GVCF path for every
// donor-matching file directly under dir.
func IndexDonorFiles(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, corerr.IO(dir, err)
	}
	index := make(map[string]string)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		donor, ok := DonorName(e.Name())
		if !ok {
			continue
		}
		index[donor] = filepath.Join(dir, e.Name())
	}
	return index, nil
}
