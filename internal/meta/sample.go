package meta

import (
	_ "embed"

	"gcfpack/internal/fileutil"
)

//go:embed sample_description.json
var sampleDescription []byte

// Sample returns an example description document users can copy and edit.
func Sample() []byte {
	cp := make([]byte, len(sampleDescription))
	copy(cp, sampleDescription)
	return cp
}

// WriteSample writes the example description to path atomically.
func WriteSample(path string) error {
	return fileutil.WriteFileAtomic(path, sampleDescription, 0o644)
}
