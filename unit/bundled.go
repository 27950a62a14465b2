package unit

import (
	_ "embed"
	"fmt"
	"sync"
)

//go:embed units.yaml
var bundledTable []byte

var (
	bundledOnce sync.Once
	bundled     *Converter
	bundledErr  error
)

// Bundled returns the converter built from the embedded unit table. It is
// constructed once and shared; callers must treat it as read-only.
func Bundled() (*Converter, error) {
	bundledOnce.Do(func() {
		f, err := ParseFile(bundledTable)
		if err != nil {
			bundledErr = fmt.Errorf("bundled units: %w", err)
			return
		}
		b := NewBuilder()
		if err := b.AddFile(f); err != nil {
			bundledErr = fmt.Errorf("bundled units: %w", err)
			return
		}
		bundled, bundledErr = b.Build()
	})
	return bundled, bundledErr
}

// MustBundled is Bundled for callers that treat a broken embedded table as a
// programming error.
func MustBundled() *Converter {
	c, err := Bundled()
	if err != nil {
		panic(err)
	}
	return c
}
