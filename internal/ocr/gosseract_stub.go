//go:build !gosseract

package ocr

import "errors"

// ErrClientEngineUnavailable is returned when the binary was built without
// the gosseract tag.
var ErrClientEngineUnavailable = errors.New("gosseract engine not compiled in (build with -tags gosseract)")

// NewClientEngine reports that the in-process engine is unavailable.
func NewClientEngine(lang, tessdataDir string) (Engine, error) {
	return nil, ErrClientEngineUnavailable
}
