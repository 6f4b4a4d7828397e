//go:build !gosseract

package ocr

import "errors"

// ErrGosseractUnavailable is returned when the binary was built without the gosseract tag
var ErrGosseractUnavailable = errors.New("gosseract engine not compiled in (build with -tags gosseract)")

// NewGosseractOCR reports that the in-process engine is unavailable in this build
func NewGosseractOCR(language string) (Engine, error) {
	return nil, ErrGosseractUnavailable
}
