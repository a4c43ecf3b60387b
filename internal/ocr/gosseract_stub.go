//go:build !cgo || !linux

package ocr

import "errors"

// Without CGO the native bindings cannot be linked; the factory falls
// through to the CLI backend.
func newGosseractEngine() (Engine, error) {
	return nil, errors.New("gosseract requires cgo on linux")
}
