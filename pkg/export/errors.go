package export

import (
	"errors"
	"fmt"
)

var (
	ErrSurfaceCreationFailed = errors.New("surface creation failed")
	ErrEncoderPrepareFailed  = errors.New("encoder prepare failed")
	ErrExtractorStartFailed  = errors.New("extractor start failed")
	ErrFrameDecodeFailed     = errors.New("frame decode failed")
	// ErrDrawCallbackFailed is any failure of the caller code:
	// the drawer, the hooks or the mixer.
	ErrDrawCallbackFailed = errors.New("draw callback failed")
	ErrEncodeFailed       = errors.New("encode failed")
	ErrFinalizeFailed     = errors.New("finalize failed")
)

// Error is the failure of an export.
// It matches its Kind with errors.Is and unwraps to the cause.
type Error struct {
	Kind error
	// Frame is the index of the failed frame or -1
	// when the export failed outside the frame loop.
	Frame int
	Err   error
}

func (e *Error) Error() string {
	if e.Frame < 0 {
		return fmt.Sprintf("export: %v: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("export: %v at frame %v: %v", e.Kind, e.Frame, e.Err)
}

func (e *Error) Unwrap() error        { return e.Err }
func (e *Error) Is(target error) bool { return target == e.Kind }

func fail(kind error, frame int, err error) *Error { return &Error{Kind: kind, Frame: frame, Err: err} }

// protect calls the caller code and turns its panics into errors.
func protect(f func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return f()
}
