package reinsert

import (
	"errors"
	"fmt"
)

// ErrRegionCountMismatch reports positionally misaligned inputs. Alignment
// is a caller contract; the engine fails fast instead of silently truncating.
var ErrRegionCountMismatch = errors.New("source and translated region counts differ")

// DecodeError reports an unreadable or unsupported source image. It is fatal
// for the asset; the engine makes no attempt at partial recovery.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// IOError reports a failure writing the localized output. No partial file is
// left behind in a valid state.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }
