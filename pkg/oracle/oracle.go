package oracle

import (
	"context"
	"math"

	"emperror.dev/errors"
)

// EpochLength is the number of slots in one epoch.
const EpochLength = 432000

const (
	ErrOracleUnavailable = errors.Sentinel("progress oracle unavailable")
	ErrOracleParse       = errors.Sentinel("could not parse progress oracle output")
)

// Oracle reports fractional epoch progress.
type Oracle interface {
	Progress(ctx context.Context) (float64, error)
}

// Func adapts a function to the Oracle interface.
type Func func(ctx context.Context) (float64, error)

func (f Func) Progress(ctx context.Context) (float64, error) {
	return f(ctx)
}

// Progress converts a slot into epoch progress.
func Progress(slot float64) float64 {
	return slot / EpochLength
}

// EndPoint returns the progress at which a run started at start stops: a
// tenth of an epoch past the end of the current epoch.
func EndPoint(start float64) float64 {
	return math.Ceil(start) + 0.1
}
