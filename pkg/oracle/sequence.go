package oracle

import (
	"context"
)

// Sequence replays a fixed list of progress values, repeating the last one
// once exhausted. It is mostly useful as a deterministic stand-in.
type Sequence struct {
	values []float64
	calls  int
}

var _ Oracle = (*Sequence)(nil)

func NewSequence(values ...float64) *Sequence {
	return &Sequence{values: values}
}

func (s *Sequence) Progress(ctx context.Context) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if len(s.values) == 0 {
		return 0, ErrOracleUnavailable
	}
	i := min(s.calls, len(s.values)-1)
	s.calls++
	return s.values[i], nil
}

// Calls returns how many times Progress was called.
func (s *Sequence) Calls() int {
	return s.calls
}
