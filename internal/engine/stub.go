package engine

import (
	"context"

	"github.com/tmadell/gdose/internal/model"
)

// StubEngine is a test double that returns a canned result without
// running any transport. It records the model it was given so tests
// can assert on what would have been exported.
type StubEngine struct {
	// Result is returned from Run when Err is nil.
	Result *Result

	// Err, when set, is returned from Run.
	Err error

	// LastModel is the model passed to the most recent Run call.
	LastModel *model.Model

	// Calls counts Run invocations.
	Calls int
}

func (s *StubEngine) Run(ctx context.Context, m *model.Model) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.LastModel = m
	s.Calls++
	if s.Err != nil {
		return nil, s.Err
	}
	return s.Result, nil
}
