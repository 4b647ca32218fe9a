package service

import (
	"context"

	"github.com/rs/zerolog/log"
)

// step is one named unit of a lifecycle workflow with an optional compensating
// action. The compensation table is the step list itself: completed steps are
// undone in reverse when a later step fails.
type step struct {
	name       string
	run        func(ctx context.Context) error
	compensate func(ctx context.Context) error
}

// runSteps executes the steps in order. On the first failure it runs the
// compensating actions of every completed step in reverse order and returns the
// original error. Compensation errors are logged and swallowed: they must never
// mask the failure that triggered them, even if that means leaking remote state.
func runSteps(ctx context.Context, op string, steps []step) error {
	completed := make([]step, 0, len(steps))
	for _, st := range steps {
		if err := st.run(ctx); err != nil {
			for i := len(completed) - 1; i >= 0; i-- {
				c := completed[i]
				if c.compensate == nil {
					continue
				}
				if cerr := c.compensate(ctx); cerr != nil {
					log.Error().Err(cerr).
						Str("operation", op).
						Str("step", c.name).
						Msg("compensation failed; remote state may be leaked")
				}
			}
			return err
		}
		completed = append(completed, st)
	}
	return nil
}
