package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/hashicorp/go-multierror"
)

type step struct {
	name string
	fn   func(context.Context) error
}

// shutdown runs cleanup steps in reverse registration order and reports
// every failure, not only the first.
type shutdown struct {
	mu    sync.Mutex
	steps []step
	done  bool
}

func (s *shutdown) add(name string, fn func(context.Context) error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.steps = append(s.steps, step{name: name, fn: fn})
}

func (s *shutdown) run(ctx context.Context) error {
	s.mu.Lock()
	if s.done {
		s.mu.Unlock()
		return nil
	}
	s.done = true
	steps := s.steps
	s.steps = nil
	s.mu.Unlock()

	var errs *multierror.Error
	for i := len(steps) - 1; i >= 0; i-- {
		if err := steps[i].fn(ctx); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("%s: %w", steps[i].name, err))
		}
	}
	return errs.ErrorOrNil()
}
