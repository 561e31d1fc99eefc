// Package cleanup rolls back the side effects of a partially completed
// operation, such as a container that was built but never recorded.
package cleanup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/devc/devc/pkg/logging"
)

// Func undoes one step.
type Func func(context.Context) error

// Cleaner collects rollback steps and runs them last-in first-out.
type Cleaner struct {
	mu     sync.Mutex
	steps  []step
	logger *slog.Logger
}

type step struct {
	name string
	fn   Func
}

func New(logger *slog.Logger) *Cleaner {
	if logger == nil {
		logger = logging.Default()
	}
	return &Cleaner{logger: logger}
}

// Add registers fn to run on rollback.
func (c *Cleaner) Add(name string, fn Func) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.steps = append(c.steps, step{name: name, fn: fn})
}

// Len returns the number of pending steps.
func (c *Cleaner) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.steps)
}

// Run executes and clears the pending steps. Every step runs even if an
// earlier one fails, and cancellation of ctx does not stop them.
func (c *Cleaner) Run(ctx context.Context) error {
	c.mu.Lock()
	steps := c.steps
	c.steps = nil
	c.mu.Unlock()

	ctx = context.WithoutCancel(ctx)

	var errs []error
	for i := len(steps) - 1; i >= 0; i-- {
		s := steps[i]
		c.logger.Debug("rolling back", logging.WithField("step", s.name))
		if err := s.fn(ctx); err != nil {
			c.logger.Error("rollback failed",
				logging.WithField("step", s.name),
				logging.WithError(err))
			errs = append(errs, fmt.Errorf("%s: %w", s.name, err))
		}
	}
	return errors.Join(errs...)
}

// RunOnError runs the pending steps if *errPtr is non-nil and joins any
// rollback failure into it. Meant to be deferred with a named error result.
func (c *Cleaner) RunOnError(ctx context.Context, errPtr *error) {
	if *errPtr == nil {
		return
	}
	if err := c.Run(ctx); err != nil {
		*errPtr = errors.Join(*errPtr, fmt.Errorf("rollback: %w", err))
	}
}
