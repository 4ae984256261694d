package utils

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// DefaultFanOutLimit bounds how many store calls one request runs at once.
const DefaultFanOutLimit = 8

// Settled is the outcome of one task run by SettleAll.
type Settled[T any] struct {
	Value T
	Err   error
}

// SettleAll runs fn for every input concurrently (at most limit at a time)
// and waits for all of them. A failing task never cancels its siblings; its
// error is recorded in the result at the same index as its input.
func SettleAll[In, Out any](ctx context.Context, inputs []In, limit int, fn func(ctx context.Context, in In) (Out, error)) []Settled[Out] {
	results := make([]Settled[Out], len(inputs))
	if len(inputs) == 0 {
		return results
	}
	if limit <= 0 {
		limit = DefaultFanOutLimit
	}

	var g errgroup.Group
	g.SetLimit(limit)

	for i, in := range inputs {
		g.Go(func() error {
			v, err := fn(ctx, in)
			results[i] = Settled[Out]{Value: v, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// FirstError returns the first recorded error, if any.
func FirstError[T any](results []Settled[T]) error {
	for _, r := range results {
		if r.Err != nil {
			return r.Err
		}
	}
	return nil
}
