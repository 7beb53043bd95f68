package annotation

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/turtacn/keyip-molkit/pkg/errors"
)

// runBatch applies fn to every item with at most limit calls in flight and
// returns the results in input order.  The first failure cancels the rest and
// is reported with the 1-based record number.
func runBatch[T, R any](ctx context.Context, items []T, limit int, fn func(context.Context, T) (R, error)) ([]R, error) {
	out := make([]R, len(items))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, item := range items {
		i, item := i, item
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			r, err := fn(gctx, item)
			if err != nil {
				return errors.Wrap(err, errors.CodeUnknown, fmt.Sprintf("record %d", i+1))
			}
			out[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

//Personal.AI order the ending
