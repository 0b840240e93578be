package datasource

import (
	"context"
	"errors"
	"fmt"
)

var ErrEof = errors.New("EOF")

// Source yields raw observations one at a time. Values are passed on untyped; validation is
// left to the consumer. Next returns ErrEof once the source is exhausted.
type Source interface {
	Next(ctx context.Context) (any, error)
}

type Handler = func(context.Context, any) error

// Dispatch drains src into handler. It returns nil when the source is exhausted, the context
// error on cancellation and the first handler or source error otherwise, wrapped.
func Dispatch(ctx context.Context, src Source, handler Handler) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		value, err := src.Next(ctx)
		if errors.Is(err, ErrEof) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("error reading observation: %w", err)
		}

		if err := handler(ctx, value); err != nil {
			return fmt.Errorf("error handling observation %v: %w", value, err)
		}
	}
}
