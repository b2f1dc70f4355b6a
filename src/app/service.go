package app

import (
	"context"
	"errors"
)

type Service interface {
	Run(ctx context.Context) error
}

// ServiceFunc adapts a function to Service
type ServiceFunc func(ctx context.Context) error

func (f ServiceFunc) Run(ctx context.Context) error { return f(ctx) }

func actor(ctx context.Context, service Service) (func() error, func(err error)) {
	ctx, cancel := context.WithCancelCause(ctx)

	return func() error {
			return service.Run(ctx)
		}, func(err error) {
			cancel(err)
		}
}

// IsCleanShutdown reports whether err ends the process without failure
func IsCleanShutdown(err error) bool {
	return err == nil || errors.Is(err, ErrInterrupted) || errors.Is(err, context.Canceled)
}
