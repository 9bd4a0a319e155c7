package srv

import (
	"context"
	"sync"

	"github.com/sandevgo/jarvis/pkg/log"
)

type Service interface {
	Start(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

// Foreground services end the process when their Start returns,
// e.g. an interactive prompt the user closed.
type Foreground interface {
	Foreground()
}

// StartServices runs every service in its own goroutine. A failed service or a
// finished foreground service cancels the shared context via stop.
func StartServices(ctx context.Context, stop context.CancelFunc, services []Service) *sync.WaitGroup {
	logger := log.FromCtx(ctx)
	var wg sync.WaitGroup

	for _, service := range services {
		wg.Add(1)
		go func(service Service) {
			defer wg.Done()

			err := service.Start(ctx)
			if err != nil {
				logger.Error().Err(err).Msgf("%T failed", service)
				stop()
				return
			}
			if _, ok := service.(Foreground); ok {
				stop()
			}
		}(service)
	}
	return &wg
}

// ShutdownServices blocks until ctx is done and then shuts services down in reverse order.
func ShutdownServices(ctx context.Context, services []Service) {
	<-ctx.Done()
	shutdownCtx := context.WithoutCancel(ctx)
	for i := len(services) - 1; i >= 0; i-- {
		if err := services[i].Shutdown(shutdownCtx); err != nil {
			log.FromCtx(ctx).Error().Err(err).Msgf("%T failed to shutdown", services[i])
		}
	}
}
