package cli

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// runDaemon выполняет loop вместе с /metrics сервером до отмены ctx.
// Пустой адрес — без HTTP сервера.
func runDaemon(ctx context.Context, app *App, loop func(ctx context.Context) error) error {
	g, ctx := errgroup.WithContext(ctx)

	if addr := app.Config.Metrics.Listen; addr != "" {
		g.Go(func() error {
			return app.Metrics.Serve(ctx, addr, app.Logger)
		})
	}
	g.Go(func() error {
		return loop(ctx)
	})

	return g.Wait()
}
