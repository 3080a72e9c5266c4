package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/shaiso/Myx/internal/domain"
	"github.com/shaiso/Myx/internal/watch"
)

// NewWatchCmd создаёт команду наблюдения за входом flow.
func NewWatchCmd(appFn AppFunc, outputFn OutputFunc) *cobra.Command {
	var debounce time.Duration
	var mode string

	cmd := &cobra.Command{
		Use:   "watch FLOW",
		Short: "Run a flow incrementally whenever its input changes",
		Long: `Watch the input directory of the flow's first step and run the flow
with --last after changes settle.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputMode, err := domain.ParseOutputMode(mode)
			if err != nil {
				return err
			}

			app, err := appFn(cmd.Context())
			if err != nil {
				return err
			}

			steps, err := app.Composer.Steps(args[0])
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("debounce") {
				debounce = app.Config.Watch.Debounce
			}

			w, err := watch.New(watch.Config{
				Runner:   app.Composer,
				Flow:     args[0],
				Dir:      steps[0].Input,
				Mode:     outputMode,
				Debounce: debounce,
				Logger:   app.Logger,
			})
			if err != nil {
				return err
			}

			outputFn().Info("Watching %s for flow %s (Ctrl+C to stop)", steps[0].Input, args[0])
			return runDaemon(cmd.Context(), app, w.Run)
		},
	}

	cmd.Flags().DurationVar(&debounce, "debounce", watch.DefaultDebounce, "Quiet period before a run")
	cmd.Flags().StringVar(&mode, "output-mode", "append", "Output mode: append|replace|full-replace")

	return cmd
}
