package cli

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/shaiso/Myx/internal/config"
	"github.com/shaiso/Myx/internal/domain"
	"github.com/shaiso/Myx/internal/timewindow"
)

// Коды завершения.
const (
	ExitOK      = 0
	ExitFailure = 1
)

// AppFunc лениво собирает App после разбора флагов.
type AppFunc func(ctx context.Context) (*App, error)

// OutputFunc создаёт Output после разбора флагов.
type OutputFunc func() *Output

// NewRootCmd создаёт корневую команду myx и функцию освобождения ресурсов.
func NewRootCmd(version string) (*cobra.Command, func()) {
	var configPath string
	var jsonOutput bool
	var app *App

	rootCmd := &cobra.Command{
		Use:           "myx",
		Short:         "Myx — time-partitioned data pipelines",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: ./"+config.DefaultPath+")")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	appFn := func(ctx context.Context) (*App, error) {
		if app != nil {
			return app, nil
		}
		cfg, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		a, err := NewApp(ctx, cfg, rootCmd.ErrOrStderr())
		if err != nil {
			return nil, err
		}
		app = a
		return app, nil
	}
	outputFn := func() *Output {
		return NewOutputTo(jsonOutput, rootCmd.OutOrStdout(), rootCmd.ErrOrStderr())
	}

	rootCmd.AddCommand(
		NewFlowCmd(appFn, outputFn),
		NewRunCmd(appFn, outputFn),
		NewListCmd(appFn, outputFn),
		NewInitCmd(appFn, outputFn),
		NewStatusCmd(appFn, outputFn),
		NewScheduleCmd(appFn, outputFn),
		NewWatchCmd(appFn, outputFn),
	)

	cleanup := func() {
		if app == nil {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		app.PushMetrics(ctx)
		if err := app.Close(); err != nil {
			app.Logger.Warn("close failed", "error", err)
		}
	}
	return rootCmd, cleanup
}

// Execute выполняет myx с аргументами процесса и возвращает код завершения.
func Execute(ctx context.Context, version string, args []string) int {
	rootCmd, cleanup := NewRootCmd(version)
	defer cleanup()

	rootCmd.SetArgs(args)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		NewOutputTo(false, rootCmd.OutOrStdout(), rootCmd.ErrOrStderr()).Error(err.Error())
		return ExitFailure
	}
	return ExitOK
}

// errLastWithWindow — --last вместе с --from/--to.
var errLastWithWindow = errors.New("--last is mutually exclusive with --from/--to")

// windowFlags — общие флаги окна времени и режима вывода (flow и run).
type windowFlags struct {
	from string
	to   string
	mode string
	last bool
}

func (f *windowFlags) register(cmd *cobra.Command, modes string) {
	cmd.Flags().StringVar(&f.from, "from", "", "Start of time window (ISO 8601)")
	cmd.Flags().StringVar(&f.to, "to", "", "End of time window (ISO 8601)")
	cmd.Flags().StringVar(&f.mode, "output-mode", "append", "Output mode: "+modes)
	cmd.Flags().BoolVar(&f.last, "last", false, "Incremental: process only the delta since last output")
}

// parse проверяет взаимоисключения и разбирает окно и режим.
func (f *windowFlags) parse() (domain.TimeWindow, domain.OutputMode, error) {
	if f.last && (f.from != "" || f.to != "") {
		return domain.TimeWindow{}, "", errLastWithWindow
	}
	w, err := timewindow.ParseWindow(f.from, f.to)
	if err != nil {
		return domain.TimeWindow{}, "", err
	}
	mode, err := domain.ParseOutputMode(f.mode)
	if err != nil {
		return domain.TimeWindow{}, "", err
	}
	return w, mode, nil
}

// formatWindow — окно для сообщений CLI; открытая граница — "…".
func formatWindow(w domain.TimeWindow) string {
	bound := func(t *time.Time) string {
		if t == nil {
			return "…"
		}
		return timewindow.FormatInstant(*t)
	}
	return bound(w.From) + " .. " + bound(w.To)
}
