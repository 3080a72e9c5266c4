package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/shaiso/Myx/internal/domain"
	"github.com/shaiso/Myx/internal/engine"
	"github.com/shaiso/Myx/internal/runner"
	"github.com/shaiso/Myx/internal/timewindow"
)

// errFullReplaceTreatment — full-replace имеет смысл только для flow.
var errFullReplaceTreatment = errors.New("--output-mode full-replace applies to flows only")

// NewRunCmd создаёт команду запуска одного treatment.
func NewRunCmd(appFn AppFunc, outputFn OutputFunc) *cobra.Command {
	var wf windowFlags
	var input, output, params string

	cmd := &cobra.Command{
		Use:   "run TREATMENT",
		Short: "Run a single treatment",
		Long: `Run one treatment on an input directory.

Examples:
  myx run copy --input datasets/sales/00_raw --output /tmp/out
  myx run clean --input in --output out --params '{"drop_na": true}' --last`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			window, mode, err := wf.parse()
			if err != nil {
				return err
			}
			if mode == domain.OutputFullReplace {
				return errFullReplaceTreatment
			}

			var provided map[string]any
			if params != "" {
				provided, err = engine.ParseParams([]byte(params))
				if err != nil {
					return fmt.Errorf("--params: %w", err)
				}
			}

			app, err := appFn(cmd.Context())
			if err != nil {
				return err
			}
			out := outputFn()

			req := runner.Request{
				Treatment: args[0],
				Input:     input,
				Output:    output,
				Params:    provided,
				Window:    window,
				Mode:      mode,
			}

			var outcome domain.Outcome
			var res timewindow.Resolution
			if wf.last {
				outcome, res, err = app.Runner.RunLast(cmd.Context(), req)
				outcome.Window = res.Window
			} else {
				outcome, err = app.Runner.Run(cmd.Context(), req)
				outcome.Window = window
			}
			if err != nil {
				return err
			}

			if out.IsJSON() {
				out.JSON(newRunResult(args[0], outcome))
				return nil
			}
			if outcome.IsNoOp() {
				out.Success(fmt.Sprintf("Treatment %s: nothing to do (%s)", args[0], outcome.Reason))
				return nil
			}
			if wf.last {
				out.Info("--last resolved to %s (%s)", formatWindow(res.Window), res.Kind)
			}
			out.Success(fmt.Sprintf("Treatment %s completed in %s",
				args[0], outcome.Duration.Round(time.Millisecond)))
			return nil
		},
	}

	cmd.Flags().StringVar(&input, "input", "", "Input directory")
	cmd.Flags().StringVar(&output, "output", "", "Output directory")
	cmd.Flags().StringVar(&params, "params", "", "Treatment params as a JSON object")
	wf.register(cmd, "append|replace")
	cmd.MarkFlagRequired("input")
	cmd.MarkFlagRequired("output")

	return cmd
}
