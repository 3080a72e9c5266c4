package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/shaiso/Myx/internal/domain"
	"github.com/shaiso/Myx/internal/flow"
	"github.com/shaiso/Myx/internal/timewindow"
)

// runResult — JSON представление результата flow или treatment.
type runResult struct {
	Name       string  `json:"name"`
	Status     string  `json:"status"`
	Reason     string  `json:"reason,omitempty"`
	Steps      int     `json:"steps,omitempty"`
	DurationMS float64 `json:"duration_ms"`
	From       *string `json:"from,omitempty"`
	To         *string `json:"to,omitempty"`
}

func newRunResult(name string, o domain.Outcome) runResult {
	r := runResult{
		Name:       name,
		Status:     string(o.Kind),
		Reason:     o.Reason,
		Steps:      o.Steps,
		DurationMS: float64(o.Duration.Microseconds()) / 1000,
	}
	if o.Window.From != nil {
		s := timewindow.FormatInstant(*o.Window.From)
		r.From = &s
	}
	if o.Window.To != nil {
		s := timewindow.FormatInstant(*o.Window.To)
		r.To = &s
	}
	return r
}

// NewFlowCmd создаёт команду запуска flow.
func NewFlowCmd(appFn AppFunc, outputFn OutputFunc) *cobra.Command {
	var wf windowFlags
	var sel flow.Selection

	cmd := &cobra.Command{
		Use:   "flow NAME",
		Short: "Run a flow",
		Long: `Run every step of a flow (or a selection of steps) in declared order.

Examples:
  myx flow sales --from 2026-01-01 --to 2026-01-31
  myx flow sales --last
  myx flow sales --step clean
  myx flow sales --from-step clean --to-step aggregate --output-mode full-replace`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			window, mode, err := wf.parse()
			if err != nil {
				return err
			}
			if err := sel.Validate(); err != nil {
				return err
			}

			app, err := appFn(cmd.Context())
			if err != nil {
				return err
			}
			out := outputFn()

			outcome, err := app.Composer.Run(cmd.Context(), flow.Request{
				Flow:      args[0],
				Window:    window,
				Mode:      mode,
				Last:      wf.last,
				Selection: sel,
			})
			if err != nil {
				return err
			}

			if out.IsJSON() {
				out.JSON(newRunResult(args[0], outcome))
				return nil
			}
			if outcome.IsNoOp() {
				out.Success(fmt.Sprintf("Flow %s: nothing to do (%s)", args[0], outcome.Reason))
				return nil
			}
			if wf.last {
				out.Info("--last resolved to %s", formatWindow(outcome.Window))
			}
			out.Success(fmt.Sprintf("Flow %s completed: %d step(s) in %s",
				args[0], outcome.Steps, outcome.Duration.Round(time.Millisecond)))
			return nil
		},
	}

	wf.register(cmd, "append|replace|full-replace")
	cmd.Flags().StringVar(&sel.Step, "step", "", "Run only this step")
	cmd.Flags().StringVar(&sel.FromStep, "from-step", "", "First step of the range")
	cmd.Flags().StringVar(&sel.ToStep, "to-step", "", "Last step of the range")

	return cmd
}
