package cli

import (
	"errors"
	"strconv"

	"github.com/spf13/cobra"
)

// errFlowRequired — list steps без --flow.
var errFlowRequired = errors.New("--flow is required")

// NewListCmd создаёт группу команд просмотра flows, treatments и шагов.
func NewListCmd(appFn AppFunc, outputFn OutputFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List flows, treatments or flow steps",
	}

	cmd.AddCommand(
		newListFlowsCmd(appFn, outputFn),
		newListTreatmentsCmd(appFn, outputFn),
		newListStepsCmd(appFn, outputFn),
	)

	return cmd
}

func newListFlowsCmd(appFn AppFunc, outputFn OutputFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "flows",
		Short: "List flows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFn(cmd.Context())
			if err != nil {
				return err
			}
			out := outputFn()

			names, err := app.Composer.ListFlows()
			if err != nil {
				return err
			}

			type flowItem struct {
				Name        string `json:"name"`
				Dataset     string `json:"dataset,omitempty"`
				Description string `json:"description,omitempty"`
				Steps       int    `json:"steps"`
			}
			items := make([]flowItem, 0, len(names))
			rows := make([][]string, 0, len(names))
			for _, name := range names {
				item := flowItem{Name: name}
				if spec, err := app.Composer.Load(name); err == nil {
					item.Dataset = spec.Dataset
					item.Description = spec.Description
					item.Steps = len(spec.Steps)
				} else {
					app.Logger.Warn("unreadable flow", "flow", name, "error", err)
				}
				items = append(items, item)
				rows = append(rows, []string{item.Name, item.Dataset, strconv.Itoa(item.Steps), item.Description})
			}

			out.Print([]string{"NAME", "DATASET", "STEPS", "DESCRIPTION"}, rows, items)
			return nil
		},
	}
}

func newListTreatmentsCmd(appFn AppFunc, outputFn OutputFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "treatments",
		Short: "List available treatments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFn(cmd.Context())
			if err != nil {
				return err
			}
			out := outputFn()

			entries, err := app.Registry.Names()
			if err != nil {
				return err
			}

			rows := make([][]string, len(entries))
			for i, e := range entries {
				source := "local"
				if e.Builtin {
					source = "builtin"
				}
				rows[i] = []string{e.Name, source, e.Description}
			}

			out.Print([]string{"NAME", "SOURCE", "DESCRIPTION"}, rows, entries)
			return nil
		},
	}
}

func newListStepsCmd(appFn AppFunc, outputFn OutputFunc) *cobra.Command {
	var flowName string

	cmd := &cobra.Command{
		Use:   "steps",
		Short: "List the resolved steps of a flow",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if flowName == "" {
				return errFlowRequired
			}
			app, err := appFn(cmd.Context())
			if err != nil {
				return err
			}
			out := outputFn()

			steps, err := app.Composer.Steps(flowName)
			if err != nil {
				return err
			}

			type stepItem struct {
				Index     int    `json:"index"`
				Treatment string `json:"treatment"`
				Input     string `json:"input"`
				Output    string `json:"output"`
			}
			items := make([]stepItem, len(steps))
			rows := make([][]string, len(steps))
			for i, s := range steps {
				items[i] = stepItem{Index: s.Index, Treatment: s.Treatment, Input: s.Input, Output: s.Output}
				rows[i] = []string{strconv.Itoa(s.Index), s.Treatment, s.Input, s.Output}
			}

			out.Print([]string{"#", "TREATMENT", "INPUT", "OUTPUT"}, rows, items)
			return nil
		},
	}

	cmd.Flags().StringVar(&flowName, "flow", "", "Flow name")

	return cmd
}
