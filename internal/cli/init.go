package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewInitCmd создаёт команду подготовки нового dataset.
func NewInitCmd(appFn AppFunc, outputFn OutputFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "init DATASET",
		Short: "Create the raw directory and a flow template for a dataset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFn(cmd.Context())
			if err != nil {
				return err
			}
			out := outputFn()

			res, err := app.Composer.Init(args[0])
			if err != nil {
				return err
			}

			if out.IsJSON() {
				out.JSON(map[string]string{
					"flow":      res.Flow,
					"raw_dir":   res.RawDir,
					"flow_path": res.FlowPath,
				})
				return nil
			}
			out.Success(fmt.Sprintf("Dataset %s initialized", args[0]))
			out.Info("  raw files: %s", res.RawDir)
			out.Info("  flow:      %s", res.FlowPath)
			out.Info("Next: put raw files into %s and run: myx flow %s", res.RawDir, res.Flow)
			return nil
		},
	}
}
