package cli

import (
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

// NewStatusCmd создаёт команду обзора выходов всех flows.
func NewStatusCmd(appFn AppFunc, outputFn OutputFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show output files per flow step",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFn(cmd.Context())
			if err != nil {
				return err
			}
			out := outputFn()

			statuses, err := app.Composer.Status()
			if err != nil {
				return err
			}

			var rows [][]string
			for _, fs := range statuses {
				if fs.Error != "" {
					rows = append(rows, []string{fs.Name, "-", "-", "-", "error: " + fs.Error})
					continue
				}
				state := "stale"
				if fs.UpToDate {
					state = "up-to-date"
				}
				for _, s := range fs.Steps {
					modified := "-"
					if s.LastModified != nil {
						modified = s.LastModified.UTC().Format(time.DateTime)
					}
					step := s.Treatment
					if s.External {
						step += " (external)"
					}
					rows = append(rows, []string{fs.Name, step, strconv.Itoa(s.Files), modified, state})
				}
			}

			out.Print([]string{"FLOW", "STEP", "FILES", "LAST_MODIFIED", "STATE"}, rows, statuses)
			return nil
		},
	}
}
