package cli

import (
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/shaiso/Myx/internal/scheduler"
)

// NewScheduleCmd создаёт команду планировщика.
//
// Без подкоманды запускает демон, выполняющий расписания из конфигурации.
func NewScheduleCmd(appFn AppFunc, outputFn OutputFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run scheduled flows from config",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFn(cmd.Context())
			if err != nil {
				return err
			}

			s, err := scheduler.New(scheduler.Config{
				Schedules: app.Config.Schedules,
				Runner:    app.Composer,
				Logger:    app.Logger,
			})
			if err != nil {
				return err
			}
			if len(s.Schedules()) == 0 {
				outputFn().Info("No schedules configured")
			}

			return runDaemon(cmd.Context(), app, s.Run)
		},
	}

	cmd.AddCommand(newScheduleListCmd(appFn, outputFn))

	return cmd
}

func newScheduleListCmd(appFn AppFunc, outputFn OutputFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List configured schedules with their next due time",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFn(cmd.Context())
			if err != nil {
				return err
			}
			out := outputFn()

			s, err := scheduler.New(scheduler.Config{
				Schedules: app.Config.Schedules,
				Runner:    app.Composer,
				Logger:    app.Logger,
			})
			if err != nil {
				return err
			}

			schedules := s.Schedules()
			headers := []string{"NAME", "FLOW", "CRON", "TIMEZONE", "MODE", "LAST", "NEXT_DUE"}
			rows := make([][]string, len(schedules))
			for i, sc := range schedules {
				next := ""
				if sc.NextDueAt != nil {
					next = sc.NextDueAt.Format(time.RFC3339)
				}
				rows[i] = []string{
					sc.Name, sc.Flow, sc.CronExpr, sc.Timezone, sc.OutputMode,
					strconv.FormatBool(sc.Last), next,
				}
			}

			out.Print(headers, rows, schedules)
			if !out.IsJSON() && len(schedules) == 0 {
				out.Info("No schedules configured")
			}
			return nil
		},
	}
}
