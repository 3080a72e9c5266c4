// Package scheduler запускает flows по cron-расписаниям из конфигурации.
//
// Структура:
//   - scheduler.go — Scheduler (Tick, Run)
//   - cron.go      — парсинг cron-выражений и вычисление следующего времени
//
// Использование:
//
//	sched, err := scheduler.New(scheduler.Config{
//	    Schedules: cfg.Schedules,
//	    Runner:    composer,
//	    Logger:    logger,
//	})
//
//	// Тик раз в секунду до отмены ctx
//	err = sched.Run(ctx)
//
// Flows выполняются последовательно в одной горутине: запуски не перекрываются,
// а расписание, ставшее due во время чужого запуска, выполнится на следующем тике.
package scheduler
