package domain

import "time"

// Schedule — расписание автоматического запуска flow.
//
// Расписания задаются в конфигурации (секция schedules) и
// выполняются командой myx schedule последовательно, без перекрытия.
type Schedule struct {
	// Name — имя расписания для логов.
	Name string `yaml:"name" json:"name"`

	// Flow — имя запускаемого flow.
	Flow string `yaml:"flow" json:"flow"`

	// CronExpr — cron-выражение.
	// Формат: "минуты часы дни месяцы дни_недели"
	// Примеры:
	//   "0 9 * * *"     — каждый день в 9:00
	//   "*/15 * * * *"  — каждые 15 минут
	CronExpr string `yaml:"cron" json:"cron"`

	// Timezone — часовой пояс для вычисления времени.
	// По умолчанию: "UTC".
	Timezone string `yaml:"timezone" json:"timezone,omitempty"`

	// OutputMode — режим вывода (append по умолчанию).
	OutputMode string `yaml:"output_mode" json:"output_mode,omitempty"`

	// Last — инкрементальный режим (--last).
	Last bool `yaml:"last" json:"last,omitempty"`

	// NextDueAt — время следующего запуска (вычисляется scheduler'ом).
	NextDueAt *time.Time `yaml:"-" json:"next_due_at,omitempty"`

	// LastRunAt — время последнего запуска.
	LastRunAt *time.Time `yaml:"-" json:"last_run_at,omitempty"`
}

// IsDue проверяет, пора ли запускать.
func (s *Schedule) IsDue(now time.Time) bool {
	if s.NextDueAt == nil {
		return false
	}
	return now.After(*s.NextDueAt) || now.Equal(*s.NextDueAt)
}

// RecordRun записывает информацию о запуске.
func (s *Schedule) RecordRun(ranAt, nextDue time.Time) {
	s.LastRunAt = &ranAt
	s.NextDueAt = &nextDue
}
