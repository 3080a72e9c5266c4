// myx — движок конвейеров обработки данных, разбитых по времени.
//
// Использование:
//
//	myx [--config FILE] [--json] <command> [flags]
//
// Команды:
//
//	flow      Запуск flow
//	run       Запуск одного treatment
//	list      Flows, treatments, шаги flow
//	init      Новый dataset
//	status    Состояние выходов
//	schedule  Демон расписаний
//	watch     Запуск при изменении входа
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/shaiso/Myx/internal/cli"
)

// version задаётся через ldflags при сборке.
var version = "dev"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := cli.Execute(ctx, version, os.Args[1:])
	cancel()
	os.Exit(code)
}
