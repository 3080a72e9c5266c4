package treatment

import (
	"context"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"
)

// localEntryPoint — функция, которую обязан объявить run.go:
//
//	func Run(inputDir, outputDir string, params map[string]any) error
const localEntryPoint = "main.Run"

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// loadLocal интерпретирует run.go и возвращает его Run как Func.
func loadLocal(path string) (Func, error) {
	code, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ErrConfig, path, err)
	}
	if len(strings.TrimSpace(string(code))) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", ErrConfig, path)
	}

	i := interp.New(interp.Options{})
	if err := i.Use(stdlib.Symbols); err != nil {
		return nil, fmt.Errorf("%w: load stdlib symbols: %w", ErrConfig, err)
	}
	if _, err := i.EvalPath(path); err != nil {
		return nil, fmt.Errorf("%w: interpret %s: %w", ErrConfig, path, err)
	}

	fn, err := i.Eval(localEntryPoint)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must define func Run(inputDir, outputDir string, params map[string]any) error: %w",
			ErrConfig, path, err)
	}
	if err := checkSignature(fn); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrConfig, path, err)
	}

	return func(ctx context.Context, inputDir, outputDir string, params map[string]any) (err error) {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if params == nil {
			params = map[string]any{}
		}
		defer func() {
			if p := recover(); p != nil {
				err = fmt.Errorf("panic in %s: %v", path, p)
			}
		}()

		out := fn.Call([]reflect.Value{
			reflect.ValueOf(inputDir),
			reflect.ValueOf(outputDir),
			reflect.ValueOf(params),
		})
		if e, ok := out[0].Interface().(error); ok && e != nil {
			return e
		}
		return nil
	}, nil
}

func checkSignature(fn reflect.Value) error {
	if !fn.IsValid() || fn.Kind() != reflect.Func {
		return errors.New("Run is not a function")
	}
	t := fn.Type()
	if t.NumIn() != 3 || t.NumOut() != 1 {
		return errors.New("Run must take (string, string, map[string]any) and return error")
	}
	if t.In(0).Kind() != reflect.String || t.In(1).Kind() != reflect.String {
		return errors.New("Run directories must be strings")
	}
	if t.In(2).Kind() != reflect.Map || t.In(2).Key().Kind() != reflect.String {
		return errors.New("Run params must be map[string]any")
	}
	if !t.Out(0).Implements(errorType) {
		return errors.New("Run must return error")
	}
	return nil
}
