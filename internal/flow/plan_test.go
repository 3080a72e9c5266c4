package flow

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/shaiso/Myx/internal/domain"
	"github.com/shaiso/Myx/internal/engine"
)

func TestNewPlan(t *testing.T) {
	spec, err := engine.ParseFlow([]byte(`{
		"name": "daily",
		"dataset": "VALVO",
		"from": "2026-01-25T00:00:00Z",
		"params": {"to": "2026-01-26T00:00:00Z", "tz": "UTC", "rate": 10},
		"steps": [
			{"treatment": "parse"},
			{"treatment": "clean", "output": "21_custom", "params": {"rate": 5}},
			{"treatment": "mystery", "input": "/abs/in", "output": "x"}
		]
	}`))
	if err != nil {
		t.Fatalf("ParseFlow() error = %v", err)
	}

	plan, err := NewPlan(spec, "data")
	if err != nil {
		t.Fatalf("NewPlan() error = %v", err)
	}

	wantFrom := time.Date(2026, 1, 25, 0, 0, 0, 0, time.UTC)
	wantTo := time.Date(2026, 1, 26, 0, 0, 0, 0, time.UTC)
	if plan.Window.From == nil || !plan.Window.From.Equal(wantFrom) {
		t.Errorf("Window.From = %v, want %v", plan.Window.From, wantFrom)
	}
	if plan.Window.To == nil || !plan.Window.To.Equal(wantTo) {
		t.Errorf("Window.To = %v, want %v", plan.Window.To, wantTo)
	}

	want := []Step{
		{
			Index:     1,
			Treatment: "parse",
			Input:     filepath.Join("data", "VALVO", "00_raw"),
			Output:    filepath.Join("data", "VALVO", "10_parsed"),
			Params:    map[string]any{"tz": "UTC", "rate": int64(10)},
		},
		{
			Index:     2,
			Treatment: "clean",
			Input:     filepath.Join("data", "VALVO", "10_parsed"),
			Output:    filepath.Join("data", "VALVO", "21_custom"),
			Params:    map[string]any{"tz": "UTC", "rate": int64(5)},
		},
		{
			Index:     3,
			Treatment: "mystery",
			Input:     "/abs/in",
			Output:    filepath.Join("data", "VALVO", "x"),
			Params:    map[string]any{"tz": "UTC", "rate": int64(10)},
		},
	}

	// числа из JSON нормализуются при слиянии со схемой; здесь сравниваем нормализованные
	for i := range plan.Steps {
		plan.Steps[i].Params = engine.Normalize(plan.Steps[i].Params).(map[string]any)
	}
	if diff := cmp.Diff(want, plan.Steps); diff != "" {
		t.Errorf("NewPlan() steps mismatch (-want +got):\n%s", diff)
	}
}

func TestNewPlan_Errors(t *testing.T) {
	tests := []struct {
		name    string
		spec    *domain.FlowSpec
		wantErr error
	}{
		{
			name:    "no steps",
			spec:    &domain.FlowSpec{Name: "x"},
			wantErr: engine.ErrEmptySteps,
		},
		{
			name: "unknown convention",
			spec: &domain.FlowSpec{Name: "x", Dataset: "D", Steps: []domain.StepSpec{
				{Treatment: "mystery"},
			}},
			wantErr: ErrUnknownConvention,
		},
		{
			name: "no dataset and no paths",
			spec: &domain.FlowSpec{Name: "x", Steps: []domain.StepSpec{
				{Treatment: "parse", Input: "in"},
			}},
			wantErr: ErrMissingPath,
		},
		{
			name: "inverted window",
			spec: &domain.FlowSpec{
				Name:   "x",
				Params: map[string]any{"from": "2026-02-01", "to": "2026-01-01"},
				Steps:  []domain.StepSpec{{Treatment: "parse", Input: "a", Output: "b"}},
			},
			wantErr: domain.ErrInvalidWindow,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPlan(tt.spec, "data")
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("NewPlan() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewPlan_NoDatasetKeepsPaths(t *testing.T) {
	plan, err := NewPlan(&domain.FlowSpec{Name: "x", Steps: []domain.StepSpec{
		{Treatment: "parse", Input: "rel/in", Output: "rel/out"},
	}}, "data")
	if err != nil {
		t.Fatalf("NewPlan() error = %v", err)
	}
	if got := plan.Steps[0]; got.Input != "rel/in" || got.Output != "rel/out" {
		t.Errorf("paths = %s -> %s, want verbatim", got.Input, got.Output)
	}
}

func TestSelection_Apply(t *testing.T) {
	steps := []Step{
		{Index: 1, Treatment: "parse"},
		{Index: 2, Treatment: "clean"},
		{Index: 3, Treatment: "resample"},
		{Index: 4, Treatment: "clean"},
	}

	tests := []struct {
		name    string
		sel     Selection
		want    []int
		wantErr error
	}{
		{name: "all", sel: Selection{}, want: []int{1, 2, 3, 4}},
		{name: "single step", sel: Selection{Step: "resample"}, want: []int{3}},
		{name: "single step repeated", sel: Selection{Step: "clean"}, want: []int{2, 4}},
		{name: "range", sel: Selection{FromStep: "clean", ToStep: "resample"}, want: []int{2, 3}},
		{name: "open end", sel: Selection{FromStep: "resample"}, want: []int{3, 4}},
		{name: "open start", sel: Selection{ToStep: "parse"}, want: []int{1}},
		{name: "unknown step", sel: Selection{Step: "nope"}, wantErr: ErrStepNotFound},
		{name: "unknown from", sel: Selection{FromStep: "nope"}, wantErr: ErrStepNotFound},
		{name: "conflict", sel: Selection{Step: "parse", ToStep: "clean"}, wantErr: ErrSelectionConflict},
		{name: "reversed", sel: Selection{FromStep: "resample", ToStep: "parse"}, wantErr: ErrEmptySelection},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.sel.Apply(steps)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Apply() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Apply() error = %v", err)
			}

			var idx []int
			for _, s := range got {
				idx = append(idx, s.Index)
			}
			if diff := cmp.Diff(tt.want, idx); diff != "" {
				t.Errorf("Apply() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLookupConvention(t *testing.T) {
	c, ok := LookupConvention("to_postgres")
	if !ok || !c.External || c.Input != "40_aggregated" || c.Output != "60_postgres" {
		t.Errorf("LookupConvention(to_postgres) = %+v, %v", c, ok)
	}
	if _, ok := LookupConvention("nope"); ok {
		t.Error("LookupConvention(nope) = true, want false")
	}
}
