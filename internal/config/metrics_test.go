package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestEmptyConfigDefaults(t *testing.T) {
	cfg := EmptyMetricsConfig()

	if got := cfg.GetSADamping(); got != 0.05 {
		t.Errorf("GetSADamping() = %v, want 0.05", got)
	}
	if got := cfg.GetFASBandwidth(); got != 20.0 {
		t.Errorf("GetFASBandwidth() = %v, want 20.0", got)
	}
	if got := cfg.GetFASSmoothing(); got != "konno_ohmachi" {
		t.Errorf("GetFASSmoothing() = %q", got)
	}
	if got := cfg.GetDurationInterval(); got != [2]float64{5, 95} {
		t.Errorf("GetDurationInterval() = %v", got)
	}

	wantComponents := []string{"channels", "greater_of_two_horizontals", "rotd50.0"}
	if diff := cmp.Diff(wantComponents, cfg.GetOutputComponents()); diff != "" {
		t.Errorf("components mismatch:\n%s", diff)
	}
	wantMeasures := []string{"pga", "pgv", "sa(0.3)", "sa(1)", "sa(3)"}
	if diff := cmp.Diff(wantMeasures, cfg.GetOutputMeasures()); diff != "" {
		t.Errorf("measures mismatch:\n%s", diff)
	}
}

func TestPeriodExpansion(t *testing.T) {
	useArray := true
	num := 3
	spacing := "logspace"
	start, stop := -1.0, 1.0

	cfg := EmptyMetricsConfig()
	cfg.OutputMeasures = []string{"sa"}
	cfg.SAPeriods = &PeriodSpec{
		Start:    &start,
		Stop:     &stop,
		Num:      &num,
		Spacing:  &spacing,
		UseArray: &useArray,
	}
	want := []string{"sa(0.1)", "sa(1)", "sa(10)"}
	if diff := cmp.Diff(want, cfg.GetOutputMeasures()); diff != "" {
		t.Errorf("logspace expansion mismatch:\n%s", diff)
	}
}

func TestPeriodExpansionDefinedList(t *testing.T) {
	cfg := EmptyMetricsConfig()
	cfg.OutputMeasures = []string{"fas", "pga"}
	cfg.FASPeriods = &PeriodSpec{DefinedPeriods: []float64{0.5, 2.0}}

	want := []string{"fas(0.5)", "fas(2)", "pga"}
	if diff := cmp.Diff(want, cfg.GetOutputMeasures()); diff != "" {
		t.Errorf("defined-period expansion mismatch:\n%s", diff)
	}
}

func TestSpacedPeriods(t *testing.T) {
	lin := spacedPeriods(0, 10, 3, "linspace")
	if diff := cmp.Diff([]float64{0, 5, 10}, lin); diff != "" {
		t.Errorf("linspace mismatch:\n%s", diff)
	}
	logv := spacedPeriods(-1, 1, 3, "logspace")
	for i, want := range []float64{0.1, 1, 10} {
		if math.Abs(logv[i]-want) > 1e-12 {
			t.Errorf("logspace[%d] = %v, want %v", i, logv[i], want)
		}
	}
	single := spacedPeriods(2, 9, 1, "logspace")
	if len(single) != 1 || math.Abs(single[0]-100) > 1e-9 {
		t.Errorf("single logspace = %v, want [100]", single)
	}
}

func TestLoadMetricsConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "metrics.json")
	body := `{
		"output_imts": ["pga", "pgv"],
		"sa_damping": 0.10,
		"duration_interval": [10, 70]
	}`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadMetricsConfig(path)
	if err != nil {
		t.Fatalf("LoadMetricsConfig: %v", err)
	}
	if got := cfg.GetSADamping(); got != 0.10 {
		t.Errorf("GetSADamping() = %v, want 0.10", got)
	}
	if got := cfg.GetDurationInterval(); got != [2]float64{10, 70} {
		t.Errorf("GetDurationInterval() = %v", got)
	}
	if diff := cmp.Diff([]string{"pga", "pgv"}, cfg.GetOutputMeasures()); diff != "" {
		t.Errorf("measures mismatch:\n%s", diff)
	}
}

func TestLoadMetricsConfigRejectsNonJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "metrics.yaml")
	if err := os.WriteFile(path, []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadMetricsConfig(path); err == nil {
		t.Fatal("expected error for non-json extension")
	}
}

func TestLoadMetricsConfigValidates(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		body string
	}{
		{"damping", `{"sa_damping": 1.5}`},
		{"bandwidth", `{"fas_bandwidth": -1}`},
		{"interval", `{"duration_interval": [5]}`},
		{"spacing", `{"sa_periods": {"spacing": "geometric"}}`},
		{"num", `{"sa_periods": {"num": 0}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".json")
			if err := os.WriteFile(path, []byte(tt.body), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, err := LoadMetricsConfig(path); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
