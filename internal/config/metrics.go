// Package config holds the metric computation defaults and optional JSON
// overrides: oscillator damping, smoothing bandwidth, period lists, and the
// requested measure/component sets.
package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
)

// PeriodSpec controls how the period list for a spectral measure is built:
// either an explicit list or a generated linear/log range.
type PeriodSpec struct {
	Start          *float64  `json:"start,omitempty"`
	Stop           *float64  `json:"stop,omitempty"`
	Num            *int      `json:"num,omitempty"`
	Spacing        *string   `json:"spacing,omitempty"` // "linspace" or "logspace"
	UseArray       *bool     `json:"use_array,omitempty"`
	DefinedPeriods []float64 `json:"defined_periods,omitempty"`
}

// MetricsConfig is the root metric configuration. Fields omitted from a
// JSON override retain their defaults, so partial configs are safe.
type MetricsConfig struct {
	OutputMeasures   []string `json:"output_imts,omitempty"`
	OutputComponents []string `json:"output_imcs,omitempty"`

	SADamping    *float64    `json:"sa_damping,omitempty"`
	SAPeriods    *PeriodSpec `json:"sa_periods,omitempty"`
	FASBandwidth *float64    `json:"fas_bandwidth,omitempty"`
	FASSmoothing *string     `json:"fas_smoothing,omitempty"`
	FASPeriods   *PeriodSpec `json:"fas_periods,omitempty"`

	// DurationInterval is the normalized-Arias start/end pair in percent.
	DurationInterval []float64 `json:"duration_interval,omitempty"`
}

// EmptyMetricsConfig returns a MetricsConfig with all fields unset.
func EmptyMetricsConfig() *MetricsConfig {
	return &MetricsConfig{}
}

// LoadMetricsConfig loads a MetricsConfig from a JSON file. The file must
// have a .json extension and be under 1MB.
func LoadMetricsConfig(path string) (*MetricsConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyMetricsConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks that the configuration values are usable.
func (c *MetricsConfig) Validate() error {
	if c.SADamping != nil {
		if *c.SADamping <= 0 || *c.SADamping >= 1 {
			return fmt.Errorf("sa_damping must be between 0 and 1, got %f", *c.SADamping)
		}
	}
	if c.FASBandwidth != nil && *c.FASBandwidth <= 0 {
		return fmt.Errorf("fas_bandwidth must be positive, got %f", *c.FASBandwidth)
	}
	if len(c.DurationInterval) != 0 && len(c.DurationInterval) != 2 {
		return fmt.Errorf("duration_interval must have exactly two values, got %d", len(c.DurationInterval))
	}
	for _, spec := range []*PeriodSpec{c.SAPeriods, c.FASPeriods} {
		if spec == nil {
			continue
		}
		if spec.Num != nil && *spec.Num <= 0 {
			return fmt.Errorf("period num must be positive, got %d", *spec.Num)
		}
		if spec.Spacing != nil && *spec.Spacing != "linspace" && *spec.Spacing != "logspace" {
			return fmt.Errorf("period spacing must be linspace or logspace, got %q", *spec.Spacing)
		}
	}
	return nil
}

// GetSADamping returns the oscillator damping ratio or the default.
func (c *MetricsConfig) GetSADamping() float64 {
	if c.SADamping == nil {
		return 0.05
	}
	return *c.SADamping
}

// GetFASBandwidth returns the Konno-Ohmachi bandwidth or the default.
func (c *MetricsConfig) GetFASBandwidth() float64 {
	if c.FASBandwidth == nil {
		return 20.0
	}
	return *c.FASBandwidth
}

// GetFASSmoothing returns the smoothing method name or the default.
func (c *MetricsConfig) GetFASSmoothing() string {
	if c.FASSmoothing == nil {
		return "konno_ohmachi"
	}
	return *c.FASSmoothing
}

// GetDurationInterval returns the duration interval pair or the default
// 5-95.
func (c *MetricsConfig) GetDurationInterval() [2]float64 {
	if len(c.DurationInterval) == 2 {
		return [2]float64{c.DurationInterval[0], c.DurationInterval[1]}
	}
	return [2]float64{5, 95}
}

// GetOutputComponents returns the requested component strings or the
// default set.
func (c *MetricsConfig) GetOutputComponents() []string {
	if len(c.OutputComponents) > 0 {
		return c.OutputComponents
	}
	return []string{"channels", "greater_of_two_horizontals", "rotd50.0"}
}

// GetOutputMeasures returns the requested measure strings with spectral
// kinds expanded over their period lists: a configured "sa" entry becomes
// one "sa(T)" measure per period.
func (c *MetricsConfig) GetOutputMeasures() []string {
	base := c.OutputMeasures
	if len(base) == 0 {
		base = []string{"pga", "pgv", "sa"}
	}
	var out []string
	for _, m := range base {
		switch m {
		case "sa":
			for _, p := range c.periods(c.SAPeriods, []float64{0.3, 1.0, 3.0}) {
				out = append(out, fmt.Sprintf("sa(%g)", p))
			}
		case "fas":
			for _, p := range c.periods(c.FASPeriods, []float64{0.3, 1.0, 3.0}) {
				out = append(out, fmt.Sprintf("fas(%g)", p))
			}
		default:
			out = append(out, m)
		}
	}
	return out
}

func (c *MetricsConfig) periods(spec *PeriodSpec, fallback []float64) []float64 {
	if spec == nil {
		return fallback
	}
	useArray := spec.UseArray != nil && *spec.UseArray
	if !useArray {
		if len(spec.DefinedPeriods) > 0 {
			return spec.DefinedPeriods
		}
		return fallback
	}
	if spec.Start == nil || spec.Stop == nil || spec.Num == nil {
		return fallback
	}
	spacing := "linspace"
	if spec.Spacing != nil {
		spacing = *spec.Spacing
	}
	return spacedPeriods(*spec.Start, *spec.Stop, *spec.Num, spacing)
}

// spacedPeriods generates num values from start to stop inclusive, linearly
// or logarithmically spaced. Logspace interprets start/stop as exponents of
// ten, matching the numpy convention.
func spacedPeriods(start, stop float64, num int, spacing string) []float64 {
	out := make([]float64, num)
	if num == 1 {
		if spacing == "logspace" {
			out[0] = math.Pow(10, start)
		} else {
			out[0] = start
		}
		return out
	}
	step := (stop - start) / float64(num-1)
	for i := range out {
		v := start + float64(i)*step
		if spacing == "logspace" {
			v = math.Pow(10, v)
		}
		out[i] = v
	}
	return out
}
