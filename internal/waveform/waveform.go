// Package waveform defines the channel and record model for a single
// station's ground-motion time series, plus the structural validation the
// metrics pipeline requires before it will run.
package waveform

import (
	"errors"
	"fmt"
	"strings"
)

// Units tags for channel data. The pipeline only operates on acceleration
// or velocity series; anything else fails validation.
const (
	UnitsAcc = "acc"
	UnitsVel = "vel"
)

// ErrStructural marks precondition failures that make metric computation
// meaningless (mixed units, mismatched lengths, missing horizontals). These
// are the only errors that cross the pipeline boundary.
var ErrStructural = errors.New("structural validation failed")

// Channel is one component of motion recorded at a station. Samples are
// evenly spaced at Delta seconds. Acceleration is assumed to be in gal
// (cm/s^2) and velocity in cm/s.
type Channel struct {
	Name  string
	Units string
	Delta float64
	Data  []float64
	// Passed marks a channel that survived upstream processing checks.
	// Rotation components only consume passed horizontals.
	Passed  bool
	Network string
	Station string
}

// Vertical reports whether the channel is the vertical component, following
// the convention that vertical channel codes contain a 'Z'.
func (c Channel) Vertical() bool {
	return strings.Contains(strings.ToUpper(c.Name), "Z")
}

// Times returns the sample times for the channel starting at zero.
func (c Channel) Times() []float64 {
	times := make([]float64, len(c.Data))
	for i := range times {
		times[i] = float64(i) * c.Delta
	}
	return times
}

// Clone returns a deep copy of the channel. Stages that modify sample data
// must clone first; records are read-only to the pipeline.
func (c Channel) Clone() Channel {
	out := c
	out.Data = make([]float64, len(c.Data))
	copy(out.Data, c.Data)
	return out
}

// Record is the ordered set of channels (2 or 3) recorded by one sensor.
// Station coordinates are needed only for radial/transverse rotation and
// station-to-source distances.
type Record struct {
	StationCode string
	StationLat  float64
	StationLon  float64
	Elevation   float64
	Channels    []Channel
}

// Validate checks the structural invariants shared by all metric
// computations: at least one channel, a single consistent units tag across
// channels, and uniform sample counts. Violations are ErrStructural errors.
func (r *Record) Validate() error {
	if len(r.Channels) == 0 {
		return fmt.Errorf("%w: record has no channels", ErrStructural)
	}
	units := r.Channels[0].Units
	length := len(r.Channels[0].Data)
	for _, ch := range r.Channels {
		if ch.Units != UnitsAcc && ch.Units != UnitsVel {
			return fmt.Errorf("%w: channel %s units must be %q or %q, got %q",
				ErrStructural, ch.Name, UnitsAcc, UnitsVel, ch.Units)
		}
		if ch.Units != units {
			return fmt.Errorf("%w: channel %s units %q differ from %q",
				ErrStructural, ch.Name, ch.Units, units)
		}
		if len(ch.Data) != length {
			return fmt.Errorf("%w: channel %s has %d samples, want %d",
				ErrStructural, ch.Name, len(ch.Data), length)
		}
	}
	return nil
}

// Units returns the shared units tag of the record's channels. Call Validate
// first; for an empty record this returns "".
func (r *Record) Units() string {
	if len(r.Channels) == 0 {
		return ""
	}
	return r.Channels[0].Units
}

// Horizontals returns copies of the passed non-vertical channels in record
// order. Channels that failed processing checks are excluded so rotations
// never mix a failed horizontal into a combined component.
func (r *Record) Horizontals() []Channel {
	var out []Channel
	for _, ch := range r.Channels {
		if !ch.Vertical() && ch.Passed {
			out = append(out, ch.Clone())
		}
	}
	return out
}

// HorizontalPair returns the two horizontal channels required by rotation
// stages. Having more or fewer than two, or mismatched lengths, is an error.
func (r *Record) HorizontalPair() (Channel, Channel, error) {
	horizontals := r.Horizontals()
	if len(horizontals) > 2 {
		return Channel{}, Channel{}, errors.New("more than two horizontal channels")
	}
	if len(horizontals) < 2 {
		return Channel{}, Channel{}, errors.New("fewer than two passed horizontal channels")
	}
	if len(horizontals[0].Data) != len(horizontals[1].Data) {
		return Channel{}, Channel{}, errors.New("horizontal channels have different lengths")
	}
	return horizontals[0], horizontals[1], nil
}

// HorizontalTimes returns the times array of the first horizontal channel.
// Oscillator stages need a horizontal time base.
func (r *Record) HorizontalTimes() ([]float64, error) {
	for _, ch := range r.Channels {
		if !ch.Vertical() {
			return ch.Times(), nil
		}
	}
	return nil, fmt.Errorf("%w: at least one horizontal channel is required", ErrStructural)
}

// Clone returns a deep copy of the record.
func (r *Record) Clone() *Record {
	out := *r
	out.Channels = make([]Channel, len(r.Channels))
	for i, ch := range r.Channels {
		out.Channels[i] = ch.Clone()
	}
	return &out
}
