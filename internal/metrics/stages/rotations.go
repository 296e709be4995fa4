package stages

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/banshee-data/groundmotion.report/internal/event"
	"github.com/banshee-data/groundmotion.report/internal/waveform"
)

type nullRotation struct{}

func (nullRotation) Rotate(in Value, _ *event.Event) (Value, error) {
	return in, nil
}

// rotdRotation rotates the horizontal pair through 0..180 degrees at one
// degree steps, producing a single matrix with the combined series at each
// angle.
type rotdRotation struct{}

func (rotdRotation) Rotate(in Value, _ *event.Event) (Value, error) {
	h1, h2, err := horizontalsFor(in)
	if err != nil {
		return Value{}, err
	}
	return Value{Matrices: [][][]float64{rotateCombined(h1, h2, 180)}}, nil
}

// gmrotdRotation rotates the horizontal pair through 0..90 degrees,
// producing the two orthogonal rotated matrices. The per-angle geometric
// mean is taken at reduction time.
type gmrotdRotation struct{}

func (gmrotdRotation) Rotate(in Value, _ *event.Event) (Value, error) {
	h1, h2, err := horizontalsFor(in)
	if err != nil {
		return Value{}, err
	}
	m1, m2 := rotatePair(h1, h2, 90)
	return Value{Matrices: [][][]float64{m1, m2}}, nil
}

// radialTransverse rotates the horizontal pair into the radial (toward the
// event) and transverse components using the station back-azimuth. The
// event location is required.
type radialTransverse struct{}

func (radialTransverse) Rotate(in Value, ev *event.Event) (Value, error) {
	if ev == nil {
		return Value{}, errors.New("radial_transverse: an event location is required")
	}
	if in.Record == nil {
		return Value{}, errShape("radial_transverse", in)
	}
	north, east, err := northEastPair(in.Record)
	if err != nil {
		return Value{}, err
	}
	baz := BackAzimuth(in.Record.StationLat, in.Record.StationLon, ev.Latitude, ev.Longitude)
	bazRad := baz * math.Pi / 180

	radial := make([]float64, len(north.Data))
	transverse := make([]float64, len(north.Data))
	for i := range north.Data {
		radial[i] = -north.Data[i]*math.Cos(bazRad) - east.Data[i]*math.Sin(bazRad)
		transverse[i] = north.Data[i]*math.Sin(bazRad) - east.Data[i]*math.Cos(bazRad)
	}

	out := &waveform.Record{
		StationCode: in.Record.StationCode,
		StationLat:  in.Record.StationLat,
		StationLon:  in.Record.StationLon,
	}
	r := north.Clone()
	r.Name = "HNR"
	r.Data = radial
	t := east.Clone()
	t.Name = "HNT"
	t.Data = transverse
	out.Channels = []waveform.Channel{r, t}
	return RecordValue(out), nil
}

// horizontalsFor extracts the horizontal pair data for matrix rotations.
func horizontalsFor(in Value) ([]float64, []float64, error) {
	if in.Record == nil {
		return nil, nil, errShape("rotation", in)
	}
	h1, h2, err := in.Record.HorizontalPair()
	if err != nil {
		return nil, nil, err
	}
	return h1.Data, h2.Data, nil
}

// northEastPair identifies which horizontal is north-aligned and which is
// east-aligned from the channel naming convention (N/1 vs E/2 suffixes).
func northEastPair(rec *waveform.Record) (waveform.Channel, waveform.Channel, error) {
	h1, h2, err := rec.HorizontalPair()
	if err != nil {
		return waveform.Channel{}, waveform.Channel{}, err
	}
	for _, pair := range [][2]waveform.Channel{{h1, h2}, {h2, h1}} {
		n, e := pair[0], pair[1]
		if hasSuffix(n.Name, "N", "1") && hasSuffix(e.Name, "E", "2") {
			return n, e, nil
		}
	}
	return waveform.Channel{}, waveform.Channel{}, fmt.Errorf(
		"cannot identify north/east channels from %q and %q", h1.Name, h2.Name)
}

func hasSuffix(name string, suffixes ...string) bool {
	upper := strings.ToUpper(name)
	for _, s := range suffixes {
		if strings.HasSuffix(upper, s) {
			return true
		}
	}
	return false
}

// rotateCombined produces the matrix of h1*cos(a) + h2*sin(a) for angles
// 0..maxDeg inclusive at one degree steps.
func rotateCombined(h1, h2 []float64, maxDeg int) [][]float64 {
	rows := maxDeg + 1
	out := make([][]float64, rows)
	for r := 0; r < rows; r++ {
		a := float64(r) * math.Pi / 180
		cos, sin := math.Cos(a), math.Sin(a)
		row := make([]float64, len(h1))
		for i := range h1 {
			row[i] = h1[i]*cos + h2[i]*sin
		}
		out[r] = row
	}
	return out
}

// rotatePair produces the two orthogonal rotated matrices for angles
// 0..maxDeg inclusive at one degree steps.
func rotatePair(h1, h2 []float64, maxDeg int) ([][]float64, [][]float64) {
	rows := maxDeg + 1
	m1 := make([][]float64, rows)
	m2 := make([][]float64, rows)
	for r := 0; r < rows; r++ {
		a := float64(r) * math.Pi / 180
		cos, sin := math.Cos(a), math.Sin(a)
		row1 := make([]float64, len(h1))
		row2 := make([]float64, len(h1))
		for i := range h1 {
			row1[i] = h1[i]*cos + h2[i]*sin
			row2[i] = -h1[i]*sin + h2[i]*cos
		}
		m1[r] = row1
		m2[r] = row2
	}
	return m1, m2
}

// BackAzimuth returns the compass direction (degrees clockwise from north)
// from the station toward the event on a spherical earth.
func BackAzimuth(stationLat, stationLon, eventLat, eventLon float64) float64 {
	phi1 := stationLat * math.Pi / 180
	phi2 := eventLat * math.Pi / 180
	dlon := (eventLon - stationLon) * math.Pi / 180

	y := math.Sin(dlon) * math.Cos(phi2)
	x := math.Cos(phi1)*math.Sin(phi2) - math.Sin(phi1)*math.Cos(phi2)*math.Cos(dlon)
	az := math.Atan2(y, x) * 180 / math.Pi
	return math.Mod(az+360, 360)
}
