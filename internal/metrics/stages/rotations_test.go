package stages

import (
	"math"
	"testing"

	"github.com/banshee-data/groundmotion.report/internal/event"
)

func TestRotateCombined(t *testing.T) {
	h1 := []float64{1, 2, 3}
	h2 := []float64{4, 5, 6}
	m := rotateCombined(h1, h2, 180)

	if len(m) != 181 {
		t.Fatalf("rows = %d, want 181", len(m))
	}
	for i := range h1 {
		if math.Abs(m[0][i]-h1[i]) > 1e-12 {
			t.Errorf("row 0[%d] = %v, want %v", i, m[0][i], h1[i])
		}
		if math.Abs(m[90][i]-h2[i]) > 1e-12 {
			t.Errorf("row 90[%d] = %v, want %v", i, m[90][i], h2[i])
		}
		if math.Abs(m[180][i]+h1[i]) > 1e-12 {
			t.Errorf("row 180[%d] = %v, want %v", i, m[180][i], -h1[i])
		}
	}
}

func TestRotatePair(t *testing.T) {
	h1 := []float64{1, 0}
	h2 := []float64{0, 1}
	m1, m2 := rotatePair(h1, h2, 90)

	if len(m1) != 91 || len(m2) != 91 {
		t.Fatalf("rows = %d/%d, want 91/91", len(m1), len(m2))
	}
	// Angle zero passes both series through unchanged.
	for i := range h1 {
		if m1[0][i] != h1[i] || m2[0][i] != h2[i] {
			t.Errorf("angle 0 modified the series: %v %v", m1[0], m2[0])
		}
	}
	// A 90 degree rotation swaps the pair (with one sign flip).
	for i := range h1 {
		if math.Abs(m1[90][i]-h2[i]) > 1e-12 {
			t.Errorf("m1[90][%d] = %v, want %v", i, m1[90][i], h2[i])
		}
		if math.Abs(m2[90][i]+h1[i]) > 1e-12 {
			t.Errorf("m2[90][%d] = %v, want %v", i, m2[90][i], -h1[i])
		}
	}
}

func TestRotDProducesSingleMatrix(t *testing.T) {
	rec := accRecord([]float64{1, 2}, []float64{3, 4}, []float64{0, 0})
	out, err := rotdRotation{}.Rotate(RecordValue(rec), nil)
	if err != nil {
		t.Fatalf("rotd: %v", err)
	}
	if len(out.Matrices) != 1 {
		t.Fatalf("matrix count = %d, want 1", len(out.Matrices))
	}
	if len(out.Matrices[0]) != 181 {
		t.Errorf("rows = %d, want 181", len(out.Matrices[0]))
	}
}

func TestRotationRejectsFailedHorizontal(t *testing.T) {
	rec := accRecord([]float64{1, 2}, []float64{3, 4}, []float64{0, 0})
	rec.Channels[0].Passed = false
	if _, err := (rotdRotation{}).Rotate(RecordValue(rec), nil); err == nil {
		t.Error("expected error with a failed horizontal")
	}
}

func TestGMRotDProducesMatrixPair(t *testing.T) {
	rec := accRecord([]float64{1, 2}, []float64{3, 4}, []float64{0, 0})
	out, err := gmrotdRotation{}.Rotate(RecordValue(rec), nil)
	if err != nil {
		t.Fatalf("gmrotd: %v", err)
	}
	if len(out.Matrices) != 2 {
		t.Fatalf("matrix count = %d, want 2", len(out.Matrices))
	}
	if len(out.Matrices[0]) != 91 || len(out.Matrices[1]) != 91 {
		t.Errorf("rows = %d/%d, want 91/91", len(out.Matrices[0]), len(out.Matrices[1]))
	}
}

func TestBackAzimuth(t *testing.T) {
	tests := []struct {
		name                   string
		slat, slon, elat, elon float64
		want                   float64
	}{
		{"due north", 0, 0, 1, 0, 0},
		{"due east", 0, 0, 0, 1, 90},
		{"due south", 1, 0, 0, 0, 180},
		{"due west", 0, 1, 0, 0, 270},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BackAzimuth(tt.slat, tt.slon, tt.elat, tt.elon)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("BackAzimuth = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRadialTransverse(t *testing.T) {
	rec := accRecord([]float64{1, 2}, []float64{3, 4}, []float64{0, 0})
	// Event due north of the station: radial = -north, transverse = -east.
	ev := &event.Event{Latitude: 1, Longitude: 0}

	out, err := radialTransverse{}.Rotate(RecordValue(rec), ev)
	if err != nil {
		t.Fatalf("radial_transverse: %v", err)
	}
	if len(out.Record.Channels) != 2 {
		t.Fatalf("channel count = %d, want 2", len(out.Record.Channels))
	}
	r, tr := out.Record.Channels[0], out.Record.Channels[1]
	if r.Name != "HNR" || tr.Name != "HNT" {
		t.Fatalf("channel names = %s/%s, want HNR/HNT", r.Name, tr.Name)
	}
	for i := range r.Data {
		if math.Abs(r.Data[i]-(-rec.Channels[0].Data[i])) > 1e-9 {
			t.Errorf("radial[%d] = %v, want %v", i, r.Data[i], -rec.Channels[0].Data[i])
		}
		if math.Abs(tr.Data[i]-(-rec.Channels[1].Data[i])) > 1e-9 {
			t.Errorf("transverse[%d] = %v, want %v", i, tr.Data[i], -rec.Channels[1].Data[i])
		}
	}
}

func TestRadialTransverseRequiresEvent(t *testing.T) {
	rec := accRecord([]float64{1}, []float64{2}, []float64{0})
	if _, err := (radialTransverse{}).Rotate(RecordValue(rec), nil); err == nil {
		t.Error("expected error without an event")
	}
}

func TestNorthEastPairUnidentifiable(t *testing.T) {
	rec := accRecord([]float64{1}, []float64{2}, []float64{0})
	rec.Channels[0].Name = "HNA"
	rec.Channels[1].Name = "HNB"
	if _, _, err := northEastPair(rec); err == nil {
		t.Error("expected error for unidentifiable channel names")
	}
}
