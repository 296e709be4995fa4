package waveform

import (
	"errors"
	"testing"
)

func testRecord() *Record {
	return &Record{
		StationCode: "ABBT",
		Channels: []Channel{
			{Name: "HN1", Units: UnitsAcc, Delta: 0.01, Data: []float64{0, 1, 2}, Passed: true},
			{Name: "HN2", Units: UnitsAcc, Delta: 0.01, Data: []float64{0, -1, -2}, Passed: true},
			{Name: "HNZ", Units: UnitsAcc, Delta: 0.01, Data: []float64{0, 0.5, 1}, Passed: true},
		},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Record)
		wantErr bool
	}{
		{
			name:   "valid record",
			mutate: func(*Record) {},
		},
		{
			name:    "no channels",
			mutate:  func(r *Record) { r.Channels = nil },
			wantErr: true,
		},
		{
			name:    "unknown units",
			mutate:  func(r *Record) { r.Channels[1].Units = "disp" },
			wantErr: true,
		},
		{
			name: "mixed units",
			mutate: func(r *Record) {
				r.Channels[2].Units = UnitsVel
			},
			wantErr: true,
		},
		{
			name: "mismatched lengths",
			mutate: func(r *Record) {
				r.Channels[0].Data = append(r.Channels[0].Data, 3)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := testRecord()
			tt.mutate(rec)
			err := rec.Validate()
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !errors.Is(err, ErrStructural) {
					t.Errorf("error %v is not ErrStructural", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestVertical(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"HNZ", true},
		{"BHZ", true},
		{"hnz", true},
		{"HN1", false},
		{"HNE", false},
	}
	for _, tt := range tests {
		ch := Channel{Name: tt.name}
		if got := ch.Vertical(); got != tt.want {
			t.Errorf("Vertical(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestHorizontalPair(t *testing.T) {
	rec := testRecord()
	h1, h2, err := rec.HorizontalPair()
	if err != nil {
		t.Fatalf("HorizontalPair: %v", err)
	}
	if h1.Name != "HN1" || h2.Name != "HN2" {
		t.Errorf("got pair %s/%s, want HN1/HN2", h1.Name, h2.Name)
	}

	rec.Channels = rec.Channels[:1]
	if _, _, err := rec.HorizontalPair(); err == nil {
		t.Error("expected error with a single horizontal")
	}

	rec = testRecord()
	rec.Channels = append(rec.Channels, Channel{Name: "HN3", Units: UnitsAcc, Delta: 0.01, Data: []float64{0, 0, 0}, Passed: true})
	if _, _, err := rec.HorizontalPair(); err == nil {
		t.Error("expected error with three horizontals")
	}
}

func TestHorizontalsSkipFailedChannels(t *testing.T) {
	rec := testRecord()
	rec.Channels[0].Passed = false

	horizontals := rec.Horizontals()
	if len(horizontals) != 1 {
		t.Fatalf("got %d horizontals, want 1", len(horizontals))
	}
	if horizontals[0].Name != "HN2" {
		t.Errorf("kept %s, want HN2", horizontals[0].Name)
	}
	if _, _, err := rec.HorizontalPair(); err == nil {
		t.Error("expected error when a horizontal has not passed")
	}
}

func TestTimes(t *testing.T) {
	ch := Channel{Delta: 0.5, Data: []float64{1, 2, 3}}
	times := ch.Times()
	want := []float64{0, 0.5, 1.0}
	for i := range want {
		if times[i] != want[i] {
			t.Errorf("times[%d] = %v, want %v", i, times[i], want[i])
		}
	}
}

func TestCloneIsDeep(t *testing.T) {
	rec := testRecord()
	clone := rec.Clone()
	clone.Channels[0].Data[0] = 99
	if rec.Channels[0].Data[0] == 99 {
		t.Error("clone shares channel data with the original")
	}
}

func TestHorizontalTimes(t *testing.T) {
	rec := testRecord()
	times, err := rec.HorizontalTimes()
	if err != nil {
		t.Fatalf("HorizontalTimes: %v", err)
	}
	if len(times) != 3 || times[1] != 0.01 {
		t.Errorf("unexpected times %v", times)
	}

	vertical := &Record{Channels: []Channel{
		{Name: "HNZ", Units: UnitsAcc, Delta: 0.01, Data: []float64{0}},
	}}
	if _, err := vertical.HorizontalTimes(); !errors.Is(err, ErrStructural) {
		t.Errorf("expected ErrStructural, got %v", err)
	}
}
