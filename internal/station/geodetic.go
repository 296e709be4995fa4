package station

import (
	"math"

	"github.com/banshee-data/groundmotion.report/internal/event"
	"github.com/banshee-data/groundmotion.report/internal/metrics/stages"
	"github.com/banshee-data/groundmotion.report/internal/waveform"
)

const earthRadiusKm = 6371.0

// DistanceProvider computes station-to-source scalars for a summary. The
// pipeline itself never computes these; implementations are collaborators.
type DistanceProvider interface {
	Distances(rec *waveform.Record, ev *event.Event) (Distances, float64)
}

// Geodetic computes point-source distances and back-azimuth on a spherical
// earth. Rupture and Joyner-Boore distances need a rupture model and are
// left NaN.
type Geodetic struct{}

// Distances returns the epicentral and hypocentral distances in km and the
// station back-azimuth in degrees.
func (Geodetic) Distances(rec *waveform.Record, ev *event.Event) (Distances, float64) {
	d := NoDistances()
	d.Epicentral = haversineKm(rec.StationLat, rec.StationLon, ev.Latitude, ev.Longitude)
	d.Hypocentral = math.Hypot(d.Epicentral, ev.DepthKm)
	baz := stages.BackAzimuth(rec.StationLat, rec.StationLon, ev.Latitude, ev.Longitude)
	return d, baz
}

func haversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	rad := math.Pi / 180
	phi1, phi2 := lat1*rad, lat2*rad
	dphi := (lat2 - lat1) * rad
	dlambda := (lon2 - lon1) * rad

	a := math.Sin(dphi/2)*math.Sin(dphi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dlambda/2)*math.Sin(dlambda/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(a))
}
