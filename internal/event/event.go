// Package event describes the earthquake source an individual station record
// is associated with. Only the hypocenter location is required by the
// pipeline (radial/transverse rotation and station distances).
package event

// Event is an earthquake hypocenter. Latitude and longitude are in decimal
// degrees, depth in kilometres (positive down).
type Event struct {
	ID        string
	Latitude  float64
	Longitude float64
	DepthKm   float64
	Magnitude float64
}
