package geo

import "math"

// EarthRadiusMeters is the WGS84 mean Earth radius.
const EarthRadiusMeters = 6371000.0

// Position is a latitude/longitude pair in degrees (WGS84).
type Position struct {
	Lat float64 `json:"latitude"`
	Lon float64 `json:"longitude"`
}

// Distance returns the great-circle distance between two positions in meters,
// computed with the Haversine formula. The result is non-negative and
// symmetric in its arguments.
func Distance(a, b Position) float64 {
	lat1 := radians(a.Lat)
	lat2 := radians(b.Lat)
	dLat := radians(b.Lat - a.Lat)
	dLon := radians(b.Lon - a.Lon)

	sinLat := math.Sin(dLat / 2)
	sinLon := math.Sin(dLon / 2)
	h := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLon*sinLon
	return 2 * EarthRadiusMeters * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// Fence is a circular geofence around a center position.
type Fence struct {
	Center       Position
	RadiusMeters float64
}

// DistanceTo returns the distance from the fence center to p in meters.
func (f Fence) DistanceTo(p Position) float64 {
	return Distance(f.Center, p)
}

// Contains returns true when p lies within the fence radius.
func (f Fence) Contains(p Position) bool {
	return f.DistanceTo(p) <= f.RadiusMeters
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
