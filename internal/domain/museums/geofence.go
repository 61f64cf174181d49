package museums

import "math"

const earthRadiusMeters = 6371000

// Haversine returns the great-circle distance in meters between two points.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dlat := (lat2 - lat1) * math.Pi / 180
	dlon := (lon2 - lon1) * math.Pi / 180
	a := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*
			math.Sin(dlon/2)*math.Sin(dlon/2)
	return earthRadiusMeters * 2 * math.Asin(math.Sqrt(a))
}

// Candidates returns the IDs of museums whose geofence contains the point.
// An empty result is a normal outcome, not an error; matching then falls
// back to the unaffiliated artwork pool.
func Candidates(ms []*Museum, lat, lon float64) []string {
	var out []string
	for _, m := range ms {
		if Haversine(lat, lon, m.Lat, m.Lon) <= m.RadiusMeters {
			out = append(out, m.ID)
		}
	}
	return out
}
