package domain

import "math"

const (
	earthRadiusMiles = 3958.8
	milesToKm        = 1.609344
	milesToNautical  = 0.8684
)

// Distance between two airports in the three units the schedule displays.
type Distance struct {
	Miles         float64
	Kilometers    float64
	NauticalMiles float64
}

// GreatCircleDistance computes the haversine distance between two airports.
func GreatCircleDistance(from, to Airport) Distance {
	lat1 := from.Latitude * math.Pi / 180
	lon1 := from.Longitude * math.Pi / 180
	lat2 := to.Latitude * math.Pi / 180
	lon2 := to.Longitude * math.Pi / 180

	dLat := lat2 - lat1
	dLon := lon2 - lon1

	a := math.Pow(math.Sin(dLat/2), 2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Pow(math.Sin(dLon/2), 2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	miles := earthRadiusMiles * c
	return Distance{
		Miles:         miles,
		Kilometers:    miles * milesToKm,
		NauticalMiles: miles * milesToNautical,
	}
}
