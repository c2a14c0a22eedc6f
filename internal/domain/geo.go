package domain

import (
	"math"

	"github.com/twpayne/go-geom"
)

// EarthRadiusKm is the mean Earth radius used for great-circle math.
const EarthRadiusKm = 6371.0

// Geo represents a WGS-84 latitude/longitude coordinate pair.
type Geo struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Distance returns the haversine great-circle distance in kilometres.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := radians(lat1)
	phi2 := radians(lat2)
	dPhi := radians(lat2 - lat1)
	dLambda := radians(lon2 - lon1)

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusKm * c
}

// CircleRegion approximates a circle of radiusM metres around (lat, lon) as a
// closed polygon with the given number of vertices. Coordinates are stored in
// GeoJSON order (lon, lat).
func CircleRegion(lat, lon, radiusM float64, segments int) *geom.Polygon {
	if segments < 4 {
		segments = 4
	}
	angular := radiusM / (EarthRadiusKm * 1000)
	phi1 := radians(lat)
	lambda1 := radians(lon)

	ring := make([]geom.Coord, 0, segments+1)
	for i := 0; i < segments; i++ {
		bearing := 2 * math.Pi * float64(i) / float64(segments)
		phi2 := math.Asin(math.Sin(phi1)*math.Cos(angular) +
			math.Cos(phi1)*math.Sin(angular)*math.Cos(bearing))
		lambda2 := lambda1 + math.Atan2(
			math.Sin(bearing)*math.Sin(angular)*math.Cos(phi1),
			math.Cos(angular)-math.Sin(phi1)*math.Sin(phi2),
		)
		ring = append(ring, geom.Coord{degrees(lambda2), degrees(phi2)})
	}
	ring = append(ring, ring[0])

	return geom.NewPolygon(geom.XY).MustSetCoords([][]geom.Coord{ring}).SetSRID(4326)
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }

func degrees(rad float64) float64 { return rad * 180 / math.Pi }
