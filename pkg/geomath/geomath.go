// Package geomath provides the spherical-earth geometry used by the
// checkpoint builder, the geofence engine and the tile cache. All distances
// are metres, all angles degrees unless noted.
package geomath

import "math"

const EarthRadiusMetres = 6371000

func degToRad(d float64) float64 { return d * math.Pi / 180 }
func radToDeg(r float64) float64 { return r * 180 / math.Pi }

// HaversineDistance returns the great-circle distance in metres between two
// coordinates.
func HaversineDistance(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := degToRad(lat1)
	phi2 := degToRad(lat2)
	deltaPhi := degToRad(lat2 - lat1)
	deltaLambda := degToRad(lon2 - lon1)

	a := math.Sin(deltaPhi/2)*math.Sin(deltaPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(deltaLambda/2)*math.Sin(deltaLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusMetres * c
}

// InitialBearing returns the forward azimuth in degrees (0..360) from the
// first coordinate towards the second.
func InitialBearing(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := degToRad(lat1)
	phi2 := degToRad(lat2)
	deltaLambda := degToRad(lon2 - lon1)

	y := math.Sin(deltaLambda) * math.Cos(phi2)
	x := math.Cos(phi1)*math.Sin(phi2) - math.Sin(phi1)*math.Cos(phi2)*math.Cos(deltaLambda)

	return math.Mod(radToDeg(math.Atan2(y, x))+360, 360)
}

// Interpolate returns the point a fraction f (0..1) of the way along the
// great circle from the first coordinate to the second.
func Interpolate(lat1, lon1, lat2, lon2, f float64) (float64, float64) {
	phi1 := degToRad(lat1)
	lambda1 := degToRad(lon1)
	phi2 := degToRad(lat2)
	lambda2 := degToRad(lon2)

	delta := HaversineDistance(lat1, lon1, lat2, lon2) / EarthRadiusMetres
	if delta == 0 {
		return lat1, lon1
	}

	a := math.Sin((1-f)*delta) / math.Sin(delta)
	b := math.Sin(f*delta) / math.Sin(delta)

	x := a*math.Cos(phi1)*math.Cos(lambda1) + b*math.Cos(phi2)*math.Cos(lambda2)
	y := a*math.Cos(phi1)*math.Sin(lambda1) + b*math.Cos(phi2)*math.Sin(lambda2)
	z := a*math.Sin(phi1) + b*math.Sin(phi2)

	lat := radToDeg(math.Atan2(z, math.Sqrt(x*x+y*y)))
	lon := radToDeg(math.Atan2(y, x))

	return lat, lon
}

// Destination returns the point reached after travelling the given distance
// in metres on the given initial bearing.
func Destination(lat, lon, bearingDegrees, distanceMetres float64) (float64, float64) {
	phi := degToRad(lat)
	lambda := degToRad(lon)
	theta := degToRad(bearingDegrees)
	delta := distanceMetres / EarthRadiusMetres

	phi2 := math.Asin(math.Sin(phi)*math.Cos(delta) + math.Cos(phi)*math.Sin(delta)*math.Cos(theta))
	lambda2 := lambda + math.Atan2(
		math.Sin(theta)*math.Sin(delta)*math.Cos(phi),
		math.Cos(delta)-math.Sin(phi)*math.Sin(phi2),
	)

	return radToDeg(phi2), math.Mod(radToDeg(lambda2)+540, 360) - 180
}
