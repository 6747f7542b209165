package tilecache

import (
	"math"

	"github.com/windowseat/windowseat/pkg/skydf"
)

// Standard slippy-map web-mercator tiling. Latitude is clamped to the
// mercator limit before conversion.
const maxMercatorLatitude = 85.0511

// TileXY returns the XYZ tile containing the coordinate at the given zoom.
func TileXY(lat, lon float64, zoom int) (int, int) {
	if lat > maxMercatorLatitude {
		lat = maxMercatorLatitude
	}
	if lat < -maxMercatorLatitude {
		lat = -maxMercatorLatitude
	}

	n := float64(int(1) << zoom)

	x := int(math.Floor((lon + 180) / 360 * n))
	latRad := lat * math.Pi / 180
	y := int(math.Floor((1 - math.Log(math.Tan(latRad)+1/math.Cos(latRad))/math.Pi) / 2 * n))

	limit := (1 << zoom) - 1
	return clamp(x, 0, limit), clamp(y, 0, limit)
}

// TileBounds returns the (south, west, north, east) bounds in degrees of an
// XYZ tile.
func TileBounds(zoom, x, y int) (float64, float64, float64, float64) {
	n := float64(int(1) << zoom)

	west := float64(x)/n*360 - 180
	east := float64(x+1)/n*360 - 180

	north := tileLatitude(float64(y), n)
	south := tileLatitude(float64(y+1), n)

	return south, west, north, east
}

func tileLatitude(y, n float64) float64 {
	return math.Atan(math.Sinh(math.Pi*(1-2*y/n))) * 180 / math.Pi
}

func clamp(v, low, high int) int {
	if v < low {
		return low
	}
	if v > high {
		return high
	}
	return v
}

// boundingBox is a lat/lon axis-aligned box around a route corridor.
type boundingBox struct {
	minLat, minLon, maxLat, maxLon float64
}

// routeBoundingBox computes the route's bounding box expanded by the buffer
// distance. The longitude buffer widens with latitude to keep the corridor
// roughly constant in metres.
func routeBoundingBox(route []skydf.RoutePoint, bufferMetres float64) boundingBox {
	box := boundingBox{minLat: 90, minLon: 180, maxLat: -90, maxLon: -180}

	for _, point := range route {
		box.minLat = math.Min(box.minLat, point.Latitude)
		box.maxLat = math.Max(box.maxLat, point.Latitude)
		box.minLon = math.Min(box.minLon, point.Longitude)
		box.maxLon = math.Max(box.maxLon, point.Longitude)
	}

	latBuffer := bufferMetres / 111_000

	avgLat := (box.minLat + box.maxLat) / 2
	lonScale := math.Cos(avgLat * math.Pi / 180)
	if lonScale < 0.1 {
		lonScale = 0.1
	}
	lonBuffer := latBuffer / lonScale

	box.minLat -= latBuffer
	box.maxLat += latBuffer
	box.minLon -= lonBuffer
	box.maxLon += lonBuffer

	return box
}

// tilesForBox enumerates every XYZ tile covering the box at one zoom level.
func tilesForBox(box boundingBox, zoom int) [][3]int {
	minX, maxY := TileXY(box.minLat, box.minLon, zoom)
	maxX, minY := TileXY(box.maxLat, box.maxLon, zoom)

	var tiles [][3]int
	for x := minX; x <= maxX; x++ {
		for y := minY; y <= maxY; y++ {
			tiles = append(tiles, [3]int{zoom, x, y})
		}
	}

	return tiles
}
