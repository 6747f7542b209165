package skydf

import (
	"fmt"
	"time"
)

// TileRecord is one cached slippy-map tile belonging to a flight.
type TileRecord struct {
	Key       string    `json:"key"` // "{z}/{x}/{y}"
	FlightID  string    `json:"flightId"`
	SizeBytes int64     `json:"sizeBytes"`
	StoredAt  time.Time `json:"storedAt"`
}

func TileKey(z, x, y int) string {
	return fmt.Sprintf("%d/%d/%d", z, x, y)
}
