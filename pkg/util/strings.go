package util

import "fmt"

func TrimString(s string, length int) string {
	if len(s) <= length {
		return s
	}

	return s[:length]
}

// FormatBytes renders a byte count for CLI and API output.
func FormatBytes(size int64) string {
	units := []string{"KiB", "MiB", "GiB", "TiB"}

	if size < 1024 {
		return fmt.Sprintf("%d B", size)
	}

	value := float64(size)
	unit := -1
	for value >= 1024 && unit < len(units)-1 {
		value /= 1024
		unit++
	}

	return fmt.Sprintf("%.1f %s", value, units[unit])
}
