package utils

import "fmt"

const sizeUnitStep = 1024

var sizeUnits = []string{"KiB", "MiB", "GiB", "TiB"}

// FormatFileSize renders a byte count for log output: plain bytes below one KiB, otherwise one decimal
// place in binary units.
func FormatFileSize(bytes int64) string {
	if bytes < sizeUnitStep {
		if bytes < 0 {
			bytes = 0
		}
		return fmt.Sprintf("%d B", bytes)
	}
	value := float64(bytes) / sizeUnitStep
	unitIndex := 0
	for value >= sizeUnitStep && unitIndex < len(sizeUnits)-1 {
		value /= sizeUnitStep
		unitIndex++
	}
	return fmt.Sprintf("%.1f %s", value, sizeUnits[unitIndex])
}
