package series

import (
	"fmt"
	"math"
)

// FormatPrice renders a price with two decimals, or N/A when absent.
func FormatPrice(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf("$%.2f", *v)
}

// FormatTick formats a y-axis tick in currency units.
func FormatTick(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}

// FormatYear formats an x-axis tick as a whole year.
func FormatYear(v float64) string {
	return fmt.Sprintf("%d", int(math.Round(v)))
}

// AvailabilityLabel describes a tri-state availability flag.
func AvailabilityLabel(available *bool) string {
	switch {
	case available == nil:
		return "Unspecified"
	case *available:
		return "Available"
	default:
		return "Not Available"
	}
}
