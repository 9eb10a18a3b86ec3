// Package units provides shared constants and validation for speed units
package units

// Unit constants
const (
	PxPerSecond = "pxs"
	PxPerFrame  = "pxf"
)

// ValidUnits contains all valid unit values
var ValidUnits = []string{PxPerSecond, PxPerFrame}

// IsValid checks if the given unit is in the list of valid units
func IsValid(unit string) bool {
	for _, validUnit := range ValidUnits {
		if unit == validUnit {
			return true
		}
	}
	return false
}

// GetValidUnitsString returns a comma-separated string of valid units for error messages
func GetValidUnitsString() string {
	return "pxs, pxf"
}

// ConvertSpeed converts a speed from pixels per second to the target units.
// Exports store speeds in px/s (pixels per second); px/frame divides the
// frame rate back out. A non-positive fps leaves the value unconverted.
func ConvertSpeed(speedPxPerSecond, fps float64, targetUnits string) float64 {
	switch targetUnits {
	case PxPerFrame:
		if fps <= 0 {
			return speedPxPerSecond
		}
		return speedPxPerSecond / fps
	case PxPerSecond:
		return speedPxPerSecond // no conversion needed
	default:
		return speedPxPerSecond // default to px/s if unknown unit
	}
}
