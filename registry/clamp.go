package registry

// Clamp1to8 enforces the universal 1..=8 bound shared by params, values, and
// speeds.
func Clamp1to8(v int) int {
	if v < 1 {
		return 1
	}
	if v > 8 {
		return 8
	}
	return v
}
