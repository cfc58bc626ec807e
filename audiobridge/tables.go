package audiobridge

// The four param-mapping tables a node type's ParamMap.Mapping can name,
// each with exactly 8 entries, one per clamped param value 1..8. The units
// are the sample engine's: decay as a gate fraction, crush in bits, hpf
// and lpf in hertz.
var (
	decayTable = [8]float64{1.0, 0.875, 0.75, 0.625, 0.5, 0.375, 0.25, 0.125}
	crushTable = [8]float64{16, 14, 12, 10, 8, 6, 4, 2}
	hpfTable   = [8]float64{100, 200, 400, 800, 1600, 3200, 6400, 12000}
	lpfTable   = [8]float64{12000, 6400, 3200, 1600, 800, 400, 200, 100}
)

// mappingTargets maps a table name to the wire-format key its mapped
// value lands on. The bridge owns this vocabulary; registry entries only
// carry the table name.
var mappingTargets = map[string]string{
	"decayTable": "end",
	"crushTable": "crush",
	"hpfTable":   "hpf",
	"lpfTable":   "lpf",
}

func tableFor(name string) []float64 {
	switch name {
	case "decayTable":
		return decayTable[:]
	case "crushTable":
		return crushTable[:]
	case "hpfTable":
		return hpfTable[:]
	case "lpfTable":
		return lpfTable[:]
	default:
		return nil
	}
}
