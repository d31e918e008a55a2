package domain

// Scale is a JMA seismic intensity class. The numeric order of the
// constants follows the scale itself, so Scale values compare correctly
// with < and >.
type Scale int

const (
	ScaleUnknown Scale = iota
	Scale0
	Scale1
	Scale2
	Scale3
	Scale4
	Scale5Lower // 5-
	Scale5Upper // 5+
	Scale6Lower // 6-
	Scale6Upper // 6+
	Scale7
)

var scaleLabels = map[Scale]string{
	Scale0:      "0",
	Scale1:      "1",
	Scale2:      "2",
	Scale3:      "3",
	Scale4:      "4",
	Scale5Lower: "5-",
	Scale5Upper: "5+",
	Scale6Lower: "6-",
	Scale6Upper: "6+",
	Scale7:      "7",
}

func (s Scale) String() string {
	if label, ok := scaleLabels[s]; ok {
		return label
	}
	return "Unknown"
}

// ScaleFromValue buckets a continuous intensity into its JMA class using
// the official boundaries. Classes 0-4 and 7 span a full unit; 5 and 6
// split into lower/upper halves at the .0 and .5 marks.
func ScaleFromValue(v float64) Scale {
	switch {
	case v < 0.5:
		return Scale0
	case v < 1.5:
		return Scale1
	case v < 2.5:
		return Scale2
	case v < 3.5:
		return Scale3
	case v < 4.5:
		return Scale4
	case v < 5.0:
		return Scale5Lower
	case v < 5.5:
		return Scale5Upper
	case v < 6.0:
		return Scale6Lower
	case v < 6.5:
		return Scale6Upper
	default:
		return Scale7
	}
}
