package domain

// classifyMaxDistSq bounds how far a sample may sit from its nearest ramp
// stop and still classify: 50 per channel, squared. Map background colors
// (sea blue-gray, land gray, white coastline) all fall well outside it.
const classifyMaxDistSq = 2500

// Classify maps a sampled pixel color to a continuous intensity value.
// The nearest ramp stop anchors the match; the sample is then projected
// onto the ramp segment toward its closer neighbor, interpolating the two
// stops' intensities. An exact reference color returns that stop's value
// exactly. The second return is false when the color lies outside ramp
// coverage. Pure and deterministic.
func Classify(c RGB) (float64, bool) {
	nearest, nearestDist := 0, c.distSq(intensityRamp[0].Color)
	for i := 1; i < len(intensityRamp); i++ {
		if d := c.distSq(intensityRamp[i].Color); d < nearestDist {
			nearest, nearestDist = i, d
		}
	}
	if nearestDist > classifyMaxDistSq {
		return 0, false
	}

	neighbor := rampNeighbor(nearest, c)
	t := projectOnSegment(intensityRamp[nearest].Color, intensityRamp[neighbor].Color, c)
	value := intensityRamp[nearest].Value + t*(intensityRamp[neighbor].Value-intensityRamp[nearest].Value)
	return value, true
}

// rampNeighbor picks the adjacent stop the sample leans toward. At the
// ramp's ends only one side exists.
func rampNeighbor(i int, c RGB) int {
	switch {
	case i == 0:
		return 1
	case i == len(intensityRamp)-1:
		return i - 1
	case c.distSq(intensityRamp[i-1].Color) < c.distSq(intensityRamp[i+1].Color):
		return i - 1
	default:
		return i + 1
	}
}

// projectOnSegment returns where p falls along the a→b segment in RGB
// space, clamped to [0, 1]. 0 means exactly at a, 1 exactly at b.
func projectOnSegment(a, b, p RGB) float64 {
	abR := float64(int(b.R) - int(a.R))
	abG := float64(int(b.G) - int(a.G))
	abB := float64(int(b.B) - int(a.B))
	denom := abR*abR + abG*abG + abB*abB
	if denom == 0 {
		return 0
	}
	apR := float64(int(p.R) - int(a.R))
	apG := float64(int(p.G) - int(a.G))
	apB := float64(int(p.B) - int(a.B))
	t := (apR*abR + apG*abG + apB*abB) / denom
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}
