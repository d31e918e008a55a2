package domain

import "fmt"

// RGB is a sampled map pixel color. Alpha is dropped at the grid boundary;
// a fully transparent pixel arrives here as black and falls outside ramp
// coverage.
type RGB struct {
	R, G, B uint8
}

// Hex renders the color as "#rrggbb" for logs and readings.
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// distSq is the squared Euclidean distance between two colors in RGB space.
func (c RGB) distSq(o RGB) int {
	dr := int(c.R) - int(o.R)
	dg := int(c.G) - int(o.G)
	db := int(c.B) - int(o.B)
	return dr*dr + dg*dg + db*db
}

// rampStop pairs one reference color with the intensity it renders.
type rampStop struct {
	Color RGB
	Value float64
}

// intensityRamp is the fixed Kyoshin color scale, one stop every 0.5 from
// -3.0 to +7.0, ordered by intensity. Static configuration; never mutated.
var intensityRamp = []rampStop{
	{RGB{0, 0, 205}, -3.0},
	{RGB{0, 7, 209}, -2.5},
	{RGB{0, 44, 223}, -2.0},
	{RGB{0, 82, 237}, -1.5},
	{RGB{0, 120, 251}, -1.0},
	{RGB{0, 153, 244}, -0.5},
	{RGB{0, 180, 212}, 0.0},
	{RGB{0, 207, 181}, 0.5},
	{RGB{0, 234, 149}, 1.0},
	{RGB{8, 250, 112}, 1.5},
	{RGB{61, 251, 53}, 2.0},
	{RGB{114, 252, 0}, 2.5},
	{RGB{173, 252, 0}, 3.0},
	{RGB{232, 252, 0}, 3.5},
	{RGB{252, 230, 0}, 4.0},
	{RGB{252, 178, 0}, 4.5},
	{RGB{252, 125, 0}, 5.0},
	{RGB{252, 69, 0}, 5.5},
	{RGB{250, 14, 0}, 6.0},
	{RGB{219, 0, 9}, 6.5},
	{RGB{180, 0, 104}, 7.0},
}
