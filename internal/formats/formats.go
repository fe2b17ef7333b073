package formats

import (
	"fmt"
	"math"
	"strings"

	"github.com/cjeanneret/PhCalc/internal/optics"
)

const mmPerInch = 25.4

// Format is a film or sensor format, in millimeters.
type Format struct {
	Name     string  `json:"name"`
	WidthMm  float64 `json:"width_mm"`
	HeightMm float64 `json:"height_mm"`
}

// ProjectionDiameter returns the diameter of the smallest whole-millimeter
// circle that covers the format.
func (f Format) ProjectionDiameter() float64 {
	return optics.ProjectionDiagonal(f.WidthMm, f.HeightMm)
}

var presets = []Format{
	{"35mm", 24, 36},
	{"645", 60, 45},
	{"6x6", 60, 60},
	{"6x7", 60, 70},
	{"6x9", 60, 90},
	{"6x12", 60, 120},
	{`4"x5"`, 4 * mmPerInch, 5 * mmPerInch},
	{"6x17", 60, 170},
	{`5"x7"`, 5 * mmPerInch, 7 * mmPerInch},
	{`8"x10"`, 8 * mmPerInch, 10 * mmPerInch},
	{`11"x14"`, 11 * mmPerInch, 14 * mmPerInch},
	{`16"x20"`, 16 * mmPerInch, 20 * mmPerInch},
	{`20"x24"`, 20 * mmPerInch, 24 * mmPerInch},
}

// Presets returns the standard formats, smallest first.
// The returned slice is a copy.
func Presets() []Format {
	out := make([]Format, len(presets))
	copy(out, presets)
	return out
}

// ByName looks up a preset, ignoring case.
func ByName(name string) (Format, bool) {
	for _, f := range presets {
		if strings.EqualFold(f.Name, name) {
			return f, true
		}
	}
	return Format{}, false
}

// Describe names a projection diameter: the preset whose projection
// diameter p satisfies p-1 <= diameter < p+1, or else the side of the
// square inscribed in the circle ("30.4 sq").
func Describe(diameterMm float64) string {
	for _, f := range presets {
		p := f.ProjectionDiameter()
		if diameterMm >= p-1 && diameterMm < p+1 {
			return f.Name
		}
	}
	return fmt.Sprintf("%.1f sq", math.Sqrt(diameterMm*diameterMm/2.0))
}
