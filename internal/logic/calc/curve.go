package calc

import "github.com/cjeanneret/PhCalc/internal/optics"

// CurvePoint is one sample of the vignetting falloff.
type CurvePoint struct {
	RadiusMm float64 `json:"radius_mm"`
	AngleDeg float64 `json:"angle_deg"`
	Fraction float64 `json:"fraction"`
	Stops    float64 `json:"stops"`
}

// VignettingCurve samples the cos⁴ falloff from the image center (radius 0)
// out to maxRadiusMm, both ends included. Fewer than 2 samples means 2.
func VignettingCurve(focalLengthMm, maxRadiusMm float64, samples int) []CurvePoint {
	if samples < 2 {
		samples = 2
	}
	points := make([]CurvePoint, samples)
	step := maxRadiusMm / float64(samples-1)
	for i := range points {
		radius := float64(i) * step
		if i == samples-1 {
			radius = maxRadiusMm
		}
		fraction, angle := optics.Vignetting(focalLengthMm, radius)
		points[i] = CurvePoint{
			RadiusMm: radius,
			AngleDeg: angle,
			Fraction: fraction,
			Stops:    optics.StopEquivalent(fraction),
		}
	}
	return points
}
