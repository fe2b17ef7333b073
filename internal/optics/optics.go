// Package optics holds the pinhole camera formulas.
//
// Every function is pure: lengths are in millimeters, wavelengths in
// nanometers, angles in degrees. Nothing is validated; degenerate inputs
// (zero, negative, infinite) propagate through IEEE-754 arithmetic and come
// back as Inf, NaN or a saturated angle.
package optics

import "math"

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}

func toDegrees(rad float64) float64 {
	return rad * 180.0 / math.Pi
}

// OptimalPinholeDiameter returns the diffraction-limited optimal diameter in mm.
// Formula: d = rayleigh × sqrt((λ_mm × f) / (1 + m))
//
// A subject at infinity has magnification 0, which gives the classic
// rayleigh × sqrt(λ × f).
func OptimalPinholeDiameter(focalLengthMm, wavelengthNm, rayleighFactor, magnification float64) float64 {
	wavelengthMm := wavelengthNm / 1000000.0
	return rayleighFactor * math.Sqrt((wavelengthMm*focalLengthMm)/(1.0+magnification))
}

// HalfViewAngle returns half of the field of view allowed by the pinhole
// channel, in degrees. Double it for the full angle.
// Formula: atan(diameter / thickness)
func HalfViewAngle(diameterMm, thicknessMm float64) float64 {
	return toDegrees(math.Atan(diameterMm / thicknessMm))
}

// Vignetting returns the natural (cos⁴) light fraction at the edge of a
// projected circle of the given RADIUS, and the off-axis angle in degrees.
// Callers holding a diameter must halve it first.
func Vignetting(focalLengthMm, filmRadiusMm float64) (fraction, angleDeg float64) {
	angleDeg = 90.0 - toDegrees(math.Atan(focalLengthMm/filmRadiusMm))
	fraction = math.Pow(math.Cos(toRadians(angleDeg)), 4)
	return fraction, angleDeg
}

// StopEquivalent converts a light fraction to stops of light loss.
// 0.56 (a typical cos⁴ value) is about 0.84 stops; 0 is +Inf.
func StopEquivalent(fraction float64) float64 {
	return -math.Log2(fraction)
}

// DeltaStops returns the number of stops from reference to actual.
// Positive when actual is the smaller aperture (less light).
func DeltaStops(referenceFStop, actualFStop float64) float64 {
	return 2.0 * math.Log2(actualFStop/referenceFStop)
}

// ThirdStops is DeltaStops counted in thirds of a stop.
func ThirdStops(referenceFStop, actualFStop float64) float64 {
	return 3.0 * DeltaStops(referenceFStop, actualFStop)
}

// CoverageRadius returns the radius covered on the image plane by the
// given half-angle at the given focal length.
func CoverageRadius(focalLengthMm, viewAngleDeg float64) float64 {
	return focalLengthMm * math.Tan(toRadians(viewAngleDeg))
}

// NeededFocalLength returns the focal length at which the half-angle
// exactly covers the given radius. It works on the complementary angle and
// only agrees with CoverageRadius at 45°.
func NeededFocalLength(radiusMm, viewAngleDeg float64) float64 {
	return radiusMm * math.Tan(toRadians(90.0-viewAngleDeg))
}

// ProjectionDiagonal returns the diagonal of a width × height format,
// rounded up so the projected circle never undershoots the format.
// A 24 × 36 mm frame gives 44, not 43.
func ProjectionDiagonal(widthMm, heightMm float64) float64 {
	return math.Ceil(math.Sqrt(widthMm*widthMm + heightMm*heightMm))
}

// Magnification returns f / subject distance, with the distance in meters.
// An infinite distance gives 0.
func Magnification(focalLengthMm, subjectDistanceM float64) float64 {
	return focalLengthMm / (subjectDistanceM * 1000.0)
}

// EffectiveFStop returns focal length / aperture diameter.
func EffectiveFStop(focalLengthMm, diameterMm float64) float64 {
	return focalLengthMm / diameterMm
}

// ExposureFactor returns the exposure time multiplier needed at actual
// compared to reference: (actual / reference)².
func ExposureFactor(referenceFStop, actualFStop float64) float64 {
	r := actualFStop / referenceFStop
	return r * r
}
