package calc

import (
	"math"

	"github.com/cjeanneret/PhCalc/internal/formats"
	"github.com/cjeanneret/PhCalc/internal/optics"
)

// Inputs holds every user-adjustable parameter of a pinhole camera.
type Inputs struct {
	DiameterMm           float64 // pinhole diameter
	ThicknessMm          float64 // plate thickness
	FocalLengthMm        float64 // pinhole to image plane
	ProjectionDiameterMm float64 // desired image circle (a diameter, not a radius)
	WavelengthNm         float64
	RayleighFactor       float64
	SubjectDistanceM     float64 // +Inf for a subject at infinity
	ReferenceFStop       float64 // stops are reported relative to this (f/32 by default)
}

// DefaultInputs returns the starting values of a new session.
func DefaultInputs() Inputs {
	return Inputs{
		DiameterMm:           0.3,
		ThicknessMm:          0.04,
		FocalLengthMm:        50,
		ProjectionDiameterMm: 44,
		WavelengthNm:         550,
		RayleighFactor:       1.56,
		SubjectDistanceM:     math.Inf(1),
		ReferenceFStop:       32,
	}
}

// Results holds every quantity derived from Inputs.
type Results struct {
	Magnification     float64 `json:"magnification"`
	OptimalDiameterMm float64 `json:"optimal_diameter_mm"`

	HalfViewAngleDeg   float64 `json:"half_view_angle_deg"`
	ViewAngleDeg       float64 `json:"view_angle_deg"`
	CoverageRadiusMm   float64 `json:"coverage_radius_mm"`
	CoverageDiameterMm float64 `json:"coverage_diameter_mm"`

	// Focal length at which the current view angle covers the projection circle.
	NeededFocalLengthMm float64 `json:"needed_focal_length_mm"`

	FStop          float64 `json:"f_stop"`
	DeltaStops     float64 `json:"delta_stops"`
	DeltaThirds    float64 `json:"delta_thirds"`
	ExposureFactor float64 `json:"exposure_factor"`

	VignettingFraction float64 `json:"vignetting_fraction"`
	VignettingAngleDeg float64 `json:"vignetting_angle_deg"`
	VignettingStops    float64 `json:"vignetting_stops"`

	FormatName string `json:"format_name"`
}

// Calculate derives every result from in. Nothing is cached: callers run it
// again after any input change.
func Calculate(in Inputs) Results {
	var r Results

	r.Magnification = optics.Magnification(in.FocalLengthMm, in.SubjectDistanceM)
	r.OptimalDiameterMm = optics.OptimalPinholeDiameter(in.FocalLengthMm, in.WavelengthNm, in.RayleighFactor, r.Magnification)

	r.HalfViewAngleDeg = optics.HalfViewAngle(in.DiameterMm, in.ThicknessMm)
	r.ViewAngleDeg = 2 * r.HalfViewAngleDeg
	r.CoverageRadiusMm = optics.CoverageRadius(in.FocalLengthMm, r.HalfViewAngleDeg)
	r.CoverageDiameterMm = 2 * r.CoverageRadiusMm

	projectionRadius := in.ProjectionDiameterMm / 2
	r.NeededFocalLengthMm = optics.NeededFocalLength(projectionRadius, r.HalfViewAngleDeg)

	r.FStop = optics.EffectiveFStop(in.FocalLengthMm, in.DiameterMm)
	r.DeltaStops = optics.DeltaStops(in.ReferenceFStop, r.FStop)
	r.DeltaThirds = optics.ThirdStops(in.ReferenceFStop, r.FStop)
	r.ExposureFactor = optics.ExposureFactor(in.ReferenceFStop, r.FStop)

	r.VignettingFraction, r.VignettingAngleDeg = optics.Vignetting(in.FocalLengthMm, projectionRadius)
	r.VignettingStops = optics.StopEquivalent(r.VignettingFraction)

	r.FormatName = formats.Describe(in.ProjectionDiameterMm)
	return r
}
