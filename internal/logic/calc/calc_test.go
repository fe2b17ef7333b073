package calc

import (
	"math"
	"testing"
)

const epsilon = 0.01

func TestDefaultInputs(t *testing.T) {
	in := DefaultInputs()
	if !math.IsInf(in.SubjectDistanceM, 1) {
		t.Errorf("SubjectDistanceM = %v, want +Inf", in.SubjectDistanceM)
	}
	if in.ReferenceFStop != 32 {
		t.Errorf("ReferenceFStop = %v, want 32", in.ReferenceFStop)
	}
	if in.ProjectionDiameterMm != 44 {
		t.Errorf("ProjectionDiameterMm = %v, want 44", in.ProjectionDiameterMm)
	}
}

func TestCalculate_Defaults(t *testing.T) {
	r := Calculate(DefaultInputs())

	if r.Magnification != 0 {
		t.Errorf("Magnification = %v, want 0 for a subject at infinity", r.Magnification)
	}
	if math.Abs(r.OptimalDiameterMm-0.2587) > 0.001 {
		t.Errorf("OptimalDiameterMm = %v, want ~0.26", r.OptimalDiameterMm)
	}
	// atan(0.3 / 0.04) ~ 82.41°
	if math.Abs(r.HalfViewAngleDeg-82.405) > epsilon {
		t.Errorf("HalfViewAngleDeg = %v, want ~82.41", r.HalfViewAngleDeg)
	}
	if r.ViewAngleDeg != 2*r.HalfViewAngleDeg {
		t.Errorf("ViewAngleDeg = %v, want twice the half angle", r.ViewAngleDeg)
	}
	if r.CoverageDiameterMm != 2*r.CoverageRadiusMm {
		t.Errorf("CoverageDiameterMm = %v, want twice the radius", r.CoverageDiameterMm)
	}
	if math.Abs(r.FStop-166.67) > epsilon {
		t.Errorf("FStop = %v, want ~166.67", r.FStop)
	}
	if math.Abs(r.DeltaStops-4.76) > epsilon {
		t.Errorf("DeltaStops = %v, want ~4.76", r.DeltaStops)
	}
	if math.Abs(r.DeltaThirds-3*r.DeltaStops) > 1e-9 {
		t.Errorf("DeltaThirds = %v, want 3 x DeltaStops", r.DeltaThirds)
	}
	if math.Abs(r.ExposureFactor-27.13) > epsilon {
		t.Errorf("ExposureFactor = %v, want ~27.13", r.ExposureFactor)
	}
	if r.FormatName != "35mm" {
		t.Errorf("FormatName = %q, want 35mm", r.FormatName)
	}
}

func TestCalculate_VignettingUsesRadius(t *testing.T) {
	in := DefaultInputs()
	in.FocalLengthMm = 50
	in.ProjectionDiameterMm = 100 // radius 50 -> 45° edge

	r := Calculate(in)
	if math.Abs(r.VignettingAngleDeg-45) > 1e-9 {
		t.Errorf("VignettingAngleDeg = %v, want 45", r.VignettingAngleDeg)
	}
	if math.Abs(r.VignettingFraction-0.25) > 1e-9 {
		t.Errorf("VignettingFraction = %v, want 0.25", r.VignettingFraction)
	}
	if math.Abs(r.VignettingStops-2) > 1e-9 {
		t.Errorf("VignettingStops = %v, want 2", r.VignettingStops)
	}
}

func TestCalculate_NeededFocalLength(t *testing.T) {
	in := DefaultInputs()
	in.DiameterMm = 1
	in.ThicknessMm = 1 // half angle 45°
	in.ProjectionDiameterMm = 44

	r := Calculate(in)
	if math.Abs(r.NeededFocalLengthMm-22) > 1e-9 {
		t.Errorf("NeededFocalLengthMm = %v, want 22", r.NeededFocalLengthMm)
	}
	if math.Abs(r.CoverageRadiusMm-in.FocalLengthMm) > 1e-9 {
		t.Errorf("CoverageRadiusMm = %v, want %v", r.CoverageRadiusMm, in.FocalLengthMm)
	}
}

func TestCalculate_SubjectDistanceRaisesMagnification(t *testing.T) {
	in := DefaultInputs()
	in.SubjectDistanceM = 0.1 // 100mm away with a 50mm focal length

	r := Calculate(in)
	if math.Abs(r.Magnification-0.5) > 1e-9 {
		t.Errorf("Magnification = %v, want 0.5", r.Magnification)
	}
	far := Calculate(DefaultInputs())
	if r.OptimalDiameterMm >= far.OptimalDiameterMm {
		t.Errorf("close subject diameter (%v) should be below infinity diameter (%v)",
			r.OptimalDiameterMm, far.OptimalDiameterMm)
	}
}

func TestCalculate_RecomputesOnEveryCall(t *testing.T) {
	in := DefaultInputs()
	first := Calculate(in)

	in.FocalLengthMm = 150
	second := Calculate(in)
	if second.FStop == first.FStop {
		t.Error("FStop should follow the focal length change")
	}

	in.FocalLengthMm = 50
	if again := Calculate(in); again != first {
		t.Errorf("same inputs gave different results:\n%+v\n%+v", again, first)
	}
}

func TestCalculate_ZeroThicknessSaturates(t *testing.T) {
	in := DefaultInputs()
	in.ThicknessMm = 0

	r := Calculate(in)
	if math.Abs(r.HalfViewAngleDeg-90) > 1e-9 {
		t.Errorf("HalfViewAngleDeg = %v, want 90", r.HalfViewAngleDeg)
	}
}

// ---------- VignettingCurve ----------

func TestVignettingCurve_Endpoints(t *testing.T) {
	pts := VignettingCurve(50, 50, 11)
	if len(pts) != 11 {
		t.Fatalf("len = %d, want 11", len(pts))
	}
	if pts[0].RadiusMm != 0 || pts[0].Fraction != 1 || pts[0].Stops != 0 {
		t.Errorf("center sample = %+v, want radius 0, fraction 1, stops 0", pts[0])
	}
	last := pts[len(pts)-1]
	if last.RadiusMm != 50 {
		t.Errorf("last radius = %v, want 50", last.RadiusMm)
	}
	if math.Abs(last.Fraction-0.25) > 1e-9 {
		t.Errorf("last fraction = %v, want 0.25", last.Fraction)
	}
}

func TestVignettingCurve_Monotonic(t *testing.T) {
	pts := VignettingCurve(50, 120, 25)
	for i := 1; i < len(pts); i++ {
		if pts[i].Fraction >= pts[i-1].Fraction {
			t.Fatalf("fraction at %vmm (%v) should drop below %vmm (%v)",
				pts[i].RadiusMm, pts[i].Fraction, pts[i-1].RadiusMm, pts[i-1].Fraction)
		}
		if pts[i].Stops <= pts[i-1].Stops {
			t.Fatalf("stops at %vmm should rise", pts[i].RadiusMm)
		}
	}
}

func TestVignettingCurve_MinimumSamples(t *testing.T) {
	for _, n := range []int{-1, 0, 1} {
		if got := len(VignettingCurve(50, 22, n)); got != 2 {
			t.Errorf("samples=%d: len = %d, want 2", n, got)
		}
	}
}
