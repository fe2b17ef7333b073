// Package report renders calculation results as text lines, one per
// derived quantity, with a fixed number of decimals.
package report

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/cjeanneret/PhCalc/internal/logic/calc"
)

var decimalFormats = [...]string{"#,###.", "#,###.#", "#,###.##", "#,###.###"}

// Number formats v with the given decimals (0 to 3) and thousands separators.
func Number(v float64, decimals int) string {
	if decimals < 0 {
		decimals = 0
	}
	if decimals >= len(decimalFormats) {
		decimals = len(decimalFormats) - 1
	}
	return humanize.FormatFloat(decimalFormats[decimals], v)
}

// Distance formats a subject distance in meters, ∞ for infinity.
func Distance(m float64) string {
	if math.IsInf(m, 1) {
		return "∞"
	}
	return Number(m, 2) + " m"
}

// Lines returns the report lines for in and its results.
func Lines(in calc.Inputs, r calc.Results) []string {
	return []string{
		fmt.Sprintf("Pinhole Ø %s mm in a %s mm plate, focal length %s mm",
			Number(in.DiameterMm, 3), Number(in.ThicknessMm, 3), Number(in.FocalLengthMm, 1)),
		fmt.Sprintf("View angle is %s˚ which covers a diameter of %s mm",
			Number(r.ViewAngleDeg, 1), Number(r.CoverageDiameterMm, 1)),
		fmt.Sprintf("Focal length needed to cover the projection Ø is %s mm",
			Number(r.NeededFocalLengthMm, 1)),
		fmt.Sprintf("F-stop is f/%s which is %s f-stops from f/%s (t · %s)",
			Number(r.FStop, 1), Number(r.DeltaStops, 1), Number(in.ReferenceFStop, 0), Number(r.ExposureFactor, 1)),
		fmt.Sprintf("Vignetting for projection Ø %s mm (%s) is %s f-stops (%s) at a %s˚ angle",
			Number(in.ProjectionDiameterMm, 0), r.FormatName,
			Number(r.VignettingStops, 1), Number(r.VignettingFraction, 2), Number(r.VignettingAngleDeg, 1)),
		fmt.Sprintf("Optimal pinhole Ø for this focal length is %s mm (at %s magnification, subject at %s)",
			Number(r.OptimalDiameterMm, 2), Number(r.Magnification, 1), Distance(in.SubjectDistanceM)),
	}
}

// Write renders the report to w, one line per quantity.
func Write(w io.Writer, in calc.Inputs, r calc.Results) error {
	_, err := io.WriteString(w, strings.Join(Lines(in, r), "\n")+"\n")
	return err
}

// WriteCurve renders a vignetting curve as an aligned table.
func WriteCurve(w io.Writer, points []calc.CurvePoint) error {
	if _, err := fmt.Fprintf(w, "%10s %10s %10s %10s\n", "radius mm", "angle ˚", "fraction", "stops"); err != nil {
		return err
	}
	for _, p := range points {
		_, err := fmt.Fprintf(w, "%10s %10s %10s %10s\n",
			Number(p.RadiusMm, 1), Number(p.AngleDeg, 1), Number(p.Fraction, 3), Number(p.Stops, 2))
		if err != nil {
			return err
		}
	}
	return nil
}
