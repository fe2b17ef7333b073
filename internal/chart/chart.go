package chart

import (
	"fmt"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/cjeanneret/PhCalc/internal/logic/calc"
)

const (
	width  = 6 * vg.Inch
	height = 4 * vg.Inch
)

// Vignetting builds a plot of light loss (in stops) against the distance
// from the image center. Infinite stops are skipped.
func Vignetting(focalLengthMm float64, points []calc.CurvePoint) (*plot.Plot, error) {
	if len(points) == 0 {
		return nil, fmt.Errorf("no curve points")
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("cos⁴ vignetting at %.0f mm focal length", focalLengthMm)
	p.X.Label.Text = "Radius on image plane (mm)"
	p.Y.Label.Text = "Light loss (stops)"
	p.Add(plotter.NewGrid())

	xys := make(plotter.XYs, 0, len(points))
	for _, pt := range points {
		if plotter.CheckFloats(pt.RadiusMm, pt.Stops) != nil {
			continue
		}
		xys = append(xys, plotter.XY{X: pt.RadiusMm, Y: pt.Stops})
	}
	if len(xys) == 0 {
		return nil, fmt.Errorf("no finite curve points")
	}

	if err := plotutil.AddLinePoints(p, "stops", xys); err != nil {
		return nil, fmt.Errorf("add curve: %w", err)
	}
	return p, nil
}

// Save writes the chart to path; the extension selects the format
// (.png, .svg, .pdf, ...).
func Save(path string, focalLengthMm float64, points []calc.CurvePoint) error {
	p, err := Vignetting(focalLengthMm, points)
	if err != nil {
		return err
	}
	if err := p.Save(width, height, path); err != nil {
		return fmt.Errorf("save chart: %w", err)
	}
	return nil
}

// Write renders the chart to w in the given format ("png", "svg", "pdf").
func Write(w io.Writer, format string, focalLengthMm float64, points []calc.CurvePoint) error {
	p, err := Vignetting(focalLengthMm, points)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(width, height, format)
	if err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("write chart: %w", err)
	}
	return nil
}
