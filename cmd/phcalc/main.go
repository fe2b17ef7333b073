package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/cjeanneret/PhCalc/internal/chart"
	"github.com/cjeanneret/PhCalc/internal/config"
	"github.com/cjeanneret/PhCalc/internal/debug"
	"github.com/cjeanneret/PhCalc/internal/formats"
	"github.com/cjeanneret/PhCalc/internal/logic/calc"
	"github.com/cjeanneret/PhCalc/internal/report"
	"github.com/cjeanneret/PhCalc/internal/web"
)

func main() {
	// CLI flags
	webPort := &webPortFlag{defaultPort: 8080}
	flag.Var(webPort, "web", "start web server on port; -web= for default 8080, -web 8980 for custom port")
	cfgPath := flag.String("config", "", "path to config file (configs/*.yaml); empty = built-in defaults")
	diameterMm := flag.Float64("diameter_mm", 0, "override pinhole diameter in mm")
	thicknessMm := flag.Float64("thickness_mm", 0, "override plate thickness in mm")
	focalLengthMm := flag.Float64("focal_length_mm", 0, "override focal length in mm")
	projectionMm := flag.Float64("projection_diameter_mm", 0, "override desired projection diameter in mm")
	formatName := flag.String("format", "", "use the projection diameter of a film format (e.g. 6x9, 4\"x5\"); not with -projection_diameter_mm")
	wavelengthNm := flag.Float64("wavelength_nm", 0, "override wavelength in nm")
	rayleigh := flag.Float64("rayleigh_factor", 0, "override Rayleigh factor")
	subjectM := flag.Float64("subject_distance_m", 0, "override subject distance in m (inf = infinity)")
	referenceFStop := flag.Float64("reference_fstop", 0, "override reference f-stop")
	showCurve := flag.Bool("curve", false, "print the vignetting curve table")
	plotPath := flag.String("plot", "", "write a vignetting chart to this file (.png, .svg, .pdf)")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		log.Fatalf("load config failed: %v", err)
	}

	overrides := calc.Inputs{
		DiameterMm:           *diameterMm,
		ThicknessMm:          *thicknessMm,
		FocalLengthMm:        *focalLengthMm,
		ProjectionDiameterMm: *projectionMm,
		WavelengthNm:         *wavelengthNm,
		RayleighFactor:       *rayleigh,
		SubjectDistanceM:     *subjectM,
		ReferenceFStop:       *referenceFStop,
	}
	if overrides.ProjectionDiameterMm, err = formatOverride(*formatName, *projectionMm); err != nil {
		log.Fatalf("invalid CLI override: %v", err)
	}
	// Zero values mean "use config"
	if err := validateCLIOverrides(overrides); err != nil {
		log.Fatalf("invalid CLI override: %v", err)
	}
	inputs := applyOverrides(cfg.Inputs(), overrides)

	debug.Init(cfg.Defaults.DebugLevel)
	debug.Section("Initialization")
	debug.Value("Config path", configLabel(*cfgPath))
	debug.Value("Debug level", cfg.Defaults.DebugLevel)
	debug.PrintStruct("Inputs", inputs)

	if port := webPort.port(); port > 0 {
		webAddr := fmt.Sprintf(":%d", port)
		broadcaster := web.NewStatusBroadcaster()
		debug.SetOutput(io.MultiWriter(os.Stdout, web.BroadcastWriter(broadcaster)))
		srv := web.NewServer(webAddr, broadcaster, calculate("web"), web.InputsFrom(inputs), cfg.Defaults.CurveSamples)
		if err := srv.Run(ctx); err != nil {
			log.Fatalf("web server: %v", err)
		}
		return
	}

	if err := run(os.Stdout, inputs, *showCurve, *plotPath, cfg.Defaults.CurveSamples); err != nil {
		log.Fatalf("%v", err)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

func configLabel(path string) string {
	if path == "" {
		return "(built-in defaults)"
	}
	return path
}

// calculate wraps calc.Calculate with live logging.
func calculate(source string) web.CalculateFunc {
	return func(in calc.Inputs) calc.Results {
		r := calc.Calculate(in)
		debug.Recalc(source, r.FStop, r.OptimalDiameterMm, r.VignettingStops)
		if debug.IsEnabled(debug.LevelVerbose) {
			for _, line := range report.Lines(in, r) {
				debug.Verbose("%s", line)
			}
		}
		return r
	}
}

// run prints the report for in, and optionally the vignetting curve and a chart file.
func run(w io.Writer, in calc.Inputs, showCurve bool, plotPath string, samples int) error {
	debug.Step(1, "Calculating")
	res := calculate("cli")(in)

	debug.Summary("Pinhole Calculations")
	if err := report.Write(w, in, res); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	if !showCurve && plotPath == "" {
		return nil
	}

	debug.Step(2, "Sampling vignetting curve")
	points := calc.VignettingCurve(in.FocalLengthMm, in.ProjectionDiameterMm/2, samples)
	for _, p := range points {
		debug.Trace("r=%.2f mm angle=%.2f˚ fraction=%.4f stops=%.3f", p.RadiusMm, p.AngleDeg, p.Fraction, p.Stops)
	}
	if showCurve {
		fmt.Fprintln(w)
		if err := report.WriteCurve(w, points); err != nil {
			return fmt.Errorf("write curve: %w", err)
		}
	}
	if plotPath != "" {
		debug.Step(3, "Writing chart")
		if err := chart.Save(plotPath, in.FocalLengthMm, points); err != nil {
			return err
		}
		debug.Info("Chart written to %s", plotPath)
	}
	return nil
}

// formatOverride resolves -format to a projection diameter. Without a format
// the -projection_diameter_mm value is returned as is; giving both is an error.
func formatOverride(name string, projectionMm float64) (float64, error) {
	if name == "" {
		return projectionMm, nil
	}
	if projectionMm != 0 {
		return 0, fmt.Errorf("-format and -projection_diameter_mm are mutually exclusive")
	}
	f, ok := formats.ByName(name)
	if !ok {
		return 0, fmt.Errorf("unknown format %q", name)
	}
	return f.ProjectionDiameter(), nil
}

// validateCLIOverrides checks that non-zero CLI overrides are usable.
// Zero values are ignored (they mean "use config default").
// Only the subject distance may be infinite.
func validateCLIOverrides(o calc.Inputs) error {
	fields := []struct {
		name string
		v    float64
	}{
		{"diameter_mm", o.DiameterMm},
		{"thickness_mm", o.ThicknessMm},
		{"focal_length_mm", o.FocalLengthMm},
		{"projection_diameter_mm", o.ProjectionDiameterMm},
		{"wavelength_nm", o.WavelengthNm},
		{"rayleigh_factor", o.RayleighFactor},
		{"reference_fstop", o.ReferenceFStop},
	}
	for _, f := range fields {
		if f.v == 0 {
			continue
		}
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) || f.v < 0 {
			return fmt.Errorf("%s must be a positive number, got %g", f.name, f.v)
		}
	}
	if s := o.SubjectDistanceM; math.IsNaN(s) || math.IsInf(s, -1) || s < 0 {
		return fmt.Errorf("subject_distance_m must be positive or inf, got %g", s)
	}
	return nil
}

// applyOverrides returns base with every non-zero override applied.
func applyOverrides(base, o calc.Inputs) calc.Inputs {
	set := func(dst *float64, v float64) {
		if v != 0 {
			*dst = v
		}
	}
	set(&base.DiameterMm, o.DiameterMm)
	set(&base.ThicknessMm, o.ThicknessMm)
	set(&base.FocalLengthMm, o.FocalLengthMm)
	set(&base.ProjectionDiameterMm, o.ProjectionDiameterMm)
	set(&base.WavelengthNm, o.WavelengthNm)
	set(&base.RayleighFactor, o.RayleighFactor)
	set(&base.SubjectDistanceM, o.SubjectDistanceM)
	set(&base.ReferenceFStop, o.ReferenceFStop)
	return base
}

// webPortFlag implements flag.Value for -web: 0 = disabled, -web= or -web 8080 → 8080, -web 8980 → 8980.
type webPortFlag struct {
	val         int
	defaultPort int
}

func (w *webPortFlag) String() string {
	if w.val == 0 {
		return "0"
	}
	return strconv.Itoa(w.val)
}

func (w *webPortFlag) Set(s string) error {
	if s == "" {
		w.val = w.defaultPort
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return err
	}
	if v <= 0 || v > 65535 {
		return fmt.Errorf("port must be 1-65535, got %d", v)
	}
	w.val = v
	return nil
}

func (w *webPortFlag) port() int { return w.val }
