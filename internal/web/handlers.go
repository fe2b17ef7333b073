package web

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"math"
	"net/http"
	"strconv"

	"github.com/cjeanneret/PhCalc/internal/chart"
	"github.com/cjeanneret/PhCalc/internal/debug"
	"github.com/cjeanneret/PhCalc/internal/formats"
	"github.com/cjeanneret/PhCalc/internal/logic/calc"
	"github.com/cjeanneret/PhCalc/internal/report"
)

const maxBodyBytes = 1 << 20

// Inputs is the JSON form of calc.Inputs.
// SubjectDistanceM 0 means infinity, since JSON has no Inf.
type Inputs struct {
	DiameterMm           float64 `json:"diameter_mm"`
	ThicknessMm          float64 `json:"thickness_mm"`
	FocalLengthMm        float64 `json:"focal_length_mm"`
	ProjectionDiameterMm float64 `json:"projection_diameter_mm"`
	WavelengthNm         float64 `json:"wavelength_nm"`
	RayleighFactor       float64 `json:"rayleigh_factor"`
	SubjectDistanceM     float64 `json:"subject_distance_m"`
	ReferenceFStop       float64 `json:"reference_fstop"`
}

// InputsFrom converts calculator inputs to their JSON form.
func InputsFrom(in calc.Inputs) Inputs {
	subject := in.SubjectDistanceM
	if math.IsInf(subject, 1) {
		subject = 0
	}
	return Inputs{
		DiameterMm:           in.DiameterMm,
		ThicknessMm:          in.ThicknessMm,
		FocalLengthMm:        in.FocalLengthMm,
		ProjectionDiameterMm: in.ProjectionDiameterMm,
		WavelengthNm:         in.WavelengthNm,
		RayleighFactor:       in.RayleighFactor,
		SubjectDistanceM:     subject,
		ReferenceFStop:       in.ReferenceFStop,
	}
}

// Calc converts back to calculator inputs.
func (in Inputs) Calc() calc.Inputs {
	subject := in.SubjectDistanceM
	if subject == 0 {
		subject = math.Inf(1)
	}
	return calc.Inputs{
		DiameterMm:           in.DiameterMm,
		ThicknessMm:          in.ThicknessMm,
		FocalLengthMm:        in.FocalLengthMm,
		ProjectionDiameterMm: in.ProjectionDiameterMm,
		WavelengthNm:         in.WavelengthNm,
		RayleighFactor:       in.RayleighFactor,
		SubjectDistanceM:     subject,
		ReferenceFStop:       in.ReferenceFStop,
	}
}

// withDefaults fills zero fields from d. Subject distance is left alone:
// its zero already means infinity.
func (in Inputs) withDefaults(d Inputs) Inputs {
	fill := func(v *float64, def float64) {
		if *v == 0 {
			*v = def
		}
	}
	fill(&in.DiameterMm, d.DiameterMm)
	fill(&in.ThicknessMm, d.ThicknessMm)
	fill(&in.FocalLengthMm, d.FocalLengthMm)
	fill(&in.ProjectionDiameterMm, d.ProjectionDiameterMm)
	fill(&in.WavelengthNm, d.WavelengthNm)
	fill(&in.RayleighFactor, d.RayleighFactor)
	fill(&in.ReferenceFStop, d.ReferenceFStop)
	return in
}

// ValidateInputs checks that every value is a finite positive number
// (subject distance may also be 0).
func ValidateInputs(in Inputs) error {
	fields := []struct {
		name string
		v    float64
	}{
		{"diameter_mm", in.DiameterMm},
		{"thickness_mm", in.ThicknessMm},
		{"focal_length_mm", in.FocalLengthMm},
		{"projection_diameter_mm", in.ProjectionDiameterMm},
		{"wavelength_nm", in.WavelengthNm},
		{"rayleigh_factor", in.RayleighFactor},
		{"reference_fstop", in.ReferenceFStop},
	}
	for _, f := range fields {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) || f.v <= 0 {
			return fmt.Errorf("%s must be a positive number, got %g", f.name, f.v)
		}
	}
	if math.IsNaN(in.SubjectDistanceM) || math.IsInf(in.SubjectDistanceM, 0) || in.SubjectDistanceM < 0 {
		return fmt.Errorf("subject_distance_m must be >= 0 (0 = infinity), got %g", in.SubjectDistanceM)
	}
	return nil
}

// CalculateFunc derives results from inputs.
// It is called from the POST /calculate handler.
type CalculateFunc func(in calc.Inputs) calc.Results

// CalculateResponse is the body of a successful POST /calculate.
type CalculateResponse struct {
	Inputs  Inputs       `json:"inputs"`
	Results calc.Results `json:"results"`
	Lines   []string     `json:"lines"`
}

// FormatEntry is one preset in GET /formats.
type FormatEntry struct {
	formats.Format
	ProjectionDiameterMm float64 `json:"projection_diameter_mm"`
}

// Handlers holds dependencies for HTTP handlers.
type Handlers struct {
	Broadcaster  *StatusBroadcaster
	Calculate    CalculateFunc
	Defaults     Inputs
	CurveSamples int
	staticFS     fs.FS
}

// NewHandlers creates handlers with the given dependencies.
// If calculate is nil, POST /calculate will return 503 Service Unavailable.
// If broadcaster is nil, GET /status/stream does the same.
func NewHandlers(broadcaster *StatusBroadcaster, calculate CalculateFunc, defaults Inputs, curveSamples int, staticFS fs.FS) *Handlers {
	return &Handlers{
		Broadcaster:  broadcaster,
		Calculate:    calculate,
		Defaults:     defaults,
		CurveSamples: curveSamples,
		staticFS:     staticFS,
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		// Inf or NaN results: degenerate inputs the caller should see.
		http.Error(w, "result not representable: "+err.Error(), http.StatusUnprocessableEntity)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data)
}

// HandleConfig returns the starting inputs (from config) as JSON.
func (h *Handlers) HandleConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Defaults)
}

// HandleFormats returns the film format presets as JSON.
func (h *Handlers) HandleFormats(w http.ResponseWriter, r *http.Request) {
	presets := formats.Presets()
	out := make([]FormatEntry, len(presets))
	for i, f := range presets {
		out[i] = FormatEntry{Format: f, ProjectionDiameterMm: f.ProjectionDiameter()}
	}
	writeJSON(w, http.StatusOK, out)
}

// ServeIndex serves the main HTML page (root path only).
func (h *Handlers) ServeIndex(w http.ResponseWriter, r *http.Request) {
	data, err := fs.ReadFile(h.staticFS, "index.html")
	if err != nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(data)
}

// HandleCalculate handles POST /calculate: inputs in, every derived value out.
// Missing fields take the configured defaults.
func (h *Handlers) HandleCalculate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var in Inputs
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	in = in.withDefaults(h.Defaults)

	if err := ValidateInputs(in); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if h.Calculate == nil {
		http.Error(w, "calculator not configured", http.StatusServiceUnavailable)
		return
	}

	ci := in.Calc()
	res := h.Calculate(ci)
	debug.Live("POST /calculate from %s: f %.1f mm, Ø %.2f mm", r.RemoteAddr, ci.FocalLengthMm, ci.DiameterMm)
	if h.Broadcaster != nil {
		h.Broadcaster.BroadcastResults(fmt.Sprintf("f/%s, optimal Ø %s mm",
			report.Number(res.FStop, 1), report.Number(res.OptimalDiameterMm, 2)), res)
	}

	writeJSON(w, http.StatusOK, CalculateResponse{
		Inputs:  in,
		Results: res,
		Lines:   report.Lines(ci, res),
	})
}

// HandleVignettingChart handles GET /vignetting.png. Query parameters
// focal_length_mm and projection_diameter_mm override the defaults.
func (h *Handlers) HandleVignettingChart(w http.ResponseWriter, r *http.Request) {
	focal, err := queryFloat(r, "focal_length_mm", h.Defaults.FocalLengthMm)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	projection, err := queryFloat(r, "projection_diameter_mm", h.Defaults.ProjectionDiameterMm)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	points := calc.VignettingCurve(focal, projection/2, h.CurveSamples)
	debug.Live("GET /vignetting.png from %s: f %.1f mm, projection Ø %.1f mm", r.RemoteAddr, focal, projection)
	debug.Trace("chart: %d samples, focal %.1f mm, radius %.1f mm", len(points), focal, projection/2)

	w.Header().Set("Content-Type", "image/png")
	if err := chart.Write(w, "png", focal, points); err != nil {
		debug.Error(err)
		w.Header().Del("Content-Type")
		http.Error(w, "render chart failed", http.StatusInternalServerError)
		return
	}
}

func queryFloat(r *http.Request, name string, def float64) (float64, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0, fmt.Errorf("%s must be a positive number, got %q", name, s)
	}
	return v, nil
}

// HandleStatusStream handles GET /status/stream for SSE.
func (h *Handlers) HandleStatusStream(w http.ResponseWriter, r *http.Request) {
	if h.Broadcaster == nil {
		http.Error(w, "status stream not configured", http.StatusServiceUnavailable)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // nginx

	ch, unsub := h.Broadcaster.Subscribe()
	debug.Live("status stream: %s connected (%d clients)", r.RemoteAddr, h.Broadcaster.Clients())
	defer func() {
		unsub()
		debug.Live("status stream: %s disconnected (%d clients)", r.RemoteAddr, h.Broadcaster.Clients())
	}()

	w.Write([]byte(": connected\n\n"))
	flusher.Flush()

	ticker := newHeartbeat()
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			w.Write([]byte("data: " + msg + "\n\n"))
			flusher.Flush()

		case <-ticker.C:
			w.Write([]byte(": heartbeat\n\n"))
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}
