package report

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/cjeanneret/PhCalc/internal/logic/calc"
)

func TestNumber(t *testing.T) {
	cases := []struct {
		v        float64
		decimals int
		want     string
	}{
		{0.2587, 2, "0.26"},
		{166.6667, 1, "166.7"},
		{44, 0, "44"},
		{1234.5, 1, "1,234.5"},
		{0.25, 3, "0.250"},
		{math.Inf(1), 2, "Infinity"},
		{math.NaN(), 2, "NaN"},
	}
	for _, tc := range cases {
		if got := Number(tc.v, tc.decimals); got != tc.want {
			t.Errorf("Number(%v, %d) = %q, want %q", tc.v, tc.decimals, got, tc.want)
		}
	}
}

func TestNumber_ClampsDecimals(t *testing.T) {
	if got := Number(1.23456, 9); got != "1.235" {
		t.Errorf("Number(1.23456, 9) = %q, want \"1.235\"", got)
	}
	if got := Number(1.6, -1); got != "2" {
		t.Errorf("Number(1.6, -1) = %q, want \"2\"", got)
	}
}

func TestDistance(t *testing.T) {
	if got := Distance(math.Inf(1)); got != "∞" {
		t.Errorf("Distance(+Inf) = %q, want ∞", got)
	}
	if got := Distance(2.5); got != "2.50 m" {
		t.Errorf("Distance(2.5) = %q, want \"2.50 m\"", got)
	}
}

func TestWrite_Defaults(t *testing.T) {
	in := calc.DefaultInputs()
	var buf bytes.Buffer
	if err := Write(&buf, in, calc.Calculate(in)); err != nil {
		t.Fatalf("Write: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"View angle is 164.8˚ which covers a diameter of 750.0 mm",
		"F-stop is f/166.7 which is 4.8 f-stops from f/32 (t · 27.1)",
		"Vignetting for projection Ø 44 mm (35mm) is 0.5 f-stops (0.70) at a 23.7˚ angle",
		"Optimal pinhole Ø for this focal length is 0.26 mm",
		"subject at ∞",
		"Focal length needed to cover the projection Ø is 2.9 mm",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q\n%s", want, out)
		}
	}
	if n := strings.Count(out, "\n"); n != len(Lines(in, calc.Calculate(in))) {
		t.Errorf("report has %d lines, want %d", n, len(Lines(in, calc.Calculate(in))))
	}
}

func TestWriteCurve(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCurve(&buf, calc.VignettingCurve(50, 50, 3)); err != nil {
		t.Fatalf("WriteCurve: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines, want header + 3 rows:\n%s", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], "fraction") {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.Contains(lines[3], "0.250") || !strings.Contains(lines[3], "2.00") {
		t.Errorf("last row = %q, want fraction 0.250 and 2.00 stops", lines[3])
	}
}
