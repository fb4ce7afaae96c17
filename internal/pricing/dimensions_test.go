package pricing

import (
	"errors"
	"math"
	"testing"
)

func TestParseDimensions_AcceptedFormats(t *testing.T) {
	cases := map[string]Dimensions{
		"16x20":       {Width: 16, Height: 20},
		"16 x 20":     {Width: 16, Height: 20},
		"16X20":       {Width: 16, Height: 20},
		"16×20":       {Width: 16, Height: 20},
		`16"x20"`:     {Width: 16, Height: 20},
		`16" x 20"`:   {Width: 16, Height: 20},
		"  16 x 20  ": {Width: 16, Height: 20},
		"8.5x11":      {Width: 8.5, Height: 11},
	}

	for spec, want := range cases {
		got, err := ParseDimensions(spec)
		if err != nil {
			t.Fatalf("ParseDimensions(%q) returned error: %v", spec, err)
		}
		if got != want {
			t.Fatalf("ParseDimensions(%q) = %+v, want %+v", spec, got, want)
		}
	}
}

func TestParseDimensions_Failures(t *testing.T) {
	for _, spec := range []string{"", "16", "x20", "16x", "abc", "16xx20", "16x20x30", "0x20", "16x0"} {
		if _, err := ParseDimensions(spec); !errors.Is(err, ErrInvalidDimensions) {
			t.Fatalf("ParseDimensions(%q) err = %v, want ErrInvalidDimensions", spec, err)
		}
	}
}

func TestMeasure_DerivedMetrics(t *testing.T) {
	m := Measure(Dimensions{Width: 16, Height: 20}, 2)

	nearlyEqual(t, "unitedInches", m.UnitedInches, 44)
	nearlyEqual(t, "glassWidth", m.GlassWidth, 20)
	nearlyEqual(t, "glassHeight", m.GlassHeight, 24)
	nearlyEqual(t, "framePerimeterFt", m.FramePerimeterFt, 88.0/12.0)
	nearlyEqual(t, "glassAreaSqFt", m.GlassAreaSqFt, 480.0/144.0)
}

func TestMeasure_UnitedInchesInvariant(t *testing.T) {
	cases := []struct {
		width, height, matWidth float64
	}{
		{16, 20, 2},
		{5, 7, 1.5},
		{24, 36, 3},
		{0.5, 0.5, 0.25},
	}

	for _, c := range cases {
		m := Measure(Dimensions{Width: c.width, Height: c.height}, c.matWidth)
		want := c.width + c.height + 4*c.matWidth
		if math.Abs(m.UnitedInches-want) > 1e-9 {
			t.Fatalf("unitedInches(%v) = %v, want %v", c, m.UnitedInches, want)
		}
	}
}
