package pricing

import (
	"errors"
	"regexp"
	"strconv"
)

// ErrInvalidDimensions is returned when a dimension spec cannot be read as a
// width/height pair. It is a validation outcome, not a fault; callers surface
// it as a form message.
var ErrInvalidDimensions = errors.New("invalid dimension format")

// Accepts "16x20", "16 x 20", `16"x20"`, "16X20" and "16×20".
var dimensionPattern = regexp.MustCompile(`^\s*(\d+(?:\.\d+)?)\s*"?\s*[xX×]\s*(\d+(?:\.\d+)?)\s*"?\s*$`)

// Dimensions holds artwork width and height in inches.
type Dimensions struct {
	Width  float64
	Height float64
}

// ParseDimensions extracts a width/height pair from a free-form size spec.
// It never panics; unreadable or non-positive input yields ErrInvalidDimensions.
func ParseDimensions(spec string) (Dimensions, error) {
	m := dimensionPattern.FindStringSubmatch(spec)
	if m == nil {
		return Dimensions{}, ErrInvalidDimensions
	}

	width, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return Dimensions{}, ErrInvalidDimensions
	}
	height, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		return Dimensions{}, ErrInvalidDimensions
	}
	if width <= 0 || height <= 0 {
		return Dimensions{}, ErrInvalidDimensions
	}

	return Dimensions{Width: width, Height: height}, nil
}

// Metrics are the derived measures every pricing stage works from.
// Glass dimensions are the artwork plus the mat border on each side; the frame
// wraps the glass, so its perimeter is measured on the outer glass edge.
type Metrics struct {
	UnitedInches     float64
	GlassWidth       float64
	GlassHeight      float64
	FramePerimeterFt float64
	GlassAreaSqFt    float64
}

// Measure computes the derived metrics for an artwork and mat border width.
func Measure(d Dimensions, matWidth float64) Metrics {
	glassW := d.Width + 2*matWidth
	glassH := d.Height + 2*matWidth

	return Metrics{
		UnitedInches:     d.Width + d.Height + 4*matWidth,
		GlassWidth:       glassW,
		GlassHeight:      glassH,
		FramePerimeterFt: 2 * (glassW + glassH) / 12,
		GlassAreaSqFt:    glassW * glassH / 144,
	}
}
