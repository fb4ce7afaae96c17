// Package pricing implements the framing cost engine: it turns artwork
// dimensions and a set of selected materials into a priced, itemized quote.
// Everything here is a pure function of its inputs; the package does no I/O
// and is safe to call concurrently, including on every keystroke of an order
// form.
package pricing

import "math"

// Mode selects between raw-cost accounting and customer-facing pricing.
type Mode string

const (
	// Wholesale passes catalog cost through with no markup.
	Wholesale Mode = "wholesale"
	// Retail applies the tiered markup plus the market adjustment.
	Retail Mode = "retail"
)

// Market-adjustment constants: fixed per-category discounts off the
// theoretical sliding-scale retail price, calibrated to local market rates.
// Mat pricing carries no adjustment.
const (
	frameMarketAdjustment   = 0.1667
	glazingMarketAdjustment = 0.45
)

// DefaultMatWidth is the mat border width, in inches, used when an order
// does not specify one.
const DefaultMatWidth = 2.0

// Selection identifies one chosen catalog item for a category. A nil
// Selection means "nothing chosen" and prices that line at exactly zero; a
// catalog item that cannot be found is represented the same way, so a deleted
// or renamed item silently under-quotes rather than failing the calculation.
type Selection struct {
	Name      string
	BasePrice float64
}

// Request carries every input of one calculation. It has no persistent
// identity; callers build a fresh one per quote. Discount bounds and the tax
// rate are not validated here: a discount outside [0,100] or a negative tax
// rate flows through arithmetically, and guarding against that is the
// caller's job.
type Request struct {
	Width    float64 // artwork width, inches
	Height   float64 // artwork height, inches
	MatWidth float64 // mat border width, inches

	Frame   *Selection // price per linear foot
	Mat     *Selection // flat price
	Glazing *Selection // price per square foot

	Mode Mode

	LaborCost       float64
	OverheadCost    float64
	DiscountPercent float64
	TaxRate         float64 // fraction, e.g. 0.0825
}

// Breakdown is the engine's sole output. Monetary fields are rounded to two
// decimals exactly once, when placed here; everything upstream composes
// unrounded values. Markup fields report the multiplier actually applied and
// are zero when none was (wholesale mode or no selection).
type Breakdown struct {
	FramePrice   float64 `json:"frame_price"`
	MatPrice     float64 `json:"mat_price"`
	GlazingPrice float64 `json:"glazing_price"`
	LaborCost    float64 `json:"labor_cost"`
	OverheadCost float64 `json:"overhead_cost"`

	Subtotal           float64 `json:"subtotal"`
	DiscountAmount     float64 `json:"discount_amount"`
	DiscountedSubtotal float64 `json:"discounted_subtotal"`
	TaxAmount          float64 `json:"tax_amount"`
	Total              float64 `json:"total"`

	UnitedInches     float64 `json:"united_inches"`
	FramePerimeterFt float64 `json:"frame_perimeter_ft"`
	GlassAreaSqFt    float64 `json:"glass_area_sqft"`
	FrameMarkup      float64 `json:"frame_markup"`
	MatMarkup        float64 `json:"mat_markup"`
	GlazingMarkup    float64 `json:"glazing_markup"`
}

// Calculate runs the full pipeline: measure, price each component, compose,
// apply discount and tax, then assemble the rounded breakdown. Degenerate
// dimensions (any of width, height or mat width not positive) yield the zero
// Breakdown rather than an error.
func Calculate(req Request) Breakdown {
	if req.Width <= 0 || req.Height <= 0 || req.MatWidth <= 0 {
		return Breakdown{}
	}

	m := Measure(Dimensions{Width: req.Width, Height: req.Height}, req.MatWidth)

	framePrice, frameMarkup := priceFrame(req.Frame, m, req.Mode)
	matPrice, matMarkup := priceMat(req.Mat, m, req.Mode)
	glazingPrice, glazingMarkup := priceGlazing(req.Glazing, m, req.Mode)

	subtotal := framePrice + matPrice + glazingPrice + req.LaborCost + req.OverheadCost
	discountAmount := subtotal * (req.DiscountPercent / 100)
	discountedSubtotal := subtotal - discountAmount
	taxAmount := discountedSubtotal * req.TaxRate
	total := discountedSubtotal + taxAmount

	return Breakdown{
		FramePrice:   roundCents(framePrice),
		MatPrice:     roundCents(matPrice),
		GlazingPrice: roundCents(glazingPrice),
		LaborCost:    roundCents(req.LaborCost),
		OverheadCost: roundCents(req.OverheadCost),

		Subtotal:           roundCents(subtotal),
		DiscountAmount:     roundCents(discountAmount),
		DiscountedSubtotal: roundCents(discountedSubtotal),
		TaxAmount:          roundCents(taxAmount),
		Total:              roundCents(total),

		UnitedInches:     m.UnitedInches,
		FramePerimeterFt: m.FramePerimeterFt,
		GlassAreaSqFt:    m.GlassAreaSqFt,
		FrameMarkup:      frameMarkup,
		MatMarkup:        matMarkup,
		GlazingMarkup:    glazingMarkup,
	}
}

// priceFrame prices the frame line from the outer perimeter. The raw material
// cost is rounded up to the next whole dollar before markup, a procurement
// rule ("round up the stick cost, then mark up") that must stay a ceiling,
// not an ordinary round.
func priceFrame(sel *Selection, m Metrics, mode Mode) (price, markup float64) {
	if sel == nil {
		return 0, 0
	}

	raw := m.FramePerimeterFt * sel.BasePrice
	if mode == Wholesale {
		return raw, 0
	}

	markup = FrameMarkup(sel.BasePrice)
	return math.Ceil(raw) * markup * frameMarketAdjustment, markup
}

// priceMat prices the mat line. The catalog price is flat per mat; retail
// applies the united-inch markup with no market adjustment.
func priceMat(sel *Selection, m Metrics, mode Mode) (price, markup float64) {
	if sel == nil {
		return 0, 0
	}

	if mode == Wholesale {
		return sel.BasePrice, 0
	}

	markup = MatMarkup(m.UnitedInches)
	return sel.BasePrice * markup, markup
}

// priceGlazing prices the glazing line from the glass area; its markup bands
// on the glass united inches rather than the artwork's.
func priceGlazing(sel *Selection, m Metrics, mode Mode) (price, markup float64) {
	if sel == nil {
		return 0, 0
	}

	raw := m.GlassAreaSqFt * sel.BasePrice
	if mode == Wholesale {
		return raw, 0
	}

	markup = GlazingMarkup(m.GlassWidth + m.GlassHeight)
	return raw * markup * glazingMarketAdjustment, markup
}

// roundCents rounds to two decimals, half away from zero.
func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
