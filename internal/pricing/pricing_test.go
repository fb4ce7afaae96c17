package pricing

import (
	"math"
	"testing"
)

func nearlyEqual(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("%s = %v, want %v", name, got, want)
	}
}

// goldenRequest is the shop's reference quote: 16x20 artwork, 2in mat border,
// $18/ft frame, $17 flat mat, $39/sqft glazing, $38 labor, $54 overhead,
// 8.25% tax, retail mode.
func goldenRequest() Request {
	return Request{
		Width:    16,
		Height:   20,
		MatWidth: 2,
		Frame:    &Selection{Name: "Oak Classic 2in", BasePrice: 18},
		Mat:      &Selection{Name: "White Core", BasePrice: 17},
		Glazing:  &Selection{Name: "Conservation Clear", BasePrice: 39},
		Mode:     Retail,

		LaborCost:    38,
		OverheadCost: 54,
		TaxRate:      0.0825,
	}
}

func TestCalculate_GoldenRetailQuote(t *testing.T) {
	b := Calculate(goldenRequest())

	nearlyEqual(t, "unitedInches", b.UnitedInches, 44)
	nearlyEqual(t, "framePerimeterFt", b.FramePerimeterFt, 88.0/12.0)
	nearlyEqual(t, "glassAreaSqFt", b.GlassAreaSqFt, 480.0/144.0)

	nearlyEqual(t, "frameMarkup", b.FrameMarkup, 2.5)
	nearlyEqual(t, "matMarkup", b.MatMarkup, 1.8)
	nearlyEqual(t, "glazingMarkup", b.GlazingMarkup, 1.75)

	// ceil(7.333*18) = 132, then 132 * 2.5 * 0.1667.
	nearlyEqual(t, "framePrice", b.FramePrice, 55.01)
	nearlyEqual(t, "matPrice", b.MatPrice, 30.60)
	nearlyEqual(t, "glazingPrice", b.GlazingPrice, 102.38)
	nearlyEqual(t, "laborCost", b.LaborCost, 38)
	nearlyEqual(t, "overheadCost", b.OverheadCost, 54)

	nearlyEqual(t, "subtotal", b.Subtotal, 279.99)
	nearlyEqual(t, "discountAmount", b.DiscountAmount, 0)
	nearlyEqual(t, "discountedSubtotal", b.DiscountedSubtotal, 279.99)
	nearlyEqual(t, "taxAmount", b.TaxAmount, 23.10)
	nearlyEqual(t, "total", b.Total, 303.08)
}

func TestCalculate_IsDeterministic(t *testing.T) {
	req := goldenRequest()

	first := Calculate(req)
	for i := 0; i < 100; i++ {
		if got := Calculate(req); got != first {
			t.Fatalf("iteration %d produced different breakdown:\n got %+v\nwant %+v", i, got, first)
		}
	}
}

func TestCalculate_DegenerateDimensionsYieldEmptyBreakdown(t *testing.T) {
	for name, mutate := range map[string]func(*Request){
		"zero width":     func(r *Request) { r.Width = 0 },
		"zero height":    func(r *Request) { r.Height = 0 },
		"zero mat width": func(r *Request) { r.MatWidth = 0 },
		"negative width": func(r *Request) { r.Width = -5 },
	} {
		req := goldenRequest()
		mutate(&req)
		if got := Calculate(req); got != (Breakdown{}) {
			t.Fatalf("%s: expected empty breakdown, got %+v", name, got)
		}
	}
}

func TestCalculate_OmittedSelectionPricesAtZero(t *testing.T) {
	full := Calculate(goldenRequest())

	noFrame := goldenRequest()
	noFrame.Frame = nil
	b := Calculate(noFrame)
	nearlyEqual(t, "framePrice without frame", b.FramePrice, 0)
	nearlyEqual(t, "frameMarkup without frame", b.FrameMarkup, 0)
	nearlyEqual(t, "matPrice unchanged", b.MatPrice, full.MatPrice)
	nearlyEqual(t, "glazingPrice unchanged", b.GlazingPrice, full.GlazingPrice)

	noMat := goldenRequest()
	noMat.Mat = nil
	b = Calculate(noMat)
	nearlyEqual(t, "matPrice without mat", b.MatPrice, 0)
	nearlyEqual(t, "framePrice unchanged", b.FramePrice, full.FramePrice)
	nearlyEqual(t, "glazingPrice unchanged", b.GlazingPrice, full.GlazingPrice)

	noGlazing := goldenRequest()
	noGlazing.Glazing = nil
	b = Calculate(noGlazing)
	nearlyEqual(t, "glazingPrice without glazing", b.GlazingPrice, 0)
	nearlyEqual(t, "framePrice unchanged", b.FramePrice, full.FramePrice)
	nearlyEqual(t, "matPrice unchanged", b.MatPrice, full.MatPrice)

	none := goldenRequest()
	none.Frame, none.Mat, none.Glazing = nil, nil, nil
	b = Calculate(none)
	nearlyEqual(t, "subtotal with no selections", b.Subtotal, 92) // labor + overhead only
}

func TestCalculate_WholesaleIsRawCostPassThrough(t *testing.T) {
	req := goldenRequest()
	req.Mode = Wholesale
	b := Calculate(req)

	// Raw perimeter cost, no ceiling, no markup, no adjustment.
	nearlyEqual(t, "framePrice", b.FramePrice, 132.00)
	nearlyEqual(t, "matPrice", b.MatPrice, 17.00)
	nearlyEqual(t, "glazingPrice", b.GlazingPrice, 130.00)

	nearlyEqual(t, "frameMarkup", b.FrameMarkup, 0)
	nearlyEqual(t, "matMarkup", b.MatMarkup, 0)
	nearlyEqual(t, "glazingMarkup", b.GlazingMarkup, 0)
}

func TestCalculate_RetailMatNeverBelowWholesale(t *testing.T) {
	// Mat retail applies a markup of at least 1.4 with no market adjustment,
	// so it can never undercut the flat wholesale price.
	for _, size := range []struct{ w, h float64 }{{5, 7}, {16, 20}, {30, 40}, {48, 60}} {
		retail := Calculate(Request{
			Width: size.w, Height: size.h, MatWidth: 2,
			Mat:  &Selection{Name: "White Core", BasePrice: 17},
			Mode: Retail,
		})
		wholesale := Calculate(Request{
			Width: size.w, Height: size.h, MatWidth: 2,
			Mat:  &Selection{Name: "White Core", BasePrice: 17},
			Mode: Wholesale,
		})
		if retail.MatPrice < wholesale.MatPrice {
			t.Fatalf("%vx%v: retail mat %.2f below wholesale %.2f", size.w, size.h, retail.MatPrice, wholesale.MatPrice)
		}
	}
}

func TestCalculate_RetailAppliesMarkupAndAdjustment(t *testing.T) {
	// $3.50/ft frame lands in the 3.5x band; ceil(7.333*3.5)=26, then the
	// frame market adjustment. Pins the exact retail chain for a non-golden
	// tier.
	req := Request{
		Width: 16, Height: 20, MatWidth: 2,
		Frame:   &Selection{Name: "Econo Black", BasePrice: 3.50},
		Glazing: &Selection{Name: "Standard Clear", BasePrice: 6},
		Mode:    Retail,
	}
	b := Calculate(req)

	nearlyEqual(t, "frameMarkup", b.FrameMarkup, 3.5)
	nearlyEqual(t, "framePrice", b.FramePrice, roundCents(26*3.5*0.1667))
	nearlyEqual(t, "glazingMarkup", b.GlazingMarkup, 1.75)
	nearlyEqual(t, "glazingPrice", b.GlazingPrice, roundCents((480.0/144.0)*6*1.75*0.45))
}

func TestCalculate_RoundsOnceAtAssembly(t *testing.T) {
	// Two components of 10.004 sum to 20.008, which rounds to 20.01. Rounding
	// each component first would give 10.00 + 10.00 = 20.00, so this input
	// distinguishes the two strategies.
	req := Request{
		Width: 10, Height: 10, MatWidth: 2,
		Mat:       &Selection{Name: "Odd Cut", BasePrice: 10.004},
		Mode:      Wholesale,
		LaborCost: 10.004,
	}
	b := Calculate(req)

	nearlyEqual(t, "subtotal", b.Subtotal, 20.01)
	roundedFirst := roundCents(b.MatPrice) + roundCents(b.LaborCost)
	nearlyEqual(t, "sum of pre-rounded components", roundedFirst, 20.00)
	if b.Subtotal == roundedFirst {
		t.Fatalf("subtotal %v matches round-then-sum strategy; engine must sum unrounded values", b.Subtotal)
	}
}

func TestCalculate_OutOfRangeDiscountIsNotClamped(t *testing.T) {
	// Bounds are the caller's job: a discount over 100 drives the discounted
	// subtotal, tax and total negative, and the engine lets that through.
	req := Request{
		Width: 10, Height: 10, MatWidth: 2,
		Mode:            Retail,
		LaborCost:       100,
		DiscountPercent: 150,
		TaxRate:         0.10,
	}
	b := Calculate(req)

	nearlyEqual(t, "discountAmount", b.DiscountAmount, 150)
	nearlyEqual(t, "discountedSubtotal", b.DiscountedSubtotal, -50)
	nearlyEqual(t, "taxAmount", b.TaxAmount, -5)
	nearlyEqual(t, "total", b.Total, -55)
}

func TestCalculate_DiscountAppliedBeforeTax(t *testing.T) {
	req := Request{
		Width: 10, Height: 10, MatWidth: 2,
		Mode:            Retail,
		LaborCost:       200,
		DiscountPercent: 10,
		TaxRate:         0.08,
	}
	b := Calculate(req)

	nearlyEqual(t, "discountAmount", b.DiscountAmount, 20)
	nearlyEqual(t, "discountedSubtotal", b.DiscountedSubtotal, 180)
	nearlyEqual(t, "taxAmount", b.TaxAmount, 14.40)
	nearlyEqual(t, "total", b.Total, 194.40)
}
