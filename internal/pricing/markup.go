package pricing

// Markup tiers: the first band whose upper bound is >= the metric wins, with
// inclusive bounds, so a value sitting exactly on a bound takes the cheaper
// band. The fallback covers everything above the last bound, which keeps each
// lookup total over all real inputs. Markup shrinks as unit price or size
// grows (a volume discount curve).

type markupTier struct {
	upTo       float64
	multiplier float64
}

var frameMarkupTiers = []markupTier{
	{upTo: 1.99, multiplier: 4.5},
	{upTo: 2.99, multiplier: 4.0},
	{upTo: 3.99, multiplier: 3.5},
	{upTo: 4.99, multiplier: 3.0},
}

var matMarkupTiers = []markupTier{
	{upTo: 32, multiplier: 2.0},
	{upTo: 60, multiplier: 1.8},
	{upTo: 80, multiplier: 1.6},
}

var glazingMarkupTiers = []markupTier{
	{upTo: 40, multiplier: 2.0},
	{upTo: 60, multiplier: 1.75},
	{upTo: 80, multiplier: 1.5},
}

func lookupMarkup(tiers []markupTier, fallback, metric float64) float64 {
	for _, t := range tiers {
		if metric <= t.upTo {
			return t.multiplier
		}
	}
	return fallback
}

// FrameMarkup selects the frame multiplier from the wholesale price per
// linear foot.
func FrameMarkup(pricePerFoot float64) float64 {
	return lookupMarkup(frameMarkupTiers, 2.5, pricePerFoot)
}

// MatMarkup selects the mat multiplier from the artwork's united inches.
func MatMarkup(unitedInches float64) float64 {
	return lookupMarkup(matMarkupTiers, 1.4, unitedInches)
}

// GlazingMarkup selects the glazing multiplier from the glass united inches
// (glass width + glass height), not the bare artwork size.
func GlazingMarkup(glassUnitedInches float64) float64 {
	return lookupMarkup(glazingMarkupTiers, 1.25, glassUnitedInches)
}
