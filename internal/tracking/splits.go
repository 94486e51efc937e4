package tracking

import "math"

// splitter emits a Split each time the distance crosses a unit boundary.
type splitter struct {
	unitKm float64
	splits []Split
}

// advance records the move from prevKm to newKm at the given cumulative
// active duration. Every crossed boundary gets the same cumulative duration;
// sub-unit interpolation is not attempted.
func (sp *splitter) advance(prevKm, newKm, cumulativeSec float64) []Split {
	prevUnits := int(math.Floor(prevKm / sp.unitKm))
	newUnits := int(math.Floor(newKm / sp.unitKm))
	if newUnits <= prevUnits || newUnits <= 0 {
		return nil
	}

	var emitted []Split
	for idx := prevUnits + 1; idx <= newUnits; idx++ {
		if idx <= 0 {
			continue
		}
		prevCumulative := 0.0
		if n := len(sp.splits); n > 0 {
			prevCumulative = sp.splits[n-1].CumulativeDuration
		}
		split := Split{
			Index:              len(sp.splits) + 1,
			SegmentDuration:    cumulativeSec - prevCumulative,
			CumulativeDuration: cumulativeSec,
		}
		sp.splits = append(sp.splits, split)
		emitted = append(emitted, split)
	}
	return emitted
}

func (sp *splitter) list() []Split {
	out := make([]Split, len(sp.splits))
	copy(out, sp.splits)
	return out
}
