package emspt

// LieOutcome describes the lie-scale check of one request.
type LieOutcome struct {
	Raw     float64
	Applied bool
}

// ApplyLieCorrection dampens every sub-scale except lieScale by (1-coeff)
// when the lie total reaches threshold and coeff is positive. It returns
// corrected totals and leaves s untouched.
func ApplyLieCorrection(s Scales, lieScale string, threshold, coeff float64) (Scales, LieOutcome) {
	res := LieOutcome{Raw: s.Get(lieScale)}
	out := Scales{
		Order:  append([]string(nil), s.Order...),
		Values: make(map[string]float64, len(s.Values)),
	}
	res.Applied = res.Raw >= threshold && coeff > 0
	for name, v := range s.Values {
		if res.Applied && name != lieScale {
			v = round2(v * (1 - coeff))
		}
		out.Values[name] = v
	}
	return out, res
}
