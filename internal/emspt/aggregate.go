package emspt

import "math"

// AnswerMap maps a question id to the participant's answer value.
type AnswerMap map[string]int

// Scales holds sub-scale totals together with their display order.
type Scales struct {
	Order  []string
	Values map[string]float64
}

// Get returns the total for scale, or 0 when it is absent.
func (s Scales) Get(scale string) float64 { return s.Values[scale] }

// Aggregate sums the answers of every sub-scale in keys. Missing answers
// contribute 0.
func Aggregate(keys []ScaleKey, answers AnswerMap) Scales {
	out := Scales{
		Order:  make([]string, 0, len(keys)),
		Values: make(map[string]float64, len(keys)),
	}
	for _, sk := range keys {
		total := 0
		for _, q := range sk.Questions {
			total += answers[q]
		}
		if _, dup := out.Values[sk.Scale]; !dup {
			out.Order = append(out.Order, sk.Scale)
		}
		out.Values[sk.Scale] = round2(float64(total))
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
