package emspt

import (
	"fmt"
	"math"
)

// ScaleKey lists the question ids summed into one sub-scale.
type ScaleKey struct {
	Scale     string
	Questions []string
}

// KeyConfig is the key grouping of one form. Keys keeps file order.
type KeyConfig struct {
	RiskScales    []string
	ProtectScales []string
	LieScale      string
	Keys          []ScaleKey
}

// Has reports whether scale is one of the form's sub-scales.
func (k KeyConfig) Has(scale string) bool {
	for _, sk := range k.Keys {
		if sk.Scale == scale {
			return true
		}
	}
	return false
}

// Validate checks the key grouping invariants.
func (k KeyConfig) Validate() error {
	if len(k.Keys) == 0 {
		return fmt.Errorf("no scales in keys")
	}
	seen := make(map[string]bool, len(k.Keys))
	for _, sk := range k.Keys {
		if sk.Scale == "" {
			return fmt.Errorf("empty scale name in keys")
		}
		if seen[sk.Scale] {
			return fmt.Errorf("duplicate scale %q in keys", sk.Scale)
		}
		seen[sk.Scale] = true
	}
	inRisk, inProt := false, false
	for _, s := range k.RiskScales {
		if !seen[s] {
			return fmt.Errorf("risk scale %q missing from keys", s)
		}
		inRisk = inRisk || s == k.LieScale
	}
	for _, s := range k.ProtectScales {
		if !seen[s] {
			return fmt.Errorf("protect scale %q missing from keys", s)
		}
		inProt = inProt || s == k.LieScale
	}
	if k.LieScale != "" && inRisk && inProt {
		return fmt.Errorf("lie scale %q is both a risk and a protect scale", k.LieScale)
	}
	return nil
}

// LieCorrection holds the per-form thresholds and per-profile coefficients.
type LieCorrection struct {
	Threshold map[Form]float64
	Coeff     map[Form]map[Impairment]map[Gender]float64
}

// Params resolves the threshold and coefficient for p. An unresolved
// threshold is +Inf and an unresolved coefficient is 0, so correction
// never triggers.
func (l LieCorrection) Params(p Profile) (threshold, coeff float64) {
	threshold = math.Inf(1)
	if t, ok := l.Threshold[p.Form]; ok {
		threshold = t
	}
	coeff = l.Coeff[p.Form][p.Impairment][p.Gender]
	return threshold, coeff
}

// Validate checks that every threshold is finite and every coefficient
// is in [0,1).
func (l LieCorrection) Validate() error {
	for form, t := range l.Threshold {
		if !isFinite(t) {
			return fmt.Errorf("threshold %s = %v is not finite", form, t)
		}
	}
	for form, byImp := range l.Coeff {
		for imp, byGender := range byImp {
			for gender, c := range byGender {
				if c < 0 || c >= 1 || math.IsNaN(c) {
					return fmt.Errorf("coeff %s/%s/%s = %v outside [0,1)", form, imp, gender, c)
				}
			}
		}
	}
	return nil
}

// Interval is a closed numeric range [Low, High].
type Interval struct {
	Low  float64
	High float64
}

func (i Interval) Contains(v float64) bool { return i.Low <= v && v <= i.High }

func (i Interval) validate() error {
	if !isFinite(i.Low) || !isFinite(i.High) {
		return fmt.Errorf("bounds [%v, %v] are not finite", i.Low, i.High)
	}
	if i.Low > i.High {
		return fmt.Errorf("min > max")
	}
	return nil
}

func isFinite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

// Norms are the normative bands of one profile.
type Norms struct {
	IRPBands   map[string]Interval
	KveripoMax *float64
}

// Validate rejects band labels outside the canonical three and
// non-finite bounds.
func (n Norms) Validate() error {
	for label, iv := range n.IRPBands {
		if !isBandLabel(label) {
			return fmt.Errorf("unknown IRP band label %q", label)
		}
		if err := iv.validate(); err != nil {
			return fmt.Errorf("IRP band %q: %w", label, err)
		}
	}
	if n.KveripoMax != nil && !isFinite(*n.KveripoMax) {
		return fmt.Errorf("KVERIPO_max = %v is not finite", *n.KveripoMax)
	}
	return nil
}

// StenTable maps a sub-scale to its ordered sten intervals.
type StenTable map[string][]Interval

func (t StenTable) Validate() error {
	for scale, ivs := range t {
		for i, iv := range ivs {
			if err := iv.validate(); err != nil {
				return fmt.Errorf("sten interval %d of %q: %w", i+1, scale, err)
			}
		}
	}
	return nil
}

// Interpretations maps a sub-scale to its per-level descriptive text.
type Interpretations map[string]map[Level]string

// Tables is everything the engine needs for one profile.
type Tables struct {
	Keys            KeyConfig
	Lie             LieCorrection
	Norms           Norms
	Sten            StenTable
	Interpretations Interpretations
}

// ConfigSource resolves the tables for a profile. Implementations must be
// safe for concurrent use and must not mutate returned tables afterwards.
type ConfigSource interface {
	Resolve(p Profile) (Tables, error)
}

// SourceFunc adapts a function to ConfigSource.
type SourceFunc func(p Profile) (Tables, error)

func (f SourceFunc) Resolve(p Profile) (Tables, error) { return f(p) }
