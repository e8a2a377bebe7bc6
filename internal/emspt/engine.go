package emspt

import (
	"context"
	"io"
	"log"
)

// ScoreResult is the outcome of one scoring request. JSON field names are
// consumed by existing clients and must not change.
type ScoreResult struct {
	Scales          map[string]float64        `json:"scales"`
	LieRaw          float64                   `json:"lie_raw"`
	LieApplied      bool                      `json:"lie_applied"`
	IRP             float64                   `json:"irp"`
	IRPInterval     string                    `json:"irp_interval"`
	Kveripo         float64                   `json:"kveripo"`
	KveripoInterval string                    `json:"kveripo_interval"`
	Sten            map[string]int            `json:"sten"`
	Interpretations map[string]Interpretation `json:"interpretations"`
	Profile         Profile                   `json:"profile"`

	// ScaleOrder is the key order of the form, for display only.
	ScaleOrder []string `json:"-"`
}

// Engine computes EMSPT scores. It holds no mutable state and is safe
// for concurrent use.
type Engine struct {
	src    ConfigSource
	logger *log.Logger
}

// Engine options

type Option func(*Engine)

// WithLogger sets where configuration gaps (band fallback, sten
// saturation) are reported. Pass nil to silence them.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) {
		if l == nil {
			l = log.New(io.Discard, "", 0)
		}
		e.logger = l
	}
}

func NewEngine(src ConfigSource, opts ...Option) *Engine {
	e := &Engine{src: src, logger: log.Default()}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Compute scores answers for profile. It fails before any lookup on an
// invalid profile and fails as a whole when configuration is missing.
func (e *Engine) Compute(ctx context.Context, answers AnswerMap, profile Profile) (ScoreResult, error) {
	if err := profile.Validate(); err != nil {
		return ScoreResult{}, err
	}
	if err := ctx.Err(); err != nil {
		return ScoreResult{}, err
	}
	t, err := e.src.Resolve(profile)
	if err != nil {
		return ScoreResult{}, err
	}
	return e.score(answers, profile, t), nil
}

// Tables resolves the configuration Compute would use for profile.
func (e *Engine) Tables(profile Profile) (Tables, error) {
	if err := profile.Validate(); err != nil {
		return Tables{}, err
	}
	return e.src.Resolve(profile)
}

func (e *Engine) score(answers AnswerMap, profile Profile, t Tables) ScoreResult {
	raw := Aggregate(t.Keys.Keys, answers)

	threshold, coeff := t.Lie.Params(profile)
	scales, lie := ApplyLieCorrection(raw, t.Keys.LieScale, threshold, coeff)

	ix := ComputeIndices(scales, t.Keys.RiskScales, t.Keys.ProtectScales)
	irpBand, fellBack := BandIRP(ix.IRP, t.Norms.IRPBands)
	if fellBack {
		e.logger.Printf("emspt: irp %.2f not covered by IRP_bands for %s, using %q", ix.IRP, profile, irpBand)
	}

	sten := make(map[string]int, len(scales.Values))
	for _, name := range scales.Order {
		v, saturated := t.Sten.Convert(name, scales.Values[name])
		if saturated {
			e.logger.Printf("emspt: %s=%.2f outside sten table for %s, saturating", name, scales.Values[name], profile)
		}
		sten[name] = v
	}

	return ScoreResult{
		Scales:          scales.Values,
		LieRaw:          lie.Raw,
		LieApplied:      lie.Applied,
		IRP:             ix.IRP,
		IRPInterval:     irpBand,
		Kveripo:         ix.Kveripo,
		KveripoInterval: BandKVERIPO(ix.Kveripo, t.Norms.KveripoMax),
		Sten:            sten,
		Interpretations: Interpret(t.Keys, sten, t.Interpretations),
		Profile:         profile,
		ScaleOrder:      scales.Order,
	}
}
