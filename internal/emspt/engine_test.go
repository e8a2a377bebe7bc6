package emspt

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var profileA = Profile{Form: FormA, Impairment: ImpairmentHearing, Gender: GenderMale}

func ptr(f float64) *float64 { return &f }

func fixtureTables() Tables {
	return Tables{
		Keys: KeyConfig{
			RiskScales:    []string{"R1", "R2"},
			ProtectScales: []string{"P1"},
			LieScale:      "L",
			Keys: []ScaleKey{
				{Scale: "R1", Questions: []string{"q1", "q2"}},
				{Scale: "R2", Questions: []string{"q3"}},
				{Scale: "P1", Questions: []string{"q4", "q5"}},
				{Scale: "L", Questions: []string{"q6", "q7"}},
			},
		},
		Lie: LieCorrection{
			Threshold: map[Form]float64{FormA: 10},
			Coeff: map[Form]map[Impairment]map[Gender]float64{
				FormA: {ImpairmentHearing: {GenderMale: 0.5}},
			},
		},
		Norms: Norms{
			IRPBands: map[string]Interval{
				BandLow:  {0, 33},
				BandMid:  {34, 66},
				BandHigh: {67, 100},
			},
			KveripoMax: ptr(1.0),
		},
		Sten: StenTable{
			"R1": {{0, 3}, {4, 6}, {7, 9}, {10, 12}, {13, 20}},
			"R2": {{0, 2}, {3, 5}, {6, 10}},
			"P1": {{0, 5}, {6, 10}, {11, 20}},
		},
		Interpretations: Interpretations{
			"R1": {LevelLow: "R1 low", LevelMid: "R1 mid", LevelHigh: "R1 high"},
		},
	}
}

func fixedSource(t Tables) ConfigSource {
	return SourceFunc(func(Profile) (Tables, error) { return t, nil })
}

func quietEngine(src ConfigSource) *Engine {
	return NewEngine(src, WithLogger(nil))
}

func TestCompute_FullPipeline(t *testing.T) {
	e := quietEngine(fixedSource(fixtureTables()))
	answers := AnswerMap{"q1": 5, "q2": 6, "q3": 4, "q4": 3, "q5": 3, "q6": 2, "q7": 1}

	res, err := e.Compute(context.Background(), answers, profileA)
	require.NoError(t, err)

	assert.Equal(t, map[string]float64{"R1": 11, "R2": 4, "P1": 6, "L": 3}, res.Scales)
	assert.Equal(t, []string{"R1", "R2", "P1", "L"}, res.ScaleOrder)
	assert.Equal(t, 3.0, res.LieRaw)
	assert.False(t, res.LieApplied)
	// 15 / 21 * 100
	assert.Equal(t, 71.43, res.IRP)
	assert.Equal(t, BandHigh, res.IRPInterval)
	assert.Equal(t, 2.5, res.Kveripo)
	assert.Equal(t, BandHigh, res.KveripoInterval)
	assert.Equal(t, map[string]int{"R1": 4, "R2": 2, "P1": 2, "L": 0}, res.Sten)
	assert.Equal(t, map[string]Interpretation{
		"R1": {Sten: 4, Level: LevelMid, Text: "R1 mid"},
		"R2": {Sten: 2, Level: LevelLow, Text: NoDescription},
		"P1": {Sten: 2, Level: LevelLow, Text: NoDescription},
	}, res.Interpretations)
	assert.Equal(t, profileA, res.Profile)
}

func TestCompute_Deterministic(t *testing.T) {
	e := quietEngine(fixedSource(fixtureTables()))
	answers := AnswerMap{"q1": 7, "q2": 3, "q4": 9, "q6": 8, "q7": 8}

	first, err := e.Compute(context.Background(), answers, profileA)
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		again, err := e.Compute(context.Background(), answers, profileA)
		require.NoError(t, err)
		if diff := cmp.Diff(first, again); diff != "" {
			t.Fatalf("run %d differs (-first +again):\n%s", i, diff)
		}
	}
}

func TestCompute_ConcurrentCallsAreIndependent(t *testing.T) {
	e := quietEngine(fixedSource(fixtureTables()))
	want, err := e.Compute(context.Background(), AnswerMap{"q1": 4, "q4": 4}, profileA)
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make(chan string, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := e.Compute(context.Background(), AnswerMap{"q1": 4, "q4": 4}, profileA)
			if err != nil {
				errs <- err.Error()
				return
			}
			if diff := cmp.Diff(want, got); diff != "" {
				errs <- diff
			}
		}()
	}
	wg.Wait()
	close(errs)
	for msg := range errs {
		t.Error(msg)
	}
}

func TestCompute_InvalidProfileFailsBeforeLookup(t *testing.T) {
	called := false
	e := quietEngine(SourceFunc(func(Profile) (Tables, error) {
		called = true
		return fixtureTables(), nil
	}))

	_, err := e.Compute(context.Background(), AnswerMap{}, Profile{Form: "Z", Impairment: ImpairmentMotor, Gender: GenderFemale})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidProfile))
	var ipe *InvalidProfileError
	require.ErrorAs(t, err, &ipe)
	assert.Equal(t, "form", ipe.Field)
	assert.False(t, called)
}

func TestCompute_ConfigNotFoundIsFatal(t *testing.T) {
	e := quietEngine(SourceFunc(func(p Profile) (Tables, error) {
		return Tables{}, &ConfigNotFoundError{Artifact: "sten_table", Key: p.String()}
	}))

	res, err := e.Compute(context.Background(), AnswerMap{"q1": 1}, profileA)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConfigNotFound))
	assert.Equal(t, ScoreResult{}, res)
}

func TestCompute_ContextCanceled(t *testing.T) {
	e := quietEngine(fixedSource(fixtureTables()))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := e.Compute(ctx, AnswerMap{}, profileA)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCompute_ScenarioA_NoProtection(t *testing.T) {
	tables := Tables{
		Keys: KeyConfig{
			RiskScales: []string{"R1"},
			Keys:       []ScaleKey{{Scale: "R1", Questions: []string{"q1", "q2"}}},
		},
		Norms: Norms{IRPBands: map[string]Interval{BandLow: {0, 30}, BandMid: {31, 60}, BandHigh: {61, 90}}},
	}
	e := quietEngine(fixedSource(tables))

	res, err := e.Compute(context.Background(), AnswerMap{"q1": 5, "q2": 5}, profileA)
	require.NoError(t, err)
	assert.Equal(t, 10.0, res.Scales["R1"])
	assert.Equal(t, KveripoUndefined, res.Kveripo)
	assert.Equal(t, 100.0, res.IRP)
	// 100 is above every band
	assert.Equal(t, BandHigh, res.IRPInterval)
}

func TestCompute_ScenarioB_LieCorrection(t *testing.T) {
	tables := fixtureTables()
	e := quietEngine(fixedSource(tables))
	answers := AnswerMap{"q1": 5, "q2": 5, "q3": 3, "q4": 7, "q6": 6, "q7": 6}

	res, err := e.Compute(context.Background(), answers, profileA)
	require.NoError(t, err)
	assert.True(t, res.LieApplied)
	assert.Equal(t, 12.0, res.LieRaw)
	assert.Equal(t, 12.0, res.Scales["L"])
	assert.Equal(t, 5.0, res.Scales["R1"])
	assert.Equal(t, 1.5, res.Scales["R2"])
	assert.Equal(t, 3.5, res.Scales["P1"])
}

func TestCompute_LieCoeffZeroNeverCorrects(t *testing.T) {
	tables := fixtureTables()
	tables.Lie.Coeff = nil
	e := quietEngine(fixedSource(tables))

	res, err := e.Compute(context.Background(), AnswerMap{"q1": 5, "q6": 10, "q7": 10}, profileA)
	require.NoError(t, err)
	assert.False(t, res.LieApplied)
	assert.Equal(t, 5.0, res.Scales["R1"])
}

func TestCompute_ScenarioD_NoKveripoMax(t *testing.T) {
	tables := fixtureTables()
	tables.Norms.KveripoMax = nil
	e := quietEngine(fixedSource(tables))

	for _, answers := range []AnswerMap{{}, {"q1": 9, "q4": 1}, {"q4": 9}} {
		res, err := e.Compute(context.Background(), answers, profileA)
		require.NoError(t, err)
		assert.Equal(t, BandUnknown, res.KveripoInterval)
	}
}

func TestCompute_DefaultZero(t *testing.T) {
	e := quietEngine(fixedSource(fixtureTables()))
	full := AnswerMap{"q1": 5, "q2": 6, "q3": 4, "q4": 3, "q5": 3, "q6": 2, "q7": 1}

	base, err := e.Compute(context.Background(), full, profileA)
	require.NoError(t, err)
	for q := range full {
		partial := AnswerMap{}
		for k, v := range full {
			if k != q {
				partial[k] = v
			}
		}
		res, err := e.Compute(context.Background(), partial, profileA)
		require.NoError(t, err)
		for scale, v := range res.Scales {
			assert.LessOrEqual(t, v, base.Scales[scale], "removing %s raised %s", q, scale)
		}
	}

	empty, err := e.Compute(context.Background(), AnswerMap{}, profileA)
	require.NoError(t, err)
	for scale, v := range empty.Scales {
		assert.Zero(t, v, scale)
	}
	assert.Zero(t, empty.IRP)
}

func TestCompute_StrayStenScalesNotInterpreted(t *testing.T) {
	tables := fixtureTables()
	tables.Sten["OLD"] = []Interval{{0, 100}}
	e := quietEngine(fixedSource(tables))

	res, err := e.Compute(context.Background(), AnswerMap{"q1": 5}, profileA)
	require.NoError(t, err)
	assert.NotContains(t, res.Sten, "OLD")
	assert.NotContains(t, res.Interpretations, "OLD")
}

func TestCompute_LogsConfigGaps(t *testing.T) {
	tables := fixtureTables()
	tables.Norms.IRPBands = map[string]Interval{BandLow: {0, 10}, BandHigh: {90, 100}}
	var buf strings.Builder
	e := NewEngine(fixedSource(tables), WithLogger(log.New(&buf, "", 0)))

	// R1=40 is above every R1 interval; irp 50 falls in the band gap
	res, err := e.Compute(context.Background(), AnswerMap{"q1": 20, "q2": 20, "q4": 20, "q5": 20}, profileA)
	require.NoError(t, err)
	assert.Equal(t, BandMid, res.IRPInterval)
	assert.Equal(t, MaxSten, res.Sten["R1"])
	assert.Contains(t, buf.String(), "not covered by IRP_bands")
	assert.Contains(t, buf.String(), "saturating")
}

func TestWithLoggerNil(t *testing.T) {
	e := NewEngine(fixedSource(fixtureTables()), WithLogger(nil))
	assert.Equal(t, io.Discard, e.logger.Writer())
}
