package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/228Abobus228/SPTOVZ/internal/emspt"
)

const testRoot = "../../internal/emspt/configstore/testdata/emspt"

func jsonSettings() settings {
	return settings{ConfigRoot: testRoot, Format: "json", NoColor: true}
}

var hearingMale = scoreOptions{form: "a", impairment: "hearing", gender: "male"}

func TestRunScoreFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "answers.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"1": 3, "2": 3, "3": 4, "4": 5, "5": 5, "q6": 2, "7": 2, "8": 1, "9": 1}`), 0o644))

	opts := hearingMale
	opts.answersPath = path
	var out bytes.Buffer
	require.NoError(t, runScore(context.Background(), nil, &out, jsonSettings(), opts))

	var res emspt.ScoreResult
	require.NoError(t, json.Unmarshal(out.Bytes(), &res))
	assert.Equal(t, 83.33, res.IRP)
	assert.Equal(t, emspt.BandHigh, res.IRPInterval)
	assert.Equal(t, 4, res.Sten["R1"])
}

func TestRunScoreFromStdinConsole(t *testing.T) {
	opts := hearingMale
	opts.answersPath = "-"
	s := jsonSettings()
	s.Format = "console"

	var out bytes.Buffer
	require.NoError(t, runScore(context.Background(), strings.NewReader(`[3, 3, 4, 5, 5, 2, 2, 1, 1]`), &out, s, opts))
	assert.Contains(t, out.String(), "A/hearing/male")
	assert.Contains(t, out.String(), "83.33")
}

func TestRunScoreErrors(t *testing.T) {
	s := jsonSettings()
	var out bytes.Buffer

	bad := hearingMale
	bad.gender = "other"
	bad.answersPath = "-"
	err := runScore(context.Background(), strings.NewReader(`{}`), &out, s, bad)
	assert.ErrorIs(t, err, emspt.ErrInvalidProfile)

	noNorms := scoreOptions{form: "A", impairment: "motor", gender: "male", answersPath: "-"}
	err = runScore(context.Background(), strings.NewReader(`{}`), &out, s, noNorms)
	assert.ErrorIs(t, err, emspt.ErrConfigNotFound)

	missing := hearingMale
	missing.answersPath = filepath.Join(t.TempDir(), "nope.json")
	err = runScore(context.Background(), nil, &out, s, missing)
	assert.ErrorContains(t, err, "read answers")

	s.ConfigRoot = t.TempDir() + "/absent"
	stdin := hearingMale
	stdin.answersPath = "-"
	err = runScore(context.Background(), strings.NewReader(`{}`), &out, s, stdin)
	assert.ErrorContains(t, err, "load ")

	assert.Empty(t, out.String())
}

func TestRunCheck(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, runCheck(&out, jsonSettings(), false))
	var got struct {
		Complete bool  `json:"complete"`
		Gaps     []any `json:"gaps"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.False(t, got.Complete)
	assert.Len(t, got.Gaps, 15)

	out.Reset()
	err := runCheck(&out, jsonSettings(), true)
	assert.ErrorContains(t, err, "15 profiles cannot be scored")
}

func TestRunCheckMalformed(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "norms.yaml"), []byte("A: [\n"), 0o644))
	s := jsonSettings()
	s.ConfigRoot = root
	err := runCheck(&bytes.Buffer{}, s, false)
	assert.ErrorIs(t, err, emspt.ErrConfigNotFound)
}
