package configstore

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/228Abobus228/SPTOVZ/internal/emspt"
)

// On-disk shapes. Field names follow the existing YAML files.

type keysFile struct {
	RiskScales    []string    `yaml:"risk_scales"`
	ProtectScales []string    `yaml:"protect_scales"`
	LieScale      string      `yaml:"lie_scale"`
	Keys          orderedKeys `yaml:"keys"`
}

type lieFile struct {
	Threshold map[emspt.Form]float64                                        `yaml:"threshold"`
	Coeff     map[emspt.Form]map[emspt.Impairment]map[emspt.Gender]float64 `yaml:"coeff"`
}

type normsEntry struct {
	IRPBands   map[string]interval `yaml:"IRP_bands"`
	KveripoMax *float64            `yaml:"KVERIPO_max"`
}

type normsFile map[emspt.Form]map[emspt.Impairment]map[emspt.Gender]normsEntry

type stenFile map[string][]interval

type interpretationsFile map[string]map[emspt.Level]string

// orderedKeys keeps the mapping order of the keys section.
type orderedKeys []emspt.ScaleKey

func (k *orderedKeys) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: keys must be a mapping of scale to question ids", n.Line)
	}
	out := make(orderedKeys, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		var ids []questionID
		if err := n.Content[i+1].Decode(&ids); err != nil {
			return fmt.Errorf("scale %s: %w", n.Content[i].Value, err)
		}
		sk := emspt.ScaleKey{Scale: n.Content[i].Value, Questions: make([]string, len(ids))}
		for j, id := range ids {
			sk.Questions[j] = string(id)
		}
		out = append(out, sk)
	}
	*k = out
	return nil
}

// questionID accepts integer and string ids alike.
type questionID string

func (q *questionID) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.ScalarNode || n.Value == "" {
		return fmt.Errorf("line %d: question id must be a scalar", n.Line)
	}
	*q = questionID(n.Value)
	return nil
}

// interval is a two-element [low, high] sequence.
type interval emspt.Interval

func (iv *interval) UnmarshalYAML(n *yaml.Node) error {
	var pair []float64
	if err := n.Decode(&pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("line %d: interval needs [low, high], got %d values", n.Line, len(pair))
	}
	iv.Low, iv.High = pair[0], pair[1]
	return nil
}

func intervals(in []interval) []emspt.Interval {
	out := make([]emspt.Interval, len(in))
	for i, iv := range in {
		out[i] = emspt.Interval(iv)
	}
	return out
}
