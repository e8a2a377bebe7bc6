// Package configstore loads EMSPT scoring tables from a configuration root
// and serves them to the engine. A Store is immutable once loaded.
package configstore

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"github.com/228Abobus228/SPTOVZ/internal/emspt"
)

// Well-known file names under the configuration root.
const (
	KeysPattern         = "keys_*.{yaml,yml}"
	StenPattern         = "sten_tables/*/*/*.{yaml,yml}"
	LieCorrectionFile   = "lie_correction.yaml"
	NormsFile           = "norms.yaml"
	InterpretationsFile = "interpretations.yaml"
)

// Store holds every table found under one configuration root.
type Store struct {
	root   string
	keys   map[emspt.Form]emspt.KeyConfig
	lie    *emspt.LieCorrection
	norms  map[emspt.Profile]emspt.Norms
	sten   map[emspt.Profile]emspt.StenTable
	interp emspt.Interpretations
}

// Load reads the configuration root from disk.
func Load(root string) (*Store, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("config root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("config root %s is not a directory", root)
	}
	s, err := LoadFS(os.DirFS(root))
	if err != nil {
		return nil, err
	}
	s.root = root
	return s, nil
}

// LoadFS reads every table from fsys and validates it. Authoring defects
// fail the load with *emspt.MalformedConfigError; absent artifacts are
// only reported when a profile that needs them is resolved.
func LoadFS(fsys fs.FS) (*Store, error) {
	s := &Store{
		keys:  map[emspt.Form]emspt.KeyConfig{},
		norms: map[emspt.Profile]emspt.Norms{},
		sten:  map[emspt.Profile]emspt.StenTable{},
	}
	if err := s.loadKeys(fsys); err != nil {
		return nil, err
	}
	if err := s.loadLie(fsys); err != nil {
		return nil, err
	}
	if err := s.loadNorms(fsys); err != nil {
		return nil, err
	}
	if err := s.loadSten(fsys); err != nil {
		return nil, err
	}
	if err := s.loadInterpretations(fsys); err != nil {
		return nil, err
	}
	return s, nil
}

// Root is the directory the store was loaded from, if any.
func (s *Store) Root() string { return s.root }

// Resolve returns the tables for p or an *emspt.ConfigNotFoundError naming
// the first missing artifact.
func (s *Store) Resolve(p emspt.Profile) (emspt.Tables, error) {
	keys, ok := s.keys[p.Form]
	if !ok {
		return emspt.Tables{}, &emspt.ConfigNotFoundError{Artifact: "keys", Key: string(p.Form)}
	}
	if s.lie == nil {
		return emspt.Tables{}, &emspt.ConfigNotFoundError{Artifact: "lie_correction", Key: p.String()}
	}
	norms, ok := s.norms[p]
	if !ok {
		return emspt.Tables{}, &emspt.ConfigNotFoundError{Artifact: "norms", Key: p.String()}
	}
	sten, ok := s.sten[p]
	if !ok {
		return emspt.Tables{}, &emspt.ConfigNotFoundError{Artifact: "sten_table", Key: p.String()}
	}
	return emspt.Tables{
		Keys:            keys,
		Lie:             *s.lie,
		Norms:           norms,
		Sten:            sten,
		Interpretations: s.interp,
	}, nil
}

// Gap is a profile that cannot be scored with the loaded tables.
type Gap struct {
	Profile emspt.Profile `json:"profile"`
	Missing []string      `json:"missing"`
}

// Coverage lists every enumerated profile with at least one missing
// artifact, in enumeration order.
func (s *Store) Coverage() []Gap {
	var gaps []Gap
	for _, f := range emspt.Forms {
		for _, imp := range emspt.Impairments {
			for _, g := range emspt.Genders {
				p := emspt.Profile{Form: f, Impairment: imp, Gender: g}
				var missing []string
				if _, ok := s.keys[f]; !ok {
					missing = append(missing, "keys")
				}
				if s.lie == nil {
					missing = append(missing, "lie_correction")
				}
				if _, ok := s.norms[p]; !ok {
					missing = append(missing, "norms")
				}
				if _, ok := s.sten[p]; !ok {
					missing = append(missing, "sten_table")
				}
				if len(missing) > 0 {
					gaps = append(gaps, Gap{Profile: p, Missing: missing})
				}
			}
		}
	}
	return gaps
}

func (s *Store) loadKeys(fsys fs.FS) error {
	matches, err := doublestar.Glob(fsys, KeysPattern)
	if err != nil {
		return fmt.Errorf("error evaluating pattern %s: %w", KeysPattern, err)
	}
	for _, name := range matches {
		forms, err := formsFromKeysName(name)
		if err != nil {
			return &emspt.MalformedConfigError{Path: name, Reason: "file name", Err: err}
		}
		var kf keysFile
		if err := decodeFile(fsys, name, &kf); err != nil {
			return err
		}
		kc := emspt.KeyConfig{
			RiskScales:    kf.RiskScales,
			ProtectScales: kf.ProtectScales,
			LieScale:      kf.LieScale,
			Keys:          kf.Keys,
		}
		if err := kc.Validate(); err != nil {
			return &emspt.MalformedConfigError{Path: name, Reason: "key groups", Err: err}
		}
		for _, f := range forms {
			if _, dup := s.keys[f]; dup {
				return &emspt.MalformedConfigError{Path: name, Reason: fmt.Sprintf("form %s defined twice", f)}
			}
			s.keys[f] = kc
		}
	}
	return nil
}

// formsFromKeysName reads the forms a key file covers from its suffix:
// keys_BC.yaml covers B and C.
func formsFromKeysName(name string) ([]emspt.Form, error) {
	base := strings.TrimSuffix(path.Base(name), path.Ext(name))
	suffix := strings.TrimPrefix(base, "keys_")
	if suffix == "" {
		return nil, errors.New("no form letters after keys_")
	}
	forms := make([]emspt.Form, 0, len(suffix))
	for _, r := range suffix {
		f := emspt.Form(strings.ToUpper(string(r)))
		if !f.Valid() {
			return nil, fmt.Errorf("unknown form %q", string(r))
		}
		forms = append(forms, f)
	}
	return forms, nil
}

func (s *Store) loadLie(fsys fs.FS) error {
	var lf lieFile
	found, err := decodeOptional(fsys, LieCorrectionFile, &lf)
	if err != nil || !found {
		return err
	}
	lie := emspt.LieCorrection{Threshold: lf.Threshold, Coeff: lf.Coeff}
	for f := range lf.Threshold {
		if !f.Valid() {
			return &emspt.MalformedConfigError{Path: LieCorrectionFile, Reason: fmt.Sprintf("unknown form %q in threshold", f)}
		}
	}
	for f, byImp := range lf.Coeff {
		for imp, byGender := range byImp {
			for g := range byGender {
				p := emspt.Profile{Form: f, Impairment: imp, Gender: g}
				if err := p.Validate(); err != nil {
					return &emspt.MalformedConfigError{Path: LieCorrectionFile, Reason: "coeff", Err: err}
				}
			}
		}
	}
	if err := lie.Validate(); err != nil {
		return &emspt.MalformedConfigError{Path: LieCorrectionFile, Reason: "values", Err: err}
	}
	s.lie = &lie
	return nil
}

func (s *Store) loadNorms(fsys fs.FS) error {
	var nf normsFile
	found, err := decodeOptional(fsys, NormsFile, &nf)
	if err != nil || !found {
		return err
	}
	for f, byImp := range nf {
		for imp, byGender := range byImp {
			for g, entry := range byGender {
				p := emspt.Profile{Form: f, Impairment: imp, Gender: g}
				if err := p.Validate(); err != nil {
					return &emspt.MalformedConfigError{Path: NormsFile, Reason: "profile", Err: err}
				}
				n := emspt.Norms{
					IRPBands:   make(map[string]emspt.Interval, len(entry.IRPBands)),
					KveripoMax: entry.KveripoMax,
				}
				for label, iv := range entry.IRPBands {
					n.IRPBands[label] = emspt.Interval(iv)
				}
				if err := n.Validate(); err != nil {
					return &emspt.MalformedConfigError{Path: NormsFile, Reason: p.String(), Err: err}
				}
				s.norms[p] = n
			}
		}
	}
	return nil
}

func (s *Store) loadSten(fsys fs.FS) error {
	matches, err := doublestar.Glob(fsys, StenPattern)
	if err != nil {
		return fmt.Errorf("error evaluating pattern %s: %w", StenPattern, err)
	}
	for _, name := range matches {
		p, err := profileFromStenPath(name)
		if err != nil {
			return &emspt.MalformedConfigError{Path: name, Reason: "path", Err: err}
		}
		if _, dup := s.sten[p]; dup {
			return &emspt.MalformedConfigError{Path: name, Reason: fmt.Sprintf("sten table for %s defined twice", p)}
		}
		var sf stenFile
		if err := decodeFile(fsys, name, &sf); err != nil {
			return err
		}
		table := make(emspt.StenTable, len(sf))
		for scale, ivs := range sf {
			table[scale] = intervals(ivs)
		}
		if err := table.Validate(); err != nil {
			return &emspt.MalformedConfigError{Path: name, Reason: "intervals", Err: err}
		}
		s.sten[p] = table
	}
	return nil
}

// profileFromStenPath parses sten_tables/<form>/<impairment>/<gender>.yaml.
func profileFromStenPath(name string) (emspt.Profile, error) {
	parts := strings.Split(name, "/")
	if len(parts) != 4 {
		return emspt.Profile{}, fmt.Errorf("unexpected sten table path %s", name)
	}
	gender := strings.TrimSuffix(parts[3], path.Ext(parts[3]))
	p := emspt.Profile{
		Form:       emspt.Form(parts[1]),
		Impairment: emspt.Impairment(parts[2]),
		Gender:     emspt.Gender(gender),
	}
	return p, p.Validate()
}

func (s *Store) loadInterpretations(fsys fs.FS) error {
	var itf interpretationsFile
	found, err := decodeOptional(fsys, InterpretationsFile, &itf)
	if err != nil || !found {
		return err
	}
	out := make(emspt.Interpretations, len(itf))
	for scale, byLevel := range itf {
		for lvl := range byLevel {
			if lvl != emspt.LevelLow && lvl != emspt.LevelMid && lvl != emspt.LevelHigh {
				return &emspt.MalformedConfigError{Path: InterpretationsFile, Reason: fmt.Sprintf("scale %s: unknown level %q", scale, lvl)}
			}
		}
		out[scale] = byLevel
	}
	s.interp = out
	return nil
}

func decodeOptional(fsys fs.FS, name string, v any) (bool, error) {
	if _, err := fs.Stat(fsys, name); errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return true, decodeFile(fsys, name, v)
}

func decodeFile(fsys fs.FS, name string, v any) error {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	// misspelled field names must not load as empty tables
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return &emspt.MalformedConfigError{Path: name, Reason: "yaml", Err: err}
	}
	return nil
}
