package prefabs

import (
	"errors"
	"fmt"
	"image/color"
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/milk9111/thinghittr/quadrants"
	"gopkg.in/yaml.v3"
)

func LoadSpec[T any](filename string) (T, error) {
	var zero T
	data, err := Load(filename)
	if err != nil {
		return zero, fmt.Errorf("prefabs: load %s: %w", filename, err)
	}

	var spec T
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return zero, fmt.Errorf("prefabs: unmarshal %s: %w", filename, err)
	}

	return spec, nil
}

// DecodeSpec re-decodes a loosely typed YAML value, such as rule params,
// into T.
func DecodeSpec[T any](raw any) (T, error) {
	var zero T
	if raw == nil {
		return zero, nil
	}
	b, err := yaml.Marshal(raw)
	if err != nil {
		return zero, err
	}
	var out T
	if err := yaml.Unmarshal(b, &out); err != nil {
		return zero, err
	}
	return out, nil
}

// RulesSpec configures which groups are gated and which group pairs are
// checked, and with which named generators.
type RulesSpec struct {
	// GlobalChecks maps a group to a global check name.
	GlobalChecks map[string]string `yaml:"global_checks"`
	// HitChecks maps a group to the pairs it checks, in scan order.
	HitChecks map[string][]PairRuleSpec `yaml:"hit_checks"`
}

// PairRuleSpec names the check and callback used for one group pair.
// Names starting with "script:" refer to tengo scripts.
type PairRuleSpec struct {
	With     string         `yaml:"with"`
	Check    string         `yaml:"check"`
	Callback string         `yaml:"callback"`
	Params   map[string]any `yaml:"params"`
}

// Validate reports empty names and duplicate pairs.
func (s *RulesSpec) Validate() error {
	if s == nil {
		return fmt.Errorf("prefabs: nil rules spec")
	}
	var errs []error
	for group, check := range s.GlobalChecks {
		if strings.TrimSpace(group) == "" || strings.TrimSpace(check) == "" {
			errs = append(errs, fmt.Errorf("prefabs: global check %q -> %q has an empty name", group, check))
		}
	}
	for group, pairs := range s.HitChecks {
		if strings.TrimSpace(group) == "" {
			errs = append(errs, fmt.Errorf("prefabs: hit checks with an empty group name"))
			continue
		}
		seen := make(map[string]bool, len(pairs))
		for _, pair := range pairs {
			if strings.TrimSpace(pair.With) == "" {
				errs = append(errs, fmt.Errorf("prefabs: %q has a pair without a group", group))
				continue
			}
			if seen[pair.With] {
				errs = append(errs, fmt.Errorf("prefabs: %q lists %q more than once", group, pair.With))
			}
			seen[pair.With] = true
			if strings.TrimSpace(pair.Check) == "" {
				errs = append(errs, fmt.Errorf("prefabs: %q against %q has no check", group, pair.With))
			}
		}
	}
	return errors.Join(errs...)
}

// Scripts returns the base names of the tengo scripts the rules refer to,
// sorted and without duplicates.
func (s *RulesSpec) Scripts() []string {
	if s == nil {
		return nil
	}
	seen := map[string]bool{}
	for _, pairs := range s.HitChecks {
		for _, pair := range pairs {
			names := append([]string{pair.Check}, strings.Split(pair.Callback, "+")...)
			for _, name := range names {
				name = strings.TrimSpace(name)
				if after, ok := strings.CutPrefix(name, "script:"); ok && after != "" {
					seen[path.Base(after)] = true
				}
			}
		}
	}
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func LoadRulesSpec(filename string) (*RulesSpec, error) {
	spec, err := LoadSpec[RulesSpec](filename)
	if err != nil {
		return nil, err
	}
	if err := spec.Validate(); err != nil {
		return nil, fmt.Errorf("prefabs: %s: %w", filename, err)
	}
	return &spec, nil
}

// RegistrySpec maps every thing type to its group.
type RegistrySpec struct {
	Types map[string]string `yaml:"types"`
}

func LoadRegistrySpec(filename string) (*RegistrySpec, error) {
	spec, err := LoadSpec[RegistrySpec](filename)
	if err != nil {
		return nil, err
	}
	return &spec, nil
}

// EdgeMode decides what happens to things that leave the world bounds.
type EdgeMode string

const (
	EdgeNone   EdgeMode = ""
	EdgeWrap   EdgeMode = "wrap"
	EdgeBounce EdgeMode = "bounce"
	EdgeKill   EdgeMode = "kill"
)

type ScenarioSpec struct {
	Name     string                `yaml:"name"`
	Rules    string                `yaml:"rules"`
	Registry string                `yaml:"registry"`
	Grid     quadrants.Config      `yaml:"grid"`
	Edges    EdgeMode              `yaml:"edges"`
	Colors   map[string]*YAMLColor `yaml:"colors"`
	Things   []ThingSpec           `yaml:"things"`
}

type ThingSpec struct {
	Type string  `yaml:"type"`
	X    float64 `yaml:"x"`
	Y    float64 `yaml:"y"`
	W    float64 `yaml:"w"`
	H    float64 `yaml:"h"`
	VX   float64 `yaml:"vx"`
	VY   float64 `yaml:"vy"`
	// Repeat places Repeat copies, each offset by StepX/StepY.
	Repeat int     `yaml:"repeat"`
	StepX  float64 `yaml:"step_x"`
	StepY  float64 `yaml:"step_y"`
}

// Files returns the base names of the files a running scenario depends on:
// its rules, its registry and the scripts rules refers to.
func (s *ScenarioSpec) Files(rules *RulesSpec) []string {
	files := []string{path.Base(s.Rules), path.Base(s.Registry)}
	return append(files, rules.Scripts()...)
}

func LoadScenarioSpec(filename string) (*ScenarioSpec, error) {
	spec, err := LoadSpec[ScenarioSpec](filename)
	if err != nil {
		return nil, err
	}
	if spec.Rules == "" {
		spec.Rules = "rules.yaml"
	}
	if spec.Registry == "" {
		spec.Registry = "registry.yaml"
	}
	switch spec.Edges {
	case EdgeNone, EdgeWrap, EdgeBounce, EdgeKill:
	default:
		return nil, fmt.Errorf("prefabs: %s: unknown edge mode %q", filename, spec.Edges)
	}
	return &spec, nil
}

type YAMLColor struct {
	color.Color
}

func (c *YAMLColor) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("color must be a string")
	}

	s := strings.TrimPrefix(value.Value, "#")

	if len(s) != 6 && len(s) != 8 {
		return fmt.Errorf("invalid color format: %s", value.Value)
	}

	parse := func(start int) (uint8, error) {
		v, err := strconv.ParseUint(s[start:start+2], 16, 8)
		return uint8(v), err
	}

	r, err := parse(0)
	if err != nil {
		return err
	}
	g, err := parse(2)
	if err != nil {
		return err
	}
	b, err := parse(4)
	if err != nil {
		return err
	}

	a := uint8(255)
	if len(s) == 8 {
		a, err = parse(6)
		if err != nil {
			return err
		}
	}

	c.Color = color.NRGBA{R: r, G: g, B: b, A: a}
	return nil
}
