package scenario

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"

	"github.com/roach88/flagpin/internal/flag"
)

// Step operations.
const (
	OpSetBoolean      = "set_boolean"
	OpSetFeatureTrue  = "set_feature_true"
	OpSetFeatureFalse = "set_feature_false"
	OpSetInteger      = "set_integer"
	OpSetDouble       = "set_double"
	OpSetString       = "set_string"
	OpSetJSON         = "set_json"
	OpDelete          = "delete"
)

// ErrUnsupportedFormat is returned by Load for files that are neither YAML nor CUE.
var ErrUnsupportedFormat = errors.New("unsupported scenario format")

// Scenario is a list of override steps followed by the values users
// should be served once all steps are applied.
type Scenario struct {
	// Name identifies the scenario and names its golden file.
	Name string `yaml:"name" json:"name"`

	// Description says what the scenario checks.
	Description string `yaml:"description,omitempty" json:"description,omitempty"`

	// Steps are applied in order.
	Steps []Step `yaml:"steps" json:"steps"`

	// Expect is checked after every step has been applied.
	Expect []Expectation `yaml:"expect,omitempty" json:"expect,omitempty"`
}

// Step is one override write or delete.
type Step struct {
	// Op is one of the Op* constants.
	Op string `yaml:"op" json:"op"`

	// Key is the flag key.
	Key string `yaml:"key" json:"key"`

	// Value is the forced value. Unused by set_feature_true,
	// set_feature_false and delete.
	Value any `yaml:"value,omitempty" json:"value,omitempty"`
}

// Expectation is the value every listed user should be served for Key.
type Expectation struct {
	Key string `yaml:"key" json:"key"`

	// Value is compared with flag.Equal, so 2 and 2.0 differ.
	Value any `yaml:"value,omitempty" json:"value,omitempty"`

	// Users are user keys to evaluate. When empty a sample of fixed and
	// anonymous users is used.
	Users []string `yaml:"users,omitempty" json:"users,omitempty"`

	// Missing expects the flag to be unknown to the store.
	Missing bool `yaml:"missing,omitempty" json:"missing,omitempty"`
}

// Load reads a scenario from a .yaml, .yml or .cue file.
// Unknown fields are rejected in both formats.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var sc *Scenario
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		sc, err = parseYAML(data)
	case ".cue":
		sc, err = parseCUE(path, data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, err
	}

	if err := Validate(sc); err != nil {
		return nil, fmt.Errorf("invalid scenario %s: %w", path, err)
	}
	return sc, nil
}

// IsScenarioFile reports whether Load accepts path's extension.
func IsScenarioFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".cue":
		return true
	}
	return false
}

func parseYAML(data []byte) (*Scenario, error) {
	var sc Scenario
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&sc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to parse YAML: empty document")
		}
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return &sc, nil
}

func parseCUE(path string, data []byte) (*Scenario, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(path))
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("failed to compile CUE: %w", err)
	}
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, fmt.Errorf("CUE value is not concrete: %w", err)
	}

	js, err := v.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("failed to export CUE: %w", err)
	}

	var sc Scenario
	dec := json.NewDecoder(bytes.NewReader(js))
	dec.UseNumber()
	dec.DisallowUnknownFields()
	if err := dec.Decode(&sc); err != nil {
		return nil, fmt.Errorf("failed to decode CUE export: %w", err)
	}
	return &sc, nil
}

// Validate checks required fields and that every step value has the type
// its op needs.
func Validate(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if strings.ContainsAny(s.Name, `/\`) {
		return fmt.Errorf("name %q must not contain path separators", s.Name)
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if step.Key == "" {
			return fmt.Errorf("steps[%d]: key is required", i)
		}
		if _, err := stepValue(step); err != nil {
			return fmt.Errorf("steps[%d]: %w", i, err)
		}
	}

	for i, exp := range s.Expect {
		if exp.Key == "" {
			return fmt.Errorf("expect[%d]: key is required", i)
		}
		if exp.Missing {
			if exp.Value != nil {
				return fmt.Errorf("expect[%d]: value and missing are mutually exclusive", i)
			}
			continue
		}
		if exp.Value == nil {
			return fmt.Errorf("expect[%d]: value or missing is required", i)
		}
		if _, err := flag.ValueOf(exp.Value); err != nil {
			return fmt.Errorf("expect[%d]: %w", i, err)
		}
	}

	return nil
}

// stepValue converts a step's raw value to the flag value its op writes.
// Ops that take no value return nil.
func stepValue(step Step) (flag.Value, error) {
	switch step.Op {
	case OpSetFeatureTrue, OpSetFeatureFalse, OpDelete:
		if step.Value != nil {
			return nil, fmt.Errorf("%s takes no value", step.Op)
		}
		return nil, nil
	case OpSetBoolean, OpSetInteger, OpSetDouble, OpSetString, OpSetJSON:
	case "":
		return nil, fmt.Errorf("op is required")
	default:
		return nil, fmt.Errorf("unknown op %q", step.Op)
	}

	if step.Value == nil && step.Op != OpSetJSON {
		return nil, fmt.Errorf("%s requires a value", step.Op)
	}
	v, err := flag.ValueOf(step.Value)
	if err != nil {
		return nil, err
	}

	var ok bool
	switch step.Op {
	case OpSetBoolean:
		_, ok = v.(flag.Bool)
	case OpSetInteger:
		_, ok = v.(flag.Int)
	case OpSetDouble:
		switch v.(type) {
		case flag.Int, flag.Float:
			ok = true
		}
	case OpSetString:
		_, ok = v.(flag.String)
	case OpSetJSON:
		ok = true
	}
	if !ok {
		return nil, fmt.Errorf("%s: value has type %s", step.Op, flag.TypeName(v))
	}
	return v, nil
}
