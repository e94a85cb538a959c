package scenario

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScenario(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_YAML(t *testing.T) {
	sc, err := Load("testdata/new_ui.yaml")
	require.NoError(t, err)

	assert.Equal(t, "new-ui-rollback", sc.Name)
	require.Len(t, sc.Steps, 2)
	assert.Equal(t, Step{Op: OpSetFeatureTrue, Key: "new-ui"}, sc.Steps[0])
	assert.Equal(t, Step{Op: OpSetFeatureFalse, Key: "new-ui"}, sc.Steps[1])
	require.Len(t, sc.Expect, 1)
	assert.Equal(t, false, sc.Expect[0].Value)
}

func TestLoad_CUE(t *testing.T) {
	sc, err := Load("testdata/config_blob.cue")
	require.NoError(t, err)

	assert.Equal(t, "config-blob", sc.Name)
	require.Len(t, sc.Steps, 4)
	assert.Equal(t, OpSetJSON, sc.Steps[0].Op)
	assert.Equal(t, OpDelete, sc.Steps[3].Op)
	require.Len(t, sc.Expect, 3)
	assert.Equal(t, []string{"alice", "bob"}, sc.Expect[0].Users)
	assert.True(t, sc.Expect[2].Missing)
}

func TestLoad_UnknownFieldRejected(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{
			name: "yaml",
			file: "typo.yaml",
			content: `name: typo
steps:
  - op: set_feature_true
    key: a
expects:
  - key: a
    value: true
`,
		},
		{
			name: "cue",
			file: "typo.cue",
			content: `name: "typo"
steps: [{op: "set_feature_true", key: "a"}]
expects: [{key: "a", value: true}]
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeScenario(t, tt.file, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestLoad_CUENotConcrete(t *testing.T) {
	path := writeScenario(t, "open.cue", `name: string
steps: [{op: "set_feature_true", key: "a"}]
`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_UnsupportedFormat(t *testing.T) {
	path := writeScenario(t, "scenario.json", `{"name":"x"}`)
	_, err := Load(path)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_EmptyFile(t *testing.T) {
	_, err := Load(writeScenario(t, "empty.yaml", ""))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Scenario {
		return &Scenario{
			Name:   "ok",
			Steps:  []Step{{Op: OpSetInteger, Key: "k", Value: 3}},
			Expect: []Expectation{{Key: "k", Value: 3}},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Scenario)
		wantErr string
	}{
		{"valid", func(*Scenario) {}, ""},
		{"missing name", func(s *Scenario) { s.Name = "" }, "name is required"},
		{"path in name", func(s *Scenario) { s.Name = "a/b" }, "path separators"},
		{"no steps", func(s *Scenario) { s.Steps = nil }, "steps list is required"},
		{"missing key", func(s *Scenario) { s.Steps[0].Key = "" }, "key is required"},
		{"missing op", func(s *Scenario) { s.Steps[0].Op = "" }, "op is required"},
		{"unknown op", func(s *Scenario) { s.Steps[0].Op = "set_color" }, `unknown op "set_color"`},
		{"integer as string", func(s *Scenario) { s.Steps[0].Value = "3" }, "value has type string"},
		{"integer as float", func(s *Scenario) { s.Steps[0].Value = 3.5 }, "value has type float"},
		{"missing value", func(s *Scenario) { s.Steps[0].Value = nil }, "requires a value"},
		{"value on feature op", func(s *Scenario) { s.Steps[0] = Step{Op: OpSetFeatureTrue, Key: "k", Value: true} }, "takes no value"},
		{"double accepts int", func(s *Scenario) { s.Steps[0] = Step{Op: OpSetDouble, Key: "k", Value: 2} }, ""},
		{"json accepts null", func(s *Scenario) { s.Steps[0] = Step{Op: OpSetJSON, Key: "k"} }, ""},
		{"expect missing key", func(s *Scenario) { s.Expect[0].Key = "" }, "expect[0]: key is required"},
		{"expect no value", func(s *Scenario) { s.Expect[0].Value = nil }, "value or missing is required"},
		{"expect value and missing", func(s *Scenario) { s.Expect[0].Missing = true }, "mutually exclusive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc := valid()
			tt.mutate(sc)
			err := Validate(sc)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestIsScenarioFile(t *testing.T) {
	assert.True(t, IsScenarioFile("a.yaml"))
	assert.True(t, IsScenarioFile("a.YML"))
	assert.True(t, IsScenarioFile("dir/a.cue"))
	assert.False(t, IsScenarioFile("a.golden"))
	assert.False(t, IsScenarioFile("a"))
}
