package manifest

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func probeAlways(names ...string) ArchiveProbe {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return func(name string) bool { return set[name] }
}

func TestParse_RoundTrip_PreservesExtras(t *testing.T) {
	raw := []byte(`{
		"schemaVersion": 1,
		"name": "plugin1",
		"version": "1.0.0",
		"entryPoint": "plugin1.py",
		"dependencies": ["packaging>=25.0"],
		"futureKey": {"nested": true}
	}`)

	m, err := Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "plugin1", m.Name)
	assert.Equal(t, []string{"packaging>=25.0"}, m.Dependencies.List)
	assert.Equal(t, map[string]interface{}{"nested": true}, m.Extras["futureKey"])

	out, err := json.Marshal(m)
	require.NoError(t, err)

	m2, err := Parse(out)
	require.NoError(t, err)
	assert.Equal(t, m.Name, m2.Name)
	assert.Equal(t, m.Extras, m2.Extras)
}

func TestDependencies_InlineToken(t *testing.T) {
	raw := []byte(`{"schemaVersion":1,"name":"p","version":"1.0","entryPoint":"p.py","dependencies":"inline"}`)
	m, err := Parse(raw)
	require.NoError(t, err)
	assert.True(t, m.Dependencies.Inline)
}

func TestDependencies_InvalidStringToken(t *testing.T) {
	var d Dependencies
	err := json.Unmarshal([]byte(`"not-inline"`), &d)
	assert.Error(t, err)
}

func TestValidate_RejectsWrongSchemaVersion(t *testing.T) {
	m := &Manifest{SchemaVersion: 2, Name: "p", EntryPoint: "p.py"}
	err := Validate(m, "", probeAlways("p.py"))
	assert.Error(t, err)
}

func TestValidate_RejectsBadName(t *testing.T) {
	m := &Manifest{SchemaVersion: 1, Name: "p/bad", EntryPoint: "p.py"}
	err := Validate(m, "", probeAlways("p.py"))
	assert.Error(t, err)
}

func TestValidate_RejectsParentTraversalEntryPoint(t *testing.T) {
	m := &Manifest{SchemaVersion: 1, Name: "p", EntryPoint: "../evil.py"}
	err := Validate(m, "", probeAlways())
	assert.Error(t, err)
}

func TestValidate_RejectsMissingEntryPoint(t *testing.T) {
	m := &Manifest{SchemaVersion: 1, Name: "p", EntryPoint: "missing.py"}
	err := Validate(m, "", probeAlways())
	assert.Error(t, err)
}

func TestValidate_RequiredSettingNeedsDefaultWhenPromptDisabled(t *testing.T) {
	noPrompt := false
	m := &Manifest{
		SchemaVersion: 1, Name: "p", EntryPoint: "p.py",
		Settings: []SettingDescriptor{{Key: "k1", Type: SettingString, Required: true, Prompt: &noPrompt}},
	}
	err := Validate(m, "", probeAlways("p.py"))
	assert.Error(t, err)
}

func TestValidate_EnumRequiresChoices(t *testing.T) {
	m := &Manifest{
		SchemaVersion: 1, Name: "p", EntryPoint: "p.py",
		Settings: []SettingDescriptor{{Key: "k1", Type: SettingEnum}},
	}
	err := Validate(m, "", probeAlways("p.py"))
	assert.Error(t, err)
}

func TestResolvedPlatforms_SourcePlugin(t *testing.T) {
	m := &Manifest{EntryPoint: "plugin1.py"}
	set, err := ResolvedPlatforms(m, "", probeAlways())
	require.NoError(t, err)
	assert.Len(t, set, 4)
}

func TestResolvedPlatforms_SuffixedBinary(t *testing.T) {
	tests := []struct {
		entry string
		want  int
	}{
		{"plugin1.so", 1},
		{"plugin1.dll", 1},
		{"plugin1.dylib", 2},
	}
	for _, tt := range tests {
		m := &Manifest{EntryPoint: tt.entry}
		set, err := ResolvedPlatforms(m, "", probeAlways())
		require.NoError(t, err)
		assert.Len(t, set, tt.want)
	}
}

func TestResolvedPlatforms_BareEntryPointProbesSiblings(t *testing.T) {
	m := &Manifest{EntryPoint: "plugin1"}
	set, err := ResolvedPlatforms(m, "", probeAlways("plugin1.so", "plugin1.dll"))
	require.NoError(t, err)
	assert.True(t, set.Contains("linux-x86_64"))
	assert.True(t, set.Contains("windows-x86_64"))
	assert.False(t, set.Contains("macos-x86_64"))
}

func TestResolvedPlatforms_BareEntryPointNoMatchesFails(t *testing.T) {
	m := &Manifest{EntryPoint: "plugin1"}
	_, err := ResolvedPlatforms(m, "", probeAlways())
	assert.Error(t, err)
}

func TestResolvedPlatforms_ExplicitPlatformsValidated(t *testing.T) {
	m := &Manifest{EntryPoint: "plugin1.py", Platforms: []string{"bogus-arch"}}
	_, err := ResolvedPlatforms(m, "", probeAlways())
	assert.Error(t, err)
}

func TestResolvedPlatforms_NestedManifestDirectory(t *testing.T) {
	m := &Manifest{EntryPoint: "bin/plugin1"}
	set, err := ResolvedPlatforms(m, "plugins/plugin1", probeAlways("plugins/plugin1/bin/plugin1.so"))
	require.NoError(t, err)
	assert.True(t, set.Contains("linux-x86_64"))
}
