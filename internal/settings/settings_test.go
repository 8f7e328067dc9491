package settings

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benjaminabbitt/hostcli/internal/errs"
	"github.com/benjaminabbitt/hostcli/internal/manifest"
)

func sampleManifest() *manifest.Manifest {
	return &manifest.Manifest{
		Name: "plugin1",
		Settings: []manifest.SettingDescriptor{
			{Key: "k1", Type: manifest.SettingString, Required: true},
			{Key: "k2", Type: manifest.SettingBool, Default: false},
			{Key: "k3", Type: manifest.SettingEnum, Choices: []string{"a", "b"}, Default: "a"},
		},
	}
}

func TestSetGet_RoundTrip(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := NewStore(fs, "/home")
	m := sampleManifest()

	require.NoError(t, store.Set(m, "plugin1", "k1", "hello"))
	v, err := store.Get(m, "plugin1", "k1")
	require.NoError(t, err)
	assert.Equal(t, "hello", v)
}

func TestGet_FallsBackToDefault(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := NewStore(fs, "/home")
	m := sampleManifest()

	v, err := store.Get(m, "plugin1", "k3")
	require.NoError(t, err)
	assert.Equal(t, "a", v)
}

func TestGet_MissingNoDefaultFails(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := NewStore(fs, "/home")
	m := sampleManifest()

	_, err := store.Get(m, "plugin1", "k1")
	assert.Equal(t, errs.KindSettingMissing, errs.KindOf(err))
}

func TestGet_UnknownKeyFails(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := NewStore(fs, "/home")
	m := sampleManifest()

	_, err := store.Get(m, "plugin1", "bogus")
	assert.Equal(t, errs.KindSettingInvalid, errs.KindOf(err))
}

func TestSet_EnumRejectsUnknownChoice(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := NewStore(fs, "/home")
	m := sampleManifest()

	err := store.Set(m, "plugin1", "k3", "z")
	assert.Equal(t, errs.KindSettingInvalid, errs.KindOf(err))
}

func TestDelete_RefusedWhenRequiredNoDefault(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := NewStore(fs, "/home")
	m := sampleManifest()
	require.NoError(t, store.Set(m, "plugin1", "k1", "x"))

	err := store.Delete(m, "plugin1", "k1")
	assert.Equal(t, errs.KindSettingUndeletable, errs.KindOf(err))
}

func TestDelete_AllowedWithDefault(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := NewStore(fs, "/home")
	m := sampleManifest()
	require.NoError(t, store.Set(m, "plugin1", "k3", "b"))

	require.NoError(t, store.Delete(m, "plugin1", "k3"))
	v, err := store.Get(m, "plugin1", "k3")
	require.NoError(t, err)
	assert.Equal(t, "a", v)
}

func TestList_MergesStoredAndDefaults(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := NewStore(fs, "/home")
	m := sampleManifest()
	require.NoError(t, store.Set(m, "plugin1", "k1", "hi"))

	values, err := store.List(m, "plugin1")
	require.NoError(t, err)
	assert.Equal(t, "hi", values["k1"])
	assert.Equal(t, false, values["k2"])
	assert.Equal(t, "a", values["k3"])
}

func TestBootstrap_RejectsUnknownSuppliedKey(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := NewStore(fs, "/home")
	m := sampleManifest()

	err := store.Bootstrap(m, "plugin1", map[string]string{"k2x": "x"}, false, nil)
	assert.Equal(t, errs.KindSettingInvalid, errs.KindOf(err))
}

func TestBootstrap_NonInteractiveMissingRequiredFails(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := NewStore(fs, "/home")
	m := sampleManifest()
	m.Settings[0].Prompt = boolPtr(true)

	err := store.Bootstrap(m, "plugin1", map[string]string{}, false, nil)
	assert.Equal(t, errs.KindSettingMissing, errs.KindOf(err))
}

func TestBootstrap_SuppliedValueSatisfiesRequired(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := NewStore(fs, "/home")
	m := sampleManifest()

	err := store.Bootstrap(m, "plugin1", map[string]string{"k1": "value"}, false, nil)
	require.NoError(t, err)

	v, err := store.Get(m, "plugin1", "k1")
	require.NoError(t, err)
	assert.Equal(t, "value", v)
}

func boolPtr(b bool) *bool { return &b }
