package installer

import (
	"archive/zip"
	"bytes"
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benjaminabbitt/hostcli/internal/archive"
	"github.com/benjaminabbitt/hostcli/internal/errs"
)

func buildArchive(t *testing.T, files map[string]string) *archive.Archive {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range files {
		f, err := w.Create(name)
		require.NoError(t, err)
		_, err = f.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	arc, err := archive.Open(buf.Bytes())
	require.NoError(t, err)
	return arc
}

func TestInstall_CreatesPluginDirectory(t *testing.T) {
	fs := afero.NewMemMapFs()
	inst := New(fs, "/plugins")
	arc := buildArchive(t, map[string]string{
		"plugin-manifest.json": `{"schemaVersion":1,"name":"plugin1","version":"1.0.0","entryPoint":"plugin1.py"}`,
		"plugin1.py":           "print()",
	})

	require.NoError(t, inst.Install(context.Background(), "plugin1", arc, ""))

	installed, err := inst.IsInstalled("plugin1")
	require.NoError(t, err)
	assert.True(t, installed)

	data, err := afero.ReadFile(fs, "/plugins/plugin1/plugin1.py")
	require.NoError(t, err)
	assert.Equal(t, "print()", string(data))
}

func TestInstall_RejectsAlreadyInstalled(t *testing.T) {
	fs := afero.NewMemMapFs()
	inst := New(fs, "/plugins")
	arc := buildArchive(t, map[string]string{
		"plugin-manifest.json": `{"schemaVersion":1,"name":"plugin1","version":"1.0.0","entryPoint":"plugin1.py"}`,
		"plugin1.py":           "x",
	})
	require.NoError(t, inst.Install(context.Background(), "plugin1", arc, ""))

	err := inst.Install(context.Background(), "plugin1", arc, "")
	assert.Equal(t, errs.KindAlreadyInstalled, errs.KindOf(err))
}

func TestInstall_NestedManifestDirectoryExtractsRelativeToIt(t *testing.T) {
	fs := afero.NewMemMapFs()
	inst := New(fs, "/plugins")
	arc := buildArchive(t, map[string]string{
		"acme/plugin-manifest.json": `{"schemaVersion":1,"name":"acme","version":"1.0.0","entryPoint":"p.py"}`,
		"acme/p.py":                 "x",
		"acme/assets/icon.png":      "binarydata",
	})

	require.NoError(t, inst.Install(context.Background(), "acme", arc, "acme"))

	_, err := afero.ReadFile(fs, "/plugins/acme/p.py")
	require.NoError(t, err)
	_, err = afero.ReadFile(fs, "/plugins/acme/assets/icon.png")
	require.NoError(t, err)
}

func TestUninstall_RemovesDirectory(t *testing.T) {
	fs := afero.NewMemMapFs()
	inst := New(fs, "/plugins")
	arc := buildArchive(t, map[string]string{
		"plugin-manifest.json": `{"schemaVersion":1,"name":"plugin1","version":"1.0.0","entryPoint":"plugin1.py"}`,
		"plugin1.py":           "x",
	})
	require.NoError(t, inst.Install(context.Background(), "plugin1", arc, ""))
	require.NoError(t, inst.Uninstall("plugin1"))

	installed, err := inst.IsInstalled("plugin1")
	require.NoError(t, err)
	assert.False(t, installed)
}

func TestUninstall_NotInstalledFails(t *testing.T) {
	fs := afero.NewMemMapFs()
	inst := New(fs, "/plugins")
	err := inst.Uninstall("missing")
	assert.Equal(t, errs.KindNotInstalled, errs.KindOf(err))
}

func TestEnableDisable_RoundTrip(t *testing.T) {
	fs := afero.NewMemMapFs()
	inst := New(fs, "/plugins")
	arc := buildArchive(t, map[string]string{
		"plugin-manifest.json": `{"schemaVersion":1,"name":"plugin1","version":"1.0.0","entryPoint":"plugin1.py"}`,
		"plugin1.py":           "x",
	})
	require.NoError(t, inst.Install(context.Background(), "plugin1", arc, ""))

	enabled, err := inst.IsEnabled("plugin1")
	require.NoError(t, err)
	assert.True(t, enabled)

	require.NoError(t, inst.Disable("plugin1"))
	enabled, err = inst.IsEnabled("plugin1")
	require.NoError(t, err)
	assert.False(t, enabled)

	require.NoError(t, inst.Enable("plugin1"))
	enabled, err = inst.IsEnabled("plugin1")
	require.NoError(t, err)
	assert.True(t, enabled)
}

func TestUpgrade_PreservesDisabledState(t *testing.T) {
	fs := afero.NewMemMapFs()
	inst := New(fs, "/plugins")
	v1 := buildArchive(t, map[string]string{
		"plugin-manifest.json": `{"schemaVersion":1,"name":"plugin1","version":"1.0.0","entryPoint":"plugin1.py"}`,
		"plugin1.py":           "old",
	})
	require.NoError(t, inst.Install(context.Background(), "plugin1", v1, ""))
	require.NoError(t, inst.Disable("plugin1"))

	v2 := buildArchive(t, map[string]string{
		"plugin-manifest.json": `{"schemaVersion":1,"name":"plugin1","version":"2.0.0","entryPoint":"plugin1.py"}`,
		"plugin1.py":           "new",
	})
	require.NoError(t, inst.Upgrade(context.Background(), "plugin1", v2, ""))

	data, err := afero.ReadFile(fs, "/plugins/plugin1/plugin1.py")
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))

	enabled, err := inst.IsEnabled("plugin1")
	require.NoError(t, err)
	assert.False(t, enabled)
}

func TestUpgrade_NotInstalledFails(t *testing.T) {
	fs := afero.NewMemMapFs()
	inst := New(fs, "/plugins")
	arc := buildArchive(t, map[string]string{
		"plugin-manifest.json": `{"schemaVersion":1,"name":"plugin1","version":"1.0.0","entryPoint":"plugin1.py"}`,
		"plugin1.py":           "x",
	})
	err := inst.Upgrade(context.Background(), "plugin1", arc, "")
	assert.Equal(t, errs.KindNotInstalled, errs.KindOf(err))
}

func TestListInstalled_EmptyPluginsRoot(t *testing.T) {
	fs := afero.NewMemMapFs()
	inst := New(fs, "/plugins")
	names, err := inst.ListInstalled()
	require.NoError(t, err)
	assert.Empty(t, names)
}
