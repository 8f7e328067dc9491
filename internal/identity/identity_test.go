package identity

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benjaminabbitt/hostcli/internal/errs"
)

func writeManifest(t *testing.T, fs afero.Fs, dir, name string) {
	t.Helper()
	data := []byte(`{"schemaVersion":1,"name":"` + name + `","version":"1.0.0","entryPoint":"p.py"}`)
	require.NoError(t, afero.WriteFile(fs, "/plugins/"+dir+"/plugin-manifest.json", data, 0o644))
}

func TestDetectFiles_MatchesDirectlyUnderPlugin(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeManifest(t, fs, "acme-dir", "acme-decompiler")

	d := New(fs, "/plugins")
	name, err := d.DetectFiles([]string{"/plugins/acme-dir/p.py"})
	require.NoError(t, err)
	assert.Equal(t, "acme-decompiler", name)
}

func TestDetectFiles_MatchesInSubdirectory(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeManifest(t, fs, "acme-dir", "acme-decompiler")

	d := New(fs, "/plugins")
	name, err := d.DetectFiles([]string{"/plugins/acme-dir/lib/helper.py"})
	require.NoError(t, err)
	assert.Equal(t, "acme-decompiler", name)
}

func TestDetectFiles_SkipsFramesOutsidePluginsRoot(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeManifest(t, fs, "acme-dir", "acme-decompiler")

	d := New(fs, "/plugins")
	name, err := d.DetectFiles([]string{"/usr/lib/python3/os.py", "/plugins/acme-dir/p.py"})
	require.NoError(t, err)
	assert.Equal(t, "acme-decompiler", name)
}

func TestDetectFiles_NoMatchFails(t *testing.T) {
	fs := afero.NewMemMapFs()
	d := New(fs, "/plugins")
	_, err := d.DetectFiles([]string{"/usr/lib/python3/os.py"})
	assert.Equal(t, errs.KindNotInPluginContext, errs.KindOf(err))
}

func TestDetect_UsesLiveCallStack(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeManifest(t, fs, "acme-dir", "acme-decompiler")

	d := New(fs, "/plugins")
	_, err := d.Detect()
	assert.Equal(t, errs.KindNotInPluginContext, errs.KindOf(err))
}
