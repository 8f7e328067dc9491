package repository

import (
	"archive/zip"
	"bytes"
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benjaminabbitt/hostcli/internal/platform"
)

func buildZip(t *testing.T, files map[string]string) []byte {
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
	return buf.Bytes()
}

func TestFilesystem_ListAndResolve(t *testing.T) {
	afs := afero.NewMemMapFs()
	blob := buildZip(t, map[string]string{
		"plugin-manifest.json": `{"schemaVersion":1,"name":"plugin1","version":"1.0.0","entryPoint":"plugin1.py"}`,
		"plugin1.py":           "print()",
	})
	require.NoError(t, afero.WriteFile(afs, "/repo/plugin1-v1.0.0.zip", blob, 0o644))

	repo := NewFilesystem(afs, "/repo")
	plugins, err := repo.ListPlugins(context.Background())
	require.NoError(t, err)
	require.Len(t, plugins, 1)
	assert.Equal(t, "plugin1", plugins[0].Name)

	loc, err := repo.Resolve(context.Background(), "plugin1", platform.LinuxX86_64, mustHostVersion(t, "9.0"))
	require.NoError(t, err)

	fetched, err := repo.FetchLocation(context.Background(), loc)
	require.NoError(t, err)
	assert.Equal(t, blob, fetched)
}

func TestFilesystem_IgnoresNonArchiveFiles(t *testing.T) {
	afs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(afs, "/repo/readme.txt", []byte("hi"), 0o644))

	repo := NewFilesystem(afs, "/repo")
	plugins, err := repo.ListPlugins(context.Background())
	require.NoError(t, err)
	assert.Empty(t, plugins)
}
