package cmd

import (
	"path"

	"github.com/benjaminabbitt/hostcli/internal/archive"
	"github.com/benjaminabbitt/hostcli/internal/errs"
	"github.com/benjaminabbitt/hostcli/internal/manifest"
	"github.com/benjaminabbitt/hostcli/internal/pluginversion"
)

// findManifestDir re-scans a fetched archive for the plugin-manifest.json
// whose parsed name/version matches loc, returning the directory it lives
// in (possibly "") so the installer knows what to extract relative to.
func findManifestDir(arc *archive.Archive, name string, version pluginversion.Version) (string, *manifest.Manifest, error) {
	for _, member := range arc.Members() {
		if member.IsDir || member.Symlink {
			continue
		}
		if path.Base(member.Name) != "plugin-manifest.json" {
			continue
		}
		data, err := arc.ReadMember(member.Name)
		if err != nil {
			continue
		}
		m, err := manifest.Parse(data)
		if err != nil {
			continue
		}
		ver, err := pluginversion.Parse(m.Version)
		if err != nil {
			continue
		}
		if m.Name != name || !ver.Equal(version) {
			continue
		}
		dir := path.Dir(member.Name)
		if dir == "." {
			dir = ""
		}
		return dir, m, nil
	}
	return "", nil, errs.New(errs.KindValidation, "plugin manifest not found in archive for "+name)
}
