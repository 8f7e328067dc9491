package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benjaminabbitt/hostcli/internal/catalog"
	"github.com/benjaminabbitt/hostcli/internal/errs"
	"github.com/benjaminabbitt/hostcli/internal/hostversion"
	"github.com/benjaminabbitt/hostcli/internal/platform"
	"github.com/benjaminabbitt/hostcli/internal/pluginversion"
)

func mustVersion(t *testing.T, s string) pluginversion.Version {
	t.Helper()
	v, err := pluginversion.Parse(s)
	require.NoError(t, err)
	return v
}

func mustHostVersion(t *testing.T, s string) hostversion.Version {
	t.Helper()
	v, err := hostversion.Parse(s)
	require.NoError(t, err)
	return v
}

func samplePlugins(t *testing.T) []*catalog.Plugin {
	return []*catalog.Plugin{
		{
			Name: "plugin1",
			Groups: []catalog.VersionGroup{
				{
					Version: mustVersion(t, "2.0.0"),
					Locations: []catalog.Location{
						{URL: "plugin1-2.0.0.zip", Version: mustVersion(t, "2.0.0"), HostVersions: "", Platforms: platform.NewSet(platform.All()...)},
					},
				},
				{
					Version: mustVersion(t, "5.0.0"),
					Locations: []catalog.Location{
						{URL: "plugin1-5.0.0.zip", Version: mustVersion(t, "5.0.0"), HostVersions: "", Platforms: platform.NewSet(platform.LinuxX86_64)},
					},
				},
			},
		},
	}
}

func TestParseSpec_NameOnlyDefaultsToMatchAll(t *testing.T) {
	name, spec, err := ParseSpec("plugin1")
	require.NoError(t, err)
	assert.Equal(t, "plugin1", name)
	assert.True(t, spec.Matches(mustVersion(t, "99.0.0")))
}

func TestParseSpec_NameWithVersionClause(t *testing.T) {
	name, spec, err := ParseSpec("plugin1==1.0.0")
	require.NoError(t, err)
	assert.Equal(t, "plugin1", name)
	assert.True(t, spec.Matches(mustVersion(t, "1.0.0")))
	assert.False(t, spec.Matches(mustVersion(t, "1.0.1")))
}

func TestResolve_NotFound(t *testing.T) {
	_, err := Resolve(samplePlugins(t), "missing", platform.LinuxX86_64, mustHostVersion(t, "9.0"))
	assert.Equal(t, errs.KindNotFound, errs.KindOf(err))
}

func TestResolve_Ambiguous(t *testing.T) {
	plugins := samplePlugins(t)
	plugins = append(plugins, &catalog.Plugin{Name: "Plugin1", Groups: plugins[0].Groups})
	_, err := Resolve(plugins, "plugin1", platform.LinuxX86_64, mustHostVersion(t, "9.0"))
	assert.Equal(t, errs.KindAmbiguous, errs.KindOf(err))
}

func TestResolve_CompatibilityFilterPicksLowerCompatibleVersion(t *testing.T) {
	loc, err := Resolve(samplePlugins(t), "plugin1", platform.WindowsX86_64, mustHostVersion(t, "9.0"))
	require.NoError(t, err)
	assert.Equal(t, "2.0.0", loc.Version.String())
}

func TestResolve_NoCompatiblePlatform(t *testing.T) {
	plugins := []*catalog.Plugin{
		{
			Name: "plugin1",
			Groups: []catalog.VersionGroup{
				{Version: mustVersion(t, "1.0.0"), Locations: []catalog.Location{
					{URL: "a.zip", Platforms: platform.NewSet(platform.LinuxX86_64)},
				}},
			},
		},
	}
	_, err := Resolve(plugins, "plugin1", platform.WindowsX86_64, mustHostVersion(t, "9.0"))
	assert.Equal(t, errs.KindNoCompatible, errs.KindOf(err))
}

func TestResolve_HostVersionSpecifierServicePackMatch(t *testing.T) {
	plugins := []*catalog.Plugin{
		{
			Name: "plugin1",
			Groups: []catalog.VersionGroup{
				{Version: mustVersion(t, "1.0.0"), Locations: []catalog.Location{
					{URL: "a.zip", HostVersions: "==9.1", Platforms: platform.NewSet(platform.All()...)},
				}},
			},
		},
	}
	_, err := Resolve(plugins, "plugin1", platform.LinuxX86_64, mustHostVersion(t, "9.1sp2"))
	assert.NoError(t, err)

	_, err = Resolve(plugins, "plugin1", platform.LinuxX86_64, mustHostVersion(t, "9.2"))
	assert.Equal(t, errs.KindNoCompatible, errs.KindOf(err))
}
