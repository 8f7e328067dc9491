// Package catalog implements the archive indexer, the resulting
// Plugin/PluginLocation catalog model, and its deterministic JSON
// snapshot codec.
package catalog

import (
	"sort"

	"github.com/benjaminabbitt/hostcli/internal/manifest"
	"github.com/benjaminabbitt/hostcli/internal/platform"
	"github.com/benjaminabbitt/hostcli/internal/pluginversion"
)

// Location is one concrete downloadable artifact backing a (name, version)
// pair. Frozen once constructed.
type Location struct {
	URL          string
	SHA256       string
	Name         string
	Version      pluginversion.Version
	HostVersions string // raw specifier string as declared in the manifest
	Platforms    platform.Set
	Manifest     manifest.Manifest
}

// VersionGroup is every Location backing one (name, version) pair,
// partitioned further by hostVersions/platforms as distinct Locations
// within the group.
type VersionGroup struct {
	Version   pluginversion.Version
	Locations []Location
}

// Plugin is one catalog entry: a display name and its versions, ordered
// ascending.
type Plugin struct {
	Name   string
	Groups []VersionGroup
}

// SortedVersionsDescending returns the plugin's VersionGroups in
// descending version order, the iteration order the resolver uses.
func (p *Plugin) SortedVersionsDescending() []VersionGroup {
	out := make([]VersionGroup, len(p.Groups))
	copy(out, p.Groups)
	sort.Slice(out, func(i, j int) bool { return out[j].Version.Less(out[i].Version) })
	return out
}

// SortPlugins sorts a slice of *Plugin by display name, the deterministic
// order listPlugins() must return.
func SortPlugins(plugins []*Plugin) {
	sort.Slice(plugins, func(i, j int) bool { return plugins[i].Name < plugins[j].Name })
}
