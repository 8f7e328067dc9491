package catalog

import (
	"encoding/json"
	"fmt"

	"github.com/benjaminabbitt/hostcli/internal/errs"
	"github.com/benjaminabbitt/hostcli/internal/manifest"
	"github.com/benjaminabbitt/hostcli/internal/platform"
	"github.com/benjaminabbitt/hostcli/internal/pluginversion"
)

// snapshotLocation is the wire form of a Location: platforms as a sorted
// array, the full manifest under "metadata".
type snapshotLocation struct {
	URL          string            `json:"url"`
	SHA256       string            `json:"sha256"`
	Name         string            `json:"name"`
	Version      string            `json:"version"`
	HostVersions string            `json:"hostVersions,omitempty"`
	Platforms    []string          `json:"platforms"`
	Metadata     manifest.Manifest `json:"metadata"`
}

// snapshotPlugin is the wire form of a Plugin: versions keyed by their
// normalized version string, each mapping to its locations.
type snapshotPlugin struct {
	Name     string                        `json:"name"`
	Versions map[string][]snapshotLocation `json:"versions"`
}

// MarshalSnapshot encodes plugins as the deterministic, canonical JSON
// snapshot format the remote catalog repository fetches and verifies:
// two-space indent, sorted map keys (Go's encoding/json already sorts
// map[string]... keys), platform sets as sorted arrays.
func MarshalSnapshot(plugins []*Plugin) ([]byte, error) {
	out := make([]snapshotPlugin, 0, len(plugins))
	for _, p := range plugins {
		sp := snapshotPlugin{Name: p.Name, Versions: make(map[string][]snapshotLocation, len(p.Groups))}
		for _, g := range p.Groups {
			locs := make([]snapshotLocation, 0, len(g.Locations))
			for _, l := range g.Locations {
				locs = append(locs, snapshotLocation{
					URL:          l.URL,
					SHA256:       l.SHA256,
					Name:         l.Name,
					Version:      l.Version.String(),
					HostVersions: l.HostVersions,
					Platforms:    sortedTagStrings(l.Platforms),
					Metadata:     l.Manifest,
				})
			}
			sp.Versions[g.Version.String()] = locs
		}
		out = append(out, sp)
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, errs.Wrap(errs.KindIO, "failed to encode catalog snapshot", err)
	}
	return data, nil
}

// UnmarshalSnapshot decodes a catalog snapshot previously produced by
// MarshalSnapshot back into Plugins, in deterministic order.
func UnmarshalSnapshot(data []byte) ([]*Plugin, error) {
	var raw []snapshotPlugin
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errs.Wrap(errs.KindValidation, "malformed catalog snapshot", err)
	}

	plugins := make([]*Plugin, 0, len(raw))
	for _, sp := range raw {
		plug := &Plugin{Name: sp.Name}
		for versionStr, locs := range sp.Versions {
			ver, err := pluginversion.Parse(versionStr)
			if err != nil {
				return nil, errs.Wrap(errs.KindValidation, fmt.Sprintf("snapshot has invalid version %q for plugin %q", versionStr, sp.Name), err)
			}
			group := VersionGroup{Version: ver}
			for _, l := range locs {
				locVer, err := pluginversion.Parse(l.Version)
				if err != nil {
					return nil, errs.Wrap(errs.KindValidation, fmt.Sprintf("snapshot location has invalid version %q", l.Version), err)
				}
				tags := make([]platform.Tag, 0, len(l.Platforms))
				for _, t := range l.Platforms {
					tags = append(tags, platform.Tag(t))
				}
				group.Locations = append(group.Locations, Location{
					URL:          l.URL,
					SHA256:       l.SHA256,
					Name:         l.Name,
					Version:      locVer,
					HostVersions: l.HostVersions,
					Platforms:    platform.NewSet(tags...),
					Manifest:     l.Metadata,
				})
			}
			plug.Groups = append(plug.Groups, group)
		}
		plugins = append(plugins, plug)
	}

	for _, plug := range plugins {
		sortGroupsAscending(plug)
	}
	SortPlugins(plugins)
	return plugins, nil
}

func sortedTagStrings(set platform.Set) []string {
	tags := set.Sorted()
	out := make([]string, len(tags))
	for i, t := range tags {
		out[i] = string(t)
	}
	return out
}

func sortGroupsAscending(p *Plugin) {
	for i := 1; i < len(p.Groups); i++ {
		for j := i; j > 0 && p.Groups[j].Version.Less(p.Groups[j-1].Version); j-- {
			p.Groups[j], p.Groups[j-1] = p.Groups[j-1], p.Groups[j]
		}
	}
}
