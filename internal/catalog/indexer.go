package catalog

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/benjaminabbitt/hostcli/internal/archive"
	"github.com/benjaminabbitt/hostcli/internal/hostversion"
	"github.com/benjaminabbitt/hostcli/internal/manifest"
	"github.com/benjaminabbitt/hostcli/internal/platform"
	"github.com/benjaminabbitt/hostcli/internal/pluginversion"
)

// Blob is one fetched archive ready for indexing.
type Blob struct {
	URL  string
	Data []byte
}

// Warning reports a single archive or manifest that the indexer skipped.
// A validation error during ingestion is local: the one archive is
// skipped, catalog construction continues.
type Warning struct {
	URL string
	Err error
}

// Index ingests every blob, validates every plugin-manifest.json it finds,
// and returns the resulting Plugin catalog in deterministic order, plus
// any skipped-archive warnings.
func Index(blobs []Blob) ([]*Plugin, []Warning) {
	type key struct {
		name, version, hostVersions, platforms string
	}
	byName := make(map[string]*Plugin)
	locationsByKey := make(map[string][]Location)
	var keysByName = make(map[string]map[key]struct{})
	var warnings []Warning

	for _, b := range blobs {
		arc, err := archive.Open(b.Data)
		if err != nil {
			warnings = append(warnings, Warning{URL: b.URL, Err: err})
			continue
		}
		sha := arc.SHA256()

		for _, member := range arc.Members() {
			if member.IsDir || member.Symlink {
				continue
			}
			if path.Base(member.Name) != "plugin-manifest.json" {
				continue
			}
			dir := path.Dir(member.Name)
			if dir == "." {
				dir = ""
			}

			data, err := arc.ReadMember(member.Name)
			if err != nil {
				warnings = append(warnings, Warning{URL: b.URL, Err: err})
				continue
			}
			m, err := manifest.Parse(data)
			if err != nil {
				warnings = append(warnings, Warning{URL: b.URL, Err: err})
				continue
			}
			probe := func(name string) bool { return arc.Has(name) }
			if err := manifest.Validate(m, dir, probe); err != nil {
				warnings = append(warnings, Warning{URL: b.URL, Err: fmt.Errorf("%s: %w", member.Name, err)})
				continue
			}
			if m.HostVersions != "" {
				if _, err := hostversion.ParseManifestSpecifier(m.HostVersions); err != nil {
					warnings = append(warnings, Warning{URL: b.URL, Err: fmt.Errorf("%s: %w", member.Name, err)})
					continue
				}
			}
			ver, err := pluginversion.Parse(m.Version)
			if err != nil {
				warnings = append(warnings, Warning{URL: b.URL, Err: err})
				continue
			}
			plats, err := manifest.ResolvedPlatforms(m, dir, probe)
			if err != nil {
				warnings = append(warnings, Warning{URL: b.URL, Err: err})
				continue
			}

			loc := Location{
				URL:          b.URL,
				SHA256:       sha,
				Name:         m.Name,
				Version:      ver,
				HostVersions: m.HostVersions,
				Platforms:    plats,
				Manifest:     *m,
			}

			plug, ok := byName[m.Name]
			if !ok {
				plug = &Plugin{Name: m.Name}
				byName[m.Name] = plug
				keysByName[m.Name] = make(map[key]struct{})
			}
			k := key{name: m.Name, version: ver.String(), hostVersions: m.HostVersions, platforms: platformKey(plats)}
			keysByName[m.Name][k] = struct{}{}
			lk := fmt.Sprintf("%s\x00%s\x00%s\x00%s", k.name, k.version, k.hostVersions, k.platforms)
			locationsByKey[lk] = append(locationsByKey[lk], loc)
			_ = plug
		}
	}

	plugins := make([]*Plugin, 0, len(byName))
	for name, plug := range byName {
		versionSet := make(map[string]pluginversion.Version)
		for k := range keysByName[name] {
			ver, _ := pluginversion.Parse(k.version)
			versionSet[k.version] = ver
		}
		groupsByVersion := make(map[string][]Location)
		for k := range keysByName[name] {
			lk := fmt.Sprintf("%s\x00%s\x00%s\x00%s", k.name, k.version, k.hostVersions, k.platforms)
			locs := locationsByKey[lk]
			sort.Slice(locs, func(i, j int) bool { return locs[i].URL < locs[j].URL })
			groupsByVersion[k.version] = append(groupsByVersion[k.version], locs...)
		}

		versionStrings := make([]string, 0, len(versionSet))
		for vs := range versionSet {
			versionStrings = append(versionStrings, vs)
		}
		sort.Slice(versionStrings, func(i, j int) bool {
			return versionSet[versionStrings[i]].Less(versionSet[versionStrings[j]])
		})

		for _, vs := range versionStrings {
			locs := groupsByVersion[vs]
			sort.Slice(locs, func(i, j int) bool { return locs[i].URL < locs[j].URL })
			plug.Groups = append(plug.Groups, VersionGroup{Version: versionSet[vs], Locations: locs})
		}
		plugins = append(plugins, plug)
	}

	SortPlugins(plugins)
	return plugins, warnings
}

func platformKey(set platform.Set) string {
	tags := set.Sorted()
	strs := make([]string, len(tags))
	for i, t := range tags {
		strs[i] = string(t)
	}
	return strings.Join(strs, ",")
}
