// Package repository implements the Repository abstraction: a sum type
// of Filesystem and RemoteCatalog backends behind one interface, and the
// version resolution algorithm shared by both.
package repository

import (
	"context"
	"strings"

	"github.com/benjaminabbitt/hostcli/internal/catalog"
	"github.com/benjaminabbitt/hostcli/internal/errs"
	"github.com/benjaminabbitt/hostcli/internal/hostversion"
	"github.com/benjaminabbitt/hostcli/internal/platform"
	"github.com/benjaminabbitt/hostcli/internal/pluginversion"
)

// Repository is the single trait both backends satisfy.
type Repository interface {
	// ListPlugins returns every known Plugin, ordered by name.
	ListPlugins(ctx context.Context) ([]*catalog.Plugin, error)

	// Resolve finds the Location a spec string resolves to for the given
	// current platform/host version.
	Resolve(ctx context.Context, spec string, currentPlatform platform.Tag, currentHostVersion hostversion.Version) (catalog.Location, error)

	// FetchLocation retrieves the archive bytes a Location points at.
	FetchLocation(ctx context.Context, loc catalog.Location) ([]byte, error)
}

// ParseSpec splits a resolve() argument into a name and plugin-version
// specifier. An absent specifier defaults to ">=0" (matches every version).
func ParseSpec(spec string) (name string, versionSpec pluginversion.Specifier, err error) {
	name, rawSpec := splitNameAndSpecifier(spec)
	if name == "" {
		return "", pluginversion.Specifier{}, errs.New(errs.KindValidation, "plugin spec must not be empty")
	}
	if rawSpec == "" {
		rawSpec = ">=0"
	}
	versionSpec, err = pluginversion.ParseSpecifier(rawSpec)
	if err != nil {
		return "", pluginversion.Specifier{}, err
	}
	return name, versionSpec, nil
}

// splitNameAndSpecifier recognizes the leading name portion of a spec
// string: a run of characters valid in a plugin name, followed optionally
// by a version-specifier clause list starting with one of the six
// comparison operators.
func splitNameAndSpecifier(spec string) (name, rest string) {
	spec = strings.TrimSpace(spec)
	ops := []string{">=", "<=", "==", "!=", ">", "<"}
	cut := len(spec)
	for i := range spec {
		for _, op := range ops {
			if strings.HasPrefix(spec[i:], op) {
				if i < cut {
					cut = i
				}
			}
		}
	}
	return strings.TrimSpace(spec[:cut]), strings.TrimSpace(spec[cut:])
}

// Resolve implements the version/platform/host-version resolution
// algorithm against an already-loaded plugin list, shared by both backends.
func Resolve(plugins []*catalog.Plugin, spec string, currentPlatform platform.Tag, currentHostVersion hostversion.Version) (catalog.Location, error) {
	name, versionSpec, err := ParseSpec(spec)
	if err != nil {
		return catalog.Location{}, err
	}

	var matches []*catalog.Plugin
	for _, p := range plugins {
		if strings.EqualFold(p.Name, name) {
			matches = append(matches, p)
		}
	}
	if len(matches) == 0 {
		return catalog.Location{}, errs.New(errs.KindNotFound, "plugin not found: "+name)
	}

	distinctNames := make(map[string]struct{}, len(matches))
	for _, p := range matches {
		distinctNames[p.Name] = struct{}{}
	}
	if len(distinctNames) > 1 {
		return catalog.Location{}, errs.New(errs.KindAmbiguous, "plugin name matches multiple case variants: "+name)
	}

	plugin := matches[0]
	for _, group := range plugin.SortedVersionsDescending() {
		if !versionSpec.Matches(group.Version) {
			continue
		}
		for _, loc := range group.Locations {
			if !loc.Platforms.Contains(currentPlatform) {
				continue
			}
			hostSpec, err := hostversion.ParseSpecifier(loc.HostVersions)
			if err != nil {
				continue
			}
			if hostSpec.Matches(currentHostVersion) {
				return loc, nil
			}
		}
	}
	return catalog.Location{}, errs.New(errs.KindNoCompatible, "no location compatible with current platform/host version: "+name)
}
