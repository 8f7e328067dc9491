// Package manifest implements the PluginManifest schema, its validation
// rules, and entry-point-shape platform inference.
package manifest

import (
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"github.com/benjaminabbitt/hostcli/internal/errs"
	"github.com/benjaminabbitt/hostcli/internal/platform"
)

// SettingType enumerates the value kinds a SettingDescriptor may declare.
type SettingType string

const (
	SettingString SettingType = "string"
	SettingBool   SettingType = "bool"
	SettingInt    SettingType = "int"
	SettingEnum   SettingType = "enum"
)

// SettingDescriptor describes one configurable value a plugin exposes.
type SettingDescriptor struct {
	Key         string      `json:"key"`
	Type        SettingType `json:"type"`
	Required    bool        `json:"required"`
	Default     interface{} `json:"default,omitempty"`
	Name        string      `json:"name,omitempty"`
	Description string      `json:"description,omitempty"`
	Choices     []string    `json:"choices,omitempty"`
	Prompt      *bool       `json:"prompt,omitempty"` // nil => default true
}

// PromptEnabled returns the effective prompt flag, defaulting to true.
func (s SettingDescriptor) PromptEnabled() bool {
	if s.Prompt == nil {
		return true
	}
	return *s.Prompt
}

// Dependencies is either an explicit list of dependency specifiers or the
// literal token "inline", meaning they're parsed from a metadata block at
// the top of the entry-point source.
type Dependencies struct {
	Inline bool
	List   []string
}

func (d *Dependencies) UnmarshalJSON(data []byte) error {
	var asString string
	if err := json.Unmarshal(data, &asString); err == nil {
		if asString != "inline" {
			return fmt.Errorf("dependencies string must be the literal %q, got %q", "inline", asString)
		}
		d.Inline = true
		return nil
	}
	var asList []string
	if err := json.Unmarshal(data, &asList); err != nil {
		return fmt.Errorf("dependencies must be a list of specifiers or %q: %w", "inline", err)
	}
	d.List = asList
	return nil
}

func (d Dependencies) MarshalJSON() ([]byte, error) {
	if d.Inline {
		return json.Marshal("inline")
	}
	if d.List == nil {
		return json.Marshal([]string{})
	}
	return json.Marshal(d.List)
}

// knownFields lists the JSON keys Manifest decodes explicitly; anything
// else lands in Extras so unknown keys round-trip.
var knownFields = map[string]struct{}{
	"schemaVersion": {}, "name": {}, "version": {}, "entryPoint": {},
	"hostVersions": {}, "platforms": {}, "description": {}, "categories": {},
	"keywords": {}, "authors": {}, "maintainers": {}, "urls": {},
	"logoPath": {}, "dependencies": {}, "settings": {},
}

// Manifest is the decoded, not-yet-validated plugin-manifest.json.
type Manifest struct {
	SchemaVersion int                    `json:"schemaVersion"`
	Name          string                 `json:"name"`
	Version       string                 `json:"version"`
	EntryPoint    string                 `json:"entryPoint"`
	HostVersions  string                 `json:"hostVersions,omitempty"`
	Platforms     []string               `json:"platforms,omitempty"`
	Description   string                 `json:"description,omitempty"`
	Categories    []string               `json:"categories,omitempty"`
	Keywords      []string               `json:"keywords,omitempty"`
	Authors       []string               `json:"authors,omitempty"`
	Maintainers   []string               `json:"maintainers,omitempty"`
	URLs          map[string]string      `json:"urls,omitempty"`
	LogoPath      string                 `json:"logoPath,omitempty"`
	Dependencies  Dependencies           `json:"dependencies,omitempty"`
	Settings      []SettingDescriptor    `json:"settings,omitempty"`
	Extras        map[string]interface{} `json:"-"`
}

// Parse decodes raw JSON bytes into a Manifest, preserving unknown top-level
// keys in Extras.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, errs.Wrap(errs.KindValidation, "malformed plugin-manifest.json", err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errs.Wrap(errs.KindValidation, "malformed plugin-manifest.json", err)
	}
	extras := make(map[string]interface{})
	for k, v := range raw {
		if _, known := knownFields[k]; known {
			continue
		}
		var val interface{}
		if err := json.Unmarshal(v, &val); err != nil {
			continue
		}
		extras[k] = val
	}
	if len(extras) > 0 {
		m.Extras = extras
	}

	return &m, nil
}

// MarshalJSON re-serializes a Manifest including its Extras, so that
// Parse(Marshal(m)) == m.
func (m Manifest) MarshalJSON() ([]byte, error) {
	type alias Manifest
	base, err := json.Marshal(alias(m))
	if err != nil {
		return nil, err
	}
	if len(m.Extras) == 0 {
		return base, nil
	}

	var merged map[string]json.RawMessage
	if err := json.Unmarshal(base, &merged); err != nil {
		return nil, err
	}
	for k, v := range m.Extras {
		encoded, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		merged[k] = encoded
	}
	return json.Marshal(merged)
}

const maxNameLen = 128

func isValidNameChar(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') ||
		r == '_' || r == '-' || r == ' '
}

// ValidateName enforces the plugin name character class.
func ValidateName(name string) error {
	if name == "" || len(name) > maxNameLen {
		return errs.New(errs.KindValidation, fmt.Sprintf("plugin name must be 1 to %d characters", maxNameLen))
	}
	for _, r := range name {
		if !isValidNameChar(r) {
			return errs.New(errs.KindValidation, fmt.Sprintf("plugin name contains invalid character: %q", name))
		}
	}
	return nil
}

// isSafeRelativePath enforces: non-empty, ASCII, not absolute, no parent
// traversal component. Used for entryPoint and logoPath.
func isSafeRelativePath(p string) error {
	if p == "" {
		return errs.New(errs.KindValidation, "path must not be empty")
	}
	for _, r := range p {
		if r > 127 {
			return errs.New(errs.KindValidation, fmt.Sprintf("path is not ASCII: %q", p))
		}
	}
	if path.IsAbs(p) || strings.HasPrefix(p, "/") || strings.Contains(p, "\\") {
		return errs.New(errs.KindValidation, fmt.Sprintf("path must be relative: %q", p))
	}
	clean := path.Clean(p)
	for _, seg := range strings.Split(clean, "/") {
		if seg == ".." {
			return errs.New(errs.KindValidation, fmt.Sprintf("path must not traverse parents: %q", p))
		}
	}
	return nil
}

// ArchiveProbe lets Validate and platform inference check for member
// existence without depending on internal/archive directly (keeps this
// package import-light and independently testable).
type ArchiveProbe func(name string) bool

// Validate enforces the manifest's structural rules. dir is the manifest's directory
// within the archive (""  for the archive root); probe resolves paths
// relative to dir.
func Validate(m *Manifest, dir string, probe ArchiveProbe) error {
	if m.SchemaVersion != 1 {
		return errs.New(errs.KindValidation, fmt.Sprintf("unsupported schemaVersion: %d", m.SchemaVersion))
	}
	if err := ValidateName(m.Name); err != nil {
		return err
	}
	if err := isSafeRelativePath(m.EntryPoint); err != nil {
		return err
	}
	entryFull := joinArchivePath(dir, m.EntryPoint)
	if probe != nil && !probe(entryFull) {
		return errs.New(errs.KindValidation, fmt.Sprintf("entryPoint not found in archive: %s", entryFull))
	}
	if m.LogoPath != "" {
		if err := isSafeRelativePath(m.LogoPath); err != nil {
			return err
		}
		logoFull := joinArchivePath(dir, m.LogoPath)
		if probe != nil && !probe(logoFull) {
			return errs.New(errs.KindValidation, fmt.Sprintf("logoPath not found in archive: %s", logoFull))
		}
	}
	if m.HostVersions != "" {
		if _, err := parseHostVersionsForValidation(m.HostVersions); err != nil {
			return err
		}
	}
	for _, s := range m.Settings {
		if !s.PromptEnabled() && s.Required && s.Default == nil {
			return errs.New(errs.KindValidation,
				fmt.Sprintf("setting %q: prompt=false requires a default when required=true", s.Key))
		}
		switch s.Type {
		case SettingString, SettingBool, SettingInt, SettingEnum:
		default:
			return errs.New(errs.KindValidation, fmt.Sprintf("setting %q: unknown type %q", s.Key, s.Type))
		}
		if s.Type == SettingEnum && len(s.Choices) == 0 {
			return errs.New(errs.KindValidation, fmt.Sprintf("setting %q: enum type requires choices", s.Key))
		}
	}
	return nil
}

func joinArchivePath(dir, rel string) string {
	if dir == "" {
		return path.Clean(rel)
	}
	return path.Clean(dir + "/" + rel)
}

// parseHostVersionsForValidation is a narrow indirection so this package
// doesn't need to import internal/hostversion just to bounce a string
// through it during validation; internal/catalog calls the real parser and
// reuses its error. Kept here only to fail fast on obviously malformed
// specifiers (non-empty, has at least one recognized operator prefix).
func parseHostVersionsForValidation(spec string) (string, error) {
	ops := []string{">=", "<=", "==", "!=", ">", "<"}
	for _, term := range strings.Split(spec, ",") {
		term = strings.TrimSpace(term)
		if term == "" {
			continue
		}
		ok := false
		for _, op := range ops {
			if strings.HasPrefix(term, op) {
				ok = true
				break
			}
		}
		if !ok {
			return "", errs.New(errs.KindValidation, fmt.Sprintf("invalid hostVersions specifier: %q", spec))
		}
	}
	return spec, nil
}

// InferPlatforms infers supported platforms from the entry point's file
// shape. dir is the manifest's directory within the archive; probe tests whether a
// given archive-relative path exists.
func InferPlatforms(entryPoint, dir string, probe ArchiveProbe) (platform.Set, error) {
	if strings.HasSuffix(entryPoint, ".py") {
		return platform.NewSet(platform.All()...), nil
	}
	if strings.HasSuffix(entryPoint, ".so") {
		return platform.NewSet(platform.LinuxX86_64), nil
	}
	if strings.HasSuffix(entryPoint, ".dll") {
		return platform.NewSet(platform.WindowsX86_64), nil
	}
	if strings.HasSuffix(entryPoint, ".dylib") {
		return platform.NewSet(platform.MacOSX86_64, platform.MacOSAarch64), nil
	}

	// Bare entry-point name: probe for sibling binaries.
	result := platform.Set{}
	base := joinArchivePath(dir, entryPoint)
	candidates := []struct {
		suffix string
		tags   []platform.Tag
	}{
		{".so", []platform.Tag{platform.LinuxX86_64}},
		{".dll", []platform.Tag{platform.WindowsX86_64}},
		{"_x86_64.dylib", []platform.Tag{platform.MacOSX86_64}},
		{"_aarch64.dylib", []platform.Tag{platform.MacOSAarch64}},
		{".dylib", []platform.Tag{platform.MacOSX86_64, platform.MacOSAarch64}},
	}
	for _, c := range candidates {
		if probe != nil && probe(base+c.suffix) {
			result = result.Union(platform.NewSet(c.tags...))
		}
	}
	if result.Empty() {
		return nil, errs.New(errs.KindValidation,
			fmt.Sprintf("no platform-specific binary found for bare entry point: %s", entryPoint))
	}
	return result, nil
}

// ResolvedPlatforms returns m.Platforms if explicitly declared (validated
// against the known tag set), otherwise infers them from the entry point.
func ResolvedPlatforms(m *Manifest, dir string, probe ArchiveProbe) (platform.Set, error) {
	if len(m.Platforms) > 0 {
		set := platform.Set{}
		for _, p := range m.Platforms {
			tag := platform.Tag(p)
			if !platform.Valid(tag) {
				return nil, errs.New(errs.KindValidation, fmt.Sprintf("unknown platform tag: %q", p))
			}
			set[tag] = struct{}{}
		}
		if set.Empty() {
			return nil, errs.New(errs.KindValidation, "platforms must be non-empty when declared")
		}
		return set, nil
	}
	return InferPlatforms(m.EntryPoint, dir, probe)
}
