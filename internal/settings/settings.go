// Package settings implements the per-plugin settings engine: a single
// JSON config file keyed by plugins.<name>.settings.<key>, with typed
// validation and a prompt-policy bootstrap for first install.
package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/afero"

	"github.com/benjaminabbitt/hostcli/internal/cliutil"
	"github.com/benjaminabbitt/hostcli/internal/errs"
	"github.com/benjaminabbitt/hostcli/internal/manifest"
)

// unknownSettingMsg and missingSettingsMsg render through the same
// template set cmd/ uses for success messages, so error wording for a
// setting key stays consistent with everything else the CLI prints.
func unknownSettingMsg(key string) string {
	out, err := cliutil.Render(cliutil.TemplateUnknownSetting, map[string]interface{}{"key": key})
	if err != nil {
		return "unknown setting: " + key
	}
	return out
}

func missingSettingsMsg(keys []string) string {
	out, err := cliutil.Render(cliutil.TemplateMissingSettings, map[string]interface{}{"keys": fmt.Sprint(keys)})
	if err != nil {
		return fmt.Sprintf("missing required settings: %v", keys)
	}
	return out
}

// configDoc is the on-disk shape of config.json, enough of it to reach
// plugins.<name>.settings.<key>. Unknown sections are preserved via Extra
// so this package doesn't have to own the whole config.json schema.
type configDoc struct {
	Plugins map[string]pluginSection `json:"plugins"`
	Extra   map[string]json.RawMessage `json:"-"`
}

type pluginSection struct {
	Settings map[string]interface{} `json:"settings"`
}

func (c *configDoc) UnmarshalJSON(data []byte) error {
	type alias configDoc
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*c = configDoc(a)

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	c.Extra = make(map[string]json.RawMessage)
	for k, v := range raw {
		if k != "plugins" {
			c.Extra[k] = v
		}
	}
	return nil
}

func (c configDoc) MarshalJSON() ([]byte, error) {
	merged := make(map[string]json.RawMessage, len(c.Extra)+1)
	for k, v := range c.Extra {
		merged[k] = v
	}
	pluginsJSON, err := json.Marshal(c.Plugins)
	if err != nil {
		return nil, err
	}
	merged["plugins"] = pluginsJSON
	return json.Marshal(merged)
}

// Store reads and writes one host user directory's config.json.
type Store struct {
	fs   afero.Fs
	path string
}

// NewStore opens a Store backed by <hostUserDir>/config.json.
func NewStore(fs afero.Fs, hostUserDir string) *Store {
	return &Store{fs: fs, path: hostUserDir + "/config.json"}
}

func (s *Store) read() (configDoc, error) {
	var doc configDoc
	doc.Plugins = map[string]pluginSection{}
	data, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return doc, nil
		}
		return doc, errs.Wrap(errs.KindIO, "failed to read config.json", err)
	}
	if len(data) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return doc, errs.Wrap(errs.KindIO, "malformed config.json", err)
	}
	if doc.Plugins == nil {
		doc.Plugins = map[string]pluginSection{}
	}
	return doc, nil
}

func (s *Store) write(doc configDoc) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return errs.Wrap(errs.KindIO, "failed to encode config.json", err)
	}
	if err := afero.WriteFile(s.fs, s.path, data, 0o644); err != nil {
		return errs.Wrap(errs.KindIO, "failed to write config.json", err)
	}
	return nil
}

func findDescriptor(m *manifest.Manifest, key string) (manifest.SettingDescriptor, bool) {
	for _, d := range m.Settings {
		if d.Key == key {
			return d, true
		}
	}
	return manifest.SettingDescriptor{}, false
}

// coerce converts a raw JSON-decoded value (string/float64/bool from
// json.Unmarshal, or a CLI-supplied string) to the descriptor's declared
// type.
func coerce(d manifest.SettingDescriptor, value interface{}) (interface{}, error) {
	switch d.Type {
	case manifest.SettingString:
		s, ok := value.(string)
		if !ok {
			return nil, errs.New(errs.KindSettingInvalid, fmt.Sprintf("setting %q must be a string", d.Key))
		}
		if s == "" && d.Required {
			return nil, errs.New(errs.KindSettingInvalid, fmt.Sprintf("setting %q must not be empty", d.Key))
		}
		return s, nil
	case manifest.SettingBool:
		switch v := value.(type) {
		case bool:
			return v, nil
		case string:
			b, err := strconv.ParseBool(v)
			if err != nil {
				return nil, errs.New(errs.KindSettingInvalid, fmt.Sprintf("setting %q must be a bool", d.Key))
			}
			return b, nil
		default:
			return nil, errs.New(errs.KindSettingInvalid, fmt.Sprintf("setting %q must be a bool", d.Key))
		}
	case manifest.SettingInt:
		switch v := value.(type) {
		case float64:
			return int(v), nil
		case int:
			return v, nil
		case string:
			n, err := strconv.Atoi(v)
			if err != nil {
				return nil, errs.New(errs.KindSettingInvalid, fmt.Sprintf("setting %q must be an integer", d.Key))
			}
			return n, nil
		default:
			return nil, errs.New(errs.KindSettingInvalid, fmt.Sprintf("setting %q must be an integer", d.Key))
		}
	case manifest.SettingEnum:
		s, ok := value.(string)
		if !ok {
			return nil, errs.New(errs.KindSettingInvalid, fmt.Sprintf("setting %q must be a string", d.Key))
		}
		for _, choice := range d.Choices {
			if choice == s {
				return s, nil
			}
		}
		return nil, errs.New(errs.KindSettingInvalid, fmt.Sprintf("setting %q: %q is not one of %v", d.Key, s, d.Choices))
	default:
		return nil, errs.New(errs.KindSettingInvalid, fmt.Sprintf("setting %q has unknown type %q", d.Key, d.Type))
	}
}

// Get returns a plugin's stored value for key, falling back to the
// manifest default, or errs.KindSettingMissing if neither exists.
func (s *Store) Get(m *manifest.Manifest, pluginName, key string) (interface{}, error) {
	desc, ok := findDescriptor(m, key)
	if !ok {
		return nil, errs.New(errs.KindSettingInvalid, unknownSettingMsg(key))
	}

	doc, err := s.read()
	if err != nil {
		return nil, err
	}
	if section, ok := doc.Plugins[pluginName]; ok {
		if v, ok := section.Settings[key]; ok {
			return v, nil
		}
	}
	if desc.Default != nil {
		return desc.Default, nil
	}
	return nil, errs.New(errs.KindSettingMissing, "setting has no value and no default: "+key)
}

// List returns every declared setting's effective value for a plugin
// (stored value, else default, else nil).
func (s *Store) List(m *manifest.Manifest, pluginName string) (map[string]interface{}, error) {
	doc, err := s.read()
	if err != nil {
		return nil, err
	}
	section := doc.Plugins[pluginName]

	out := make(map[string]interface{}, len(m.Settings))
	for _, d := range m.Settings {
		if v, ok := section.Settings[d.Key]; ok {
			out[d.Key] = v
			continue
		}
		out[d.Key] = d.Default
	}
	return out, nil
}

// Set validates and writes key=value for a plugin.
func (s *Store) Set(m *manifest.Manifest, pluginName, key string, value interface{}) error {
	desc, ok := findDescriptor(m, key)
	if !ok {
		return errs.New(errs.KindSettingInvalid, unknownSettingMsg(key))
	}
	coerced, err := coerce(desc, value)
	if err != nil {
		return err
	}

	doc, err := s.read()
	if err != nil {
		return err
	}
	section := doc.Plugins[pluginName]
	if section.Settings == nil {
		section.Settings = map[string]interface{}{}
	}
	section.Settings[key] = coerced
	doc.Plugins[pluginName] = section
	return s.write(doc)
}

// Delete removes a plugin's stored value for key. Refused when the
// setting is required and has no default.
func (s *Store) Delete(m *manifest.Manifest, pluginName, key string) error {
	desc, ok := findDescriptor(m, key)
	if !ok {
		return errs.New(errs.KindSettingInvalid, unknownSettingMsg(key))
	}
	if desc.Required && desc.Default == nil {
		return errs.New(errs.KindSettingUndeletable, "setting is required with no default: "+key)
	}

	doc, err := s.read()
	if err != nil {
		return err
	}
	section, ok := doc.Plugins[pluginName]
	if !ok || section.Settings == nil {
		return nil
	}
	delete(section.Settings, key)
	doc.Plugins[pluginName] = section
	return s.write(doc)
}

// DeleteAll removes every stored setting for a plugin, used by uninstall
// --purge.
func (s *Store) DeleteAll(pluginName string) error {
	doc, err := s.read()
	if err != nil {
		return err
	}
	delete(doc.Plugins, pluginName)
	return s.write(doc)
}

// Bootstrap applies the first-install prompt policy: for
// each declared setting, use the supplied value if present, else the
// default if prompt is disabled, else prompt via promptFn. interactive
// false with a required, prompt-enabled setting that has no default and no
// supplied value fails before any value is written.
func (s *Store) Bootstrap(m *manifest.Manifest, pluginName string, supplied map[string]string, interactive bool, promptFn func(d manifest.SettingDescriptor) (string, error)) error {
	for key := range supplied {
		if _, known := findDescriptor(m, key); !known {
			return errs.New(errs.KindSettingInvalid, unknownSettingMsg(key))
		}
	}

	var missing []string
	resolved := make(map[string]interface{}, len(m.Settings))

	for _, d := range m.Settings {
		if v, ok := supplied[d.Key]; ok {
			resolved[d.Key] = v
			continue
		}
		if !d.PromptEnabled() {
			if d.Default != nil {
				resolved[d.Key] = d.Default
			}
			continue
		}
		if !interactive {
			if d.Required && d.Default == nil {
				missing = append(missing, d.Key)
			}
			continue
		}
		value, err := promptFn(d)
		if err != nil {
			return err
		}
		resolved[d.Key] = value
	}

	if len(missing) > 0 {
		return errs.New(errs.KindSettingMissing, missingSettingsMsg(missing))
	}

	for key, value := range resolved {
		if err := s.Set(m, pluginName, key, value); err != nil {
			return err
		}
	}
	return nil
}
