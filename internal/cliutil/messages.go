// Package cliutil renders the CLI's user-facing message templates with
// cbroglie/mustache, keeping wording centralized and testable instead of
// scattering fmt.Sprintf calls across cmd/.
package cliutil

import (
	"github.com/cbroglie/mustache"

	"github.com/benjaminabbitt/hostcli/internal/errs"
)

// Message templates, one per user-facing outcome the CLI reports. Kept
// as named constants so tests can assert against the template itself
// rather than a rendered string that might drift.
const (
	TemplateInstalled        = "Installed plugin: {{name}}=={{version}}"
	TemplateUpgraded         = "Upgraded plugin: {{name}} {{from}} -> {{to}}"
	TemplateUninstalled      = "Uninstalled plugin: {{name}}"
	TemplateEnabled          = "Enabled plugin: {{name}}"
	TemplateDisabled         = "Disabled plugin: {{name}}"
	TemplateDowngradeRejected = "upgrade rejected: requested version {{requested}} is not greater than installed version {{installed}}"
	TemplateMissingSettings  = "missing required settings: {{keys}}"
	TemplateUnknownSetting   = "unknown setting: {{key}}"
)

// Render renders a message template against a context map.
func Render(template string, ctx map[string]interface{}) (string, error) {
	out, err := mustache.Render(template, ctx)
	if err != nil {
		return "", errs.Wrap(errs.KindIO, "failed to render message template", err)
	}
	return out, nil
}
