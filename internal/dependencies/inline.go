package dependencies

import (
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/benjaminabbitt/hostcli/internal/errs"
	"github.com/benjaminabbitt/hostcli/internal/manifest"
)

const (
	fenceStart = "# /// script"
	fenceEnd   = "# ///"
	fencePrefix = "# "
)

// inlineBlock is the shape of the TOML fence's body (PEP 723's "script"
// metadata format, reused here as the plugin entry-point's inline
// dependency declaration).
type inlineBlock struct {
	Dependencies []string `toml:"dependencies"`
}

// ExtractInline finds a "# /// script" ... "# ///" fenced TOML block at
// the top of entry-point source and returns its declared dependency
// specifiers. Returns nil, no error, if no fence is present.
func ExtractInline(source []byte) ([]string, error) {
	lines := strings.Split(string(source), "\n")

	start := -1
	for i, line := range lines {
		if strings.TrimRight(line, " \t\r") == fenceStart {
			start = i
			break
		}
	}
	if start == -1 {
		return nil, nil
	}

	var bodyLines []string
	end := -1
	for i := start + 1; i < len(lines); i++ {
		trimmed := strings.TrimRight(lines[i], " \t\r")
		if trimmed == fenceEnd {
			end = i
			break
		}
		if !strings.HasPrefix(lines[i], fencePrefix) {
			return nil, errs.New(errs.KindValidation, "inline dependency block line missing '# ' prefix")
		}
		bodyLines = append(bodyLines, strings.TrimPrefix(lines[i], fencePrefix))
	}
	if end == -1 {
		return nil, errs.New(errs.KindValidation, "inline dependency block has no closing '# ///'")
	}

	var block inlineBlock
	if _, err := toml.Decode(strings.Join(bodyLines, "\n"), &block); err != nil {
		return nil, errs.Wrap(errs.KindValidation, "malformed inline dependency block", err)
	}
	return block.Dependencies, nil
}

// Resolve returns the dependency specifiers an installed plugin should
// have installed: either the manifest's explicit list, or source extracted
// from its entry point when the manifest declares the "inline" token.
func Resolve(m *manifest.Manifest, entryPointSource []byte) ([]string, error) {
	if !m.Dependencies.Inline {
		return m.Dependencies.List, nil
	}
	return ExtractInline(entryPointSource)
}
