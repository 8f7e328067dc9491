package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/benjaminabbitt/hostcli/internal/catalog"
	"github.com/benjaminabbitt/hostcli/internal/hostversion"
	"github.com/benjaminabbitt/hostcli/internal/session"
)

func init() {
	rootCmd.AddCommand(searchCmd)
}

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "List plugins available in the configured repository",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var query string
		if len(args) == 1 {
			query = args[0]
		}
		return runSearch(currentSess, query)
	},
}

func runSearch(sess *session.Session, query string) error {
	plugins, err := sess.Repository.ListPlugins(sess.Context())
	if err != nil {
		return err
	}
	query = strings.ToLower(query)
	for _, p := range plugins {
		if query != "" && !strings.Contains(strings.ToLower(p.Name), query) {
			continue
		}
		fmt.Println(formatPluginLine(p, sess))
	}
	return nil
}

// formatPluginLine reports the latest version and whether any location
// backing it is compatible with the session's current platform and host
// version, so a user can tell at a glance whether "latest" is actually
// installable without running resolve.
func formatPluginLine(p *catalog.Plugin, sess *session.Session) string {
	groups := p.SortedVersionsDescending()
	if len(groups) == 0 {
		return p.Name
	}
	latest := groups[0]
	compatible := false
	for _, loc := range latest.Locations {
		if !loc.Platforms.Contains(sess.Platform) {
			continue
		}
		hostSpec, err := hostversion.ParseSpecifier(loc.HostVersions)
		if err != nil {
			continue
		}
		if hostSpec.Matches(sess.HostVersion) {
			compatible = true
			break
		}
	}
	status := "incompatible"
	if compatible {
		status = "compatible"
	}
	return fmt.Sprintf("%s (latest %s, %d version(s), %s with current host)", p.Name, latest.Version.String(), len(groups), status)
}
