package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/benjaminabbitt/hostcli/internal/installer"
	"github.com/benjaminabbitt/hostcli/internal/pluginversion"
	"github.com/benjaminabbitt/hostcli/internal/session"
)

func init() {
	rootCmd.AddCommand(statusCmd)
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "List installed plugins and their enabled/disabled state",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStatus(currentSess)
	},
}

func runStatus(sess *session.Session) error {
	ctx := sess.Context()
	inst := installer.New(fs, sess.PluginsDir)
	names, err := inst.ListInstalled()
	if err != nil {
		return err
	}
	for _, name := range names {
		m, err := inst.LoadManifest(name)
		if err != nil {
			fmt.Printf("%s: (unreadable manifest: %v)\n", name, err)
			continue
		}
		enabled, err := inst.IsEnabled(name)
		if err != nil {
			return err
		}
		state := "enabled"
		if !enabled {
			state = "disabled"
		}
		fmt.Printf("%s %s [%s]\n", m.Name, m.Version, state)
		fmt.Printf("  %s\n", upgradeIndicator(ctx, sess, name, m.Version))
	}
	return nil
}

// upgradeIndicator resolves the plugin's name against the current
// repository, platform, and host version and compares the result against
// the installed version. Resolution failures (no repository configured,
// no compatible release reachable) are reported inline rather than
// failing the whole status listing.
func upgradeIndicator(ctx context.Context, sess *session.Session, name, installedVersion string) string {
	if sess.Repository == nil {
		return "upgrade status: no repository configured"
	}
	current, err := pluginversion.Parse(installedVersion)
	if err != nil {
		return fmt.Sprintf("upgrade status: unknown (%v)", err)
	}
	loc, err := sess.Repository.Resolve(ctx, name, sess.Platform, sess.HostVersion)
	if err != nil {
		return "up to date (no newer compatible release found)"
	}
	if loc.Version.Compare(current) > 0 {
		return fmt.Sprintf("upgrade available: %s", loc.Version)
	}
	return "up to date"
}
