package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/benjaminabbitt/hostcli/internal/cliutil"
	"github.com/benjaminabbitt/hostcli/internal/installer"
	"github.com/benjaminabbitt/hostcli/internal/lockfile"
	"github.com/benjaminabbitt/hostcli/internal/session"
)

func init() {
	rootCmd.AddCommand(enableCmd)
	rootCmd.AddCommand(disableCmd)
}

var enableCmd = &cobra.Command{
	Use:   "enable <name>",
	Short: "Re-enable a disabled plugin",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runEnableDisable(currentSess, args[0], true)
	},
}

var disableCmd = &cobra.Command{
	Use:   "disable <name>",
	Short: "Disable an installed plugin without uninstalling it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runEnableDisable(currentSess, args[0], false)
	},
}

func runEnableDisable(sess *session.Session, name string, enable bool) error {
	ctx := sess.Context()
	lock := lockfile.New(lockfile.PluginLockPath(sess.PluginsDir, name))
	if err := lock.Acquire(ctx); err != nil {
		return err
	}
	defer lock.Release()

	inst := installer.New(fs, sess.PluginsDir)
	template := cliutil.TemplateDisabled
	if enable {
		template = cliutil.TemplateEnabled
		if err := inst.Enable(name); err != nil {
			return err
		}
	} else {
		if err := inst.Disable(name); err != nil {
			return err
		}
	}

	out, err := cliutil.Render(template, map[string]interface{}{"name": name})
	if err != nil {
		return err
	}
	fmt.Println(out)
	return nil
}
