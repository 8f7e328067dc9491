package cmd

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/benjaminabbitt/hostcli/internal/installer"
	"github.com/benjaminabbitt/hostcli/internal/lockfile"
	"github.com/benjaminabbitt/hostcli/internal/manifest"
	"github.com/benjaminabbitt/hostcli/internal/session"
	"github.com/benjaminabbitt/hostcli/internal/settings"
)

func init() {
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configDeleteCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Get, set, list, or delete a plugin's settings",
}

var configGetCmd = &cobra.Command{
	Use:   "get <plugin> <key>",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := loadInstalledManifest(currentSess, args[0])
		if err != nil {
			return err
		}
		store := settings.NewStore(fs, currentSess.HostUserDir)
		value, err := store.Get(m, args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Println(formatSettingValue(value))
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <plugin> <key> <value>",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := loadInstalledManifest(currentSess, args[0])
		if err != nil {
			return err
		}
		lock := lockfile.New(lockfile.ConfigLockPath(currentSess.HostUserDir))
		if err := lock.Acquire(currentSess.Context()); err != nil {
			return err
		}
		defer lock.Release()

		store := settings.NewStore(fs, currentSess.HostUserDir)
		return store.Set(m, args[0], args[1], args[2])
	},
}

var configListCmd = &cobra.Command{
	Use:   "list <plugin>",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := loadInstalledManifest(currentSess, args[0])
		if err != nil {
			return err
		}
		store := settings.NewStore(fs, currentSess.HostUserDir)
		values, err := store.List(m, args[0])
		if err != nil {
			return err
		}
		keys := make([]string, 0, len(values))
		for k := range values {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Printf("%s = %s\n", k, formatSettingValue(values[k]))
		}
		return nil
	},
}

var configDeleteCmd = &cobra.Command{
	Use:   "del <plugin> <key>",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := loadInstalledManifest(currentSess, args[0])
		if err != nil {
			return err
		}
		lock := lockfile.New(lockfile.ConfigLockPath(currentSess.HostUserDir))
		if err := lock.Acquire(currentSess.Context()); err != nil {
			return err
		}
		defer lock.Release()

		store := settings.NewStore(fs, currentSess.HostUserDir)
		return store.Delete(m, args[0], args[1])
	},
}

func loadInstalledManifest(sess *session.Session, name string) (*manifest.Manifest, error) {
	inst := installer.New(fs, sess.PluginsDir)
	return inst.LoadManifest(name)
}

func formatSettingValue(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", t)
	}
}
