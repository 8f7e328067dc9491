package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/benjaminabbitt/hostcli/internal/archive"
	"github.com/benjaminabbitt/hostcli/internal/cliutil"
	"github.com/benjaminabbitt/hostcli/internal/dependencies"
	"github.com/benjaminabbitt/hostcli/internal/errs"
	"github.com/benjaminabbitt/hostcli/internal/installer"
	"github.com/benjaminabbitt/hostcli/internal/lockfile"
	"github.com/benjaminabbitt/hostcli/internal/manifest"
	"github.com/benjaminabbitt/hostcli/internal/pluginversion"
	"github.com/benjaminabbitt/hostcli/internal/session"
	"github.com/benjaminabbitt/hostcli/internal/settings"
)

func init() {
	rootCmd.AddCommand(installCmd)
	rootCmd.AddCommand(upgradeCmd)
	rootCmd.AddCommand(uninstallCmd)
	uninstallCmd.Flags().Bool("purge", false, "Also delete the plugin's stored settings")
	installCmd.Flags().StringArray("config", nil, "Plugin setting as key=value (repeatable)")
}

var installCmd = &cobra.Command{
	Use:   "install <name[specifier]>",
	Short: "Resolve, fetch, and install a plugin",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pairs, _ := cmd.Flags().GetStringArray("config")
		configs, err := parseConfigFlags(pairs)
		if err != nil {
			return err
		}
		return runInstall(currentSess, args[0], configs)
	},
}

var upgradeCmd = &cobra.Command{
	Use:   "upgrade <name[specifier]>",
	Short: "Upgrade an already-installed plugin to a newer compatible version",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runUpgrade(currentSess, args[0])
	},
}

var uninstallCmd = &cobra.Command{
	Use:   "uninstall <name>",
	Short: "Remove an installed plugin",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		purge, _ := cmd.Flags().GetBool("purge")
		return runUninstall(currentSess, args[0], purge)
	},
}

func runInstall(sess *session.Session, spec string, configs map[string]string) error {
	ctx := sess.Context()
	lock := lockfile.New(lockfile.ConfigLockPath(sess.HostUserDir))
	if err := lock.Acquire(ctx); err != nil {
		return err
	}
	defer lock.Release()

	loc, err := sess.Repository.Resolve(ctx, spec, sess.Platform, sess.HostVersion)
	if err != nil {
		return err
	}
	data, err := sess.Repository.FetchLocation(ctx, loc)
	if err != nil {
		return err
	}
	arc, err := archive.Open(data)
	if err != nil {
		return err
	}
	manifestDir, m, err := findManifestDir(arc, loc.Name, loc.Version)
	if err != nil {
		return err
	}

	inst := installer.New(fs, sess.PluginsDir)
	if err := inst.Install(ctx, m.Name, arc, manifestDir); err != nil {
		return err
	}

	if err := bootstrapSettings(sess, m, configs); err != nil {
		return err
	}
	if err := installDependencies(arc, manifestDir, m); err != nil {
		return err
	}

	out, err := cliutil.Render(cliutil.TemplateInstalled, map[string]interface{}{
		"name": m.Name, "version": m.Version,
	})
	if err != nil {
		return err
	}
	fmt.Println(out)
	return nil
}

// parseConfigFlags turns repeated "--config key=value" flags into a map,
// rejecting any entry that isn't of that shape.
func parseConfigFlags(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, errs.New(errs.KindValidation, "--config must be key=value, got: "+pair)
		}
		out[key] = value
	}
	return out, nil
}

func runUpgrade(sess *session.Session, spec string) error {
	ctx := sess.Context()
	lock := lockfile.New(lockfile.ConfigLockPath(sess.HostUserDir))
	if err := lock.Acquire(ctx); err != nil {
		return err
	}
	defer lock.Release()

	loc, err := sess.Repository.Resolve(ctx, spec, sess.Platform, sess.HostVersion)
	if err != nil {
		return err
	}

	inst := installer.New(fs, sess.PluginsDir)
	current, err := inst.LoadManifest(loc.Name)
	if err != nil {
		return err
	}
	currentVer, err := pluginversion.Parse(current.Version)
	if err != nil {
		return err
	}
	if loc.Version.Compare(currentVer) <= 0 {
		out, rerr := cliutil.Render(cliutil.TemplateDowngradeRejected, map[string]interface{}{
			"requested": loc.Version.String(), "installed": currentVer.String(),
		})
		if rerr != nil {
			return rerr
		}
		return errs.New(errs.KindDowngrade, out)
	}

	data, err := sess.Repository.FetchLocation(ctx, loc)
	if err != nil {
		return err
	}
	arc, err := archive.Open(data)
	if err != nil {
		return err
	}
	manifestDir, m, err := findManifestDir(arc, loc.Name, loc.Version)
	if err != nil {
		return err
	}

	if err := inst.Upgrade(ctx, m.Name, arc, manifestDir); err != nil {
		return err
	}
	if err := installDependencies(arc, manifestDir, m); err != nil {
		return err
	}

	out, err := cliutil.Render(cliutil.TemplateUpgraded, map[string]interface{}{
		"name": m.Name, "from": current.Version, "to": m.Version,
	})
	if err != nil {
		return err
	}
	fmt.Println(out)
	return nil
}

func runUninstall(sess *session.Session, name string, purge bool) error {
	ctx := sess.Context()
	lock := lockfile.New(lockfile.ConfigLockPath(sess.HostUserDir))
	if err := lock.Acquire(ctx); err != nil {
		return err
	}
	defer lock.Release()

	inst := installer.New(fs, sess.PluginsDir)
	if err := inst.Uninstall(name); err != nil {
		return err
	}
	if purge {
		store := settings.NewStore(fs, sess.HostUserDir)
		if err := store.DeleteAll(name); err != nil {
			return err
		}
	}

	out, err := cliutil.Render(cliutil.TemplateUninstalled, map[string]interface{}{"name": name})
	if err != nil {
		return err
	}
	fmt.Println(out)
	return nil
}

// installDependencies resolves a plugin's declared or inline dependency
// specifiers and drives the configured interpreter backend through a
// dry-run before a real install, per the dependency pipeline.
func installDependencies(arc *archive.Archive, manifestDir string, m *manifest.Manifest) error {
	var entrySource []byte
	if m.Dependencies.Inline {
		full := m.EntryPoint
		if manifestDir != "" {
			full = manifestDir + "/" + full
		}
		data, err := arc.ReadMember(full)
		if err != nil {
			return errs.Wrap(errs.KindValidation, "failed to read entry point for inline dependencies", err)
		}
		entrySource = data
	}

	specs, err := dependencies.Resolve(m, entrySource)
	if err != nil {
		return err
	}
	if len(specs) == 0 {
		return nil
	}

	backend := dependencies.GetBackend("pip")
	if backend == nil {
		return errs.New(errs.KindNoInterpreter, "no interpreter backend registered")
	}
	if err := backend.DryRun(specs); err != nil {
		return err
	}
	return backend.Install(specs)
}

// bootstrapSettings runs the first-install settings prompt policy,
// prompting interactively on a terminal or failing fast in non-interactive
// contexts when required settings have no default. configs carries any
// values supplied on the command line via --config, taking precedence
// over both prompting and defaults.
func bootstrapSettings(sess *session.Session, m *manifest.Manifest, configs map[string]string) error {
	if len(m.Settings) == 0 {
		return nil
	}
	store := settings.NewStore(fs, sess.HostUserDir)
	reader := bufio.NewReader(os.Stdin)
	prompt := func(d manifest.SettingDescriptor) (string, error) {
		label := d.Name
		if label == "" {
			label = d.Key
		}
		fmt.Printf("%s: ", label)
		line, err := reader.ReadString('\n')
		if err != nil {
			return "", errs.Wrap(errs.KindIO, "failed to read setting value", err)
		}
		return strings.TrimSpace(line), nil
	}
	return store.Bootstrap(m, m.Name, configs, sess.Interactive, prompt)
}
