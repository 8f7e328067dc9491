// Package installer implements the plugin install/upgrade/uninstall state
// machine: Absent -> Installed(enabled) <-> Installed(disabled), with
// atomic temp-dir-then-rename extraction and rollback on any partial
// failure.
package installer

import (
	"context"

	securejoin "github.com/cyphar/filepath-securejoin"
	"github.com/gofrs/uuid"
	"github.com/spf13/afero"
	"go.uber.org/multierr"

	"github.com/benjaminabbitt/hostcli/internal/archive"
	"github.com/benjaminabbitt/hostcli/internal/errs"
	"github.com/benjaminabbitt/hostcli/internal/manifest"
)

// disabledSentinel's presence inside an installed plugin's directory marks
// it disabled.
const disabledSentinel = ".disabled"

const manifestFileName = "plugin-manifest.json"

// Installer performs install/upgrade/uninstall/enable/disable against a
// plugins root directory.
type Installer struct {
	fs          afero.Fs
	pluginsRoot string
	newUUID     func() (string, error)
}

// New builds an Installer rooted at pluginsRoot.
func New(fs afero.Fs, pluginsRoot string) *Installer {
	return &Installer{fs: fs, pluginsRoot: pluginsRoot, newUUID: defaultUUID}
}

func defaultUUID() (string, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

func (i *Installer) pluginDir(name string) string {
	return i.pluginsRoot + "/" + name
}

// IsInstalled reports whether name has an on-disk plugin directory.
func (i *Installer) IsInstalled(name string) (bool, error) {
	exists, err := afero.DirExists(i.fs, i.pluginDir(name))
	if err != nil {
		return false, errs.Wrap(errs.KindIO, "failed to stat plugin directory", err)
	}
	return exists, nil
}

// IsEnabled reports whether an installed plugin lacks the disabled
// sentinel. Callers must check IsInstalled first.
func (i *Installer) IsEnabled(name string) (bool, error) {
	exists, err := afero.Exists(i.fs, i.pluginDir(name)+"/"+disabledSentinel)
	if err != nil {
		return false, errs.Wrap(errs.KindIO, "failed to stat disabled sentinel", err)
	}
	return !exists, nil
}

// GetPluginDirectory returns the on-disk directory for an installed plugin.
func (i *Installer) GetPluginDirectory(name string) string {
	return i.pluginDir(name)
}

// LoadManifest reads and parses the installed manifest for name.
func (i *Installer) LoadManifest(name string) (*manifest.Manifest, error) {
	data, err := afero.ReadFile(i.fs, i.pluginDir(name)+"/"+manifestFileName)
	if err != nil {
		return nil, errs.Wrap(errs.KindNotInstalled, "plugin not installed: "+name, err)
	}
	return manifest.Parse(data)
}

// ListInstalled returns the names of every installed plugin, in
// directory-walk order.
func (i *Installer) ListInstalled() ([]string, error) {
	exists, err := afero.DirExists(i.fs, i.pluginsRoot)
	if err != nil {
		return nil, errs.Wrap(errs.KindIO, "failed to stat plugins root", err)
	}
	if !exists {
		return nil, nil
	}
	entries, err := afero.ReadDir(i.fs, i.pluginsRoot)
	if err != nil {
		return nil, errs.Wrap(errs.KindIO, "failed to list plugins root", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// Install extracts arc's plugin rooted at manifestDir into the plugins
// root under name. Fails AlreadyInstalled if the directory already exists;
// replacing an installed plugin goes through Upgrade, which moves the old
// directory aside as a backup instead of uninstalling it.
func (i *Installer) Install(ctx context.Context, name string, arc *archive.Archive, manifestDir string) error {
	installed, err := i.IsInstalled(name)
	if err != nil {
		return err
	}
	if installed {
		return errs.New(errs.KindAlreadyInstalled, "plugin already installed: "+name)
	}
	return i.extractAtomically(ctx, name, arc, manifestDir)
}

// Upgrade replaces an already-installed plugin's files with arc's, keeping
// the enabled/disabled state and preserving the old directory until the
// new one is fully staged, so on-disk state remains unchanged if
// interrupted.
func (i *Installer) Upgrade(ctx context.Context, name string, arc *archive.Archive, manifestDir string) (err error) {
	installed, err := i.IsInstalled(name)
	if err != nil {
		return err
	}
	if !installed {
		return errs.New(errs.KindNotInstalled, "plugin not installed: "+name)
	}

	wasEnabled, err := i.IsEnabled(name)
	if err != nil {
		return err
	}

	backupDir, err := i.renameAside(name)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			err = multierr.Append(err, i.restoreBackup(backupDir, name))
			return
		}
		if removeErr := i.fs.RemoveAll(backupDir); removeErr != nil {
			err = multierr.Append(err, errs.Wrap(errs.KindIO, "failed to remove upgrade backup", removeErr))
		}
	}()

	if err = i.extractAtomically(ctx, name, arc, manifestDir); err != nil {
		return err
	}
	if !wasEnabled {
		if err = i.disableNoCheck(name); err != nil {
			return err
		}
	}
	return nil
}

// Uninstall removes an installed plugin's directory entirely. Settings are
// left untouched in config.json unless purge is requested; purge handling
// itself lives in the settings package, which the cmd layer calls
// alongside this.
func (i *Installer) Uninstall(name string) error {
	installed, err := i.IsInstalled(name)
	if err != nil {
		return err
	}
	if !installed {
		return errs.New(errs.KindNotInstalled, "plugin not installed: "+name)
	}
	if err := i.fs.RemoveAll(i.pluginDir(name)); err != nil {
		return errs.Wrap(errs.KindIO, "failed to remove plugin directory: "+name, err)
	}
	return nil
}

// Enable removes the disabled sentinel.
func (i *Installer) Enable(name string) error {
	installed, err := i.IsInstalled(name)
	if err != nil {
		return err
	}
	if !installed {
		return errs.New(errs.KindNotInstalled, "plugin not installed: "+name)
	}
	path := i.pluginDir(name) + "/" + disabledSentinel
	exists, err := afero.Exists(i.fs, path)
	if err != nil {
		return errs.Wrap(errs.KindIO, "failed to stat disabled sentinel", err)
	}
	if !exists {
		return nil
	}
	if err := i.fs.Remove(path); err != nil {
		return errs.Wrap(errs.KindIO, "failed to remove disabled sentinel", err)
	}
	return nil
}

// Disable writes the disabled sentinel.
func (i *Installer) Disable(name string) error {
	installed, err := i.IsInstalled(name)
	if err != nil {
		return err
	}
	if !installed {
		return errs.New(errs.KindNotInstalled, "plugin not installed: "+name)
	}
	return i.disableNoCheck(name)
}

func (i *Installer) disableNoCheck(name string) error {
	path := i.pluginDir(name) + "/" + disabledSentinel
	if err := afero.WriteFile(i.fs, path, nil, 0o644); err != nil {
		return errs.Wrap(errs.KindIO, "failed to write disabled sentinel", err)
	}
	return nil
}

func (i *Installer) renameAside(name string) (string, error) {
	id, err := i.newUUID()
	if err != nil {
		return "", errs.Wrap(errs.KindIO, "failed to generate backup directory name", err)
	}
	backupDir := i.pluginsRoot + "/." + name + ".upgrade-" + id
	if err := i.fs.Rename(i.pluginDir(name), backupDir); err != nil {
		return "", errs.Wrap(errs.KindIO, "failed to stage upgrade backup", err)
	}
	return backupDir, nil
}

func (i *Installer) restoreBackup(backupDir, name string) error {
	_ = i.fs.RemoveAll(i.pluginDir(name))
	if err := i.fs.Rename(backupDir, i.pluginDir(name)); err != nil {
		return errs.Wrap(errs.KindIO, "failed to roll back upgrade: manual recovery needed at "+backupDir, err)
	}
	return nil
}

// extractAtomically extracts arc's members under manifestDir into a fresh
// temp directory, verifies every extracted path stays within it using
// securejoin, then renames the temp directory into place.
func (i *Installer) extractAtomically(ctx context.Context, name string, arc *archive.Archive, manifestDir string) (err error) {
	id, err := i.newUUID()
	if err != nil {
		return errs.Wrap(errs.KindIO, "failed to generate staging directory name", err)
	}
	stagingDir := i.pluginsRoot + "/.staging-" + id

	defer func() {
		if err != nil {
			_ = i.fs.RemoveAll(stagingDir)
		}
	}()

	for _, member := range arc.Members() {
		if ctx.Err() != nil {
			return errs.Wrap(errs.KindInterrupted, "install interrupted", ctx.Err())
		}
		rel, ok := underManifestDir(member.Name, manifestDir)
		if !ok {
			continue
		}
		if member.Symlink {
			return errs.New(errs.KindValidation, "archive member is a symlink, rejected: "+member.Name)
		}

		destPath, err := securejoin.SecureJoin(stagingDir, rel)
		if err != nil {
			return errs.Wrap(errs.KindValidation, "archive member escapes plugin root: "+member.Name, err)
		}

		if member.IsDir {
			if err := i.fs.MkdirAll(destPath, 0o755); err != nil {
				return errs.Wrap(errs.KindIO, "failed to create directory: "+rel, err)
			}
			continue
		}

		data, err := arc.ReadMember(member.Name)
		if err != nil {
			return err
		}
		if err := i.fs.MkdirAll(parentDir(destPath), 0o755); err != nil {
			return errs.Wrap(errs.KindIO, "failed to create directory for: "+rel, err)
		}
		if err := afero.WriteFile(i.fs, destPath, data, 0o644); err != nil {
			return errs.Wrap(errs.KindIO, "failed to write extracted file: "+rel, err)
		}
	}

	if err := i.fs.Rename(stagingDir, i.pluginDir(name)); err != nil {
		return errs.Wrap(errs.KindIO, "failed to finalize plugin install", err)
	}
	return nil
}

// underManifestDir returns memberName relative to manifestDir if
// memberName lies under it (or manifestDir is "", meaning archive root).
func underManifestDir(memberName, manifestDir string) (string, bool) {
	if manifestDir == "" {
		return memberName, true
	}
	prefix := manifestDir + "/"
	if len(memberName) <= len(prefix) || memberName[:len(prefix)] != prefix {
		return "", false
	}
	return memberName[len(prefix):], true
}

func parentDir(p string) string {
	for i := len(p) - 1; i >= 0; i-- {
		if p[i] == '/' {
			return p[:i]
		}
	}
	return "."
}
