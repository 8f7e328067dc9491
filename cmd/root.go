package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/benjaminabbitt/hostcli/internal/cliconfig"
	"github.com/benjaminabbitt/hostcli/internal/dependencies"
	"github.com/benjaminabbitt/hostcli/internal/errs"
	"github.com/benjaminabbitt/hostcli/internal/hostversion"
	"github.com/benjaminabbitt/hostcli/internal/logging"
	"github.com/benjaminabbitt/hostcli/internal/platform"
	"github.com/benjaminabbitt/hostcli/internal/repository"
	"github.com/benjaminabbitt/hostcli/internal/session"
)

var (
	logOutput      string
	repoFlag       string
	nonInteractive bool
	appVersion     = "dev"
	fs             = afero.NewOsFs()
	currentSess    *session.Session
	rootCtx        context.Context
)

// SetApplicationVersion lets main record the linker-supplied version.
func SetApplicationVersion(v string) {
	appVersion = v
}

var rootCmd = &cobra.Command{
	Use:   "hostcli",
	Short: "Manage plugins for a reverse-engineering host tool",
	Long: `hostcli installs, upgrades, and manages plugins for a host
reverse-engineering tool: resolving compatible versions against the
current platform and host-tool version, extracting archives safely, and
driving an external interpreter's dependency installation.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cm := cliconfig.NewConfigManager(fs)
		cfg, err := cm.ReadConfig()
		if err != nil {
			return err
		}
		if !cmd.PersistentFlags().Changed("log-format") {
			logOutput = cfg.Logging.Output
		}
		if cmd.PersistentFlags().Changed("non-interactive") {
			cfg.Interactive = !nonInteractive
		}
		if err := logging.InitLogger(logOutput); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
			return err
		}

		sess, err := buildSession(cfg)
		if err != nil {
			return err
		}
		currentSess = sess
		return nil
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func hostUserDir() string {
	if dir := os.Getenv("HOST_USER_DIR"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".hostcli"
	}
	return home + "/.hostcli"
}

func cacheDir(cfg *cliconfig.Config) string {
	if dir := os.Getenv("CACHE_DIR"); dir != "" {
		return dir
	}
	if cfg.CacheDir != "" {
		return cfg.CacheDir
	}
	return hostUserDir() + "/cache"
}

func currentPlatform() (platform.Tag, error) {
	if override := os.Getenv("HOST_PLATFORM"); override != "" {
		tag := platform.Tag(override)
		if !platform.Valid(tag) {
			return "", errs.New(errs.KindValidation, "invalid HOST_PLATFORM override: "+override)
		}
		return tag, nil
	}
	tag, ok := platform.Current()
	if !ok {
		return "", errs.New(errs.KindValidation, "unable to detect current platform")
	}
	return tag, nil
}

func currentHostVersion() (hostversion.Version, error) {
	raw := os.Getenv("HOST_VERSION")
	if raw == "" {
		return hostversion.Version{}, errs.New(errs.KindValidation, "HOST_VERSION must be set (no host tool auto-detection in this environment)")
	}
	return hostversion.Parse(raw)
}

func buildSession(cfg *cliconfig.Config) (*session.Session, error) {
	userDir := hostUserDir()
	cache := cacheDir(cfg)
	pluginsDir := userDir + "/plugins"

	plat, err := currentPlatform()
	if err != nil {
		return nil, err
	}
	hostVer, err := currentHostVersion()
	if err != nil {
		// Several subcommands (lint, config CRUD) never need a host
		// version; callers that do will fail resolution explicitly.
		hostVer = hostversion.Version{}
	}

	repoSource := repoFlag
	if repoSource == "" {
		repoSource = os.Getenv("CATALOG_URL")
	}
	if repoSource == "" {
		repoSource = cfg.CatalogURL
	}

	var repo repository.Repository
	if repoSource == "" || repoSource == "default" {
		repo = repository.NewRemoteCatalog(fs, defaultFetcher, cfg.CatalogURL, cache+"/catalog/default.json", 24*time.Hour, nil)
	} else if isDir, _ := afero.DirExists(fs, repoSource); isDir {
		repo = repository.NewFilesystem(fs, repoSource)
	} else {
		repo = repository.NewRemoteCatalog(fs, defaultFetcher, repoSource, cache+"/catalog/source.json", 24*time.Hour, nil)
	}

	interpreterPath := os.Getenv("HOST_INTERPRETER_PATH")
	if interpreterPath == "" {
		interpreterPath = cfg.InterpreterPath
	}
	dependencies.RegisterBackend(dependencies.NewPipBackend(interpreterPath))

	return &session.Session{
		Repository:  repo,
		Platform:    plat,
		HostVersion: hostVer,
		Interactive: cfg.Interactive,
		Logger:      logging.GetSugaredLogger(),
		HostUserDir: userDir,
		CacheDir:    cache,
		PluginsDir:  pluginsDir,
		Ctx:         rootCtx,
	}, nil
}

// Execute adds all child commands to the root command and sets flags
// appropriately, mapping any returned error to its process exit code.
// The session's context is canceled on SIGINT so an in-flight lock
// acquisition or extraction observes interruption rather than leaving the
// process to be killed with on-disk state half-written.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	rootCtx = ctx

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	code := errs.ExitCode(err)
	if code != 0 {
		os.Exit(code)
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logOutput, "log-format", "console", "Log output format (console, json, development)")
	rootCmd.PersistentFlags().StringVar(&repoFlag, "repo", "", "Repository to use: a directory path, a catalog URL, or \"default\"")
	rootCmd.PersistentFlags().BoolVar(&nonInteractive, "non-interactive", false, "Never prompt; fail fast on missing required settings")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show the CLI's own version",
		Run: func(cmd *cobra.Command, args []string) {
			if _, err := semver.NewVersion(appVersion); err != nil {
				fmt.Printf("%s (not a valid semantic version: %v)\n", appVersion, err)
				return
			}
			fmt.Println(appVersion)
		},
	})
}
