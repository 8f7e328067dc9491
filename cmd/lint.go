package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/benjaminabbitt/hostcli/internal/archive"
	"github.com/benjaminabbitt/hostcli/internal/catalog"
	"github.com/benjaminabbitt/hostcli/internal/manifest"
)

func init() {
	rootCmd.AddCommand(lintCmd)
}

var lintCmd = &cobra.Command{
	Use:   "lint <path>",
	Short: "Validate a plugin manifest without installing it",
	Long: `lint validates a plugin-manifest.json and reports the platforms and
host versions it resolves to. path may be a directory containing
plugin-manifest.json directly, or an archive file to extract it from.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLint(args[0])
	},
}

func runLint(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return lintDirectory(path)
	}
	return lintArchive(path)
}

func lintDirectory(dir string) error {
	data, err := os.ReadFile(filepath.Join(dir, "plugin-manifest.json"))
	if err != nil {
		return err
	}
	m, err := manifest.Parse(data)
	if err != nil {
		return err
	}
	probe := func(name string) bool {
		_, err := os.Stat(filepath.Join(dir, name))
		return err == nil
	}
	if err := manifest.Validate(m, "", probe); err != nil {
		return err
	}
	platforms, err := manifest.ResolvedPlatforms(m, "", probe)
	if err != nil {
		return err
	}
	fmt.Printf("%s %s: platforms=%v hostVersions=%q\n", m.Name, m.Version, platforms.Sorted(), m.HostVersions)
	return nil
}

func lintArchive(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if _, err := archive.Open(data); err != nil {
		return err
	}

	plugins, warnings := catalog.Index([]catalog.Blob{{URL: path, Data: data}})
	for _, w := range warnings {
		fmt.Printf("warning: %v\n", w.Err)
	}
	if len(plugins) == 0 {
		return fmt.Errorf("no valid plugin manifest found in %s", path)
	}
	for _, p := range plugins {
		for _, g := range p.Groups {
			for _, loc := range g.Locations {
				fmt.Printf("%s %s: platforms=%v hostVersions=%q\n", p.Name, g.Version, loc.Platforms.Sorted(), loc.HostVersions)
			}
		}
	}
	return nil
}
