package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/benjaminabbitt/hostcli/internal/catalog"
	"github.com/benjaminabbitt/hostcli/internal/errs"
	"github.com/benjaminabbitt/hostcli/internal/repository"
	"github.com/benjaminabbitt/hostcli/internal/session"
)

func init() {
	repoCmd.AddCommand(repoSyncCmd)
	repoCmd.AddCommand(repoSnapshotCmd)
	rootCmd.AddCommand(repoCmd)
}

var repoCmd = &cobra.Command{
	Use:   "repo",
	Short: "Manage the remote catalog snapshot",
}

var repoSyncCmd = &cobra.Command{
	Use:   "sync <archive-url>...",
	Short: "Re-index a set of archive URLs into a fresh catalog snapshot",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRepoSync(currentSess, args)
	},
}

var repoSnapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Emit the current repository's catalog as a snapshot document",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRepoSnapshot(currentSess)
	},
}

func runRepoSnapshot(sess *session.Session) error {
	plugins, err := sess.Repository.ListPlugins(sess.Context())
	if err != nil {
		return err
	}
	data, err := catalog.MarshalSnapshot(plugins)
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func runRepoSync(sess *session.Session, urls []string) error {
	rc, ok := sess.Repository.(*repository.RemoteCatalog)
	if !ok {
		return errs.New(errs.KindValidation, "repo sync requires a remote-catalog repository (pass --repo <url>)")
	}
	snapshot, warnings, err := rc.Sync(sess.Context(), urls)
	if err != nil {
		return err
	}
	for _, w := range warnings {
		fmt.Printf("warning: %s: %v\n", w.URL, w.Err)
	}
	fmt.Printf("synced catalog snapshot (%d bytes)\n", len(snapshot))
	return nil
}
