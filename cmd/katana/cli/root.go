// Package cli wires cobra commands around the storage engine, trie pruner,
// and node-wiring packages this module builds. Deep flag semantics (chain
// spec files, forking RPC proxies) are out of scope per spec §1's
// "CLI argument parsing and config loading" exclusion; this package covers
// spec §6's representative CLI surface instead: `db stats|version|prune`
// and a `node` entrypoint for the standalone developer sequencer.
package cli

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "katana",
	Short: "A StarkNet-compatible execution node",
}

func init() {
	rootCmd.AddCommand(dbCmd)
	rootCmd.AddCommand(nodeCmd)
}

// Execute runs the root command, returning the first error any subcommand
// produces (main maps this to a non-zero exit code per spec §6).
func Execute() error {
	return rootCmd.Execute()
}
