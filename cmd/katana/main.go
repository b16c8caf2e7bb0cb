// Command katana is the node's single entrypoint: `katana node` runs the
// standalone developer sequencer (spec §1), `katana db ...` operates on an
// existing chaindata directory offline (spec §6 "CLI surface").
package main

import (
	"fmt"
	"os"

	"github.com/katana-go/katana/cmd/katana/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "katana:", err)
		os.Exit(1)
	}
}
