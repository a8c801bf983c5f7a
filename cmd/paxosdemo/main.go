// Command paxosdemo drives a small single-decree Paxos cluster, either
// entirely in-process (run) or as one long-lived websocket node that
// dials its peers (serve). It exists to exercise the paxos core and its
// transport/storage collaborators end to end, not as a production
// consensus service.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "paxosdemo",
		Short: "Drive a single-decree Paxos decree to resolution",
	}
	root.AddCommand(newRunCmd())
	root.AddCommand(newServeCmd())
	return root
}
