package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/paxoscore/quorum/node"
	memstore "github.com/paxoscore/quorum/storage/memory"
	memtransport "github.com/paxoscore/quorum/transport/memory"
)

func newRunCmd() *cobra.Command {
	var uids []string
	var value string
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run an in-process cluster and propose one value",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInProcess(cmd, uids, value, timeout)
		},
	}
	cmd.Flags().StringSliceVar(&uids, "node", []string{"A", "B", "C"}, "node uid, repeatable")
	cmd.Flags().StringVar(&value, "value", "hello", "value the first node proposes")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "how long to wait for resolution")
	return cmd
}

func runInProcess(cmd *cobra.Command, uids []string, value string, timeout time.Duration) error {
	if len(uids) < 1 {
		return fmt.Errorf("run: need at least one node")
	}
	quorumSize := len(uids)/2 + 1

	hub := memtransport.NewHub()
	nodes := make([]*node.Node, 0, len(uids))
	for _, uid := range uids {
		n, err := node.New(uid, quorumSize, hub.Register(uid), memstore.New())
		if err != nil {
			return fmt.Errorf("run: start node %s: %w", uid, err)
		}
		if err := n.Start(); err != nil {
			return fmt.Errorf("run: start node %s: %w", uid, err)
		}
		defer n.Stop()
		nodes = append(nodes, n)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	chosen, err := nodes[0].Propose(ctx, value)
	if err != nil {
		return fmt.Errorf("run: propose: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "resolved: %v (proposed %q from %s, quorum=%d)\n", chosen, value, uids[0], quorumSize)
	return nil
}
