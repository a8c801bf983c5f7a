package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/paxoscore/quorum/node"
	memstore "github.com/paxoscore/quorum/storage/memory"
	"github.com/paxoscore/quorum/transport/ws"
)

func newServeCmd() *cobra.Command {
	var configPath string
	var proposeValue string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run one websocket-backed node, dialing its configured peers",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, configPath, proposeValue)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "path to a YAML config file (falls back to PAXOSDEMO_ env vars)")
	cmd.Flags().StringVar(&proposeValue, "propose", "", "if set, propose this value once peers are dialed")
	return cmd
}

func runServe(cmd *cobra.Command, configPath, proposeValue string) error {
	cfg, err := loadServeConfig(configPath)
	if err != nil {
		return fmt.Errorf("serve: %w", err)
	}

	endpoint := ws.NewEndpoint(cfg.NodeUID)

	mux := http.NewServeMux()
	mux.Handle("/ws", endpoint)
	server := &http.Server{Addr: cfg.ListenAddr, Handler: mux}
	go func() {
		_ = server.ListenAndServe()
	}()
	defer server.Close()

	for peerUID, peerURL := range cfg.Peers {
		if err := endpoint.Dial(peerUID, peerURL); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "serve: dial %s: %v\n", peerUID, err)
		}
	}

	n, err := node.New(cfg.NodeUID, cfg.QuorumSize, endpoint, memstore.New())
	if err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	if err := n.Start(); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	defer n.Stop()

	if proposeValue != "" {
		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()
		chosen, err := n.Propose(ctx, proposeValue)
		if err != nil {
			return fmt.Errorf("serve: propose: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "resolved: %v\n", chosen)
		return nil
	}

	<-cmd.Context().Done()
	return nil
}
