package main

import (
	"fmt"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/agentdesk/deepresearch/config"
	agentcore "github.com/agentdesk/deepresearch/internal/agent/core"
	"github.com/agentdesk/deepresearch/internal/agent/runtime"
	agenttele "github.com/agentdesk/deepresearch/internal/agent/telemetry"
	"github.com/agentdesk/deepresearch/provider"
)

func researchCMD() *cobra.Command {
	var cfgPath string
	research := &cobra.Command{
		Use:   "research [query...]",
		Short: "Run the research pipeline and print the markdown report",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadConfig(cfgPath)

			prov, err := provider.NewProvider(cfg.LLM)
			if err != nil {
				return err
			}
			tele := agenttele.NewTelemetry(cfg.Telemetry)
			registry := runtime.NewRegistry()
			manager := agentcore.NewManager(cfg, prov, tele, registry)

			// Independent queries are independent pipeline runs; they
			// share only the registry and the telemetry sink.
			var mu sync.Mutex
			g, ctx := errgroup.WithContext(cmd.Context())
			for _, query := range args {
				query := query
				g.Go(func() error {
					report, err := manager.Run(ctx, query)
					if err != nil {
						return err
					}
					mu.Lock()
					defer mu.Unlock()
					fmt.Fprintf(cmd.OutOrStdout(), "%s\n", report.MarkdownReport)
					return nil
				})
			}
			return g.Wait()
		},
	}
	research.Flags().StringVarP(&cfgPath, "config", "c", "", "config file (default is ./config)")

	return research
}
