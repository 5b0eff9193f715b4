package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agentdesk/deepresearch/config"
	agentcore "github.com/agentdesk/deepresearch/internal/agent/core"
	agenttele "github.com/agentdesk/deepresearch/internal/agent/telemetry"
	"github.com/agentdesk/deepresearch/provider"
)

func planCMD() *cobra.Command {
	var cfgPath string
	plan := &cobra.Command{
		Use:   "plan <query>",
		Short: "Print the search plan for a query without running the pipeline",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadConfig(cfgPath)

			prov, err := provider.NewProvider(cfg.LLM)
			if err != nil {
				return err
			}
			tele := agenttele.NewTelemetry(cfg.Telemetry)
			planner := agentcore.NewPlanner(cfg, prov, tele)

			result := planner.Plan(cmd.Context(), strings.Join(args, " "))
			out, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
	plan.Flags().StringVarP(&cfgPath, "config", "c", "", "config file (default is ./config)")

	return plan
}
