package cli

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/spf13/cobra"

	"github.com/opsbot/opsbot/internal/render"
	"github.com/opsbot/opsbot/internal/systems"
)

func newStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status [query]",
		Short: "Print systems and quick stats, optionally filtered",
		Example: `  opsbot status
  opsbot status which servers are down`,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := systems.Load(a.cfg.SystemsFilePath)
			if err != nil {
				return err
			}
			shown := systems.Filter(reg, strings.Join(args, " "))
			fmt.Fprintln(cmd.OutOrStdout(), render.Status("OpsBot - System Status", shown, systems.Summarize(reg)))
			return nil
		},
	}
}

func newAskCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask a question about the current systems",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := systems.Load(a.cfg.SystemsFilePath)
			if err != nil {
				return err
			}
			answer := a.responder().Answer(cmd.Context(), strings.Join(args, " "), reg)
			fmt.Fprintln(cmd.OutOrStdout(), answer)
			return nil
		},
	}
}

func newSimulateCmd(a *app) *cobra.Command {
	var (
		rounds int
		seed   uint64
		write  bool
	)
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Apply simulated telemetry updates and print the result",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if rounds < 1 {
				return errors.New("--rounds must be at least 1")
			}
			reg, err := systems.Load(a.cfg.SystemsFilePath)
			if err != nil {
				return err
			}

			rng := rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
			if cmd.Flags().Changed("seed") {
				rng = rand.New(rand.NewPCG(seed, seed))
			}
			for i := 0; i < rounds; i++ {
				reg = systems.Update(reg, rng)
			}

			if write {
				if err := systems.Save(a.cfg.SystemsFilePath, reg); err != nil {
					return err
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), render.Status("OpsBot - Simulated Status", reg, systems.Summarize(reg)))
			return nil
		},
	}
	cmd.Flags().IntVar(&rounds, "rounds", 1, "number of updates to apply")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "random seed for reproducible runs")
	cmd.Flags().BoolVar(&write, "write", false, "write the result back to the systems file")
	return cmd
}
