package main

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"shiftplan/internal/seed"
	"shiftplan/internal/users"
)

var (
	seedHistory bool
	seedOpen    bool
	seedPayroll bool
	seedDays    int
	seedValue   uint64
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create default accounts and demo shifts",
	Long: `Create the default accounts when the store is empty.

With --history every employee gets approved shifts over the last --days days.
With --open some pending and accepted shifts are added for the last ten days.
With --payroll every employee and admin gets demo manual payroll entries.`,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().BoolVar(&seedHistory, "history", false, "generate approved shift history")
	seedCmd.Flags().BoolVar(&seedOpen, "open", false, "generate pending and accepted shifts")
	seedCmd.Flags().BoolVar(&seedPayroll, "payroll", false, "generate manual payroll entries")
	seedCmd.Flags().IntVar(&seedDays, "days", seed.DefaultHistoryDays, "days of history to generate")
	seedCmd.Flags().Uint64Var(&seedValue, "seed", 0, "random seed (0 uses the clock)")
}

func runSeed(cmd *cobra.Command, args []string) error {
	rt, err := setup()
	if err != nil {
		return err
	}
	defer rt.close()
	ctx := cmd.Context()

	n, err := users.NewService(rt.store, nil, rt.log).EnsureDefaults(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "default users created: %d\n", n)

	if !seedHistory && !seedOpen && !seedPayroll {
		return nil
	}

	if seedValue == 0 {
		seedValue = uint64(time.Now().UnixNano())
	}
	rng := rand.New(rand.NewPCG(seedValue, seedValue>>1))
	gen := seed.NewGenerator(rt.store, rt.log, rng, rt.cfg.MinRest)

	if seedHistory {
		res, err := gen.GenerateHistory(ctx, seedDays)
		if err != nil {
			return err
		}
		rt.log.Info("history generated", zap.Int("employees", res.Employees), zap.Int("shifts", res.Shifts))
		fmt.Fprintf(cmd.OutOrStdout(), "history: %d shifts for %d employees\n", res.Shifts, res.Employees)
	}
	if seedOpen {
		created, err := gen.GenerateOpen(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "open shifts: %d\n", created)
	}
	if seedPayroll {
		created, err := gen.GeneratePayroll(ctx, "seed")
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "payroll entries: %d\n", created)
	}
	return nil
}
