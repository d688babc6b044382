package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"time"

	"domino-service/internal/arena"
	"domino-service/internal/bot"
	"domino-service/pkg/logger"
	"domino-service/pkg/utils/random"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	strategyA    string
	strategyB    string
	matches      int
	targetPoints int
	workers      int
	retain       int
	seed         int64
	moveTimeout  time.Duration
	verbose      bool
	asJSON       bool
)

var rootCmd = &cobra.Command{
	Use:   "arena",
	Short: "Play a batch of domino matches between two strategies",
	Long:  `Plays independent Teams matches with strategy A on seats 0 and 2 and strategy B on seats 1 and 3, then prints the aggregate.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			logger.InitLogger("debug", "stderr")
			defer logger.Log.Sync()
		}

		registry := bot.NewDefaultRegistry()
		a, err := registry.Factory(strategyA)
		if err != nil {
			return err
		}
		b, err := registry.Factory(strategyB)
		if err != nil {
			return err
		}
		if seed == 0 {
			seed = random.Seed()
		}

		sim, err := arena.New(arena.Config{
			Matches:       matches,
			TargetPoints:  targetPoints,
			Workers:       workers,
			RetainRecords: retain,
			Seed:          seed,
			MoveTimeout:   moveTimeout,
		})
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		res, err := sim.Run(ctx, a, b)
		if err != nil {
			return err
		}

		if asJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		}
		printSummary(cmd, res)
		return nil
	},
}

func printSummary(cmd *cobra.Command, res *arena.Result) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s (A) vs %s (B), %d matches to %d, seed %d\n",
		res.StrategyA, res.StrategyB, res.NumMatches, res.TargetPoints, res.Seed)
	fmt.Fprintf(out, "  wins      A %d (%.1f%%)  B %d (%.1f%%)\n",
		res.TeamAWins, res.TeamAWinPct, res.TeamBWins, res.TeamBWinPct)
	fmt.Fprintf(out, "  hands     %d total, %.2f per match, %d blocked (%.1f%%)\n",
		res.TotalHands, res.AvgHandsPerMatch, res.BlockedHands, res.BlockedPct)
	fmt.Fprintf(out, "  points    A %.1f  B %.1f average final\n", res.AvgPointsA, res.AvgPointsB)
	fmt.Fprintf(out, "  faults    A %d  B %d, capped matches %d\n", res.FaultsA, res.FaultsB, res.CappedMatches)
	fmt.Fprintf(out, "  elapsed   %.2fs\n", res.ElapsedSeconds)
}

func init() {
	rootCmd.Flags().StringVar(&strategyA, "a", bot.NameGreedy, "strategy on seats 0 and 2")
	rootCmd.Flags().StringVar(&strategyB, "b", bot.NameRandom, "strategy on seats 1 and 3")
	rootCmd.Flags().IntVar(&matches, "matches", 100, "number of matches")
	rootCmd.Flags().IntVar(&targetPoints, "target", 200, "target score per match")
	rootCmd.Flags().IntVar(&workers, "workers", 0, "parallel matches, 0 for one per CPU")
	rootCmd.Flags().IntVar(&retain, "retain", 0, "replay records to keep, 0 keeps all")
	rootCmd.Flags().Int64Var(&seed, "seed", 0, "base seed, 0 for random")
	rootCmd.Flags().DurationVar(&moveTimeout, "move-timeout", 0, "per-move strategy timeout")
	rootCmd.Flags().BoolVar(&verbose, "verbose", false, "log match faults and progress to stderr")
	rootCmd.Flags().BoolVar(&asJSON, "json", false, "print the full result as JSON")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		logger.Log.Error("arena run failed", zap.Error(err))
		os.Exit(1)
	}
}
