package benchmarks

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/lmazzoli/web2048-rl/game2048"
	"github.com/lmazzoli/web2048-rl/policies"
	"github.com/lmazzoli/web2048-rl/sim2048"
	"github.com/lmazzoli/web2048-rl/storage"
	"github.com/lmazzoli/web2048-rl/types"
)

// Sim compares policies on the in-process environment.
func Sim(episodes, horizon int, saveFile string, runs int, seed int64, ctx context.Context) {
	var sink types.EpisodeSink
	if dbPath != "" {
		store, err := storage.Open(dbPath)
		if err != nil {
			fmt.Println(err)
			return
		}
		defer store.Close()
		sink = store
	}

	c := types.NewComparison(&types.ComparisonConfig{
		Runs:     runs,
		Episodes: episodes,
		Horizon:  horizon,
		Timeout:  0 * time.Second,

		RecordPath:   saveFile,
		RecordTraces: false,
		Sink:         sink,

		ConsecutiveErrorsAbort: 10,
	})
	c.AddAnalysis("Rewards", types.NewRewardAnalyzer, types.RewardPlotter(saveFile))
	c.AddAnalysis("Coverage", types.NewCoverageAnalyzer, types.CoveragePlotter(saveFile))

	milestone := 512

	random := types.NewExperiment(
		"Random",
		types.NewRandomPolicy(),
		sim2048.NewEnvironment(seed),
	)
	random.AddProperty("Tile512", game2048.TileMilestone(milestone))
	c.AddExperiment(random)

	softmax := types.NewExperiment(
		"SoftMax",
		types.NewSoftMaxPolicy(0.3, 0.7),
		sim2048.NewEnvironment(seed+1),
	)
	softmax.AddProperty("Tile512", game2048.TileMilestone(milestone))
	c.AddExperiment(softmax)

	greedy := types.NewExperiment(
		"EpsilonGreedy",
		policies.NewEpsilonGreedyPolicy(0.1, 0.99, 0.05),
		sim2048.NewEnvironment(seed+2),
	)
	greedy.AddProperty("Tile512", game2048.TileMilestone(milestone))
	c.AddExperiment(greedy)

	c.Run(ctx)
}

func SimCommand() *cobra.Command {
	var seed int64

	cmd := &cobra.Command{
		Use:   "sim",
		Short: "Benchmark policies on the in-process game",
		Run: func(cmd *cobra.Command, args []string) {
			Sim(episodes, horizon, saveFile, runs, seed, context.Background())
		},
	}
	cmd.PersistentFlags().Int64Var(&seed, "seed", 2048, "Seed of the simulated game")
	return cmd
}
