package benchmarks

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lmazzoli/web2048-rl/config"
	"github.com/lmazzoli/web2048-rl/game2048"
	"github.com/lmazzoli/web2048-rl/policies"
	"github.com/lmazzoli/web2048-rl/storage"
	"github.com/lmazzoli/web2048-rl/types"
	"github.com/lmazzoli/web2048-rl/web2048"
)

// openEnv builds the browser session and environment from the config.
func openEnv(cfg config.Config, logger *zap.Logger) (*web2048.Env, error) {
	session, err := web2048.NewChromeSession(web2048.ChromeConfig{
		Headless:  cfg.Browser.Headless,
		Width:     cfg.Browser.Width,
		Height:    cfg.Browser.Height,
		UserAgent: cfg.Browser.UserAgent,
		Timeout:   cfg.BrowserTimeout(),
	}, logger)
	if err != nil {
		return nil, err
	}

	env := web2048.New(session, web2048.Config{
		URL:               cfg.URL,
		SettleDelay:       cfg.SettleDelay(),
		StableSamples:     cfg.Settle.StableSamples,
		MaxSettle:         cfg.MaxSettle(),
		CellRetryInterval: cfg.RetryInterval(),
		CellTimeout:       cfg.CellTimeout(),
	}, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()
	if err := env.Open(ctx); err != nil {
		env.Close()
		return nil, err
	}
	return env, nil
}

// Web runs a learning experiment against the live browser game.
func Web(episodes, horizon int, saveFile, configPath string, ctx context.Context) {
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Println(err)
		return
	}
	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Println(err)
		return
	}
	defer logger.Sync()

	env, err := openEnv(cfg, logger)
	if err != nil {
		fmt.Println(err)
		return
	}
	defer env.Close()

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
		Runs:     1,
		Episodes: episodes,
		Horizon:  horizon,
		// browser episodes are slow; bound each one
		Timeout: 10 * time.Minute,

		RecordPath:   saveFile,
		RecordTraces: true,
		Sink:         sink,

		ConsecutiveTimeoutsAbort: 3,
		ConsecutiveErrorsAbort:   3,
	})
	c.AddAnalysis("Rewards", types.NewRewardAnalyzer, types.RewardPlotter(saveFile))

	experiment := types.NewExperiment(
		"Web-EpsilonGreedy",
		policies.NewEpsilonGreedyPolicy(0.1, 0.99, 0.05),
		web2048.NewRLEnvironment(env, cfg.SettleDelay()),
	)
	experiment.AddProperty("Tile2048", game2048.TileMilestone(2048))
	c.AddExperiment(experiment)

	c.Run(ctx)
}

func WebCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "web",
		Short: "Run a learning experiment against the live browser game",
		Run: func(cmd *cobra.Command, args []string) {
			Web(episodes, horizon, saveFile, configPath, context.Background())
		},
	}
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to the environment YAML config")
	return cmd
}
