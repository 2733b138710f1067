package benchmarks

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lmazzoli/web2048-rl/config"
	"github.com/lmazzoli/web2048-rl/server"
)

// Serve exposes the browser environment over HTTP for external agents.
func Serve(addr, configPath string, ctx context.Context) {
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

	bridge := server.New(env, logger)
	if err := bridge.Run(addr); err != nil {
		fmt.Println(err)
	}
}

func ServeCommand() *cobra.Command {
	var addr string
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Expose the browser environment over HTTP",
		Run: func(cmd *cobra.Command, args []string) {
			Serve(addr, configPath, context.Background())
		},
	}
	cmd.PersistentFlags().StringVar(&addr, "addr", ":8248", "Listen address of the bridge")
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to the environment YAML config")
	return cmd
}
