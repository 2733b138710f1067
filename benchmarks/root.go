package benchmarks

import "github.com/spf13/cobra"

var (
	episodes int
	horizon  int
	saveFile string
	runs     int
	dbPath   string
)

func GetRootCommand() *cobra.Command {
	rootCommand := &cobra.Command{
		Use:   "web2048-rl",
		Short: "RL benchmarks and bridges for the browser-hosted 2048 game",
	}
	rootCommand.PersistentFlags().IntVarP(&episodes, "episodes", "e", 1000, "Number of episodes to run")
	rootCommand.PersistentFlags().IntVar(&horizon, "horizon", 500, "Horizon of each episode")
	rootCommand.PersistentFlags().StringVarP(&saveFile, "save", "s", "results", "Save the result data in the specified folder")
	rootCommand.PersistentFlags().IntVar(&runs, "runs", 1, "Number of experiment runs")
	rootCommand.PersistentFlags().StringVar(&dbPath, "db", "", "Optional sqlite database to record episode results")
	// adding the subcommands here
	rootCommand.AddCommand(SimCommand())
	rootCommand.AddCommand(WebCommand())
	rootCommand.AddCommand(ServeCommand())
	return rootCommand
}
