package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"todosync/internal/utils"
)

var (
	configPath string
	verbose    bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "todosync",
		Short: "Offline-first to-do list that reconciles with a remote server",
		Long: `todosync keeps your tasks in a local database and synchronizes them
with the server whenever connectivity is available. Every command works
offline; pending changes are pushed on the next successful sync.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			utils.SetVerboseMode(verbose)
		},
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	rootCmd.AddCommand(
		newAddCmd(),
		newListCmd(),
		newEditCmd(),
		newDoneCmd(),
		newDeleteCmd(),
		newSyncCmd(),
		newRefreshCmd(),
		newLoginCmd(),
		newLogoutCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
