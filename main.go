package main

import (
	"fmt"
	"os"

	"github.com/Homesapp/HomesappNew-sub000/internal/commands"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	// .env is optional; real environment variables win over it
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:           "billing",
		Short:         "Agency billing engine: schedules, payments and ledger",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().String(commands.ConfigFlag, "", "config file (default ./config.yaml)")

	rootCmd.AddCommand(
		commands.ServeCmd(),
		commands.MigrateCmd(),
		commands.MarkOverdueCmd(),
		commands.TokenCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
