package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "sessionauth",
	Short: "Session authentication service",
	Long: `Registers users, verifies their passwords and keeps server-side
sessions addressed by an opaque cookie. Configuration is read from the
environment (and an optional .env file).`,
	SilenceUsage: true,
	RunE:         runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd, hashPasswordCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
