package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:          "login-guard",
	Short:        "Credential authentication endpoint with bot detection and account lockout",
	SilenceUsage: true,
}

func main() {
	rootCmd.AddCommand(serveCmd, registerCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
