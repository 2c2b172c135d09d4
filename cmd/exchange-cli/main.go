package main

import (
	"os"

	"github.com/spf13/cobra"

	"stableswap-network/cmd/cli"
)

func main() {
	rootCmd := &cobra.Command{Use: "exchange"}
	cli.RegisterRoutes(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
