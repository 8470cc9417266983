// Package main provides the entry point for the newsroom agent.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "newsroom_agent",
	Short: "Newsroom story coordinator",
	Long:  "Newsroom agent drives story assignments through planning, parallel research, drafting, editorial review, and publication, and exposes the coordinator over HTTP and JSONRPC.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
