// Package main is the entry point for searchctl, a command-line client that
// runs searches through the same adapters as the proxy server.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the searchctl CLI.
var rootCmd = &cobra.Command{
	Use:   "searchctl",
	Short: "Query OpenAlex, Crossref and arXiv through the scholarly search proxy adapters",
	Long: `searchctl runs one search against a scholarly provider and prints the
normalized {results, meta} envelope as JSON. It reads the same configuration
as the server (config.yaml and SCHOLARPROXY_* environment variables).`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
