package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "formqueue",
		Short: "Mobile form post-processing and error resolution",
		Long: `formqueue post-processes mobile form documents after ingestion and serves the
operator API used to resolve forms that failed ingestion.`,
		SilenceUsage: true,
	}

	cmd.AddCommand(serveCmd())
	cmd.AddCommand(passCmd())
	cmd.AddCommand(patchCmd())
	return cmd
}
