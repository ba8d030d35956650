package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"repoman/internal/cli"
	"repoman/internal/cli/commands"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:     "repoman",
		Short:   "Artifact repository manager",
		Long:    `Manage repositories of build artifacts: add rpms and generic artifacts from local paths or urls, prune old versions, regenerate yum metadata, sign packages and publish the result. Also drives the CI pipeline for a checkout.`,
		Version: version,
	}

	// Create flags struct (will be populated by command flags)
	var flags cli.Flags

	// Create commands with dependencies
	cmds := commands.NewCommands(&flags)

	// Register all commands
	cmds.Register(rootCmd, &flags)

	// Execute root command
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
