package commands

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"repoman/internal/ci"
	"repoman/internal/cli"
	"repoman/internal/config"
	"repoman/internal/ui"
)

// CheckPatchCommand handles the check-patch command
type CheckPatchCommand struct {
	flags     *cli.Flags
	formatter *ui.Formatter
}

// NewCheckPatchCommand creates a new CheckPatchCommand
func NewCheckPatchCommand(flags *cli.Flags, formatter *ui.Formatter) *CheckPatchCommand {
	return &CheckPatchCommand{flags: flags, formatter: formatter}
}

// Execute runs the command
func (cc *CheckPatchCommand) Execute(cmd *cobra.Command, args []string) error {
	workDir := "."
	if len(args) > 0 {
		workDir = args[0]
	}
	workDir, err := filepath.Abs(workDir)
	if err != nil {
		return err
	}
	if _, err := os.Stat(workDir); err != nil {
		return err
	}

	configPath := cc.flags.CIConfig
	if configPath == "" {
		configPath = filepath.Join(workDir, config.DefaultCIConfigFile)
	}
	cfg, err := ci.LoadConfig(configPath)
	if err != nil {
		return err
	}

	runner := ci.NewRunner(workDir, ci.NewDatabaseManager(workDir))
	pipeline := ci.NewPipeline(cfg, runner)

	result, runErr := pipeline.CheckPatch(cmd.Context())
	cc.formatter.PrintRunSummary(result)
	return runErr
}
