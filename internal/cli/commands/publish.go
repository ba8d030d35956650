package commands

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"repoman/internal/cli"
	"repoman/internal/publish"
)

// PublishCommand handles the publish command
type PublishCommand struct {
	flags *cli.Flags
}

// NewPublishCommand creates a new PublishCommand
func NewPublishCommand(flags *cli.Flags) *PublishCommand {
	return &PublishCommand{flags: flags}
}

// Execute runs the command
func (pc *PublishCommand) Execute(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(pc.flags)
	if err != nil {
		return err
	}

	publisher, err := publish.New(cfg.Publish)
	if err != nil {
		return err
	}
	uploaded, err := publisher.Sync(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	color.Green("Uploaded %d file(s) to %s", len(uploaded), cfg.Publish.Bucket)
	if pc.flags.Verbose {
		for _, object := range uploaded {
			fmt.Println("  " + object)
		}
	}
	return nil
}
