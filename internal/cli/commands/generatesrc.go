package commands

import (
	"github.com/spf13/cobra"

	"repoman/internal/cli"
)

// GenerateSrcCommand handles the generate-src command
type GenerateSrcCommand struct {
	flags *cli.Flags
}

// NewGenerateSrcCommand creates a new GenerateSrcCommand
func NewGenerateSrcCommand(flags *cli.Flags) *GenerateSrcCommand {
	return &GenerateSrcCommand{flags: flags}
}

// Execute runs the command
func (gc *GenerateSrcCommand) Execute(cmd *cobra.Command, args []string) error {
	r, _, err := openRepo(gc.flags, args[0])
	if err != nil {
		return err
	}
	defer r.Close()

	return r.GenerateSources(gc.flags.WithPatches)
}
