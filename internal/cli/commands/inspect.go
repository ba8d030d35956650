package commands

import (
	"github.com/spf13/cobra"

	"repoman/internal/cli"
	"repoman/internal/ui"
)

// InspectCommand handles the inspect command
type InspectCommand struct {
	flags *cli.Flags
}

// NewInspectCommand creates a new InspectCommand
func NewInspectCommand(flags *cli.Flags) *InspectCommand {
	return &InspectCommand{flags: flags}
}

// Execute runs the command
func (ic *InspectCommand) Execute(cmd *cobra.Command, args []string) error {
	r, _, err := openRepo(ic.flags, args[0])
	if err != nil {
		return err
	}
	defer r.Close()

	return ui.NewInspector(r.Path(), r.Stores()).View()
}
