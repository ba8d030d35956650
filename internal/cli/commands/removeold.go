package commands

import (
	"github.com/spf13/cobra"

	"repoman/internal/cli"
	"repoman/internal/ui"
)

// RemoveOldCommand handles the remove-old command
type RemoveOldCommand struct {
	flags     *cli.Flags
	formatter *ui.Formatter
}

// NewRemoveOldCommand creates a new RemoveOldCommand
func NewRemoveOldCommand(flags *cli.Flags, formatter *ui.Formatter) *RemoveOldCommand {
	return &RemoveOldCommand{flags: flags, formatter: formatter}
}

// Execute runs the command
func (rc *RemoveOldCommand) Execute(cmd *cobra.Command, args []string) error {
	r, _, err := openRepo(rc.flags, args[0])
	if err != nil {
		return err
	}
	defer r.Close()

	removed, err := r.DeleteOld(rc.flags.Keep)
	if err != nil {
		return err
	}
	rc.formatter.PrintRemoved(removed)
	return nil
}
