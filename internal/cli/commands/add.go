package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"repoman/internal/cli"
	"repoman/internal/ui"
)

// AddCommand handles the add command
type AddCommand struct {
	flags     *cli.Flags
	formatter *ui.Formatter
}

// NewAddCommand creates a new AddCommand
func NewAddCommand(flags *cli.Flags, formatter *ui.Formatter) *AddCommand {
	return &AddCommand{flags: flags, formatter: formatter}
}

// Execute runs the command
func (ac *AddCommand) Execute(cmd *cobra.Command, args []string) error {
	if ac.flags.KeepLatest < 0 {
		return fmt.Errorf("keep-latest must be >= 0, got %d", ac.flags.KeepLatest)
	}
	r, _, err := openRepo(ac.flags, args[0])
	if err != nil {
		return err
	}
	defer r.Close()

	if err := r.AddSources(args[1:]); err != nil {
		return err
	}
	if err := r.Save(); err != nil {
		return err
	}
	if ac.flags.KeepLatest > 0 {
		removed, err := r.DeleteOld(ac.flags.KeepLatest)
		if err != nil {
			return err
		}
		ac.formatter.PrintRemoved(removed)
	}
	if ac.flags.Verbose {
		ac.formatter.PrintArtifacts(r.Stores())
	}
	return nil
}
