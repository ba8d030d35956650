package commands

import (
	"github.com/spf13/cobra"

	"repoman/internal/cli"
)

// SignRPMsCommand handles the sign-rpms command
type SignRPMsCommand struct {
	flags *cli.Flags
}

// NewSignRPMsCommand creates a new SignRPMsCommand
func NewSignRPMsCommand(flags *cli.Flags) *SignRPMsCommand {
	return &SignRPMsCommand{flags: flags}
}

// Execute runs the command
func (sc *SignRPMsCommand) Execute(cmd *cobra.Command, args []string) error {
	r, _, err := openRepo(sc.flags, args[0])
	if err != nil {
		return err
	}
	defer r.Close()

	return r.SignRPMs(cmd.Context())
}
