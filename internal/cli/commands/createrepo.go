package commands

import (
	"github.com/spf13/cobra"

	"repoman/internal/cli"
)

// CreateRepoCommand handles the createrepo command
type CreateRepoCommand struct {
	flags *cli.Flags
}

// NewCreateRepoCommand creates a new CreateRepoCommand
func NewCreateRepoCommand(flags *cli.Flags) *CreateRepoCommand {
	return &CreateRepoCommand{flags: flags}
}

// Execute runs the command
func (cc *CreateRepoCommand) Execute(cmd *cobra.Command, args []string) error {
	r, _, err := openRepo(cc.flags, args[0])
	if err != nil {
		return err
	}
	defer r.Close()

	return r.CreateRepos(cmd.Context())
}
