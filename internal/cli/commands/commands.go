package commands

import (
	"fmt"
	"os"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"repoman/internal/cli"
	"repoman/internal/config"
	"repoman/internal/repo"
	"repoman/internal/ui"
)

// Commands holds all CLI commands
type Commands struct {
	Add         *AddCommand
	RemoveOld   *RemoveOldCommand
	CreateRepo  *CreateRepoCommand
	SignRPMs    *SignRPMsCommand
	GenerateSrc *GenerateSrcCommand
	Inspect     *InspectCommand
	Publish     *PublishCommand
	CheckPatch  *CheckPatchCommand
}

// NewCommands creates all commands with dependencies
func NewCommands(flags *cli.Flags) *Commands {
	formatter := ui.NewFormatter()

	return &Commands{
		Add:         NewAddCommand(flags, formatter),
		RemoveOld:   NewRemoveOldCommand(flags, formatter),
		CreateRepo:  NewCreateRepoCommand(flags),
		SignRPMs:    NewSignRPMsCommand(flags),
		GenerateSrc: NewGenerateSrcCommand(flags),
		Inspect:     NewInspectCommand(flags),
		Publish:     NewPublishCommand(flags),
		CheckPatch:  NewCheckPatchCommand(flags, formatter),
	}
}

// Register registers all commands with cobra
func (c *Commands) Register(rootCmd *cobra.Command, flags *cli.Flags) {
	rootCmd.PersistentFlags().BoolVarP(&flags.Verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVarP(&flags.Noop, "noop", "n", false, "Only show what would be done")
	rootCmd.PersistentFlags().StringVar(&flags.ConfigPath, "config", "", "Config file (default "+config.DefaultConfigFile+")")
	rootCmd.PersistentFlags().StringArrayVarP(&flags.Options, "option", "o", nil, "Extra config option, as name=value (repeatable)")
	rootCmd.PersistentFlags().StringVar(&flags.TempDir, "temp-dir", "", "Directory for downloaded artifacts")
	rootCmd.PersistentFlags().StringVarP(&flags.Stores, "stores", "s", "", "Comma separated list of stores to load")
	rootCmd.PersistentFlags().StringVarP(&flags.Key, "key", "k", "", "Path to the gpg signing key")
	rootCmd.PersistentFlags().StringVar(&flags.Passphrase, "passphrase", config.AskPassphrase, "Signing key passphrase, or 'ask' to prompt")

	addCmd := &cobra.Command{
		Use:   "add REPO SOURCE...",
		Short: "Add artifacts to a repo",
		Long:  "Add artifacts to a repo from local paths, urls, source config files or stdin",
		Args:  cobra.MinimumNArgs(2),
		RunE:  c.Add.Execute,
	}
	addCmd.Flags().IntVar(&flags.KeepLatest, "keep-latest", 0, "After adding, keep only the latest N versions of each artifact")
	addCmd.Flags().BoolVar(&flags.OnlyIfNewer, "only-if-newer", false, "Skip artifacts that are not newer than what the repo already holds")
	addCmd.Flags().BoolVar(&flags.WithSources, "with-sources", false, "Generate the src tree from the source rpms")
	rootCmd.AddCommand(addCmd)

	removeOldCmd := &cobra.Command{
		Use:   "remove-old REPO",
		Short: "Remove old artifact versions from a repo",
		Args:  cobra.ExactArgs(1),
		RunE:  c.RemoveOld.Execute,
	}
	removeOldCmd.Flags().IntVar(&flags.Keep, "keep", 1, "Number of versions to keep per artifact")
	rootCmd.AddCommand(removeOldCmd)

	rootCmd.AddCommand(&cobra.Command{
		Use:   "createrepo REPO",
		Short: "Regenerate the yum metadata of every distro in a repo",
		Args:  cobra.ExactArgs(1),
		RunE:  c.CreateRepo.Execute,
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "sign-rpms REPO",
		Short: "Sign all the rpms in a repo with the configured key",
		Args:  cobra.ExactArgs(1),
		RunE:  c.SignRPMs.Execute,
	})

	generateSrcCmd := &cobra.Command{
		Use:   "generate-src REPO",
		Short: "Populate the src tree from the source rpms in a repo",
		Args:  cobra.ExactArgs(1),
		RunE:  c.GenerateSrc.Execute,
	}
	generateSrcCmd.Flags().BoolVar(&flags.WithPatches, "with-patches", false, "Extract patches along with the tarballs")
	rootCmd.AddCommand(generateSrcCmd)

	rootCmd.AddCommand(&cobra.Command{
		Use:   "inspect REPO",
		Short: "Browse the contents of a repo interactively",
		Args:  cobra.ExactArgs(1),
		RunE:  c.Inspect.Execute,
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "publish REPO",
		Short: "Upload a repo to the configured object storage",
		Args:  cobra.ExactArgs(1),
		RunE:  c.Publish.Execute,
	})

	checkPatchCmd := &cobra.Command{
		Use:   "check-patch [DIR]",
		Short: "Run the CI pipeline on a checkout",
		Long:  "Run the configured CI environments, build the artifacts and check they install",
		Args:  cobra.MaximumNArgs(1),
		RunE:  c.CheckPatch.Execute,
	}
	checkPatchCmd.Flags().StringVar(&flags.CIConfig, "ci-config", "", "CI config file (default "+config.DefaultCIConfigFile+")")
	rootCmd.AddCommand(checkPatchCmd)
}

// openRepo loads the config for the given repo path and opens it. The caller
// must Close the repo.
func openRepo(flags *cli.Flags, repoPath string) (*repo.Repo, *config.Config, error) {
	cfg, err := loadConfig(flags)
	if err != nil {
		return nil, nil, err
	}
	cfg.RepoPath = repoPath
	r, err := repo.New(cfg)
	if err != nil {
		return nil, nil, err
	}
	return r, cfg, nil
}

func loadConfig(flags *cli.Flags) (*config.Config, error) {
	cfg, err := config.Load(flags.ToConfigFlags())
	if err != nil {
		return nil, err
	}
	if cfg.SigningKey != "" && cfg.SigningPassphrase == config.AskPassphrase {
		passphrase, err := askPassphrase()
		if err != nil {
			return nil, err
		}
		cfg.SigningPassphrase = passphrase
	}
	return cfg, nil
}

func askPassphrase() (string, error) {
	fmt.Fprint(os.Stderr, "Signing key passphrase: ")
	passphrase, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading passphrase: %w", err)
	}
	return string(passphrase), nil
}
