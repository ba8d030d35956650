package config

// DefaultStores is the store order used when none is configured. The generic
// store goes last so specific stores get first pick of each artifact.
var DefaultStores = []string{"rpm", "generic"}

const (
	// DefaultConfigFile is the per-repo configuration file name.
	DefaultConfigFile = ".repoman.yaml"
	// DefaultCIConfigFile is the CI environments file name.
	DefaultCIConfigFile = ".repoman-ci.yaml"
	// DefaultArtifactsDir is where CI runs leave their outputs.
	DefaultArtifactsDir = "exported-artifacts"
	// DefaultDownloadRetries is the retry count for artifact downloads.
	DefaultDownloadRetries = 3
	// AskPassphrase makes the signing passphrase be prompted for.
	AskPassphrase = "ask"
)
