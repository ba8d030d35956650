package cli

import "repoman/internal/config"

// Flags holds command-line flags
type Flags struct {
	Verbose     bool
	Noop        bool
	ConfigPath  string
	Options     []string
	TempDir     string
	Stores      string
	Key         string
	Passphrase  string
	WithSources bool
	OnlyIfNewer bool
	KeepLatest  int
	Keep        int
	WithPatches bool
	CIConfig    string
}

// ToConfigFlags converts CLI flags to config flags
func (f *Flags) ToConfigFlags() config.Flags {
	return config.Flags{
		Verbose:     f.Verbose,
		Noop:        f.Noop,
		ConfigPath:  f.ConfigPath,
		Options:     f.Options,
		TempDir:     f.TempDir,
		Stores:      f.Stores,
		Key:         f.Key,
		Passphrase:  f.Passphrase,
		WithSources: f.WithSources,
		OnlyIfNewer: f.OnlyIfNewer,
		KeepLatest:  f.KeepLatest,
		Keep:        f.Keep,
		WithPatches: f.WithPatches,
		CIConfig:    f.CIConfig,
	}
}
