package app

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/edward-yakop/go-apkwatch/internal/config"
)

// ArgsList holds the raw command line flags.
type ArgsList struct {
	Verbose bool
	Config  string
	Output  string
	Cache   string
}

// ParseOption resolves the configuration for the given command line.
// Flags win over the config file and the environment.
func ParseOption(args ArgsList) (*config.Config, error) {
	opts := []config.Option{config.WithConfigFile(args.Config)}
	if output := strings.TrimSpace(args.Output); output != "" {
		opts = append(opts, config.WithOverride(config.KeyOutputPath, output))
	}
	if cachePath := strings.TrimSpace(args.Cache); cachePath != "" {
		opts = append(opts, config.WithOverride(config.KeyCachePath, cachePath))
	}

	cfg, err := config.Load(opts...)
	if err != nil {
		return nil, errors.Wrap(err, "invalid options")
	}
	return cfg, nil
}
