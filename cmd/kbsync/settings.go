package main

import (
	"log/slog"

	"github.com/poiesic/kbsync"
	"github.com/poiesic/kbsync/config"
	"github.com/poiesic/kbsync/remote"
	"github.com/urfave/cli/v2"
)

// flagKeys maps CLI flags to config keys. Only flags the user actually set
// override the config file and environment.
var flagKeys = map[string]string{
	"base-url":        config.KeyBaseURL,
	"token":           config.KeyToken,
	"ledger":          config.KeyLedgerPath,
	"ledger-backend":  config.KeyLedgerBackend,
	"hash":            config.KeyHashAlgorithm,
	"max-attempts":    config.KeyMaxAttempts,
	"retry-delay":     config.KeyRetryDelay,
	"associate-delay": config.KeyAssociateDelay,
	"hash-workers":    config.KeyHashWorkers,
	"ext":             config.KeyExtensions,
}

func loadSettings(c *cli.Context) (*config.Config, error) {
	overrides := map[string]any{}
	for flag, key := range flagKeys {
		if !c.IsSet(flag) {
			continue
		}
		switch flag {
		case "max-attempts", "hash-workers":
			overrides[key] = c.Int(flag)
		case "retry-delay", "associate-delay":
			overrides[key] = c.Duration(flag)
		case "ext":
			overrides[key] = config.SplitList(c.StringSlice(flag))
		default:
			overrides[key] = c.String(flag)
		}
	}
	return config.Load(c.String("config"), overrides)
}

func remoteConfig(cfg *config.Config) *remote.Config {
	return remote.NewConfig(
		remote.WithBaseURL(cfg.BaseURL),
		remote.WithToken(cfg.Token),
		remote.WithTimeout(cfg.Timeout),
	)
}

func openSession(cfg *config.Config) (*kbsync.Session, error) {
	return kbsync.NewSession(cfg.LedgerPath,
		kbsync.WithRemoteConfig(remoteConfig(cfg)),
		kbsync.WithLedgerBackend(cfg.LedgerBackend),
		kbsync.WithHashAlgorithm(cfg.HashAlgorithm),
		kbsync.WithSessionLogger(slog.Default()),
	)
}
