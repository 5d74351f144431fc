// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/urfave/cli/v2"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		stop()
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "kbsync",
		Usage: "Upload a directory of documents into a knowledge collection, resumably",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a YAML, TOML or JSON config file",
			},
			&cli.StringFlag{
				Name:  "base-url",
				Usage: "Knowledge service base URL",
			},
			&cli.StringFlag{
				Name:  "token",
				Usage: "Knowledge service API token (prefer KBSYNC_TOKEN)",
			},
			&cli.StringFlag{
				Name:  "ledger",
				Usage: "Path to the progress ledger (file for json, directory for badger)",
			},
			&cli.StringFlag{
				Name:  "ledger-backend",
				Usage: "Ledger store: json or badger",
			},
			&cli.StringFlag{
				Name:  "hash",
				Usage: "Fingerprint algorithm: sha256 or blake2b",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			syncCommand(),
			collectionCommand(),
			ledgerCommand(),
		},
	}
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
