package main

import (
	"bufio"
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/kbsync"
	"github.com/poiesic/kbsync/report"
	"github.com/poiesic/kbsync/storage"
	"github.com/urfave/cli/v2"
)

func ledgerCommand() *cli.Command {
	return &cli.Command{
		Name:  "ledger",
		Usage: "Inspect or clear the progress ledger",
		Subcommands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "List recorded fingerprints and file names",
				Action: ledgerShowAction,
			},
			{
				Name:   "reset",
				Usage:  "Discard all entries so every file is uploaded again",
				Action: ledgerResetAction,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "yes",
						Aliases: []string{"y"},
						Usage:   "Do not ask for confirmation",
					},
				},
			},
		},
	}
}

// loadLedger opens the configured ledger without needing service credentials.
func loadLedger(c *cli.Context) (storage.Ledger, error) {
	cfg, err := loadSettings(c)
	if err != nil {
		return nil, err
	}
	ledger, err := kbsync.OpenLedger(cfg.LedgerPath, cfg.LedgerBackend, slog.Default())
	if err != nil {
		return nil, err
	}
	if _, err := ledger.Load(c.Context); err != nil {
		ledger.Close()
		return nil, err
	}
	return ledger, nil
}

func ledgerShowAction(c *cli.Context) error {
	ledger, err := loadLedger(c)
	if err != nil {
		return err
	}
	defer ledger.Close()

	report.PrintLedger(c.App.Writer, ledger.Entries())
	return nil
}

func ledgerResetAction(c *cli.Context) error {
	ledger, err := loadLedger(c)
	if err != nil {
		return err
	}
	defer ledger.Close()

	n := ledger.Len()
	if !c.Bool("yes") {
		fmt.Fprintf(c.App.Writer, "Discard %d ledger entries? [y/N]: ", n)
		line, _ := bufio.NewReader(c.App.Reader).ReadString('\n')
		if answer := strings.ToLower(strings.TrimSpace(line)); answer != "y" && answer != "yes" {
			fmt.Fprintln(c.App.Writer, "Aborted.")
			return nil
		}
	}

	if err := ledger.Reset(c.Context); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Discarded %d entries.\n", n)
	return nil
}
