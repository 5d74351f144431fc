package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/poiesic/kbsync/ingestion"
	"github.com/poiesic/kbsync/report"
	"github.com/urfave/cli/v2"
)

// Answers to the "existing ledger" question.
const (
	onExistingAsk     = "ask"
	onExistingResume  = "resume"
	onExistingRestart = "restart"
)

func syncCommand() *cli.Command {
	return &cli.Command{
		Name:      "sync",
		Usage:     "Upload new documents under a folder into a collection",
		ArgsUsage: "<folder>",
		Action:    syncAction,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "collection-id",
				Aliases: []string{"k"},
				Usage:   "Existing collection id",
			},
			&cli.StringFlag{
				Name:  "create-collection",
				Usage: "Create a new collection with this name",
			},
			&cli.StringFlag{
				Name:  "description",
				Usage: "Description for a new collection",
			},
			&cli.StringFlag{
				Name:  "on-existing",
				Usage: "What to do when the ledger has entries: ask, resume or restart",
				Value: onExistingAsk,
			},
			&cli.IntFlag{
				Name:  "max-attempts",
				Usage: "Upload attempts per file",
				Value: ingestion.DefaultMaxAttempts,
			},
			&cli.DurationFlag{
				Name:  "retry-delay",
				Usage: "Fixed delay between upload attempts",
				Value: ingestion.DefaultRetryDelay,
			},
			&cli.DurationFlag{
				Name:  "associate-delay",
				Usage: "Pause between upload and association (0 disables)",
				Value: ingestion.DefaultAssociateDelay,
			},
			&cli.IntFlag{
				Name:  "hash-workers",
				Usage: "Fingerprint files ahead of the upload loop with N workers",
				Value: 1,
			},
			&cli.StringSliceFlag{
				Name:  "ext",
				Usage: "Accepted file extensions (repeatable or comma-separated)",
			},
			&cli.BoolFlag{
				Name:  "skip-hidden",
				Usage: "Skip dot-files and dot-directories",
			},
		},
	}
}

func syncAction(c *cli.Context) error {
	ctx := c.Context

	if c.NArg() != 1 {
		return errors.New("exactly one folder argument is required")
	}
	folder := c.Args().First()

	onExisting := strings.ToLower(c.String("on-existing"))
	switch onExisting {
	case onExistingAsk, onExistingResume, onExistingRestart:
	default:
		return fmt.Errorf("invalid --on-existing %q: must be one of ask, resume, restart", onExisting)
	}

	collectionID := c.String("collection-id")
	collectionName := c.String("create-collection")
	if collectionID != "" && collectionName != "" {
		return errors.New("--collection-id and --create-collection are mutually exclusive")
	}

	cfg, err := loadSettings(c)
	if err != nil {
		return err
	}

	session, err := openSession(cfg)
	if err != nil {
		return err
	}
	defer session.Close()

	collectionID, err = session.ResolveCollection(ctx, collectionID, collectionName, c.String("description"))
	if err != nil {
		return err
	}

	out := c.App.Writer
	if n := session.LoadedEntries(); n > 0 {
		restart, err := shouldRestart(onExisting, n, c.App.Reader, out)
		if err != nil {
			return err
		}
		if restart {
			if err := session.Ledger().Reset(ctx); err != nil {
				return err
			}
			fmt.Fprintln(out, "Ledger cleared; starting from scratch.")
		} else {
			fmt.Fprintln(out, "Resuming with pending files.")
		}
	}

	tracker := report.NewProgressTracker(out)
	pipeline, err := session.NewIngestionPipeline(
		ingestion.WithMaxAttempts(cfg.MaxAttempts),
		ingestion.WithRetryDelay(cfg.RetryDelay),
		ingestion.WithAssociateDelay(cfg.AssociateDelay),
		ingestion.WithHashWorkers(cfg.HashWorkers),
		ingestion.WithExtensions(cfg.Extensions...),
		ingestion.WithSkipHidden(c.Bool("skip-hidden")),
		ingestion.WithObserver(tracker.Observe),
	)
	if err != nil {
		return err
	}
	defer pipeline.Release()

	fmt.Fprintf(out, "Scanning %s...\n", folder)
	tracker.Start()
	summary, runErr := pipeline.Run(ctx, folder, collectionID)
	slog.Debug("sync finished",
		"component", "cli",
		"processed", tracker.Processed(),
		"elapsed", tracker.Elapsed().Round(time.Millisecond),
	)
	report.PrintSummary(out, summary)
	return runErr
}

// shouldRestart decides whether an existing ledger is discarded.
// In ask mode any answer other than r resumes, as does end of input.
func shouldRestart(mode string, entries int, in io.Reader, out io.Writer) (bool, error) {
	switch mode {
	case onExistingResume:
		return false, nil
	case onExistingRestart:
		return true, nil
	}

	fmt.Fprintf(out, "%d files already uploaded. Continue where it left off (c) or restart from scratch (r)? [c/r]: ", entries)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "r" || answer == "restart", nil
}
