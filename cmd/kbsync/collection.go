package main

import (
	"errors"
	"fmt"

	"github.com/urfave/cli/v2"
)

func collectionCommand() *cli.Command {
	return &cli.Command{
		Name:  "collection",
		Usage: "Manage knowledge collections",
		Subcommands: []*cli.Command{
			{
				Name:      "create",
				Usage:     "Create a collection and print its id",
				ArgsUsage: "<name>",
				Action:    collectionCreateAction,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "description",
						Usage: "Collection description",
					},
				},
			},
			{
				Name:      "check",
				Usage:     "Check that a collection id exists",
				ArgsUsage: "<id>",
				Action:    collectionCheckAction,
			},
		},
	}
}

func collectionCreateAction(c *cli.Context) error {
	if c.NArg() != 1 || c.Args().First() == "" {
		return errors.New("exactly one collection name is required")
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

	id, err := session.ResolveCollection(c.Context, "", c.Args().First(), c.String("description"))
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, id)
	return nil
}

func collectionCheckAction(c *cli.Context) error {
	if c.NArg() != 1 || c.Args().First() == "" {
		return errors.New("exactly one collection id is required")
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

	id, err := session.ResolveCollection(c.Context, c.Args().First(), "", "")
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "collection %s is valid\n", id)
	return nil
}
