package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/urfave/cli/v2"

	"rgsearch/internal/ignore"
)

func ignoreCommand() *cli.Command {
	return &cli.Command{
		Name:  "ignore",
		Usage: "Manage the ignore list applied on top of ripgrep's own filtering",
		Subcommands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "Show the ignore list",
				Action: ignoreList,
			},
			{
				Name:  "add",
				Usage: "Add an ignore rule",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "glob", Usage: "File name pattern, comma separated alternatives"},
					&cli.StringFlag{Name: "regex", Usage: "Regular expression matched against the full path"},
					&cli.StringFlag{Name: "path", Usage: "File or folder to ignore"},
				},
				Action: ignoreAdd,
			},
			{
				Name:      "remove",
				Usage:     "Remove an entry, given as printed by list",
				ArgsUsage: "ENTRY",
				Action:    ignoreRemove,
			},
		},
	}
}

func ignoreList(c *cli.Context) error {
	ws, err := openWorkspace(c)
	if err != nil {
		return err
	}
	defer ws.close()

	for _, entry := range ws.cfg.IgnoreList {
		_, err := ignore.ParseEntry(entry, os.Stat)
		switch {
		case errors.Is(err, ignore.ErrDropped):
			fmt.Fprintf(c.App.Writer, "%s\t(inactive: path missing)\n", entry)
		case err != nil:
			fmt.Fprintf(c.App.Writer, "%s\t(invalid: %v)\n", entry, err)
		default:
			fmt.Fprintln(c.App.Writer, entry)
		}
	}
	return nil
}

func ignoreAdd(c *cli.Context) error {
	rule, err := ruleFromFlags(c)
	if err != nil {
		return err
	}

	ws, err := openWorkspace(c)
	if err != nil {
		return err
	}
	defer ws.close()

	entry := rule.String()
	if slices.Contains(ws.cfg.IgnoreList, entry) {
		fmt.Fprintf(c.App.Writer, "%s already ignored\n", entry)
		return nil
	}
	ws.cfg.IgnoreList = append(ws.cfg.IgnoreList, entry)
	if err := ws.save(); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "added %s\n", entry)
	return nil
}

func ruleFromFlags(c *cli.Context) (ignore.Rule, error) {
	var set []string
	for _, name := range []string{"glob", "regex", "path"} {
		if c.String(name) != "" {
			set = append(set, name)
		}
	}
	if len(set) != 1 {
		return ignore.Rule{}, fmt.Errorf("give exactly one of --glob, --regex or --path")
	}

	switch set[0] {
	case "glob":
		return ignore.Glob(c.String("glob"))
	case "regex":
		return ignore.Regex(c.String("regex"))
	default:
		abs, err := filepath.Abs(c.String("path"))
		if err != nil {
			return ignore.Rule{}, err
		}
		if _, err := os.Stat(abs); err != nil {
			return ignore.Rule{}, fmt.Errorf("cannot ignore %s: %w", abs, err)
		}
		return ignore.DirectoryPrefix(abs), nil
	}
}

func ignoreRemove(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected one entry, got %d", c.NArg())
	}

	ws, err := openWorkspace(c)
	if err != nil {
		return err
	}
	defer ws.close()

	entries, removed := ignore.Remove(ws.cfg.IgnoreList, c.Args().First())
	if !removed {
		return fmt.Errorf("no ignore entry %q", c.Args().First())
	}
	ws.cfg.IgnoreList = entries
	return ws.save()
}

func scopeCommand() *cli.Command {
	return &cli.Command{
		Name:  "scope",
		Usage: "Manage named search scopes",
		Subcommands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "Show saved scopes and the last used scope",
				Action: scopeList,
			},
			{
				Name:      "save",
				Usage:     "Save paths under a name, usable as --scope @NAME",
				ArgsUsage: "NAME PATH...",
				Action:    scopeSave,
			},
			{
				Name:      "delete",
				Usage:     "Delete a saved scope",
				ArgsUsage: "NAME",
				Action:    scopeDelete,
			},
		},
	}
}

func scopeList(c *cli.Context) error {
	ws, err := openWorkspace(c)
	if err != nil {
		return err
	}
	defer ws.close()

	for _, name := range ws.scopes.Names() {
		paths, _ := ws.scopes.Get(name)
		fmt.Fprintf(c.App.Writer, "@%s\t%s\n", name, strings.Join(paths, " "))
	}
	if last, ok := ws.scopes.Last(); ok {
		fmt.Fprintf(c.App.Writer, "last\t%s\n", last.Description)
	}
	return nil
}

func scopeSave(c *cli.Context) error {
	if c.NArg() < 2 {
		return fmt.Errorf("expected a name and at least one path")
	}

	ws, err := openWorkspace(c)
	if err != nil {
		return err
	}
	defer ws.close()

	args := c.Args().Slice()
	return ws.scopes.Save(args[0], args[1:])
}

func scopeDelete(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected one scope name")
	}

	ws, err := openWorkspace(c)
	if err != nil {
		return err
	}
	defer ws.close()

	return ws.scopes.Remove(c.Args().First())
}
