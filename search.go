package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"rgsearch/internal/config"
	"rgsearch/internal/discovery"
	"rgsearch/internal/domain"
	"rgsearch/internal/eventbus"
	"rgsearch/internal/ignore"
	"rgsearch/internal/results"
	"rgsearch/internal/ripgrep"
	"rgsearch/internal/scopes"
	"rgsearch/internal/search"
	"rgsearch/internal/ui"
)

// exit codes, following rg
const (
	exitNoMatches = 1
	exitFailure   = 2
)

func searchFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "binary", Usage: "ripgrep executable (overrides config)"},
		&cli.StringFlag{Name: "binaries-dir", Usage: "Directory holding linux/rg, windows/rg.exe and mac/rg"},
		&cli.BoolFlag{Name: "case-sensitive", Aliases: []string{"s"}, Usage: "Match case exactly"},
		&cli.BoolFlag{Name: "word", Aliases: []string{"w"}, Usage: "Match whole words only"},
		&cli.BoolFlag{Name: "literal", Aliases: []string{"F"}, Usage: "Treat the term as a literal string"},
		&cli.BoolFlag{Name: "pcre", Usage: "Use the PCRE2 regex engine"},
		&cli.BoolFlag{Name: "archives", Aliases: []string{"z"}, Usage: "Search in compressed files"},
		&cli.BoolFlag{Name: "generated", Usage: "Also search hidden and git-ignored files"},
		&cli.BoolFlag{Name: "no-ignore-list", Usage: "Do not apply the ignore list"},
		&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Usage: "Only search files whose name matches this glob"},
		&cli.StringSliceFlag{Name: "include", Aliases: []string{"g"}, Usage: "Include files matching glob (repeatable)"},
		&cli.BoolFlag{Name: "files", Usage: "List files matching --name instead of searching content; all arguments are paths"},
		&cli.StringFlag{Name: "scope", Usage: "Search scope: last, @name or projects:<dir>"},
		&cli.StringFlag{Name: "sort", Value: "arrival", Usage: "Result order: arrival, path or matches"},
		&cli.BoolFlag{Name: "pager", Usage: "Show results in a pager"},
		&cli.BoolFlag{Name: "no-progress", Usage: "Do not show the live progress view"},
		&cli.BoolFlag{Name: "no-color", Usage: "Disable colored output"},
	}
}

func searchAction(c *cli.Context) error {
	term, paths, err := searchArgs(c)
	if err != nil {
		return err
	}

	ws, err := openWorkspace(c)
	if err != nil {
		return cli.Exit(err, exitFailure)
	}
	defer ws.close()

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	provider, err := scopes.Parse(c.String("scope"), paths, ws.scopes, discovery.NewDiscoveryService(ws.bus))
	if err != nil {
		return cli.Exit(err, exitFailure)
	}
	scope, err := scopes.Resolve(ctx, provider)
	if err != nil {
		return cli.Exit(err, exitFailure)
	}

	spec := buildSpecification(c, ws.cfg, term)
	spec.Scope = scope.Paths

	binary, err := resolveBinary(c, ws.cfg)
	if err != nil {
		return cli.Exit(err, exitFailure)
	}

	sortMode, err := parseSortMode(c.String("sort"))
	if err != nil {
		return cli.Exit(err, exitFailure)
	}

	evaluator := ignore.NewEvaluator(ignore.LoadEntries(ws.cfg.IgnoreList, os.Stat)...)
	session := search.NewSession(spec, search.FromRunner(ripgrep.NewRunner(binary)), search.WithIgnoreList(evaluator))

	store := results.NewStore()
	busListener := search.NewBusListener(ws.bus, spec)
	listener := search.LogListener{Next: busListener}
	sink := search.Sinks{store, busListener}

	g, gctx := errgroup.WithContext(ctx)

	if ws.cfg.UI.ShowProgress && !c.Bool("no-progress") && isatty.IsTerminal(os.Stderr.Fd()) {
		progress := ui.NewProgress(gctx, ws.bus, os.Stderr, scope.Description, session)
		g.Go(progress.Run)
	}

	if err := session.Start(gctx, listener, sink); err != nil {
		return cli.Exit(err, exitFailure)
	}
	g.Go(func() error {
		state := session.Wait()
		ws.bus.Publish(eventbus.SearchFinishedEvent{State: state.String(), Err: session.Err()})
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Printf("Progress view failed: %v", err)
	}

	ws.scopes.SetLast(scope)

	state := session.State()
	stats := session.Stats()
	if state == search.StateFailed {
		return cli.Exit(session.Err(), exitFailure)
	}

	color := ws.cfg.UI.Color && !c.Bool("no-color") && isatty.IsTerminal(os.Stdout.Fd())
	printer := ui.NewPrinter(color)
	output := printer.Render(store.Sorted(sortMode))
	summary := printer.Summary(state.String(), store.Len(), store.MatchCount(), stats.ParseErrors+stats.Unresolved)

	if (ws.cfg.UI.Pager || c.Bool("pager")) && isatty.IsTerminal(os.Stdout.Fd()) && output != "" {
		if err := ui.ShowInPager(output + "\n" + summary + "\n"); err != nil {
			return cli.Exit(fmt.Errorf("pager failed: %w", err), exitFailure)
		}
	} else {
		fmt.Fprint(c.App.Writer, output)
		fmt.Fprintln(c.App.ErrWriter, summary)
	}

	if store.Len() == 0 {
		return cli.Exit("", exitNoMatches)
	}
	return nil
}

// searchArgs splits the positional arguments into the term and paths
func searchArgs(c *cli.Context) (string, []string, error) {
	args := c.Args().Slice()
	if c.Bool("files") {
		if c.String("name") == "" {
			return "", nil, cli.Exit("--files needs --name", exitFailure)
		}
		return "", args, nil
	}
	if len(args) == 0 {
		return "", nil, cli.Exit("missing search term", exitFailure)
	}
	return args[0], args[1:], nil
}

// buildSpecification applies command line flags over the configured defaults
func buildSpecification(c *cli.Context, cfg *config.Config, term string) domain.SearchSpecification {
	spec := cfg.Search.Specification(term)

	if c.IsSet("case-sensitive") {
		spec.CaseSensitive = c.Bool("case-sensitive")
	}
	if c.IsSet("word") {
		spec.WholeWord = c.Bool("word")
	}
	if c.IsSet("literal") {
		spec.Literal = c.Bool("literal")
		spec.UseRegex = !spec.Literal
	}
	if c.IsSet("pcre") {
		spec.UsePCRE = c.Bool("pcre")
	}
	if c.IsSet("archives") {
		spec.SearchInArchives = c.Bool("archives")
	}
	if c.IsSet("generated") {
		spec.SearchGeneratedSources = c.Bool("generated")
	}
	if c.Bool("no-ignore-list") {
		spec.UseIgnoreList = false
	}
	if name := c.String("name"); name != "" {
		spec.FileNamePattern = name
		spec.IsGlobInclude = true
	}
	spec.Includes = c.StringSlice("include")
	return spec
}

// resolveBinary picks the explicit binary if configured, else the bundled
// variant for this platform. There is no fallback to rg on PATH.
func resolveBinary(c *cli.Context, cfg *config.Config) (ripgrep.Binary, error) {
	if path := firstNonEmpty(c.String("binary"), cfg.Binary); path != "" {
		return ripgrep.BinaryFromPath(path)
	}

	dir := firstNonEmpty(c.String("binaries-dir"), cfg.BinariesDir)
	if dir == "" {
		exe, err := os.Executable()
		if err != nil {
			return ripgrep.Binary{}, fmt.Errorf("failed to locate bundled ripgrep: %w", err)
		}
		dir = filepath.Join(filepath.Dir(exe), "ripgrep")
	}
	return ripgrep.ResolveBinary(dir)
}

func parseSortMode(s string) (results.SortMode, error) {
	switch strings.ToLower(s) {
	case "", "arrival":
		return results.SortByArrival, nil
	case "path":
		return results.SortByPath, nil
	case "matches":
		return results.SortByMatches, nil
	default:
		return 0, fmt.Errorf("unknown sort mode %q", s)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
