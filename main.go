package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"
)

var logFile *os.File

func main() {
	if err := newApp().Run(os.Args); err != nil {
		if msg := err.Error(); msg != "" {
			fmt.Fprintf(os.Stderr, "rgsearch: %s\n", msg)
		}
		os.Exit(exitCode(err))
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:                   "rgsearch",
		Usage:                  "Search file contents with ripgrep",
		ArgsUsage:              "TERM [PATH...]",
		UseShortOptionHandling: true,
		Flags:                  append(globalFlags(), searchFlags()...),
		Before:                 setupLogging,
		After: func(*cli.Context) error {
			if logFile == nil {
				return nil
			}
			log.SetOutput(io.Discard)
			err := logFile.Close()
			logFile = nil
			return err
		},
		Action: searchAction,
		// Errors are reported by main once After has run
		ExitErrHandler: func(*cli.Context, error) {},
		Commands: []*cli.Command{
			ignoreCommand(),
			scopeCommand(),
		},
	}
}

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Config file path",
			EnvVars: []string{"RGSEARCH_CONFIG"},
		},
		&cli.StringFlag{
			Name:  "log-file",
			Usage: "Log file path (default: rgsearch.log in the user cache dir)",
		},
	}
}

// setupLogging sends the standard logger to a file; the terminal belongs to
// the results and the progress view
func setupLogging(c *cli.Context) error {
	path := c.String("log-file")
	if path == "" {
		cacheDir, err := os.UserCacheDir()
		if err != nil {
			cacheDir = os.TempDir()
		}
		path = filepath.Join(cacheDir, "rgsearch", "rgsearch.log")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		log.SetOutput(io.Discard)
		return nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		// Logging is best effort
		log.SetOutput(io.Discard)
		return nil
	}
	logFile = f
	log.SetOutput(f)
	return nil
}

func exitCode(err error) int {
	var coder cli.ExitCoder
	if errors.As(err, &coder) {
		return coder.ExitCode()
	}
	return 2
}
