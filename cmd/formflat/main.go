// Package main provides the formflat command.
//
// formflat turns a KoboToolbox form into a flat data-entry workbook and
// posts filled rows back as submissions:
//
//	formflat fetch      download the form definition and keep a snapshot
//	formflat template   write the template workbook
//	formflat inspect    print headers and diagnostics
//	formflat submit     post the rows of a filled template
//	formflat ledger     list the submissions recorded for a form
//	formflat serve      expose flattening over HTTP
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"formflat/internal/config"
	"formflat/internal/logger"
)

type command struct {
	name    string
	summary string
	run     func(ctx context.Context, cfg *config.Config, args []string, stdout io.Writer) error
}

var commands = []command{
	{"fetch", "download the form definition and write a snapshot", runFetch},
	{"template", "write the data-entry template workbook", runTemplate},
	{"inspect", "print headers, fields and diagnostics", runInspect},
	{"submit", "submit the rows of a filled template", runSubmit},
	{"ledger", "list the submissions recorded for a form", runLedger},
	{"serve", "serve the flattening API", runServe},
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "formflat:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	global := flag.NewFlagSet("formflat", flag.ContinueOnError)
	global.SetOutput(stderr)
	configFile := global.String("config", "", "path to a formflat.toml file")
	global.Usage = func() { usage(stderr, global) }

	if err := global.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}

		return err
	}

	if global.NArg() == 0 {
		usage(stderr, global)
		return errors.New("no command given")
	}

	name := global.Arg(0)

	for _, c := range commands {
		if c.name != name {
			continue
		}

		cfg, err := config.Load(*configFile)
		if err != nil {
			return err
		}

		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}

		logger.Setup(cfg.Log.Level, cfg.Log.Format)

		return c.run(ctx, cfg, global.Args()[1:], stdout)
	}

	usage(stderr, global)

	return fmt.Errorf("unknown command %q", name)
}

func usage(w io.Writer, fs *flag.FlagSet) {
	fmt.Fprintln(w, "usage: formflat [-config file] <command> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "commands:")

	for _, c := range commands {
		fmt.Fprintf(w, "  %-9s %s\n", c.name, c.summary)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "flags:")
	fs.PrintDefaults()
}
