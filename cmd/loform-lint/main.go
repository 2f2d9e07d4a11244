package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/goliatone/go-loform/internal/app"
	"github.com/goliatone/go-loform/internal/config"
	"github.com/goliatone/go-loform/internal/lint"
)

func main() {
	flags := pflag.NewFlagSet("loform-lint", pflag.ExitOnError)
	config.RegisterFlags(flags)
	flags.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: loform-lint [flags] [object types...]\n\nResolve object schemas and report missing embedded schemas, cycles and undefined codelists.\n\n")
		flags.PrintDefaults()
	}
	_ = flags.Parse(os.Args[1:])

	cfg, err := config.Load(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}
	// schema warnings are reported below; keep the logger quiet
	cfg.General.LogLevel = "error"
	logger := config.NewLogger(os.Stderr, cfg.General)

	ctx := context.Background()
	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "lint: %v\n", err)
		os.Exit(1)
	}

	objectTypes := flags.Args()
	if len(objectTypes) == 0 {
		if objectTypes, err = a.ObjectTypes(); err != nil {
			fmt.Fprintf(os.Stderr, "lint: %v\n", err)
			os.Exit(1)
		}
	}

	violations, err := lint.Run(ctx, a.Service, a.Codelists, objectTypes)
	if err != nil {
		fmt.Fprintf(os.Stderr, "lint: %v\n", err)
		os.Exit(1)
	}
	for _, v := range violations {
		fmt.Fprintln(os.Stderr, v)
	}
	if len(violations) > 0 {
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "%d object types clean\n", len(objectTypes))
}
