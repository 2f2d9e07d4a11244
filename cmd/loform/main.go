package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/pflag"

	"github.com/goliatone/go-loform/internal/app"
	"github.com/goliatone/go-loform/internal/config"
	"github.com/goliatone/go-loform/internal/prompt"
	"github.com/goliatone/go-loform/pkg/store"
)

func main() {
	flags := pflag.NewFlagSet("loform", pflag.ExitOnError)
	config.RegisterFlags(flags)
	objectType := flags.String("type", "Piece", "object type to edit")
	input := flags.String("input", "", "JSON record to start from")
	output := flags.String("output", "", "output file (stdout if empty)")
	flags.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: loform [flags]\n\nPrompt for every field of a logistics object and print the record.\n\n")
		flags.PrintDefaults()
	}
	_ = flags.Parse(os.Args[1:])

	cfg, err := config.Load(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}
	logger := config.NewLogger(os.Stderr, cfg.General)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to assemble service", "error", err)
		os.Exit(1)
	}

	initial, err := readRecord(*input)
	if err != nil {
		logger.Error("failed to read input record", "error", err)
		os.Exit(1)
	}

	session, err := a.Service.NewSession(ctx, *objectType, initial, nil)
	if err != nil {
		logger.Error("failed to open session", "object_type", *objectType, "error", err)
		os.Exit(1)
	}
	defer session.Close()

	editor := prompt.NewEditor(prompt.WithLogger(logger))
	if err := editor.Run(ctx, session.Store); err != nil {
		if errors.Is(err, prompt.ErrAborted) || errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, "aborted")
			os.Exit(130)
		}
		logger.Error("prompt failed", "error", err)
		os.Exit(1)
	}

	payload, err := json.MarshalIndent(session.Store.Snapshot(), "", "  ")
	if err != nil {
		logger.Error("failed to encode record", "error", err)
		os.Exit(1)
	}
	if *output == "" {
		fmt.Println(string(payload))
		return
	}
	if err := os.WriteFile(*output, append(payload, '\n'), 0o644); err != nil {
		logger.Error("failed to write output", "error", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "Record written to %s\n", *output)
}

func readRecord(path string) (store.Record, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var record store.Record
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return record, nil
}
