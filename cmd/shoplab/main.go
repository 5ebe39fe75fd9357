// Package main implements the shoplab CLI.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/electwix/shoplab/internal/cli"
	"github.com/electwix/shoplab/internal/logging"
	"github.com/electwix/shoplab/internal/pipeline"
)

func main() {
	code := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr)
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := cli.Parse(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			_, _ = fmt.Fprintln(stdout, err.Error())
			return 0
		}
		_, _ = fmt.Fprintln(stderr, err.Error())
		return 1
	}

	if !opts.Stages() {
		_, _ = fmt.Fprintln(stdout, "nothing to do: use --init-db / --seed / --demo")
		return 0
	}

	logger := logging.New(logging.Options{
		Verbose: opts.Verbose,
		Writer:  stderr,
	})

	pipe := pipeline.Pipeline{Env: pipeline.Environment{
		Logger: logger,
		Writer: pipeline.NewOSWriter(),
		Stdout: stdout,
	}}
	_, runErr := pipe.Run(ctx, pipeline.RunOptions{
		DBPath:        opts.DBPath,
		OutDir:        opts.OutDir,
		ProfilePath:   opts.ProfilePath,
		StrictProfile: opts.StrictProfile,
		InitDB:        opts.InitDB,
		Seed:          opts.Seed,
		Demo:          opts.Demo,
		Customers:     opts.Customers,
		Orders:        opts.Orders,
		RNGSeed:       opts.RNGSeed,
	})
	if runErr != nil {
		_, _ = fmt.Fprintln(stderr, runErr.Error())
		var artifactErr *pipeline.ArtifactError
		if errors.As(runErr, &artifactErr) {
			return 2
		}
		return 1
	}
	return 0
}
