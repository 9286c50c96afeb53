// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Command blpk compresses, decompresses, appends to and inspects bloscpack
// containers.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"

	"github.com/luci/luci-go/common/logging"
	"github.com/spf13/cobra"
)

// version is overridden at link time with -ldflags.
var version = "dev"

var (
	verbose  bool
	debug    bool
	force    bool
	nthreads int
)

// cliError carries an explicit exit code: 2 for argument/usage errors, 1
// for everything else.
type cliError struct {
	err  error
	code int
}

func (e *cliError) Error() string { return e.err.Error() }
func (e *cliError) Unwrap() error { return e.err }

func usageErrorf(format string, args ...interface{}) error {
	return &cliError{err: fmt.Errorf(format, args...), code: 2}
}

var rootCmd = &cobra.Command{
	Use:     "blpk [command] (flags)",
	Short:   "blpk packs, unpacks and inspects bloscpack containers",
	Version: version,
}

func main() {
	rootCmd.SilenceUsage = true
	rootCmd.SilenceErrors = true
	cobra.EnableCommandSorting = false

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug logging (mutually exclusive with --verbose)")
	rootCmd.PersistentFlags().BoolVarP(&force, "force", "f", false, "overwrite an existing output file")
	rootCmd.PersistentFlags().IntVarP(&nthreads, "nthreads", "n", runtime.NumCPU(), "number of threads passed to the block codec (1..256)")
	rootCmd.MarkFlagsMutuallyExclusive("verbose", "debug")

	rootCmd.AddCommand(compressCmd, decompressCmd, appendCmd, infoCmd)

	if err := rootCmd.Execute(); err != nil {
		code := 1
		var ce *cliError
		if errors.As(err, &ce) {
			code = ce.code
			err = ce.err
		}
		fmt.Fprintf(os.Stderr, "blpk: error: %s\n", err)
		os.Exit(code)
	}
}

// newContext builds the logging context for a subcommand, honoring -v/-d.
func newContext() context.Context {
	ctx := context.Background()
	switch {
	case debug:
		ctx = logging.SetLevel(ctx, logging.Debug)
	case verbose:
		ctx = logging.SetLevel(ctx, logging.Info)
	default:
		ctx = logging.SetLevel(ctx, logging.Warning)
	}
	return ctx
}

func checkOutputPath(path string) error {
	if force {
		return nil
	}
	if _, err := os.Stat(path); err == nil {
		return usageErrorf("output %q already exists (use -f/--force to overwrite)", path)
	}
	return nil
}
