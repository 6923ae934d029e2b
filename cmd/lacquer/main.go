// Package main implements lacquer, a CI action that locates build
// artifacts, code-signs them, submits them for notarization, and
// staples the resulting tickets.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var version = "0.1.0"

func main() {
	// A cancelled run leaves the current external invocation to die with
	// the process; nothing is rolled back.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	root := &cobra.Command{
		Use:   "lacquer",
		Short: "Sign, notarize, and staple build artifacts in CI",
		Long: `lacquer expands glob-style search paths into a set of build
artifacts, downloads the rcodesign tool for the current platform, and
runs the requested sign, notarize, and staple stages over every match.`,
	}
	root.AddCommand(newRunCmd())

	if err := fang.Execute(
		ctx,
		root,
		fang.WithVersion(version),
		fang.WithoutCompletions(),
		fang.WithoutManpage(),
	); err != nil {
		os.Exit(1)
	}
}
