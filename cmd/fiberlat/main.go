package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/poissonlab/fiberlat/internal/cli"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	c := cli.New(os.Stderr, cli.LogInfo)
	if err := newRoot(c).ExecuteContext(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(130) // interrupted, shell convention
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newRoot builds the command tree and attaches the global --verbose flag.
// The flag value is only known after parsing, so the log level is applied in
// the pre-run hook rather than at logger construction.
func newRoot(c *cli.CLI) *cobra.Command {
	var verbose bool

	root := c.RootCommand()
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if verbose {
			c.SetLogLevel(cli.LogDebug)
		}
	}
	return root
}
