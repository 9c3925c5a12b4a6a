package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// newRootCmd builds the command tree. Tests build a fresh tree per case.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "refactorgen",
		Short:         "LLM-assisted module refactoring tool",
		Long:          `refactorgen parses a module, groups its sub-routines by responsibility and proposes a split into new modules.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("config", "", "path to a TOML config file (default refactorgen.toml if present)")
	root.PersistentFlags().String("provider", "", "LLM provider (gemini|groq|fake)")
	root.PersistentFlags().String("model", "", "provider model id")
	root.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")

	root.AddCommand(newParseCmd())
	root.AddCommand(newProposeCmd())
	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "refactorgen: %v\n", err)
		os.Exit(1)
	}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
