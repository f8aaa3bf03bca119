package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rebind-dev/rebind/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ╦═╗┌─┐┌┐ ┬┌┐┌┌┬┐
  ╠╦╝├┤ ├┴┐││││ ││
  ╩╚═└─┘└─┘┴┘└┘─┴┘
`

func main() {
	rootCmd := &cobra.Command{
		Use:   "rebind",
		Short: "Declarative data binding for HTML documents",
		Long: `Rebind keeps an HTML document synchronized with a reference graph.

Directive attributes on elements bind attributes, properties, text
and child lists to paths in the graph. Mutation verbs propagate
exactly the affected updates, and connected mirrors receive them
as binary patch frames over WebSocket.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		serveCmd(),
		renderCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprint(os.Stderr, errors.Format(err))
		os.Exit(1)
	}
}

// printBanner prints the rebind ASCII art banner.
func printBanner() {
	fmt.Print(banner)
}

// info prints an info message.
func info(format string, args ...any) {
	fmt.Printf("  %s\n", fmt.Sprintf(format, args...))
}
