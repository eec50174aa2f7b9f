// Command folio runs the portfolio server and offers a few terminal tools
// for browsing content and stored contact messages.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/eringen/folio"
)

func main() {
	if err := newRootCommand().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var configFile string

	root := &cobra.Command{
		Use:   "folio",
		Short: "Portfolio and blog server backed by Contentful",
		Long: `folio serves a portfolio page, a Contentful backed blog and a contact form.

Configuration is read from the environment, optionally layered over a YAML
file given with --config. Run "folio env" to list every variable.`,
		Version:       folio.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configFile, "config", "c", "", "YAML config file (optional)")

	root.AddCommand(newServeCommand(&configFile))
	root.AddCommand(newPostsCommand(&configFile))
	root.AddCommand(newPostCommand(&configFile))
	root.AddCommand(newMessagesCommand(&configFile))
	root.AddCommand(newEnvCommand())
	return root
}

func newEnvCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "env",
		Short: "List the environment variables folio reads",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), folio.ConfigUsage())
			return err
		},
	}
}
