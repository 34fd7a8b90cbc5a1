// clipview: show the clipboard with invisible characters made visible.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version is set at build time via -ldflags "-X main.Version=x.y.z".
var Version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "clipview",
		Short: "Show the clipboard with invisible characters made visible",
		Long: `clipview displays the text on the system clipboard with line breaks, tabs,
spaces, ideographic spaces and other control or format characters drawn as
visible markers, and redraws whenever the clipboard changes.

On Windows clipview joins the clipboard viewer chain; elsewhere it polls.

Config file search order (first found wins):
  /etc/clipview/clipview.toml
  $HOME/.config/clipview/clipview.toml
  path supplied via --config

All flags can be set via CLIPVIEW_<FLAG> env vars or config-file keys.
Viewer preferences (font, window geometry, topmost) are kept separately; see
"clipview settings --help".`,
		SilenceUsage: true,
	}

	root.AddCommand(
		newWatchCmd(),
		newShowCmd(),
		newClassifyCmd(),
		newSettingsCmd(),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "clipview %s\n", Version)
		},
	}
}
