package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/clipview/internal/classify"
	"go.klb.dev/clipview/internal/settings"
)

func newClassifyCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "classify [text...]",
		Short: "Classify text from the arguments or stdin",
		Long: `Classifies text without touching the clipboard. Arguments are joined with a
single space; with no arguments stdin is read to EOF.

  printf 'a\tb\r\n' | clipview classify --json`,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(cmd *cobra.Command, args []string) error { return runClassify(cmd, v, args) },
	}

	f := cmd.Flags()
	f.Bool("json", false, "output the runs as JSON")
	addColorFlag(cmd)
	addLoggingFlags(cmd, "warn")
	addConfigFlag(cmd)

	return cmd
}

func runClassify(cmd *cobra.Command, v *viper.Viper, args []string) error {
	if err := setupLogging(v); err != nil {
		return err
	}

	text := strings.Join(args, " ")
	if len(args) == 0 {
		b, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		text = string(b)
	}

	runs := classify.Classify(text)
	out := cmd.OutOrStdout()
	if v.GetBool("json") {
		if runs == nil {
			runs = []classify.Run{}
		}
		return writeJSON(out, runs)
	}

	r := newRenderer(v, settings.Default(), out)
	_, err := fmt.Fprintln(out, r.Runs(runs))
	return err
}
