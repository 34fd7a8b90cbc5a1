package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/clipview/internal/classify"
	"go.klb.dev/clipview/internal/clip"
	"go.klb.dev/clipview/internal/viewer"
)

func newShowCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the clipboard once",
		Long: `Reads the clipboard once and prints it with invisible characters made visible.

With --json the snapshot and its classified runs are printed instead:

  clipview show --json | jq '.runs[] | select(.kind == "other_control")'`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(cmd *cobra.Command, _ []string) error { return runShow(cmd, v) },
	}

	f := cmd.Flags()
	f.Bool("json", false, "output raw JSON")
	f.Bool("title", false, "print the title line")
	addColorFlag(cmd)
	addSettingsFlag(cmd)
	addLoggingFlags(cmd, "warn")
	addConfigFlag(cmd)

	return cmd
}

// snapshotJSON is the --json form of a clipboard read.
type snapshotJSON struct {
	Backend string         `json:"backend"`
	Status  clip.Status    `json:"status"`
	Text    string         `json:"text,omitempty"`
	Error   string         `json:"error,omitempty"`
	Runs    []classify.Run `json:"runs,omitempty"`
}

func runShow(cmd *cobra.Command, v *viper.Viper) error {
	if err := setupLogging(v); err != nil {
		return err
	}
	_, s, err := openSettings(v)
	if err != nil {
		return err
	}

	reader := clip.New()
	snap := clip.Read(reader)
	var runs []classify.Run
	if snap.Status == clip.HasText {
		if snap.Units != nil {
			runs = classify.ClassifyUTF16(snap.Units)
		} else {
			runs = classify.Classify(snap.Text)
		}
	}

	out := cmd.OutOrStdout()
	if v.GetBool("json") {
		return writeJSON(out, snapshotJSON{
			Backend: reader.Name(),
			Status:  snap.Status,
			Text:    snap.Text,
			Error:   snap.Detail(),
			Runs:    runs,
		})
	}

	r := newRenderer(v, s, out)
	if v.GetBool("title") {
		if _, err := fmt.Fprintln(out, r.Title(viewer.Title, s.Topmost)); err != nil {
			return err
		}
	}
	_, err = fmt.Fprintln(out, r.Snapshot(snap, runs))
	return err
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

