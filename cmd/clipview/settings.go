package main

import (
	"fmt"
	"log/slog"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/clipview/internal/settings"
)

func newSettingsCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change the viewer settings",
		Long: `Prints the persisted viewer settings, or changes them with --set.

  clipview settings --set topmost=true --set font_size=14

Valid keys: ` + strings.Join(settings.Keys(), ", "),
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(cmd *cobra.Command, _ []string) error { return runSettings(cmd, v) },
	}

	f := cmd.Flags()
	f.StringArray("set", nil, "key=value to change (repeatable)")
	f.Bool("json", false, "output raw JSON")
	addSettingsFlag(cmd)
	addLoggingFlags(cmd, "warn")
	addConfigFlag(cmd)

	return cmd
}

func runSettings(cmd *cobra.Command, v *viper.Viper) error {
	if err := setupLogging(v); err != nil {
		return err
	}
	store, s, err := openSettings(v)
	if err != nil {
		return err
	}

	// StringArray flags are read from the command: viper flattens them.
	changes, _ := cmd.Flags().GetStringArray("set")
	for _, kv := range changes {
		key, value, ok := strings.Cut(kv, "=")
		if !ok {
			return fmt.Errorf("--set %q: want key=value", kv)
		}
		if err := s.Set(strings.TrimSpace(key), value); err != nil {
			return err
		}
	}
	if len(changes) > 0 {
		if err := store.Save(s); err != nil {
			return err
		}
		slog.Info("settings saved", "path", store.Path(), "changes", len(changes))
	}

	out := cmd.OutOrStdout()
	if v.GetBool("json") {
		return writeJSON(out, s)
	}

	w := tabwriter.NewWriter(out, 1, 0, 2, ' ', 0)
	fmt.Fprintf(w, "File:\t%s\n", store.Path())
	for _, k := range settings.Keys() {
		val, err := s.Get(k)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s:\t%s\n", k, val)
	}
	return w.Flush()
}
