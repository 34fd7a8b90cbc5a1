package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/clipview/internal/chain"
	"go.klb.dev/clipview/internal/clip"
	"go.klb.dev/clipview/internal/logging"
	"go.klb.dev/clipview/internal/render"
	"go.klb.dev/clipview/internal/viewer"
)

func newWatchCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Show the clipboard and redraw on every change",
		Long: `Shows the current clipboard and redraws it whenever the clipboard changes,
until interrupted. On a terminal each redraw replaces the previous one; when
stdout is redirected every change is appended.

On Windows the viewer is registered in the system clipboard viewer chain and
removed from it again on exit, so other viewers keep receiving notifications.`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(cmd *cobra.Command, _ []string) error { return runWatch(cmd, v) },
	}

	f := cmd.Flags()
	f.Bool("no-clear", false, "append frames instead of clearing the screen")
	addColorFlag(cmd)
	addSettingsFlag(cmd)
	addLoggingFlags(cmd, "info")
	addConfigFlag(cmd)

	return cmd
}

func runWatch(cmd *cobra.Command, v *viper.Viper) error {
	if err := setupLogging(v); err != nil {
		return err
	}
	_, s, err := openSettings(v)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	clearScreen := !v.GetBool("no-clear") && logging.IsTTY(out)
	display := render.NewTerminal(out, newRenderer(v, s, out), clearScreen)

	reader := clip.New()
	slog.Info("clipview watching", "version", Version, "backend", reader.Name())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = viewer.Run(ctx, viewer.Config{
		Reader:   reader,
		Display:  display,
		Settings: s,
		Logger:   slog.Default(),
	})
	var cbErr *chain.CallbackError
	if errors.As(err, &cbErr) {
		slog.Error("viewer stopped", "err", cbErr.Err)
	}
	return err
}
