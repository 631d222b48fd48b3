package cmd

import (
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/meysamhadeli/shaderinc/constants/lipgloss"
	"github.com/meysamhadeli/shaderinc/reporter"
	"github.com/meysamhadeli/shaderinc/utils"
	"github.com/spf13/cobra"
)

// handleWatchCommand verifies once, then again after every settled batch of
// filesystem changes below the root, until interrupted.
func handleWatchCommand(cmd *cobra.Command, rootDependencies *RootDependencies) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	watcher, err := utils.NewFileWatcher(rootDependencies.Root, rootDependencies.Config.WatchDebounce)
	if err != nil {
		return err
	}

	go utils.GracefulShutdown(ctx, cancel, func() {
		_ = watcher.Close()
	})

	watchBox := lipgloss.BoxStyle.Render(fmt.Sprintf("Watching %s for changes. Press Ctrl+C to stop.", rootDependencies.Root))
	fmt.Fprintln(cmd.ErrOrStderr(), watchBox)

	verify := func() {
		if rootDependencies.Config.Format == reporter.FormatText {
			separator := fmt.Sprintf("--- %s ---", time.Now().Format(time.TimeOnly))
			if rootDependencies.Color {
				separator = lipgloss.Info.Render(separator)
			}
			fmt.Fprintln(cmd.OutOrStdout(), separator)
		}
		if err := runVerification(cmd, rootDependencies); err != nil && !errors.Is(err, ErrMissingIncludes) {
			fmt.Fprintln(cmd.ErrOrStderr(), lipgloss.Red.Render(fmt.Sprintf("Error: %v", err)))
		}
	}

	verify()
	return watcher.Run(ctx, verify)
}
