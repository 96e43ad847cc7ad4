package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/creativeprojects/go-selfupdate"
	"github.com/spf13/cobra"

	"github.com/happyhackingspace/parallign/align"
)

const releaseSlug = "happyhackingspace/parallign"

func (c *CLI) newUpCommand() *cobra.Command {
	var check bool

	cmd := &cobra.Command{
		Use:   "up",
		Short: "Self-update to the latest release",
		Example: `  parallign up
  parallign up --check`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.selfUpdate(cmd.Context(), cmd.OutOrStdout(), check)
		},
	}

	cmd.Flags().BoolVar(&check, "check", false, "Only report whether a newer release exists")
	return cmd
}

func (c *CLI) selfUpdate(ctx context.Context, out io.Writer, check bool) error {
	current := releaseVersion(c.version)

	updater, err := selfupdate.NewUpdater(selfupdate.Config{})
	if err != nil {
		return err
	}
	latest, found, err := updater.DetectLatest(ctx, selfupdate.ParseSlug(releaseSlug))
	if err != nil {
		return fmt.Errorf("detect latest version: %w", err)
	}
	if !found {
		return fmt.Errorf("no release found")
	}
	if latest.LessOrEqual(current) {
		_, _ = fmt.Fprintf(out, "Already up to date (%s)\n", c.version)
		return nil
	}
	if check {
		_, _ = fmt.Fprintf(out, "Release %s is available (running %s)\n", latest.Version(), c.version)
		return nil
	}

	slog.Info("Updating", "from", c.version, "to", latest.Version())
	exe, err := os.Executable()
	if err != nil {
		return err
	}
	if err := updater.UpdateTo(ctx, latest, exe); err != nil {
		return fmt.Errorf("update: %w", err)
	}

	_, _ = fmt.Fprintf(out, "Updated to %s\n", latest.Version())
	if notice := modelNotice(current, latest.Version()); notice != "" {
		slog.Warn(notice)
	}
	return nil
}

// releaseVersion maps a build version to a comparable semantic version.
func releaseVersion(v string) string {
	v = strings.TrimPrefix(strings.TrimSpace(v), "v")
	if v == "" || v == "dev" {
		return "0.0.0"
	}
	return v
}

// modelNotice warns when an update crosses a major version, since saved
// models may then use a different format.
func modelNotice(from, to string) string {
	major := func(v string) string {
		return strings.SplitN(releaseVersion(v), ".", 2)[0]
	}
	if major(from) == major(to) {
		return ""
	}
	return fmt.Sprintf("Major version change %s -> %s: models saved in format version %d may need retraining if loading fails",
		releaseVersion(from), releaseVersion(to), align.FormatVersion)
}
