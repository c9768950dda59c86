package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ae-kit/tools/internal/s3sync"
)

// NewS3SyncCommand creates the s3-sync command.
func NewS3SyncCommand() *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "s3-sync",
		Short: "Sync local Airflow folders with their S3 bucket",
		Long: `Sync a local Airflow folder to S3 with "aws s3 sync".

Sources and targets come from the aws-info block of tools-config.yaml:
dag-root syncs to s3-dag-location and plugins-root to s3-plugins-location.
.DS_Store files and __pycache__ folders are never uploaded.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc, err := GetCommandContext(cmd.Context())
			if err != nil {
				return err
			}
			return runS3Sync(cmd.Context(), cc, dryRun)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dryrun", false, "Show what would be synced without uploading")

	return cmd
}

func runS3Sync(ctx context.Context, cc *CommandContext, dryRun bool) error {
	cc.Printer.Primary("Syncing Local Data With S3 Bucket")

	mapping := s3sync.FromConfig(cc.Cfg.AWS)
	sources := mapping.Sources()
	if len(sources) == 0 {
		_, err := mapping.Target("")
		return err
	}

	src, err := cc.Prompter.Choose(ctx, "Which Folder Would You Like To Sync?", sources)
	if err != nil {
		return err
	}
	target, err := mapping.Target(src)
	if err != nil {
		return err
	}

	ok, err := cc.Prompter.Confirm(ctx,
		fmt.Sprintf("Are you sure you want to sync %s with %s?", strings.ToUpper(src), strings.ToUpper(target)), false)
	if err != nil {
		return err
	}
	if !ok {
		cc.Printer.Error("Sync Cancelled")
		return nil
	}

	if err := cc.Runner.Run(ctx, s3sync.Command(src, target, dryRun)); err != nil {
		return fmt.Errorf("aws s3 sync failed: %w", err)
	}
	cc.Printer.Success("Sync Complete")
	return nil
}
