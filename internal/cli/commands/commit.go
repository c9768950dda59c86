package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// NewCommitCommand creates the commit command.
func NewCommitCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "commit",
		Short: "Commit and push changes with a Conventional Commits message",
		Long: `Construct a commit and push it to your remote branch.

You are asked whether to commit all changes. If not, the changed files are
listed and you pick the ones to add (tab selects). The commit type comes from
commits.conventional-commits.types in tools-config.yaml, and the message is
formatted as "<Type>: <message>".`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc, err := GetCommandContext(cmd.Context())
			if err != nil {
				return err
			}
			return runCommit(cmd.Context(), cc)
		},
	}
}

func runCommit(ctx context.Context, cc *CommandContext) error {
	gc := cc.Git()

	all, err := cc.Prompter.Confirm(ctx, "Do you want to commit all changes?", true)
	if err != nil {
		return err
	}

	var paths []string
	if !all {
		entries, err := gc.Status(ctx)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			return errors.New("no changes to commit")
		}

		lines := make([]string, 0, len(entries))
		byLine := make(map[string]string, len(entries))
		for _, e := range entries {
			lines = append(lines, e.Line)
			byLine[e.Line] = e.Path
		}

		selected, err := cc.Prompter.Filter(ctx, "Which File(s) Would You Like To Add?", lines, true)
		if err != nil {
			return err
		}
		for _, line := range selected {
			if p, ok := byLine[line]; ok {
				paths = append(paths, p)
			}
		}
		if len(paths) == 0 {
			return errors.New("no files selected")
		}
	}

	message, err := commitMessage(ctx, cc)
	if err != nil {
		return err
	}

	if err := gc.Add(ctx, paths...); err != nil {
		return err
	}
	if err := gc.Commit(ctx, message); err != nil {
		return err
	}
	return gc.Push(ctx)
}

func commitMessage(ctx context.Context, cc *CommandContext) (string, error) {
	commitType, err := pickOne(ctx, cc, "What Type Of Commit Is This?", cc.Cfg.Commits.ConventionalCommits.Types)
	if err != nil {
		return "", err
	}
	msg, err := cc.Prompter.Input(ctx, "What Did You Do?", "")
	if err != nil {
		return "", err
	}
	msg = strings.TrimSpace(msg)
	if msg == "" {
		return "", errors.New("commit message cannot be empty")
	}
	return fmt.Sprintf("%s: %s", commitType, msg), nil
}
