package commands

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ae-kit/tools/internal/prompt"
	"github.com/ae-kit/tools/internal/pullrequest"
	"github.com/ae-kit/tools/internal/ui"
)

// NewBranchNewCommand creates the branch-new command.
func NewBranchNewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "branch-new",
		Short: "Create a new branch from the latest default branch",
		Long: `Check out the default branch, pull the latest changes, then create and push
a new branch.

When branches.branch-prefixes is set you pick a prefix first. If the branch
has a ticket, the team tag and ticket number are added to the name:

  feature/DSA-123-add-order-totals`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc, err := GetCommandContext(cmd.Context())
			if err != nil {
				return err
			}
			return runBranchNew(cmd.Context(), cc)
		},
	}
}

var ticketNumberPattern = regexp.MustCompile(`^\d{1,4}$`)

func runBranchNew(ctx context.Context, cc *CommandContext) error {
	cc.Printer.Primary("Creating a New Branch")

	var prefix string
	if prefixes := cc.Cfg.Branches.BranchPrefixes; len(prefixes) > 0 {
		var err error
		prefix, err = pickOne(ctx, cc, "What Type Of Branch Is This?", prefixes)
		if err != nil {
			return err
		}
	}

	hasTicket, err := cc.Prompter.Confirm(ctx, "Does this branch have a corresponding ticket?", true)
	if err != nil {
		return err
	}

	var ticketRef string
	if hasTicket {
		number, err := cc.Prompter.Input(ctx, "Enter the ticket number", "")
		if err != nil {
			return err
		}
		number = strings.TrimPrefix(strings.TrimSpace(prompt.StripMarkup(number)), cc.Cfg.General.TeamTag+"-")
		if !ticketNumberPattern.MatchString(number) {
			return fmt.Errorf("ticket number must be 1 to 4 digits (got %q)", number)
		}
		ticketRef = pullrequest.TicketRef(cc.Cfg.General.TeamTag, number)
	}

	name, err := cc.Prompter.Input(ctx, "Enter the branch name", "")
	if err != nil {
		return err
	}
	branch := branchName(prefix, ticketRef, prompt.StripMarkup(name))
	if branch == "" {
		return errors.New("branch name cannot be empty")
	}

	gc := cc.Git()
	base, err := gc.DefaultBranch(ctx)
	if err != nil {
		return err
	}

	err = cc.Printer.Spin(ctx, "Pulling Down From "+ui.Capwords(base), func(ctx context.Context) error {
		if err := gc.Checkout(ctx, base); err != nil {
			return err
		}
		if err := gc.Pull(ctx); err != nil {
			return err
		}
		if err := gc.CreateBranch(ctx, branch); err != nil {
			return err
		}
		return gc.PushUpstream(ctx, branch)
	})
	if err != nil {
		return err
	}

	cc.Printer.Success(fmt.Sprintf("Branch %s created from %s", branch, base))
	return nil
}

// branchName joins the parts as [prefix/][TAG-N-]name, replacing runs of
// whitespace in name with a dash. It returns "" when name is blank.
func branchName(prefix, ticketRef, name string) string {
	name = strings.Join(strings.Fields(name), "-")
	if name == "" {
		return ""
	}
	if ticketRef != "" {
		name = ticketRef + "-" + name
	}
	if prefix = strings.Trim(strings.TrimSpace(prefix), "/"); prefix != "" {
		name = prefix + "/" + name
	}
	return name
}
