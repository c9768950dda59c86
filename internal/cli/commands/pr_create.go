package commands

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ae-kit/tools/internal/pullrequest"
)

// EnvPRTemplate names a default pull request template, typically set in .env.
const EnvPRTemplate = "PULL_REQUEST_TEMPLATE"

// PRCreateOptions holds options for the pr-create command.
type PRCreateOptions struct {
	Kind     pullrequest.Kind
	Template string
	NoDraft  bool
}

// NewPRCreateCommand creates the pr-create command.
func NewPRCreateCommand() *cobra.Command {
	opts := &PRCreateOptions{}
	cmd := &cobra.Command{
		Use:   "pr-create",
		Short: "Open a pull request for the current branch",
		Long: `Open a draft pull request in the current repository.

The title defaults to the branch name with the ticket reference removed, and
the ticket reference is prefixed to the title ("DSA-123: Add Order Totals").
The body starts from a template, which you can edit before it is submitted.

Template precedence: --template, $PULL_REQUEST_TEMPLATE, then the template
picked by --tableau, --ticket-only or --cross-team. Names are looked up in
pull-requests.templates-dir first, then in the built-in templates; a value
containing a path separator is read as a file.

When the repository does not allow draft pull requests the pull request is
opened as ready for review.`,
		Example: `  tools pr-create
  tools pr-create --ticket-only
  tools pr-create --template ./docs/release.md --no-draft`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc, err := GetCommandContext(cmd.Context())
			if err != nil {
				return err
			}
			return runPRCreate(cmd.Context(), cc, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Kind.Tableau, "tableau", false, "Use the Tableau template")
	cmd.Flags().BoolVar(&opts.Kind.TicketOnly, "ticket-only", false, "Use the ticket-only template")
	cmd.Flags().BoolVarP(&opts.Kind.CrossTeam, "cross-team", "c", false, "Use the cross-team template")
	cmd.Flags().StringVar(&opts.Template, "template", "", "Template name or file to use for the body")
	cmd.Flags().BoolVar(&opts.NoDraft, "no-draft", false, "Open the pull request as ready for review")

	return cmd
}

func runPRCreate(ctx context.Context, cc *CommandContext, opts *PRCreateOptions) error {
	branch, err := cc.Git().CurrentBranch(ctx)
	if err != nil {
		return err
	}

	hasTicket, err := cc.Prompter.Confirm(ctx, "Does this pull request have a corresponding ticket?", true)
	if err != nil {
		return err
	}
	teamTag := ""
	if hasTicket {
		teamTag = cc.Cfg.General.TeamTag
	}
	ticket := pullrequest.ParseTicket(branch, teamTag)

	title, err := cc.Prompter.Input(ctx, "What Do You Want To Name This PR?", ticket.Title)
	if err != nil {
		return err
	}
	if title = strings.TrimSpace(title); title == "" {
		title = ticket.Title
	}
	if title == "" {
		return errors.New("pull request title cannot be empty")
	}

	name := opts.Template
	if name == "" {
		name = os.Getenv(EnvPRTemplate)
	}
	if name == "" {
		name = opts.Kind.Name()
	}
	templates := pullrequest.Templates{Dir: cc.Cfg.PullRequests.TemplatesDir}
	body, err := templates.Render(name, ticket.Ref)
	if err != nil {
		return err
	}

	body, err = cc.Prompter.Write(ctx, "What Did You Do?", body)
	if err != nil {
		return err
	}

	creator := cc.PRs
	if creator == nil {
		creator = pullrequest.NewCreator(cc.Logger)
	}
	url, err := creator.Create(ctx, pullrequest.PR{
		Title: ticket.Header + title,
		Body:  body,
		Draft: cc.Cfg.PullRequests.Draft && !opts.NoDraft,
	})
	if err != nil {
		return err
	}

	cc.Printer.Success("Pull request created")
	if url != "" {
		cc.Printer.Plain(url)
	}
	return nil
}
