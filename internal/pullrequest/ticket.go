// Package pullrequest derives pull request titles from branch names, renders
// body templates and opens the pull request with gh.
package pullrequest

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ae-kit/tools/internal/ui"
)

// Ticket is the ticket reference found in a branch name.
type Ticket struct {
	Ref    string // "DSA-123", empty when none was found
	Header string // "DSA-123: ", prefixed to the title
	Title  string // default title derived from the branch
}

// ParseTicket extracts the team ticket from branch and derives a default
// title from the rest of the name:
//
//	feature/DSA-123-add-order-totals -> DSA-123, "Add Order Totals"
func ParseTicket(branch, teamTag string) Ticket {
	branch = strings.TrimSpace(branch)
	if teamTag == "" {
		return Ticket{Title: cleanTitle(branch)}
	}

	tag := regexp.QuoteMeta(teamTag)
	ref := regexp.MustCompile(tag + `-(\d{1,4})`)
	m := ref.FindString(branch)
	if m == "" {
		return Ticket{Title: cleanTitle(branch)}
	}

	rest := regexp.MustCompile(`.*` + tag + `-\d{1,4}-`).ReplaceAllString(branch, "")
	return Ticket{
		Ref:    m,
		Header: m + ": ",
		Title:  cleanTitle(rest),
	}
}

func cleanTitle(s string) string {
	return ui.Title(s)
}

// TicketRef formats a ticket number as a reference: ("DSA", "42") -> "DSA-42".
func TicketRef(teamTag, number string) string {
	number = strings.TrimSpace(number)
	number = strings.TrimPrefix(strings.TrimPrefix(number, teamTag+"-"), "#")
	return fmt.Sprintf("%s-%s", teamTag, number)
}
