package main

import (
	"fmt"

	"github.com/isaacchacko/den"
)

// listURLWidth bounds URLs in the --all listing.
const listURLWidth = 60

// Run executes the hop command.
func (c *HopCmd) Run(deps *Dependencies) error {
	reg := deps.Sessions
	reg.Options = c.SearchFlags.options()

	s, err := reg.Create(deps.Ctx, den.SessionHop, c.Query, "")
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", den.ErrorMessage(err))
		return err
	}

	dir := den.DirectionNext
	steps := c.Steps
	if steps < 0 {
		dir, steps = den.DirectionPrev, -steps
	}
	for range steps {
		if s, err = reg.Navigate(deps.Ctx, den.SessionHop, s.Key, dir); err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", den.ErrorMessage(err))
			return err
		}
	}

	if len(s.Pages) == 0 {
		fmt.Fprintf(deps.Stdout, "No results for %q.\n", c.Query)
		return nil
	}

	if c.All {
		for i, p := range s.Pages {
			marker := " "
			if i == s.Cursor {
				marker = ">"
			}
			fmt.Fprintf(deps.Stdout, "%s %2d  %s  %s\n", marker, i+1, den.TruncateURL(p.URL, listURLWidth), p.Title)
		}
		return nil
	}

	page := s.Pages[s.Cursor]
	fmt.Fprintf(deps.Stdout, "[%d/%d] %s\n%s\n", s.Cursor+1, len(s.Pages), page.Title, page.URL)
	if page.Snippet != "" {
		fmt.Fprintln(deps.Stdout, page.Snippet)
	}
	return nil
}
