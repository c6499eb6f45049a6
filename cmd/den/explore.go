package main

import (
	"encoding/json"
	"fmt"

	"github.com/isaacchacko/den"
	"github.com/isaacchacko/den/fs"
)

// ExploreOutput is the JSON document printed by explore.
type ExploreOutput struct {
	Root    *den.RootNode    `json:"root"`
	Graph   *den.Graph       `json:"graph"`
	Seed    SeedReport       `json:"seed"`
	Burrows []BurrowReport   `json:"burrows,omitempty"`
	Export  *fs.ExportResult `json:"export,omitempty"`
}

// SeedReport summarizes the initial search.
type SeedReport struct {
	Results  int `json:"results"`
	Ingested int `json:"ingested"`
	Failed   int `json:"failed"`
}

// BurrowReport summarizes one deep-dive.
type BurrowReport struct {
	Title           string `json:"title"`
	Ingested        int    `json:"ingested"`
	Failed          int    `json:"failed"`
	ChildrenCreated int    `json:"childrenCreated"`
	Error           string `json:"error,omitempty"`
}

// Run executes the explore command.
func (c *ExploreCmd) Run(deps *Dependencies) error {
	d := deps.Den
	d.SeedPages = c.Pages

	start, err := d.Start(deps.Ctx, c.Query, c.SearchFlags.options())
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", den.ErrorMessage(err))
		return err
	}

	out := &ExploreOutput{
		Seed: SeedReport{
			Results:  len(start.Pages),
			Ingested: start.PagesIngested,
			Failed:   start.PagesFailed,
		},
	}

	for _, rawURL := range c.Send {
		if _, err := d.SendToDen(deps.Ctx, rawURL); err != nil {
			fmt.Fprintf(deps.Stderr, "warning: send %s: %s\n", rawURL, den.ErrorMessage(err))
		}
	}

	for _, title := range c.Burrow {
		report := BurrowReport{Title: title}
		res, err := d.Burrow(deps.Ctx, title, c.SearchFlags.options())
		if err != nil {
			// A missing concept only skips that burrow.
			report.Error = den.ErrorMessage(err)
			fmt.Fprintf(deps.Stderr, "warning: burrow %q: %s\n", title, report.Error)
		} else {
			report.Ingested = res.PagesIngested
			report.Failed = res.PagesFailed
			report.ChildrenCreated = res.ChildrenCreated
		}
		out.Burrows = append(out.Burrows, report)
	}

	// The root is encoded under the den lock.
	err = d.View(func(root *den.RootNode) error {
		out.Root = root
		if c.PreviewDepth >= 0 {
			out.Graph = deps.Layouter.Preview(root, c.PreviewDepth)
		} else {
			out.Graph = deps.Layouter.Layout(root)
		}
		if c.Out != "" {
			res, err := deps.Exporter.Export(deps.Ctx, c.Out, root, out.Graph)
			if err != nil {
				return err
			}
			out.Export = res
		}
		enc := json.NewEncoder(deps.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", den.ErrorMessage(err))
		return err
	}
	return nil
}

func (f SearchFlags) options() den.SearchOptions {
	return den.SearchOptions{Lang: f.Lang, Safe: f.Safe, SiteFilter: f.Site}
}
